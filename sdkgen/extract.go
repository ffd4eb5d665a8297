package sdkgen

import (
	"fmt"

	"github.com/teranos/sdkgen/dts"
	"github.com/teranos/sdkgen/errors"
	"github.com/teranos/sdkgen/sdkgen/util"
)

// defaultExportName is the binding bundlers emit for `export default <expr>`.
const defaultExportName = "_default"

// ExtractOptions controls declaration extraction.
type ExtractOptions struct {
	// Semantic resolves types with the file's Checker instead of the
	// syntactic rules alone
	Semantic bool
}

// sdkCandidate is a top-level value whose declared type is an SDK definition.
type sdkCandidate struct {
	decl      *dts.VarDecl
	ref       *dts.TypeRef
	exported  bool
	isDefault bool
}

// HasSdkDeclaration reports whether file declares any SDK-typed value,
// exported or not. The pipeline skips files without one.
func HasSdkDeclaration(file *dts.SourceFile) bool {
	return len(findCandidates(file, BuildAliasTable(file))) > 0
}

// Extract locates the exported SDK definition of file and extracts its init
// arguments and worker functions. It fails with ErrMalformedSdkDeclaration
// when the definition is missing, ambiguous or structurally incomplete.
func Extract(file *dts.SourceFile, opts ExtractOptions) (*ExtractionResult, error) {
	aliases := BuildAliasTable(file)
	var resolver TypeResolver = SyntacticResolver{Aliases: aliases}
	if opts.Semantic {
		resolver = &Checker{aliases: aliases}
	}
	x := &extractor{file: file, aliases: aliases, resolver: resolver}
	return x.extract()
}

type extractor struct {
	file     *dts.SourceFile
	aliases  AliasTable
	resolver TypeResolver
}

func (x *extractor) malformed(pos dts.Position, format string, args ...interface{}) error {
	return errors.NewMalformedSdkDeclaration("%s:%s: %s", x.file.Path, pos, fmt.Sprintf(format, args...))
}

func (x *extractor) extract() (*ExtractionResult, error) {
	sdk, err := x.locate()
	if err != nil {
		return nil, err
	}

	var result ExtractionResult
	var fnsArg dts.Type

	// Shape (i) is attempted first; shape (ii) only when no init tuple is present
	args := sdk.ref.Args
	var first dts.Type
	if len(args) > 0 {
		first = x.aliases.Deref(args[0])
	}
	switch init := first.(type) {
	case *dts.TupleType:
		if len(args) < 3 {
			return nil, errors.WithHint(
				x.malformed(sdk.ref.At, "%s has %d type arguments", sdk.ref.Name, len(args)),
				"expected Sdk<InitArgs, State, Fns>")
		}
		result.Shape = ShapeTuple
		result.Init.Args = x.tupleArgs(init)
		fnsArg = args[2]
	default:
		fn := x.initFunction(first)
		if fn == nil || len(args) < 2 {
			return nil, errors.WithHint(
				x.malformed(sdk.ref.At, "%s type arguments do not describe an init signature and a function map", sdk.ref.Name),
				"expected Sdk<[InitArgs], State, Fns> or Sdk<(init params) => State, Fns>")
		}
		result.Shape = ShapeInitFunction
		result.Init.Args = x.paramArgs(fn.Params)
		fnsArg = args[len(args)-1]
	}

	members, ok := x.functionMap(fnsArg)
	if !ok {
		return nil, errors.WithHint(
			x.malformed(fnsArg.Pos(), "function map %s is not a type literal", dts.TypeString(fnsArg)),
			"declare the worker functions as an object type literal")
	}

	x.documentInit(&result.Init, sdk.decl)

	seen := make(map[string]string)
	for _, m := range members {
		prop, ok := m.(*dts.PropertySignature)
		if !ok || prop.Type == nil {
			continue
		}
		sig, ok := x.aliases.Deref(prop.Type).(*dts.FunctionType)
		if !ok || sig.Constructor {
			continue
		}
		spec, err := x.function(prop, sig)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[spec.DartName]; dup {
			return nil, errors.WithHint(
				x.malformed(prop.At, "functions %q and %q both map to method %q", prev, spec.Name, spec.DartName),
				"rename one of the functions")
		}
		seen[spec.DartName] = spec.Name
		result.Functions = append(result.Functions, spec)
	}

	return &result, nil
}

// locate finds the unique exported SDK definition.
func (x *extractor) locate() (*sdkCandidate, error) {
	candidates := findCandidates(x.file, x.aliases)

	var exported, defaults []*sdkCandidate
	for _, c := range candidates {
		if !c.exported {
			continue
		}
		exported = append(exported, c)
		if c.isDefault {
			defaults = append(defaults, c)
		}
	}

	switch {
	case len(defaults) == 1:
		return defaults[0], nil
	case len(defaults) == 0 && len(exported) == 1:
		return exported[0], nil
	case len(exported) == 0 && len(candidates) > 0:
		return nil, errors.WithHint(
			x.malformed(candidates[0].decl.At, "SDK definition %q is not exported", candidates[0].decl.Name),
			"export the SDK definition as the module's default export")
	case len(exported) == 0:
		return nil, errors.WithHint(
			x.malformed(dts.Position{Line: 1, Column: 1}, "no exported SDK definition"),
			"the module's default export must be typed Sdk<InitArgs, State, Fns>")
	}

	names := make([]string, 0, len(exported))
	for _, c := range exported {
		names = append(names, c.decl.Name)
	}
	return nil, errors.WithHint(
		x.malformed(exported[1].decl.At, "ambiguous SDK definitions %v", names),
		"export exactly one SDK definition, or mark one as the default export")
}

func findCandidates(file *dts.SourceFile, aliases AliasTable) []*sdkCandidate {
	exportedAs := make(map[string][]string)
	for _, s := range file.Statements {
		switch n := s.(type) {
		case *dts.ExportDecl:
			if n.From != "" {
				continue
			}
			for _, spec := range n.Specifiers {
				exportedAs[spec.Local] = append(exportedAs[spec.Local], spec.Exported)
			}
		case *dts.ExportAssignment:
			exportedAs[n.Name] = append(exportedAs[n.Name], "default")
		}
	}

	var candidates []*sdkCandidate
	for _, s := range file.Statements {
		decl, ok := s.(*dts.VarDecl)
		if !ok || decl.Type == nil {
			continue
		}
		ref, ok := aliases.Deref(decl.Type).(*dts.TypeRef)
		if !ok || !IsSdkTypeName(ref.Name) {
			continue
		}
		c := &sdkCandidate{decl: decl, ref: ref}
		names := exportedAs[decl.Name]
		c.exported = decl.Exported || len(names) > 0 || decl.Name == defaultExportName
		c.isDefault = decl.Default || decl.Name == defaultExportName
		for _, name := range names {
			if name == "default" {
				c.isDefault = true
			}
		}
		candidates = append(candidates, c)
	}
	return candidates
}

// initFunction returns the init signature of shape (ii): a function type, an
// alias of one, or typeof a declared function.
func (x *extractor) initFunction(t dts.Type) *dts.FunctionType {
	switch n := t.(type) {
	case *dts.FunctionType:
		if !n.Constructor {
			return n
		}
	case *dts.TypeQuery:
		for _, s := range x.file.Statements {
			switch d := s.(type) {
			case *dts.FunctionDecl:
				if d.Name == n.Name {
					return &dts.FunctionType{At: d.At, TypeParams: d.TypeParams, Params: d.Params, Result: d.Result}
				}
			case *dts.VarDecl:
				if d.Name == n.Name && d.Type != nil {
					if fn, ok := x.aliases.Deref(d.Type).(*dts.FunctionType); ok {
						return fn
					}
				}
			}
		}
	}
	return nil
}

// functionMap returns the members of the function map: an object type
// literal, an alias of one, or a top-level interface.
func (x *extractor) functionMap(t dts.Type) ([]dts.Member, bool) {
	switch n := x.aliases.Deref(t).(type) {
	case *dts.ObjectType:
		return n.Members, true
	case *dts.TypeRef:
		if len(n.Args) > 0 || n.Module != "" {
			return nil, false
		}
		for _, s := range x.file.Statements {
			if iface, ok := s.(*dts.InterfaceDecl); ok && iface.Name == n.Name {
				return iface.Members, true
			}
		}
	}
	return nil, false
}

func (x *extractor) tupleArgs(tuple *dts.TupleType) []ArgumentSpec {
	args := make([]ArgumentSpec, 0, len(tuple.Elements))
	for i, el := range tuple.Elements {
		args = append(args, x.argument(el.Name, i, el.Type))
	}
	return args
}

func (x *extractor) paramArgs(params []dts.Param) []ArgumentSpec {
	args := make([]ArgumentSpec, 0, len(params))
	for i, p := range params {
		args = append(args, x.argument(p.Name, i, p.Type))
	}
	return args
}

func (x *extractor) argument(declared string, index int, t dts.Type) ArgumentSpec {
	if declared == "" {
		declared = fmt.Sprintf("arg%d", index)
	}
	return ArgumentSpec{
		Name:     util.DartMemberName(declared),
		Declared: declared,
		Type:     x.resolver.Resolve(t),
	}
}

// function extracts one worker function. The first parameter (module state)
// and the last (call identifier) are stripped.
func (x *extractor) function(prop *dts.PropertySignature, sig *dts.FunctionType) (FunctionSpec, error) {
	params := x.flattenRest(sig.Params)
	if len(params) < 2 {
		return FunctionSpec{}, errors.WithHint(
			x.malformed(prop.At, "function %q has %d parameters, want at least state and call id", prop.Name, len(params)),
			"worker functions are declared as (state, ...args, callId) => DartReturn<T>")
	}

	spec := FunctionSpec{
		Name:     prop.Name,
		DartName: util.DartMemberName(prop.Name),
		Args:     x.paramArgs(params[1 : len(params)-1]),
	}
	spec.Returns, spec.Streaming = x.returnType(sig)

	doc := ExtractDoc(prop.Doc)
	spec.Description = doc.Description
	spec.ReturnDescription = doc.Returns
	for i := range spec.Args {
		if desc, ok := doc.Param(spec.Args[i].Declared, spec.Args[i].Name); ok {
			spec.Args[i].Description = desc
		}
	}
	return spec, nil
}

// flattenRest expands rest parameters typed as tuples into positional
// parameters: (state, ...args: [name: string, callId: number]).
func (x *extractor) flattenRest(params []dts.Param) []dts.Param {
	var out []dts.Param
	for _, p := range params {
		if !p.Rest || p.Type == nil {
			out = append(out, p)
			continue
		}
		tuple, ok := x.aliases.Deref(p.Type).(*dts.TupleType)
		if !ok {
			out = append(out, p)
			continue
		}
		for _, el := range tuple.Elements {
			out = append(out, dts.Param{Name: el.Name, Optional: el.Optional, Rest: el.Rest, Type: el.Type})
		}
	}
	return out
}

// returnType inspects a worker signature's declared return type.
// DartStreamReturn<T> and DartReturn<T> select the call shape, void is Void,
// anything else is a non-streaming Dynamic. A return type given as the
// default of the signature's type parameter is resolved directly.
func (x *extractor) returnType(sig *dts.FunctionType) (TypeCategory, bool) {
	result := sig.Result
	generic := false
	if ref, ok := unwrapParens(result).(*dts.TypeRef); ok && len(ref.Args) == 0 {
		for _, tp := range sig.TypeParams {
			if tp.Name == ref.Name && tp.Default != nil {
				result, generic = tp.Default, true
				break
			}
		}
	}

	if c, streaming, ok := x.markedReturn(result); ok {
		return c, streaming
	}
	if generic {
		return x.resolver.Resolve(result), false
	}
	if len(sig.TypeParams) > 0 && sig.TypeParams[0].Default != nil {
		if c, streaming, ok := x.markedReturn(sig.TypeParams[0].Default); ok {
			return c, streaming
		}
		return x.resolver.Resolve(sig.TypeParams[0].Default), false
	}
	if isVoidKeyword(result) {
		return Void, false
	}
	return Dynamic, false
}

func (x *extractor) markedReturn(t dts.Type) (TypeCategory, bool, bool) {
	t = unwrapParens(t)
	marker, ok := returnMarker{}, false
	if ref, isRef := t.(*dts.TypeRef); isRef {
		marker, ok = nameReturnMarker(ref)
	}
	if !ok {
		if deref := x.aliases.Deref(t); deref != nil {
			if ref, isRef := deref.(*dts.TypeRef); isRef {
				marker, ok = nameReturnMarker(ref)
			}
			if !ok {
				marker, ok = structuralReturnMarker(deref)
			}
		}
	}
	if !ok {
		return TypeCategory{}, false, false
	}
	return x.markerArg(marker.arg), marker.streaming, true
}

// markerArg resolves the argument of a return marker. Collection markers map
// directly to their untyped category.
func (x *extractor) markerArg(t dts.Type) TypeCategory {
	if ref, ok := unwrapParens(t).(*dts.TypeRef); ok {
		if c, ok := CollectionMarker(ref.Name); ok {
			return c
		}
	}
	return x.resolver.Resolve(t)
}

func isVoidKeyword(t dts.Type) bool {
	kw, ok := unwrapParens(t).(*dts.KeywordType)
	return ok && kw.Name == "void"
}

// documentInit attaches init documentation. The init member is searched for
// anywhere in the file's structural bodies; the SDK declaration's own
// comment is the fallback description.
func (x *extractor) documentInit(init *InitSpec, sdkDecl *dts.VarDecl) {
	doc := ExtractDoc(x.findInitDoc())
	init.Description = doc.Description
	if init.Description == "" {
		init.Description = ExtractDoc(sdkDecl.Doc).Description
	}
	for i := range init.Args {
		if desc, ok := doc.Param(init.Args[i].Declared, init.Args[i].Name); ok {
			init.Args[i].Description = desc
		}
	}
}

func (x *extractor) findInitDoc() string {
	var found string
	dts.InspectFile(x.file, func(n dts.Node) bool {
		if found != "" {
			return false
		}
		switch d := n.(type) {
		case *dts.PropertySignature:
			if d.Name == "init" {
				found = d.Doc
			}
		case *dts.MethodSignature:
			if d.Name == "init" {
				found = d.Doc
			}
		case *dts.FunctionDecl:
			if d.Name == "init" {
				found = d.Doc
			}
		case *dts.VarDecl:
			if d.Name == "init" {
				found = d.Doc
			}
		}
		return found == ""
	})
	return found
}
