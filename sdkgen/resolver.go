package sdkgen

import (
	"strings"

	"github.com/teranos/sdkgen/dts"
)

// Alias is one type alias declaration.
type Alias struct {
	// Name is the namespace-qualified name, e.g. "runtime.types.Options"
	Name string
	// Scope is the enclosing namespace path, "" at top level
	Scope  string
	Params []dts.TypeParam
	Type   dts.Type
}

// AliasTable maps qualified alias names to their declarations. It is built
// once per declaration file and read-only afterwards.
type AliasTable map[string]*Alias

// BuildAliasTable collects the alias declarations of file, including those
// nested in namespaces under their qualified names. The first declaration of
// a name wins.
func BuildAliasTable(file *dts.SourceFile) AliasTable {
	table := make(AliasTable)
	table.collect(file.Statements, "")
	return table
}

func (t AliasTable) collect(stmts []dts.Stmt, scope string) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *dts.TypeAliasDecl:
			name := qualify(scope, n.Name)
			if _, exists := t[name]; !exists {
				t[name] = &Alias{Name: name, Scope: scope, Params: n.TypeParams, Type: n.Type}
			}
		case *dts.NamespaceDecl:
			inner := scope
			if !n.Global {
				inner = qualify(scope, n.Name)
			}
			t.collect(n.Body, inner)
		}
	}
}

// Lookup finds name as seen from scope: the scope and each enclosing
// namespace are searched outward, then the final segment of a dotted name is
// tried the same way.
func (t AliasTable) Lookup(name, scope string) (*Alias, bool) {
	for s := scope; ; s = parentScope(s) {
		if a, ok := t[qualify(s, name)]; ok {
			return a, true
		}
		if s == "" {
			break
		}
	}
	if base := StripNamespace(name); base != name {
		return t.Lookup(base, scope)
	}
	return nil, false
}

// Deref follows parenthesized types and references to non-generic aliases
// until it reaches a structural node. Cycles yield nil.
func (t AliasTable) Deref(typ dts.Type) dts.Type {
	visited := make(map[*Alias]bool)
	scope := ""
	for {
		typ = unwrapParens(typ)
		ref, ok := typ.(*dts.TypeRef)
		if !ok || ref.Module != "" || len(ref.Args) > 0 {
			return typ
		}
		a, ok := t.Lookup(ref.Name, scope)
		if !ok {
			return typ
		}
		if visited[a] {
			return nil
		}
		visited[a] = true
		typ, scope = a.Type, a.Scope
	}
}

func qualify(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

func parentScope(scope string) string {
	if i := strings.LastIndexByte(scope, '.'); i >= 0 {
		return scope[:i]
	}
	return ""
}

// Resolve maps a type node to its TypeCategory using the syntactic rules.
// It never fails: unrecognized shapes resolve to Dynamic.
func Resolve(t dts.Type, aliases AliasTable) TypeCategory {
	r := newResolver(aliases, false)
	return r.resolve(t, r.root)
}

// TypeResolver maps type nodes of one declaration file to categories.
type TypeResolver interface {
	Resolve(t dts.Type) TypeCategory
}

// SyntacticResolver applies the resolution rules to the nodes as written.
type SyntacticResolver struct {
	Aliases AliasTable
}

// Resolve implements TypeResolver.
func (s SyntacticResolver) Resolve(t dts.Type) TypeCategory {
	return Resolve(t, s.Aliases)
}

// env carries the namespace scope and the type parameter bindings of the
// alias instantiation being resolved.
type env struct {
	scope  string
	params map[string]binding
}

type binding struct {
	typ dts.Type
	env *env
}

type paramKey struct {
	env  *env
	name string
}

type resolver struct {
	aliases  AliasTable
	semantic bool
	root     *env
	// visited holds the aliases and type parameters on the current
	// resolution path
	visited map[any]bool
}

func newResolver(aliases AliasTable, semantic bool) *resolver {
	if aliases == nil {
		aliases = AliasTable{}
	}
	return &resolver{
		aliases:  aliases,
		semantic: semantic,
		root:     &env{},
		visited:  make(map[any]bool),
	}
}

func (r *resolver) resolve(t dts.Type, e *env) TypeCategory {
	if t == nil {
		return Dynamic
	}
	if r.semantic {
		switch t.(type) {
		case *dts.UnionType, *dts.TypeRef, *dts.ParenType:
			var trail []any
			members := r.flatten(t, e, nil, &trail)
			if len(members) != 1 || members[0].typ != t || members[0].env != e {
				// the expansion stays on the path while its members resolve
				for _, key := range trail {
					if !r.visited[key] {
						r.visited[key] = true
						defer delete(r.visited, key)
					}
				}
				if len(members) != 1 {
					return r.resolveUnion(members)
				}
				return r.resolve(members[0].typ, members[0].env)
			}
		}
	}

	switch n := t.(type) {
	case *dts.TypeRef:
		return r.resolveRef(n, e)
	case *dts.ArrayType:
		return ListOf(r.resolve(n.Elem, e))
	case *dts.UnionType:
		members := make([]binding, len(n.Types))
		for i, m := range n.Types {
			members[i] = binding{typ: m, env: e}
		}
		return r.resolveUnion(members)
	case *dts.KeywordType:
		switch n.Name {
		case "string":
			return String
		case "number":
			return Number
		case "boolean":
			return Boolean
		case "void":
			return Void
		}
		return Dynamic
	case *dts.LiteralType:
		switch n.Kind {
		case dts.LiteralString, dts.LiteralTemplate:
			return String
		case dts.LiteralNumber:
			return Number
		case dts.LiteralBoolean:
			return Boolean
		}
		return Dynamic
	case *dts.ParenType:
		return r.resolve(n.Inner, e)
	case *dts.TypeOperator:
		if n.Operator == "readonly" {
			return r.resolve(n.Type, e)
		}
		return Dynamic
	case *dts.ObjectType:
		if c, ok := structuralCollectionMarker(n); ok {
			return c
		}
		return Dynamic
	}
	return Dynamic
}

func (r *resolver) resolveRef(ref *dts.TypeRef, e *env) TypeCategory {
	if ref.Module == "" {
		if b, key, ok := r.param(ref, e); ok {
			if r.visited[key] {
				return Dynamic
			}
			r.visited[key] = true
			defer delete(r.visited, key)
			return r.resolve(b.typ, b.env)
		}
	}

	// Markers take precedence over aliases of the same name
	if c, ok := CollectionMarker(ref.Name); ok {
		return c
	}

	if ref.Module == "" {
		if a, ok := r.aliases.Lookup(ref.Name, e.scope); ok {
			if r.visited[a] {
				return Dynamic
			}
			r.visited[a] = true
			defer delete(r.visited, a)
			return r.resolve(a.Type, r.instantiate(a, ref.Args, e))
		}
	}

	switch StripNamespace(ref.Name) {
	case "Array", "ReadonlyArray":
		if len(ref.Args) == 1 {
			return ListOf(r.resolve(ref.Args[0], e))
		}
		if len(ref.Args) == 0 {
			return UntypedList
		}
	case BinaryBufferName:
		return BinaryBuffer
	}
	return Dynamic
}

// param returns the binding of a type parameter reference.
func (r *resolver) param(ref *dts.TypeRef, e *env) (binding, paramKey, bool) {
	if len(ref.Args) > 0 || strings.Contains(ref.Name, ".") {
		return binding{}, paramKey{}, false
	}
	b, ok := e.params[ref.Name]
	return b, paramKey{env: e, name: ref.Name}, ok
}

// instantiate binds the alias type parameters to args, falling back to the
// declared defaults.
func (r *resolver) instantiate(a *Alias, args []dts.Type, caller *env) *env {
	inner := &env{scope: a.Scope}
	if len(a.Params) == 0 {
		return inner
	}
	inner.params = make(map[string]binding, len(a.Params))
	for i, p := range a.Params {
		switch {
		case i < len(args):
			inner.params[p.Name] = binding{typ: args[i], env: caller}
		case p.Default != nil:
			inner.params[p.Name] = binding{typ: p.Default, env: inner}
		default:
			inner.params[p.Name] = binding{}
		}
	}
	return inner
}

// resolveUnion applies the union narrowing policy to a member list.
func (r *resolver) resolveUnion(members []binding) TypeCategory {
	var present []binding
	for _, m := range members {
		if m.typ != nil && isAbsentType(m.typ) {
			continue
		}
		present = append(present, m)
	}
	if len(present) == 1 {
		return r.resolve(present[0].typ, present[0].env)
	}

	allStrings, allBooleans := true, len(present) > 0
	for _, m := range present {
		t := unwrapParens(m.typ)
		if !isStringLiteral(t) {
			allStrings = false
		}
		if !isBooleanLiteral(t) {
			allBooleans = false
		}
	}
	switch {
	case allStrings:
		return String
	case allBooleans && r.semantic:
		return Boolean
	}
	return Dynamic
}

// flatten expands aliases, bound type parameters and nested unions into the
// union membership of t. Members that cannot be expanded are kept as is; a
// cycle contributes a nil member. Every alias and type parameter expanded
// is appended to trail.
func (r *resolver) flatten(t dts.Type, e *env, out []binding, trail *[]any) []binding {
	switch n := t.(type) {
	case *dts.ParenType:
		return r.flatten(n.Inner, e, out, trail)
	case *dts.UnionType:
		for _, m := range n.Types {
			out = r.flatten(m, e, out, trail)
		}
		return out
	case *dts.TypeRef:
		if n.Module != "" {
			break
		}
		if b, key, ok := r.param(n, e); ok {
			if r.visited[key] || b.typ == nil {
				return append(out, binding{})
			}
			r.visited[key] = true
			*trail = append(*trail, key)
			out = r.flatten(b.typ, b.env, out, trail)
			delete(r.visited, key)
			return out
		}
		if _, ok := CollectionMarker(n.Name); ok {
			break
		}
		if a, ok := r.aliases.Lookup(n.Name, e.scope); ok {
			if r.visited[a] {
				return append(out, binding{})
			}
			r.visited[a] = true
			*trail = append(*trail, a)
			out = r.flatten(a.Type, r.instantiate(a, n.Args, e), out, trail)
			delete(r.visited, a)
			return out
		}
	}
	return append(out, binding{typ: t, env: e})
}
