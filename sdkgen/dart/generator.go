// Package dart generates globe_runtime Dart bindings from extracted SDK
// declarations.
package dart

import (
	"fmt"
	"strings"

	"github.com/teranos/sdkgen/sdkgen"
	"github.com/teranos/sdkgen/sdkgen/util"
)

const (
	// FileSuffix is appended to the input's base name
	FileSuffix = "_source.dart"

	runtimeImport = "package:globe_runtime/globe_runtime.dart"
	indent        = 2
)

// Generator implements sdkgen.Generator for Dart
type Generator struct {
	// Tool names the generator in the file header
	Tool string
}

// NewGenerator creates a new Dart generator
func NewGenerator() *Generator {
	return &Generator{Tool: "sdkgen"}
}

// Language returns "dart"
func (g *Generator) Language() string {
	return "dart"
}

// FileSuffix returns "_source.dart"
func (g *Generator) FileSuffix() string {
	return FileSuffix
}

// GenerateFile emits a complete binding unit (implements sdkgen.Generator)
func (g *Generator) GenerateFile(result *sdkgen.ExtractionResult, meta sdkgen.Meta) string {
	if result == nil {
		result = &sdkgen.ExtractionResult{}
	}
	className := meta.ClassName
	if className == "" {
		className = "Module"
	}
	version := meta.Version
	if version == "" {
		version = "0.0.0"
	}

	var sb strings.Builder

	g.writeHeader(&sb, result, meta)

	sb.WriteString("/// Package version\n")
	sb.WriteString("const packageVersion = " + util.DartStringLiteral(version) + ";\n\n")
	sb.WriteString("/// Package source code\n")
	sb.WriteString("const packageSource = " + RawLiteral(meta.Source) + ";\n\n")

	fmt.Fprintf(&sb, "/// {@template %s}\n", className)
	fmt.Fprintf(&sb, "/// %s class\n", className)
	sb.WriteString("/// {@endtemplate}\n")
	fmt.Fprintf(&sb, "class %s {\n", className)
	fmt.Fprintf(&sb, "  /// {@macro %s}\n", className)
	fmt.Fprintf(&sb, "  %s._(this._module);\n\n", className)
	sb.WriteString("  /// Module instance\n")
	sb.WriteString("  final Module _module;\n\n")

	writeFactory(&sb, className, result.Init)

	sb.WriteString("\n  /// Disposes of the runtime instance\n")
	sb.WriteString("  void dispose() {\n")
	sb.WriteString("    GlobeRuntime.instance.dispose();\n")
	sb.WriteString("  }\n")

	for _, fn := range result.Functions {
		sb.WriteString("\n")
		if fn.Streaming {
			writeStreamMethod(&sb, fn)
		} else {
			writeSingleMethod(&sb, fn)
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

func (g *Generator) writeHeader(sb *strings.Builder, result *sdkgen.ExtractionResult, meta sdkgen.Meta) {
	sb.WriteString("// GENERATED FILE — DO NOT MODIFY BY HAND\n")
	tool := g.Tool
	if tool == "" {
		tool = "sdkgen"
	}
	sb.WriteString("// This file was generated by " + tool + "\n")
	if meta.SourceFile != "" {
		sb.WriteString("// Source: " + meta.SourceFile + "\n")
	}
	for _, line := range meta.Stamp {
		sb.WriteString("// " + line + "\n")
	}
	sb.WriteString("// ignore_for_file: unused_import\n\n")

	sb.WriteString("import 'dart:async';\n")
	sb.WriteString("import 'dart:convert';\n")
	if needsTypedData(result) {
		sb.WriteString("import 'dart:typed_data';\n")
	}
	sb.WriteString("import '" + runtimeImport + "';\n\n")
}

func needsTypedData(result *sdkgen.ExtractionResult) bool {
	for _, a := range result.Init.Args {
		if usesTypedData(a.Type) {
			return true
		}
	}
	for _, fn := range result.Functions {
		if usesTypedData(fn.Returns) {
			return true
		}
		for _, a := range fn.Args {
			if usesTypedData(a.Type) {
				return true
			}
		}
	}
	return false
}

// writeFactory emits create(): every init argument is an optional named
// parameter and is null-guarded before conversion.
func writeFactory(sb *strings.Builder, className string, init sdkgen.InitSpec) {
	description := init.Description
	if description == "" {
		description = fmt.Sprintf("Create instance of %s class", className)
	}
	sb.WriteString(FormatDoc(description, indent))
	sb.WriteString(formatParamDocs(init.Args, indent))

	params := make([]string, 0, len(init.Args))
	register := make([]string, 0, len(init.Args))
	for _, a := range init.Args {
		params = append(params, TypeName(a.Type)+"? "+a.Name)
		register = append(register, a.Name+"?.toFFIType")
	}
	createArgs := ""
	if len(params) > 0 {
		createArgs = "{" + strings.Join(params, ", ") + "}"
	}

	fmt.Fprintf(sb, "  static Future<%s> create(%s) async {\n", className, createArgs)
	sb.WriteString("    const module = InlinedModule(\n")
	fmt.Fprintf(sb, "      name: '%s',\n", className)
	sb.WriteString("      sourceCode: packageSource,\n")
	sb.WriteString("    );\n\n")
	fmt.Fprintf(sb, "    await module.register(args: [%s]);\n", strings.Join(register, ", "))
	fmt.Fprintf(sb, "    return %s._(module);\n", className)
	sb.WriteString("  }\n")
}

func writeMethodDocs(sb *strings.Builder, fn sdkgen.FunctionSpec, returnType string) {
	description := fn.Description
	if description == "" {
		description = fn.DartName + " function"
	}
	sb.WriteString(FormatDoc(description, indent))
	sb.WriteString(formatParamDocs(fn.Args, indent))
	sb.WriteString(formatReturnDoc(fn.ReturnDescription, returnType, fn.Returns.IsVoid(), indent))
}

func methodSignature(fn sdkgen.FunctionSpec) (params, callArgs string) {
	p := make([]string, 0, len(fn.Args))
	c := make([]string, 0, len(fn.Args))
	for _, a := range fn.Args {
		p = append(p, TypeName(a.Type)+" "+a.Name)
		c = append(c, a.Name+".toFFIType")
	}
	return strings.Join(p, ", "), strings.Join(c, ", ")
}

// writeSingleMethod emits the Future/Completer control flow: the first
// reply completes the call.
func writeSingleMethod(sb *strings.Builder, fn sdkgen.FunctionSpec) {
	dartType := TypeName(fn.Returns)
	writeMethodDocs(sb, fn, "Future<"+dartType+">")
	params, callArgs := methodSignature(fn)

	fmt.Fprintf(sb, "  Future<%s> %s(%s) async {\n", dartType, fn.DartName, params)
	fmt.Fprintf(sb, "    final completer = Completer<%s>();\n\n", dartType)
	sb.WriteString("    _module.callFunction(\n")
	fmt.Fprintf(sb, "      %s,\n", util.DartStringLiteral(fn.Name))
	fmt.Fprintf(sb, "      args: [%s],\n", callArgs)
	sb.WriteString("      onData: (data) {\n")
	sb.WriteString("        if (data.hasError()) {\n")
	sb.WriteString("          completer.completeError(data.error);\n")
	sb.WriteString("        } else {\n")
	if fn.Returns.IsVoid() {
		sb.WriteString("          completer.complete();\n")
	} else {
		fmt.Fprintf(sb, "          final value = %s;\n", payloadAccess(fn.Returns))
		fmt.Fprintf(sb, "          completer.complete(%s);\n", decodeExpr(fn.Returns, "value"))
	}
	sb.WriteString("        }\n")
	sb.WriteString("        return true;\n")
	sb.WriteString("      },\n")
	sb.WriteString("    );\n\n")
	sb.WriteString("    return completer.future;\n")
	sb.WriteString("  }\n")
}

// writeStreamMethod emits the Stream/StreamController control flow: data
// replies are added, an error or the done reply closes the stream.
func writeStreamMethod(sb *strings.Builder, fn sdkgen.FunctionSpec) {
	dartType := TypeName(fn.Returns)
	writeMethodDocs(sb, fn, "Stream<"+dartType+">")
	params, callArgs := methodSignature(fn)

	fmt.Fprintf(sb, "  Stream<%s> %s(%s) {\n", dartType, fn.DartName, params)
	fmt.Fprintf(sb, "    final controller = StreamController<%s>();\n\n", dartType)
	sb.WriteString("    _module.callFunction(\n")
	fmt.Fprintf(sb, "      %s,\n", util.DartStringLiteral(fn.Name))
	fmt.Fprintf(sb, "      args: [%s],\n", callArgs)
	sb.WriteString("      onData: (data) {\n")
	sb.WriteString("        if (data.hasError()) {\n")
	sb.WriteString("          controller.addError(data.error);\n")
	sb.WriteString("          controller.close();\n")
	sb.WriteString("          return true;\n")
	sb.WriteString("        }\n\n")
	sb.WriteString("        if (data.hasData()) {\n")
	if fn.Returns.IsVoid() {
		sb.WriteString("          controller.add(null);\n")
	} else {
		fmt.Fprintf(sb, "          final value = %s;\n", payloadAccess(fn.Returns))
		fmt.Fprintf(sb, "          controller.add(%s);\n", decodeExpr(fn.Returns, "value"))
	}
	sb.WriteString("        }\n\n")
	sb.WriteString("        if (data.done) {\n")
	sb.WriteString("          controller.close();\n")
	sb.WriteString("          return true;\n")
	sb.WriteString("        }\n\n")
	sb.WriteString("        return false; // Keep listening for more data\n")
	sb.WriteString("      },\n")
	sb.WriteString("    );\n\n")
	sb.WriteString("    return controller.stream;\n")
	sb.WriteString("  }\n")
}
