package dart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/sdkgen/dts"
	"github.com/teranos/sdkgen/sdkgen"
)

// =============================================================================
// Test helpers
// =============================================================================

func generate(t *testing.T, declaration string, meta sdkgen.Meta) string {
	t.Helper()
	file, err := dts.Parse("sdk.d.ts", declaration)
	require.NoError(t, err)
	result, err := sdkgen.Extract(file, sdkgen.ExtractOptions{})
	require.NoError(t, err)
	return NewGenerator().GenerateFile(result, meta)
}

// method returns the generated text of one method, from its signature to
// its closing brace.
func method(t *testing.T, code, signature string) string {
	t.Helper()
	start := strings.Index(code, signature)
	require.GreaterOrEqual(t, start, 0, "signature %q not found in:\n%s", signature, code)
	end := strings.Index(code[start:], "\n  }\n")
	require.GreaterOrEqual(t, end, 0)
	return code[start : start+end]
}

const scenarioA = `declare const _default: Sdk<[apiKey: string], ModuleState, {
  hello: (state: ModuleState, name: string, callId: number) => DartReturn<string>;
}>;
export { _default as default };
`

// =============================================================================
// Testable properties
// =============================================================================

func TestGenerateScenarioA(t *testing.T) {
	code := generate(t, scenarioA, sdkgen.Meta{ClassName: "Greeter", Version: "1.2.3", Source: "export default {};"})

	assert.Contains(t, code, "static Future<Greeter> create({String? apiKey}) async {")
	assert.Contains(t, code, "await module.register(args: [apiKey?.toFFIType]);")
	assert.Contains(t, code, "name: 'Greeter',")
	assert.Contains(t, code, "const packageVersion = '1.2.3';")
	assert.Contains(t, code, "const packageSource = r'''\nexport default {};\n''';")

	hello := method(t, code, "Future<String> hello(String name) async {")
	assert.Contains(t, hello, "final completer = Completer<String>();")
	assert.Contains(t, hello, "'hello',")
	assert.Contains(t, hello, "args: [name.toFFIType],")
	assert.Contains(t, hello, "final value = data.data;")
	assert.Contains(t, hello, "completer.complete(utf8.decode(value));")
	assert.Contains(t, hello, "completer.completeError(data.error);")
	assert.NotContains(t, hello, "StreamController")
}

func TestGenerateScenarioD(t *testing.T) {
	code := generate(t, `declare const _default: Sdk<[], {}, {
  ping: (state: {}, callId: number) => void;
}>;
export { _default as default };`, sdkgen.Meta{ClassName: "Pinger"})

	assert.Contains(t, code, "static Future<Pinger> create() async {")
	assert.Contains(t, code, "await module.register(args: []);")
	assert.Contains(t, code, "const packageVersion = '0.0.0';")

	ping := method(t, code, "Future<void> ping() async {")
	assert.Contains(t, ping, "args: [],")
	assert.Contains(t, ping, "completer.complete();")
	assert.NotContains(t, ping, "final value")
	assert.NotContains(t, code, "**Returns:**")
}

func TestGenerateRoundTripNaming(t *testing.T) {
	code := generate(t, `declare const _default: Sdk<[api_key: string], {}, {
  get_user_data: (state: {}, user_id: string, callId: number) => DartReturn<DartMap>;
}>;
export { _default as default };`, sdkgen.Meta{ClassName: "Users"})

	assert.Contains(t, code, "create({String? apiKey})")
	fn := method(t, code, "Future<Map<dynamic, dynamic>> getUserData(String userId) async {")
	assert.Contains(t, fn, "'get_user_data',")
	assert.Contains(t, fn, "args: [userId.toFFIType],")
	assert.Contains(t, fn, "final value = data.data.unpack();")
	assert.Contains(t, fn, "completer.complete(value as Map<dynamic, dynamic>);")
}

func TestGenerateStreamingDispatch(t *testing.T) {
	code := generate(t, `declare const _default: Sdk<[], {}, {
  events: (state: {}, topic: string, callId: number) => DartStreamReturn<DartMap>;
  once: (state: {}, callId: number) => DartReturn<DartMap>;
}>;
export { _default as default };`, sdkgen.Meta{ClassName: "Events"})

	events := method(t, code, "Stream<Map<dynamic, dynamic>> events(String topic) {")
	assert.Contains(t, events, "final controller = StreamController<Map<dynamic, dynamic>>();")
	assert.Contains(t, events, "controller.addError(data.error);")
	assert.Contains(t, events, "if (data.hasData()) {")
	assert.Contains(t, events, "controller.add(value as Map<dynamic, dynamic>);")
	assert.Contains(t, events, "if (data.done) {")
	assert.Contains(t, events, "return false; // Keep listening for more data")
	assert.Contains(t, events, "return controller.stream;")
	assert.NotContains(t, events, "Completer")

	once := method(t, code, "Future<Map<dynamic, dynamic>> once() async {")
	assert.NotContains(t, once, "StreamController")
	assert.NotContains(t, once, "return false")
}

// =============================================================================
// Decoding
// =============================================================================

func TestGenerateDecodeRules(t *testing.T) {
	code := generate(t, `declare const _default: Sdk<[], {}, {
  text: (s: S, id: number) => DartReturn<string>;
  bytes: (s: S, id: number) => DartReturn<Uint8Array>;
  ints: (s: S, id: number) => DartReturn<DartInt[]>;
  tags: (s: S, id: number) => DartReturn<DartSet>;
  names: (s: S, id: number) => DartReturn<string[]>;
  grid: (s: S, id: number) => DartReturn<number[][]>;
  count: (s: S, id: number) => DartReturn<number>;
  ratio: (s: S, id: number) => DartReturn<DartDouble>;
  anything: (s: S, id: number) => Promise<void>;
  ticks: (s: S, id: number) => DartStreamReturn<void>;
}>;
export { _default as default };`, sdkgen.Meta{ClassName: "Decoders"})

	tests := []struct {
		signature string
		access    string
		result    string
	}{
		{"Future<String> text()", "data.data;", "utf8.decode(value)"},
		{"Future<Uint8List> bytes()", "data.data;", "Uint8List.fromList(value)"},
		{"Future<List<int>> ints()", "data.data;", "complete(value)"},
		{"Future<Set<dynamic>> tags()", "data.data.unpack();", "Set.from(value)"},
		{"Future<List<String>> names()", "data.data.unpack();", "(value as List).map((e0) => e0 as String).toList()"},
		{"Future<List<List<num>>> grid()", "data.data.unpack();", "(value as List).map((e0) => (e0 as List).map((e1) => e1 as num).toList()).toList()"},
		{"Future<num> count()", "data.data.unpack();", "value as num"},
		{"Future<double> ratio()", "data.data.unpack();", "value as double"},
		{"Future<dynamic> anything()", "data.data.unpack();", "complete(value)"},
		{"Stream<void> ticks()", "", "controller.add(null)"},
	}

	for _, tt := range tests {
		t.Run(tt.signature, func(t *testing.T) {
			body := method(t, code, tt.signature)
			if tt.access != "" {
				assert.Contains(t, body, "final value = "+tt.access)
			}
			assert.Contains(t, body, tt.result)
		})
	}

	assert.Contains(t, code, "import 'dart:typed_data';")
}

func TestGenerateTypedDataImportOnlyWhenNeeded(t *testing.T) {
	code := generate(t, scenarioA, sdkgen.Meta{ClassName: "Greeter"})
	assert.NotContains(t, code, "dart:typed_data")
	assert.Contains(t, code, "import 'dart:async';\nimport 'dart:convert';\nimport 'package:globe_runtime/globe_runtime.dart';")
}

// =============================================================================
// Documentation
// =============================================================================

func TestGenerateDocs(t *testing.T) {
	code := generate(t, `/**
 * Weather client.
 */
declare const _default: Sdk<[api_key: string, units?: string], {}, {
  /**
   * Fetches the forecast for a city. This description is deliberately long so that it wraps past eighty columns.
   *
   * Second paragraph.
   * @param city - City name
   * @returns The forecast
   */
  forecast: (state: {}, city: string, days: number, callId: number) => DartReturn<DartMap>;
  current: (state: {}, callId: number) => DartReturn<number>;
}>;
interface Init {
  /**
   * @param api_key - Service key
   */
  init(api_key: string, units?: string): void;
}
export { _default as default };`, sdkgen.Meta{ClassName: "Weather"})

	assert.Contains(t, code, "  /// Weather client.\n  ///\n  /// **Parameters:**\n  /// * [apiKey]: Service key\n  static Future<Weather> create(")
	assert.NotContains(t, code, "[units]")

	assert.Contains(t, code, "  /// Fetches the forecast for a city. This description is deliberately long so that\n  /// it wraps past eighty columns.\n  ///\n  /// Second paragraph.\n")
	assert.Contains(t, code, "  /// **Parameters:**\n  /// * [city]: City name\n  ///\n  /// **Returns:** The forecast\n  Future<Map<dynamic, dynamic>> forecast(String city, num days) async {")
	assert.Contains(t, code, "  /// current function\n  ///\n  /// **Returns:** Future<num>\n  Future<num> current() async {")
}

func TestGenerateDefaultFactoryDoc(t *testing.T) {
	code := generate(t, scenarioA, sdkgen.Meta{ClassName: "Greeter"})
	assert.Contains(t, code, "  /// Create instance of Greeter class\n  static Future<Greeter> create(")
	assert.Contains(t, code, "  /// hello function\n  ///\n  /// **Returns:** Future<String>\n")
}

func TestFormatDoc(t *testing.T) {
	assert.Equal(t, "", FormatDoc("", 2))
	assert.Equal(t, "", FormatDoc("\n\n  \n\n", 2))
	assert.Equal(t, "/// one\n///\n/// two\n", FormatDoc("one\n\ntwo", 0))

	long := strings.Repeat("x", 90)
	assert.Equal(t, "  /// a\n  /// "+long+"\n  /// b\n", FormatDoc("a "+long+" b", 2))
}

// =============================================================================
// Header and totality
// =============================================================================

func TestGenerateHeader(t *testing.T) {
	code := generate(t, scenarioA, sdkgen.Meta{
		ClassName:  "Greeter",
		SourceFile: "src/greeter.ts",
		Stamp:      []string{"Source version: abc1234"},
	})

	assert.True(t, strings.HasPrefix(code, "// GENERATED FILE — DO NOT MODIFY BY HAND\n// This file was generated by sdkgen\n"))
	assert.Contains(t, code, "// Source: src/greeter.ts\n// Source version: abc1234\n// ignore_for_file: unused_import\n")
}

func TestGenerateIsTotal(t *testing.T) {
	code := NewGenerator().GenerateFile(nil, sdkgen.Meta{})
	assert.Contains(t, code, "class Module {")
	assert.Contains(t, code, "static Future<Module> create() async {")
	assert.True(t, strings.HasSuffix(code, "}\n"))
}

func TestGenerateIsDeterministic(t *testing.T) {
	meta := sdkgen.Meta{ClassName: "Greeter", Version: "1.0.0", Source: "x"}
	assert.Equal(t, generate(t, scenarioA, meta), generate(t, scenarioA, meta))
}

func TestGeneratorMetadata(t *testing.T) {
	var g sdkgen.Generator = NewGenerator()
	assert.Equal(t, "dart", g.Language())
	assert.Equal(t, "_source.dart", g.FileSuffix())
}
