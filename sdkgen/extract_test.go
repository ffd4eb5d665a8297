package sdkgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/sdkgen/dts"
	"github.com/teranos/sdkgen/errors"
)

func mustExtract(t *testing.T, src string) *ExtractionResult {
	t.Helper()
	file, err := dts.Parse("sdk.d.ts", src)
	require.NoError(t, err)
	result, err := Extract(file, ExtractOptions{})
	require.NoError(t, err)
	return result
}

func extractErr(t *testing.T, src string) error {
	t.Helper()
	file, err := dts.Parse("sdk.d.ts", src)
	require.NoError(t, err)
	_, err = Extract(file, ExtractOptions{})
	require.Error(t, err)
	return err
}

const greeterDeclaration = `import { DartMap, DartReturn, DartStreamReturn, Sdk } from "@globe/runtime_types";

//#region src/sdk.d.ts
type ModuleState = {
  apiKey: string;
};
/**
 * Greeter SDK.
 */
declare const _default: Sdk<[apiKey: string], ModuleState, {
  /**
   * Greets someone.
   * @param name - Who to greet
   * @returns The greeting
   */
  hello: (state: ModuleState, name: string, callId: number) => DartReturn<string>;
  stream_events: (state: ModuleState, callId: number) => DartStreamReturn<DartMap>;
}>;
export { _default as default };
`

func TestExtractScenarioA(t *testing.T) {
	result := mustExtract(t, greeterDeclaration)

	assert.Equal(t, ShapeTuple, result.Shape)
	require.Len(t, result.Init.Args, 1)
	assert.Equal(t, ArgumentSpec{Name: "apiKey", Declared: "apiKey", Type: String}, result.Init.Args[0])
	assert.Equal(t, "Greeter SDK.", result.Init.Description)

	require.Len(t, result.Functions, 2)
	hello := result.Functions[0]
	assert.Equal(t, "hello", hello.Name)
	assert.Equal(t, "hello", hello.DartName)
	assert.False(t, hello.Streaming)
	assert.Equal(t, String, hello.Returns)
	assert.Equal(t, "Greets someone.", hello.Description)
	assert.Equal(t, "The greeting", hello.ReturnDescription)
	require.Len(t, hello.Args, 1)
	assert.Equal(t, ArgumentSpec{Name: "name", Declared: "name", Type: String, Description: "Who to greet"}, hello.Args[0])
}

func TestExtractStreamingFunction(t *testing.T) {
	result := mustExtract(t, greeterDeclaration)

	stream := result.Functions[1]
	assert.Equal(t, "stream_events", stream.Name)
	assert.Equal(t, "streamEvents", stream.DartName)
	assert.True(t, stream.Streaming)
	assert.Equal(t, UntypedMap, stream.Returns)
	assert.Empty(t, stream.Args)
}

func TestExtractFixedParameterStripping(t *testing.T) {
	src := `declare const _default: Sdk<[], {}, {
  none: (state: S, callId: number) => void;
  one: (state: S, a: string, callId: number) => void;
  many: (state: S, a: string, b: number, c: boolean, d: Uint8Array, callId: number) => void;
}>;
export default _default;
`
	result := mustExtract(t, src)
	require.Len(t, result.Functions, 3)

	assert.Empty(t, result.Functions[0].Args)
	assert.Len(t, result.Functions[1].Args, 1)

	many := result.Functions[2]
	require.Len(t, many.Args, 4)
	var names []string
	for _, a := range many.Args {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, names)
	assert.Equal(t, BinaryBuffer, many.Args[3].Type)
}

func TestExtractScenarioD(t *testing.T) {
	result := mustExtract(t, `declare const _default: Sdk<[], {}, {
  ping: (state: {}, callId: number) => DartReturn<void>;
}>;
export { _default as default };`)

	assert.Empty(t, result.Init.Args)
	require.Len(t, result.Functions, 1)
	assert.Empty(t, result.Functions[0].Args)
	assert.Equal(t, Void, result.Functions[0].Returns)
}

func TestExtractReturnTypes(t *testing.T) {
	src := `type Alias = DartReturn<number>;
type Inlined = void & { __dartStreamReturnType?: string };
declare const _default: Sdk<[], {}, {
  plainVoid: (s: S, id: number) => void;
  deferred: (s: S, id: number) => Promise<void>;
  single: (s: S, id: number) => DartReturn<boolean>;
  qualified: (s: S, id: number) => runtime.DartStreamReturn<string[]>;
  setMarker: (s: S, id: number) => DartReturn<DartSet>;
  listMarker: (s: S, id: number) => DartStreamReturn<DartList>;
  bytes: (s: S, id: number) => DartReturn<Uint8Array>;
  ints: (s: S, id: number) => DartReturn<DartInt[]>;
  aliased: (s: S, id: number) => Alias;
  inlined: (s: S, id: number) => Inlined;
  generic: <T = DartStreamReturn<DartMap>>(s: S, id: number) => T;
  genericPlain: <T = string>(s: S, id: number) => T;
  wrongArity: (s: S, id: number) => DartReturn<string, number>;
  untyped: (s: S, id: number) => any;
}>;
export default _default;
`
	result := mustExtract(t, src)

	tests := []struct {
		name      string
		returns   TypeCategory
		streaming bool
	}{
		{"plainVoid", Void, false},
		{"deferred", Dynamic, false},
		{"single", Boolean, false},
		{"qualified", ListOf(String), true},
		{"setMarker", UntypedSet, false},
		{"listMarker", UntypedList, true},
		{"bytes", BinaryBuffer, false},
		{"ints", ListOf(Integer), false},
		{"aliased", Number, false},
		{"inlined", String, true},
		{"generic", UntypedMap, true},
		{"genericPlain", String, false},
		{"wrongArity", Dynamic, false},
		{"untyped", Dynamic, false},
	}

	require.Len(t, result.Functions, len(tests))
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := result.Functions[i]
			assert.Equal(t, tt.name, fn.Name)
			assert.True(t, tt.returns.Equal(fn.Returns), "returns %s, want %s", fn.Returns, tt.returns)
			assert.Equal(t, tt.streaming, fn.Streaming)
		})
	}
}

func TestExtractInitFunctionShape(t *testing.T) {
	src := `/**
 * Creates the client.
 * @param base_url - Where to connect
 */
declare function init(base_url: string, retries?: number): State;
declare const sdk: Sdk<typeof init, {
  call: (state: State, path: string, callId: number) => DartReturn<DartMap>;
}>;
export default sdk;
`
	result := mustExtract(t, src)

	assert.Equal(t, ShapeInitFunction, result.Shape)
	assert.Equal(t, "Creates the client.", result.Init.Description)
	require.Len(t, result.Init.Args, 2)
	assert.Equal(t, ArgumentSpec{Name: "baseUrl", Declared: "base_url", Type: String, Description: "Where to connect"}, result.Init.Args[0])
	assert.Equal(t, "retries", result.Init.Args[1].Name)
	assert.Equal(t, Number, result.Init.Args[1].Type)
	require.Len(t, result.Functions, 1)
}

func TestExtractInlineInitFunctionShape(t *testing.T) {
	result := mustExtract(t, `export declare const sdk: SdkDefinition<(token: string | undefined) => State, Fns>;
type Fns = { run: (state: State, callId: number) => void };`)

	assert.Equal(t, ShapeInitFunction, result.Shape)
	require.Len(t, result.Init.Args, 1)
	assert.Equal(t, String, result.Init.Args[0].Type)
	require.Len(t, result.Functions, 1)
	assert.Equal(t, "run", result.Functions[0].Name)
}

func TestExtractInitTupleVariants(t *testing.T) {
	src := `type InitArgs = [string, count?: number, ...tags: string[]];
declare const _default: Sdk<InitArgs, {}, {}>;
export { _default as default };
`
	result := mustExtract(t, src)
	require.Len(t, result.Init.Args, 3)
	assert.Equal(t, "arg0", result.Init.Args[0].Name)
	assert.Equal(t, "count", result.Init.Args[1].Name)
	assert.Equal(t, "tags", result.Init.Args[2].Name)
	assert.Equal(t, ListOf(String), result.Init.Args[2].Type)
	assert.Empty(t, result.Functions)
}

func TestExtractInitDocsFromInitMember(t *testing.T) {
	src := `interface Module {
  /**
   * Sets up the module.
   * @param api_key - The key
   */
  init(api_key: string): void;
}
/** SDK */
declare const _default: Sdk<[api_key: string], {}, {}>;
export { _default as default };
`
	result := mustExtract(t, src)
	assert.Equal(t, "Sets up the module.", result.Init.Description)
	require.Len(t, result.Init.Args, 1)
	assert.Equal(t, "apiKey", result.Init.Args[0].Name)
	assert.Equal(t, "The key", result.Init.Args[0].Description)
}

func TestExtractRestParameterFlattening(t *testing.T) {
	result := mustExtract(t, `declare const _default: Sdk<[], {}, {
  send: (state: S, ...args: [to: string, body: Uint8Array, callId: number]) => DartReturn<boolean>;
}>;
export { _default as default };`)

	require.Len(t, result.Functions, 1)
	args := result.Functions[0].Args
	require.Len(t, args, 2)
	assert.Equal(t, "to", args[0].Name)
	assert.Equal(t, BinaryBuffer, args[1].Type)
}

func TestExtractSkipsNonFunctionMembers(t *testing.T) {
	result := mustExtract(t, `declare const _default: Sdk<[], {}, {
  version: string;
  method(state: S, callId: number): void;
  [key: string]: unknown;
  ok: (state: S, callId: number) => void;
}>;
export { _default as default };`)

	require.Len(t, result.Functions, 1)
	assert.Equal(t, "ok", result.Functions[0].Name)
}

func TestExtractExportResolution(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "export modifier",
			src:  "export declare const client: Sdk<[a: string], {}, {}>;",
			want: "a",
		},
		{
			name: "default wins over named export",
			src: `export declare const named: Sdk<[a: string], {}, {}>;
declare const main: Sdk<[b: string], {}, {}>;
export default main;`,
			want: "b",
		},
		{
			name: "export list",
			src: `declare const local: Sdk<[c: string], {}, {}>;
export { local as client };`,
			want: "c",
		},
		{
			name: "export assignment",
			src: `declare const local: Sdk<[d: string], {}, {}>;
export = local;`,
			want: "d",
		},
		{
			name: "aliased sdk type",
			src: `type Client = Sdk<[e: string], {}, {}>;
export declare const client: Client;`,
			want: "e",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := mustExtract(t, tt.src)
			require.Len(t, result.Init.Args, 1)
			assert.Equal(t, tt.want, result.Init.Args[0].Name)
		})
	}
}

func TestExtractMalformed(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
	}{
		{
			name:    "no sdk",
			src:     "export declare function helper(): void;",
			message: "no exported SDK definition",
		},
		{
			name:    "not exported",
			src:     "declare const local: Sdk<[], {}, {}>;",
			message: "is not exported",
		},
		{
			name: "ambiguous",
			src: `export declare const a: Sdk<[], {}, {}>;
export declare const b: Sdk<[], {}, {}>;`,
			message: "ambiguous",
		},
		{
			name:    "two type arguments with tuple",
			src:     "export declare const a: Sdk<[], {}>;",
			message: "has 2 type arguments",
		},
		{
			name:    "no init signature",
			src:     "export declare const a: Sdk<string, {}, {}>;",
			message: "do not describe an init signature",
		},
		{
			name:    "function map not literal",
			src:     "export declare const a: Sdk<[], {}, Record<string, Function>>;",
			message: "is not a type literal",
		},
		{
			name:    "too few parameters",
			src:     "export declare const a: Sdk<[], {}, { f: (state: S) => void }>;",
			message: "has 1 parameters",
		},
		{
			name: "duplicate method names",
			src: `export declare const a: Sdk<[], {}, {
  get_user: (s: S, id: number) => void;
  "get-user": (s: S, id: number) => void;
}>;`,
			message: `both map to method "getUser"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := extractErr(t, tt.src)
			assert.True(t, errors.IsMalformedSdkDeclaration(err), "unexpected error type: %v", err)
			assert.Contains(t, err.Error(), tt.message)
			assert.Contains(t, err.Error(), "sdk.d.ts:")
			assert.NotEmpty(t, errors.GetAllHints(err))
		})
	}
}

func TestHasSdkDeclaration(t *testing.T) {
	file, err := dts.Parse("a.d.ts", greeterDeclaration)
	require.NoError(t, err)
	assert.True(t, HasSdkDeclaration(file))

	file, err = dts.Parse("b.d.ts", "declare const local: Sdk<[], {}, {}>;")
	require.NoError(t, err)
	assert.True(t, HasSdkDeclaration(file))

	file, err = dts.Parse("c.d.ts", "export declare function helper(): void;")
	require.NoError(t, err)
	assert.False(t, HasSdkDeclaration(file))
}

func TestExtractSemanticOption(t *testing.T) {
	src := `type Lang = "en" | "fr";
declare const _default: Sdk<[lang: Lang | "de"], {}, {}>;
export { _default as default };`
	file, err := dts.Parse("sdk.d.ts", src)
	require.NoError(t, err)

	syntactic, err := Extract(file, ExtractOptions{})
	require.NoError(t, err)
	assert.Equal(t, Dynamic, syntactic.Init.Args[0].Type)

	semantic, err := Extract(file, ExtractOptions{Semantic: true})
	require.NoError(t, err)
	assert.Equal(t, String, semantic.Init.Args[0].Type)
}
