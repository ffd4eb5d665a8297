package pipeline

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/tools/txtar"

	"github.com/teranos/sdkgen/errors"
	"github.com/teranos/sdkgen/logger"
)

// =============================================================================
// Fixtures
// =============================================================================

const greeterDeclaration = `declare const _default: Sdk<[apiKey: string], {}, {
  hello: (state: {}, name: string, callId: number) => DartReturn<string>;
}>;
export { _default as default };
`

const batchArchive = `
-- sdk/greeter.d.ts --
declare const _default: Sdk<[apiKey: string], {}, {
  hello: (state: {}, name: string, callId: number) => DartReturn<string>;
}>;
export { _default as default };
-- sdk/greeter.mjs --
export default { hello() {} };
-- sdk/broken.d.ts --
declare const sdk: Sdk<[apiKey: string]>;
export { sdk };
-- sdk/broken.mjs --
export default {};
-- sdk/nested/pinger.d.ts --
declare const _default: Sdk<[], {}, {
  ping: (state: {}, callId: number) => void;
}>;
export { _default as default };
-- sdk/nested/pinger.mjs --
export default { ping() {} };
-- sdk/util.d.ts --
export declare function helper(): void;
-- sdk/util.mjs --
export function helper() {}
-- sdk/node_modules/dep/index.d.ts --
declare const _default: Sdk<[], {}, {}>;
-- sdk/node_modules/dep/index.mjs --
export default {};
-- sdk/.cache/stale.d.ts --
declare const _default: Sdk<[], {}, {}>;
-- sdk/.cache/stale.mjs --
export default {};
`

// writeArchive materializes a txtar archive into a fresh directory.
func writeArchive(t *testing.T, archive string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range txtar.Parse([]byte(archive)).Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, f.Data, 0644))
	}
	return dir
}

// useTestLogger routes the global logger to the test output.
func useTestLogger(t *testing.T) {
	t.Helper()
	previous := logger.Logger
	logger.Logger = zaptest.NewLogger(t).Sugar()
	t.Cleanup(func() { logger.Logger = previous })
}

func resultFor(t *testing.T, report *Report, suffix string) FileResult {
	t.Helper()
	for _, res := range report.Results {
		if strings.HasSuffix(filepath.ToSlash(res.Input), suffix) {
			return res
		}
	}
	require.Failf(t, "no result", "no result for %s", suffix)
	return FileResult{}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// =============================================================================
// Batch runs
// =============================================================================

func TestRunContinuesPastMalformedFile(t *testing.T) {
	useTestLogger(t)
	dir := writeArchive(t, batchArchive)
	out := filepath.Join(dir, "out")

	d := NewDriver(Options{InputDir: filepath.Join(dir, "sdk"), OutputDir: out, PackageVersion: "1.2.3"})
	report, err := d.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Results, 4)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "1.2.3", report.Version)

	broken := resultFor(t, report, "sdk/broken.mjs")
	assert.Equal(t, StatusFailed, broken.Status)
	assert.True(t, errors.IsMalformedSdkDeclaration(broken.Err))
	assert.NoFileExists(t, filepath.Join(out, "broken_source.dart"))

	greeter := resultFor(t, report, "sdk/greeter.mjs")
	assert.Equal(t, StatusGenerated, greeter.Status)
	assert.Equal(t, "Greeter", greeter.Class)
	assert.Equal(t, filepath.Join(out, "greeter_source.dart"), greeter.Output)

	code := readFile(t, greeter.Output)
	assert.Contains(t, code, "const packageVersion = '1.2.3';")
	assert.Contains(t, code, "export default { hello() {} };")
	assert.Contains(t, code, "Future<String> hello(String name) async {")

	pinger := resultFor(t, report, "sdk/nested/pinger.mjs")
	assert.Equal(t, StatusGenerated, pinger.Status)
	assert.FileExists(t, filepath.Join(out, "nested", "pinger_source.dart"))

	util := resultFor(t, report, "sdk/util.mjs")
	assert.Equal(t, StatusSkipped, util.Status)
	assert.Equal(t, "no SDK declaration", util.Reason)

	assert.Equal(t, 2, report.Count(StatusGenerated))
	assert.Equal(t, 1, report.Count(StatusSkipped))
	assert.Equal(t, 1, report.Count(StatusFailed))
	assert.True(t, report.HasFailures())
}

func TestRunExplicitFiles(t *testing.T) {
	useTestLogger(t)
	dir := writeArchive(t, batchArchive)
	out := filepath.Join(dir, "out")

	d := NewDriver(Options{
		Files: []string{
			filepath.Join(dir, "sdk", "util.d.ts"),
			filepath.Join(dir, "sdk", "missing.ts"),
			filepath.Join(dir, "sdk", "greeter.d.ts"),
		},
		OutputDir: out,
	})
	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	missing := resultFor(t, report, "sdk/missing.ts")
	assert.Equal(t, StatusFailed, missing.Status)
	assert.True(t, errors.IsMissingInputArtifact(missing.Err))

	// explicit inputs without an SDK are failures, not skips
	util := resultFor(t, report, "sdk/util.mjs")
	assert.Equal(t, StatusFailed, util.Status)
	assert.True(t, errors.IsMalformedSdkDeclaration(util.Err))

	greeter := resultFor(t, report, "sdk/greeter.mjs")
	assert.Equal(t, StatusGenerated, greeter.Status)
	assert.FileExists(t, filepath.Join(out, "greeter_source.dart"))
	assert.Equal(t, DefaultVersion, report.Version)
}

func TestRunDuplicateClassNames(t *testing.T) {
	useTestLogger(t)
	dir := writeArchive(t, `
-- sdk/a/greeter.d.ts --
`+greeterDeclaration+`
-- sdk/a/greeter.mjs --
export default {};
-- sdk/b/greeter.d.ts --
`+greeterDeclaration+`
-- sdk/b/greeter.mjs --
export default {};
`)
	out := filepath.Join(dir, "out")

	report, err := NewDriver(Options{InputDir: filepath.Join(dir, "sdk"), OutputDir: out}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	first := resultFor(t, report, "sdk/a/greeter.mjs")
	second := resultFor(t, report, "sdk/b/greeter.mjs")
	assert.Equal(t, StatusGenerated, first.Status)
	assert.Equal(t, StatusFailed, second.Status)
	assert.True(t, errors.Is(second.Err, errors.ErrDuplicateModule))
	assert.NoFileExists(t, filepath.Join(out, "b", "greeter_source.dart"))
}

func TestRunIsIdempotent(t *testing.T) {
	useTestLogger(t)
	dir := writeArchive(t, batchArchive)
	out := filepath.Join(dir, "out")
	opts := Options{InputDir: filepath.Join(dir, "sdk"), OutputDir: out, PackageVersion: "1.0.0"}

	_, err := NewDriver(opts).Run(context.Background())
	require.NoError(t, err)
	first := readFile(t, filepath.Join(out, "greeter_source.dart"))

	_, err = NewDriver(opts).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, readFile(t, filepath.Join(out, "greeter_source.dart")))
}

func TestRunWithoutInputs(t *testing.T) {
	_, err := NewDriver(Options{}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "--files or --input")

	empty := t.TempDir()
	_, err = NewDriver(Options{InputDir: empty}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no inputs found")
}

func TestRunCancelledStopsBetweenInputs(t *testing.T) {
	dir := writeArchive(t, batchArchive)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewDriver(Options{InputDir: filepath.Join(dir, "sdk"), OutputDir: filepath.Join(dir, "out")}).Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Results)
}

func TestRunInvalidPackageVersion(t *testing.T) {
	dir := writeArchive(t, batchArchive)
	_, err := NewDriver(Options{InputDir: filepath.Join(dir, "sdk"), PackageVersion: "not-a-version"}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "semantic version")
}

// =============================================================================
// Driver collaborators
// =============================================================================

type stubBundler struct {
	declaration string
	source      string
	calls       int
}

func (b *stubBundler) Bundle(_ context.Context, in Input) (*Artifacts, error) {
	b.calls++
	dir, err := os.MkdirTemp("", "stub-bundle-")
	if err != nil {
		return nil, err
	}
	decl := filepath.Join(dir, in.Name+".d.ts")
	src := filepath.Join(dir, in.Name+".mjs")
	if err := os.WriteFile(decl, []byte(b.declaration), 0644); err != nil {
		return nil, err
	}
	if err := os.WriteFile(src, []byte(b.source), 0644); err != nil {
		return nil, err
	}
	return &Artifacts{Declaration: decl, Source: src, cleanup: func() { os.RemoveAll(dir) }}, nil
}

type stubFormatter struct {
	err   error
	paths []string
}

func (f *stubFormatter) Format(_ context.Context, path string) error {
	f.paths = append(f.paths, path)
	return f.err
}

func TestProcessUsesBundlerForSources(t *testing.T) {
	useTestLogger(t)
	dir := writeArchive(t, `
-- src/my-sdk.ts --
export default defineSdk({});
`)
	out := filepath.Join(dir, "out")
	bundler := &stubBundler{declaration: greeterDeclaration, source: "bundled();"}

	d := NewDriver(Options{InputDir: filepath.Join(dir, "src"), OutputDir: out})
	d.Bundler = bundler

	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 1)

	res := report.Results[0]
	require.Equal(t, StatusGenerated, res.Status, "%v", res.Err)
	assert.Equal(t, 1, bundler.calls)
	assert.Equal(t, "MySdk", res.Class)

	code := readFile(t, filepath.Join(out, "my-sdk_source.dart"))
	assert.Contains(t, code, "class MySdk {")
	assert.Contains(t, code, "bundled();")
}

func TestProcessWithoutBundlerFailsForSources(t *testing.T) {
	useTestLogger(t)
	dir := writeArchive(t, `
-- src/plain.ts --
export default {};
`)
	report, err := NewDriver(Options{InputDir: filepath.Join(dir, "src"), OutputDir: filepath.Join(dir, "out")}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, StatusFailed, report.Results[0].Status)
	assert.True(t, errors.Is(report.Results[0].Err, errors.ErrBundleFailed))
	assert.Contains(t, errors.FlattenHints(report.Results[0].Err), "bundler.command")
}

func TestProcessFormatterWarnings(t *testing.T) {
	useTestLogger(t)
	dir := writeArchive(t, batchArchive)

	tests := []struct {
		name     string
		err      error
		warnings int
	}{
		{"success", nil, 0},
		{"failure is a warning", errors.New("dart format: exit status 65"), 1},
		{"unavailable is silent", errors.Wrap(ErrFormatterUnavailable, "dart"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &stubFormatter{err: tt.err}
			d := NewDriver(Options{Files: []string{filepath.Join(dir, "sdk", "greeter.d.ts")}, OutputDir: t.TempDir()})
			d.Formatter = formatter

			report, err := d.Run(context.Background())
			require.NoError(t, err)
			res := report.Results[0]
			assert.Equal(t, StatusGenerated, res.Status)
			assert.Len(t, res.Warnings, tt.warnings)
			assert.Equal(t, []string{res.Output}, formatter.paths)
		})
	}
}

func TestProcessStamp(t *testing.T) {
	useTestLogger(t)
	dir := writeArchive(t, batchArchive)
	out := filepath.Join(dir, "out")

	d := NewDriver(Options{Files: []string{filepath.Join(dir, "sdk", "greeter.d.ts")}, OutputDir: out, Stamp: true})
	var stamped []string
	d.Stamp = func(path string) []string {
		stamped = append(stamped, path)
		return []string{"Source version: abc1234"}
	}

	_, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, stamped, 1)

	code := readFile(t, filepath.Join(out, "greeter_source.dart"))
	assert.Contains(t, code, "// Source: ")
	assert.Contains(t, code, "// Source version: abc1234\n")
}

// =============================================================================
// Discovery
// =============================================================================

func TestDiscoverScan(t *testing.T) {
	dir := writeArchive(t, `
-- in/a.d.mts --
x
-- in/a.d.ts --
x
-- in/a.mjs --
x
-- in/a.js --
x
-- in/b.ts --
x
-- in/c.js --
x
-- in/lonely.d.ts --
x
-- in/readme.md --
x
-- in/deep/d.mts --
x
-- in/node_modules/e.ts --
x
-- in/.hidden/f.ts --
x
`)
	root := filepath.Join(dir, "in")
	disc, err := Discover(nil, root)
	require.NoError(t, err)

	var keys []string
	for _, in := range disc.Inputs {
		keys = append(keys, in.Key())
	}
	assert.Equal(t, []string{"a", "b", "c", "deep/d"}, keys)

	a := disc.Inputs[0]
	assert.True(t, a.Prebuilt())
	assert.Equal(t, filepath.Join(root, "a.d.mts"), a.Declaration)
	assert.Equal(t, filepath.Join(root, "a.mjs"), a.Bundle)
	assert.False(t, a.Explicit)

	b := disc.Inputs[1]
	assert.False(t, b.Prebuilt())
	assert.Equal(t, filepath.Join(root, "b.ts"), b.Entry)

	c := disc.Inputs[2]
	assert.False(t, c.Prebuilt())
	assert.Equal(t, filepath.Join(root, "c.js"), c.Entry)

	assert.Equal(t, "deep", disc.Inputs[3].RelDir)
}

func TestDiscoverExplicit(t *testing.T) {
	dir := writeArchive(t, `
-- x/sdk.d.ts --
x
-- x/sdk.js --
x
-- x/lonely.d.ts --
x
-- x/notes.txt --
x
`)
	disc, err := Discover([]string{
		filepath.Join(dir, "x", "sdk.d.ts"),
		filepath.Join(dir, "x", "sdk.js"),
		filepath.Join(dir, "x", "lonely.d.ts"),
		filepath.Join(dir, "x", "notes.txt"),
		filepath.Join(dir, "x", "gone.ts"),
		filepath.Join(dir, "x"),
	}, "")
	require.NoError(t, err)

	require.Len(t, disc.Inputs, 1, "both halves of a pair name the same input")
	in := disc.Inputs[0]
	assert.True(t, in.Explicit)
	assert.True(t, in.Prebuilt())
	assert.Equal(t, "", in.RelDir)

	require.Len(t, disc.Failed, 4)
	statuses := map[string]Status{}
	for _, res := range disc.Failed {
		statuses[filepath.Base(res.Input)] = res.Status
	}
	assert.Equal(t, map[string]Status{
		"lonely.d.ts": StatusFailed,
		"notes.txt":   StatusSkipped,
		"gone.ts":     StatusFailed,
		"x":           StatusFailed,
	}, statuses)
}

func TestSplitExt(t *testing.T) {
	tests := []struct {
		path string
		stem string
		ext  string
		ok   bool
	}{
		{"a/sdk.d.ts", "a/sdk", ".d.ts", true},
		{"a/sdk.d.mts", "a/sdk", ".d.mts", true},
		{"sdk.mts", "sdk", ".mts", true},
		{"sdk.mjs", "sdk", ".mjs", true},
		{"sdk.ts", "sdk", ".ts", true},
		{"sdk.js", "sdk", ".js", true},
		{".ts", ".ts", "", false},
		{"sdk.json", "sdk.json", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			stem, ext, ok := splitExt(tt.path)
			assert.Equal(t, tt.stem, stem)
			assert.Equal(t, tt.ext, ext)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

// =============================================================================
// Bundling
// =============================================================================

func TestPrebuiltBundler(t *testing.T) {
	a, err := PrebuiltBundler{}.Bundle(context.Background(), Input{Name: "x", Declaration: "x.d.ts", Bundle: "x.mjs"})
	require.NoError(t, err)
	assert.Equal(t, "x.d.ts", a.Declaration)
	assert.Equal(t, "x.mjs", a.Source)
	a.Close()

	_, err = PrebuiltBundler{}.Bundle(context.Background(), Input{Name: "x", Entry: "x.ts"})
	assert.True(t, errors.Is(err, errors.ErrBundleFailed))
}

func TestCommandBundlerArgv(t *testing.T) {
	b := &CommandBundler{Command: `esbuild {entry} --outdir={outdir} --banner "// {name} bundle"`}
	argv, err := b.argv(Input{Name: "sdk", Entry: "/src/sdk.ts"}, "/tmp/out")
	require.NoError(t, err)
	assert.Equal(t, []string{"esbuild", "/src/sdk.ts", "--outdir=/tmp/out", "--banner", "// sdk bundle"}, argv)

	_, err = (&CommandBundler{Command: `esbuild "unterminated`}).argv(Input{Entry: "x"}, "")
	assert.Error(t, err)

	_, err = (&CommandBundler{Command: "  "}).argv(Input{Entry: "x"}, "")
	assert.Error(t, err)
}

func TestCommandBundlerRuns(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := writeArchive(t, `
-- src/sdk.ts --
`+greeterDeclaration)
	in := Input{Name: "sdk", Entry: filepath.Join(dir, "src", "sdk.ts")}

	t.Run("artifacts", func(t *testing.T) {
		b := &CommandBundler{Command: `sh -c 'cp "$0" "$1/$2.mjs" && cp "$0" "$1/$2.d.ts"' {entry} {outdir} {name}`}
		a, err := b.Bundle(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, "sdk.mjs", filepath.Base(a.Source))
		assert.Equal(t, "sdk.d.ts", filepath.Base(a.Declaration))
		assert.FileExists(t, a.Declaration)

		a.Close()
		assert.NoFileExists(t, a.Declaration)
	})

	t.Run("nested output", func(t *testing.T) {
		b := &CommandBundler{Command: `sh -c 'mkdir -p "$1/dist" && cp "$0" "$1/dist/$2.js" && cp "$0" "$1/dist/$2.d.mts"' {entry} {outdir} {name}`}
		a, err := b.Bundle(context.Background(), in)
		require.NoError(t, err)
		defer a.Close()
		assert.Equal(t, "sdk.js", filepath.Base(a.Source))
		assert.Equal(t, "sdk.d.mts", filepath.Base(a.Declaration))
	})

	t.Run("command fails", func(t *testing.T) {
		b := &CommandBundler{Command: `sh -c 'echo cannot resolve import >&2; exit 3'`}
		_, err := b.Bundle(context.Background(), in)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrBundleFailed))
		assert.Contains(t, errors.FlattenDetails(err), "cannot resolve import")
	})

	t.Run("no output", func(t *testing.T) {
		b := &CommandBundler{Command: "true"}
		_, err := b.Bundle(context.Background(), in)
		require.Error(t, err)
		assert.True(t, errors.IsMissingInputArtifact(err))
	})
}

func TestCommandFormatterUnavailable(t *testing.T) {
	err := CommandFormatter{Command: "sdkgen-no-such-formatter --fix"}.Format(context.Background(), "x.dart")
	assert.True(t, errors.Is(err, ErrFormatterUnavailable))
}

// =============================================================================
// Versions
// =============================================================================

func TestResolveVersion(t *testing.T) {
	dir := writeArchive(t, `
-- app/pubspec.yaml --
name: app
version: 2.1.0+7
-- app/lib/generated/.keep --
-- bad/pubspec.yaml --
name: bad
version: banana
-- noversion/pubspec.yaml --
name: noversion
`)

	tests := []struct {
		name     string
		explicit string
		dir      string
		want     string
		wantErr  bool
	}{
		{"explicit", "1.2.3", dir, "1.2.3", false},
		{"explicit normalized", "v1.2", dir, "1.2.0", false},
		{"explicit invalid", "one", dir, "", true},
		{"pubspec above output", "", filepath.Join(dir, "app", "lib", "generated"), "2.1.0+7", false},
		{"pubspec above missing dir", "", filepath.Join(dir, "app", "lib", "new"), "2.1.0+7", false},
		{"invalid pubspec version", "", filepath.Join(dir, "bad"), "", true},
		{"pubspec without version", "", filepath.Join(dir, "noversion"), DefaultVersion, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := ResolveVersion(tt.explicit, tt.dir)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// =============================================================================
// Check mode
// =============================================================================

func TestCheck(t *testing.T) {
	useTestLogger(t)
	dir := writeArchive(t, batchArchive)
	out := filepath.Join(dir, "out")
	opts := Options{InputDir: filepath.Join(dir, "sdk"), OutputDir: out}

	result, err := NewDriver(opts).Check(context.Background())
	require.NoError(t, err)
	assert.False(t, result.UpToDate)
	assert.Len(t, result.Missing, 2)

	_, err = NewDriver(opts).Run(context.Background())
	require.NoError(t, err)

	result, err = NewDriver(opts).Check(context.Background())
	require.NoError(t, err)
	assert.True(t, result.UpToDate)
	assert.NoDirExists(t, filepath.Join(out, "out"))

	greeter := filepath.Join(out, "greeter_source.dart")
	require.NoError(t, os.WriteFile(greeter, []byte("// edited\n"), 0644))
	result, err = NewDriver(opts).Check(context.Background())
	require.NoError(t, err)
	assert.False(t, result.UpToDate)
	assert.Equal(t, []string{greeter}, result.Stale)
	assert.Empty(t, result.Missing)
}

func TestStripProvenance(t *testing.T) {
	a := "// header\n// Source version: abc1234\n// Source last modified: 2026-01-01T00:00:00Z\nbody\n"
	b := "// header\n// Source version: def5678\nbody\n"
	assert.Equal(t, stripProvenance([]byte(a)), stripProvenance([]byte(b)))
	assert.NotEqual(t, stripProvenance([]byte(a)), stripProvenance([]byte("// header\nother\n")))
}

// =============================================================================
// Reporting
// =============================================================================

func TestReportPrint(t *testing.T) {
	pterm.DisableColor()
	t.Cleanup(pterm.EnableColor)

	report := &Report{Results: []FileResult{
		{Input: "sdk/greeter.mjs", Output: "out/greeter_source.dart", Status: StatusGenerated, Warnings: []string{"format failed"}},
		{Input: "sdk/util.mjs", Status: StatusSkipped, Reason: "no SDK declaration"},
		{Input: "sdk/broken.mjs", Status: StatusFailed, Err: errors.WithHint(errors.NewMalformedSdkDeclaration("bad shape"), "export the SDK")},
	}}

	var buf bytes.Buffer
	report.Print(&buf)
	text := buf.String()

	assert.Contains(t, text, "✓ sdk/greeter.mjs → out/greeter_source.dart\n")
	assert.Contains(t, text, "  warning: format failed\n")
	assert.Contains(t, text, "- sdk/util.mjs (no SDK declaration)\n")
	assert.Contains(t, text, "✗ sdk/broken.mjs: bad shape: malformed SDK declaration\n")
	assert.Contains(t, text, "  hint: export the SDK\n")
	assert.Contains(t, text, "1 generated, 1 skipped, 1 failed\n")
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "generated", StatusGenerated.String())
	assert.Equal(t, "skipped", StatusSkipped.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "unknown", Status(9).String())
}

// =============================================================================
// Watch mode
// =============================================================================

func TestWatchRebuildsChangedInput(t *testing.T) {
	useTestLogger(t)
	dir := writeArchive(t, batchArchive)
	out := filepath.Join(dir, "out")

	d := NewDriver(Options{InputDir: filepath.Join(dir, "sdk"), OutputDir: out})
	w, err := d.NewWatcher(20 * time.Millisecond)
	require.NoError(t, err)

	results := make(chan FileResult, 16)
	w.OnResult = func(res FileResult) { results <- res }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	next := func() FileResult {
		select {
		case res := <-results:
			return res
		case <-time.After(5 * time.Second):
			t.Fatal("no result from watcher")
			return FileResult{}
		}
	}

	// initial build covers every input
	for i := 0; i < 4; i++ {
		next()
	}

	greeterDecl := filepath.Join(dir, "sdk", "greeter.d.ts")
	updated := strings.Replace(greeterDeclaration, "hello:", "goodbye:", 1)
	require.NoError(t, os.WriteFile(greeterDecl, []byte(updated), 0644))

	res := next()
	assert.Equal(t, StatusGenerated, res.Status, "%v", res.Err)
	assert.Equal(t, "Greeter", res.Class, "the rebuild of an input may reuse its own class name")
	assert.Contains(t, readFile(t, filepath.Join(out, "greeter_source.dart")), "goodbye(String name)")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	select {
	case extra := <-results:
		assert.Equal(t, res.Input, extra.Input, "only the changed input is rebuilt")
	default:
	}
}
