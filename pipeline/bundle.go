package pipeline

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/sdkgen/errors"
)

// Artifacts are the two files a binding is generated from.
type Artifacts struct {
	// Source is the bundled JavaScript embedded into the binding
	Source string
	// Declaration is the declaration file describing the SDK
	Declaration string

	cleanup func()
}

// Close removes temporary files created for the artifacts.
func (a *Artifacts) Close() {
	if a != nil && a.cleanup != nil {
		a.cleanup()
	}
}

// Bundler turns an input into artifacts.
type Bundler interface {
	Bundle(ctx context.Context, in Input) (*Artifacts, error)
}

// PrebuiltBundler uses the declaration and bundle found next to the input.
type PrebuiltBundler struct{}

// Bundle implements Bundler.
func (PrebuiltBundler) Bundle(_ context.Context, in Input) (*Artifacts, error) {
	if !in.Prebuilt() {
		return nil, errors.WithHint(
			errors.Wrapf(errors.ErrBundleFailed, "%s has no prebuilt declaration and bundle", in.Display()),
			"set bundler.command in sdkgen.toml, or place <name>.d.ts and <name>.mjs next to the input")
	}
	return &Artifacts{Source: in.Bundle, Declaration: in.Declaration}, nil
}

// CommandBundler runs an external bundler into a per-file temporary
// directory. Command is split like a shell command line; the placeholders
// {entry}, {outdir} and {name} are substituted in every argument.
type CommandBundler struct {
	Command string
	// TempRoot is the parent of the per-file directories (default: os.TempDir)
	TempRoot string
}

// Bundle implements Bundler.
func (b *CommandBundler) Bundle(ctx context.Context, in Input) (*Artifacts, error) {
	argv, err := b.argv(in, "")
	if err != nil {
		return nil, err
	}

	outDir, err := os.MkdirTemp(b.TempRoot, "sdkgen-bundle-")
	if err != nil {
		return nil, errors.Wrap(err, "create bundle directory")
	}
	cleanup := func() { _ = os.RemoveAll(outDir) }

	argv, _ = b.argv(in, outDir)
	entry, _ := filepath.Abs(in.Entry)

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = filepath.Dir(entry)
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		cleanup()
		return nil, errors.WithDetail(
			errors.WithSecondaryError(
				errors.Wrapf(errors.ErrBundleFailed, "%s", strings.Join(argv, " ")), err),
			strings.TrimSpace(output.String()))
	}

	source, err := locate(outDir, in.Name, ".mjs", ".js")
	if err != nil {
		cleanup()
		return nil, err
	}
	declaration, err := locate(outDir, in.Name, ".d.mts", ".d.ts")
	if err != nil {
		cleanup()
		return nil, err
	}
	return &Artifacts{Source: source, Declaration: declaration, cleanup: cleanup}, nil
}

func (b *CommandBundler) argv(in Input, outDir string) ([]string, error) {
	words, err := shellquote.Split(b.Command)
	if err != nil {
		return nil, errors.Wrapf(err, "parse bundler command %q", b.Command)
	}
	if len(words) == 0 {
		return nil, errors.WithHint(errors.New("bundler command is empty"), "set bundler.command in sdkgen.toml")
	}
	entry, err := filepath.Abs(in.Entry)
	if err != nil {
		entry = in.Entry
	}
	replacer := strings.NewReplacer("{entry}", entry, "{outdir}", outDir, "{name}", in.Name)
	for i, w := range words {
		words[i] = replacer.Replace(w)
	}
	return words, nil
}

// locate finds <name><ext> in dir, trying extensions in order and falling
// back to a recursive search.
func locate(dir, name string, exts ...string) (string, error) {
	for _, ext := range exts {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	for _, ext := range exts {
		var found string
		_ = filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
			if err != nil || found != "" {
				return filepath.SkipAll
			}
			if !entry.IsDir() && entry.Name() == name+ext {
				found = path
				return filepath.SkipAll
			}
			return nil
		})
		if found != "" {
			return found, nil
		}
	}
	return "", errors.WithHint(
		errors.WrapMissingInputArtifact(errors.Newf("bundler produced no %s", name+exts[0]), dir),
		"the bundler must emit ESM output and a declaration file into {outdir}")
}
