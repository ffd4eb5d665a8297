package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teranos/sdkgen/errors"
)

// Recognized input extensions. Longer suffixes come first so that
// "x.d.ts" is not read as "x.d" with extension ".ts".
var inputExtensions = []string{".d.mts", ".d.ts", ".mts", ".mjs", ".ts", ".js"}

// Input is one SDK to compile. A prebuilt declaration and its bundled
// sibling form a single input; otherwise Entry is handed to the bundler.
type Input struct {
	// Name is the file name without extension; the module class derives from it
	Name string
	// RelDir is the directory relative to the scanned root, mirrored under
	// the output directory
	RelDir string
	// Entry is the source file given to a bundler
	Entry string
	// Declaration and Bundle are set when prebuilt artifacts exist
	Declaration string
	Bundle      string
	// Explicit is set for inputs named with --files
	Explicit bool
}

// Prebuilt reports whether the input needs no bundling.
func (in Input) Prebuilt() bool {
	return in.Declaration != "" && in.Bundle != ""
}

// Key identifies the input within a batch.
func (in Input) Key() string {
	return filepath.ToSlash(filepath.Join(in.RelDir, in.Name))
}

// Display returns the path shown in reports.
func (in Input) Display() string {
	switch {
	case in.Entry != "":
		return in.Entry
	case in.Declaration != "":
		return in.Declaration
	}
	return in.Key()
}

// Paths returns every file the input reads.
func (in Input) Paths() []string {
	var paths []string
	for _, p := range []string{in.Entry, in.Declaration, in.Bundle} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// splitExt separates a recognized input extension from path.
func splitExt(path string) (stem, ext string, ok bool) {
	base := filepath.Base(path)
	for _, e := range inputExtensions {
		if strings.HasSuffix(base, e) && len(base) > len(e) {
			return strings.TrimSuffix(path, e), e, true
		}
	}
	return path, "", false
}

func isDeclarationExt(ext string) bool {
	return ext == ".d.ts" || ext == ".d.mts"
}

func isBundleExt(ext string) bool {
	return ext == ".mjs" || ext == ".js"
}

// group collects the files sharing a stem.
type group struct {
	stem        string
	declaration string
	bundle      string
	source      string
}

func (g *group) add(path, ext string) {
	switch {
	case isDeclarationExt(ext):
		// .d.mts pairs with .mjs and wins over .d.ts
		if g.declaration == "" || ext == ".d.mts" {
			g.declaration = path
		}
	case isBundleExt(ext):
		if g.bundle == "" || ext == ".mjs" {
			g.bundle = path
		}
	default:
		if g.source == "" || ext == ".ts" {
			g.source = path
		}
	}
}

func (g *group) input(root string, explicit bool) (Input, bool) {
	in := Input{
		Name:        filepath.Base(g.stem),
		Declaration: g.declaration,
		Bundle:      g.bundle,
		Explicit:    explicit,
	}
	switch {
	case g.source != "":
		in.Entry = g.source
	case g.bundle != "":
		in.Entry = g.bundle
	}
	if in.Entry == "" && !in.Prebuilt() {
		// a lone declaration has nothing to embed
		return Input{}, false
	}
	if root != "" {
		if rel, err := filepath.Rel(root, filepath.Dir(g.stem)); err == nil && rel != "." {
			in.RelDir = rel
		}
	}
	return in, true
}

// Discovery is the outcome of input discovery.
type Discovery struct {
	Inputs []Input
	// Failed lists explicit files that could not be used
	Failed []FileResult
}

// Discover resolves explicit files and scans inputDir. Explicit files that
// do not exist are reported as missing artifacts; directory scans skip
// node_modules and dot-directories.
func Discover(files []string, inputDir string) (*Discovery, error) {
	d := &Discovery{}
	seen := make(map[string]bool)

	for _, f := range files {
		in, result := explicitInput(f)
		if result != nil {
			d.Failed = append(d.Failed, *result)
			continue
		}
		if !seen[in.Key()+"\x00"+in.Display()] {
			seen[in.Key()+"\x00"+in.Display()] = true
			d.Inputs = append(d.Inputs, in)
		}
	}

	if inputDir != "" {
		scanned, err := scanDirectory(inputDir)
		if err != nil {
			return nil, err
		}
		for _, in := range scanned {
			if !seen[in.Key()+"\x00"+in.Display()] {
				seen[in.Key()+"\x00"+in.Display()] = true
				d.Inputs = append(d.Inputs, in)
			}
		}
	}
	return d, nil
}

func explicitInput(path string) (Input, *FileResult) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		if err == nil {
			err = errors.Newf("%s is a directory", path)
		}
		return Input{}, &FileResult{
			Input:  path,
			Status: StatusFailed,
			Err:    errors.WithHint(errors.WrapMissingInputArtifact(err, path), "check the path given to --files"),
		}
	}

	stem, ext, ok := splitExt(path)
	if !ok {
		return Input{}, &FileResult{
			Input:  path,
			Status: StatusSkipped,
			Reason: "unsupported extension",
		}
	}

	g := &group{stem: stem}
	g.add(path, ext)
	// pick up prebuilt siblings of the named file
	for _, e := range inputExtensions {
		sibling := stem + e
		if sibling == path {
			continue
		}
		if isDeclarationExt(e) || (isBundleExt(e) && !isBundleExt(ext)) {
			if _, err := os.Stat(sibling); err == nil {
				g.add(sibling, e)
			}
		}
	}

	in, ok := g.input("", true)
	if !ok {
		return Input{}, &FileResult{
			Input:  path,
			Status: StatusFailed,
			Err: errors.WithHint(
				errors.WrapMissingInputArtifact(errors.New("no bundled source next to declaration"), path),
				"place the bundled .mjs or .js next to the declaration file"),
		}
	}
	return in, nil
}

func scanDirectory(root string) ([]Input, error) {
	groups := make(map[string]*group)
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			name := entry.Name()
			if path != root && (name == "node_modules" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		stem, ext, ok := splitExt(path)
		if !ok {
			return nil
		}
		g := groups[stem]
		if g == nil {
			g = &group{stem: stem}
			groups[stem] = g
		}
		g.add(path, ext)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", root)
	}

	stems := make([]string, 0, len(groups))
	for stem := range groups {
		stems = append(stems, stem)
	}
	sort.Strings(stems)

	inputs := make([]Input, 0, len(stems))
	for _, stem := range stems {
		if in, ok := groups[stem].input(root, false); ok {
			inputs = append(inputs, in)
		}
	}
	return inputs, nil
}
