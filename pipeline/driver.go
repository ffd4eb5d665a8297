// Package pipeline drives a batch of SDK inputs through bundling,
// extraction and generation. Inputs are processed sequentially and each one
// yields a FileResult; one failing input never stops the batch.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/teranos/sdkgen/dts"
	"github.com/teranos/sdkgen/errors"
	"github.com/teranos/sdkgen/logger"
	"github.com/teranos/sdkgen/sdkgen"
	"github.com/teranos/sdkgen/sdkgen/dart"
	"github.com/teranos/sdkgen/sdkgen/util"
	"github.com/teranos/sdkgen/sourceinfo"
)

// Options configure a batch run.
type Options struct {
	Files     []string
	InputDir  string
	OutputDir string
	// PackageVersion overrides pubspec discovery
	PackageVersion string
	// BundlerCommand bundles inputs without prebuilt artifacts
	BundlerCommand string
	Format         bool
	FormatCommand  string
	// Semantic enables the whole-file type checker
	Semantic bool
	// Stamp adds source provenance lines to generated headers
	Stamp bool
}

// Driver runs batches. The exported fields default to the production
// implementations and may be replaced before Run.
type Driver struct {
	Options Options

	Generator sdkgen.Generator
	// Bundler handles inputs without usable prebuilt artifacts; nil means
	// such inputs fail
	Bundler   Bundler
	Formatter Formatter
	Stamp     func(path string) []string
}

// NewDriver creates a driver for opts.
func NewDriver(opts Options) *Driver {
	d := &Driver{
		Options:   opts,
		Generator: dart.NewGenerator(),
		Stamp:     sourceinfo.Stamp,
	}
	if opts.BundlerCommand != "" {
		d.Bundler = &CommandBundler{Command: opts.BundlerCommand}
	}
	if opts.Format {
		d.Formatter = CommandFormatter{Command: opts.FormatCommand}
	}
	if d.Options.OutputDir == "" {
		d.Options.OutputDir = "."
	}
	return d
}

// Batch tracks state shared by the inputs of one run.
type Batch struct {
	RunID   string
	Version string
	// classes maps generated class names to the input that claimed them
	classes map[string]string
}

// NewBatch resolves the package version and starts a batch.
func (d *Driver) NewBatch() (*Batch, error) {
	version, source, err := ResolveVersion(d.Options.PackageVersion, d.Options.OutputDir)
	if err != nil {
		return nil, err
	}
	b := &Batch{RunID: uuid.NewString(), Version: version, classes: make(map[string]string)}
	logger.Debugw("Resolved package version", "version", version, "from", source, logger.FieldRunID, b.RunID)
	return b, nil
}

// Discover finds the configured inputs.
func (d *Driver) Discover() (*Discovery, error) {
	if len(d.Options.Files) == 0 && d.Options.InputDir == "" {
		return nil, errors.WithHint(errors.New("no input files provided"), "use --files or --input")
	}
	disc, err := Discover(d.Options.Files, d.Options.InputDir)
	if err != nil {
		return nil, err
	}
	if len(disc.Inputs) == 0 && len(disc.Failed) == 0 {
		return nil, errors.WithHintf(errors.Newf("no inputs found in %s", d.Options.InputDir),
			"inputs end in %s", strings.Join(inputExtensions, ", "))
	}
	return disc, nil
}

// Run discovers inputs and processes them in order. The error is set only
// when the batch could not start; per-input failures are in the report.
// Cancelling ctx stops the batch between inputs.
func (d *Driver) Run(ctx context.Context) (*Report, error) {
	disc, err := d.Discover()
	if err != nil {
		return nil, err
	}
	batch, err := d.NewBatch()
	if err != nil {
		return nil, err
	}

	ctx = logger.WithRunID(ctx, batch.RunID)
	log := logger.LoggerFromContext(ctx)
	start := time.Now()
	log.Infow("Starting batch", logger.FieldCount, len(disc.Inputs), "version", batch.Version)

	report := &Report{RunID: batch.RunID, Version: batch.Version}
	report.Results = append(report.Results, disc.Failed...)
	for _, res := range disc.Failed {
		log.Errorw("Input unavailable", logger.FieldFile, res.Input, logger.FieldError, res.Err)
	}

	for i, in := range disc.Inputs {
		if ctx.Err() != nil {
			log.Warnw("Batch cancelled", "remaining", len(disc.Inputs)-i)
			break
		}
		report.Results = append(report.Results, d.Process(ctx, batch, in))
	}

	log.Infow("Batch finished",
		"generated", report.Count(StatusGenerated),
		"skipped", report.Count(StatusSkipped),
		"failed", report.Count(StatusFailed),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return report, nil
}

// OutputPath returns where the binding for in is written.
func (d *Driver) OutputPath(in Input) string {
	return filepath.Join(d.Options.OutputDir, in.RelDir, in.Name+d.Generator.FileSuffix())
}

// Process compiles one input.
func (d *Driver) Process(ctx context.Context, batch *Batch, in Input) (res FileResult) {
	start := time.Now()
	log := logger.LoggerFromContext(ctx).With(logger.FieldFile, in.Display())
	res = FileResult{Input: in.Display(), Output: d.OutputPath(in)}
	defer func() {
		res.Duration = time.Since(start)
		switch res.Status {
		case StatusFailed:
			log.Errorw("Generation failed", logger.FieldError, res.Err, logger.FieldDurationMS, res.Duration.Milliseconds())
		case StatusSkipped:
			log.Infow("Skipped input", "reason", res.Reason)
		}
	}()

	log.Debugw("Processing input", "prebuilt", in.Prebuilt())

	artifacts, err := d.bundlerFor(in).Bundle(ctx, in)
	if err != nil {
		return failed(res, err)
	}
	defer artifacts.Close()

	declaration, err := os.ReadFile(artifacts.Declaration)
	if err != nil {
		return failed(res, errors.WrapMissingInputArtifact(err, artifacts.Declaration))
	}
	source, err := os.ReadFile(artifacts.Source)
	if err != nil {
		return failed(res, errors.WrapMissingInputArtifact(err, artifacts.Source))
	}

	declName := in.Declaration
	if declName == "" {
		declName = in.Display()
	}
	file, err := dts.Parse(declName, string(declaration))
	if err != nil {
		return failed(res, errors.WithSecondaryError(
			errors.NewMalformedSdkDeclaration("%s: cannot parse declarations", declName), err))
	}

	if !in.Explicit && !sdkgen.HasSdkDeclaration(file) {
		res.Status = StatusSkipped
		res.Reason = "no SDK declaration"
		res.Output = ""
		return res
	}

	result, err := sdkgen.Extract(file, sdkgen.ExtractOptions{Semantic: d.Options.Semantic})
	if err != nil {
		return failed(res, err)
	}

	class := util.DartClassName(in.Name)
	res.Class = class
	if owner, taken := batch.classes[class]; taken && owner != in.Display() {
		return failed(res, errors.WithHintf(
			errors.Wrapf(errors.ErrDuplicateModule, "class %s is already generated from %s", class, owner),
			"rename %s so its module name is unique in the batch", in.Display()))
	}

	meta := sdkgen.Meta{ClassName: class, Version: batch.Version, Source: string(source)}
	if d.Options.Stamp {
		meta.SourceFile = displayPath(in.Display())
		if d.Stamp != nil {
			meta.Stamp = d.Stamp(in.Display())
		}
	}

	code := d.Generator.GenerateFile(result, meta)
	if err := writeOutput(res.Output, code); err != nil {
		return failed(res, err)
	}
	batch.classes[class] = in.Display()

	if d.Formatter != nil {
		if err := d.Formatter.Format(ctx, res.Output); err != nil {
			if errors.Is(err, ErrFormatterUnavailable) {
				log.Debugw("Formatter unavailable", logger.FieldError, err)
			} else {
				res.Warnings = append(res.Warnings, err.Error())
				log.Warnw("Formatting failed", logger.FieldOutput, res.Output, logger.FieldError, err)
			}
		}
	}

	res.Status = StatusGenerated
	log.Infow("Generated binding",
		logger.FieldOutput, res.Output,
		logger.FieldClass, class,
		logger.FieldCount, len(result.Functions),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return res
}

// bundlerFor prefers a configured bundler for TypeScript sources and
// prebuilt artifacts for everything else.
func (d *Driver) bundlerFor(in Input) Bundler {
	if d.Bundler != nil && (!in.Prebuilt() || in.Entry != in.Bundle) {
		return d.Bundler
	}
	return PrebuiltBundler{}
}

func failed(res FileResult, err error) FileResult {
	res.Status = StatusFailed
	res.Err = err
	return res
}

func writeOutput(path, code string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapOutputWrite(err, path)
	}
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		return errors.WrapOutputWrite(err, path)
	}
	return nil
}

// displayPath shortens path relative to the working directory when it lies
// beneath it.
func displayPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}
