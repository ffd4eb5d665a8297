package commands

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/teranos/sdkgen/config"
	"github.com/teranos/sdkgen/pipeline"
)

// flagKeys maps pipeline flags to the config keys they override.
var flagKeys = map[string]string{
	"files":             "files",
	"input":             "input",
	"output":            "output",
	"package-version":   "package_version",
	"continue-on-error": "continue_on_error",
	"bundler":           "bundler.command",
	"format":            "format.enabled",
	"format-command":    "format.command",
	"semantic":          "resolver.semantic",
	"stamp":             "stamp.enabled",
	"debounce":          "watch.debounce_ms",
}

func addPipelineFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceP("files", "f", nil, "Input files (repeatable, comma separated)")
	f.StringP("input", "i", "", "Directory scanned recursively for inputs")
	f.StringP("output", "o", config.DefaultOutput, "Output directory for generated bindings")
	f.String("package-version", "", "Package version (default: from the nearest pubspec.yaml)")
	f.Bool("continue-on-error", true, "Exit successfully even when some inputs fail")
	f.String("bundler", "", "Command bundling TypeScript sources; may use {entry}, {outdir}, {name}")
	f.Bool("format", false, "Run the formatter over generated files")
	f.String("format-command", config.DefaultFormatCommand, "Formatter command")
	f.Bool("semantic", false, "Resolve aliases and interfaces across the whole declaration file")
	f.Bool("stamp", false, "Add source provenance from git to generated headers")
}

// applyFlags copies changed flags over the loaded configuration. Positional
// arguments are treated as additional input files.
func applyFlags(cmd *cobra.Command, args []string) (*config.Config, error) {
	v := config.GetViper()
	cmd.Flags().Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		switch f.Value.Type() {
		case "stringSlice":
			values, _ := cmd.Flags().GetStringSlice(f.Name)
			v.Set(key, values)
		default:
			v.Set(key, f.Value.String())
		}
		config.MarkFlag(key, f.Name)
	})
	if len(args) > 0 {
		v.Set("files", append(v.GetStringSlice("files"), args...))
		config.MarkFlag("files", "files")
	}
	return config.Reload()
}

// pipelineOptions converts configuration into driver options.
func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Files:          cfg.Files,
		InputDir:       cfg.Input,
		OutputDir:      cfg.Output,
		PackageVersion: cfg.PackageVersion,
		BundlerCommand: cfg.Bundler.Command,
		Format:         cfg.Format.Enabled,
		FormatCommand:  cfg.Format.Command,
		Semantic:       cfg.Resolver.Semantic,
		Stamp:          cfg.Stamp.Enabled,
	}
}

func debounce(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
}
