// Package commands implements the sdkgen command line.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/sdkgen/config"
	"github.com/teranos/sdkgen/errors"
	"github.com/teranos/sdkgen/logger"
)

// exitError carries a specific process exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// NewRootCmd builds the sdkgen command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sdkgen",
		Short: "Generate Dart bindings from TypeScript SDK declarations",
		Long: `sdkgen compiles TypeScript SDK declarations into Dart bindings for the
globe runtime.

Each input module exports a value typed Sdk<...> describing its init function
and worker functions. sdkgen reads the declaration file and the bundled module
source and writes one <name>_source.dart file per input.

Configuration sources (in order of precedence):
  1. Command line flags
  2. Environment variables (SDKGEN_* prefix, .env is loaded)
  3. Project config (sdkgen.toml, searched upwards from the working directory)
  4. User config (~/.sdkgen/config.toml)
  5. System config (/etc/sdkgen/config.toml)
  6. Default values

Examples:
  sdkgen generate --input src --output lib/src
  sdkgen generate --files src/weather.ts --bundler "tsdown {entry} -d {outdir}"
  sdkgen generate --input src --watch
  sdkgen check --input src --output lib/src
  sdkgen config init`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Cleanup()
		},
	}

	root.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	root.PersistentFlags().Bool("json", false, "Emit JSON logs on stdout instead of the report")
	root.PersistentFlags().String("config", "", "Config file to use instead of the project sdkgen.toml")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// setup loads configuration and initializes logging before any command.
func setup(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	jsonOutput := cfg.Log.JSON
	if cmd.Flags().Changed("json") {
		jsonOutput, _ = cmd.Flags().GetBool("json")
		config.GetViper().Set("log.json", jsonOutput)
		config.MarkFlag("log.json", "json")
	}
	verbosity, _ := cmd.Flags().GetCount("verbose")
	if err := logger.Initialize(jsonOutput, verbosity); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	err := NewRootCmd().Execute()
	if err == nil {
		return 0
	}
	printError(os.Stderr, err)

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return 1
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "  hint: %s\n", hint)
	}
}
