package commands

import (
	"encoding/json"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/sdkgen/config"
	"github.com/teranos/sdkgen/errors"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage sdkgen configuration",
		Long: `Display and create sdkgen configuration.

Examples:
  sdkgen config init              # Write sdkgen.toml with defaults
  sdkgen config show              # Show effective configuration
  sdkgen config show --sources    # Show where each value came from
  sdkgen config show --format json`,
	}

	initCmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default sdkgen.toml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing sdkgen.toml")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE:  runConfigShow,
	}
	showCmd.Flags().String("format", "toml", "Output format: toml, json, yaml")
	showCmd.Flags().Bool("sources", false, "List each setting with its source")

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")
	path, err := config.WriteDefault(dir, force)
	if err != nil {
		return err
	}
	pterm.Fprintln(cmd.OutOrStdout(), fmt.Sprintf("%s Wrote %s", pterm.LightGreen("✓"), path))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if sources, _ := cmd.Flags().GetBool("sources"); sources {
		for _, s := range config.Settings() {
			fmt.Fprintf(out, "%-20s = %-24v %s\n", s.Key, s.Value, sourceLabel(s))
		}
		return nil
	}

	cfg, err := config.Reload()
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# sdkgen configuration\n%s", data)
	case "toml":
		data, err := config.Encode(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "# sdkgen configuration\n%s", data)
	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", format)
	}

	if used := config.GetViper().ConfigFileUsed(); used != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "# loaded from %s\n", used)
	}
	return nil
}

func sourceLabel(s config.Setting) string {
	if s.SourcePath == "" || s.Source == config.SourceDefault {
		return string(s.Source)
	}
	return fmt.Sprintf("%s (%s)", s.Source, s.SourcePath)
}
