package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/sdkgen/errors"
	"github.com/teranos/sdkgen/version"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show sdkgen version information",
		Long:  `Display version, build time, commit hash, and platform information for the sdkgen binary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			info := version.Get()

			if short, _ := cmd.Flags().GetBool("short"); short {
				fmt.Fprintln(out, info.Tag())
				return nil
			}
			if asJSON, _ := cmd.Flags().GetBool("json-info"); asJSON {
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return errors.Wrap(err, "failed to format version as JSON")
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			fmt.Fprintln(out, info.String())
			fmt.Fprintf(out, "Platform: %s\n", info.Platform)
			fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
			return nil
		},
	}
	cmd.Flags().Bool("short", false, "Print only the version tag")
	cmd.Flags().BoolP("json-info", "j", false, "Output version info as JSON")
	return cmd
}
