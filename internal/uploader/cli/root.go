// Package cli is the photo-upload command tree
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const profileName = ".photo-upload.yaml"

// NewRootCmd builds the photo-upload command
func NewRootCmd(version string) *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "photo-upload",
		Short: "Upload photos to a gallery server",
		Long: `photo-upload sends photos to a gallery server one at a time, in the
order given, stopping at the first file the server rejects.

Settings come from defaults, an optional YAML profile, UPLOADER_* environment
variables (a .env file is honoured) and finally command-line flags.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&profile, "config", defaultProfilePath(), "YAML profile with uploader defaults")

	cmd.AddCommand(newUploadCmd(&profile))
	cmd.AddCommand(newVersionCmd(version))

	return cmd
}

func defaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, profileName)
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the photo-upload version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
