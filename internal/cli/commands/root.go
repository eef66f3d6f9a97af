// Copyright 2024 DiskMeta Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"diskmeta/internal/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersion sets the version info for --version flag
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// getVersionString returns the version string with build info
func getVersionString() string {
	buildDate := formatBuildDate(date)
	if strings.HasSuffix(version, "-dev") {
		return fmt.Sprintf("%s (%s, epoch: %s, commit: %s)", version, buildDate, date, commit)
	}
	return fmt.Sprintf("%s (%s)", version, buildDate)
}

// formatBuildDate converts epoch timestamp to readable date
func formatBuildDate(epoch string) string {
	ts, err := strconv.ParseInt(epoch, 10, 64)
	if err != nil {
		return epoch
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02")
}

// rootOptions holds the global flags shared by every command.
type rootOptions struct {
	configDir string
	backend   string
	logLevel  string
}

// NewRootCmd builds the diskmeta command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "diskmeta <command> <path> [<args>]",
		Short: "Meta information client for a file system",
		Long: `Meta information client for a file system.

Keeps the tree of files and directories of a virtual disk in a document
store. Only metadata is recorded, never file content.`,
		Version: getVersionString(),
		// Unknown commands land here instead of failing
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				logger := config.NewLogger("error", cmd.ErrOrStderr())
				logger.Errorf("Unknown command %q", args[0])
			}
			return cmd.Usage()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", config.DefaultDir(),
		"Configuration directory (env "+config.EnvConfigDir+")")
	cmd.PersistentFlags().StringVar(&opts.backend, "backend", "",
		"Store backend: sqlite, badger or memory (overrides settings)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"Log level: trace, debug, info, warn, error, off (overrides settings)")

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetVersionTemplate("diskmeta version {{.Version}}\n")

	cmd.AddCommand(
		newInitCmd(opts),
		newListDirCmd(opts),
		newNewFileCmd(opts),
		newNewDirCmd(opts),
		newInfoCmd(opts),
		newLogTopCmd(opts),
	)
	return cmd
}

// Execute runs the command tree against os.Args. Errors are rendered on
// stderr before being returned.
func Execute() error {
	cmd := NewRootCmd()
	err := cmd.Execute()
	if err != nil {
		renderError(os.Stderr, err)
	}
	return err
}
