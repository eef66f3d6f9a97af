package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"diskmeta/internal/config"
	"diskmeta/internal/logtop"
)

func newLogTopCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "log-top <log-file> [count]",
		Short: "Count the most frequent client addresses of an access log",
		Long: fmt.Sprintf(`Web server log-file analyser. Counts the most frequent addresses.

Each line is expected to start with the client address followed by a
space. Shows the top %d addresses unless count is given.`, logtop.DefaultLimit),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit := logtop.DefaultLimit
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n <= 0 {
					return fmt.Errorf("invalid count %q", args[1])
				}
				limit = n
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			counter := logtop.NewCounter()
			n, err := counter.ReadFrom(f)
			if err != nil {
				return err
			}
			logger := config.NewLogger(opts.logLevel, cmd.ErrOrStderr())
			logger.WithFields(logrus.Fields{"file": args[0], "lines": counter.Lines(), "bytes": n}).Info("Scanned log")
			return logtop.Format(cmd.OutOrStdout(), counter.Top(limit))
		},
	}
}
