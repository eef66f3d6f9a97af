package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"diskmeta/internal/storage"
)

func newListDirCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list_dir <path>",
		Short: "Show a directory's contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts, false)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Listing of %s\n", args[0])
			names, err := s.client.ListDirectory(s.ctx, args[0])
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}

func newNewFileCmd(opts *rootOptions) *cobra.Command {
	return newCreateCmd(opts, "new_file", "Create new files", storage.KindFile)
}

func newNewDirCmd(opts *rootOptions) *cobra.Command {
	return newCreateCmd(opts, "new_dir", "Create new directories", storage.KindDirectory)
}

// newCreateCmd builds a command creating every named node under path, in
// order, stopping at the first failure.
func newCreateCmd(opts *rootOptions, use, short string, kind storage.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <path> <name>...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts, true)
			if err != nil {
				return err
			}
			defer s.Close()

			path := args[0]
			for _, name := range args[1:] {
				if _, err := s.client.CreateNode(s.ctx, path, name, kind); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
