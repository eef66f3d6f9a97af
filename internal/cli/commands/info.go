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
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"diskmeta/internal/fsmeta"
)

type infoOptions struct {
	json bool
	byID bool
}

func newInfoCmd(opts *rootOptions) *cobra.Command {
	infoOpts := &infoOptions{}
	cmd := &cobra.Command{
		Use:   "info <path>",
		Short: "Show a node's info",
		Long: `Show everything recorded about the node at path.

Examples:
  diskmeta info /docs/readme.txt
  diskmeta info --json /docs
  diskmeta info --id 0b5f1c9e-...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, opts, infoOpts, args[0])
		},
	}
	cmd.Flags().BoolVar(&infoOpts.json, "json", false, "Print the record as JSON")
	cmd.Flags().BoolVar(&infoOpts.byID, "id", false, "Look the node up by id instead of path")
	return cmd
}

func runInfo(cmd *cobra.Command, opts *rootOptions, infoOpts *infoOptions, target string) error {
	s, err := openSession(cmd, opts, false)
	if err != nil {
		return err
	}
	defer s.Close()

	var info *fsmeta.NodeInfo
	if infoOpts.byID {
		info, err = s.client.GetInfoByID(s.ctx, target)
	} else {
		info, err = s.client.GetInfo(s.ctx, target)
	}
	if err != nil {
		return err
	}

	if infoOpts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	printInfo(cmd.OutOrStdout(), info)
	return nil
}

// printInfo writes the tab separated attr=value line of a node.
func printInfo(w io.Writer, info *fsmeta.NodeInfo) {
	fmt.Fprintf(w, "_id=%s\ttype=%s\tpath=%s\tname=%s\n", info.ID, info.Type, info.Path, info.Name)
}
