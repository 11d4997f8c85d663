// Copyright 2025 Alibaba Group Holding Ltd.
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

package command

import (
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/alibaba/opensandbox/vigo/pkg/log"
	"github.com/alibaba/opensandbox/vigo/pkg/registry"
	"github.com/alibaba/opensandbox/vigo/pkg/transform"
)

func newCheckCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate every deployable file without writing archives",
		Long: `check walks the repository with CHECK rules enabled and runs the
content transformation of every deployable file in memory. Files with tag
problems or invalid content are reported and the command fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.check(cmd)
		},
	}
}

func (r *runner) check(cmd *cobra.Command) error {
	fsys, _, tree, err := r.walk(registry.ModeCheck)
	if err != nil {
		return err
	}

	violations, checked := 0, 0
	for _, d := range tree.Decisions() {
		if d.Issue != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", d.Source, d.Issue)
			violations++
			continue
		}
		if !d.Deploy() {
			continue
		}
		checked++
		raw, err := fs.ReadFile(fsys, d.Source)
		if err != nil {
			return err
		}
		if _, err := transform.Apply(raw, d.Params); err != nil {
			log.Warnw("file fails its rule", "path", d.Source, "rule", d.Rule.String(), "error", err)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", d.Source, err)
			violations++
		}
	}

	if violations > 0 {
		return fmt.Errorf("%d of %d files have problems", violations, checked+len(tree.Issues()))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d files checked\n", checked)
	return nil
}
