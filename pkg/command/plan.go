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

	"github.com/spf13/cobra"

	"github.com/alibaba/opensandbox/vigo/pkg/registry"
	"github.com/alibaba/opensandbox/vigo/pkg/report"
)

func newPlanCommand(r *runner) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what each file becomes without writing archives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, tree, err := r.walk(registry.ModePlan)
			if err != nil {
				return err
			}
			switch format {
			case "tree":
				return report.Tree(cmd.OutOrStdout(), tree, r.cfg.Source)
			case "yaml":
				return report.WriteYAML(cmd.OutOrStdout(), tree, r.cfg.Source)
			}
			return fmt.Errorf("unknown plan format %q, expected tree or yaml", format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "tree", "output format (tree or yaml)")
	return cmd
}
