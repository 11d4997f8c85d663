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
	"github.com/spf13/cobra"

	"github.com/alibaba/opensandbox/vigo/pkg/registry"
	"github.com/alibaba/opensandbox/vigo/pkg/report"
)

func newTagsCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "tags NAME...",
		Short: "Explain how tagged file names are scoped for every target",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := r.cfg.Registry(registry.ModePlan)
			if err != nil {
				return err
			}
			return report.Tags(cmd.OutOrStdout(), args, reg)
		},
	}
}
