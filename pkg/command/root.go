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
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/alibaba/opensandbox/vigo/pkg/flag"
	"github.com/alibaba/opensandbox/vigo/pkg/log"
	"github.com/alibaba/opensandbox/vigo/pkg/util/safego"
)

// runner carries the configuration shared by the subcommands.
type runner struct {
	loader *flag.Loader
	cfg    *flag.Config
}

// NewRootCommand builds the vigo command tree.
func NewRootCommand() *cobra.Command {
	r := &runner{loader: flag.NewLoader()}

	root := &cobra.Command{
		Use:   "vigo",
		Short: "Package a repository into one deployment archive per target",
		Long: `vigo walks a source repository, applies the .vigo rules found in its
directories and writes one tar.gz archive per deployment target.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log.SetRunID(uuid.NewString())
			cfg, err := r.loader.Load(cmd.Flags())
			if err != nil {
				return err
			}
			r.cfg = cfg
			return nil
		},
	}
	r.loader.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newPackCommand(r),
		newCheckCommand(r),
		newPlanCommand(r),
		newTagsCommand(r),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	safego.InitPanicLogger(context.Background())
	defer log.Sync()

	root := NewRootCommand()
	if err := safego.Run(root.Execute); err != nil {
		log.Error("%v", err)
		root.PrintErrln("Error:", err)
		log.Sync()
		os.Exit(1)
	}
}
