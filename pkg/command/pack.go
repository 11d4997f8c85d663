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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alibaba/opensandbox/vigo/pkg/archive"
	"github.com/alibaba/opensandbox/vigo/pkg/log"
	"github.com/alibaba/opensandbox/vigo/pkg/registry"
)

func newPackCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "pack",
		Short: "Write <output>/<target>.tar.gz for every target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.pack(cmd)
		},
	}
}

func (r *runner) pack(cmd *cobra.Command) error {
	fsys, reg, tree, err := r.walk(registry.ModePack)
	if err != nil {
		return err
	}
	mtime, err := r.cfg.FixedModTime()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(r.cfg.Output, 0o755); err != nil {
		return err
	}

	opts := archive.Options{Level: r.cfg.Compression, ModTime: mtime}
	for _, target := range reg.Targets() {
		path := filepath.Join(r.cfg.Output, target+".tar.gz")
		stats, err := writeArchive(path, func(f *os.File) (archive.Stats, error) {
			return archive.Pack(f, fsys, tree, target, opts)
		})
		if err != nil {
			log.Errorw("cannot write archive", "target", target, "path", path, "error", err)
			return fmt.Errorf("target %s: %w", target, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d directories, %d files, %d bytes\n", path, stats.Dirs, stats.Files, stats.Bytes)
	}
	return nil
}

// writeArchive creates path and removes it again when pack fails.
func writeArchive(path string, pack func(*os.File) (archive.Stats, error)) (archive.Stats, error) {
	f, err := os.Create(path)
	if err != nil {
		return archive.Stats{}, err
	}
	stats, err := pack(f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return stats, errors.Join(err, os.Remove(path))
	}
	return stats, nil
}
