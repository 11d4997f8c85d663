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

package archive

import (
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/alibaba/opensandbox/vigo/pkg/log"
	"github.com/alibaba/opensandbox/vigo/pkg/transform"
	"github.com/alibaba/opensandbox/vigo/pkg/walker"
)

type Options struct {
	// Level is the gzip compression level, 0 for the default.
	Level int
	// ModTime replaces the modification time of every entry when set.
	ModTime *time.Time
}

// Stats counts what Pack wrote.
type Stats struct {
	Dirs  int
	Files int
	Bytes int64
}

// Pack writes the entries of target to w, transforming text files on the
// way. Source files are read from fsys.
func Pack(w io.Writer, fsys fs.FS, tree *walker.Tree, target string, opts Options) (Stats, error) {
	var stats Stats
	aw, err := NewWriter(w, opts.Level)
	if err != nil {
		return stats, err
	}

	for _, e := range tree.Entries(target) {
		mtime := e.ModTime
		if opts.ModTime != nil {
			mtime = *opts.ModTime
		}
		if e.Dir {
			if err := aw.AddDir(e.Path, e.Mode, mtime); err != nil {
				return stats, fmt.Errorf("%s: %w", e.Path, err)
			}
			stats.Dirs++
			continue
		}

		src := e.Decision.Source
		raw, err := fs.ReadFile(fsys, src)
		if err != nil {
			log.Errorw("cannot read source file", "path", src, "error", err)
			return stats, err
		}
		content, err := transform.Apply(raw, e.Decision.Params)
		if err != nil {
			log.Errorw("cannot transform file", "path", src, "rule", e.Decision.Rule.String(), "error", err)
			return stats, fmt.Errorf("%s: %w", src, err)
		}
		if err := aw.AddFile(e.Path, e.Mode, mtime, content); err != nil {
			return stats, fmt.Errorf("%s: %w", e.Path, err)
		}
		stats.Files++
		stats.Bytes += int64(len(content))
	}

	if err := aw.Close(); err != nil {
		return stats, err
	}
	log.Infow("archive written", "target", target, "dirs", stats.Dirs, "files", stats.Files, "bytes", stats.Bytes)
	return stats, nil
}
