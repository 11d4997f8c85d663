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

// Package archive writes the deployment archive of one target as a
// gzip compressed tar stream.
package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Writer adds entries to a tar.gz stream. Owner fields are zeroed and the
// gzip header carries no timestamp so equal input yields equal bytes.
type Writer struct {
	gz *gzip.Writer
	tw *tar.Writer
}

// NewWriter compresses with the given gzip level, gzip.DefaultCompression
// when level is 0.
func NewWriter(w io.Writer, level int) (*Writer, error) {
	if level == 0 {
		level = gzip.DefaultCompression
	}
	gz, err := gzip.NewWriterLevel(w, level)
	if err != nil {
		return nil, fmt.Errorf("gzip level %d: %w", level, err)
	}
	return &Writer{gz: gz, tw: tar.NewWriter(gz)}, nil
}

func header(name string, mode fs.FileMode, mtime time.Time) *tar.Header {
	if mtime.IsZero() {
		mtime = time.Unix(0, 0)
	}
	return &tar.Header{
		Name:    name,
		Mode:    int64(mode.Perm()),
		ModTime: mtime.UTC().Truncate(time.Second),
		Format:  tar.FormatPAX,
	}
}

// AddDir writes a directory entry.
func (w *Writer) AddDir(name string, mode fs.FileMode, mtime time.Time) error {
	h := header(strings.TrimSuffix(name, "/")+"/", mode, mtime)
	h.Typeflag = tar.TypeDir
	return w.tw.WriteHeader(h)
}

// AddFile writes a regular file entry with its full content.
func (w *Writer) AddFile(name string, mode fs.FileMode, mtime time.Time, content []byte) error {
	h := header(name, mode, mtime)
	h.Typeflag = tar.TypeReg
	h.Size = int64(len(content))
	if err := w.tw.WriteHeader(h); err != nil {
		return err
	}
	_, err := w.tw.Write(content)
	return err
}

// Close flushes the tar and gzip streams. It does not close the
// underlying writer.
func (w *Writer) Close() error {
	if err := w.tw.Close(); err != nil {
		return err
	}
	return w.gz.Close()
}
