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

package report

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/alibaba/opensandbox/vigo/pkg/settings"
	"github.com/alibaba/opensandbox/vigo/pkg/walker"
)

type Manifest struct {
	Source  string      `yaml:"source"`
	Targets []string    `yaml:"targets"`
	Files   []FileEntry `yaml:"files"`
}

type FileEntry struct {
	Source     string      `yaml:"source"`
	Target     string      `yaml:"target,omitempty"`
	Targets    []string    `yaml:"targets,omitempty"`
	Rule       string      `yaml:"rule"`
	Issue      string      `yaml:"issue,omitempty"`
	Parameters *Parameters `yaml:"parameters,omitempty"`
}

// Parameters lists the settings applied to a deployed file. Text
// settings are left out for binary files.
type Parameters struct {
	FileType           string `yaml:"file_type"`
	Mode               string `yaml:"mode"`
	SourceEncoding     string `yaml:"source_encoding,omitempty"`
	TargetEncoding     string `yaml:"target_encoding,omitempty"`
	Newline            string `yaml:"newline,omitempty"`
	FixTrailingNewline bool   `yaml:"fix_trailing_newline,omitempty"`
	ValidCharacters    string `yaml:"valid_characters,omitempty"`
}

// NewManifest collects the decisions of tree.
func NewManifest(tree *walker.Tree, source string) Manifest {
	m := Manifest{Source: source, Targets: tree.Targets(), Files: []FileEntry{}}
	for _, d := range tree.Decisions() {
		entry := FileEntry{Source: d.Source, Rule: d.Rule.String()}
		if d.Issue != nil {
			entry.Issue = d.Issue.Error()
		}
		if d.Deploy() {
			entry.Target = d.Target
			entry.Targets = d.Targets
			entry.Parameters = parameters(d.Params)
		}
		m.Files = append(m.Files, entry)
	}
	return m
}

func parameters(p settings.FileHandlingParameters) *Parameters {
	out := &Parameters{
		FileType: p.FileType.String(),
		Mode:     fmt.Sprintf("%04o", p.Mode()),
	}
	if p.FileType == settings.Text {
		out.SourceEncoding = p.SourceEncoding
		out.TargetEncoding = p.TargetEncoding
		out.Newline = p.Newline.String()
		out.FixTrailingNewline = p.FixTrailingNewline
		out.ValidCharacters = p.ValidCharacters.String()
	}
	return out
}

// WriteYAML writes the manifest of tree to w.
func WriteYAML(w io.Writer, tree *walker.Tree, source string) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewManifest(tree, source)); err != nil {
		return err
	}
	return enc.Close()
}
