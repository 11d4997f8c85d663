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

package script

import (
	"io/fs"

	"github.com/alibaba/opensandbox/vigo/pkg/settings"
)

// FolderConfig is the content of a CONFIGURE FOLDER block.
type FolderConfig struct {
	Defaults        settings.Defaults
	KeepEmptyFolder bool
	Line            int
}

var folderPhrases = []Phrase[FolderConfig]{
	FlagPhrase("Keep Empty Folder", "KEEP EMPTY FOLDER", func(c *FolderConfig) {
		c.KeepEmptyFolder = true
	}),
	ValuePhrase("Default File Mode", "DEFAULT FOR FILE MODE", settings.ParseOctalMode, func(c *FolderConfig, v fs.FileMode) {
		c.Defaults.FileMode = &v
	}),
	ValuePhrase("Default Directory Mode", "DEFAULT FOR DIRECTORY MODE", settings.ParseOctalMode, func(c *FolderConfig, v fs.FileMode) {
		c.Defaults.DirectoryMode = &v
	}),
	ValuePhrase("Default File Type", "DEFAULT FOR FILE TYPE", settings.ParseFileType, func(c *FolderConfig, v settings.FileType) {
		c.Defaults.FileType = &v
	}),
	ValuePhrase("Default Source Encoding", "DEFAULT FOR SOURCE ENCODING", settings.ParseEncoding, func(c *FolderConfig, v string) {
		c.Defaults.SourceEncoding = &v
	}),
	ValuePhrase("Default Target Encoding", "DEFAULT FOR TARGET ENCODING", settings.ParseEncoding, func(c *FolderConfig, v string) {
		c.Defaults.TargetEncoding = &v
	}),
	ValuePhrase("Default Newline Style", "DEFAULT FOR NEWLINE STYLE", settings.ParseNewline, func(c *FolderConfig, v settings.Newline) {
		c.Defaults.Newline = &v
	}),
	ValuePhrase("Default Add Trailing Newline", "DEFAULT FOR ADD TRAILING NEWLINE", settings.ParseBool, func(c *FolderConfig, v bool) {
		c.Defaults.FixTrailingNewline = &v
	}),
	ValuePhrase("Default Valid Characters", "DEFAULT FOR VALID CHARACTERS", settings.ParseValidCharacters, func(c *FolderConfig, v settings.ValidCharacters) {
		c.Defaults.ValidCharacters = &v
	}),
	ValuePhrase("Default Build Targets", "DEFAULT BUILD TARGETS", settings.ParseTargets, func(c *FolderConfig, v []string) {
		c.Defaults.Targets = &v
	}),
}

func parseFolder(b *Block) (*FolderConfig, error) {
	tz := NewTokenizer(b)
	if !tz.TryReadStatement(Words("CONFIGURE FOLDER")...) {
		return nil, errorAt(b.File, b.FirstLine(), "expected CONFIGURE FOLDER, got %q", b.Lines[0].Content)
	}
	cfg := &FolderConfig{Line: b.FirstLine()}
	if err := parsePhrases(tz, folderPhrases, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
