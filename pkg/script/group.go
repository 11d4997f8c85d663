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
	"regexp"
	"strings"
)

type BlockKind int

const (
	FolderBlock BlockKind = iota
	RuleBlock
	DefineBlock
)

func (k BlockKind) String() string {
	switch k {
	case FolderBlock:
		return "CONFIGURE"
	case RuleBlock:
		return "DO"
	default:
		return "DEFINE"
	}
}

// Block is one KEYWORD…DONE section of a script.
type Block struct {
	Kind  BlockKind
	Lines []SourceLine
	// Content joins the trimmed lines, header and DONE included, with "\n".
	Content string
	File    string
	// Position is 1-based across all blocks of the script.
	Position int
	// RuleIndex is 1-based across rule blocks, 0 for other kinds.
	RuleIndex int
}

// FirstLine is the line number of the block header.
func (b *Block) FirstLine() int {
	return b.Lines[0].Number
}

var (
	headerPattern = regexp.MustCompile(`(?i)^(CONFIGURE|DO|DEFINE)(\s|$)`)
	donePattern   = regexp.MustCompile(`(?i)^DONE$`)
)

func headerKind(trimmed string) (BlockKind, bool) {
	m := headerPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return 0, false
	}
	switch strings.ToUpper(m[1]) {
	case "CONFIGURE":
		return FolderBlock, true
	case "DO":
		return RuleBlock, true
	default:
		return DefineBlock, true
	}
}

// Group drops blank and comment lines and splits the rest into blocks.
func Group(file string, lines []SourceLine) ([]Block, error) {
	var (
		blocks     []Block
		current    *Block
		contents   []string
		folderLine int
		firstRule  int
		rules      int
	)

	for _, line := range lines {
		if isBlank(line) || isComment(line) {
			continue
		}
		trimmed := strings.TrimSpace(line.Content)

		if current == nil {
			kind, ok := headerKind(trimmed)
			if !ok {
				return nil, errorAt(file, line.Number, "unrecognized line outside of a block: %q", trimmed)
			}
			switch kind {
			case FolderBlock:
				if folderLine > 0 {
					return nil, errorAt(file, line.Number, "second CONFIGURE FOLDER block, the first starts on line %d", folderLine)
				}
				if firstRule > 0 {
					return nil, errorAt(file, line.Number, "CONFIGURE FOLDER block must precede the DO block on line %d", firstRule)
				}
				folderLine = line.Number
			case RuleBlock:
				rules++
				if firstRule == 0 {
					firstRule = line.Number
				}
			}
			current = &Block{Kind: kind, File: file, Position: len(blocks) + 1}
			if kind == RuleBlock {
				current.RuleIndex = rules
			}
			current.Lines = append(current.Lines, line)
			contents = []string{trimmed}
			continue
		}

		if _, ok := headerKind(trimmed); ok {
			return nil, errorAt(file, line.Number, "%s block starting on line %d is not closed with DONE", current.Kind, current.FirstLine())
		}
		current.Lines = append(current.Lines, line)
		contents = append(contents, trimmed)
		if donePattern.MatchString(trimmed) {
			current.Content = strings.Join(contents, "\n")
			blocks = append(blocks, *current)
			current = nil
		}
	}

	if current != nil {
		return nil, errorAt(file, current.FirstLine(), "%s block is not closed with DONE", current.Kind)
	}
	return blocks, nil
}
