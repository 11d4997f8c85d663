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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockOf(t *testing.T, text string) *Block {
	t.Helper()
	blocks, err := Group("test.vigo", splitLines(text))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	return &blocks[0]
}

func TestTokenizerReadsHeaderWithRestValue(t *testing.T) {
	b := blockOf(t, "DO DEPLOY TEXT FILE IF NAME EQUALS = a b.txt\nFILE MODE 644\nDONE")
	tz := NewTokenizer(b)

	ok := tz.TryReadStatement(Slot{"DO"}, actionSlot, fileTypeSlot, Slot{"FILE"}, Slot{"IF"}, Slot{"NAME"}, Slot{"EQUALS", "MATCHES"}, Slot{Rest})
	require.True(t, ok)
	assert.Equal(t, []string{"DO", "DEPLOY", "TEXT", "FILE", "IF", "NAME", "EQUALS", "a b.txt"}, tz.Matches())
	assert.Equal(t, 2, tz.CurrentLine().Number)
}

func TestTokenizerOptionalSlotAndCase(t *testing.T) {
	b := blockOf(t, "do ignore all files\nDONE")
	tz := NewTokenizer(b)

	require.True(t, tz.TryReadStatement(Slot{"DO"}, actionSlot, Slot{"ALL"}, fileTypeSlot, Slot{"FILES"}))
	assert.Equal(t, []string{"DO", "IGNORE", "ALL", "", "FILES"}, tz.Matches())
	assert.True(t, tz.AtDone())
}

func TestTokenizerRewindsOnMismatch(t *testing.T) {
	b := blockOf(t, "DO IGNORE ALL FILES\nDONE")
	tz := NewTokenizer(b)

	assert.False(t, tz.TryReadTokens(Slot{"DO"}, Slot{"CHECK"}))
	assert.Equal(t, 0, tz.Pos())
	assert.Nil(t, tz.Matches())

	// a word must end at a separator
	assert.False(t, tz.TryReadTokens(Slot{"D"}))
	assert.Equal(t, 0, tz.Pos())
}

func TestTokenizerStatementNeedsLineEnd(t *testing.T) {
	b := blockOf(t, "CONFIGURE FOLDER\nKEEP EMPTY FOLDER NOW\nDONE")
	tz := NewTokenizer(b)
	require.True(t, tz.TryReadStatement(Words("CONFIGURE FOLDER")...))

	start := tz.Pos()
	assert.False(t, tz.TryReadStatement(Words("KEEP EMPTY FOLDER")...))
	assert.Equal(t, start, tz.Pos())
	assert.True(t, tz.TryReadTokens(Words("KEEP EMPTY FOLDER")...))
	assert.False(t, tz.AtLineEnd())
}

func TestTokenizerRestNeedsValue(t *testing.T) {
	b := blockOf(t, "CONFIGURE FOLDER\nDEFAULT FOR FILE MODE =\nDONE")
	tz := NewTokenizer(b)
	tz.SkipLine()

	assert.Equal(t, 2, tz.CurrentLine().Number)
	assert.False(t, tz.TryReadStatement(append(Words("DEFAULT FOR FILE MODE"), Slot{Rest})...))
	tz.SkipLine()
	assert.True(t, tz.AtDone())
	assert.Equal(t, 3, tz.CurrentLine().Number)
}

func TestTokenizerDoneMustStandAlone(t *testing.T) {
	b := blockOf(t, "DO IGNORE ALL FILES\nDONE FILE MODE 755\nDONE")
	tz := NewTokenizer(b)
	tz.SkipLine()

	assert.False(t, tz.AtDone())
	tz.SkipLine()
	assert.True(t, tz.AtDone())
}

func TestTokenizerCurrentLineSkipsComments(t *testing.T) {
	text := strings.Join([]string{
		"CONFIGURE FOLDER",
		"# comment",
		"",
		"  KEEP EMPTY FOLDER",
		"DONE",
	}, "\n")
	tz := NewTokenizer(blockOf(t, text))
	tz.SkipLine()

	line := tz.CurrentLine()
	assert.Equal(t, 4, line.Number)
	assert.Equal(t, "  KEEP EMPTY FOLDER", line.Content)
}

func TestWords(t *testing.T) {
	assert.Equal(t, []Slot{{"DEFAULT"}, {"FOR"}, {"FILE"}, {"MODE"}}, Words("DEFAULT  FOR FILE MODE"))
}
