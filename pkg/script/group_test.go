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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupText(text string) ([]Block, error) {
	return Group("test.vigo", splitLines(text))
}

func requireErrorLine(t *testing.T, err error, line int) *Error {
	t.Helper()
	var scriptErr *Error
	require.True(t, errors.As(err, &scriptErr), "expected located error, got %v", err)
	assert.Equal(t, line, scriptErr.Line)
	return scriptErr
}

func TestGroupSplitsBlocks(t *testing.T) {
	text := strings.Join([]string{
		"# vîgô",                          // 1
		"CONFIGURE FOLDER",                // 2
		"  DEFAULT FOR FILE MODE 0640",    // 3
		"DONE",                            // 4
		"",                                // 5
		"DO IGNORE FILE IF NAME EQUALS x", // 6
		"DONE",                            // 7
		"DEFINE FILE LIST scripts",        // 8
		"  *.sh",                          // 9
		"DONE",                            // 10
		"do deploy all files",             // 11
		"done",                            // 12
	}, "\n")

	blocks, err := groupText(text)
	require.NoError(t, err)
	require.Len(t, blocks, 4)

	assert.Equal(t, FolderBlock, blocks[0].Kind)
	assert.Equal(t, "CONFIGURE FOLDER\nDEFAULT FOR FILE MODE 0640\nDONE", blocks[0].Content)
	assert.Equal(t, 2, blocks[0].FirstLine())
	assert.Equal(t, 0, blocks[0].RuleIndex)

	assert.Equal(t, RuleBlock, blocks[1].Kind)
	assert.Equal(t, 2, blocks[1].Position)
	assert.Equal(t, 1, blocks[1].RuleIndex)

	assert.Equal(t, DefineBlock, blocks[2].Kind)
	assert.Equal(t, 0, blocks[2].RuleIndex)

	assert.Equal(t, RuleBlock, blocks[3].Kind)
	assert.Equal(t, 4, blocks[3].Position)
	assert.Equal(t, 2, blocks[3].RuleIndex)
	assert.Equal(t, 11, blocks[3].FirstLine())
}

func TestGroupErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
		msg  string
	}{
		{
			name: "text outside of a block",
			text: "# vîgô\nKEEP EMPTY FOLDER\n",
			line: 2,
			msg:  "outside of a block",
		},
		{
			name: "second folder block",
			text: "CONFIGURE FOLDER\nDONE\nCONFIGURE FOLDER\nDONE\n",
			line: 3,
			msg:  "first starts on line 1",
		},
		{
			name: "folder block after rule",
			text: "DO IGNORE ALL FILES\nDONE\nCONFIGURE FOLDER\nDONE\n",
			line: 3,
			msg:  "must precede",
		},
		{
			name: "header inside open block",
			text: "DO IGNORE ALL FILES\nDO DEPLOY ALL FILES\nDONE\n",
			line: 2,
			msg:  "starting on line 1 is not closed",
		},
		{
			name: "block never closed",
			text: "CONFIGURE FOLDER\n  KEEP EMPTY FOLDER\n",
			line: 1,
			msg:  "not closed with DONE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := groupText(tt.text)
			scriptErr := requireErrorLine(t, err, tt.line)
			assert.Contains(t, scriptErr.Msg, tt.msg)
			assert.Equal(t, "test.vigo", scriptErr.File)
		})
	}
}

func TestGroupIgnoresCommentsInsideBlocks(t *testing.T) {
	blocks, err := groupText("DO IGNORE ALL FILES\n  # DEPLOY\n\nDONE")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Len(t, blocks[0].Lines, 2)
}

func TestErrorFormat(t *testing.T) {
	assert.Equal(t, "a/.vigo:3: boom", (&Error{File: "a/.vigo", Line: 3, Msg: "boom"}).Error())
	assert.Equal(t, "a/.vigo: boom", (&Error{File: "a/.vigo", Msg: "boom"}).Error())
}
