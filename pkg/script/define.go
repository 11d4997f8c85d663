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

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/alibaba/opensandbox/vigo/pkg/settings"
	"github.com/alibaba/opensandbox/vigo/pkg/util/glob"
)

// FileList is a named list of file name patterns declared with
// DEFINE FILE LIST and referenced by DO … FILE IF NAME IN LIST.
type FileList struct {
	Name     string
	Patterns []string
	Line     int
}

func parseDefine(b *Block) (*FileList, error) {
	tz := NewTokenizer(b)
	if !tz.TryReadStatement(Slot{"DEFINE"}, Slot{"FILE"}, Slot{"LIST"}, Slot{Rest}) {
		return nil, errorAt(b.File, b.FirstLine(), "expected DEFINE FILE LIST <name>, got %q", b.Lines[0].Content)
	}
	name := tz.Matches()[3]
	if !settings.NamePattern.MatchString(name) {
		return nil, errorAt(b.File, b.FirstLine(), "invalid file list name %q", name)
	}

	list := &FileList{Name: strings.ToLower(name), Line: b.FirstLine()}
	var diags []error
	for !tz.AtDone() && !tz.AtEnd() {
		line := tz.CurrentLine()
		if !tz.TryReadTokens(Slot{Rest}) {
			tz.SkipLine()
			continue
		}
		pattern := tz.Matches()[0]
		if err := glob.Validate(pattern); err != nil {
			diags = append(diags, errorAt(b.File, line.Number, "%v", err))
			continue
		}
		list.Patterns = append(list.Patterns, pattern)
	}
	if err := utilerrors.NewAggregate(diags); err != nil {
		return nil, err
	}
	if len(list.Patterns) == 0 {
		return nil, errorAt(b.File, b.FirstLine(), "file list %s is empty", list.Name)
	}
	return list, nil
}
