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
	"fmt"
	"strings"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/alibaba/opensandbox/vigo/pkg/log"
)

// SourceLine is one line of a configuration script.
type SourceLine struct {
	Number  int
	Content string
}

// Error is a configuration error located in a script.
type Error struct {
	File string
	// Line is 1-based, 0 when the error concerns the whole file.
	Line int
	Msg  string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

// errorAt logs the diagnostic and returns it.
func errorAt(file string, line int, format string, args ...any) *Error {
	e := &Error{File: file, Line: line, Msg: fmt.Sprintf(format, args...)}
	log.Errorw("configuration error", "file", file, "line", line, "error", e.Msg)
	return e
}

// Errorf reports a configuration error found outside of parsing, for
// example while rules are resolved against a directory.
func Errorf(file string, line int, format string, args ...any) *Error {
	return errorAt(file, line, format, args...)
}

// Diagnostics flattens err into the located errors it carries.
func Diagnostics(err error) []*Error {
	if err == nil {
		return nil
	}
	var agg utilerrors.Aggregate
	if errors.As(err, &agg) {
		var out []*Error
		for _, e := range agg.Errors() {
			out = append(out, Diagnostics(e)...)
		}
		return out
	}
	var e *Error
	if errors.As(err, &e) {
		return []*Error{e}
	}
	return nil
}

func splitLines(text string) []SourceLine {
	text = strings.TrimPrefix(text, "\ufeff")
	raw := strings.Split(text, "\n")
	lines := make([]SourceLine, 0, len(raw))
	for i, content := range raw {
		lines = append(lines, SourceLine{Number: i + 1, Content: strings.TrimSuffix(content, "\r")})
	}
	return lines
}

func isBlank(line SourceLine) bool {
	return strings.TrimSpace(line.Content) == ""
}

func isComment(line SourceLine) bool {
	return strings.HasPrefix(strings.TrimSpace(line.Content), "#")
}
