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
	"fmt"
	"regexp"
	"strings"
)

// Format is the surface syntax of a script.
type Format int

const (
	// FormatAuto detects the format from the content.
	FormatAuto Format = iota
	// FormatNative is a plain script starting with a vîgô comment line.
	FormatNative
	// FormatMarkdown embeds the script in ```vigo fenced blocks.
	FormatMarkdown
)

func (f Format) String() string {
	switch f {
	case FormatNative:
		return "native"
	case FormatMarkdown:
		return "markdown"
	default:
		return "auto"
	}
}

// ParseFormat accepts native, markdown or auto.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "native":
		return FormatNative, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "auto", "":
		return FormatAuto, nil
	}
	return FormatAuto, fmt.Errorf("unknown script format %q", value)
}

var (
	markerPattern = regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}])v[iî]g[oô]([^\p{L}\p{N}]|$)`)
	fenceOpen     = regexp.MustCompile("(?i)^(```|~~~)\\s*v[iî]g[oô]\\s*$")
)

// Probe detects the format of text and returns the lines holding the script.
// hint restricts detection to one format unless it is FormatAuto.
func Probe(file, text string, hint Format) (Format, []SourceLine, error) {
	lines := splitLines(text)

	if hint == FormatNative || hint == FormatAuto {
		if probeNative(lines) {
			return FormatNative, lines, nil
		}
		if hint == FormatNative {
			return hint, nil, errorAt(file, 0, "not a vîgô script: the first line must be a comment carrying the vîgô marker")
		}
	}

	body, found, err := probeMarkdown(file, lines)
	if err != nil {
		return FormatMarkdown, nil, err
	}
	if found {
		return FormatMarkdown, body, nil
	}
	if hint == FormatMarkdown {
		return hint, nil, errorAt(file, 0, "no ```vigo block carrying the vîgô marker found")
	}
	return hint, nil, errorAt(file, 0, "neither a native vîgô script nor a markdown file with a ```vigo block")
}

func probeNative(lines []SourceLine) bool {
	for _, line := range lines {
		if isBlank(line) {
			continue
		}
		return isComment(line) && markerPattern.MatchString(line.Content)
	}
	return false
}

func probeMarkdown(file string, lines []SourceLine) ([]SourceLine, bool, error) {
	var (
		body     []SourceLine
		fence    string
		openLine int
		fences   int
		marked   bool
	)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line.Content)
		if fence == "" {
			if m := fenceOpen.FindStringSubmatch(trimmed); m != nil {
				fence = m[1]
				openLine = line.Number
				fences++
			}
			continue
		}
		if trimmed == fence {
			fence = ""
			continue
		}
		if fences == 1 && !marked && trimmed != "" {
			if !markerPattern.MatchString(trimmed) {
				return nil, false, nil
			}
			marked = true
			// a bare marker line is not a statement
			if !isComment(line) {
				continue
			}
		}
		body = append(body, line)
	}
	if fence != "" {
		return nil, false, errorAt(file, openLine, "fenced vigo block is not closed")
	}
	if !marked {
		return nil, false, nil
	}
	return body, true, nil
}
