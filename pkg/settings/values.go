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

package settings

import (
	"fmt"
	"io/fs"
	"regexp"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// FileType tells whether a file's content is transformed as text or copied verbatim.
type FileType int

const (
	Binary FileType = iota
	Text
)

func (t FileType) String() string {
	if t == Text {
		return "text"
	}
	return "binary"
}

// ParseFileType accepts TEXT or BINARY in any case.
func ParseFileType(value string) (FileType, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "TEXT":
		return Text, nil
	case "BINARY":
		return Binary, nil
	}
	return Binary, fmt.Errorf("unknown file type %q, expected TEXT or BINARY", value)
}

// Newline is the line ending written to text files.
type Newline int

const (
	NewlineKeep Newline = iota
	NewlineLF
	NewlineCRLF
	NewlineCR
)

var newlineNames = map[string]Newline{
	"KEEP":    NewlineKeep,
	"LF":      NewlineLF,
	"UNIX":    NewlineLF,
	"CRLF":    NewlineCRLF,
	"WINDOWS": NewlineCRLF,
	"DOS":     NewlineCRLF,
	"CR":      NewlineCR,
	"MAC":     NewlineCR,
}

// ParseNewline resolves a newline style name.
func ParseNewline(value string) (Newline, error) {
	if n, ok := newlineNames[strings.ToUpper(strings.TrimSpace(value))]; ok {
		return n, nil
	}
	return NewlineKeep, fmt.Errorf("unknown newline style %q, expected KEEP, LF, CRLF or CR", value)
}

func (n Newline) String() string {
	switch n {
	case NewlineLF:
		return "LF"
	case NewlineCRLF:
		return "CRLF"
	case NewlineCR:
		return "CR"
	default:
		return "KEEP"
	}
}

// Sequence returns the line terminator, empty for NewlineKeep.
func (n Newline) Sequence() string {
	switch n {
	case NewlineLF:
		return "\n"
	case NewlineCRLF:
		return "\r\n"
	case NewlineCR:
		return "\r"
	default:
		return ""
	}
}

// ParseBool accepts 1/y/yes/true and 0/n/no/false in any case.
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "y", "yes", "true":
		return true, nil
	case "0", "n", "no", "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q, expected yes or no", value)
}

var octalModePattern = regexp.MustCompile(`^0?[0-7]{3}$`)

// ParseOctalMode parses a three digit octal permission such as 644.
func ParseOctalMode(value string) (fs.FileMode, error) {
	value = strings.TrimSpace(value)
	if !octalModePattern.MatchString(value) {
		return 0, fmt.Errorf("invalid file mode %q, expected three octal digits", value)
	}
	mode, err := strconv.ParseUint(value, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid file mode %q: %w", value, err)
	}
	return fs.FileMode(mode), nil
}

// NamePattern is the syntax shared by target and tag names.
var NamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]{0,50}([-_][A-Za-z0-9]{1,50}){0,100}$`)

var targetSeparators = regexp.MustCompile(`[,;\s]+`)

// ParseTargets parses NONE or a list of target names separated by commas,
// semicolons or whitespace. NONE yields an empty, non-nil list.
func ParseTargets(value string) ([]string, error) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "NONE") {
		return []string{}, nil
	}

	seen := sets.New[string]()
	var targets []string
	for _, name := range targetSeparators.Split(value, -1) {
		if name == "" {
			continue
		}
		if !NamePattern.MatchString(name) {
			return nil, fmt.Errorf("invalid target name %q", name)
		}
		key := strings.ToLower(name)
		if seen.Has(key) {
			continue
		}
		seen.Insert(key)
		targets = append(targets, key)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("empty target list, use NONE to deploy to no target")
	}
	return targets, nil
}
