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

// Package transform applies the text settings of a rule to file content.
package transform

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/alibaba/opensandbox/vigo/pkg/settings"
)

var lineBreak = regexp.MustCompile(`\r\n|\r|\n`)

// CharacterError locates the first character not allowed by the valid
// characters setting. Line and Column are 1-based, Column counts runes.
type CharacterError struct {
	Line   int
	Column int
	Char   rune
}

func (e *CharacterError) Error() string {
	return fmt.Sprintf("line %d, column %d: invalid character %q (U+%04X)", e.Line, e.Column, e.Char, e.Char)
}

// Decode converts data in the named encoding to UTF-8.
func Decode(encodingName string, data []byte) (string, error) {
	enc, err := settings.LookupEncoding(encodingName)
	if err != nil {
		return "", err
	}
	if enc == unicode.UTF8 {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("content is not valid %s", encodingName)
		}
		return string(data), nil
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", encodingName, err)
	}
	return string(out), nil
}

// Encode converts UTF-8 text to the named encoding. Characters the target
// encoding cannot represent are an error.
func Encode(encodingName, text string) ([]byte, error) {
	enc, err := settings.LookupEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return []byte(text), nil
	}
	out, err := enc.NewEncoder().String(text)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", encodingName, err)
	}
	return []byte(out), nil
}

// Apply returns the content as it is written to the archive. Binary
// content is returned unchanged.
func Apply(content []byte, params settings.FileHandlingParameters) ([]byte, error) {
	if params.FileType == settings.Binary {
		return content, nil
	}

	text, err := Decode(params.SourceEncoding, content)
	if err != nil {
		return nil, err
	}
	if err := Validate(text, params); err != nil {
		return nil, err
	}

	seq := params.Newline.Sequence()
	if seq != "" {
		text = lineBreak.ReplaceAllLiteralString(text, seq)
	}
	if params.FixTrailingNewline && text != "" && !strings.HasSuffix(text, "\n") && !strings.HasSuffix(text, "\r") {
		if seq == "" {
			seq = detectNewline(text)
		}
		text += seq
	}
	return Encode(params.TargetEncoding, text)
}

// Validate reports the first character of text not allowed by params.
func Validate(text string, params settings.FileHandlingParameters) error {
	if params.InvalidCharacter == nil {
		return nil
	}
	loc := params.InvalidCharacter.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	before := text[:loc[0]]
	line := 1 + strings.Count(before, "\n")
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		before = before[i+1:]
	}
	char, _ := utf8.DecodeRuneInString(text[loc[0]:])
	return &CharacterError{Line: line, Column: utf8.RuneCountInString(before) + 1, Char: char}
}

// detectNewline returns the first line break used in text, LF when none.
func detectNewline(text string) string {
	if m := lineBreak.FindString(text); m != "" {
		return m
	}
	return "\n"
}
