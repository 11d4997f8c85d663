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
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

type CharacterSet int

const (
	// AllCharacters disables the character check.
	AllCharacters CharacterSet = iota
	ASCII
	ASCIIGerman
)

var characterSetNames = map[string]CharacterSet{
	"ALL":         AllCharacters,
	"ASCII":       ASCII,
	"ASCIIGERMAN": ASCIIGerman,
}

const (
	asciiClass  = `\t\n\r\x{20}-\x{7E}`
	germanClass = `äöüÄÖÜß`
)

// ValidCharacters restricts the characters allowed in a text file.
type ValidCharacters struct {
	Set   CharacterSet
	Extra string
}

// ParseValidCharacters accepts All, Ascii or AsciiGerman, the latter two
// optionally followed by "+" and extra characters, e.g. "Ascii+§°".
func ParseValidCharacters(value string) (ValidCharacters, error) {
	value = strings.TrimSpace(value)
	name, extra, hasExtra := strings.Cut(value, "+")
	set, ok := characterSetNames[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return ValidCharacters{}, fmt.Errorf("unknown character set %q, expected All, Ascii or AsciiGerman", name)
	}
	if hasExtra {
		if set == AllCharacters {
			return ValidCharacters{}, fmt.Errorf("character set All does not take extra characters")
		}
		if extra == "" {
			return ValidCharacters{}, fmt.Errorf("missing extra characters after '+' in %q", value)
		}
	}
	return ValidCharacters{Set: set, Extra: extra}, nil
}

// Unrestricted reports whether every character is allowed.
func (v ValidCharacters) Unrestricted() bool {
	return v.Set == AllCharacters
}

// Pattern returns a regular expression matching a single character outside
// the allowed set. It is empty when the set is unrestricted.
func (v ValidCharacters) Pattern() string {
	if v.Unrestricted() {
		return ""
	}
	var b strings.Builder
	b.WriteString("[^")
	b.WriteString(asciiClass)
	if v.Set == ASCIIGerman {
		b.WriteString(germanClass)
	}
	for _, r := range v.Extra {
		if strings.ContainsRune(`\]-^[`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteString("]")
	return b.String()
}

func (v ValidCharacters) String() string {
	var name string
	switch v.Set {
	case ASCII:
		name = "Ascii"
	case ASCIIGerman:
		name = "AsciiGerman"
	default:
		return "All"
	}
	if v.Extra != "" {
		return name + "+" + v.Extra
	}
	return name
}

// LookupEncoding resolves an IANA character set name or alias.
func LookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}

// ParseEncoding validates an encoding name and returns its canonical spelling.
func ParseEncoding(name string) (string, error) {
	enc, err := LookupEncoding(name)
	if err != nil {
		return "", err
	}
	if canonical, err := ianaindex.MIME.Name(enc); err == nil {
		return canonical, nil
	}
	if canonical, err := ianaindex.IANA.Name(enc); err == nil {
		return canonical, nil
	}
	return strings.TrimSpace(name), nil
}
