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
	"io/fs"
	"regexp"
	"slices"
)

// Defaults holds file handling settings where every field is optional.
// A nil field inherits from the enclosing scope.
type Defaults struct {
	FileMode           *fs.FileMode
	DirectoryMode      *fs.FileMode
	FileType           *FileType
	SourceEncoding     *string
	TargetEncoding     *string
	Newline            *Newline
	FixTrailingNewline *bool
	ValidCharacters    *ValidCharacters
	// Targets set to an empty slice means NONE.
	Targets    *[]string
	Permission *Permission
}

// Overlay returns d with every field set in child replacing its own.
func (d Defaults) Overlay(child Defaults) Defaults {
	out := d
	if child.FileMode != nil {
		out.FileMode = child.FileMode
	}
	if child.DirectoryMode != nil {
		out.DirectoryMode = child.DirectoryMode
	}
	if child.FileType != nil {
		out.FileType = child.FileType
	}
	if child.SourceEncoding != nil {
		out.SourceEncoding = child.SourceEncoding
	}
	if child.TargetEncoding != nil {
		out.TargetEncoding = child.TargetEncoding
	}
	if child.Newline != nil {
		out.Newline = child.Newline
	}
	if child.FixTrailingNewline != nil {
		out.FixTrailingNewline = child.FixTrailingNewline
	}
	if child.ValidCharacters != nil {
		out.ValidCharacters = child.ValidCharacters
	}
	if child.Targets != nil {
		out.Targets = child.Targets
	}
	if child.Permission != nil {
		out.Permission = child.Permission
	}
	return out
}

// Resolved is a fully defined set of file handling settings.
type Resolved struct {
	FileMode           fs.FileMode
	DirectoryMode      fs.FileMode
	FileType           FileType
	SourceEncoding     string
	TargetEncoding     string
	Newline            Newline
	FixTrailingNewline bool
	ValidCharacters    ValidCharacters
	Targets            []string
	Permission         Permission
}

// Builtin returns the settings used when neither the run configuration nor
// any script sets a value.
func Builtin(targets []string) Resolved {
	return Resolved{
		FileMode:        0o644,
		DirectoryMode:   0o755,
		FileType:        Binary,
		SourceEncoding:  "UTF-8",
		TargetEncoding:  "UTF-8",
		Newline:         NewlineKeep,
		ValidCharacters: ValidCharacters{Set: AllCharacters},
		Targets:         slices.Clone(targets),
	}
}

// With returns a copy of r overridden by the fields set in d. r is not modified.
func (r Resolved) With(d Defaults) Resolved {
	out := r
	out.Targets = slices.Clone(r.Targets)
	if d.FileMode != nil {
		out.FileMode = *d.FileMode
	}
	if d.DirectoryMode != nil {
		out.DirectoryMode = *d.DirectoryMode
	}
	if d.FileType != nil {
		out.FileType = *d.FileType
	}
	if d.SourceEncoding != nil {
		out.SourceEncoding = *d.SourceEncoding
	}
	if d.TargetEncoding != nil {
		out.TargetEncoding = *d.TargetEncoding
	}
	if d.Newline != nil {
		out.Newline = *d.Newline
	}
	if d.FixTrailingNewline != nil {
		out.FixTrailingNewline = *d.FixTrailingNewline
	}
	if d.ValidCharacters != nil {
		out.ValidCharacters = *d.ValidCharacters
	}
	if d.Targets != nil {
		out.Targets = slices.Clone(*d.Targets)
	}
	if d.Permission != nil {
		out.Permission = *d.Permission
	}
	return out
}

// FileHandlingParameters are the settings applied to one file.
// For binary files the encoding, newline and character fields are ignored.
type FileHandlingParameters struct {
	FileType           FileType
	SourceEncoding     string
	TargetEncoding     string
	BaseMode           fs.FileMode
	Permission         Permission
	Newline            Newline
	FixTrailingNewline bool
	ValidCharacters    ValidCharacters
	// InvalidCharacter matches a disallowed character; nil means unrestricted.
	InvalidCharacter *regexp.Regexp
	Targets          []string
}

// Parameters turns r into per file parameters. invalid is the compiled
// ValidCharacters pattern or nil.
func (r Resolved) Parameters(invalid *regexp.Regexp) FileHandlingParameters {
	return FileHandlingParameters{
		FileType:           r.FileType,
		SourceEncoding:     r.SourceEncoding,
		TargetEncoding:     r.TargetEncoding,
		BaseMode:           r.FileMode,
		Permission:         r.Permission,
		Newline:            r.Newline,
		FixTrailingNewline: r.FixTrailingNewline,
		ValidCharacters:    r.ValidCharacters,
		InvalidCharacter:   invalid,
		Targets:            slices.Clone(r.Targets),
	}
}

// Mode is the permission written to the archive.
func (p FileHandlingParameters) Mode() fs.FileMode {
	return p.Permission.Apply(p.BaseMode)
}
