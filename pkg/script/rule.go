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

	"github.com/alibaba/opensandbox/vigo/pkg/settings"
)

// Action is what a rule does with the files it matches.
type Action int

const (
	ActionSkip Action = iota
	ActionDeploy
	// ActionCheck deploys only when the run validates instead of packing.
	ActionCheck
)

func (a Action) String() string {
	switch a {
	case ActionDeploy:
		return "DEPLOY"
	case ActionCheck:
		return "CHECK"
	default:
		return "IGNORE"
	}
}

func parseAction(word string) Action {
	switch word {
	case "DEPLOY":
		return ActionDeploy
	case "CHECK":
		return ActionCheck
	default:
		return ActionSkip
	}
}

// Condition selects the files a rule applies to.
type Condition int

const (
	Unconditional Condition = iota
	MatchLiteral
	MatchPattern
	MatchList
)

func (c Condition) String() string {
	switch c {
	case MatchLiteral:
		return "EQUALS"
	case MatchPattern:
		return "MATCHES"
	case MatchList:
		return "IN LIST"
	default:
		return "ALL"
	}
}

// RuleSpec is a parsed DO block before it is checked against the folder
// defaults of its directory.
type RuleSpec struct {
	File      string
	Line      int
	Index     int
	Action    Action
	Condition Condition
	// Compare is the literal name, the pattern or the list name.
	Compare string
	// Replace is the RENAME TO name or the NAME REPLACE PATTERN template.
	Replace  string
	Handling settings.Defaults
}

var (
	actionSlot   = Slot{"IGNORE", "DEPLOY", "CHECK"}
	fileTypeSlot = Slot{"TEXT", "BINARY", ""}
)

func parseRuleHeader(tz *Tokenizer, spec *RuleSpec) error {
	b := tz.block
	switch {
	case tz.TryReadStatement(Slot{"DO"}, actionSlot, fileTypeSlot, Slot{"FILE"}, Slot{"IF"}, Slot{"NAME"}, Slot{"EQUALS", "MATCHES"}, Slot{Rest}):
		m := tz.Matches()
		spec.Condition = MatchLiteral
		if m[6] == "MATCHES" {
			spec.Condition = MatchPattern
			if _, err := regexp.Compile(m[7]); err != nil {
				return errorAt(b.File, b.FirstLine(), "invalid name pattern %q: %v", m[7], err)
			}
		}
		spec.Compare = m[7]
		return setHeader(b, spec, m[1], m[2])
	case tz.TryReadStatement(Slot{"DO"}, actionSlot, fileTypeSlot, Slot{"FILE"}, Slot{"IF"}, Slot{"NAME"}, Slot{"IN"}, Slot{"LIST"}, Slot{Rest}):
		m := tz.Matches()
		spec.Condition = MatchList
		spec.Compare = strings.ToLower(m[8])
		return setHeader(b, spec, m[1], m[2])
	case tz.TryReadStatement(Slot{"DO"}, actionSlot, Slot{"ALL"}, fileTypeSlot, Slot{"FILES"}):
		m := tz.Matches()
		spec.Condition = Unconditional
		return setHeader(b, spec, m[1], m[3])
	}
	return errorAt(b.File, b.FirstLine(), "unrecognized rule header %q, expected DO <IGNORE|DEPLOY|CHECK> [TEXT|BINARY] FILE IF NAME <EQUALS|MATCHES> <value> or DO <IGNORE|DEPLOY|CHECK> ALL [TEXT|BINARY] FILES", b.Lines[0].Content)
}

func setHeader(b *Block, spec *RuleSpec, action, fileType string) error {
	spec.Action = parseAction(action)
	if fileType != "" {
		ft, err := settings.ParseFileType(fileType)
		if err != nil {
			return errorAt(b.File, b.FirstLine(), "%v", err)
		}
		spec.Handling.FileType = &ft
	}
	return nil
}

// ValidFileName checks that value names a file inside its directory.
func ValidFileName(value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("file name is empty")
	}
	if strings.ContainsAny(value, `/\`) || value == "." || value == ".." {
		return "", fmt.Errorf("%q is not a plain file name", value)
	}
	return value, nil
}

func rulePhrases(condition Condition) []Phrase[RuleSpec] {
	requires := func(want Condition, statement string) error {
		if condition == want {
			return nil
		}
		return fmt.Errorf("%s is only allowed with IF NAME %s, this rule uses %s", statement, want, condition)
	}

	return []Phrase[RuleSpec]{
		ValuePhrase("Rename To", "RENAME TO", func(v string) (string, error) {
			if err := requires(MatchLiteral, "RENAME TO"); err != nil {
				return "", err
			}
			return ValidFileName(v)
		}, func(r *RuleSpec, v string) {
			r.Replace = v
		}),
		ValuePhrase("Name Replace Pattern", "NAME REPLACE PATTERN", func(v string) (string, error) {
			if err := requires(MatchPattern, "NAME REPLACE PATTERN"); err != nil {
				return "", err
			}
			return v, nil
		}, func(r *RuleSpec, v string) {
			r.Replace = v
		}),
		ValuePhrase("File Mode", "FILE MODE", settings.ParsePermission, func(r *RuleSpec, v settings.Permission) {
			r.Handling.Permission = &v
		}),
		ValuePhrase("Source Encoding", "SOURCE ENCODING", settings.ParseEncoding, func(r *RuleSpec, v string) {
			r.Handling.SourceEncoding = &v
		}),
		ValuePhrase("Target Encoding", "TARGET ENCODING", settings.ParseEncoding, func(r *RuleSpec, v string) {
			r.Handling.TargetEncoding = &v
		}),
		ValuePhrase("Newline Style", "NEWLINE STYLE", settings.ParseNewline, func(r *RuleSpec, v settings.Newline) {
			r.Handling.Newline = &v
		}),
		ValuePhrase("Add Trailing Newline", "ADD TRAILING NEWLINE", settings.ParseBool, func(r *RuleSpec, v bool) {
			r.Handling.FixTrailingNewline = &v
		}),
		ValuePhrase("Valid Characters", "VALID CHARACTERS", settings.ParseValidCharacters, func(r *RuleSpec, v settings.ValidCharacters) {
			r.Handling.ValidCharacters = &v
		}),
		ValuePhrase("Build Targets", "BUILD TARGETS", settings.ParseTargets, func(r *RuleSpec, v []string) {
			r.Handling.Targets = &v
		}),
	}
}

func parseRule(b *Block) (*RuleSpec, error) {
	tz := NewTokenizer(b)
	spec := &RuleSpec{File: b.File, Line: b.FirstLine(), Index: b.RuleIndex}
	if err := parseRuleHeader(tz, spec); err != nil {
		return nil, err
	}
	if err := parsePhrases(tz, rulePhrases(spec.Condition), spec); err != nil {
		return nil, err
	}
	return spec, nil
}
