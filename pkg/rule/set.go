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

package rule

import (
	"errors"
	"fmt"

	"github.com/alibaba/opensandbox/vigo/pkg/log"
	"github.com/alibaba/opensandbox/vigo/pkg/registry"
	"github.com/alibaba/opensandbox/vigo/pkg/script"
	"github.com/alibaba/opensandbox/vigo/pkg/settings"
)

// ErrNotCovered is returned when no rule matches a file.
var ErrNotCovered = errors.New("no rule matches")

// Set is the ordered rule list of one directory.
type Set struct {
	rules []*Rule
}

// Match is the outcome of evaluating a file name against a Set.
type Match struct {
	Rule   *Rule
	Name   string
	Params settings.FileHandlingParameters
}

// NewSet resolves the rules of s against defaults and appends the implicit
// catch-all: IGNORE when s is nil or has no rules, DEPLOY when the last
// rule is conditional.
func NewSet(s *script.Script, defaults settings.Resolved, reg *registry.Registry) (*Set, error) {
	set := &Set{}
	if s == nil || len(s.Rules) == 0 {
		file := ""
		if s != nil {
			file = s.File
		}
		return set, set.appendImplicit(file, script.ActionSkip, defaults, reg)
	}

	for _, spec := range s.Rules {
		r, err := New(spec, defaults, s.Lists, reg)
		if err != nil {
			return nil, err
		}
		set.rules = append(set.rules, r)
	}
	if last := set.rules[len(set.rules)-1]; last.Condition != script.Unconditional {
		if err := set.appendImplicit(s.File, script.ActionDeploy, defaults, reg); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func (s *Set) appendImplicit(file string, action script.Action, defaults settings.Resolved, reg *registry.Registry) error {
	invalid, err := reg.InvalidCharacter(defaults.ValidCharacters)
	if err != nil {
		return script.Errorf(file, 0, "valid characters %s: %v", defaults.ValidCharacters, err)
	}
	s.rules = append(s.rules, &Rule{
		File:      file,
		Implicit:  true,
		Action:    action,
		Condition: script.Unconditional,
		Params:    defaults.Parameters(invalid),
	})
	return nil
}

func (s *Set) Rules() []*Rule {
	return s.rules
}

// Evaluate returns the first rule matching name.
func (s *Set) Evaluate(name string) (Match, error) {
	for _, r := range s.rules {
		if ok, target, params := r.GetTransformation(name); ok {
			return Match{Rule: r, Name: target, Params: params}, nil
		}
	}
	log.Errorw("file not covered by any rule", "name", name)
	return Match{}, fmt.Errorf("%s: %w", name, ErrNotCovered)
}
