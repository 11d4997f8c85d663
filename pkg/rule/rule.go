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
	"fmt"
	"regexp"
	"strings"

	"github.com/alibaba/opensandbox/vigo/pkg/registry"
	"github.com/alibaba/opensandbox/vigo/pkg/script"
	"github.com/alibaba/opensandbox/vigo/pkg/settings"
	"github.com/alibaba/opensandbox/vigo/pkg/util/glob"
)

// Rule is a DO block resolved against the defaults of its directory.
type Rule struct {
	File string
	Line int
	// Index is the 1-based position among the DO blocks, 0 when implicit.
	Index     int
	Implicit  bool
	Action    script.Action
	Condition script.Condition
	Compare   string
	Replace   string
	List      []string
	Pattern   *regexp.Regexp
	Params    settings.FileHandlingParameters
}

// New validates spec against the directory defaults and compiles its
// condition.
func New(spec script.RuleSpec, defaults settings.Resolved, lists map[string]script.FileList, reg *registry.Registry) (*Rule, error) {
	resolved := defaults.With(spec.Handling)
	if err := reg.CheckTargets(resolved.Targets); err != nil {
		return nil, script.Errorf(spec.File, spec.Line, "rule %d: %v", spec.Index, err)
	}
	invalid, err := reg.InvalidCharacter(resolved.ValidCharacters)
	if err != nil {
		return nil, script.Errorf(spec.File, spec.Line, "rule %d: valid characters %s: %v", spec.Index, resolved.ValidCharacters, err)
	}

	r := &Rule{
		File:      spec.File,
		Line:      spec.Line,
		Index:     spec.Index,
		Action:    spec.Action,
		Condition: spec.Condition,
		Compare:   spec.Compare,
		Replace:   spec.Replace,
		Params:    resolved.Parameters(invalid),
	}
	switch spec.Condition {
	case script.MatchPattern:
		if r.Pattern, err = reg.Compile(spec.Compare); err != nil {
			return nil, script.Errorf(spec.File, spec.Line, "rule %d: invalid name pattern %q: %v", spec.Index, spec.Compare, err)
		}
	case script.MatchList:
		list, ok := lists[spec.Compare]
		if !ok {
			return nil, script.Errorf(spec.File, spec.Line, "rule %d: file list %s is not defined", spec.Index, spec.Compare)
		}
		r.List = list.Patterns
	}
	return r, nil
}

// GetTransformation reports whether the rule applies to name and, if so,
// the name the file gets in the archive.
func (r *Rule) GetTransformation(name string) (bool, string, settings.FileHandlingParameters) {
	switch r.Condition {
	case script.Unconditional:
		return true, name, r.Params
	case script.MatchLiteral:
		if name != r.Compare {
			return false, name, r.Params
		}
		if r.Replace != "" {
			return true, r.Replace, r.Params
		}
		return true, name, r.Params
	case script.MatchPattern:
		if !r.Pattern.MatchString(name) {
			return false, name, r.Params
		}
		if r.Replace != "" {
			return true, r.Pattern.ReplaceAllString(name, r.Replace), r.Params
		}
		return true, name, r.Params
	case script.MatchList:
		_, ok := glob.MatchAny(r.List, name)
		return ok, name, r.Params
	}
	return false, name, r.Params
}

// CanDeploy reports whether matched files are deployed in the given mode.
func (r *Rule) CanDeploy(mode registry.Mode) bool {
	switch r.Action {
	case script.ActionDeploy:
		return true
	case script.ActionCheck:
		return mode == registry.ModeCheck
	}
	return false
}

func (r *Rule) String() string {
	var cond string
	switch r.Condition {
	case script.Unconditional:
		cond = fmt.Sprintf("ALL %s FILES", strings.ToUpper(r.Params.FileType.String()))
	default:
		cond = fmt.Sprintf("FILE IF NAME %s %s", r.Condition, r.Compare)
	}
	if r.Implicit {
		return fmt.Sprintf("implicit %s %s", r.Action, cond)
	}
	return fmt.Sprintf("%s:%d %s %s", r.File, r.Line, r.Action, cond)
}
