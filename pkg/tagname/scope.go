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

package tagname

import (
	"fmt"
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Tags is a case-insensitive set of tag names.
type Tags struct {
	set sets.Set[string]
}

func NewTags(names ...string) Tags {
	t := Tags{set: sets.New[string]()}
	t.Insert(names...)
	return t
}

func (t Tags) Insert(names ...string) {
	for _, n := range names {
		t.set.Insert(strings.ToLower(n))
	}
}

func (t Tags) Has(name string) bool {
	return t.set.Has(strings.ToLower(name))
}

// HasAny reports whether one of names is in the set.
func (t Tags) HasAny(names []string) bool {
	for _, n := range names {
		if t.Has(n) {
			return true
		}
	}
	return false
}

// List returns the lowercased names in sorted order.
func (t Tags) List() []string {
	list := t.set.UnsortedList()
	sort.Strings(list)
	return list
}

// Scope holds the tags of one deployment target.
type Scope struct {
	Known  Tags
	Active Tags
}

// ScopeError reports a tag that is not registered. The file it concerns is
// skipped, the walk goes on.
type ScopeError struct {
	Name string
	Tag  string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("%s: unknown tag %q", e.Name, e.Tag)
}

// InScope decides whether the file is deployed for the target whose tags
// are given. Names without a region, or with TAGS only, are always in scope.
// An EXCEPT clause, when present, overrides the primary clause.
func (r Result) InScope(scope Scope) (bool, error) {
	if !r.HasTags {
		return true, nil
	}
	for _, tag := range scope.Active.List() {
		if !scope.Known.Has(tag) {
			return false, &ScopeError{Name: r.Original, Tag: tag}
		}
	}
	for _, tag := range r.All() {
		if !scope.Known.Has(tag) {
			return false, &ScopeError{Name: r.Original, Tag: tag}
		}
	}
	if !r.Scoped() {
		return true, nil
	}

	included := scope.Active.HasAny(r.Primary) == r.Inclusive
	if len(r.Secondary) > 0 {
		included = scope.Active.HasAny(r.Secondary) != r.Inclusive
	}
	return included, nil
}
