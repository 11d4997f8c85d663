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

package glob

import (
	"fmt"

	globutil "github.com/bmatcuk/doublestar/v4"
)

// Validate reports a malformed pattern. Patterns follow doublestar syntax:
// "*", "?", "[a-z]", "[^a]", "{a,b}" and "**".
func Validate(pattern string) error {
	if !globutil.ValidatePattern(pattern) {
		return fmt.Errorf("invalid file name pattern %q: %w", pattern, globutil.ErrBadPattern)
	}
	return nil
}

// Match reports whether name matches pattern.
func Match(pattern, name string) (bool, error) {
	return globutil.Match(pattern, name)
}

// MatchAny returns the first of patterns matching name.
// Patterns are expected to be validated already; invalid ones never match.
func MatchAny(patterns []string, name string) (string, bool) {
	for _, pattern := range patterns {
		if ok, err := Match(pattern, name); err == nil && ok {
			return pattern, true
		}
	}
	return "", false
}
