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

// Package tagname recognizes the tag region embedded in a file name, for
// example "app~DEPLOY~ONLY~prod~~.conf", and decides per deployment target
// whether the file is in scope.
package tagname

import (
	"regexp"
	"strings"

	"github.com/alibaba/opensandbox/vigo/pkg/settings"
)

// Delimiters are the characters that may separate the words of a region.
const Delimiters = "-_~."

const (
	keywordSkip   = "SKIP"
	keywordDeploy = "DEPLOY"
	keywordOnly   = "ONLY"
	keywordExcept = "EXCEPT"
	keywordTags   = "TAGS"
)

var (
	regionPatterns = func() map[byte]*regexp.Regexp {
		m := make(map[byte]*regexp.Regexp, len(Delimiters))
		for i := 0; i < len(Delimiters); i++ {
			d := regexp.QuoteMeta(Delimiters[i : i+1])
			word := "[^" + d + "]+"
			m[Delimiters[i]] = regexp.MustCompile(d + "(?:SKIP|DEPLOY|TAGS)(?:" + d + word + ")*" + d + d)
		}
		return m
	}()

	grammar = []*regexp.Regexp{
		regexp.MustCompile(`^Tt+$`),
		regexp.MustCompile(`^(SD|DO)t+(Et+)?(Tt+)?$`),
		regexp.MustCompile(`^Tt+(SD|DO)t+$`),
	}
)

// Result describes a file name after its tag region has been recognized.
// When HasTags is false Name equals Original and the tag lists are empty.
type Result struct {
	Original string
	Name     string
	HasTags  bool
	// Inclusive is set by DEPLOY ONLY and cleared by SKIP DEPLOY.
	Inclusive  bool
	Primary    []string
	Secondary  []string
	Additional []string
}

// Scoped reports whether the region restricts deployment at all.
func (r Result) Scoped() bool {
	return len(r.Primary) > 0 || len(r.Secondary) > 0
}

// All returns every tag named in the region.
func (r Result) All() []string {
	all := make([]string, 0, len(r.Primary)+len(r.Secondary)+len(r.Additional))
	all = append(all, r.Primary...)
	all = append(all, r.Secondary...)
	return append(all, r.Additional...)
}

type region struct {
	delim      byte
	start, end int
}

// Parse looks for exactly one tag region in name. A missing, repeated or
// malformed region leaves the name unchanged.
func Parse(name string) Result {
	unchanged := Result{Original: name, Name: name}

	var found []region
	for i := 0; i < len(Delimiters); i++ {
		d := Delimiters[i]
		for _, loc := range regionPatterns[d].FindAllStringIndex(name, -1) {
			found = append(found, region{delim: d, start: loc[0], end: loc[1]})
		}
	}
	if len(found) != 1 {
		return unchanged
	}
	reg := found[0]

	body := name[reg.start+1 : reg.end-2]
	words := strings.Split(body, string(reg.delim))
	states := make([]byte, len(words))
	for i, w := range words {
		switch w {
		case keywordSkip:
			states[i] = 'S'
		case keywordDeploy:
			states[i] = 'D'
		case keywordOnly:
			states[i] = 'O'
		case keywordExcept:
			states[i] = 'E'
		case keywordTags:
			states[i] = 'T'
		default:
			if !settings.NamePattern.MatchString(w) {
				return unchanged
			}
			states[i] = 't'
		}
	}
	if !matchesGrammar(string(states)) {
		return unchanged
	}

	res := Result{Original: name, Name: strip(name, reg), HasTags: true}
	var current *[]string
	for i, w := range words {
		switch states[i] {
		case 'S':
			current = &res.Primary
		case 'O':
			res.Inclusive = true
			current = &res.Primary
		case 'D':
			if i > 0 && states[i-1] == 'S' {
				continue
			}
			current = &res.Primary
		case 'E':
			current = &res.Secondary
		case 'T':
			current = &res.Additional
		case 't':
			*current = append(*current, w)
		}
	}
	return res
}

func matchesGrammar(states string) bool {
	for _, g := range grammar {
		if g.MatchString(states) {
			return true
		}
	}
	return false
}

// strip removes the region. The text around it is joined with the region's
// delimiter unless one side already ends in a delimiter.
func strip(name string, reg region) string {
	prefix, suffix := name[:reg.start], name[reg.end:]
	switch {
	case suffix == "", prefix == "":
		return prefix + suffix
	case strings.ContainsAny(suffix[:1], Delimiters), strings.ContainsAny(prefix[len(prefix)-1:], Delimiters):
		return prefix + suffix
	}
	return prefix + string(reg.delim) + suffix
}
