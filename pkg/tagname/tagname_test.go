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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		hasTags    bool
		stripped   string
		inclusive  bool
		primary    []string
		secondary  []string
		additional []string
	}{
		{
			name:      "deploy only with except",
			input:     "file~1~DEPLOY~ONLY~Non-Prod~TCB~EXCEPT~UAT~~",
			hasTags:   true,
			stripped:  "file~1",
			inclusive: true,
			primary:   []string{"Non-Prod", "TCB"},
			secondary: []string{"UAT"},
		},
		{
			name:     "skip deploy keeps extension",
			input:    "app.SKIP.DEPLOY.prod..conf",
			hasTags:  true,
			stripped: "app.conf",
			primary:  []string{"prod"},
		},
		{
			name:       "tags only",
			input:      "notes_TAGS_draft_review__.md",
			hasTags:    true,
			stripped:   "notes.md",
			additional: []string{"draft", "review"},
		},
		{
			name:       "tags before scope",
			input:      "run-TAGS-infra-DEPLOY-ONLY-prod--.sh",
			hasTags:    true,
			stripped:   "run.sh",
			inclusive:  true,
			primary:    []string{"prod"},
			additional: []string{"infra"},
		},
		{
			name:       "scope then tags",
			input:      "x~DEPLOY~ONLY~a~TAGS~b~~",
			hasTags:    true,
			stripped:   "x",
			inclusive:  true,
			primary:    []string{"a"},
			additional: []string{"b"},
		},
		{
			name:     "two regions with different delimiters",
			input:    "start-DEPLOY-ONLY-a1--middle~SKIP~DEPLOY~a7~~end",
			stripped: "start-DEPLOY-ONLY-a1--middle~SKIP~DEPLOY~a7~~end",
		},
		{
			name:     "no region",
			input:    "plain-file.txt",
			stripped: "plain-file.txt",
		},
		{
			name:     "keywords are case sensitive",
			input:    "f~deploy~only~prod~~",
			stripped: "f~deploy~only~prod~~",
		},
		{
			name:     "invalid ordering",
			input:    "f~DEPLOY~prod~ONLY~~",
			stripped: "f~DEPLOY~prod~ONLY~~",
		},
		{
			name:     "except without scope",
			input:    "f~TAGS~a~EXCEPT~b~~",
			stripped: "f~TAGS~a~EXCEPT~b~~",
		},
		{
			name:     "invalid tag syntax",
			input:    "f~DEPLOY~ONLY~9lives~~",
			stripped: "f~DEPLOY~ONLY~9lives~~",
		},
		{
			name:     "keyword without tags",
			input:    "f~DEPLOY~ONLY~~",
			stripped: "f~DEPLOY~ONLY~~",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.input)
			assert.Equal(t, tt.input, res.Original)
			assert.Equal(t, tt.hasTags, res.HasTags)
			assert.Equal(t, tt.stripped, res.Name)
			assert.Equal(t, tt.inclusive, res.Inclusive)
			assert.Equal(t, tt.primary, res.Primary)
			assert.Equal(t, tt.secondary, res.Secondary)
			assert.Equal(t, tt.additional, res.Additional)
		})
	}
}

func scopeOf(active ...string) Scope {
	return Scope{
		Known:  NewTags("tst", "uat", "prod", "non-prod", "tcb", "draft"),
		Active: NewTags(active...),
	}
}

func TestInScopeExceptOverridesPrimary(t *testing.T) {
	res := Parse("file~1~DEPLOY~ONLY~Non-Prod~TCB~EXCEPT~UAT~~")

	in, err := res.InScope(scopeOf("tst", "non-prod"))
	require.NoError(t, err)
	assert.True(t, in)

	in, err = res.InScope(scopeOf("tst", "uat", "tcb"))
	require.NoError(t, err)
	assert.False(t, in)
}

func TestInScopeExclusive(t *testing.T) {
	res := Parse("app~SKIP~DEPLOY~prod~~.conf")

	in, err := res.InScope(scopeOf("prod"))
	require.NoError(t, err)
	assert.False(t, in)

	in, err = res.InScope(scopeOf("uat"))
	require.NoError(t, err)
	assert.True(t, in)

	// with EXCEPT the exclusive form deploys only to the exceptions
	res = Parse("app~SKIP~DEPLOY~prod~EXCEPT~tcb~~")
	in, err = res.InScope(scopeOf("prod", "tcb"))
	require.NoError(t, err)
	assert.True(t, in)
}

func TestInScopeWithoutScopingTags(t *testing.T) {
	in, err := Parse("notes~TAGS~draft~~").InScope(scopeOf())
	require.NoError(t, err)
	assert.True(t, in)

	in, err = Parse("plain.txt").InScope(scopeOf("anything"))
	require.NoError(t, err)
	assert.True(t, in)
}

func TestInScopeUnknownTag(t *testing.T) {
	_, err := Parse("f~DEPLOY~ONLY~staging~~").InScope(scopeOf("prod"))
	var scopeErr *ScopeError
	require.True(t, errors.As(err, &scopeErr))
	assert.Equal(t, "staging", scopeErr.Tag)
	assert.Equal(t, "f~DEPLOY~ONLY~staging~~", scopeErr.Name)

	_, err = Parse("f~DEPLOY~ONLY~prod~~").InScope(scopeOf("qa"))
	require.True(t, errors.As(err, &scopeErr))
	assert.Equal(t, "qa", scopeErr.Tag)
}

func TestTagsAreCaseInsensitive(t *testing.T) {
	tags := NewTags("Prod", "UAT")
	assert.True(t, tags.Has("prod"))
	assert.True(t, tags.HasAny([]string{"x", "uat"}))
	assert.Equal(t, []string{"prod", "uat"}, tags.List())
}
