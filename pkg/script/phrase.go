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
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

type outcomeKind int

const (
	notFound outcomeKind = iota
	failed
	succeeded
)

// Outcome is the result of trying one phrase at the current position.
type Outcome[T any] struct {
	kind  outcomeKind
	err   error
	apply func(*T)
}

func NotFound[T any]() Outcome[T] {
	return Outcome[T]{kind: notFound}
}

// Failed means the statement was recognized but its value is invalid.
func Failed[T any](err error) Outcome[T] {
	return Outcome[T]{kind: failed, err: err}
}

// Succeeded carries the change to apply to the settings being built.
func Succeeded[T any](apply func(*T)) Outcome[T] {
	return Outcome[T]{kind: succeeded, apply: apply}
}

// Phrase is one statement form accepted inside a block.
type Phrase[T any] struct {
	Name     string
	Required bool
	Match    func(*Tokenizer) Outcome[T]
}

// FlagPhrase matches a fixed statement without value.
func FlagPhrase[T any](name, keywords string, set func(*T)) Phrase[T] {
	slots := Words(keywords)
	return Phrase[T]{
		Name: name,
		Match: func(tz *Tokenizer) Outcome[T] {
			if !tz.TryReadStatement(slots...) {
				return NotFound[T]()
			}
			return Succeeded(set)
		},
	}
}

// ValuePhrase matches the keywords followed by a value that runs to the end
// of the line and is converted by parse.
func ValuePhrase[T, V any](name, keywords string, parse func(string) (V, error), set func(*T, V)) Phrase[T] {
	slots := append(Words(keywords), Slot{Rest})
	return Phrase[T]{
		Name: name,
		Match: func(tz *Tokenizer) Outcome[T] {
			if !tz.TryReadStatement(slots...) {
				return NotFound[T]()
			}
			raw := tz.Matches()[len(slots)-1]
			value, err := parse(raw)
			if err != nil {
				return Failed[T](err)
			}
			return Succeeded(func(target *T) { set(target, value) })
		},
	}
}

type phraseState struct {
	seen bool
	line int
}

// parsePhrases reads statements until DONE. For every statement the first
// phrase not matched before wins; a statement matching only phrases already
// seen is reported as a duplicate. All diagnostics of the block are returned
// together.
func parsePhrases[T any](tz *Tokenizer, phrases []Phrase[T], target *T) error {
	file := tz.block.File
	states := make([]phraseState, len(phrases))
	var diags []error

	for !tz.AtDone() {
		if tz.AtEnd() {
			diags = append(diags, errorAt(file, tz.block.FirstLine(), "%s block is not closed with DONE", tz.block.Kind))
			break
		}
		line := tz.CurrentLine()
		start := tz.Pos()

		matched := false
		for i, p := range phrases {
			if states[i].seen {
				continue
			}
			out := p.Match(tz)
			if out.kind == notFound {
				continue
			}
			states[i] = phraseState{seen: true, line: line.Number}
			if out.kind == failed {
				diags = append(diags, errorAt(file, line.Number, "%s: %v", p.Name, out.err))
			} else {
				out.apply(target)
			}
			matched = true
			break
		}

		if !matched {
			for i, p := range phrases {
				if !states[i].seen {
					continue
				}
				if p.Match(tz).kind == notFound {
					continue
				}
				diags = append(diags, errorAt(file, line.Number, "duplicate entry for %s, first given on line %d", p.Name, states[i].line))
				matched = true
				break
			}
		}

		if !matched {
			diags = append(diags, errorAt(file, line.Number, "unrecognized content: %q", line.Content))
		}
		if tz.Pos() == start {
			tz.SkipLine()
		}
	}

	for i, p := range phrases {
		if p.Required && !states[i].seen {
			diags = append(diags, errorAt(file, tz.CurrentLine().Number, "missing required statement %s", p.Name))
		}
	}
	return utilerrors.NewAggregate(diags)
}
