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
	"sort"
	"strings"
)

// Rest is the slot alternative that reads the remainder of the line.
const Rest = "*"

// Slot lists the case-insensitive alternatives accepted at one position.
// An empty alternative makes the slot optional.
type Slot []string

// Words turns "DEFAULT FOR FILE MODE" into one single-alternative slot per word.
func Words(keywords string) []Slot {
	fields := strings.Fields(keywords)
	slots := make([]Slot, 0, len(fields))
	for _, f := range fields {
		slots = append(slots, Slot{f})
	}
	return slots
}

// Tokenizer scans the content of one block.
type Tokenizer struct {
	block   *Block
	text    string
	starts  []int
	pos     int
	matches []string
}

func NewTokenizer(block *Block) *Tokenizer {
	t := &Tokenizer{block: block, text: block.Content, starts: []int{0}}
	for i := 0; i < len(t.text); i++ {
		if t.text[i] == '\n' {
			t.starts = append(t.starts, i+1)
		}
	}
	return t
}

// Pos is the current byte offset in the block content.
func (t *Tokenizer) Pos() int {
	return t.pos
}

// Reset moves back to a position returned by Pos.
func (t *Tokenizer) Reset(pos int) {
	t.pos = pos
	t.matches = nil
}

// Matches returns the literal or value matched by each slot of the last
// successful TryReadTokens call.
func (t *Tokenizer) Matches() []string {
	return t.matches
}

// TryReadTokens matches the slots in order starting at the next statement.
// It either consumes all of them or leaves the position unchanged.
func (t *Tokenizer) TryReadTokens(slots ...Slot) bool {
	start := t.pos
	t.pos = t.skip(t.pos, true)
	matches := make([]string, 0, len(slots))
	for _, slot := range slots {
		m, ok := t.readSlot(slot)
		if !ok {
			t.Reset(start)
			return false
		}
		matches = append(matches, m)
	}
	t.matches = matches
	return true
}

// TryReadStatement is TryReadTokens that also requires the line to end
// after the last slot.
func (t *Tokenizer) TryReadStatement(slots ...Slot) bool {
	start := t.pos
	if !t.TryReadTokens(slots...) {
		return false
	}
	if !t.AtLineEnd() {
		t.Reset(start)
		return false
	}
	return true
}

func (t *Tokenizer) readSlot(slot Slot) (string, bool) {
	if len(slot) == 1 && slot[0] == Rest {
		return t.readRest()
	}
	before := t.pos
	t.pos = t.skip(t.pos, false)
	optional := false
	for _, alt := range slot {
		if alt == "" {
			optional = true
			continue
		}
		if t.wordAt(t.pos, alt) {
			t.pos += len(alt)
			return alt, true
		}
	}
	t.pos = before
	return "", optional
}

func (t *Tokenizer) readRest() (string, bool) {
	p := t.skip(t.pos, false)
	if p < len(t.text) && t.text[p] == '=' {
		p = t.skip(p+1, false)
	}
	end := strings.IndexByte(t.text[p:], '\n')
	if end < 0 {
		end = len(t.text)
	} else {
		end += p
	}
	value := strings.TrimSpace(t.text[p:end])
	if value == "" {
		return "", false
	}
	t.pos = end
	return value, true
}

func (t *Tokenizer) wordAt(p int, word string) bool {
	end := p + len(word)
	if end > len(t.text) || !strings.EqualFold(t.text[p:end], word) {
		return false
	}
	return end == len(t.text) || isSeparator(t.text[end])
}

func isSeparator(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '='
}

// skip advances over spaces and tabs, and over newlines when lines is set.
func (t *Tokenizer) skip(p int, lines bool) int {
	for p < len(t.text) {
		c := t.text[p]
		if c == ' ' || c == '\t' || (lines && c == '\n') {
			p++
			continue
		}
		break
	}
	return p
}

// AtLineEnd reports whether only whitespace remains on the current line.
func (t *Tokenizer) AtLineEnd() bool {
	p := t.skip(t.pos, false)
	return p >= len(t.text) || t.text[p] == '\n'
}

// AtEnd reports whether the content is exhausted.
func (t *Tokenizer) AtEnd() bool {
	return t.skip(t.pos, true) >= len(t.text)
}

// AtDone reports whether the next statement is the closing DONE, alone on
// its line.
func (t *Tokenizer) AtDone() bool {
	p := t.skip(t.pos, true)
	if !t.wordAt(p, "DONE") {
		return false
	}
	p = t.skip(p+len("DONE"), false)
	return p >= len(t.text) || t.text[p] == '\n'
}

// SkipLine moves past the current statement.
func (t *Tokenizer) SkipLine() {
	p := t.skip(t.pos, true)
	end := strings.IndexByte(t.text[p:], '\n')
	if end < 0 {
		t.pos = len(t.text)
	} else {
		t.pos = p + end + 1
	}
	t.matches = nil
}

// CurrentLine maps the start of the next statement to its source line.
func (t *Tokenizer) CurrentLine() SourceLine {
	p := t.skip(t.pos, true)
	idx := sort.Search(len(t.starts), func(i int) bool { return t.starts[i] > p }) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(t.block.Lines) {
		idx = len(t.block.Lines) - 1
	}
	return t.block.Lines[idx]
}
