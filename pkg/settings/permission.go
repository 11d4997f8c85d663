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
	"fmt"
	"io/fs"
	"regexp"
	"strings"
)

type PermissionKind int

const (
	// PermissionDefault keeps the folder's default file mode.
	PermissionDefault PermissionKind = iota
	PermissionOctal
	// PermissionSymbolic applies chmod style clauses to the default file mode.
	PermissionSymbolic
)

// Permission is the FILE MODE setting of a rule.
type Permission struct {
	Kind    PermissionKind
	Octal   fs.FileMode
	Clauses []Clause
	Text    string
}

// Clause is one chmod style change such as "go-w".
type Clause struct {
	Who  fs.FileMode
	Op   byte
	Bits fs.FileMode
}

var symbolicClausePattern = regexp.MustCompile(`^([ugoa]*)([-+=])([rwx]*)$`)

// ParsePermission accepts an octal mode (755) or symbolic clauses (u+x,go-w).
func ParsePermission(value string) (Permission, error) {
	value = strings.TrimSpace(value)
	if octalModePattern.MatchString(value) {
		mode, err := ParseOctalMode(value)
		if err != nil {
			return Permission{}, err
		}
		return Permission{Kind: PermissionOctal, Octal: mode, Text: value}, nil
	}

	var clauses []Clause
	for _, part := range strings.Split(value, ",") {
		m := symbolicClausePattern.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			return Permission{}, fmt.Errorf("invalid file mode %q, expected octal digits or clauses like u+x,go-w", value)
		}
		clauses = append(clauses, Clause{Who: whoMask(m[1]), Op: m[2][0], Bits: permBits(m[3])})
	}
	return Permission{Kind: PermissionSymbolic, Clauses: clauses, Text: value}, nil
}

func whoMask(who string) fs.FileMode {
	if who == "" {
		return 0o777
	}
	var mask fs.FileMode
	for _, c := range who {
		switch c {
		case 'u':
			mask |= 0o700
		case 'g':
			mask |= 0o070
		case 'o':
			mask |= 0o007
		case 'a':
			mask |= 0o777
		}
	}
	return mask
}

func permBits(perm string) fs.FileMode {
	var bits fs.FileMode
	for _, c := range perm {
		switch c {
		case 'r':
			bits |= 0o444
		case 'w':
			bits |= 0o222
		case 'x':
			bits |= 0o111
		}
	}
	return bits
}

// Apply computes the final mode from the folder default mode.
func (p Permission) Apply(base fs.FileMode) fs.FileMode {
	switch p.Kind {
	case PermissionOctal:
		return p.Octal
	case PermissionSymbolic:
		mode := base.Perm()
		for _, c := range p.Clauses {
			bits := c.Bits & c.Who
			switch c.Op {
			case '+':
				mode |= bits
			case '-':
				mode &^= bits
			case '=':
				mode = (mode &^ c.Who) | bits
			}
		}
		return mode
	default:
		return base.Perm()
	}
}

func (p Permission) String() string {
	if p.Kind == PermissionDefault {
		return "default"
	}
	return p.Text
}
