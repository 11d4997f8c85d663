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
	"github.com/alibaba/opensandbox/vigo/pkg/log"
)

// Script is a parsed vîgô configuration file.
type Script struct {
	File   string
	Format Format
	// Folder is nil when the script has no CONFIGURE FOLDER block.
	Folder *FolderConfig
	Rules  []RuleSpec
	Lists  map[string]FileList
}

// Parse probes, groups and parses the script text read from file.
func Parse(file, text string, hint Format) (*Script, error) {
	format, lines, err := Probe(file, text, hint)
	if err != nil {
		return nil, err
	}
	blocks, err := Group(file, lines)
	if err != nil {
		return nil, err
	}

	s := &Script{File: file, Format: format, Lists: make(map[string]FileList)}
	for i := range blocks {
		b := &blocks[i]
		switch b.Kind {
		case FolderBlock:
			folder, err := parseFolder(b)
			if err != nil {
				return nil, err
			}
			s.Folder = folder
		case RuleBlock:
			rule, err := parseRule(b)
			if err != nil {
				return nil, err
			}
			s.Rules = append(s.Rules, *rule)
		case DefineBlock:
			list, err := parseDefine(b)
			if err != nil {
				return nil, err
			}
			if prev, ok := s.Lists[list.Name]; ok {
				return nil, errorAt(file, list.Line, "file list %s is already defined on line %d", list.Name, prev.Line)
			}
			s.Lists[list.Name] = *list
		}
	}

	for _, rule := range s.Rules {
		if rule.Condition != MatchList {
			continue
		}
		if _, ok := s.Lists[rule.Compare]; !ok {
			return nil, errorAt(file, rule.Line, "file list %s is not defined", rule.Compare)
		}
	}

	log.Debugw("parsed configuration", "file", file, "format", format.String(), "rules", len(s.Rules), "lists", len(s.Lists))
	return s, nil
}
