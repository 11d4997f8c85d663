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

package walker

import (
	"io/fs"
	"sort"
	"time"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/alibaba/opensandbox/vigo/pkg/rule"
	"github.com/alibaba/opensandbox/vigo/pkg/settings"
	"github.com/alibaba/opensandbox/vigo/pkg/tagname"
)

// Controller is the state of one directory while it is walked.
type Controller struct {
	Location        string
	ConfigFile      string
	Defaults        settings.Resolved
	Rules           *rule.Set
	KeepEmptyFolder bool
}

// Decision is the fate of one regular file.
type Decision struct {
	// Source is the path of the file in the walked file system.
	Source string
	// Target is the path of the file in the archive.
	Target  string
	Rule    *rule.Rule
	Params  settings.FileHandlingParameters
	Tags    tagname.Result
	ModTime time.Time
	// Targets lists the deployment targets receiving the file, empty when
	// the file is skipped.
	Targets []string
	// Issue is set when the file was skipped because its tags could not be
	// evaluated.
	Issue error
}

// Deploy reports whether the file goes to at least one target.
func (d *Decision) Deploy() bool {
	return len(d.Targets) > 0
}

// Directory is a walked directory with its files and subdirectories.
type Directory struct {
	Source     string
	Target     string
	Mode       fs.FileMode
	ModTime    time.Time
	Controller Controller
	Files      []*Decision
	Dirs       []*Directory
	// Targets are the deployment targets this directory is packed for.
	Targets sets.Set[string]
}

// Tree is the result of a walk.
type Tree struct {
	Root *Directory
}

// Entry is one item written to the archive of a target.
type Entry struct {
	Path    string
	Dir     bool
	Mode    fs.FileMode
	ModTime time.Time
	// Decision is nil for directories.
	Decision *Decision
}

// Targets returns the targets receiving at least one entry, sorted.
func (t *Tree) Targets() []string {
	list := t.Root.Targets.UnsortedList()
	sort.Strings(list)
	return list
}

// Entries lists the archive entries of target in walk order. Every
// directory precedes its content; the root itself is not listed.
func (t *Tree) Entries(target string) []Entry {
	var entries []Entry
	var visit func(d *Directory)
	visit = func(d *Directory) {
		if !d.Targets.Has(target) {
			return
		}
		if d != t.Root {
			entries = append(entries, Entry{Path: d.Target, Dir: true, Mode: d.Mode, ModTime: d.ModTime})
		}
		for _, f := range d.Files {
			if !sets.New(f.Targets...).Has(target) {
				continue
			}
			entries = append(entries, Entry{Path: f.Target, Mode: f.Params.Mode(), ModTime: f.ModTime, Decision: f})
		}
		for _, sub := range d.Dirs {
			visit(sub)
		}
	}
	visit(t.Root)
	return entries
}

// Decisions returns every file decision in walk order.
func (t *Tree) Decisions() []*Decision {
	var out []*Decision
	var visit func(d *Directory)
	visit = func(d *Directory) {
		out = append(out, d.Files...)
		for _, sub := range d.Dirs {
			visit(sub)
		}
	}
	visit(t.Root)
	return out
}

// Issues returns the decisions skipped because of a tag problem.
func (t *Tree) Issues() []*Decision {
	var out []*Decision
	for _, d := range t.Decisions() {
		if d.Issue != nil {
			out = append(out, d)
		}
	}
	return out
}
