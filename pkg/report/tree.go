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

// Package report renders walk results for people.
package report

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ddddddO/gtree"

	"github.com/alibaba/opensandbox/vigo/pkg/walker"
)

// Tree prints the walked directories and the decision taken for every file.
func Tree(w io.Writer, tree *walker.Tree, title string) error {
	root := gtree.NewRoot(title)
	addDirectory(root, tree.Root)
	return gtree.OutputFromRoot(w, root)
}

func addDirectory(node *gtree.Node, dir *walker.Directory) {
	for _, f := range dir.Files {
		node.Add(describe(f))
	}
	for _, sub := range dir.Dirs {
		text := path.Base(sub.Source) + "/"
		if sub.Controller.ConfigFile != "" {
			text += " (" + path.Base(sub.Controller.ConfigFile) + ")"
		}
		addDirectory(node.Add(text), sub)
	}
}

func describe(d *walker.Decision) string {
	name := path.Base(d.Source)
	switch {
	case d.Issue != nil:
		return fmt.Sprintf("%s ✗ %v", name, d.Issue)
	case !d.Deploy():
		return fmt.Sprintf("%s - skipped by %s", name, d.Rule)
	}
	text := name
	if target := path.Base(d.Target); target != name {
		text += " → " + target
	}
	return fmt.Sprintf("%s [%s] %s %04o", text, strings.Join(d.Targets, ","), d.Params.FileType, d.Params.Mode())
}
