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

package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ddddddO/gtree"

	"github.com/alibaba/opensandbox/vigo/pkg/registry"
	"github.com/alibaba/opensandbox/vigo/pkg/tagname"
)

// Tags explains how each file name is scoped for every target.
func Tags(w io.Writer, names []string, reg *registry.Registry) error {
	root := gtree.NewRoot("tags: " + strings.Join(reg.KnownTags().List(), ", "))
	for _, name := range names {
		res := tagname.Parse(name)
		node := root.Add(name)
		if !res.HasTags {
			node.Add("no tag region")
			continue
		}
		node.Add("name: " + res.Name)
		if res.Scoped() {
			node.Add(scopeText(res))
		}
		if len(res.Additional) > 0 {
			node.Add("tags: " + strings.Join(res.Additional, ", "))
		}
		for _, target := range reg.Targets() {
			scope, err := reg.Scope(target)
			if err != nil {
				return err
			}
			node.Add(target + ": " + verdict(res.InScope(scope)))
		}
	}
	return gtree.OutputFromRoot(w, root)
}

func scopeText(res tagname.Result) string {
	text := "SKIP DEPLOY " + strings.Join(res.Primary, ", ")
	if res.Inclusive {
		text = "DEPLOY ONLY " + strings.Join(res.Primary, ", ")
	}
	if len(res.Secondary) > 0 {
		text += " EXCEPT " + strings.Join(res.Secondary, ", ")
	}
	return text
}

func verdict(in bool, err error) string {
	var scopeErr *tagname.ScopeError
	switch {
	case errors.As(err, &scopeErr):
		return fmt.Sprintf("error, unknown tag %s", scopeErr.Tag)
	case err != nil:
		return "error, " + err.Error()
	case in:
		return "deploy"
	}
	return "skip"
}
