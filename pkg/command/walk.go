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

package command

import (
	"io/fs"
	"os"

	"github.com/alibaba/opensandbox/vigo/pkg/registry"
	"github.com/alibaba/opensandbox/vigo/pkg/walker"
)

// walk builds the registry for mode and walks the source repository.
func (r *runner) walk(mode registry.Mode) (fs.FS, *registry.Registry, *walker.Tree, error) {
	reg, err := r.cfg.Registry(mode)
	if err != nil {
		return nil, nil, nil, err
	}
	fsys := os.DirFS(r.cfg.Source)
	tree, err := walker.New(fsys, reg).Walk(".")
	if err != nil {
		return nil, nil, nil, err
	}
	return fsys, reg, tree, nil
}
