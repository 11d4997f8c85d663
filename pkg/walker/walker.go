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

// Package walker applies the configuration scripts of a source tree to
// every file in it.
package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/alibaba/opensandbox/vigo/pkg/log"
	"github.com/alibaba/opensandbox/vigo/pkg/registry"
	"github.com/alibaba/opensandbox/vigo/pkg/rule"
	"github.com/alibaba/opensandbox/vigo/pkg/script"
	"github.com/alibaba/opensandbox/vigo/pkg/settings"
	"github.com/alibaba/opensandbox/vigo/pkg/tagname"
	"github.com/alibaba/opensandbox/vigo/pkg/transform"
)

const gitDir = ".git"

type Walker struct {
	fsys fs.FS
	reg  *registry.Registry
	root string
}

func New(fsys fs.FS, reg *registry.Registry) *Walker {
	return &Walker{fsys: fsys, reg: reg}
}

// Walk visits root and its subdirectories depth first in lexical order.
// The first configuration or I/O error aborts the walk.
func (w *Walker) Walk(root string) (*Tree, error) {
	w.root = path.Clean(root)
	info, err := fs.Stat(w.fsys, w.root)
	if err != nil {
		log.Errorw("cannot read source directory", "path", w.root, "error", err)
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", w.root)
	}

	dir, err := w.walkDir(w.root, info, w.reg.Defaults())
	if err != nil {
		return nil, err
	}
	tree := &Tree{Root: dir}
	log.Infow("walk finished", "root", w.root, "files", len(tree.Decisions()), "issues", len(tree.Issues()), "targets", tree.Targets())
	return tree, nil
}

// archivePath maps a path of the walked file system into the archive.
func (w *Walker) archivePath(p string) string {
	if w.root == "." {
		return p
	}
	if p == w.root {
		return "."
	}
	return strings.TrimPrefix(p, w.root+"/")
}

func (w *Walker) walkDir(dirPath string, info fs.FileInfo, parent settings.Resolved) (*Directory, error) {
	dirLog := log.With("dir", dirPath)
	entries, err := fs.ReadDir(w.fsys, dirPath)
	if err != nil {
		dirLog.Errorw("cannot list directory", "error", err)
		return nil, err
	}

	ctrl, err := w.controller(dirPath, entries, parent)
	if err != nil {
		return nil, err
	}
	dir := &Directory{
		Source:     dirPath,
		Target:     w.archivePath(dirPath),
		Mode:       ctrl.Defaults.DirectoryMode,
		ModTime:    info.ModTime(),
		Controller: *ctrl,
		Targets:    sets.New[string](),
	}
	if ctrl.KeepEmptyFolder {
		dir.Targets.Insert(ctrl.Defaults.Targets...)
	}

	var subdirs []fs.DirEntry
	claimed := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case entry.IsDir():
			if strings.EqualFold(name, gitDir) {
				continue
			}
			subdirs = append(subdirs, entry)
		case entry.Type().IsRegular():
			if path.Join(dirPath, name) == ctrl.ConfigFile {
				continue
			}
			d, err := w.decide(dirPath, entry, ctrl)
			if err != nil {
				return nil, err
			}
			for _, target := range d.Targets {
				key := target + ":" + d.Target
				if prev, ok := claimed[key]; ok {
					dirLog.Errorw("archive path collision", "path", d.Target, "target", target, "first", prev, "second", d.Source)
					return nil, fmt.Errorf("%s and %s both deploy to %s for target %s", prev, d.Source, d.Target, target)
				}
				claimed[key] = d.Source
			}
			dir.Files = append(dir.Files, d)
			dir.Targets.Insert(d.Targets...)
		default:
			dirLog.Debugw("skipping special file", "name", name, "type", entry.Type().String())
		}
	}

	dirLog.Debugw("directory decided", "config", ctrl.ConfigFile, "files", len(dir.Files), "targets", sets.List(dir.Targets))

	for _, entry := range subdirs {
		subInfo, err := entry.Info()
		if err != nil {
			return nil, err
		}
		sub, err := w.walkDir(path.Join(dirPath, entry.Name()), subInfo, ctrl.Defaults)
		if err != nil {
			return nil, err
		}
		dir.Dirs = append(dir.Dirs, sub)
		dir.Targets = dir.Targets.Union(sub.Targets)
	}
	return dir, nil
}

// controller loads the configuration of dirPath and resolves its defaults.
func (w *Walker) controller(dirPath string, entries []fs.DirEntry, parent settings.Resolved) (*Controller, error) {
	ctrl := &Controller{Location: dirPath, Defaults: parent}

	s, err := w.loadScript(dirPath, entries)
	if err != nil {
		return nil, err
	}
	if s != nil {
		ctrl.ConfigFile = s.File
		if s.Folder != nil {
			ctrl.Defaults = parent.With(s.Folder.Defaults)
			ctrl.KeepEmptyFolder = s.Folder.KeepEmptyFolder
			if err := w.reg.CheckTargets(ctrl.Defaults.Targets); err != nil {
				return nil, script.Errorf(s.File, s.Folder.Line, "%v", err)
			}
		}
	}

	if ctrl.Rules, err = rule.NewSet(s, ctrl.Defaults, w.reg); err != nil {
		return nil, err
	}
	return ctrl, nil
}

// loadScript parses the first configuration file found in the directory.
// It returns nil when the directory has none.
func (w *Walker) loadScript(dirPath string, entries []fs.DirEntry) (*script.Script, error) {
	for _, cf := range w.reg.ConfigFiles() {
		for _, entry := range entries {
			if entry.Name() != cf.Name || !entry.Type().IsRegular() {
				continue
			}
			file := path.Join(dirPath, cf.Name)
			data, err := fs.ReadFile(w.fsys, file)
			if err != nil {
				log.Errorw("cannot read configuration", "file", file, "error", err)
				return nil, err
			}
			text, err := transform.Decode(w.reg.ScriptEncoding(), data)
			if err != nil {
				return nil, script.Errorf(file, 0, "%v", err)
			}
			return script.Parse(file, text, cf.Format)
		}
	}
	return nil, nil
}

func (w *Walker) decide(dirPath string, entry fs.DirEntry, ctrl *Controller) (*Decision, error) {
	source := path.Join(dirPath, entry.Name())
	info, err := entry.Info()
	if err != nil {
		log.Errorw("cannot stat file", "path", source, "error", err)
		return nil, err
	}

	tags := tagname.Parse(entry.Name())
	m, err := ctrl.Rules.Evaluate(tags.Name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	if _, err := script.ValidFileName(m.Name); err != nil {
		return nil, script.Errorf(m.Rule.File, m.Rule.Line, "%s is renamed to an invalid name: %v", source, err)
	}

	d := &Decision{
		Source:  source,
		Target:  w.archivePath(path.Join(dirPath, m.Name)),
		Rule:    m.Rule,
		Params:  m.Params,
		Tags:    tags,
		ModTime: info.ModTime(),
	}
	if !m.Rule.CanDeploy(w.reg.Mode()) {
		log.Debugw("file skipped", "path", source, "rule", m.Rule.String())
		return d, nil
	}

	for _, target := range m.Params.Targets {
		scope, err := w.reg.Scope(target)
		if err != nil {
			return nil, err
		}
		in, err := tags.InScope(scope)
		var scopeErr *tagname.ScopeError
		if errors.As(err, &scopeErr) {
			log.Warnw("file skipped, tag scope cannot be evaluated", "path", source, "target", target, "error", err)
			d.Targets = nil
			d.Issue = err
			return d, nil
		}
		if err != nil {
			return nil, err
		}
		if in {
			d.Targets = append(d.Targets, target)
		}
	}
	log.Debugw("file decided", "path", source, "target", d.Target, "targets", d.Targets, "rule", m.Rule.String())
	return d, nil
}
