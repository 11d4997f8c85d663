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

// Package registry holds the run wide settings shared by every directory
// of a walk. A Registry is built once per run and passed down explicitly.
package registry

import (
	"fmt"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/alibaba/opensandbox/vigo/pkg/script"
	"github.com/alibaba/opensandbox/vigo/pkg/settings"
	"github.com/alibaba/opensandbox/vigo/pkg/tagname"
)

// Mode selects what a run does with the deployable files.
type Mode int

const (
	// ModePack writes the archives.
	ModePack Mode = iota
	// ModeCheck validates only. CHECK rules deploy in this mode.
	ModeCheck
	// ModePlan reports what would be packed.
	ModePlan
)

func (m Mode) String() string {
	switch m {
	case ModeCheck:
		return "check"
	case ModePlan:
		return "plan"
	default:
		return "pack"
	}
}

const defaultCacheSize = 256

// ConfigFile is a configuration file name searched in every directory,
// together with the format expected in it.
type ConfigFile struct {
	Name   string
	Format script.Format
}

// DefaultConfigFiles are searched in this order when none are configured.
var DefaultConfigFiles = []ConfigFile{
	{Name: ".vigo", Format: script.FormatNative},
	{Name: "vigo.md", Format: script.FormatMarkdown},
}

// TargetOptions declares one deployment target and its active tags.
type TargetOptions struct {
	Name string
	Tags []string
}

type Options struct {
	Targets []TargetOptions
	// Tags are known in addition to target names and target tags.
	Tags           []string
	ConfigFiles    []ConfigFile
	Defaults       settings.Defaults
	ScriptEncoding string
	Mode           Mode
	CacheSize      int
}

// Target is a deployment target with the tags active while packing it.
type Target struct {
	Name   string
	Active tagname.Tags
}

type Registry struct {
	targets        []Target
	byName         map[string]int
	known          tagname.Tags
	configFiles    []ConfigFile
	defaults       settings.Resolved
	scriptEncoding string
	mode           Mode
	patterns       *lru.Cache[string, *regexp.Regexp]
}

// New validates opts and builds the registry.
func New(opts Options) (*Registry, error) {
	if len(opts.Targets) == 0 {
		return nil, fmt.Errorf("no deployment target configured")
	}

	r := &Registry{
		byName: make(map[string]int, len(opts.Targets)),
		known:  tagname.NewTags(),
		mode:   opts.Mode,
	}
	for _, tag := range opts.Tags {
		if !settings.NamePattern.MatchString(tag) {
			return nil, fmt.Errorf("invalid tag name %q", tag)
		}
		r.known.Insert(tag)
	}

	names := make([]string, 0, len(opts.Targets))
	for _, t := range opts.Targets {
		if !settings.NamePattern.MatchString(t.Name) {
			return nil, fmt.Errorf("invalid target name %q", t.Name)
		}
		name := strings.ToLower(t.Name)
		if _, ok := r.byName[name]; ok {
			return nil, fmt.Errorf("target %s is declared twice", name)
		}
		active := tagname.NewTags(name)
		for _, tag := range t.Tags {
			if !settings.NamePattern.MatchString(tag) {
				return nil, fmt.Errorf("target %s: invalid tag name %q", name, tag)
			}
			active.Insert(tag)
		}
		r.known.Insert(active.List()...)
		r.byName[name] = len(r.targets)
		r.targets = append(r.targets, Target{Name: name, Active: active})
		names = append(names, name)
	}

	r.configFiles = opts.ConfigFiles
	if len(r.configFiles) == 0 {
		r.configFiles = DefaultConfigFiles
	}
	seen := sets.New[string]()
	for _, cf := range r.configFiles {
		if cf.Name == "" || strings.ContainsAny(cf.Name, `/\`) {
			return nil, fmt.Errorf("invalid configuration file name %q", cf.Name)
		}
		if seen.Has(cf.Name) {
			return nil, fmt.Errorf("configuration file %s is listed twice", cf.Name)
		}
		seen.Insert(cf.Name)
	}

	if err := validateTargets(opts.Defaults.Targets, r.byName); err != nil {
		return nil, err
	}
	r.defaults = settings.Builtin(names).With(opts.Defaults)

	encoding := opts.ScriptEncoding
	if encoding == "" {
		encoding = "UTF-8"
	}
	canonical, err := settings.ParseEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("script encoding: %w", err)
	}
	r.scriptEncoding = canonical

	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	if r.patterns, err = lru.New[string, *regexp.Regexp](size); err != nil {
		return nil, err
	}
	return r, nil
}

func validateTargets(targets *[]string, known map[string]int) error {
	if targets == nil {
		return nil
	}
	for _, name := range *targets {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("unknown build target %s", name)
		}
	}
	return nil
}

// Targets returns the target names in declaration order.
func (r *Registry) Targets() []string {
	names := make([]string, len(r.targets))
	for i, t := range r.targets {
		names[i] = t.Name
	}
	return names
}

// Target looks a target up by name, case-insensitively.
func (r *Registry) Target(name string) (Target, bool) {
	i, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return Target{}, false
	}
	return r.targets[i], true
}

// CheckTargets reports the first name that is not a declared target.
func (r *Registry) CheckTargets(names []string) error {
	return validateTargets(&names, r.byName)
}

// Scope returns the tag scope of the named target.
func (r *Registry) Scope(target string) (tagname.Scope, error) {
	t, ok := r.Target(target)
	if !ok {
		return tagname.Scope{}, fmt.Errorf("unknown build target %s", target)
	}
	return tagname.Scope{Known: r.known, Active: t.Active}, nil
}

func (r *Registry) KnownTags() tagname.Tags {
	return r.known
}

func (r *Registry) ConfigFiles() []ConfigFile {
	return r.configFiles
}

// Defaults are the settings of the root directory before its own script.
func (r *Registry) Defaults() settings.Resolved {
	return r.defaults.With(settings.Defaults{})
}

func (r *Registry) ScriptEncoding() string {
	return r.scriptEncoding
}

func (r *Registry) Mode() Mode {
	return r.mode
}

// Compile returns the compiled expression, reusing earlier compilations.
func (r *Registry) Compile(expr string) (*regexp.Regexp, error) {
	if re, ok := r.patterns.Get(expr); ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	r.patterns.Add(expr, re)
	return re, nil
}

// InvalidCharacter compiles the pattern matching characters outside v.
// It returns nil when every character is allowed.
func (r *Registry) InvalidCharacter(v settings.ValidCharacters) (*regexp.Regexp, error) {
	expr := v.Pattern()
	if expr == "" {
		return nil, nil
	}
	return r.Compile(expr)
}
