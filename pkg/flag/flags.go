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

package flag

// Config is the run configuration. Values come from the built-in defaults,
// vigo.yaml, the environment (VIGO_*, also read from .env) and the command
// line, the latter taking precedence.
type Config struct {
	// Source is the repository directory to pack.
	Source string `mapstructure:"source" validate:"required"`
	// Output is the directory receiving one <target>.tar.gz per target.
	Output   string `mapstructure:"output" validate:"required"`
	LogLevel int    `mapstructure:"log_level" validate:"min=0,max=7"`

	Targets []TargetConfig `mapstructure:"targets" validate:"required,min=1,dive"`
	// Tags are known tags that no target activates.
	Tags        []string           `mapstructure:"tags" validate:"dive,required"`
	ConfigFiles []ConfigFileConfig `mapstructure:"config_files" validate:"dive"`
	Defaults    DefaultsConfig     `mapstructure:"defaults"`

	ScriptEncoding string `mapstructure:"script_encoding"`
	// ModTime, when set, is the RFC 3339 timestamp written for every entry.
	ModTime     string `mapstructure:"mtime" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Compression int    `mapstructure:"compression" validate:"min=-3,max=9"`
}

type TargetConfig struct {
	Name string   `mapstructure:"name" validate:"required"`
	Tags []string `mapstructure:"tags" validate:"dive,required"`
}

type ConfigFileConfig struct {
	Name   string `mapstructure:"name" validate:"required,excludesall=/\\"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=auto native markdown"`
}

// DefaultsConfig uses the value syntax of the DEFAULT FOR statements.
type DefaultsConfig struct {
	FileMode           string `mapstructure:"file_mode"`
	DirectoryMode      string `mapstructure:"directory_mode"`
	FileType           string `mapstructure:"file_type"`
	SourceEncoding     string `mapstructure:"source_encoding"`
	TargetEncoding     string `mapstructure:"target_encoding"`
	Newline            string `mapstructure:"newline_style"`
	FixTrailingNewline string `mapstructure:"add_trailing_newline"`
	ValidCharacters    string `mapstructure:"valid_characters"`
	BuildTargets       string `mapstructure:"build_targets"`
}
