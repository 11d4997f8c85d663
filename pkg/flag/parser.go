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

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/bsthun/gut"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/alibaba/opensandbox/vigo/pkg/log"
	"github.com/alibaba/opensandbox/vigo/pkg/registry"
	"github.com/alibaba/opensandbox/vigo/pkg/script"
	"github.com/alibaba/opensandbox/vigo/pkg/settings"
)

const (
	envPrefix         = "VIGO"
	defaultConfigName = "vigo"
	defaultEnvFile    = ".env"
	targetOverrideKey = "target"
)

// Loader reads the run configuration.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()
	v.SetDefault("source", ".")
	v.SetDefault("output", "dist")
	v.SetDefault("log_level", 6)
	v.SetDefault("script_encoding", "UTF-8")
	v.SetDefault("mtime", "")
	v.SetDefault("compression", 0)
	for _, key := range []string{
		"file_mode", "directory_mode", "file_type", "source_encoding", "target_encoding",
		"newline_style", "add_trailing_newline", "valid_characters", "build_targets",
	} {
		v.SetDefault("defaults."+key, "")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// BindFlags registers the command line flags shared by every command.
func (l *Loader) BindFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "run configuration file (default: vigo.yaml in the working directory)")
	flags.String("env-file", defaultEnvFile, "file with VIGO_* variables loaded before the environment is read")
	flags.String("source", l.v.GetString("source"), "repository directory to pack")
	flags.String("output", l.v.GetString("output"), "directory receiving the archives")
	flags.StringSlice(targetOverrideKey, nil, "deployment targets, replaces the targets of the configuration file")
	flags.Int("log-level", l.v.GetInt("log_level"), "log level (0=LevelEmergency, 1=LevelAlert, 2=LevelCritical, 3=LevelError, 4=LevelWarning, 5=LevelNotice, 6=LevelInformational, 7=LevelDebug, default: 6)")
	flags.String("mtime", "", "RFC 3339 timestamp written for every archive entry")

	_ = l.v.BindPFlag("source", flags.Lookup("source"))
	_ = l.v.BindPFlag("output", flags.Lookup("output"))
	_ = l.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = l.v.BindPFlag("mtime", flags.Lookup("mtime"))
	_ = l.v.BindPFlag(targetOverrideKey, flags.Lookup(targetOverrideKey))
}

// Load reads .env, the configuration file and the environment, then
// validates the result. flags may be nil.
func (l *Loader) Load(flags *pflag.FlagSet) (*Config, error) {
	configFile, envFile := "", defaultEnvFile
	if flags != nil {
		configFile, _ = flags.GetString("config")
		envFile, _ = flags.GetString("env-file")
	}

	// First, variables from the env file; the process environment wins
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	// Then the configuration file, optional unless named explicitly
	if configFile != "" {
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(defaultConfigName)
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
	}
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read configuration: %w", err)
		}
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	if names := l.targetOverride(); len(names) > 0 {
		cfg.Targets = make([]TargetConfig, 0, len(names))
		for _, name := range names {
			cfg.Targets = append(cfg.Targets, TargetConfig{Name: name})
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.SetLevel(cfg.LogLevel)

	// Log final values
	log.Info("Configuration file is: %s", l.v.ConfigFileUsed())
	log.Info("Source repository is: %s", cfg.Source)
	log.Info("Output directory is: %s", cfg.Output)
	return cfg, nil
}

// targetOverride returns the targets named by --target or VIGO_TARGET.
func (l *Loader) targetOverride() []string {
	var names []string
	for _, item := range l.v.GetStringSlice(targetOverrideKey) {
		for _, name := range strings.FieldsFunc(item, func(r rune) bool { return r == ',' || r == ';' || r == ' ' }) {
			names = append(names, name)
		}
	}
	return names
}

// Registry turns the configuration into the registry of a run.
func (c *Config) Registry(mode registry.Mode) (*registry.Registry, error) {
	defaults, err := c.Defaults.Parse()
	if err != nil {
		return nil, err
	}

	opts := registry.Options{
		Tags:           c.Tags,
		Defaults:       defaults,
		ScriptEncoding: c.ScriptEncoding,
		Mode:           mode,
	}
	for _, t := range c.Targets {
		opts.Targets = append(opts.Targets, registry.TargetOptions{Name: t.Name, Tags: t.Tags})
	}
	for _, cf := range c.ConfigFiles {
		format, err := script.ParseFormat(cf.Format)
		if err != nil {
			return nil, err
		}
		opts.ConfigFiles = append(opts.ConfigFiles, registry.ConfigFile{Name: cf.Name, Format: format})
	}
	return registry.New(opts)
}

// FixedModTime parses ModTime. It returns nil when no timestamp is set.
func (c *Config) FixedModTime() (*time.Time, error) {
	if c.ModTime == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, c.ModTime)
	if err != nil {
		return nil, fmt.Errorf("mtime: %w", err)
	}
	return &ts, nil
}

// Parse converts the configured values. Every invalid value is reported.
func (d DefaultsConfig) Parse() (settings.Defaults, error) {
	var out settings.Defaults
	var errs []error
	set := func(name, value string, apply func(string) error) {
		if strings.TrimSpace(value) == "" {
			return
		}
		if err := apply(value); err != nil {
			errs = append(errs, fmt.Errorf("defaults.%s: %w", name, err))
		}
	}

	set("file_mode", d.FileMode, func(v string) error {
		m, err := settings.ParseOctalMode(v)
		out.FileMode = gut.Ptr(m)
		return err
	})
	set("directory_mode", d.DirectoryMode, func(v string) error {
		m, err := settings.ParseOctalMode(v)
		out.DirectoryMode = gut.Ptr(m)
		return err
	})
	set("file_type", d.FileType, func(v string) error {
		ft, err := settings.ParseFileType(v)
		out.FileType = gut.Ptr(ft)
		return err
	})
	set("source_encoding", d.SourceEncoding, func(v string) error {
		enc, err := settings.ParseEncoding(v)
		out.SourceEncoding = gut.Ptr(enc)
		return err
	})
	set("target_encoding", d.TargetEncoding, func(v string) error {
		enc, err := settings.ParseEncoding(v)
		out.TargetEncoding = gut.Ptr(enc)
		return err
	})
	set("newline_style", d.Newline, func(v string) error {
		n, err := settings.ParseNewline(v)
		out.Newline = gut.Ptr(n)
		return err
	})
	set("add_trailing_newline", d.FixTrailingNewline, func(v string) error {
		b, err := settings.ParseBool(v)
		out.FixTrailingNewline = gut.Ptr(b)
		return err
	})
	set("valid_characters", d.ValidCharacters, func(v string) error {
		vc, err := settings.ParseValidCharacters(v)
		out.ValidCharacters = gut.Ptr(vc)
		return err
	})
	set("build_targets", d.BuildTargets, func(v string) error {
		targets, err := settings.ParseTargets(v)
		out.Targets = gut.Ptr(targets)
		return err
	})

	return out, utilerrors.NewAggregate(errs)
}
