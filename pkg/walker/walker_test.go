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
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alibaba/opensandbox/vigo/pkg/registry"
	"github.com/alibaba/opensandbox/vigo/pkg/script"
	"github.com/alibaba/opensandbox/vigo/pkg/settings"
	"github.com/alibaba/opensandbox/vigo/pkg/tagname"
)

func vigo(body string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte("# vîgô\n" + dedent.Dedent(body))}
}

func file(content string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(content)}
}

func walk(t *testing.T, fsys fs.FS, mode registry.Mode) (*Tree, error) {
	t.Helper()
	reg, err := registry.New(registry.Options{
		Targets: []registry.TargetOptions{{Name: "prod"}, {Name: "uat", Tags: []string{"non-prod"}}},
		Mode:    mode,
	})
	require.NoError(t, err)
	return New(fsys, reg).Walk(".")
}

func paths(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Path)
	}
	return out
}

func decisionFor(t *testing.T, tree *Tree, source string) *Decision {
	t.Helper()
	for _, d := range tree.Decisions() {
		if d.Source == source {
			return d
		}
	}
	t.Fatalf("no decision for %s", source)
	return nil
}

func TestWalkInheritsDefaults(t *testing.T) {
	fsys := fstest.MapFS{
		".vigo": vigo(`
			CONFIGURE FOLDER
			  DEFAULT FOR SOURCE ENCODING UTF-8
			  DEFAULT FOR FILE MODE 600
			DONE
			DO DEPLOY ALL TEXT FILES
			DONE
		`),
		"root.txt": file("root"),
		"a/.vigo": vigo(`
			CONFIGURE FOLDER
			  DEFAULT FOR TARGET ENCODING ISO-8859-1
			DONE
			DO DEPLOY ALL TEXT FILES
			DONE
		`),
		"a/x.txt":   file("x"),
		"a/b/y.txt": file("y"),
	}

	tree, err := walk(t, fsys, registry.ModePack)
	require.NoError(t, err)

	x := decisionFor(t, tree, "a/x.txt")
	assert.Equal(t, "UTF-8", x.Params.SourceEncoding)
	latin1, err := settings.ParseEncoding("ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, latin1, x.Params.TargetEncoding)
	assert.Equal(t, fs.FileMode(0o600), x.Params.Mode())
	assert.Equal(t, []string{"prod", "uat"}, x.Targets)

	// a/b has no configuration and skips its files
	y := decisionFor(t, tree, "a/b/y.txt")
	assert.False(t, y.Deploy())
	assert.True(t, y.Rule.Implicit)

	root := decisionFor(t, tree, "root.txt")
	assert.Equal(t, "UTF-8", root.Params.TargetEncoding)

	assert.Equal(t, []string{"root.txt", "a", "a/x.txt"}, paths(tree.Entries("prod")))
	assert.Equal(t, []string{"prod", "uat"}, tree.Targets())
}

func TestWalkWithoutRootConfiguration(t *testing.T) {
	fsys := fstest.MapFS{
		"skipped.txt": file("s"),
		"sub/.vigo": vigo(`
			DO DEPLOY ALL FILES
			DONE
		`),
		"sub/kept.bin": file("k"),
	}

	tree, err := walk(t, fsys, registry.ModePack)
	require.NoError(t, err)
	assert.False(t, decisionFor(t, tree, "skipped.txt").Deploy())
	assert.Equal(t, []string{"sub", "sub/kept.bin"}, paths(tree.Entries("uat")))
}

func TestWalkSkipsGitAndConfigurationFile(t *testing.T) {
	fsys := fstest.MapFS{
		".vigo": vigo(`
			DO DEPLOY ALL FILES
			DONE
		`),
		".GIT/config":    file("c"),
		".git/HEAD":      file("h"),
		"vigo.md":        file("# notes"),
		"sub/vigo.md":    file("Intro\n```vigo\n# vîgô\nDO DEPLOY ALL FILES\nDONE\n```\n"),
		"sub/script.txt": file("s"),
	}

	tree, err := walk(t, fsys, registry.ModePack)
	require.NoError(t, err)

	// vigo.md is a plain file where .vigo takes precedence
	assert.Equal(t, []string{"vigo.md", "sub", "sub/script.txt"}, paths(tree.Entries("prod")))
	assert.Equal(t, "sub/vigo.md", tree.Root.Dirs[0].Controller.ConfigFile)
}

func TestWalkRenamesAndTags(t *testing.T) {
	fsys := fstest.MapFS{
		"docs/.vigo": vigo(`
			DO DEPLOY TEXT FILE IF NAME EQUALS readme.txt
			  RENAME TO README
			DONE
			DO DEPLOY FILE IF NAME MATCHES ^(.*)\.conf$
			  NAME REPLACE PATTERN $1.cfg
			DONE
			DO IGNORE ALL FILES
			DONE
		`),
		"docs/readme.txt":                     file("r"),
		"docs/app~DEPLOY~ONLY~prod~~.conf":    file("p"),
		"docs/app~SKIP~DEPLOY~prod~~.conf":    file("u"),
		"docs/db~DEPLOY~ONLY~non-prod~~.conf": file("n"),
		"docs/other.bin":                      file("o"),
	}

	tree, err := walk(t, fsys, registry.ModePack)
	require.NoError(t, err)

	assert.Equal(t, []string{"docs", "docs/app.cfg", "docs/README"}, paths(tree.Entries("prod")))
	assert.Equal(t, []string{"docs", "docs/app.cfg", "docs/db.cfg", "docs/README"}, paths(tree.Entries("uat")))

	onlyProd := decisionFor(t, tree, "docs/app~DEPLOY~ONLY~prod~~.conf")
	assert.Equal(t, []string{"prod"}, onlyProd.Targets)
	assert.True(t, onlyProd.Tags.HasTags)
	assert.False(t, decisionFor(t, tree, "docs/other.bin").Deploy())
}

func TestWalkUnknownTagIsRecoverable(t *testing.T) {
	fsys := fstest.MapFS{
		".vigo": vigo(`
			DO DEPLOY ALL FILES
			DONE
		`),
		"a~DEPLOY~ONLY~staging~~.txt": file("a"),
		"b.txt":                       file("b"),
	}

	tree, err := walk(t, fsys, registry.ModePack)
	require.NoError(t, err)

	issues := tree.Issues()
	require.Len(t, issues, 1)
	var scopeErr *tagname.ScopeError
	require.True(t, errors.As(issues[0].Issue, &scopeErr))
	assert.Equal(t, "staging", scopeErr.Tag)
	assert.False(t, issues[0].Deploy())
	assert.Equal(t, []string{"b.txt"}, paths(tree.Entries("prod")))
}

func TestWalkKeepEmptyFolder(t *testing.T) {
	fsys := fstest.MapFS{
		"logs/.vigo": vigo(`
			CONFIGURE FOLDER
			  KEEP EMPTY FOLDER
			  DEFAULT BUILD TARGETS prod
			DONE
		`),
		"logs/old.log": file("l"),
		"logs/deep/.vigo": vigo(`
			DO DEPLOY ALL FILES
			DONE
		`),
		"tmp/.vigo": vigo(`
			DO IGNORE ALL FILES
			DONE
		`),
		"tmp/x": file("x"),
	}

	tree, err := walk(t, fsys, registry.ModePack)
	require.NoError(t, err)

	assert.Equal(t, []string{"logs"}, paths(tree.Entries("prod")))
	assert.Empty(t, tree.Entries("uat"))
	// keep empty folder is not inherited
	assert.False(t, tree.Root.Dirs[0].Dirs[0].Controller.KeepEmptyFolder)
}

func TestWalkCheckRulesDependOnMode(t *testing.T) {
	fsys := fstest.MapFS{
		".vigo": vigo(`
			DO CHECK ALL TEXT FILES
			DONE
		`),
		"a.txt": file("a"),
	}

	tree, err := walk(t, fsys, registry.ModePack)
	require.NoError(t, err)
	assert.Empty(t, tree.Entries("prod"))

	tree, err = walk(t, fsys, registry.ModeCheck)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, paths(tree.Entries("prod")))
}

func TestWalkIsDeterministic(t *testing.T) {
	fsys := fstest.MapFS{
		".vigo": vigo(`
			DO DEPLOY ALL FILES
			DONE
		`),
		"b/2":     file("2"),
		"b/1":     file("1"),
		"a/z":     file("z"),
		"c":       file("c"),
		"B":       file("B"),
		"a/.vigo": vigo("DO DEPLOY ALL FILES\nDONE\n"),
		"b/.vigo": vigo("DO DEPLOY ALL FILES\nDONE\n"),
	}

	first, err := walk(t, fsys, registry.ModePack)
	require.NoError(t, err)
	second, err := walk(t, fsys, registry.ModePack)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "c", "a", "a/z", "b", "b/1", "b/2"}, paths(first.Entries("prod")))
	assert.Equal(t, first.Entries("prod"), second.Entries("prod"))
}

func TestWalkAbortsOnConfigurationError(t *testing.T) {
	fsys := fstest.MapFS{
		".vigo":      vigo("DO DEPLOY ALL FILES\nDONE\n"),
		"a/.vigo":    vigo("CONFIGURE FOLDER\n  DEFAULT FOR FILE MODE 999\nDONE\n"),
		"a/file.txt": file("f"),
	}

	_, err := walk(t, fsys, registry.ModePack)
	diags := script.Diagnostics(err)
	require.Len(t, diags, 1)
	assert.Equal(t, "a/.vigo", diags[0].File)
	assert.Equal(t, 3, diags[0].Line)
}

func TestWalkRejectsUnknownFolderTarget(t *testing.T) {
	fsys := fstest.MapFS{
		".vigo": vigo("CONFIGURE FOLDER\n  DEFAULT BUILD TARGETS qa\nDONE\n"),
	}

	_, err := walk(t, fsys, registry.ModePack)
	diags := script.Diagnostics(err)
	require.Len(t, diags, 1)
	assert.Equal(t, 2, diags[0].Line)
}

func TestWalkRejectsArchivePathCollision(t *testing.T) {
	fsys := fstest.MapFS{
		".vigo":                    vigo("DO DEPLOY ALL FILES\nDONE\n"),
		"a.txt":                    file("a"),
		"a~DEPLOY~ONLY~prod~~.txt": file("b"),
	}

	_, err := walk(t, fsys, registry.ModePack)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both deploy to a.txt for target prod")
}

func TestWalkRejectsInvalidReplacedName(t *testing.T) {
	cases := map[string]string{
		"parent directory": "../../$1.txt",
		"subdirectory":     "x/$1.txt",
		"empty":            "$9",
	}
	for name, template := range cases {
		t.Run(name, func(t *testing.T) {
			fsys := fstest.MapFS{
				".vigo":     vigo("DO IGNORE ALL FILES\nDONE\n"),
				"sub/.vigo": vigo("DO DEPLOY FILE IF NAME MATCHES ^(.*)\\.txt$\n  NAME REPLACE PATTERN " + template + "\nDONE\n"),
				"sub/a.txt": file("a"),
			}

			_, err := walk(t, fsys, registry.ModePack)
			diags := script.Diagnostics(err)
			require.Len(t, diags, 1)
			assert.Equal(t, "sub/.vigo", diags[0].File)
			assert.Equal(t, 2, diags[0].Line)
			assert.Contains(t, diags[0].Msg, "sub/a.txt is renamed to an invalid name")
		})
	}
}
