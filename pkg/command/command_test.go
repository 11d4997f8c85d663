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
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rootScript = `
	DO DEPLOY TEXT FILE IF NAME MATCHES \.(sh|conf)$
	  NEWLINE STYLE LF
	  ADD TRAILING NEWLINE YES
	DONE
	DO IGNORE ALL FILES
	DONE
`

type repo struct {
	source, output, config string
}

// newRepo writes files below a fresh source directory together with a run
// configuration declaring the targets prod and uat.
func newRepo(t *testing.T, files map[string]string) repo {
	t.Helper()
	base := t.TempDir()
	r := repo{
		source: filepath.Join(base, "src"),
		output: filepath.Join(base, "dist"),
		config: filepath.Join(base, "vigo.yaml"),
	}
	for name, content := range files {
		p := filepath.Join(r.source, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	cfg := fmt.Sprintf(dedent.Dedent(`
		source: %s
		output: %s
		mtime: "2024-01-02T03:04:05Z"
		targets:
		  - name: prod
		  - name: uat
		    tags: [non-prod]
	`), r.source, r.output)
	require.NoError(t, os.WriteFile(r.config, []byte(cfg), 0o600))
	return r
}

func script(body string) string {
	return "# vîgô\n" + dedent.Dedent(body)
}

func run(t *testing.T, r repo, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append(args, "--config", r.config))
	err := root.Execute()
	return out.String(), err
}

func archiveContent(t *testing.T, path string) map[string]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	out := map[string]string{}
	tr := tar.NewReader(gz)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		body, err := io.ReadAll(tr)
		require.NoError(t, err)
		out[h.Name] = string(body)
	}
	return out
}

func TestPackWritesOneArchivePerTarget(t *testing.T) {
	r := newRepo(t, map[string]string{
		".vigo":                       script(rootScript),
		"run.sh":                      "echo hi\r\n",
		"notes.txt":                   "not deployed",
		"app_DEPLOY_ONLY_prod__.conf": "mode=prod",
		"bin/tool.sh":                 "ignored, bin has no configuration",
	})

	out, err := run(t, r, "pack")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(r.output, "prod.tar.gz"))

	assert.Equal(t, map[string]string{
		"run.sh":   "echo hi\n",
		"app.conf": "mode=prod\n",
	}, archiveContent(t, filepath.Join(r.output, "prod.tar.gz")))
	assert.Equal(t, map[string]string{
		"run.sh": "echo hi\n",
	}, archiveContent(t, filepath.Join(r.output, "uat.tar.gz")))
}

func TestPackTargetFlagSelectsTargets(t *testing.T) {
	r := newRepo(t, map[string]string{
		".vigo":  script(rootScript),
		"run.sh": "echo hi\n",
	})

	_, err := run(t, r, "pack", "--target", "uat")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(r.output, "uat.tar.gz"))
	assert.NoFileExists(t, filepath.Join(r.output, "prod.tar.gz"))
}

func TestPackFailsOnConfigurationError(t *testing.T) {
	r := newRepo(t, map[string]string{
		".vigo": script(`
			DO DEPLOY ALL FILES
			  BUILD TARGETS staging
			DONE
		`),
		"run.sh": "echo hi\n",
	})

	_, err := run(t, r, "pack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".vigo")
	assert.NoFileExists(t, filepath.Join(r.output, "prod.tar.gz"))
}

func TestCheckReportsViolations(t *testing.T) {
	r := newRepo(t, map[string]string{
		".vigo": script(`
			DO CHECK TEXT FILE IF NAME MATCHES \.txt$
			  VALID CHARACTERS ASCII
			DONE
			DO DEPLOY ALL TEXT FILES
			DONE
		`),
		"ok.txt":                         "plain\n",
		"bad.txt":                        "café\n",
		"env_DEPLOY_ONLY_staging__.conf": "x\n",
	})

	out, err := run(t, r, "check")
	require.Error(t, err)
	assert.Contains(t, out, "bad.txt: ")
	assert.Contains(t, out, `unknown tag "staging"`)
	assert.NotContains(t, out, "ok.txt")
}

func TestCheckPasses(t *testing.T) {
	r := newRepo(t, map[string]string{
		".vigo":  script(rootScript),
		"run.sh": "echo hi\n",
	})

	out, err := run(t, r, "check")
	require.NoError(t, err)
	assert.Equal(t, "1 files checked\n", out)
	assert.NoDirExists(t, r.output)
}

func TestPlanFormats(t *testing.T) {
	r := newRepo(t, map[string]string{
		".vigo":  script(rootScript),
		"run.sh": "echo hi\n",
	})

	out, err := run(t, r, "plan")
	require.NoError(t, err)
	assert.Contains(t, out, "run.sh")

	out, err = run(t, r, "plan", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "target: run.sh")
	assert.Contains(t, out, "targets:\n")

	_, err = run(t, r, "plan", "--format", "json")
	assert.ErrorContains(t, err, "unknown plan format")
}

func TestTagsExplainsNames(t *testing.T) {
	r := newRepo(t, nil)

	out, err := run(t, r, "tags", "db_DEPLOY_ONLY_non-prod__.cfg")
	require.NoError(t, err)
	assert.Contains(t, out, "name: db.cfg")
	assert.Contains(t, out, "prod: skip")
	assert.Contains(t, out, "uat: deploy")

	_, err = run(t, r, "tags")
	assert.Error(t, err)
}
