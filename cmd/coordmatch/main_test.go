package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/coordmatch/internal/output"
)

const sampleGTF = `##description: test annotations
chr1	src	exon	100	200	.	+	.	geneA
chr1	src	intron	201	299	.	+	.	geneA
chr1	src	exon	300	400	.	+	.	geneA
`

func writeInput(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func readOutput(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestExecute_Match(t *testing.T) {
	isolateHome(t)
	in := writeInput(t, map[string]string{
		"coords.txt": "chr1\t150\nchr2\t50\nchr1\t250\n",
		"genes.gtf":  sampleGTF,
		".DS_Store":  "junk",
		"notes.md":   "junk",
	})
	out := filepath.Join(t.TempDir(), "results")

	var stdout, stderr bytes.Buffer
	code := execute([]string{in, out}, &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	report := readOutput(t, out, output.ReportFileName)
	lines := strings.Split(strings.TrimSuffix(report, "\n"), "\n")
	assert.Equal(t, []string{
		"Number of Introns found: 1",
		"Number of Exons found: 2",
		">chr1 at location: 150\tFound\tchr1\tsrc\texon\t100\t200\t+\tgeneA",
		"No match found for: chr2 at location: 50",
		">chr1 at location: 250\tFound\tchr1\tsrc\tintron\t201\t299\t+\tgeneA",
		"Total matches found: 2\tTotal NOT found: 1",
	}, lines)
	assert.Equal(t, report, stdout.String(), "report is mirrored to the console")

	log := readOutput(t, out, output.LogFileName)
	assert.Contains(t, log, "began processing files")
	assert.Contains(t, log, "unknown format, file ignored")
	assert.Contains(t, log, "finished processing files")
	assert.Contains(t, stderr.String(), "began processing files")
}

func TestExecute_MissingArgument(t *testing.T) {
	isolateHome(t)
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(output.ReportFileName, []byte("previous report\n"), 0644))

	var stdout, stderr bytes.Buffer
	code := execute(nil, &stdout, &stderr)
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr.String(), "no data file directory specified")
	assert.Contains(t, readOutput(t, ".", output.LogFileName), "no data file directory specified")
	assert.Equal(t, "previous report\n", readOutput(t, ".", output.ReportFileName))
}

func TestExecute_DirectoryErrors(t *testing.T) {
	isolateHome(t)
	out := t.TempDir()

	var stdout, stderr bytes.Buffer
	code := execute([]string{filepath.Join(t.TempDir(), "missing"), out}, &stdout, &stderr)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, readOutput(t, out, output.LogFileName), "directory does not exist")

	stderr.Reset()
	code = execute([]string{t.TempDir(), out}, &stdout, &stderr)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, readOutput(t, out, output.LogFileName), "directory is empty")
	assert.Empty(t, readOutput(t, out, output.ReportFileName))
}

func TestExecute_MissingAnnotationFile(t *testing.T) {
	isolateHome(t)
	in := writeInput(t, map[string]string{"coords.txt": "chr1\t150\n"})
	out := t.TempDir()

	var stdout, stderr bytes.Buffer
	code := execute([]string{in, out}, &stdout, &stderr)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, readOutput(t, out, output.LogFileName), "chromosome map not processed")
}

func TestExecute_ParsePolicy(t *testing.T) {
	isolateHome(t)
	in := writeInput(t, map[string]string{
		"coords.txt": "chr1\t150\nchr1\tnot-a-number\nchr1\t350\n",
		"genes.gtf":  sampleGTF,
	})

	out := t.TempDir()
	var stdout, stderr bytes.Buffer
	require.Equal(t, ExitSuccess, execute([]string{in, out}, &stdout, &stderr))
	assert.Contains(t, readOutput(t, out, output.ReportFileName), "Total matches found: 2\tTotal NOT found: 0")
	assert.Contains(t, readOutput(t, out, output.LogFileName), "skipping malformed line")

	out = t.TempDir()
	code := execute([]string{"--on-parse-error", "abort", in, out}, &stdout, &stderr)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, readOutput(t, out, output.LogFileName), "loading aborted")
}

func TestExecute_MergeReject(t *testing.T) {
	isolateHome(t)
	in := writeInput(t, map[string]string{
		"coords.txt":  "chr1\t150\n",
		"a/genes.gtf": sampleGTF,
		"b/genes.gtf": sampleGTF,
	})

	var stdout, stderr bytes.Buffer
	assert.Equal(t, ExitError, execute([]string{"--merge", "reject", in, t.TempDir()}, &stdout, &stderr))
	assert.Equal(t, ExitSuccess, execute([]string{"--merge", "all", in, t.TempDir()}, &stdout, &stderr))
}

func TestExecute_Verify(t *testing.T) {
	isolateHome(t)
	in := writeInput(t, map[string]string{
		"coords.txt": "chr1\t150\nchr2\t50\nchr1\t250\n",
		"genes.gtf":  sampleGTF,
	})
	out := t.TempDir()

	var stdout, stderr bytes.Buffer
	code := execute([]string{"--verify", in, out}, &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())
	assert.Contains(t, stderr.String(), "Verification Summary")
	assert.NotContains(t, readOutput(t, out, output.VerifyFileName), "chr1:150", "agreeing coordinates are omitted")

	out = t.TempDir()
	code = execute([]string{"--verify", "--verify-all", in, out}, &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())
	verify := readOutput(t, out, output.VerifyFileName)
	assert.Contains(t, verify, "chr1:150")
	assert.Contains(t, verify, "chr2:50")
}

func TestExecute_InvalidSettings(t *testing.T) {
	isolateHome(t)
	var stdout, stderr bytes.Buffer

	assert.Equal(t, ExitUsage, execute([]string{"--sort-order", "random", t.TempDir()}, &stdout, &stderr))
	assert.Equal(t, ExitUsage, execute([]string{"--verify", "--sort-order", "concat", t.TempDir()}, &stdout, &stderr))
	assert.Equal(t, ExitUsage, execute([]string{"a", "b", "c"}, &stdout, &stderr))
}

func TestExecute_ConfigFile(t *testing.T) {
	isolateHome(t)
	cfg := filepath.Join(t.TempDir(), "coordmatch.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("on_parse_error: abort\n"), 0644))

	in := writeInput(t, map[string]string{
		"coords.txt": "chr1\tbad\n",
		"genes.gtf":  sampleGTF,
	})

	var stdout, stderr bytes.Buffer
	code := execute([]string{"--config", cfg, in, t.TempDir()}, &stdout, &stderr)
	assert.Equal(t, ExitError, code, "config file selects the abort policy")
}

func TestConfigSetGet(t *testing.T) {
	isolateHome(t)
	cfg := filepath.Join(t.TempDir(), "coordmatch.yaml")

	var stdout, stderr bytes.Buffer
	require.Equal(t, ExitSuccess, execute([]string{"config", "set", "merge", "first", "--config", cfg}, &stdout, &stderr), stderr.String())
	assert.Contains(t, stdout.String(), "Set merge = first")

	stdout.Reset()
	require.Equal(t, ExitSuccess, execute([]string{"config", "get", "merge", "--config", cfg}, &stdout, &stderr), stderr.String())
	assert.Equal(t, "first\n", stdout.String())
}

func TestExecute_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, ExitSuccess, execute([]string{"--version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "dev")
}
