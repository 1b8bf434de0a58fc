package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gofhir/fhircodes/report"
	"github.com/gofhir/fhircodes/stream"
)

const bundle = `{
  "resourceType": "Bundle",
  "entry": [
    {"resource": {"resourceType": "Composition", "section": [
      {"code": "10160-0", "text": {"div": "<div>Medication: aspirin taken.</div>"},
       "entry": [{"reference": "urn:uuid:11111111-1111-1111-1111-111111111111"}]}
    ]}},
    {"resource": {"resourceType": "Medication", "id": "11111111-1111-1111-1111-111111111111",
      "code": {"coding": [{"code": "1191", "system": "http://www.nlm.nih.gov/research/umls/rxnorm"}], "text": "aspirin"}}}
  ]
}`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExtract(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	require.NoError(t, os.MkdirAll(in, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(in, "patient-1.fhir.json"), []byte(bundle), 0o644))

	out := filepath.Join(root, "out")
	data := filepath.Join(root, "data")

	logs, err := execute(t, "extract", "-q", "-i", in, "-o", out, "--data", data, "--codesystems", "--log-format", "json")
	require.NoError(t, err, logs)

	table, err := os.ReadFile(filepath.Join(out, "patient-1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "code,count,negation\n10160-0_rxn_1191,1,0\n", string(table))

	rx, err := os.ReadFile(filepath.Join(data, report.RxNormFile))
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"1191\": \"aspirin\"\n}\n", string(rx))

	summary, err := os.ReadFile(filepath.Join(data, report.SummaryFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(summary), "   10160-0     words"))

	_, err = os.Stat(filepath.Join(data, "rxcui_found"+report.CodeSystemExt))
	assert.NoError(t, err)
}

func TestExtract_FailedDocumentStillWritesCorpus(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	require.NoError(t, os.MkdirAll(in, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(in, "good.json"), []byte(bundle), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "bad.json"), []byte(`{"entry": [`), 0o644))

	data := filepath.Join(root, "data")
	logs, err := execute(t, "extract", "-q", "-w", "2", "-i", in, "-o", filepath.Join(root, "out"), "--data", data, "--log-format", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 documents failed")
	assert.Contains(t, logs, "whole-document-failure")

	_, err = os.Stat(filepath.Join(root, "out", "good.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(data, report.SNOMEDFile))
	assert.NoError(t, err)
}

func TestExtract_DuplicateDocumentNames(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"a", "b"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "in", dir), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "in", dir, "patient.json"), []byte(bundle), 0o644))
	}

	out := filepath.Join(root, "out")
	_, err := execute(t, "extract", "-q", "-i", filepath.Join(root, "in"), "--pattern", "**.json",
		"-o", out, "--data", filepath.Join(root, "data"), "--log-level", "none")
	require.Error(t, err)
	assert.ErrorIs(t, err, stream.ErrDuplicateDocument)

	_, err = os.Stat(filepath.Join(out, "patient.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtract_NoFiles(t *testing.T) {
	_, err := execute(t, "extract", "-q", "-i", t.TempDir(), "--log-level", "none")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files match")
}

func TestCodeSystem(t *testing.T) {
	dict := filepath.Join(t.TempDir(), "rxcui_found.json")
	require.NoError(t, os.WriteFile(dict, []byte(`{"1191": "aspirin"}`), 0o644))

	out, err := execute(t, "codesystem", dict, "--system", "rxnorm")
	require.NoError(t, err)
	assert.Contains(t, out, `"resourceType": "CodeSystem"`)
	assert.Contains(t, out, `"1191"`)

	_, err = execute(t, "codesystem", dict, "--system", "loinc")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "fhircodes/")
}
