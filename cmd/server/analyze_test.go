package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/soaringjerry/Rasch/internal/rasch"
)

const quizCSV = "Student;Q1;Q2;Q3;Q4\n" +
	"Anna;1;1;1;0\n" +
	"Boris;1;1;0;0\n" +
	"Clara;1;0;1;0\n" +
	"Dmitri;0;1;0;1\n" +
	"Eva;1;0;0;0\n"

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath = ""
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAnalyzeFiles_KeepsOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", quizCSV)
	b := writeFile(t, dir, "b.csv", "id,x,y\np1,1,0\np2,0,1\np3,1,1\n")

	reports, err := analyzeFiles([]string{a, b, a}, rasch.Options{}, 2)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, a, reports[0].File)
	assert.Equal(t, b, reports[1].File)
	assert.Len(t, reports[0].Summary.Persons, 5)
	assert.Len(t, reports[1].Summary.Items, 2)
	assert.Equal(t, "Anna", reports[2].Summary.Persons[0].Label)
	assert.Equal(t, "a", reports[0].Summary.DatasetName)
}

func TestAnalyzeFiles_MissingFile(t *testing.T) {
	_, err := analyzeFiles([]string{filepath.Join(t.TempDir(), "nope.csv")}, rasch.Options{}, 1)
	assert.Error(t, err)
}

func TestAnalyzeCommand_Formats(t *testing.T) {
	path := writeFile(t, t.TempDir(), "quiz.csv", quizCSV)

	out, err := runRoot(t, "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, "== "+path)
	assert.Contains(t, out, "Items")
	assert.Contains(t, out, "Dmitri")

	out, err = runRoot(t, "analyze", "-o", "json", path)
	require.NoError(t, err)
	var reports []fileReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Len(t, reports[0].Summary.Items, 4)

	out, err = runRoot(t, "analyze", "-o", "yaml", "--max-iterations", "3", path)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	summary := decoded[0]["summary"].(map[string]any)
	assert.Equal(t, 3, summary["iterations"])
	assert.Equal(t, false, summary["converged"])

	_, err = runRoot(t, "analyze", "-o", "xml", path)
	assert.Error(t, err)
}

func TestAnalyzeCommand_Export(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "quiz.csv", quizCSV)
	empty := writeFile(t, dir, "empty.csv", "")
	outDir := filepath.Join(dir, "out")

	_, err := runRoot(t, "analyze", "--export", outDir, path, empty)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(outDir, "quiz_full.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, 1+5+4+3, len(lines))
	_, err = os.Stat(filepath.Join(outDir, "empty_full.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestAnalyzeCommand_ExportSameBaseName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "b"), 0o755))
	first := writeFile(t, dir, "a/quiz.csv", quizCSV)
	second := writeFile(t, dir, "b/quiz.csv", "Student;Q1;Q2\nAnna;1;0\nBoris;0;1\nClara;1;1\n")
	outDir := filepath.Join(dir, "out")

	_, err := runRoot(t, "analyze", "--export", outDir, first, second)
	require.NoError(t, err)
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"quiz_full.csv", "quiz_2_full.csv"}, names)

	data, err := os.ReadFile(filepath.Join(outDir, "quiz_2_full.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, 1+3+2+3, len(lines))
}

func TestExportBase(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "quiz", exportBase(used, "quiz", 0))
	assert.Equal(t, "quiz_2", exportBase(used, "quiz", 1))
	assert.Equal(t, "other", exportBase(used, "other", 2))
	assert.Equal(t, "quiz_4", exportBase(used, "quiz", 3))
}

func TestVersionCommand(t *testing.T) {
	out, err := runRoot(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}
