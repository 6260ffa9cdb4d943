package testdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hotwords123/judge-v3/types"
)

const sampleManifest = `
subtasks:
  - type: summation
    score: 100
    cases:
      - name: case1
        input: case1.in
        output: case1.out
      - name: case2
        input: case2.in
        output: case2.out
spj:
  language: cpp
  code: checker.cpp
`

func writeProblem(t *testing.T, root, name, manifest string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestName), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"case1.in", "case1.out", "case2.in", "case2.out", "checker.cpp"} {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoadParsesManifest(t *testing.T) {
	root := t.TempDir()
	writeProblem(t, root, "p1", sampleManifest)

	data, files, err := NewLoader(root).Load("p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(data.Subtasks) != 1 {
		t.Fatalf("subtasks = %d, want 1", len(data.Subtasks))
	}
	st := data.Subtasks[0]
	if st.Type != types.Summation || st.Score != 100 {
		t.Fatalf("subtask = %+v, want Summation/100", st)
	}
	if len(st.Cases) != 2 || st.Cases[0].Name != "case1" {
		t.Fatalf("cases = %+v", st.Cases)
	}
	if data.SPJ == nil || data.SPJ.Language != "cpp" {
		t.Fatalf("SPJ = %+v, want a cpp special judge", data.SPJ)
	}
	if _, ok := files["case1.in"]; !ok {
		t.Fatal("want case1.in registered in the file table")
	}
	content, err := files["case1.in"].Content()
	if err != nil || string(content) != "x" {
		t.Fatalf("case1.in content = %q, err = %v", content, err)
	}
}

func TestLoadRejectsUnknownScoringMode(t *testing.T) {
	root := t.TempDir()
	writeProblem(t, root, "p2", "subtasks:\n  - type: bogus\n    score: 1\n    cases: []\n")

	if _, _, err := NewLoader(root).Load("p2"); err == nil {
		t.Fatal("want an error for an unknown scoring mode")
	}
}

func TestLoadMissingManifest(t *testing.T) {
	root := t.TempDir()
	if _, _, err := NewLoader(root).Load("missing"); err == nil {
		t.Fatal("want an error for a missing manifest")
	}
}
