// Package testdata resolves a TestData.Name into a types.TestData plus
// the concrete file.File values its cases, special judge, and
// interactor reference. It generalizes the teacher's data.Builder/
// data.Data pair (New(id) -> a bare name->file map) into a concrete
// on-disk manifest shape, parsed with goccy/go-yaml.
package testdata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/hotwords123/judge-v3/file"
	"github.com/hotwords123/judge-v3/types"
)

const manifestName = "data.yaml"

// manifest mirrors one problem directory's data.yaml.
type manifest struct {
	Subtasks []struct {
		Type         string   `yaml:"type"`
		Score        float64  `yaml:"score"`
		Dependencies []int    `yaml:"dependencies"`
		Cases        []mCase  `yaml:"cases"`
	} `yaml:"subtasks"`

	SPJ              *mSource            `yaml:"spj"`
	Interactor       *mSource            `yaml:"interactor"`
	ExtraSourceFiles map[string][]string `yaml:"extraSourceFiles"`
}

type mCase struct {
	Name   string  `yaml:"name"`
	Input  *string `yaml:"input"`
	Output *string `yaml:"output"`
}

type mSource struct {
	Language   string   `yaml:"language"`
	Code       string   `yaml:"code"`
	ExtraFiles []string `yaml:"extraFiles"`
}

// Loader resolves problems under Root, one subdirectory per TestData.Name.
type Loader struct {
	Root string
}

// NewLoader builds a Loader rooted at the config.Config.TestData
// directory.
func NewLoader(root string) *Loader {
	return &Loader{Root: root}
}

// Load parses name's manifest and returns the resulting TestData
// alongside every file.File the manifest references, keyed by the name
// used in the manifest (the same names TestcaseJudge.Input/Output
// carry, resolved by the judger specializations for preview extraction).
func (l *Loader) Load(name string) (*types.TestData, map[string]file.File, error) {
	dir := filepath.Join(l.Root, name)

	raw, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, nil, fmt.Errorf("read manifest for %q: %w", name, err)
	}

	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("parse manifest for %q: %w", name, err)
	}

	files := make(map[string]file.File)
	register := func(rel *string) {
		if rel == nil {
			return
		}
		if _, ok := files[*rel]; ok {
			return
		}
		files[*rel] = file.NewLocalFile(*rel, filepath.Join(dir, *rel))
	}

	data := &types.TestData{Name: name}
	for _, s := range m.Subtasks {
		mode, err := parseScoringMode(s.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("%q: %w", name, err)
		}
		subtask := types.Subtask{Type: mode, Score: s.Score, Dependencies: s.Dependencies}
		for _, c := range s.Cases {
			register(c.Input)
			register(c.Output)
			subtask.Cases = append(subtask.Cases, types.TestcaseJudge{
				Name: c.Name, Input: c.Input, Output: c.Output,
			})
		}
		data.Subtasks = append(data.Subtasks, subtask)
	}

	if m.SPJ != nil {
		src, err := resolveSource(dir, m.SPJ)
		if err != nil {
			return nil, nil, fmt.Errorf("%q: special judge: %w", name, err)
		}
		data.SPJ = src
	}
	if m.Interactor != nil {
		src, err := resolveSource(dir, m.Interactor)
		if err != nil {
			return nil, nil, fmt.Errorf("%q: interactor: %w", name, err)
		}
		data.Interactor = src
	}

	if len(m.ExtraSourceFiles) > 0 {
		data.ExtraSourceFiles = make(map[string][]file.File, len(m.ExtraSourceFiles))
		for lang, names := range m.ExtraSourceFiles {
			extras := make([]file.File, len(names))
			for i, n := range names {
				extras[i] = file.NewLocalFile(n, filepath.Join(dir, n))
			}
			data.ExtraSourceFiles[lang] = extras
		}
	}

	return data, files, nil
}

func resolveSource(dir string, m *mSource) (*file.SourceCode, error) {
	if m.Code == "" {
		return nil, fmt.Errorf("missing code file")
	}
	extras := make([]file.File, len(m.ExtraFiles))
	for i, n := range m.ExtraFiles {
		extras[i] = file.NewLocalFile(n, filepath.Join(dir, n))
	}
	return &file.SourceCode{
		Language:   m.Language,
		Code:       file.NewLocalFile(m.Code, filepath.Join(dir, m.Code)),
		ExtraFiles: extras,
	}, nil
}

func parseScoringMode(s string) (types.ScoringMode, error) {
	switch s {
	case "minimum":
		return types.Minimum, nil
	case "multiple":
		return types.Multiple, nil
	case "summation":
		return types.Summation, nil
	default:
		return 0, fmt.Errorf("unknown scoring mode %q", s)
	}
}
