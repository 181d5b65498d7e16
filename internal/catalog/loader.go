package catalog

import (
	"fmt"
	"io/fs"

	"github.com/codeforge-dev/codeforge/internal/domain"
	"gopkg.in/yaml.v3"
)

// PackFile represents the YAML structure for a problem pack manifest.
// Problems are listed in display order; the registry preserves it.
type PackFile struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Description string   `yaml:"description"`
	Problems    []string `yaml:"problems"`
}

// Pack is a loaded problem pack
type Pack struct {
	ID          string
	Name        string
	Version     string
	Description string
	ProblemIDs  []string
}

// Loader reads a problem pack from a filesystem. Production code hands
// it the embedded catalog or a directory; tests use fstest.MapFS.
type Loader struct {
	fsys fs.FS
}

// NewLoader creates a new problem loader over fsys
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// LoadPack loads the pack manifest (pack.yaml) at the filesystem root
func (l *Loader) LoadPack() (*Pack, error) {
	data, err := fs.ReadFile(l.fsys, "pack.yaml")
	if err != nil {
		return nil, fmt.Errorf("read pack manifest: %w", err)
	}

	var packFile PackFile
	if err := yaml.Unmarshal(data, &packFile); err != nil {
		return nil, fmt.Errorf("parse pack manifest: %w", err)
	}

	return &Pack{
		ID:          packFile.ID,
		Name:        packFile.Name,
		Version:     packFile.Version,
		Description: packFile.Description,
		ProblemIDs:  packFile.Problems,
	}, nil
}

// LoadProblem loads a single problem definition from <id>.yaml
func (l *Loader) LoadProblem(id string) (*domain.Problem, error) {
	data, err := fs.ReadFile(l.fsys, id+".yaml")
	if err != nil {
		return nil, fmt.Errorf("read problem file %s: %w", id, err)
	}

	var problem domain.Problem
	if err := yaml.Unmarshal(data, &problem); err != nil {
		return nil, fmt.Errorf("parse problem file %s: %w", id, err)
	}

	if problem.ID == "" {
		problem.ID = id
	}
	if problem.Title == "" {
		return nil, fmt.Errorf("problem %s: title is required", id)
	}
	switch problem.Difficulty {
	case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
	default:
		return nil, fmt.Errorf("problem %s: invalid difficulty %q", id, problem.Difficulty)
	}

	return &problem, nil
}

// LoadAll loads the full pack in manifest order
func (l *Loader) LoadAll() (*Pack, []*domain.Problem, error) {
	pack, err := l.LoadPack()
	if err != nil {
		return nil, nil, err
	}

	problems := make([]*domain.Problem, 0, len(pack.ProblemIDs))
	for _, id := range pack.ProblemIDs {
		problem, err := l.LoadProblem(id)
		if err != nil {
			return nil, nil, fmt.Errorf("load problem %s: %w", id, err)
		}
		problems = append(problems, problem)
	}

	return pack, problems, nil
}
