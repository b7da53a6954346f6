package recipe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/cookalong/internal/domain"
	"github.com/hammamikhairi/cookalong/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeSource = (*DirSource)(nil)

var recipeExts = []string{".yaml", ".yml", ".json"}

// DirSource serves recipes from *.yaml, *.yml and *.json files in one
// directory. A recipe's ID is its file name without extension. Files are
// read on every call so edits show up without a restart.
type DirSource struct {
	dir string
	log *logger.Logger
}

// NewDirSource creates the directory if needed and returns a source for it.
func NewDirSource(dir string, log *logger.Logger) (*DirSource, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create recipes dir: %w", err)
	}
	return &DirSource{dir: dir, log: log.Named("recipe-dir")}, nil
}

// List returns summaries of every readable recipe file. Files that fail to
// parse or validate are logged and skipped.
func (s *DirSource) List(ctx context.Context) ([]domain.RecipeSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading recipes dir: %w", err)
	}

	var out []domain.RecipeSummary
	for _, e := range entries {
		if e.IsDir() || !isRecipeFile(e.Name()) {
			continue
		}
		r, err := LoadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			s.log.Warn("skipping %s: %v", e.Name(), err)
			continue
		}
		out = append(out, r.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// Get loads the recipe file named id.
func (s *DirSource) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return nil, fmt.Errorf("recipe %q: %w", id, domain.ErrNotFound)
	}
	for _, ext := range recipeExts {
		r, err := LoadFile(filepath.Join(s.dir, id+ext))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return r, err
	}
	return nil, fmt.Errorf("recipe %q: %w", id, domain.ErrNotFound)
}

// Save validates r and writes it as YAML, deriving the ID from the title
// when it has none.
func (s *DirSource) Save(ctx context.Context, r *domain.Recipe) (*domain.Recipe, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	r = r.Clone()
	if r.ID == "" {
		r.ID = Slug(r.Title)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encoding recipe %s: %w", r.ID, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding recipe %s: %w", r.ID, err)
	}

	path := filepath.Join(s.dir, r.ID+".yaml")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("writing recipe %s: %w", r.ID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return nil, fmt.Errorf("writing recipe %s: %w", r.ID, err)
	}
	s.log.Info("recipe saved to %s", path)
	return r, nil
}

// LoadFile reads and validates one recipe file. JSON files must follow the
// recipe producer schema; everything else is parsed as YAML.
func LoadFile(path string) (*domain.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if r.ID == "" {
		r.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return r, nil
}

// Parse decodes a recipe document. ext selects JSON (".json") or YAML.
func Parse(data []byte, ext string) (*domain.Recipe, error) {
	var r domain.Recipe
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
	} else if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func isRecipeFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range recipeExts {
		if ext == e {
			return true
		}
	}
	return false
}
