// Package recipe provides recipe source implementations: a seeded
// in-memory catalog and a directory of YAML or JSON recipe files.
package recipe

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/hammamikhairi/cookalong/internal/domain"
	"github.com/hammamikhairi/cookalong/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeSource = (*MemorySource)(nil)

// MemorySource holds recipes in memory. Safe for concurrent use.
type MemorySource struct {
	mu      sync.RWMutex
	recipes map[string]*domain.Recipe
	log     *logger.Logger
}

// NewMemorySource creates a recipe source preloaded with built-in recipes.
func NewMemorySource(log *logger.Logger) *MemorySource {
	src := &MemorySource{
		recipes: make(map[string]*domain.Recipe),
		log:     log.Named("recipes"),
	}
	src.seed()
	return src
}

// List returns summaries of all available recipes sorted by title.
func (s *MemorySource) List(ctx context.Context) ([]domain.RecipeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.log.Debug("listing all recipes, count=%d", len(s.recipes))
	return summaries(s.recipes, ""), nil
}

// Get returns a copy of the recipe with the given ID.
func (s *MemorySource) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok {
		s.log.Debug("recipe not found: %s", id)
		return nil, fmt.Errorf("recipe %q: %w", id, domain.ErrNotFound)
	}
	return r.Clone(), nil
}

// Save validates and stores a recipe, deriving its ID from the title when
// it has none. Existing recipes with the same ID are replaced.
func (s *MemorySource) Save(ctx context.Context, r *domain.Recipe) (*domain.Recipe, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	r = r.Clone()
	if r.ID == "" {
		r.ID = Slug(r.Title)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes[r.ID] = r
	s.log.Info("recipe saved: %s (%d steps)", r.ID, r.TotalSteps())
	return r.Clone(), nil
}

// Search returns recipes whose title, tools or ingredients mention query.
func (s *MemorySource) Search(ctx context.Context, query string) ([]domain.RecipeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	s.log.Debug("searching recipes for: %s", q)
	return summaries(s.recipes, q), nil
}

func summaries(recipes map[string]*domain.Recipe, query string) []domain.RecipeSummary {
	out := make([]domain.RecipeSummary, 0, len(recipes))
	for _, r := range recipes {
		if query == "" || matches(r, query) {
			out = append(out, r.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

func matches(r *domain.Recipe, query string) bool {
	if strings.Contains(strings.ToLower(r.Title), query) {
		return true
	}
	for _, tool := range r.Tools {
		if strings.Contains(strings.ToLower(tool), query) {
			return true
		}
	}
	for _, items := range r.Ingredients {
		for _, item := range items {
			if strings.Contains(strings.ToLower(item), query) {
				return true
			}
		}
	}
	return false
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a title into a recipe ID: "Chicken Alfredo!" -> "chicken-alfredo".
func Slug(title string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if s == "" {
		return "recipe"
	}
	return s
}
