// Package domain defines the core types and interfaces for the cooking
// session engine. All other packages depend on domain; domain depends on
// nothing outside the standard library.
package domain

import (
	"fmt"
	"strings"
)

// Recipe is the structured recipe handed over by a recipe producer.
// The engine validates its shape, never its content.
type Recipe struct {
	ID          string              `json:"id,omitempty" yaml:"id,omitempty"`
	Title       string              `json:"title" yaml:"title"`
	Ingredients map[string][]string `json:"ingredients,omitempty" yaml:"ingredients,omitempty"`
	Tools       []string            `json:"kitchen_tools_and_dishes,omitempty" yaml:"kitchen_tools_and_dishes,omitempty"`
	Steps       []Step              `json:"steps" yaml:"steps"`
	TotalTime   string              `json:"total_time,omitempty" yaml:"total_time,omitempty"`
	Servings    string              `json:"servings,omitempty" yaml:"servings,omitempty"`
}

// RecipeSummary is a lightweight view of a recipe for listing.
type RecipeSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	TotalSteps int    `json:"total_steps"`
	TotalTime  string `json:"total_time,omitempty"`
}

// Step is one instruction of a recipe. Steps are addressed 1-indexed by
// their position in Recipe.Steps; Number is informational.
type Step struct {
	Number        int    `json:"step_number,omitempty" yaml:"step_number,omitempty"`
	Instruction   string `json:"instruction" yaml:"instruction"`
	EstimatedTime string `json:"estimated_time,omitempty" yaml:"estimated_time,omitempty"`
}

// TotalSteps returns the number of steps in the recipe.
func (r *Recipe) TotalSteps() int {
	return len(r.Steps)
}

// Summary returns the listing view of the recipe.
func (r *Recipe) Summary() RecipeSummary {
	return RecipeSummary{
		ID:         r.ID,
		Title:      r.Title,
		TotalSteps: len(r.Steps),
		TotalTime:  r.TotalTime,
	}
}

// Validate checks the structural shape of the recipe: at least one step
// and a non-blank instruction on every step.
func (r *Recipe) Validate() error {
	if r == nil {
		return &RecipeError{Field: "recipe", Reason: "missing"}
	}
	if len(r.Steps) == 0 {
		return &RecipeError{Field: "steps", Reason: "must contain at least one step"}
	}
	for i, s := range r.Steps {
		if strings.TrimSpace(s.Instruction) == "" {
			return &RecipeError{
				Field:  fmt.Sprintf("steps[%d].instruction", i),
				Reason: "must not be empty",
			}
		}
	}
	return nil
}

// Clone returns a deep copy so the session owns a recipe nobody else can
// mutate.
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}
	out := *r
	if r.Ingredients != nil {
		out.Ingredients = make(map[string][]string, len(r.Ingredients))
		for k, v := range r.Ingredients {
			out.Ingredients[k] = append([]string(nil), v...)
		}
	}
	out.Tools = append([]string(nil), r.Tools...)
	out.Steps = append([]Step(nil), r.Steps...)
	return &out
}
