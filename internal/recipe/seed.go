package recipe

import "github.com/hammamikhairi/cookalong/internal/domain"

// seed populates the source with built-in recipes.
func (s *MemorySource) seed() {
	recipes := []*domain.Recipe{
		chickenAlfredo(),
		vegetableStirFry(),
	}
	for _, r := range recipes {
		s.recipes[r.ID] = r
	}
	s.log.Debug("seeded %d recipes", len(recipes))
}

func chickenAlfredo() *domain.Recipe {
	return &domain.Recipe{
		ID:    "chicken-alfredo",
		Title: "Chicken Alfredo",
		Ingredients: map[string][]string{
			"pasta":   {"250 g spaghetti", "salt for the water"},
			"chicken": {"2 medium chicken breasts", "1 tbsp olive oil", "salt and black pepper"},
			"sauce":   {"3 tbsp butter", "4 cloves garlic, minced", "1 cup creme fraiche", "1 cup grated gruyere"},
		},
		Tools:     []string{"large pot", "skillet", "colander", "tongs"},
		TotalTime: "40 minutes",
		Servings:  "2",
		Steps: []domain.Step{
			{Number: 1, Instruction: "Bring a large pot of well salted water to a boil.", EstimatedTime: "8 minutes"},
			{Number: 2, Instruction: "Season the chicken on both sides and pound the thick end so it cooks evenly.", EstimatedTime: "3 minutes"},
			{Number: 3, Instruction: "Sear the chicken in olive oil over medium-high heat, about 6 minutes per side, then let it rest.", EstimatedTime: "12 minutes"},
			{Number: 4, Instruction: "Cook the spaghetti until al dente. Keep a cup of the pasta water before draining.", EstimatedTime: "10 minutes"},
			{Number: 5, Instruction: "Melt the butter in the same skillet and cook the garlic until fragrant without browning it.", EstimatedTime: "1 minute"},
			{Number: 6, Instruction: "Stir in the creme fraiche and let it simmer gently until it starts to thicken.", EstimatedTime: "3 minutes"},
			{Number: 7, Instruction: "Off the heat, stir in the gruyere a handful at a time. Loosen with pasta water if needed."},
			{Number: 8, Instruction: "Slice the chicken, toss the pasta through the sauce and serve straight away."},
		},
	}
}

func vegetableStirFry() *domain.Recipe {
	return &domain.Recipe{
		ID:    "vegetable-stir-fry",
		Title: "Vegetable Stir Fry",
		Ingredients: map[string][]string{
			"vegetables": {"1 large bell pepper", "2 cups broccoli florets", "1 carrot", "1 cup snap peas"},
			"aromatics":  {"3 cloves garlic", "1 tbsp grated ginger"},
			"sauce":      {"2 tbsp soy sauce", "1 tbsp sesame oil", "1 tsp cornstarch"},
			"to serve":   {"1 cup rice"},
		},
		Tools:     []string{"wok", "rice cooker", "knife"},
		TotalTime: "30 minutes",
		Servings:  "2",
		Steps: []domain.Step{
			{Number: 1, Instruction: "Start the rice before anything else.", EstimatedTime: "20 minutes"},
			{Number: 2, Instruction: "Cut every vegetable and mince the garlic and ginger before the wok goes on."},
			{Number: 3, Instruction: "Whisk the soy sauce, sesame oil and cornstarch with two tablespoons of water."},
			{Number: 4, Instruction: "Heat the wok until it just smokes, then add oil and swirl."},
			{Number: 5, Instruction: "Fry broccoli and carrot for 2 minutes, then pepper and snap peas for 2 more. Let them char.", EstimatedTime: "4 minutes"},
			{Number: 6, Instruction: "Clear the centre, add garlic and ginger for 30 seconds, then toss everything together.", EstimatedTime: "30 seconds"},
			{Number: 7, Instruction: "Pour in the sauce and toss until glossy. Serve over the rice."},
		},
	}
}
