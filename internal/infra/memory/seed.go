package memory

import "sdg-quest/internal/domain"

// SampleCatalog provides a small catalog for local runs; production loads
// the full 17-goal catalog from Postgres or a YAML file.
func SampleCatalog() []domain.Quiz {
	return []domain.Quiz{
		{
			ID:     "sdg-01",
			GoalID: 1,
			Title:  "No Poverty",
			Questions: []domain.Question{
				q("What is the international extreme poverty line set by the World Bank (2022 prices)?",
					"$2.15 a day", true, "$5.00 a day", false, "$10.00 a day", false),
				q("Which target year does SDG 1 aim to end extreme poverty by?",
					"2030", true, "2050", false, "2025", false),
				q("Which of these is a social protection measure?",
					"Unemployment benefits", true, "Import tariffs", false, "Stock buybacks", false),
				q("Poverty is measured only by income.",
					"False", true, "True", false),
				q("Which region has the highest share of people in extreme poverty?",
					"Sub-Saharan Africa", true, "Western Europe", false, "North America", false),
			},
		},
		{
			ID:     "sdg-02",
			GoalID: 2,
			Title:  "Zero Hunger",
			Questions: []domain.Question{
				q("What does SDG 2 aim to end by 2030?",
					"Hunger", true, "Urbanization", false, "Tourism", false),
				q("Roughly what share of food produced is lost or wasted globally?",
					"About one third", true, "About 1%", false, "About 90%", false),
				q("Which practice supports sustainable agriculture?",
					"Crop rotation", true, "Clearing rainforest", false, "Overgrazing", false),
				q("Stunting in children is a sign of:",
					"Chronic malnutrition", true, "Too much exercise", false, "High altitude", false),
				q("Smallholder farmers produce a large share of food in developing countries.",
					"True", true, "False", false),
			},
		},
		{
			ID:     "sdg-13",
			GoalID: 13,
			Title:  "Climate Action",
			Questions: []domain.Question{
				q("Which gas contributes most to human-caused global warming?",
					"Carbon dioxide", true, "Helium", false, "Argon", false),
				q("The Paris Agreement aims to limit warming to well below:",
					"2°C", true, "5°C", false, "10°C", false),
				q("Which energy source is renewable?",
					"Solar", true, "Coal", false, "Natural gas", false),
				q("Planting trees helps by:",
					"Absorbing CO2", true, "Raising sea levels", false, "Depleting ozone", false),
				q("Climate change affects only polar regions.",
					"False", true, "True", false),
			},
		},
	}
}

// q builds a question from alternating option text and correctness values.
func q(prompt string, opts ...any) domain.Question {
	question := domain.Question{Prompt: prompt}
	for i := 0; i+1 < len(opts); i += 2 {
		question.Options = append(question.Options, domain.Option{
			Text:      opts[i].(string),
			IsCorrect: opts[i+1].(bool),
		})
	}
	return question
}
