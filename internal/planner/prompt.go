package planner

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
)

//go:embed prompt.md
var planPrompt string

const (
	dishesPerMeal   = 2
	benefitsPerDish = 3
	listItems       = 3
)

var promptTemplate = template.Must(template.New("plan").Funcs(template.FuncMap{
	"list": func(items []string) string {
		if len(items) == 0 {
			return "None"
		}
		return strings.Join(items, ", ")
	},
	"seq": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i + 1
		}
		return out
	},
}).Parse(planPrompt))

type promptData struct {
	Profile
	Meals           []string
	DishesPerMeal   int
	BenefitsPerDish int
	ListItems       int
}

// BuildPrompt renders the generation prompt for a profile.
func BuildPrompt(p Profile) (string, error) {
	data := promptData{
		Profile:         p,
		Meals:           []string{"Breakfast", "Lunch", "Dinner"},
		DishesPerMeal:   dishesPerMeal,
		BenefitsPerDish: benefitsPerDish,
		ListItems:       listItems,
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
