package mealplan

import (
	"reflect"
	"strings"
	"testing"
)

func TestPlanMarkdown(t *testing.T) {
	plan := Plan{
		Breakfast:   []Dish{{Name: "Poha", Benefits: []string{"High in iron"}}},
		Lunch:       []Dish{},
		Dinner:      []Dish{{Name: "Khichdi", Benefits: []string{}}},
		Recommended: []string{"Turmeric milk"},
		Avoid:       []string{},
	}

	md := plan.Markdown()

	expected := "## Breakfast\n" +
		"- **Dish 1**: Poha\n" +
		"  - High in iron\n" +
		"\n" +
		"## Dinner\n" +
		"- **Dish 1**: Khichdi\n" +
		"\n" +
		"## Recommended Foods\n" +
		"- Turmeric milk\n"
	if md != expected {
		t.Errorf("Unexpected markdown:\n%s\nwant:\n%s", md, expected)
	}
	if strings.Contains(md, "## Lunch") {
		t.Error("Expected empty lunch section to be omitted")
	}
}

func TestPlanMarkdown_RoundTrip(t *testing.T) {
	docs := []string{
		fullDocument,
		"## Recommended Foods\n- **Dish 1**: Curd rice\n",
		"## Lunch\n- **Dish 3**: Sambar\n  - **bold** benefit\n",
		"",
	}

	for _, doc := range docs {
		plan := Extract(doc)
		if got := Extract(plan.Markdown()); !reflect.DeepEqual(got, plan) {
			t.Errorf("Round trip changed plan:\n got  %+v\n want %+v", got, plan)
		}
	}
}

func TestPlanMarkdown_Empty(t *testing.T) {
	if md := NewPlan().Markdown(); md != "" {
		t.Errorf("Expected empty markdown for empty plan, got %q", md)
	}
}
