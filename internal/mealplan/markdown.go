package mealplan

import (
	"fmt"
	"strings"
)

// Markdown renders the plan in the same convention Extract reads.
// Empty sections are omitted. For any plan returned by Extract,
// Extract(p.Markdown()) yields an equal plan.
func (p Plan) Markdown() string {
	var sb strings.Builder

	for _, s := range []Section{SectionBreakfast, SectionLunch, SectionDinner} {
		dishes := *p.dishes(s)
		if len(dishes) == 0 {
			continue
		}
		writeHeader(&sb, s)
		for i, d := range dishes {
			fmt.Fprintf(&sb, "- **Dish %d**: %s\n", i+1, d.Name)
			for _, b := range d.Benefits {
				fmt.Fprintf(&sb, "  - %s\n", b)
			}
		}
	}

	for _, s := range []Section{SectionRecommended, SectionAvoid} {
		items := *p.items(s)
		if len(items) == 0 {
			continue
		}
		writeHeader(&sb, s)
		for _, item := range items {
			fmt.Fprintf(&sb, "- %s\n", item)
		}
	}

	return sb.String()
}

func writeHeader(sb *strings.Builder, s Section) {
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	fmt.Fprintf(sb, "## %s\n", headerTitles[s])
}
