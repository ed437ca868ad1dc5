package ghost

import (
	"bytes"
	"fmt"
	"strings"

	"dietmind/internal/mealplan"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
)

// RenderPlanHTML renders a plan as post HTML. Section headings get ids
// so posts can link to a meal, and benefit lists get the dish-benefits
// class for theme styling.
func RenderPlanHTML(plan mealplan.Plan) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(plan.Markdown()), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return "", fmt.Errorf("failed to parse rendered html: %w", err)
	}

	doc.Find("h2").Each(func(_ int, s *goquery.Selection) {
		s.SetAttr("id", slug(s.Text()))
	})
	doc.Find("ul ul").AddClass("dish-benefits")

	return doc.Find("body").Html()
}

func slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}
