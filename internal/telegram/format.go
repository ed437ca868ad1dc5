package telegram

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"dietmind/internal/mealplan"
	"dietmind/internal/planner"
)

// Telegram rejects messages longer than 4096 characters.
const maxMessageRunes = 4000

const usageText = `Send your profile as "key: value" lines, for example:

diet: Vegetarian
allergies: Peanuts, Gluten
age: Adult
conditions: Diabetes
activity: Moderate

allergies and conditions are optional. Separate several values with commas.`

var profileKeys = map[string]string{
	"diet":               "diet",
	"dietary preference": "diet",
	"allergies":          "allergies",
	"age":                "age",
	"age stage":          "age",
	"conditions":         "conditions",
	"medical conditions": "conditions",
	"activity":           "activity",
	"activity level":     "activity",
}

// ParseProfile reads a profile written as "key: value" lines. Keys are
// case-insensitive. List values are comma separated and "none" means an
// empty list. Required fields are checked later by the planner.
func ParseProfile(text string) (planner.Profile, error) {
	var p planner.Profile
	found := false

	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return planner.Profile{}, fmt.Errorf("expected \"key: value\", got %q", line)
		}
		field, known := profileKeys[strings.ToLower(strings.Join(strings.Fields(key), " "))]
		if !known {
			return planner.Profile{}, fmt.Errorf("unknown field %q", strings.TrimSpace(key))
		}

		value = strings.TrimSpace(value)
		switch field {
		case "diet":
			p.DietaryPreference = value
		case "allergies":
			p.Allergies = splitValues(value)
		case "age":
			p.AgeStage = value
		case "conditions":
			p.MedicalConditions = splitValues(value)
		case "activity":
			p.ActivityLevel = value
		}
		found = true
	}

	if !found {
		return planner.Profile{}, errors.New("profile is empty")
	}
	return p, nil
}

func splitValues(value string) []string {
	out := []string{}
	if strings.EqualFold(value, "none") {
		return out
	}
	for v := range strings.SplitSeq(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// escapeMarkdown escapes text for Telegram's legacy Markdown mode.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// FormatPlanMarkdown renders a plan as a Telegram Markdown message.
// Empty sections are left out.
func FormatPlanMarkdown(plan mealplan.Plan) string {
	var sb strings.Builder
	sb.WriteString("🥗 *Your Diet Plan*\n")

	meals := []struct {
		icon    string
		section mealplan.Section
		dishes  []mealplan.Dish
	}{
		{"🍳", mealplan.SectionBreakfast, plan.Breakfast},
		{"🍛", mealplan.SectionLunch, plan.Lunch},
		{"🍲", mealplan.SectionDinner, plan.Dinner},
	}
	for _, m := range meals {
		if len(m.dishes) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n%s *%s*\n", m.icon, m.section.Title())
		for _, d := range m.dishes {
			fmt.Fprintf(&sb, "• %s\n", escapeMarkdown(d.Name))
			for _, benefit := range d.Benefits {
				fmt.Fprintf(&sb, "    ◦ %s\n", escapeMarkdown(benefit))
			}
		}
	}

	lists := []struct {
		icon    string
		section mealplan.Section
		items   []string
	}{
		{"✅", mealplan.SectionRecommended, plan.Recommended},
		{"🚫", mealplan.SectionAvoid, plan.Avoid},
	}
	for _, l := range lists {
		if len(l.items) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n%s *%s*\n", l.icon, l.section.Title())
		for _, item := range l.items {
			fmt.Fprintf(&sb, "• %s\n", escapeMarkdown(item))
		}
	}

	return sb.String()
}

// splitMessage breaks text into chunks of at most limit runes. Whole
// sections are kept together when they fit, otherwise the cut falls on
// a line boundary so Markdown escapes are never split.
func splitMessage(text string, limit int) []string {
	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if chunk := strings.TrimSpace(cur.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
		cur.Reset()
		curLen = 0
	}
	add := func(piece string) {
		n := utf8.RuneCountInString(piece)
		if curLen+n > limit {
			flush()
		}
		cur.WriteString(piece)
		curLen += n
	}

	for _, section := range strings.SplitAfter(text, "\n\n") {
		if utf8.RuneCountInString(section) <= limit {
			add(section)
			continue
		}
		for _, line := range strings.SplitAfter(section, "\n") {
			if utf8.RuneCountInString(line) > limit {
				flush()
				line = cutLine(line, limit)
			}
			add(line)
		}
	}
	flush()
	return chunks
}

// cutLine shortens a single line to limit runes without leaving a
// dangling escape character at the cut.
func cutLine(line string, limit int) string {
	runes := []rune(line)
	return strings.TrimRight(string(runes[:limit-1]), `\`) + "…"
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
