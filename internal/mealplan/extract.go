package mealplan

import (
	"regexp"
	"strings"
)

// LineKind is the grammatical class of a single trimmed line.
type LineKind int

const (
	// LineOther covers blank lines, prose and anything unrecognized.
	LineOther LineKind = iota
	// LineHeader is "## <label>".
	LineHeader
	// LineDish is "- **Dish N**: <name>".
	LineDish
	// LineMalformedDish starts like a dish line but does not complete
	// the pattern, e.g. a missing name.
	LineMalformedDish
	// LineBullet is any other "- <text>" line.
	LineBullet

	lineKindCount
)

// Line is a classified line.
type Line struct {
	Kind LineKind
	// Label is the header label, only set for LineHeader.
	Label string
	// Name is the dish name, only set for LineDish.
	Name string
	// Item is the text after the bullet marker, set for every bullet
	// shaped line including dish lines.
	Item string
}

var (
	headerPattern = regexp.MustCompile(`^##\s+(.+)$`)
	bulletPattern = regexp.MustCompile(`^[-*+]\s+(.+)$`)
	dishPattern   = regexp.MustCompile(`^\*\*Dish\s+\d+\*\*\s*:\s*(.+)$`)
)

const dishMarker = "**Dish"

// ClassifyLine classifies a line. The line is trimmed first.
func ClassifyLine(raw string) Line {
	line := strings.TrimSpace(raw)

	if m := headerPattern.FindStringSubmatch(line); m != nil {
		return Line{Kind: LineHeader, Label: strings.TrimSpace(m[1])}
	}

	m := bulletPattern.FindStringSubmatch(line)
	if m == nil {
		return Line{Kind: LineOther}
	}
	item := strings.TrimSpace(m[1])

	if strings.HasPrefix(item, dishMarker) {
		if d := dishPattern.FindStringSubmatch(item); d != nil {
			return Line{Kind: LineDish, Name: strings.TrimSpace(d[1]), Item: item}
		}
		return Line{Kind: LineMalformedDish, Item: item}
	}
	return Line{Kind: LineBullet, Item: item}
}

// action is what the scanner does with a non-header line.
type action int

const (
	actDiscard action = iota
	actOpenDish
	actAddBenefit
	actAddItem
)

var (
	mealRow = [lineKindCount]action{
		LineDish:          actOpenDish,
		LineMalformedDish: actDiscard,
		LineBullet:        actAddBenefit,
	}
	listRow = [lineKindCount]action{
		LineDish:          actAddItem,
		LineMalformedDish: actAddItem,
		LineBullet:        actAddItem,
	}
)

// transitions holds the action for every section and line kind. Headers
// are handled before the table is consulted. Rows left zero discard.
var transitions = [sectionCount][lineKindCount]action{
	SectionBreakfast:   mealRow,
	SectionLunch:       mealRow,
	SectionDinner:      mealRow,
	SectionRecommended: listRow,
	SectionAvoid:       listRow,
}

// scanner holds the state of a single Extract call.
type scanner struct {
	plan    Plan
	section Section
	// dish is the index of the open dish in the current meal section,
	// or -1 when none is open.
	dish int
}

func newScanner() *scanner {
	return &scanner{plan: NewPlan(), section: SectionNone, dish: -1}
}

func (s *scanner) feed(l Line) {
	if l.Kind == LineHeader {
		s.section = ParseSection(l.Label)
		s.dish = -1
		return
	}
	if l.Kind == LineOther {
		return
	}

	switch transitions[s.section][l.Kind] {
	case actOpenDish:
		dishes := s.plan.dishes(s.section)
		*dishes = append(*dishes, Dish{Name: l.Name, Benefits: []string{}})
		s.dish = len(*dishes) - 1
	case actAddBenefit:
		if s.dish < 0 {
			return
		}
		d := &(*s.plan.dishes(s.section))[s.dish]
		d.Benefits = append(d.Benefits, l.Item)
	case actAddItem:
		items := s.plan.items(s.section)
		*items = append(*items, l.Item)
	}
}

// Extract converts a diet plan document into a Plan. It never fails:
// text that does not match the grammar is ignored, and the worst case is
// a Plan with five empty sequences.
func Extract(document string) Plan {
	s := newScanner()

	rest := normalizeNewlines(document)
	for rest != "" {
		line, tail, _ := strings.Cut(rest, "\n")
		s.feed(ClassifyLine(line))
		rest = tail
	}
	return s.plan
}

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}
