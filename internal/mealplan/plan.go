// Package mealplan converts a generated diet plan document into a
// normalized Plan.
//
// The document is expected to follow the markdown convention requested
// from the text generator:
//
//	## Breakfast
//	- **Dish 1**: <name>
//	  - <benefit>
//	## Lunch
//	...
//	## Dinner
//	...
//	## Recommended Foods
//	- <item>
//	## Foods to Avoid
//	- <item>
//
// Extraction is best-effort. Lines that do not fit the grammar are
// dropped rather than reported, so a partially well-formed document
// still yields whatever could be recovered.
package mealplan

import "encoding/json"

// Dish is a named item within a meal section.
type Dish struct {
	Name     string   `json:"dish"`
	Benefits []string `json:"benefits"`
}

// Plan is the normalized form of a diet plan document.
type Plan struct {
	Breakfast   []Dish   `json:"breakfast"`
	Lunch       []Dish   `json:"lunch"`
	Dinner      []Dish   `json:"dinner"`
	Recommended []string `json:"recommended"`
	Avoid       []string `json:"avoid"`
}

// NewPlan returns a Plan with all five sequences present and empty.
func NewPlan() Plan {
	return Plan{
		Breakfast:   []Dish{},
		Lunch:       []Dish{},
		Dinner:      []Dish{},
		Recommended: []string{},
		Avoid:       []string{},
	}
}

// IsEmpty reports whether nothing was recovered for any section.
func (p Plan) IsEmpty() bool {
	return len(p.Breakfast) == 0 &&
		len(p.Lunch) == 0 &&
		len(p.Dinner) == 0 &&
		len(p.Recommended) == 0 &&
		len(p.Avoid) == 0
}

// MarshalJSON always emits the five keys as arrays, never null.
func (p Plan) MarshalJSON() ([]byte, error) {
	type plain Plan
	out := plain(NewPlan())
	if p.Breakfast != nil {
		out.Breakfast = withBenefits(p.Breakfast)
	}
	if p.Lunch != nil {
		out.Lunch = withBenefits(p.Lunch)
	}
	if p.Dinner != nil {
		out.Dinner = withBenefits(p.Dinner)
	}
	if p.Recommended != nil {
		out.Recommended = p.Recommended
	}
	if p.Avoid != nil {
		out.Avoid = p.Avoid
	}
	return json.Marshal(out)
}

func withBenefits(dishes []Dish) []Dish {
	out := make([]Dish, len(dishes))
	for i, d := range dishes {
		if d.Benefits == nil {
			d.Benefits = []string{}
		}
		out[i] = d
	}
	return out
}

// Section identifies which part of the document the scanner is in.
type Section int

const (
	SectionNone Section = iota
	SectionBreakfast
	SectionLunch
	SectionDinner
	SectionRecommended
	SectionAvoid
	// SectionUnknown is entered after an unrecognized header. Nothing is
	// accumulated until the next recognized header.
	SectionUnknown

	sectionCount
)

var sectionNames = [...]string{
	SectionNone:        "none",
	SectionBreakfast:   "breakfast",
	SectionLunch:       "lunch",
	SectionDinner:      "dinner",
	SectionRecommended: "recommended",
	SectionAvoid:       "avoid",
	SectionUnknown:     "unknown",
}

func (s Section) String() string {
	if s < 0 || s >= sectionCount {
		return "invalid"
	}
	return sectionNames[s]
}

// IsMeal reports whether the section holds dishes.
func (s Section) IsMeal() bool {
	return s == SectionBreakfast || s == SectionLunch || s == SectionDinner
}

// IsList reports whether the section holds plain food items.
func (s Section) IsList() bool {
	return s == SectionRecommended || s == SectionAvoid
}

// headerLabels is the fixed header vocabulary, keyed by lower-cased label.
var headerLabels = map[string]Section{
	"breakfast":         SectionBreakfast,
	"lunch":             SectionLunch,
	"dinner":            SectionDinner,
	"recommended foods": SectionRecommended,
	"foods to avoid":    SectionAvoid,
}

// headerTitles is the canonical spelling used when rendering a plan.
var headerTitles = map[Section]string{
	SectionBreakfast:   "Breakfast",
	SectionLunch:       "Lunch",
	SectionDinner:      "Dinner",
	SectionRecommended: "Recommended Foods",
	SectionAvoid:       "Foods to Avoid",
}

// Title returns the header a section is rendered with, or "" for
// sections that never appear in a plan.
func (s Section) Title() string {
	return headerTitles[s]
}

// ParseSection maps a header label to its section. Labels outside the
// vocabulary map to SectionUnknown.
func ParseSection(label string) Section {
	if s, ok := headerLabels[normalizeLabel(label)]; ok {
		return s
	}
	return SectionUnknown
}

func (p *Plan) dishes(s Section) *[]Dish {
	switch s {
	case SectionBreakfast:
		return &p.Breakfast
	case SectionLunch:
		return &p.Lunch
	case SectionDinner:
		return &p.Dinner
	}
	return nil
}

func (p *Plan) items(s Section) *[]string {
	switch s {
	case SectionRecommended:
		return &p.Recommended
	case SectionAvoid:
		return &p.Avoid
	}
	return nil
}
