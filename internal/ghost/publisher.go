package ghost

import (
	"context"
	"fmt"
	"strings"

	"dietmind/internal/mealplan"
	"dietmind/internal/planner"
)

const (
	planTag = "diet-plan"
	// Ghost rejects custom excerpts longer than 300 characters.
	maxExcerptRunes = 300
)

// Publisher posts generated plans to a Ghost blog.
type Publisher struct {
	client Client
}

// NewPublisher creates a new Publisher instance.
func NewPublisher(client Client) *Publisher {
	return &Publisher{client: client}
}

// PublishPlan renders a plan and creates a published post for it.
func (p *Publisher) PublishPlan(ctx context.Context, res *planner.Result) (*Post, error) {
	if res.Fallback {
		return nil, fmt.Errorf("plan %s has no structured content to publish", res.ID)
	}

	html, err := RenderPlanHTML(res.Plan)
	if err != nil {
		return nil, err
	}

	post, err := p.client.CreatePost(ctx, NewPost{
		Title:   PlanTitle(res.Profile),
		HTML:    html,
		Excerpt: PlanExcerpt(res.Plan),
		Tags:    planTags(res.Profile),
		Publish: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save to ghost: %w", err)
	}
	return post, nil
}

// PlanTitle builds a post title from the profile, e.g.
// "Vegetarian Indian diet plan (Adult, Moderate activity)".
func PlanTitle(p planner.Profile) string {
	title := strings.TrimSpace(p.DietaryPreference + " Indian diet plan")

	var details []string
	if p.AgeStage != "" {
		details = append(details, p.AgeStage)
	}
	if p.ActivityLevel != "" {
		details = append(details, p.ActivityLevel+" activity")
	}
	if len(details) > 0 {
		title += " (" + strings.Join(details, ", ") + ")"
	}
	return title
}

// PlanExcerpt lists the dishes of each meal, e.g.
// "Breakfast: Poha, Upma. Dinner: Khichdi."
func PlanExcerpt(plan mealplan.Plan) string {
	meals := []struct {
		section mealplan.Section
		dishes  []mealplan.Dish
	}{
		{mealplan.SectionBreakfast, plan.Breakfast},
		{mealplan.SectionLunch, plan.Lunch},
		{mealplan.SectionDinner, plan.Dinner},
	}

	var parts []string
	for _, m := range meals {
		if len(m.dishes) == 0 {
			continue
		}
		names := make([]string, len(m.dishes))
		for i, d := range m.dishes {
			names[i] = d.Name
		}
		parts = append(parts, m.section.Title()+": "+strings.Join(names, ", ")+".")
	}

	excerpt := []rune(strings.Join(parts, " "))
	if len(excerpt) > maxExcerptRunes {
		return string(excerpt[:maxExcerptRunes-1]) + "…"
	}
	return string(excerpt)
}

func planTags(p planner.Profile) []string {
	tags := []string{planTag}
	if diet := slug(p.DietaryPreference); diet != "" {
		tags = append(tags, diet)
	}
	return tags
}
