package planner

import (
	"context"
	"fmt"
	"time"

	"dietmind/internal/llm"
	"dietmind/internal/mealplan"
	"dietmind/internal/shared"

	"github.com/google/uuid"
)

const agentName = "Nutritionist"

// Result is a generated plan together with what it was generated from.
type Result struct {
	ID      string        `json:"id"`
	Profile Profile       `json:"profile"`
	Plan    mealplan.Plan `json:"plan"`
	// Raw is the generator's answer as received.
	Raw string `json:"raw"`
	// Fallback is set when nothing could be extracted from Raw. Callers
	// should show Raw instead of the empty plan.
	Fallback  bool             `json:"fallback"`
	CreatedAt time.Time        `json:"created_at"`
	Meta      shared.AgentMeta `json:"-"`
}

// Planner handles the generation of diet plans.
type Planner struct {
	textGen llm.TextGenerator
	timeout time.Duration
}

// NewPlanner creates a new Planner instance. A zero timeout leaves the
// generation call bounded only by the caller's context.
func NewPlanner(textGen llm.TextGenerator, timeout time.Duration) *Planner {
	return &Planner{
		textGen: textGen,
		timeout: timeout,
	}
}

// Generate builds the prompt for a profile, asks the text generator for a
// plan and extracts it.
func (p *Planner) Generate(ctx context.Context, profile Profile) (*Result, error) {
	profile = profile.Clean()
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	prompt, err := BuildPrompt(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := p.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate meal plan: %w", err)
	}

	plan := mealplan.Extract(mealplan.Normalize(resp.Content))

	return &Result{
		ID:        uuid.NewString(),
		Profile:   profile,
		Plan:      plan,
		Raw:       resp.Content,
		Fallback:  plan.IsEmpty(),
		CreatedAt: time.Now().UTC(),
		Meta: shared.AgentMeta{
			AgentName: agentName,
			Usage:     resp.Usage,
			Latency:   time.Since(start),
		},
	}, nil
}
