package planner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dietmind/internal/llm"
	"dietmind/internal/shared"
)

type MockTextGenerator struct {
	Response    string
	ShouldError bool
	Prompt      string
	Deadline    bool
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.Prompt = prompt
	_, m.Deadline = ctx.Deadline()
	if m.ShouldError {
		return llm.ContentResponse{}, errors.New("mock ai error")
	}
	return llm.ContentResponse{
		Content: m.Response,
		Usage:   shared.TokenUsage{PromptTokens: 200, CompletionTokens: 400, TotalTokens: 600, Model: "mock-model"},
	}, nil
}

// BlockingTextGenerator waits until the call is cancelled.
type BlockingTextGenerator struct{}

func (BlockingTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	<-ctx.Done()
	return llm.ContentResponse{}, ctx.Err()
}

var testProfile = Profile{
	DietaryPreference: "Vegetarian",
	Allergies:         []string{"Peanuts", " "},
	AgeStage:          "Adult",
	MedicalConditions: nil,
	ActivityLevel:     "Moderate",
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockAI := &MockTextGenerator{Response: "```markdown\n## Breakfast\n- **Dish 1**: Poha\n  - High in iron\n## Foods to Avoid\n- Soda\n```"}
		p := NewPlanner(mockAI, time.Minute)

		res, err := p.Generate(ctx, testProfile)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		if res.ID == "" {
			t.Error("Expected a plan ID")
		}
		if res.Fallback {
			t.Error("Expected a structured plan, got fallback")
		}
		if len(res.Plan.Breakfast) != 1 || res.Plan.Breakfast[0].Name != "Poha" {
			t.Errorf("Expected breakfast dish Poha, got %+v", res.Plan.Breakfast)
		}
		if len(res.Plan.Avoid) != 1 || res.Plan.Avoid[0] != "Soda" {
			t.Errorf("Expected avoid [Soda], got %v", res.Plan.Avoid)
		}
		if res.Raw != mockAI.Response {
			t.Error("Expected raw response to be kept as received")
		}
		if res.Meta.AgentName != "Nutritionist" || res.Meta.Usage.PromptTokens != 200 {
			t.Errorf("Unexpected meta: %+v", res.Meta)
		}
		if len(res.Profile.Allergies) != 1 {
			t.Errorf("Expected blank allergies to be dropped, got %v", res.Profile.Allergies)
		}
		if !mockAI.Deadline {
			t.Error("Expected the generation call to carry a deadline")
		}
		if !strings.Contains(mockAI.Prompt, "- Allergies: Peanuts") {
			t.Errorf("Expected allergies in prompt, got:\n%s", mockAI.Prompt)
		}
	})

	t.Run("MarkdownWithStrayTag", func(t *testing.T) {
		mockAI := &MockTextGenerator{Response: "## Breakfast\n" +
			"- **Dish 1**: Poha\n" +
			"  - High in iron\n" +
			"## Recommended Foods\n" +
			"- Turmeric milk\n" +
			"Tip: avoid <ul> style lists."}
		p := NewPlanner(mockAI, time.Minute)

		res, err := p.Generate(ctx, testProfile)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if res.Fallback {
			t.Fatal("Expected a structured plan, got fallback")
		}
		if len(res.Plan.Breakfast) != 1 || res.Plan.Breakfast[0].Name != "Poha" {
			t.Errorf("Expected breakfast dish Poha, got %+v", res.Plan.Breakfast)
		}
		if len(res.Plan.Recommended) != 1 || res.Plan.Recommended[0] != "Turmeric milk" {
			t.Errorf("Expected recommended [Turmeric milk], got %v", res.Plan.Recommended)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		p := NewPlanner(BlockingTextGenerator{}, 20*time.Millisecond)

		start := time.Now()
		_, err := p.Generate(ctx, testProfile)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("Expected a wrapped context.DeadlineExceeded, got %v", err)
		}
		if !strings.HasPrefix(err.Error(), "failed to generate meal plan:") {
			t.Errorf("Expected the generation error prefix, got '%v'", err)
		}
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			t.Errorf("Expected the timeout to cancel the call, took %v", elapsed)
		}
	})

	t.Run("Fallback", func(t *testing.T) {
		mockAI := &MockTextGenerator{Response: "Sorry, I can only give general advice. Eat more vegetables."}
		p := NewPlanner(mockAI, 0)

		res, err := p.Generate(ctx, testProfile)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if !res.Fallback {
			t.Error("Expected fallback for an unstructured answer")
		}
		if !res.Plan.IsEmpty() {
			t.Errorf("Expected empty plan, got %+v", res.Plan)
		}
		if mockAI.Deadline {
			t.Error("Expected no deadline when timeout is zero")
		}
	})

	t.Run("InvalidProfile", func(t *testing.T) {
		mockAI := &MockTextGenerator{}
		p := NewPlanner(mockAI, 0)

		_, err := p.Generate(ctx, Profile{DietaryPreference: "Vegan", AgeStage: "Teen"})
		if !errors.Is(err, ErrInvalidProfile) {
			t.Fatalf("Expected ErrInvalidProfile, got %v", err)
		}
		if !strings.Contains(err.Error(), "activityLevel") {
			t.Errorf("Expected missing field in error, got '%v'", err)
		}
		if mockAI.Prompt != "" {
			t.Error("Expected no generation call for an invalid profile")
		}
	})

	t.Run("GenerationError", func(t *testing.T) {
		p := NewPlanner(&MockTextGenerator{ShouldError: true}, 0)

		_, err := p.Generate(ctx, testProfile)
		if err == nil {
			t.Fatal("Expected an error from the text generator, got nil")
		}
		expectedError := "failed to generate meal plan: mock ai error"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(Profile{
		DietaryPreference: "Jain",
		AgeStage:          "Senior",
		MedicalConditions: []string{"Diabetes", "Hypertension"},
		ActivityLevel:     "Sedentary",
	})
	if err != nil {
		t.Fatalf("BuildPrompt failed: %v", err)
	}

	expectedSubstrings := []string{
		"You are a nutrition expert.",
		"- Dietary Preference: Jain",
		"- Allergies: None",
		"- Medical Conditions: Diabetes, Hypertension",
		"- Activity Level: Sedentary",
		"suggest 2 Indian dishes",
		"provide 3 health benefits",
		"## Breakfast\n- **Dish 1**: Dish Name\n  - Benefit 1\n  - Benefit 2\n  - Benefit 3\n- **Dish 2**: Dish Name",
		"## Dinner",
		"## Recommended Foods\n- Food 1\n- Food 2\n- Food 3",
		"## Foods to Avoid\n- Food 1",
	}
	for _, sub := range expectedSubstrings {
		if !strings.Contains(prompt, sub) {
			t.Errorf("Expected prompt to contain %q, got:\n%s", sub, prompt)
		}
	}
}
