package planner

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidProfile is returned when a required profile field is missing.
var ErrInvalidProfile = errors.New("invalid profile")

// Profile is the dietary profile a plan is generated for.
type Profile struct {
	DietaryPreference string   `json:"dietaryPreference"`
	Allergies         []string `json:"allergies"`
	AgeStage          string   `json:"ageStage"`
	MedicalConditions []string `json:"medicalConditions"`
	ActivityLevel     string   `json:"activityLevel"`
}

// Validate checks that the fields the prompt cannot do without are set.
func (p Profile) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"dietaryPreference", p.DietaryPreference},
		{"ageStage", p.AgeStage},
		{"activityLevel", p.ActivityLevel},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidProfile, f.name)
		}
	}
	return nil
}

// Clean trims whitespace and drops empty list entries.
func (p Profile) Clean() Profile {
	return Profile{
		DietaryPreference: strings.TrimSpace(p.DietaryPreference),
		Allergies:         cleanList(p.Allergies),
		AgeStage:          strings.TrimSpace(p.AgeStage),
		MedicalConditions: cleanList(p.MedicalConditions),
		ActivityLevel:     strings.TrimSpace(p.ActivityLevel),
	}
}

func cleanList(items []string) []string {
	out := []string{}
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
