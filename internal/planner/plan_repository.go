package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dietmind/internal/database"
)

// ErrPlanNotFound is returned when no plan exists for an ID.
var ErrPlanNotFound = errors.New("meal plan not found")

// PlanRepository is a database-backed repository for generated plans.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// Save inserts a generated plan into the database.
func (r *PlanRepository) Save(ctx context.Context, res *Result) error {
	profileJSON, err := json.Marshal(res.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	planJSON, err := json.Marshal(res.Plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	createdAt := res.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO meal_plans (id, profile, plan, raw, fallback, model, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.ID, string(profileJSON), string(planJSON), res.Raw, res.Fallback, res.Meta.Usage.Model,
		createdAt.UTC().Format(database.TimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save meal plan %s: %w", res.ID, err)
	}
	return nil
}

// Get retrieves a single plan by ID.
func (r *PlanRepository) Get(ctx context.Context, id string) (*Result, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, profile, plan, raw, fallback, model, created_at FROM meal_plans WHERE id = ?`, id)

	res, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal plan %s: %w", id, err)
	}
	return res, nil
}

// ListRecent retrieves the N most recent plans, newest first.
func (r *PlanRepository) ListRecent(ctx context.Context, limit int) ([]Result, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, profile, plan, raw, fallback, model, created_at FROM meal_plans
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent meal plans: %w", err)
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal plan: %w", err)
		}
		results = append(results, *res)
	}
	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(s scanner) (*Result, error) {
	var (
		res                   Result
		profileJSON, planJSON string
		model, createdAt      string
	)
	if err := s.Scan(&res.ID, &profileJSON, &planJSON, &res.Raw, &res.Fallback, &model, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(profileJSON), &res.Profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	if err := json.Unmarshal([]byte(planJSON), &res.Plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}

	ts, err := time.Parse(database.TimeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}
	res.CreatedAt = ts
	res.Meta.AgentName = agentName
	res.Meta.Usage.Model = model
	return &res, nil
}
