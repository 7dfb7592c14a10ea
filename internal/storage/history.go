package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"family-meal-planner/internal/planner"
)

// HistoryStore keeps every generated meal plan. History is append-only;
// nothing here ever updates or deletes a plan.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore creates a history store over an opened database.
func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Append records a generated plan.
func (s *HistoryStore) Append(ctx context.Context, plan *planner.MealPlan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO meal_plans (id, week_starting, generated_at, plan_json) VALUES (?, ?, ?, ?)`,
		plan.ID, plan.WeekStart, plan.GeneratedAt, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}
	return nil
}

// Recent returns up to n of the most recently generated plans, oldest
// first.
func (s *HistoryStore) Recent(ctx context.Context, n int) ([]planner.MealPlan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT plan_json FROM (
			SELECT plan_json, generated_at FROM meal_plans ORDER BY generated_at DESC LIMIT ?
		) ORDER BY generated_at ASC`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent plans: %w", err)
	}
	defer rows.Close()
	return scanPlans(rows)
}

// All returns every stored plan, oldest first.
func (s *HistoryStore) All(ctx context.Context) ([]planner.MealPlan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT plan_json FROM meal_plans ORDER BY generated_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()
	return scanPlans(rows)
}

// Get looks up one plan by ID.
func (s *HistoryStore) Get(ctx context.Context, planID string) (*planner.MealPlan, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT plan_json FROM meal_plans WHERE id = ?`, planID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("plan %s not found", planID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query plan: %w", err)
	}

	var plan planner.MealPlan
	if err := json.Unmarshal([]byte(payload), &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &plan, nil
}

// Latest returns the most recently generated plan, or nil with no error
// when the history is empty.
func (s *HistoryStore) Latest(ctx context.Context) (*planner.MealPlan, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT plan_json FROM meal_plans ORDER BY generated_at DESC LIMIT 1`,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest plan: %w", err)
	}

	var plan planner.MealPlan
	if err := json.Unmarshal([]byte(payload), &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &plan, nil
}

func scanPlans(rows *sql.Rows) ([]planner.MealPlan, error) {
	var plans []planner.MealPlan
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}
		var plan planner.MealPlan
		if err := json.Unmarshal([]byte(payload), &plan); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}
