package metrics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"family-meal-planner/internal/database"
	"family-meal-planner/internal/shared"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestStore_RecordAndDailyUsage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	meta := shared.AgentMeta{
		AgentName: "plan-generator",
		Usage:     shared.TokenUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150, Model: "test-model"},
		Latency:   1200 * time.Millisecond,
	}
	if err := store.RecordMeta(ctx, meta); err != nil {
		t.Fatalf("RecordMeta() error = %v", err)
	}

	// zero-usage calls are not recorded
	if err := store.RecordMeta(ctx, shared.AgentMeta{AgentName: "recipe-fetcher"}); err != nil {
		t.Fatalf("RecordMeta() zero usage error = %v", err)
	}

	usage, err := store.GetDailyUsage(ctx, 7)
	if err != nil {
		t.Fatalf("GetDailyUsage() error = %v", err)
	}
	if len(usage) != 1 {
		t.Fatalf("got %d usage rows, want 1", len(usage))
	}
	if usage[0].TotalPrompt != 100 || usage[0].TotalCompletion != 50 || usage[0].TotalExecution != 1 {
		t.Errorf("usage = %+v", usage[0])
	}
}

func TestStore_Cleanup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	old := ExecutionMetric{
		AgentName:    "plan-generator",
		PromptTokens: 10,
		RecordedAt:   time.Now().UTC().AddDate(0, 0, -40),
	}
	fresh := ExecutionMetric{
		AgentName:    "plan-generator",
		PromptTokens: 10,
		RecordedAt:   time.Now().UTC(),
	}
	if err := store.Record(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := store.Record(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	deleted, err := store.Cleanup(ctx, 30)
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
}
