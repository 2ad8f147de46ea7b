package repository

import (
	"context"
	"testing"

	"github.com/qbank-io/exam-ingest/internal/records"
)

func testRecords() []records.Matched {
	return []records.Matched{
		{
			QuestionNumber: 1,
			Content:        "첫 문제",
			Options:        map[string]string{"1": "a", "2": "b"},
			CorrectAnswer:  "2",
			Difficulty:     "중",
			Year:           2023,
			Description:    []string{"지문 1"},
		},
		{
			QuestionNumber: 2,
			Content:        "둘째 문제",
			Options:        map[string]string{"1": "a", "2": "b"},
			CorrectAnswer:  "1",
			Difficulty:     "상",
			Year:           2023,
		},
	}
}

func TestSQLiteSaveAndList(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSQLite(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	}()

	saved, err := repo.SaveRecords(ctx, "2023_기출", testRecords())
	if err != nil {
		t.Fatalf("SaveRecords: %v", err)
	}
	if saved != 2 {
		t.Errorf("saved = %d, want 2", saved)
	}

	count, err := repo.CountBySource(ctx, "2023_기출")
	if err != nil {
		t.Fatalf("CountBySource: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	listed, err := repo.ListBySource(ctx, "2023_기출")
	if err != nil {
		t.Fatalf("ListBySource: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("listed = %d, want 2", len(listed))
	}
	first := listed[0]
	if first.QuestionNumber != 1 || first.Content != "첫 문제" || first.CorrectAnswer != "2" {
		t.Errorf("listed[0] = %+v", first)
	}
	if len(first.Options) != 2 || first.Options["2"] != "b" {
		t.Errorf("options round-trip failed: %v", first.Options)
	}
	if len(first.Description) != 1 || first.Description[0] != "지문 1" {
		t.Errorf("description round-trip failed: %v", first.Description)
	}
}

func TestSQLiteUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSQLite(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer func() { _ = repo.Close() }()

	recs := testRecords()
	if _, err := repo.SaveRecords(ctx, "src", recs); err != nil {
		t.Fatalf("first save: %v", err)
	}

	recs[0].CorrectAnswer = "1"
	if _, err := repo.SaveRecords(ctx, "src", recs[:1]); err != nil {
		t.Fatalf("second save: %v", err)
	}

	count, err := repo.CountBySource(ctx, "src")
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %d after upsert, want 2 (no duplicate row)", count)
	}

	listed, err := repo.ListBySource(ctx, "src")
	if err != nil {
		t.Fatal(err)
	}
	if listed[0].CorrectAnswer != "1" {
		t.Errorf("CorrectAnswer = %q, want updated value", listed[0].CorrectAnswer)
	}
}

func TestSQLiteEmptySave(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSQLite(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer func() { _ = repo.Close() }()

	saved, err := repo.SaveRecords(ctx, "src", nil)
	if err != nil {
		t.Fatalf("SaveRecords(nil): %v", err)
	}
	if saved != 0 {
		t.Errorf("saved = %d, want 0", saved)
	}
}
