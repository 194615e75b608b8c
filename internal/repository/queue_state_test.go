package repository_test

import (
	"context"
	"testing"

	"github.com/ricirt/report-robot/internal/domain"
	"github.com/ricirt/report-robot/internal/repository"
)

func TestQueueStateRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	props := repository.NewMockPropertyStore()
	repo := repository.NewQueueStateRepository(props)

	in := domain.QueueState{
		Jobs: []domain.Job{
			{ID: "f1", Name: "Ventas 01-02-2026.xlsx", Status: domain.JobDone},
			{ID: "f2", Name: "Cta Cte.xlsx", Status: domain.JobProcessing},
		},
		Cursor: 1,
	}
	if err := repo.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, _, _ := props.Get(ctx, repository.KeyQueueJSON)
	if raw == "" || raw[0] != '[' {
		t.Fatalf("expected a JSON array, got %q", raw)
	}

	out, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Cursor != 1 || len(out.Jobs) != 2 {
		t.Fatalf("unexpected state %+v", out)
	}
	if out.Jobs[1].Status != domain.JobPending {
		t.Fatalf("processing job should reload as pending, got %s", out.Jobs[1].Status)
	}
}

func TestQueueStateRepository_LoadEdgeCases(t *testing.T) {
	ctx := context.Background()

	t.Run("missing checkpoint is empty", func(t *testing.T) {
		repo := repository.NewQueueStateRepository(repository.NewMockPropertyStore())
		st, err := repo.Load(ctx)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if !st.Exhausted() || st.Cursor != 0 {
			t.Fatalf("expected empty state, got %+v", st)
		}
	})

	t.Run("corrupt json is treated as empty and cursor clamped", func(t *testing.T) {
		props := repository.NewMockPropertyStore()
		_ = props.Set(ctx, repository.KeyQueueJSON, "{not json")
		_ = props.Set(ctx, repository.KeyQueueIndex, "7")
		st, err := repository.NewQueueStateRepository(props).Load(ctx)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if len(st.Jobs) != 0 || st.Cursor != 0 {
			t.Fatalf("expected empty state, got %+v", st)
		}
	})

	t.Run("clear removes both keys", func(t *testing.T) {
		props := repository.NewMockPropertyStore()
		repo := repository.NewQueueStateRepository(props)
		_ = repo.Save(ctx, domain.QueueState{Jobs: []domain.Job{{ID: "a"}}})
		_ = props.Set(ctx, "OTHER", "x")
		if err := repo.Clear(ctx); err != nil {
			t.Fatalf("clear: %v", err)
		}
		if keys := props.Keys(); len(keys) != 1 || keys[0] != "OTHER" {
			t.Fatalf("expected only OTHER to remain, got %v", keys)
		}
	})
}
