package domain_test

import (
	"testing"

	"github.com/ricirt/report-robot/internal/domain"
)

func TestQueueState_Normalize(t *testing.T) {
	t.Run("processing job is reset to pending", func(t *testing.T) {
		s := domain.QueueState{
			Jobs: []domain.Job{
				{ID: "a", Status: domain.JobDone},
				{ID: "b", Status: domain.JobProcessing},
				{ID: "c", Status: domain.JobPending},
			},
			Cursor: 1,
		}
		s.Normalize()
		if s.Jobs[1].Status != domain.JobPending {
			t.Fatalf("expected pending, got %s", s.Jobs[1].Status)
		}
		if s.Jobs[0].Status != domain.JobDone {
			t.Fatalf("done job must be left alone, got %s", s.Jobs[0].Status)
		}
	})

	t.Run("cursor is clamped to the list", func(t *testing.T) {
		s := domain.QueueState{Jobs: []domain.Job{{ID: "a"}}, Cursor: 9}
		s.Normalize()
		if s.Cursor != 1 {
			t.Fatalf("expected cursor 1, got %d", s.Cursor)
		}

		s = domain.QueueState{Cursor: -3}
		s.Normalize()
		if s.Cursor != 0 {
			t.Fatalf("expected cursor 0, got %d", s.Cursor)
		}
	})
}

func TestQueueState_Exhausted(t *testing.T) {
	if !(&domain.QueueState{}).Exhausted() {
		t.Fatal("empty queue must be exhausted")
	}
	s := domain.QueueState{Jobs: []domain.Job{{ID: "a"}, {ID: "b"}}, Cursor: 1}
	if s.Exhausted() {
		t.Fatal("queue with a pending job must not be exhausted")
	}
	s.Cursor = 2
	if !s.Exhausted() {
		t.Fatal("cursor at end must be exhausted")
	}
}
