package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ricirt/report-robot/internal/domain"
)

// Property keys holding the queue checkpoint.
const (
	KeyQueueJSON  = "QUEUE_JSON"
	KeyQueueIndex = "QUEUE_INDEX"
)

// QueueStateRepository stores the job list and cursor as two properties.
// Reads and writes are not atomic; callers hold the queue lock.
type QueueStateRepository struct {
	props PropertyStore
}

func NewQueueStateRepository(props PropertyStore) *QueueStateRepository {
	return &QueueStateRepository{props: props}
}

// Load returns the persisted state, normalized. A missing or unreadable
// checkpoint yields an empty state.
func (r *QueueStateRepository) Load(ctx context.Context) (domain.QueueState, error) {
	var st domain.QueueState

	raw, ok, err := r.props.Get(ctx, KeyQueueJSON)
	if err != nil {
		return st, fmt.Errorf("load queue: %w", err)
	}
	if ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &st.Jobs); err != nil {
			st.Jobs = nil
		}
	}

	idx, ok, err := r.props.Get(ctx, KeyQueueIndex)
	if err != nil {
		return st, fmt.Errorf("load queue cursor: %w", err)
	}
	if ok {
		st.Cursor, _ = strconv.Atoi(idx)
	}

	st.Normalize()
	return st, nil
}

func (r *QueueStateRepository) Save(ctx context.Context, st domain.QueueState) error {
	jobs := st.Jobs
	if jobs == nil {
		jobs = []domain.Job{}
	}
	raw, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("encode queue: %w", err)
	}
	if err := r.props.Set(ctx, KeyQueueJSON, string(raw)); err != nil {
		return err
	}
	return r.props.Set(ctx, KeyQueueIndex, strconv.Itoa(st.Cursor))
}

func (r *QueueStateRepository) Clear(ctx context.Context) error {
	return r.props.Delete(ctx, KeyQueueJSON, KeyQueueIndex)
}
