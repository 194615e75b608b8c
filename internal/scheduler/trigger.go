package scheduler

import (
	"context"

	"github.com/ricirt/report-robot/internal/repository"
)

// KeyTriggerActive is the property holding the periodic trigger flag.
const KeyTriggerActive = "QUEUE_TRIGGER_ACTIVE"

// Trigger turns periodic queue advancement on and off. The flag is
// shared by every process, so a CLI command can stop a running server's
// driver.
type Trigger interface {
	Activate(ctx context.Context) error
	Deactivate(ctx context.Context) error
	Active(ctx context.Context) (bool, error)
}

type propertyTrigger struct {
	props repository.PropertyStore
}

// NewPropertyTrigger stores the flag in the property store.
func NewPropertyTrigger(props repository.PropertyStore) Trigger {
	return &propertyTrigger{props: props}
}

func (t *propertyTrigger) Activate(ctx context.Context) error {
	return t.props.Set(ctx, KeyTriggerActive, "true")
}

// Deactivate is idempotent.
func (t *propertyTrigger) Deactivate(ctx context.Context) error {
	return t.props.Delete(ctx, KeyTriggerActive)
}

func (t *propertyTrigger) Active(ctx context.Context) (bool, error) {
	v, ok, err := t.props.Get(ctx, KeyTriggerActive)
	if err != nil {
		return false, err
	}
	return ok && v == "true", nil
}
