package live

import (
	"context"
	"log"

	"tally-web/internal/effect"
	"tally-web/internal/model"
	"tally-web/internal/store"
)

// Controller owns the canonical ordered collection for one session. It
// consumes commit notifications from forms and answers each one with at
// most one declarative effect closing the form that triggered the change.
type Controller struct {
	store *store.Store
	items []model.Expense
	logf  func(format string, args ...any)
}

func NewController(st *store.Store) *Controller {
	return &Controller{store: st, logf: log.Printf}
}

// Load replaces the collection with the store's canonical order.
func (c *Controller) Load(ctx context.Context) error {
	items, err := c.store.List(ctx)
	if err != nil {
		return err
	}
	c.items = items
	return nil
}

// Items returns the collection in display order. Callers must not mutate it.
func (c *Controller) Items() []model.Expense {
	return c.items
}

// Apply folds one notification into the collection and returns the effect
// that closes the originating form. ok is false when the referenced row is
// gone from storage (deleted concurrently); that is a logged no-op on the
// collection and dispatches nothing.
func (c *Controller) Apply(ctx context.Context, n Notification) (eff effect.Effect, ok bool) {
	switch n.Kind {
	case NotifyCreated:
		// Re-list instead of appending: the store owns ordering.
		if err := c.Load(ctx); err != nil {
			c.logf("live: reload after create: %v", err)
			return effect.Effect{}, false
		}
		if c.indexOf(n.Expense.ID) < 0 {
			c.logf("live: created expense %d not in listing, skipping effect", n.Expense.ID)
			return effect.Effect{}, false
		}
		return effect.Effect{Selector: EffectTarget(FormCreate), Action: effect.ActionHideForm}, true

	case NotifyUpdated:
		i := c.indexOf(n.Expense.ID)
		if i < 0 {
			c.logf("live: updated expense %d no longer listed, skipping effect", n.Expense.ID)
			return effect.Effect{}, false
		}
		// In-place replacement preserves position.
		c.items[i] = n.Expense
		return effect.Effect{Selector: EffectTarget(FormID(n.Expense.ID)), Action: effect.ActionHideForm}, true

	default:
		c.logf("live: unknown notification kind %d", n.Kind)
		return effect.Effect{}, false
	}
}

func (c *Controller) indexOf(id int64) int {
	for i, e := range c.items {
		if e.ID == id {
			return i
		}
	}
	return -1
}
