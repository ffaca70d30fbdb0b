// Package store is the persistence boundary of the order desk. Every store
// comes in two flavours: process memory, and gorm over MySQL or SQLite.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-glass-dispatch/internal/models"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrVersionConflict = errors.New("record was changed by someone else")
	ErrItemTaken       = errors.New("item is already on a loading slip")
)

// ItemTakenError names the order line that kept a slip from being stored.
// It matches ErrItemTaken.
type ItemTakenError struct {
	OrderID string
	ItemID  int
	SlipID  string
}

func (e *ItemTakenError) Error() string {
	return fmt.Sprintf("item %d of %s is on slip %s", e.ItemID, e.OrderID, e.SlipID)
}

func (e *ItemTakenError) Is(target error) bool {
	return target == ErrItemTaken
}

// OrderPatch mutates a working copy of an order. Returning an error aborts the
// update and leaves the stored order untouched.
type OrderPatch func(o *models.Order) error

// SlipPatch mutates a working copy of a loading slip.
type SlipPatch func(s *models.LoadingSlip) error

// OrderStore keeps orders and their items.
type OrderStore interface {
	List(ctx context.Context) ([]models.Order, error)
	Get(ctx context.Context, id string) (models.Order, error)
	// ListBySource returns the remainder orders split off sourceID, oldest first.
	ListBySource(ctx context.Context, sourceID string) ([]models.Order, error)
	// Add stores a new order. Version starts at 1; zero timestamps are stamped.
	Add(ctx context.Context, o models.Order) (models.Order, error)
	// Update applies patch atomically, bumps Version and advances UpdatedAt.
	Update(ctx context.Context, id string, patch OrderPatch) (models.Order, error)
	// Delete removes the order once check (if any) accepts it.
	Delete(ctx context.Context, id string, check func(models.Order) error) error
}

// SlipStore keeps loading slips. Slips are never deleted.
type SlipStore interface {
	List(ctx context.Context) ([]models.LoadingSlip, error)
	Get(ctx context.Context, id string) (models.LoadingSlip, error)
	// Add stores a new slip. It fails with ErrDuplicateID when the id is used
	// and with an *ItemTakenError when a line already sits on another slip.
	// The line check and the insert are one atomic step.
	Add(ctx context.Context, s models.LoadingSlip) (models.LoadingSlip, error)
	Update(ctx context.Context, id string, patch SlipPatch) (models.LoadingSlip, error)
	// LoadedItems maps each item id of orderID already on a slip to that slip's id.
	LoadedItems(ctx context.Context, orderID string) (map[int]string, error)
}

// UserStore keeps staff accounts.
type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id uint) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	Add(ctx context.Context, u models.User) (models.User, error)
}

// AuditStore keeps the status history of orders and slips.
type AuditStore interface {
	Record(ctx context.Context, entry models.AuditLog) error
	List(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error)
}

// Stores bundles one implementation of each store.
type Stores struct {
	Orders OrderStore
	Slips  SlipStore
	Users  UserStore
	Audit  AuditStore
}

// Clock returns the current time. Tests swap it for a fixed one.
type Clock func() time.Time

// advance returns now, or just past prev when the clock has not moved on.
func advance(prev, now time.Time) time.Time {
	if !now.After(prev) {
		return prev.Add(time.Millisecond)
	}
	return now
}

func prepareOrder(o *models.Order, now time.Time) {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}
	if o.Version == 0 {
		o.Version = 1
	}
	for i := range o.Items {
		o.Items[i].RowID = 0
		o.Items[i].OrderID = o.ID
	}
}

func prepareSlip(s *models.LoadingSlip, now time.Time) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.Version == 0 {
		s.Version = 1
	}
	for i := range s.Groups {
		g := &s.Groups[i]
		g.ID = 0
		g.SlipID = s.ID
		g.Position = i
		for j := range g.Items {
			g.Items[j].RowID = 0
			g.Items[j].GroupID = 0
			g.Items[j].Position = j
			g.Items[j].OrderID = g.OrderID
		}
	}
}
