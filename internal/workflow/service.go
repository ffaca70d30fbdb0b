// Package workflow moves orders and loading slips through their lifecycles:
// order entry, finance approval, slip building and back-office confirmation.
//
// The workflow performs no role checks. Callers gate access before calling in.
package workflow

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"go-glass-dispatch/internal/models"
	"go-glass-dispatch/internal/store"
)

// Actor is the signed-in user on whose behalf an operation runs.
type Actor struct {
	ID   uint
	Name string
	Role string
}

// Service holds the stores the workflows read and write.
type Service struct {
	orders store.OrderStore
	slips  store.SlipStore
	audit  store.AuditStore
	now    store.Clock
	ids    *IDGenerator

	// claims is held from the availability check of a line to the write
	// that takes it, by Submit and CreateRemainderOrder.
	claims sync.Mutex
}

// Option tweaks a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now store.Clock) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the default document number generator.
func WithIDGenerator(g *IDGenerator) Option {
	return func(s *Service) { s.ids = g }
}

func NewService(stores store.Stores, opts ...Option) *Service {
	s := &Service{
		orders: stores.Orders,
		slips:  stores.Slips,
		audit:  stores.Audit,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = NewIDGenerator(s.now, uint64(time.Now().UnixNano()))
	}
	return s
}

// idAttempts bounds retries when a generated document number is taken.
const idAttempts = 3

// record writes an audit row. The change it describes has already been
// committed, so a failure here is logged rather than returned.
func (s *Service) record(ctx context.Context, entry models.AuditLog) {
	if s.audit == nil {
		return
	}
	entry.CreatedAt = s.now()
	if err := s.audit.Record(ctx, entry); err != nil {
		log.Printf("audit: failed to record %s %s %s: %v", entry.EntityType, entry.EntityID, entry.Action, err)
	}
}

// History returns the recorded status changes of an order or slip.
func (s *Service) History(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error) {
	if s.audit == nil {
		return nil, nil
	}
	return s.audit.List(ctx, entityType, entityID)
}

func (s *Service) today() string {
	return s.now().Format(dateLayout)
}

const dateLayout = "2006-01-02"

func validDate(v string) bool {
	_, err := time.Parse(dateLayout, v)
	return err == nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, store.ErrDuplicateID)
}
