package store

import (
	"context"
	"sync"
	"time"

	"go-glass-dispatch/internal/models"

	"github.com/google/uuid"
)

// NewMemory returns stores backed by process memory.
func NewMemory(now Clock) Stores {
	if now == nil {
		now = time.Now
	}
	return Stores{
		Orders: &MemoryOrders{now: now, byID: map[string]models.Order{}},
		Slips:  &MemorySlips{now: now, byID: map[string]models.LoadingSlip{}},
		Users:  &MemoryUsers{now: now},
		Audit:  &MemoryAudit{now: now},
	}
}

// --- ORDERS ---

type MemoryOrders struct {
	mu   sync.RWMutex
	now  Clock
	byID map[string]models.Order
	ids  []string // newest first
}

func (s *MemoryOrders) List(ctx context.Context) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Order, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.byID[id].Clone())
	}
	return out, nil
}

func (s *MemoryOrders) Get(ctx context.Context, id string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.byID[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return o.Clone(), nil
}

func (s *MemoryOrders) ListBySource(ctx context.Context, sourceID string) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Order
	for i := len(s.ids) - 1; i >= 0; i-- {
		if o := s.byID[s.ids[i]]; o.SourceOrderID == sourceID {
			out = append(out, o.Clone())
		}
	}
	return out, nil
}

func (s *MemoryOrders) Add(ctx context.Context, o models.Order) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[o.ID]; exists {
		return models.Order{}, ErrDuplicateID
	}
	o = o.Clone()
	prepareOrder(&o, s.now())
	s.byID[o.ID] = o
	s.ids = append([]string{o.ID}, s.ids...)
	return o.Clone(), nil
}

func (s *MemoryOrders) Update(ctx context.Context, id string, patch OrderPatch) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byID[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	next := cur.Clone()
	if err := patch(&next); err != nil {
		return models.Order{}, err
	}
	next.ID = cur.ID
	next.CreatedAt = cur.CreatedAt
	next.Version = cur.Version + 1
	next.UpdatedAt = advance(cur.UpdatedAt, s.now())
	for i := range next.Items {
		next.Items[i].OrderID = next.ID
	}
	s.byID[id] = next
	return next.Clone(), nil
}

func (s *MemoryOrders) Delete(ctx context.Context, id string, check func(models.Order) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	if check != nil {
		if err := check(cur.Clone()); err != nil {
			return err
		}
	}
	delete(s.byID, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return nil
}

// --- LOADING SLIPS ---

type MemorySlips struct {
	mu   sync.RWMutex
	now  Clock
	byID map[string]models.LoadingSlip
	ids  []string // newest first
}

func (s *MemorySlips) List(ctx context.Context) ([]models.LoadingSlip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.LoadingSlip, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.byID[id].Clone())
	}
	return out, nil
}

func (s *MemorySlips) Get(ctx context.Context, id string) (models.LoadingSlip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slip, ok := s.byID[id]
	if !ok {
		return models.LoadingSlip{}, ErrNotFound
	}
	return slip.Clone(), nil
}

func (s *MemorySlips) Add(ctx context.Context, slip models.LoadingSlip) (models.LoadingSlip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[slip.ID]; exists {
		return models.LoadingSlip{}, ErrDuplicateID
	}
	for _, g := range slip.Groups {
		loaded := s.loaded(g.OrderID)
		for _, it := range g.Items {
			if holder, ok := loaded[it.ItemID]; ok {
				return models.LoadingSlip{}, &ItemTakenError{OrderID: g.OrderID, ItemID: it.ItemID, SlipID: holder}
			}
		}
	}
	slip = slip.Clone()
	prepareSlip(&slip, s.now())
	s.byID[slip.ID] = slip
	s.ids = append([]string{slip.ID}, s.ids...)
	return slip.Clone(), nil
}

func (s *MemorySlips) Update(ctx context.Context, id string, patch SlipPatch) (models.LoadingSlip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byID[id]
	if !ok {
		return models.LoadingSlip{}, ErrNotFound
	}
	next := cur.Clone()
	if err := patch(&next); err != nil {
		return models.LoadingSlip{}, err
	}
	prev := cur.CreatedAt
	if cur.UpdatedAt != nil {
		prev = *cur.UpdatedAt
	}
	stamped := advance(prev, s.now())
	next.ID = cur.ID
	next.CreatedAt = cur.CreatedAt
	next.Groups = cur.Clone().Groups
	next.Version = cur.Version + 1
	next.UpdatedAt = &stamped
	s.byID[id] = next
	return next.Clone(), nil
}

func (s *MemorySlips) LoadedItems(ctx context.Context, orderID string) (map[int]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded(orderID), nil
}

// loaded maps the item ids of orderID on stored slips to the slip id. Callers
// hold s.mu.
func (s *MemorySlips) loaded(orderID string) map[int]string {
	loaded := map[int]string{}
	for _, slip := range s.byID {
		for _, g := range slip.Groups {
			if g.OrderID != orderID {
				continue
			}
			for _, it := range g.Items {
				loaded[it.ItemID] = slip.ID
			}
		}
	}
	return loaded
}

// --- USERS ---

type MemoryUsers struct {
	mu     sync.RWMutex
	now    Clock
	users  []models.User
	nextID uint
}

func (s *MemoryUsers) List(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.User(nil), s.users...), nil
}

func (s *MemoryUsers) Get(ctx context.Context, id uint) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *MemoryUsers) FindByUsername(ctx context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *MemoryUsers) Add(ctx context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return models.User{}, ErrDuplicateID
		}
	}
	s.nextID++
	u.ID = s.nextID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users = append(s.users, u)
	return u, nil
}

// --- AUDIT ---

type MemoryAudit struct {
	mu      sync.RWMutex
	now     Clock
	entries []models.AuditLog
}

func (s *MemoryAudit) Record(ctx context.Context, entry models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *MemoryAudit) List(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.AuditLog
	for _, e := range s.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}
