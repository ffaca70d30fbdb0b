package handlers

import (
	"context"
	"sync"
	"time"

	"go-glass-dispatch/internal/models"
	"go-glass-dispatch/internal/workflow"

	"github.com/google/uuid"
)

// draftTTL is how long an untouched draft survives.
const draftTTL = 12 * time.Hour

// Draft is one operator's loading slip under construction.
type Draft struct {
	mu      sync.Mutex
	ID      string
	OwnerID uint
	builder *workflow.Builder
	touched time.Time
}

// DraftRegistry keeps the server-side slip drafts, keyed by uuid.
type DraftRegistry struct {
	mu     sync.Mutex
	svc    *workflow.Service
	drafts map[string]*Draft
	now    func() time.Time
}

func NewDraftRegistry(svc *workflow.Service) *DraftRegistry {
	return &DraftRegistry{svc: svc, drafts: map[string]*Draft{}, now: time.Now}
}

// Open starts a new draft for owner.
func (r *DraftRegistry) Open(owner uint) *Draft {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()

	d := &Draft{
		ID:      uuid.NewString(),
		OwnerID: owner,
		builder: r.svc.NewBuilder(),
		touched: r.now(),
	}
	r.drafts[d.ID] = d
	return d
}

// Get returns the draft, or false when it does not exist or has expired.
func (r *DraftRegistry) Get(id string) (*Draft, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()

	d, ok := r.drafts[id]
	if ok {
		d.touched = r.now()
	}
	return d, ok
}

// Close discards a draft.
func (r *DraftRegistry) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.drafts, id)
}

// sweep drops expired drafts. Callers hold r.mu.
func (r *DraftRegistry) sweep() {
	cutoff := r.now().Add(-draftTTL)
	for id, d := range r.drafts {
		if d.touched.Before(cutoff) {
			delete(r.drafts, id)
		}
	}
}

// With runs fn on the draft's builder while holding the draft's lock.
func (d *Draft) With(fn func(b *workflow.Builder) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.builder)
}

// DraftView is the JSON shape of a draft.
type DraftView struct {
	ID        string               `json:"draft_id"`
	SlipNo    string               `json:"loading_slip_no"`
	Staged    []StagedOrder        `json:"staged_orders"`
	Selection []workflow.Selection `json:"selected_items"`
}

// StagedOrder is a staged order with the lines that can no longer be picked,
// mapped to the slip or remainder order that took them.
type StagedOrder struct {
	OrderID      string             `json:"order_id"`
	CustomerName string             `json:"customer_name"`
	Items        []models.OrderItem `json:"items"`
	Unavailable  map[int]string     `json:"unavailable"`
}

func (d *Draft) view(ctx context.Context, b *workflow.Builder) (DraftView, error) {
	v := DraftView{
		ID:        d.ID,
		SlipNo:    b.SlipNo(),
		Staged:    []StagedOrder{},
		Selection: b.Selection(),
	}
	for _, o := range b.Staged() {
		taken, err := b.Unavailable(ctx, o.ID)
		if err != nil {
			return DraftView{}, err
		}
		v.Staged = append(v.Staged, StagedOrder{
			OrderID: o.ID, CustomerName: o.CustomerName, Items: o.Items, Unavailable: taken,
		})
	}
	if v.Selection == nil {
		v.Selection = []workflow.Selection{}
	}
	return v, nil
}
