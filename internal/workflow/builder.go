package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-glass-dispatch/internal/models"
	"go-glass-dispatch/internal/reference"
	"go-glass-dispatch/internal/store"
)

// SlipDetails are the dispatch-only fields attached to a selected item.
type SlipDetails struct {
	CDStatus     string
	PaymentTerms string
	InvoiceNo    string
	RackLocation string
}

// Selection is one picked item, copied by value together with its order's
// customer details so the slip does not depend on later order edits.
type Selection struct {
	Item            models.SlipItem `json:"item"`
	CustomerName    string          `json:"customer_name"`
	CustomerAddress string          `json:"customer_address"`
	CustomerPhone   string          `json:"customer_phone"`
	OrderBy         string          `json:"order_by"`
}

// SlipHeader is the part of a slip the operator types in at submit time.
type SlipHeader struct {
	Date       string
	VehicleNo  string
	GatePassNo string
}

// Builder stages approved orders and collects the items that go on one
// loading slip. A Builder belongs to a single operator and is not safe for
// concurrent use.
type Builder struct {
	svc       *Service
	slipNo    string
	staged    []models.Order
	selection []Selection
}

// NewBuilder starts an empty slip with a fresh slip number.
func (s *Service) NewBuilder() *Builder {
	b := &Builder{svc: s}
	b.Reset()
	return b
}

// SlipNo is the number the next submitted slip will carry.
func (b *Builder) SlipNo() string { return b.slipNo }

// Staged returns the staged orders in staging order.
func (b *Builder) Staged() []models.Order {
	out := make([]models.Order, len(b.staged))
	for i, o := range b.staged {
		out[i] = o.Clone()
	}
	return out
}

// Selection returns the picked items in the order they were picked.
func (b *Builder) Selection() []Selection {
	return append([]Selection(nil), b.selection...)
}

// Unavailable maps the lines of orderID that can no longer be picked to the
// slip or remainder order holding them.
func (b *Builder) Unavailable(ctx context.Context, orderID string) (map[int]string, error) {
	return b.svc.unavailableItems(ctx, orderID)
}

// Reset drops everything staged and picked and draws a new slip number.
func (b *Builder) Reset() {
	b.staged = nil
	b.selection = nil
	b.slipNo = b.svc.ids.SlipNo()
}

// StageOrder adds an approved order to the slip. It reports false, without
// error, when the order is already staged or is not approved.
func (b *Builder) StageOrder(ctx context.Context, orderID string) (bool, error) {
	if b.stagedIndex(orderID) >= 0 {
		return false, nil
	}
	o, err := b.svc.GetOrder(ctx, orderID)
	if err != nil {
		return false, err
	}
	if !o.Status.CanLoad() {
		return false, nil
	}
	b.staged = append(b.staged, o)
	return true, nil
}

// UnstageOrder removes the order and every item picked from it.
func (b *Builder) UnstageOrder(orderID string) {
	if i := b.stagedIndex(orderID); i >= 0 {
		b.staged = append(b.staged[:i], b.staged[i+1:]...)
	}
	kept := b.selection[:0]
	for _, sel := range b.selection {
		if sel.Item.OrderID != orderID {
			kept = append(kept, sel)
		}
	}
	b.selection = kept
}

// ToggleItem picks or unpicks one item of a staged order. Picking an item
// that is already picked refreshes its slip details.
func (b *Builder) ToggleItem(ctx context.Context, orderID string, itemID int, selected bool, details SlipDetails) error {
	idx := b.selectedIndex(orderID, itemID)
	if !selected {
		if idx >= 0 {
			b.selection = append(b.selection[:idx], b.selection[idx+1:]...)
		}
		return nil
	}

	if err := validateDetails(details); err != nil {
		return err
	}
	if b.stagedIndex(orderID) < 0 {
		return invalid(ErrNotStaged, "order %s", orderID)
	}

	// 1. Re-read the order: it must still be approved
	o, err := b.svc.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !o.Status.CanLoad() {
		return invalid(ErrOrderNotApproved, "order %s is %s", o.ID, o.Status)
	}
	item, ok := o.FindItem(itemID)
	if !ok {
		return &NotFoundError{Kind: "item", ID: fmt.Sprintf("%s/%d", orderID, itemID)}
	}

	// 2. The same line may not leave twice
	if err := b.svc.checkAvailable(ctx, orderID, itemID); err != nil {
		return err
	}

	if idx >= 0 {
		applyDetails(&b.selection[idx].Item, details)
		return nil
	}

	// 3. Copy the item and the customer onto the selection
	sel := Selection{
		Item:            slipItemFrom(orderID, item),
		CustomerName:    o.CustomerName,
		CustomerAddress: o.CustomerAddress,
		CustomerPhone:   o.CustomerPhone,
		OrderBy:         o.MarketingExecutive,
	}
	applyDetails(&sel.Item, details)
	b.selection = append(b.selection, sel)
	return nil
}

// CreateRemainderOrder stores a new approved order holding the items of the
// staged order orderID that are not picked on this slip, not already loaded
// and not moved to an earlier remainder.
func (b *Builder) CreateRemainderOrder(ctx context.Context, actor Actor, orderID string) (models.Order, error) {
	if b.stagedIndex(orderID) < 0 {
		return models.Order{}, invalid(ErrNotStaged, "order %s", orderID)
	}
	o, err := b.svc.GetOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if !o.Status.CanLoad() {
		return models.Order{}, invalid(ErrOrderNotApproved, "order %s is %s", o.ID, o.Status)
	}

	b.svc.claims.Lock()
	defer b.svc.claims.Unlock()

	taken, err := b.svc.unavailableItems(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	for _, sel := range b.selection {
		if sel.Item.OrderID == orderID {
			taken[sel.Item.ItemID] = "selection"
		}
	}

	var remaining []models.OrderItem
	for _, it := range o.Items {
		if _, gone := taken[it.ItemID]; !gone {
			remaining = append(remaining, it)
		}
	}
	if len(remaining) == 0 {
		return models.Order{}, invalid(ErrNothingRemaining, "order %s", orderID)
	}

	now := b.svc.now()
	r := o.Clone()
	r.ID = RemainderID(o.ID, now)
	r.Items = remaining
	r.Status = models.OrderApproved
	r.Remarks = "Remaining items from " + o.ID
	r.SourceOrderID = o.ID
	r.HoldReason = ""
	r.CancelledBy = ""
	r.CancelledAt = nil
	r.Version = 0
	r.CreatedAt = now
	r.UpdatedAt = now
	r.Recalculate()

	added, err := b.svc.orders.Add(ctx, r)
	if err != nil {
		return models.Order{}, err
	}
	b.svc.record(ctx, models.AuditLog{
		EntityType: models.EntityOrder, EntityID: added.ID, Action: "create_remainder",
		ToStatus: string(added.Status), Actor: actor.Name, Note: added.Remarks,
	})
	return added, nil
}

// Submit turns the selection into a confirmed loading slip, grouped by source
// order in the order each order's first item was picked. The builder is reset
// on success and untouched on failure.
func (b *Builder) Submit(ctx context.Context, actor Actor, h SlipHeader) (models.LoadingSlip, error) {
	if len(b.selection) == 0 {
		return models.LoadingSlip{}, &ValidationError{Err: ErrEmptySelection}
	}
	h.VehicleNo = strings.TrimSpace(h.VehicleNo)
	if h.VehicleNo == "" {
		return models.LoadingSlip{}, invalid(ErrMissingField, "vehicle_no")
	}
	if h.Date == "" {
		h.Date = b.svc.today()
	} else if !validDate(h.Date) {
		return models.LoadingSlip{}, invalid(ErrInvalidField, "date %q must be YYYY-MM-DD", h.Date)
	}

	b.svc.claims.Lock()
	defer b.svc.claims.Unlock()

	// 1. Re-check every line against slips and remainders stored since it was picked
	if err := b.svc.checkSelection(ctx, b.selection); err != nil {
		return models.LoadingSlip{}, err
	}

	// 2. Group by order, first-picked first
	groups := GroupSelection(b.selection)

	// 3. Store the slip
	now := b.svc.now()
	slip := models.LoadingSlip{
		SlipNo:      b.slipNo,
		Date:        h.Date,
		VehicleNo:   h.VehicleNo,
		GatePassNo:  strings.TrimSpace(h.GatePassNo),
		Groups:      groups,
		Status:      models.SlipConfirmed,
		ConfirmedBy: actor.Name,
		ConfirmedAt: &now,
		InvoiceNo:   "",
		CreatedAt:   now,
	}
	var added models.LoadingSlip
	for attempt := 0; ; attempt++ {
		slip.ID = b.svc.ids.SlipID()
		var err error
		added, err = b.svc.slips.Add(ctx, slip)
		if isDuplicate(err) && attempt+1 < idAttempts {
			continue
		}
		var taken *store.ItemTakenError
		if errors.As(err, &taken) {
			return models.LoadingSlip{}, invalid(ErrItemAlreadyLoaded, "%s", taken)
		}
		if err != nil {
			return models.LoadingSlip{}, err
		}
		break
	}

	b.svc.record(ctx, models.AuditLog{
		EntityType: models.EntitySlip, EntityID: added.ID, Action: "submit",
		ToStatus: string(added.Status), Actor: actor.Name,
		Note: fmt.Sprintf("%d items from %d orders", added.ItemCount(), len(added.Groups)),
	})
	b.Reset()
	return added, nil
}

// GroupSelection folds picked items into one group per source order. Groups
// follow the order of each order's first pick; items keep pick order.
func GroupSelection(selection []Selection) []models.SlipOrderGroup {
	var groups []models.SlipOrderGroup
	index := map[string]int{}
	for _, sel := range selection {
		i, ok := index[sel.Item.OrderID]
		if !ok {
			i = len(groups)
			index[sel.Item.OrderID] = i
			groups = append(groups, models.SlipOrderGroup{
				OrderID:         sel.Item.OrderID,
				CustomerName:    sel.CustomerName,
				CustomerAddress: sel.CustomerAddress,
				CustomerPhone:   sel.CustomerPhone,
				OrderBy:         sel.OrderBy,
			})
		}
		groups[i].Items = append(groups[i].Items, sel.Item)
	}
	return groups
}

func (b *Builder) stagedIndex(orderID string) int {
	for i, o := range b.staged {
		if o.ID == orderID {
			return i
		}
	}
	return -1
}

func (b *Builder) selectedIndex(orderID string, itemID int) int {
	for i, sel := range b.selection {
		if sel.Item.OrderID == orderID && sel.Item.ItemID == itemID {
			return i
		}
	}
	return -1
}

// unavailableItems maps the item ids of orderID that can no longer be picked
// to where they went: a slip id, or a remainder order id.
func (s *Service) unavailableItems(ctx context.Context, orderID string) (map[int]string, error) {
	taken, err := s.slips.LoadedItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	split, err := s.orders.ListBySource(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for _, o := range split {
		for _, it := range o.Items {
			if _, ok := taken[it.ItemID]; !ok {
				taken[it.ItemID] = o.ID
			}
		}
	}
	return taken, nil
}

func (s *Service) checkAvailable(ctx context.Context, orderID string, itemID int) error {
	taken, err := s.unavailableItems(ctx, orderID)
	if err != nil {
		return err
	}
	return takenError(orderID, itemID, taken)
}

// checkSelection reads the unavailable lines once per order on the selection.
func (s *Service) checkSelection(ctx context.Context, selection []Selection) error {
	byOrder := map[string]map[int]string{}
	for _, sel := range selection {
		orderID := sel.Item.OrderID
		taken, ok := byOrder[orderID]
		if !ok {
			var err error
			if taken, err = s.unavailableItems(ctx, orderID); err != nil {
				return err
			}
			byOrder[orderID] = taken
		}
		if err := takenError(orderID, sel.Item.ItemID, taken); err != nil {
			return err
		}
	}
	return nil
}

func takenError(orderID string, itemID int, taken map[int]string) error {
	where, gone := taken[itemID]
	if !gone {
		return nil
	}
	if strings.HasPrefix(where, orderID+"-R") {
		return invalid(ErrItemMoved, "item %d of %s is on order %s", itemID, orderID, where)
	}
	return invalid(ErrItemAlreadyLoaded, "item %d of %s is on slip %s", itemID, orderID, where)
}

func validateDetails(d SlipDetails) error {
	if d.CDStatus != "" && !reference.IsCDStatus(d.CDStatus) {
		return invalid(ErrInvalidField, "cd_status %q", d.CDStatus)
	}
	if d.PaymentTerms != "" && !reference.IsPaymentTerm(d.PaymentTerms) {
		return invalid(ErrInvalidField, "payment_terms %q", d.PaymentTerms)
	}
	return nil
}

func applyDetails(it *models.SlipItem, d SlipDetails) {
	it.CDStatus = d.CDStatus
	it.PaymentTerms = d.PaymentTerms
	it.InvoiceNo = d.InvoiceNo
	it.RackLocation = d.RackLocation
}

func slipItemFrom(orderID string, it models.OrderItem) models.SlipItem {
	return models.SlipItem{
		OrderID:      orderID,
		ItemID:       it.ItemID,
		Thickness:    it.Thickness,
		ItemName:     it.ItemName,
		BrandName:    it.BrandName,
		Size1:        it.Size1,
		Size2:        it.Size2,
		Quantity:     it.Quantity,
		RateGiven:    it.RateGiven,
		RateFromList: it.RateFromList,
		Amount:       it.Amount,
	}
}
