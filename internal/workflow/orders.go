package workflow

import (
	"context"
	"strings"

	"go-glass-dispatch/internal/models"
	"go-glass-dispatch/internal/reference"
)

// OrderDraft is what marketing fills in when raising or editing an order.
type OrderDraft struct {
	Date               string
	MarketingExecutive string
	CustomerName       string
	CustomerAddress    string
	CustomerPhone      string
	Items              []models.OrderItem
	Remarks            string
}

// CreateOrder validates the draft and stores it as a pending order.
func (s *Service) CreateOrder(ctx context.Context, actor Actor, d OrderDraft) (models.Order, error) {
	items, err := s.prepareDraft(&d, actor)
	if err != nil {
		return models.Order{}, err
	}

	now := s.now()
	o := models.Order{
		Date:               d.Date,
		MarketingExecutive: d.MarketingExecutive,
		CustomerName:       d.CustomerName,
		CustomerAddress:    d.CustomerAddress,
		CustomerPhone:      d.CustomerPhone,
		Items:              items,
		Status:             models.OrderPending,
		Remarks:            d.Remarks,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	o.Recalculate()

	for attempt := 0; ; attempt++ {
		o.ID = s.ids.OrderID()
		added, err := s.orders.Add(ctx, o)
		if isDuplicate(err) && attempt+1 < idAttempts {
			continue
		}
		if err != nil {
			return models.Order{}, err
		}
		s.record(ctx, models.AuditLog{
			EntityType: models.EntityOrder, EntityID: added.ID, Action: "create",
			ToStatus: string(added.Status), Actor: actor.Name,
		})
		return added, nil
	}
}

// EditOrder replaces the contents of a pending order. Status and audit
// fields are left as they are.
func (s *Service) EditOrder(ctx context.Context, actor Actor, id string, version int, d OrderDraft) (models.Order, error) {
	items, err := s.prepareDraft(&d, actor)
	if err != nil {
		return models.Order{}, err
	}

	updated, err := s.orders.Update(ctx, id, func(o *models.Order) error {
		if err := checkVersion(o.Version, version); err != nil {
			return err
		}
		if !o.Status.CanEdit() {
			return invalid(ErrNotEditable, "order %s is %s", o.ID, o.Status)
		}
		o.Date = d.Date
		o.MarketingExecutive = d.MarketingExecutive
		o.CustomerName = d.CustomerName
		o.CustomerAddress = d.CustomerAddress
		o.CustomerPhone = d.CustomerPhone
		o.Items = items
		o.Remarks = d.Remarks
		o.Recalculate()
		return nil
	})
	if err != nil {
		return models.Order{}, notFound("order", id, err)
	}
	return updated, nil
}

// DeleteOrder removes an order that has not left pending.
func (s *Service) DeleteOrder(ctx context.Context, actor Actor, id string) error {
	err := s.orders.Delete(ctx, id, func(o models.Order) error {
		if !o.Status.CanDelete() {
			return invalid(ErrNotEditable, "order %s is %s and cannot be deleted", o.ID, o.Status)
		}
		return nil
	})
	if err != nil {
		return notFound("order", id, err)
	}
	s.record(ctx, models.AuditLog{
		EntityType: models.EntityOrder, EntityID: id, Action: "delete",
		FromStatus: string(models.OrderPending), Actor: actor.Name,
	})
	return nil
}

// GetOrder fetches one order.
func (s *Service) GetOrder(ctx context.Context, id string) (models.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return models.Order{}, notFound("order", id, err)
	}
	return o, nil
}

// ListOrders returns every order, or only those in status when it is set.
func (s *Service) ListOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	if status != "" && !status.IsValid() {
		return nil, invalid(ErrInvalidStatus, "%q", status)
	}
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return orders, nil
	}
	filtered := orders[:0]
	for _, o := range orders {
		if o.Status == status {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

// prepareDraft fills defaults, validates the draft and returns its items
// with ids assigned and amounts computed.
func (s *Service) prepareDraft(d *OrderDraft, actor Actor) ([]models.OrderItem, error) {
	d.CustomerName = strings.TrimSpace(d.CustomerName)
	if d.CustomerName == "" {
		return nil, invalid(ErrMissingField, "customer_name")
	}
	if d.MarketingExecutive == "" {
		d.MarketingExecutive = actor.Name
	}
	if d.Date == "" {
		d.Date = s.today()
	} else if !validDate(d.Date) {
		return nil, invalid(ErrInvalidField, "date %q must be YYYY-MM-DD", d.Date)
	}
	if len(d.Items) == 0 {
		return nil, &ValidationError{Err: ErrEmptyItems}
	}

	items := make([]models.OrderItem, len(d.Items))
	copy(items, d.Items)

	// 1. Validate each line
	maxID := 0
	for i, it := range items {
		if it.Quantity <= 0 {
			return nil, invalid(ErrInvalidItem, "line %d: quantity must be positive", i+1)
		}
		if it.RateGiven.IsNegative() || it.RateFromList.IsNegative() {
			return nil, invalid(ErrInvalidItem, "line %d: rates cannot be negative", i+1)
		}
		if it.ItemName != "" && !reference.IsItem(it.ItemName) {
			return nil, invalid(ErrInvalidItem, "line %d: unknown item %q", i+1, it.ItemName)
		}
		if it.BrandName != "" && !reference.IsBrand(it.BrandName) {
			return nil, invalid(ErrInvalidItem, "line %d: unknown brand %q", i+1, it.BrandName)
		}
		if it.Thickness != "" && !reference.IsThickness(it.Thickness) {
			return nil, invalid(ErrInvalidItem, "line %d: unknown thickness %q", i+1, it.Thickness)
		}
		if it.ItemID < 0 {
			return nil, invalid(ErrInvalidItem, "line %d: negative item id", i+1)
		}
		if it.ItemID > maxID {
			maxID = it.ItemID
		}
	}

	// 2. Number the lines that came without an id, and reject repeats
	seen := map[int]bool{}
	for i := range items {
		if items[i].ItemID == 0 {
			maxID++
			items[i].ItemID = maxID
		}
		if seen[items[i].ItemID] {
			return nil, invalid(ErrInvalidItem, "duplicate item id %d", items[i].ItemID)
		}
		seen[items[i].ItemID] = true
		items[i].RowID = 0
		items[i].Recalculate()
	}
	return items, nil
}
