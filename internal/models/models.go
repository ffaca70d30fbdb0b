package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User - The person interacting with the system
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"` // Never return this in JSON
	Name         string    `gorm:"size:100" json:"name"`
	Email        string    `gorm:"size:120" json:"email"`
	Role         string    `gorm:"size:20" json:"role"` // 'admin', 'marketing', 'finance', 'dispatch', 'backoffice'
	Status       string    `gorm:"size:20" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	UserActive   = "active"
	UserDisabled = "disabled"
)

// Order - A customer purchase request raised by a marketing executive
type Order struct {
	ID                 string          `gorm:"primaryKey;size:64" json:"id"`
	Date               string          `gorm:"size:10" json:"date"` // YYYY-MM-DD
	MarketingExecutive string          `gorm:"size:100" json:"marketing_executive"`
	CustomerName       string          `gorm:"size:150" json:"customer_name"`
	CustomerAddress    string          `gorm:"size:255" json:"customer_address"`
	CustomerPhone      string          `gorm:"size:20" json:"customer_phone"`
	Items              []OrderItem     `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(14,2)" json:"total_amount"`
	Status             OrderStatus     `gorm:"size:20;index" json:"status"`
	Remarks            string          `gorm:"size:500" json:"remarks"`
	SourceOrderID      string          `gorm:"size:64;index" json:"source_order_id,omitempty"` // Set on remainder orders

	// Audit fields, each stamped only by its own transition
	ApprovedBy  string     `gorm:"size:100" json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	HoldReason  string     `gorm:"size:500" json:"hold_reason,omitempty"`
	CancelledBy string     `gorm:"size:100" json:"cancelled_by,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	Version   int       `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// OrderItem - One line of an order. ItemID is unique within its order only.
type OrderItem struct {
	RowID        uint            `gorm:"primaryKey" json:"-"`
	OrderID      string          `gorm:"size:64;index" json:"-"`
	ItemID       int             `json:"id"`
	Thickness    string          `gorm:"size:20" json:"thickness"`
	ItemName     string          `gorm:"size:60" json:"item_name"`
	BrandName    string          `gorm:"size:60" json:"brand_name"`
	Size1        string          `gorm:"size:20" json:"size1"`
	Size2        string          `gorm:"size:20" json:"size2"`
	Quantity     int             `json:"quantity"`
	RateGiven    decimal.Decimal `gorm:"type:decimal(12,2)" json:"rate_given"`
	RateFromList decimal.Decimal `gorm:"type:decimal(12,2)" json:"rate_from_list"`
	Amount       decimal.Decimal `gorm:"type:decimal(14,2)" json:"amount"` // Quantity * RateGiven
}

// Recalculate refreshes Amount from Quantity and RateGiven.
func (it *OrderItem) Recalculate() {
	it.Amount = it.RateGiven.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Recalculate refreshes every item amount and the order total.
func (o *Order) Recalculate() {
	total := decimal.Zero
	for i := range o.Items {
		o.Items[i].Recalculate()
		total = total.Add(o.Items[i].Amount)
	}
	o.TotalAmount = total
}

// FindItem returns the item with the given id, if present.
func (o *Order) FindItem(itemID int) (OrderItem, bool) {
	for _, it := range o.Items {
		if it.ItemID == itemID {
			return it, true
		}
	}
	return OrderItem{}, false
}

// Clone returns a copy that shares no slices with o.
func (o Order) Clone() Order {
	c := o
	c.Items = append([]OrderItem(nil), o.Items...)
	if o.ApprovedAt != nil {
		t := *o.ApprovedAt
		c.ApprovedAt = &t
	}
	if o.CancelledAt != nil {
		t := *o.CancelledAt
		c.CancelledAt = &t
	}
	return c
}

// LoadingSlip - A dispatch manifest for one vehicle trip
type LoadingSlip struct {
	ID          string           `gorm:"primaryKey;size:32" json:"id"`
	SlipNo      string           `gorm:"size:32;index" json:"loading_slip_no"`
	Date        string           `gorm:"size:10" json:"date"`
	VehicleNo   string           `gorm:"size:30" json:"vehicle_no"`
	GatePassNo  string           `gorm:"size:30" json:"gate_pass_no"`
	Groups      []SlipOrderGroup `gorm:"foreignKey:SlipID;references:ID;constraint:OnDelete:CASCADE" json:"orders"`
	Status      SlipStatus       `gorm:"size:20;index" json:"status"`
	ConfirmedBy string           `gorm:"size:100" json:"confirmed_by"`
	ConfirmedAt *time.Time       `json:"confirmed_at,omitempty"`
	InvoiceNo   string           `gorm:"size:40" json:"invoice_no"`
	UpdatedBy   string           `gorm:"size:100" json:"updated_by,omitempty"`
	UpdatedAt   *time.Time       `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
	Version     int              `gorm:"not null;default:1" json:"version"`
	CreatedAt   time.Time        `gorm:"autoCreateTime:false" json:"created_at"`
}

// SlipOrderGroup - The items drawn from one source order, with the customer
// details copied at selection time.
type SlipOrderGroup struct {
	ID              uint       `gorm:"primaryKey" json:"-"`
	SlipID          string     `gorm:"size:32;index" json:"-"`
	Position        int        `json:"-"`
	OrderID         string     `gorm:"size:64;index" json:"order_id"`
	CustomerName    string     `gorm:"size:150" json:"customer_name"`
	CustomerAddress string     `gorm:"size:255" json:"customer_address"`
	CustomerPhone   string     `gorm:"size:20" json:"customer_phone"`
	OrderBy         string     `gorm:"size:100" json:"order_by"`
	Items           []SlipItem `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"items"`
}

// SlipItem - A copy of an order line placed on a slip
type SlipItem struct {
	RowID        uint            `gorm:"primaryKey" json:"-"`
	GroupID      uint            `gorm:"index" json:"-"`
	Position     int             `json:"-"`
	OrderID      string          `gorm:"size:64;uniqueIndex:idx_slip_items_line" json:"order_id"` // An order line rides on one slip only
	ItemID       int             `gorm:"uniqueIndex:idx_slip_items_line" json:"item_id"`
	Thickness    string          `gorm:"size:20" json:"thickness"`
	ItemName     string          `gorm:"size:60" json:"item_name"`
	BrandName    string          `gorm:"size:60" json:"brand_name"`
	Size1        string          `gorm:"size:20" json:"size1"`
	Size2        string          `gorm:"size:20" json:"size2"`
	Quantity     int             `json:"quantity"`
	RateGiven    decimal.Decimal `gorm:"type:decimal(12,2)" json:"rate_given"`
	RateFromList decimal.Decimal `gorm:"type:decimal(12,2)" json:"rate_from_list"`
	Amount       decimal.Decimal `gorm:"type:decimal(14,2)" json:"amount"`
	CDStatus     string          `gorm:"size:20" json:"cd_status"`
	PaymentTerms string          `gorm:"size:30" json:"payment_terms"`
	InvoiceNo    string          `gorm:"size:40" json:"invoice_no"`
	RackLocation string          `gorm:"size:20" json:"rack_location"`
}

// Clone returns a copy that shares no slices with s.
func (s LoadingSlip) Clone() LoadingSlip {
	c := s
	c.Groups = make([]SlipOrderGroup, len(s.Groups))
	for i, g := range s.Groups {
		g.Items = append([]SlipItem(nil), g.Items...)
		c.Groups[i] = g
	}
	if s.ConfirmedAt != nil {
		t := *s.ConfirmedAt
		c.ConfirmedAt = &t
	}
	if s.UpdatedAt != nil {
		t := *s.UpdatedAt
		c.UpdatedAt = &t
	}
	return c
}

// ItemCount is the number of lines across all groups.
func (s LoadingSlip) ItemCount() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Items)
	}
	return n
}

// AuditLog - One recorded state change of an order or slip
type AuditLog struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	EntityType string    `gorm:"size:20;index:idx_audit_entity" json:"entity_type"` // 'order', 'loading_slip'
	EntityID   string    `gorm:"size:64;index:idx_audit_entity" json:"entity_id"`
	Action     string    `gorm:"size:30" json:"action"`
	FromStatus string    `gorm:"size:20" json:"from_status"`
	ToStatus   string    `gorm:"size:20" json:"to_status"`
	Actor      string    `gorm:"size:100" json:"actor"`
	Note       string    `gorm:"size:500" json:"note"`
	CreatedAt  time.Time `gorm:"autoCreateTime:false" json:"created_at"`
}

const (
	EntityOrder = "order"
	EntitySlip  = "loading_slip"
)
