package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatusPredicates(t *testing.T) {
	for _, s := range OrderStatuses {
		assert.True(t, s.IsValid(), s)
		assert.Equal(t, s == OrderPending, s.CanDecide(), s)
		assert.Equal(t, s == OrderPending, s.CanEdit(), s)
		assert.Equal(t, s == OrderApproved, s.CanLoad(), s)
	}
	assert.False(t, OrderStatus("shipped").IsValid())
}

func TestSlipStatusCanMoveTo(t *testing.T) {
	tests := []struct {
		from, to SlipStatus
		want     bool
	}{
		{SlipConfirmed, SlipDispatched, true},
		{SlipConfirmed, SlipConfirmed, true},
		{SlipLoading, SlipDelivered, true},
		{SlipDispatched, SlipPartial, true},
		{SlipPartial, SlipDelivered, true},
		{SlipDelivered, SlipPartial, false},
		{SlipDispatched, SlipConfirmed, false},
		{SlipConfirmed, SlipStatus("lost"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanMoveTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestSlipStatusBackOfficeTargets(t *testing.T) {
	assert.True(t, SlipConfirmed.IsBackOfficeTarget())
	assert.True(t, SlipDelivered.IsBackOfficeTarget())
	assert.False(t, SlipLoading.IsBackOfficeTarget())
}

func TestOrderRecalculate(t *testing.T) {
	o := Order{Items: []OrderItem{
		{ItemID: 1, Quantity: 100, RateGiven: decimal.RequireFromString("45.00")},
		{ItemID: 2, Quantity: 50, RateGiven: decimal.RequireFromString("85.00")},
	}}
	o.Recalculate()

	assert.True(t, o.Items[0].Amount.Equal(decimal.NewFromInt(4500)))
	assert.True(t, o.Items[1].Amount.Equal(decimal.NewFromInt(4250)))
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("8750.00")))
}

func TestOrderCloneIsIndependent(t *testing.T) {
	o := Order{ID: "ORD-1", Items: []OrderItem{{ItemID: 1, Quantity: 1}}}
	c := o.Clone()
	c.Items[0].Quantity = 99
	assert.Equal(t, 1, o.Items[0].Quantity)
}
