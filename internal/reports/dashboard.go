// Package reports builds the dashboard figures and the Excel exports.
package reports

import (
	"context"

	"go-glass-dispatch/internal/models"
	"go-glass-dispatch/internal/store"

	"github.com/shopspring/decimal"
)

// recentLimit caps the recent orders and slips on the dashboard.
const recentLimit = 10

// OrderSummary is one row of the recent orders list.
type OrderSummary struct {
	ID           string             `json:"id"`
	Date         string             `json:"date"`
	CustomerName string             `json:"customer_name"`
	TotalAmount  decimal.Decimal    `json:"total_amount"`
	Status       models.OrderStatus `json:"status"`
}

// SlipSummary is one row of the recent slips list.
type SlipSummary struct {
	ID        string            `json:"id"`
	SlipNo    string            `json:"loading_slip_no"`
	Date      string            `json:"date"`
	VehicleNo string            `json:"vehicle_no"`
	Orders    int               `json:"orders"`
	Items     int               `json:"items"`
	Status    models.SlipStatus `json:"status"`
}

// Dashboard defines the shape of the overview response
type Dashboard struct {
	TotalOrders  int                        `json:"total_orders"`
	TotalAmount  decimal.Decimal            `json:"total_amount"`
	OrderCounts  map[models.OrderStatus]int `json:"order_counts"`
	TotalSlips   int                        `json:"total_slips"`
	SlipCounts   map[models.SlipStatus]int  `json:"slip_counts"`
	RecentOrders []OrderSummary             `json:"recent_orders"`
	RecentSlips  []SlipSummary              `json:"recent_slips"`
}

// BuildDashboard reads every order and slip and tallies them.
func BuildDashboard(ctx context.Context, orders store.OrderStore, slips store.SlipStore) (Dashboard, error) {
	d := Dashboard{
		TotalAmount:  decimal.Zero,
		OrderCounts:  map[models.OrderStatus]int{},
		SlipCounts:   map[models.SlipStatus]int{},
		RecentOrders: []OrderSummary{},
		RecentSlips:  []SlipSummary{},
	}
	for _, st := range models.OrderStatuses {
		d.OrderCounts[st] = 0
	}
	for _, st := range models.SlipStatuses {
		d.SlipCounts[st] = 0
	}

	// 1. Orders, newest first
	allOrders, err := orders.List(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	d.TotalOrders = len(allOrders)
	for i, o := range allOrders {
		d.OrderCounts[o.Status]++
		d.TotalAmount = d.TotalAmount.Add(o.TotalAmount)
		if i < recentLimit {
			d.RecentOrders = append(d.RecentOrders, OrderSummary{
				ID: o.ID, Date: o.Date, CustomerName: o.CustomerName,
				TotalAmount: o.TotalAmount, Status: o.Status,
			})
		}
	}

	// 2. Slips, newest first
	allSlips, err := slips.List(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	d.TotalSlips = len(allSlips)
	for i, s := range allSlips {
		d.SlipCounts[s.Status]++
		if i < recentLimit {
			d.RecentSlips = append(d.RecentSlips, SlipSummary{
				ID: s.ID, SlipNo: s.SlipNo, Date: s.Date, VehicleNo: s.VehicleNo,
				Orders: len(s.Groups), Items: s.ItemCount(), Status: s.Status,
			})
		}
	}
	return d, nil
}
