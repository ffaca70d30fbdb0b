package ai

import (
	"context"
	"encoding/json"

	"go-glass-dispatch/internal/models"
	"go-glass-dispatch/internal/reports"
	"go-glass-dispatch/internal/workflow"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"
)

// --- DEFINE TOOLS ---

var Declarations = []*genai.FunctionDeclaration{
	{
		Name:        "list_orders",
		Description: "List orders, newest first. Use this to find order ids, customers, totals and statuses.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"status": {
					Type:        genai.TypeString,
					Description: "Optional status filter",
					Enum:        []string{"pending", "approved", "hold", "cancelled", "dispatched"},
				},
			},
		},
	},
	{
		Name:        "get_order",
		Description: "Get one order with all its items and approval details",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"order_id": {Type: genai.TypeString, Description: "Order id, e.g. ORD-2024-001"},
			},
			Required: []string{"order_id"},
		},
	},
	{
		Name:        "list_slips",
		Description: "List loading slips, newest first, with vehicle, invoice and status",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"status": {
					Type:        genai.TypeString,
					Description: "Optional status filter",
					Enum:        []string{"confirmed", "loading", "dispatched", "partial", "delivered"},
				},
			},
		},
	},
	{
		Name:        "get_dashboard",
		Description: "Get order and slip counts by status and the total order value",
	},
}

// Tools runs the assistant's read-only tools against the workflow.
type Tools struct {
	svc       *workflow.Service
	dashboard func(ctx context.Context) (reports.Dashboard, error)
}

func NewTools(svc *workflow.Service, dashboard func(ctx context.Context) (reports.Dashboard, error)) *Tools {
	return &Tools{svc: svc, dashboard: dashboard}
}

type simpleOrder struct {
	ID           string             `json:"id"`
	Date         string             `json:"date"`
	CustomerName string             `json:"customer_name"`
	Total        decimal.Decimal    `json:"total_amount"`
	Status       models.OrderStatus `json:"status"`
	Items        int                `json:"items"`
}

type simpleSlip struct {
	ID        string            `json:"id"`
	Date      string            `json:"date"`
	VehicleNo string            `json:"vehicle_no"`
	InvoiceNo string            `json:"invoice_no"`
	Status    models.SlipStatus `json:"status"`
	Orders    []string          `json:"orders"`
}

// Execute runs the named tool. Failures are reported to the model as an
// "error" field rather than returned.
func (t *Tools) Execute(ctx context.Context, name string, args map[string]any) map[string]any {
	switch name {
	case "list_orders":
		status, _ := args["status"].(string)
		orders, err := t.svc.ListOrders(ctx, models.OrderStatus(status))
		if err != nil {
			return failure(err)
		}
		list := make([]simpleOrder, 0, len(orders))
		for _, o := range orders {
			list = append(list, simpleOrder{
				ID: o.ID, Date: o.Date, CustomerName: o.CustomerName,
				Total: o.TotalAmount, Status: o.Status, Items: len(o.Items),
			})
		}
		return encoded("orders", list)

	case "get_order":
		id, _ := args["order_id"].(string)
		o, err := t.svc.GetOrder(ctx, id)
		if err != nil {
			return failure(err)
		}
		return encoded("order", o)

	case "list_slips":
		status, _ := args["status"].(string)
		slips, err := t.svc.ListSlips(ctx, models.SlipStatus(status))
		if err != nil {
			return failure(err)
		}
		list := make([]simpleSlip, 0, len(slips))
		for _, s := range slips {
			ss := simpleSlip{ID: s.ID, Date: s.Date, VehicleNo: s.VehicleNo, InvoiceNo: s.InvoiceNo, Status: s.Status}
			for _, g := range s.Groups {
				ss.Orders = append(ss.Orders, g.OrderID)
			}
			list = append(list, ss)
		}
		return encoded("slips", list)

	case "get_dashboard":
		d, err := t.dashboard(ctx)
		if err != nil {
			return failure(err)
		}
		return encoded("dashboard", d)

	default:
		return map[string]any{"error": "unknown tool " + name}
	}
}

func encoded(key string, v any) map[string]any {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return failure(err)
	}
	return map[string]any{key: string(jsonBytes)}
}

func failure(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}
