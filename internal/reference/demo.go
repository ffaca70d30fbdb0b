package reference

import (
	"time"

	"go-glass-dispatch/internal/models"

	"github.com/shopspring/decimal"
)

// DemoUser is a seed account. Password is plain text and hashed on seeding.
type DemoUser struct {
	Username string
	Password string
	Name     string
	Email    string
	Role     string
}

var DemoUsers = []DemoUser{
	{Username: "admin", Password: "admin123", Name: "Admin User", Email: "admin@company.com", Role: RoleAdmin},
	{Username: "marketing1", Password: "marketing123", Name: "John Marketing", Email: "john@company.com", Role: RoleMarketing},
	{Username: "finance1", Password: "finance123", Name: "Sarah Finance", Email: "sarah@company.com", Role: RoleFinance},
	{Username: "dispatch1", Password: "dispatch123", Name: "Mike Dispatch", Email: "mike@company.com", Role: RoleDispatch},
	{Username: "backoffice1", Password: "backoffice123", Name: "Emma BackOffice", Email: "emma@company.com", Role: RoleBackOffice},
}

// DemoOrders returns the sample order book, newest first.
func DemoOrders() []models.Order {
	orders := []models.Order{
		{
			ID: "ORD-2024-001", Date: "2024-01-15", MarketingExecutive: "John Marketing",
			CustomerName: "ABC Glass Works", CustomerAddress: "123 Main St, City", CustomerPhone: "9876543210",
			Items: []models.OrderItem{
				demoItem(1, "5 mm", "GP Clear", "Saint Gobain", "2440", "1830", 100, "45.00", "42.00"),
				demoItem(2, "6 mm", "SGG Mirror", "Saint Gobain", "2440", "1830", 50, "85.00", "80.00"),
			},
			Status:    models.OrderPending,
			Remarks:   "Priority order - Urgent delivery required",
			CreatedAt: demoTime("2024-01-15T10:30:00"), UpdatedAt: demoTime("2024-01-15T10:30:00"),
		},
		{
			ID: "ORD-2024-002", Date: "2024-01-14", MarketingExecutive: "John Marketing",
			CustomerName: "XYZ Glass Solutions", CustomerAddress: "456 Park Ave, City", CustomerPhone: "9876543211",
			Items: []models.OrderItem{
				demoItem(1, "4 mm", "GP Clear", "Asahi", "2134", "1524", 200, "35.00", "33.00"),
			},
			Status:     models.OrderApproved,
			ApprovedBy: "Sarah Finance", ApprovedAt: demoTimePtr("2024-01-14T15:20:00"),
			CreatedAt: demoTime("2024-01-14T09:00:00"), UpdatedAt: demoTime("2024-01-14T15:20:00"),
		},
		{
			ID: "ORD-2024-003", Date: "2024-01-13", MarketingExecutive: "John Marketing",
			CustomerName: "Premium Glass Co", CustomerAddress: "789 Market St, City", CustomerPhone: "9876543212",
			Items: []models.OrderItem{
				demoItem(1, "8 mm", "Toughened Glass", "Saint Gobain", "2440", "1830", 75, "120.00", "115.00"),
			},
			Status:     models.OrderHold,
			Remarks:    "Payment verification pending",
			HoldReason: "Customer has outstanding dues",
			CreatedAt:  demoTime("2024-01-13T11:00:00"), UpdatedAt: demoTime("2024-01-13T14:30:00"),
		},
		{
			ID: "ORD-2024-004", Date: "2024-01-12", MarketingExecutive: "John Marketing",
			CustomerName: "Modern Glass Works", CustomerAddress: "321 Commerce St, City", CustomerPhone: "9876543213",
			Items: []models.OrderItem{
				demoItem(1, "6 mm", "GP Clear", "Guardian", "2440", "1830", 150, "55.00", "52.00"),
			},
			Status:     models.OrderApproved,
			ApprovedBy: "Sarah Finance", ApprovedAt: demoTimePtr("2024-01-12T16:00:00"),
			CreatedAt: demoTime("2024-01-12T10:00:00"), UpdatedAt: demoTime("2024-01-12T16:00:00"),
		},
		{
			ID: "ORD-2024-005", Date: "2024-01-11", MarketingExecutive: "John Marketing",
			CustomerName: "Elite Glass Products", CustomerAddress: "555 Industrial Rd, City", CustomerPhone: "9876543214",
			Items: []models.OrderItem{
				demoItem(1, "5 mm", "Laminated Glass", "Saint Gobain", "2440", "1830", 80, "95.00", "90.00"),
			},
			Status:      models.OrderCancelled,
			Remarks:     "Customer cancelled order",
			CancelledBy: "John Marketing", CancelledAt: demoTimePtr("2024-01-11T13:00:00"),
			CreatedAt: demoTime("2024-01-11T09:00:00"), UpdatedAt: demoTime("2024-01-11T13:00:00"),
		},
	}
	for i := range orders {
		orders[i].Version = 1
		orders[i].Recalculate()
	}
	return orders
}

// DemoSlips returns the sample loading slips, newest first.
func DemoSlips() []models.LoadingSlip {
	return []models.LoadingSlip{
		{
			ID: "LS-2024-0002", SlipNo: "LS-2024-0002", Date: "2024-01-16",
			VehicleNo: "MH-01-CD-5678", GatePassNo: "GP-002",
			Groups: []models.SlipOrderGroup{{
				OrderID: "ORD-2024-004", CustomerName: "Modern Glass Works",
				CustomerAddress: "321 Commerce St, City", CustomerPhone: "9876543213", OrderBy: "John Marketing",
				Items: []models.SlipItem{
					demoSlipItem("ORD-2024-004", demoItem(1, "6 mm", "GP Clear", "Guardian", "2440", "1830", 150, "55.00", "52.00"),
						"cash", "cash_on_delivery", "", "B-08"),
				},
			}},
			Status:      models.SlipLoading,
			ConfirmedBy: "Mike Dispatch", ConfirmedAt: demoTimePtr("2024-01-16T10:30:00"),
			Version:   1,
			CreatedAt: demoTime("2024-01-16T10:00:00"),
		},
		{
			ID: "LS-2024-0001", SlipNo: "LS-2024-0001", Date: "2024-01-16",
			VehicleNo: "MH-01-AB-1234", GatePassNo: "GP-001",
			Groups: []models.SlipOrderGroup{{
				OrderID: "ORD-2024-002", CustomerName: "XYZ Glass Solutions",
				CustomerAddress: "456 Park Ave, City", CustomerPhone: "9876543211", OrderBy: "John Marketing",
				Items: []models.SlipItem{
					demoSlipItem("ORD-2024-002", demoItem(1, "4 mm", "GP Clear", "Asahi", "2134", "1524", 200, "35.00", "33.00"),
						"credit_30", "net_30", "INV-2024-001", "A-12"),
				},
			}},
			Status:      models.SlipConfirmed,
			ConfirmedBy: "Mike Dispatch", ConfirmedAt: demoTimePtr("2024-01-16T09:00:00"),
			InvoiceNo: "INV-2024-001",
			Version:   1,
			CreatedAt: demoTime("2024-01-16T08:00:00"),
		},
	}
}

func demoItem(id int, thickness, name, brand, size1, size2 string, qty int, rate, listRate string) models.OrderItem {
	it := models.OrderItem{
		ItemID:       id,
		Thickness:    thickness,
		ItemName:     name,
		BrandName:    brand,
		Size1:        size1,
		Size2:        size2,
		Quantity:     qty,
		RateGiven:    decimal.RequireFromString(rate),
		RateFromList: decimal.RequireFromString(listRate),
	}
	it.Recalculate()
	return it
}

func demoSlipItem(orderID string, it models.OrderItem, cd, terms, invoice, rack string) models.SlipItem {
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
		CDStatus:     cd,
		PaymentTerms: terms,
		InvoiceNo:    invoice,
		RackLocation: rack,
	}
}

func demoTime(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func demoTimePtr(s string) *time.Time {
	t := demoTime(s)
	return &t
}
