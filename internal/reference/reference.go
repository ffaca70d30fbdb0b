// Package reference holds the closed vocabularies of the order desk: glass
// items, brands, thickness options, payment tags and staff roles.
package reference

// Option is a value/label pair for pick lists.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var Items = []Option{
	{Value: "GP Clear", Label: "GP Clear"},
	{Value: "SGG Mirror", Label: "SGG Mirror"},
	{Value: "Toughened Glass", Label: "Toughened Glass"},
	{Value: "Laminated Glass", Label: "Laminated Glass"},
	{Value: "Float Glass", Label: "Float Glass"},
	{Value: "Tinted Glass", Label: "Tinted Glass"},
}

var Brands = []Option{
	{Value: "Saint Gobain", Label: "Saint Gobain"},
	{Value: "Asahi", Label: "Asahi"},
	{Value: "Guardian", Label: "Guardian"},
	{Value: "Pilkington", Label: "Pilkington"},
	{Value: "Gold Plus", Label: "Gold Plus"},
}

var Thickness = []string{"3 mm", "4 mm", "5 mm", "6 mm", "8 mm", "10 mm", "12 mm"}

// CDStatuses are the credit/cash tags put on slip lines.
var CDStatuses = []Option{
	{Value: "cash", Label: "Cash"},
	{Value: "credit_15", Label: "Credit 15 days"},
	{Value: "credit_30", Label: "Credit 30 days"},
	{Value: "credit_45", Label: "Credit 45 days"},
	{Value: "credit_60", Label: "Credit 60 days"},
}

var PaymentTerms = []Option{
	{Value: "cash_on_delivery", Label: "Cash on Delivery"},
	{Value: "advance_payment", Label: "Advance Payment"},
	{Value: "net_15", Label: "Net 15"},
	{Value: "net_30", Label: "Net 30"},
	{Value: "net_45", Label: "Net 45"},
	{Value: "net_60", Label: "Net 60"},
}

// Roles
const (
	RoleAdmin      = "admin"
	RoleMarketing  = "marketing"
	RoleFinance    = "finance"
	RoleDispatch   = "dispatch"
	RoleBackOffice = "backoffice"
)

var Roles = []Option{
	{Value: RoleAdmin, Label: "Admin"},
	{Value: RoleMarketing, Label: "Marketing Executive"},
	{Value: RoleFinance, Label: "Finance (Approval)"},
	{Value: RoleDispatch, Label: "Dispatch/Warehouse"},
	{Value: RoleBackOffice, Label: "Back Office"},
}

// Areas of the desk, each gated by a role list.
const (
	AreaDashboard    = "dashboard"
	AreaOrders       = "orders"
	AreaApprovals    = "approvals"
	AreaLoadingSlips = "loading_slips"
	AreaBackOffice   = "back_office"
	AreaUsers        = "users"
	AreaReports      = "reports"
)

// Permissions maps each area to the roles allowed into it.
var Permissions = map[string][]string{
	AreaDashboard:    {RoleAdmin, RoleMarketing, RoleFinance, RoleDispatch, RoleBackOffice},
	AreaOrders:       {RoleAdmin, RoleMarketing},
	AreaApprovals:    {RoleAdmin, RoleFinance},
	AreaLoadingSlips: {RoleAdmin, RoleDispatch},
	AreaBackOffice:   {RoleAdmin, RoleBackOffice},
	AreaUsers:        {RoleAdmin},
	AreaReports:      {RoleAdmin},
}

// Allowed reports whether role may enter area.
func Allowed(area, role string) bool {
	return contains(Permissions[area], role)
}

func IsItem(v string) bool        { return hasValue(Items, v) }
func IsBrand(v string) bool       { return hasValue(Brands, v) }
func IsThickness(v string) bool   { return contains(Thickness, v) }
func IsCDStatus(v string) bool    { return hasValue(CDStatuses, v) }
func IsPaymentTerm(v string) bool { return hasValue(PaymentTerms, v) }
func IsRole(v string) bool        { return hasValue(Roles, v) }

// RoleLabel returns the display label of a role, or the role itself.
func RoleLabel(role string) string {
	for _, o := range Roles {
		if o.Value == role {
			return o.Label
		}
	}
	return role
}

func hasValue(opts []Option, v string) bool {
	for _, o := range opts {
		if o.Value == v {
			return true
		}
	}
	return false
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
