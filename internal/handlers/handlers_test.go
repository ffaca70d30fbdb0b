package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-glass-dispatch/internal/auth"
	"go-glass-dispatch/internal/database"
	"go-glass-dispatch/internal/models"
	"go-glass-dispatch/internal/store"
	"go-glass-dispatch/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeAssistant struct {
	reply string
	err   error
}

func (f fakeAssistant) Ask(ctx context.Context, message string) (string, error) {
	return f.reply + message, f.err
}

type testServer struct {
	router *gin.Engine
	issuer *auth.Issuer
	tokens map[string]string
}

func newTestServer(t *testing.T, assistant Assistant, allowRegistration bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stores := store.NewMemory(nil)
	require.NoError(t, database.Seed(context.Background(), stores))
	svc := workflow.NewService(stores)
	issuer := auth.NewIssuer("test-secret", time.Hour)

	h := New(svc, stores, issuer, assistant)
	r := gin.New()
	h.Routes(r, allowRegistration)

	ts := &testServer{router: r, issuer: issuer, tokens: map[string]string{}}
	users, err := stores.Users.List(context.Background())
	require.NoError(t, err)
	for _, u := range users {
		token, err := issuer.GenerateToken(u.ID, u.Name, u.Role)
		require.NoError(t, err)
		ts.tokens[u.Role] = token
	}
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, role string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+ts.tokens[role])
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func orderBody(items ...gin.H) gin.H {
	return gin.H{
		"date":             "2026-03-02",
		"customer_name":    "ABC Glass Works",
		"customer_address": "123 Main St, City",
		"customer_phone":   "9876543210",
		"items":            items,
	}
}

func itemBody(qty int, rate string) gin.H {
	return gin.H{"item_name": "GP Clear", "brand_name": "Asahi", "thickness": "4 mm", "size1": "2134", "size2": "1524", "quantity": qty, "rate_given": rate}
}

func TestHealthAndLogin(t *testing.T) {
	ts := newTestServer(t, nil, false)

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/login", "", gin.H{"username": "finance1", "password": "finance123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[map[string]any](t, w)
	assert.Equal(t, "finance", resp["role"])
	claims, err := ts.issuer.ValidateToken(resp["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "Sarah Finance", claims.Name)

	w = ts.do(t, http.MethodPost, "/login", "", gin.H{"username": "finance1", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = ts.do(t, http.MethodPost, "/login", "", gin.H{"username": "nobody", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/api/me", "dispatch", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"loading_slips"`)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegistrationFlag(t *testing.T) {
	closed := newTestServer(t, nil, false)
	w := closed.do(t, http.MethodPost, "/register", "", gin.H{"username": "new", "password": "secret1"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	open := newTestServer(t, nil, true)
	w = open.do(t, http.MethodPost, "/register", "", gin.H{"username": "new", "password": "secret1", "name": "New Person"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	u := decode[models.User](t, w)
	assert.Equal(t, "marketing", u.Role)
	assert.Equal(t, models.UserActive, u.Status)

	w = open.do(t, http.MethodPost, "/register", "", gin.H{"username": "new", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = open.do(t, http.MethodPost, "/login", "", gin.H{"username": "new", "password": "secret1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t, nil, false)

	// 1. Marketing raises an order
	w := ts.do(t, http.MethodPost, "/api/orders", "marketing", orderBody(itemBody(100, "45.00"), itemBody(50, "85.00")))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Order](t, w)
	assert.True(t, created.TotalAmount.Equal(decimal.NewFromInt(8750)), created.TotalAmount.String())
	assert.Equal(t, "John Marketing", created.MarketingExecutive)

	// 2. Marketing cannot approve, finance cannot edit
	w = ts.do(t, http.MethodPost, "/api/approvals/"+created.ID+"/approve", "marketing", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.do(t, http.MethodPut, "/api/orders/"+created.ID, "finance", orderBody(itemBody(1, "1")))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 3. A stale version is refused
	w = ts.do(t, http.MethodPost, "/api/approvals/"+created.ID+"/approve", "finance", gin.H{"version": created.Version + 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	// 4. Finance approves
	w = ts.do(t, http.MethodPost, "/api/approvals/"+created.ID+"/approve", "finance", gin.H{"version": created.Version, "remarks": "ok"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approved := decode[models.Order](t, w)
	assert.Equal(t, models.OrderApproved, approved.Status)
	assert.Equal(t, "Sarah Finance", approved.ApprovedBy)

	// 5. Nothing else applies now
	w = ts.do(t, http.MethodPost, "/api/approvals/"+created.ID+"/hold", "finance", gin.H{"reason": "late"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(t, http.MethodPut, "/api/orders/"+created.ID, "marketing", orderBody(itemBody(1, "1")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(t, http.MethodDelete, "/api/orders/"+created.ID, "marketing", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 6. History and reads
	w = ts.do(t, http.MethodGet, "/api/orders/"+created.ID+"/history", "backoffice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]models.AuditLog](t, w)
	require.Len(t, history, 2)
	assert.Equal(t, "approve", history[1].Action)

	w = ts.do(t, http.MethodGet, "/api/orders?status=approved", "dispatch", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Order](t, w), 3)

	w = ts.do(t, http.MethodGet, "/api/orders?status=nope", "dispatch", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(t, http.MethodGet, "/api/orders/ORD-1999-0101-000", "marketing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(t, http.MethodGet, "/api/orders", "backoffice", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrderValidationOverHTTP(t *testing.T) {
	ts := newTestServer(t, nil, false)

	w := ts.do(t, http.MethodPost, "/api/orders", "marketing", orderBody())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at least one item")

	w = ts.do(t, http.MethodPost, "/api/approvals/ORD-2024-001/hold", "finance", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/orders/ORD-2024-001", "marketing", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodDelete, "/api/orders/ORD-2024-001", "marketing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoadingSlipFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t, nil, false)

	// An approved three-line order
	w := ts.do(t, http.MethodPost, "/api/orders", "marketing", orderBody(itemBody(10, "10"), itemBody(20, "10"), itemBody(30, "10")))
	require.Equal(t, http.StatusCreated, w.Code)
	order := decode[models.Order](t, w)
	w = ts.do(t, http.MethodPost, "/api/approvals/"+order.ID+"/approve", "finance", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Finance cannot build slips
	w = ts.do(t, http.MethodPost, "/api/loading-slips/drafts", "finance", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 1. Open a draft and stage the order
	w = ts.do(t, http.MethodPost, "/api/loading-slips/drafts", "dispatch", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	draft := decode[DraftView](t, w)
	base := "/api/loading-slips/drafts/" + draft.ID

	w = ts.do(t, http.MethodPost, base+"/submit", "dispatch", gin.H{"vehicle_no": "MH-01-AB-1234"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, base+"/orders", "dispatch", gin.H{"order_id": order.ID})
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[DraftView](t, w)
	require.Len(t, view.Staged, 1)
	assert.Empty(t, view.Staged[0].Unavailable)

	// 2. Pick two of three lines
	for _, id := range []int{2, 1} {
		w = ts.do(t, http.MethodPut, base+"/items", "dispatch", gin.H{"order_id": order.ID, "item_id": id, "selected": true, "cd_status": "cash"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w = ts.do(t, http.MethodPut, base+"/items", "dispatch", gin.H{"order_id": order.ID, "item_id": 3, "selected": true, "payment_terms": "net_99"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Another dispatcher's token may not touch it
	other, err := ts.issuer.GenerateToken(99, "Someone Else", "dispatch")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, base, nil)
	req.Header.Set("Authorization", "Bearer "+other)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// 3. Submit
	w = ts.do(t, http.MethodPost, base+"/submit", "dispatch", gin.H{"vehicle_no": "MH-01-AB-1234", "gate_pass_no": "GP-9"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	slip := decode[models.LoadingSlip](t, w)
	require.Len(t, slip.Groups, 1)
	require.Len(t, slip.Groups[0].Items, 2)
	assert.Equal(t, 2, slip.Groups[0].Items[0].ItemID)
	assert.Equal(t, "cash", slip.Groups[0].Items[0].CDStatus)
	assert.Equal(t, models.SlipConfirmed, slip.Status)
	assert.Equal(t, "Mike Dispatch", slip.ConfirmedBy)

	// The draft was reset by the submit
	w = ts.do(t, http.MethodGet, base, "dispatch", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[DraftView](t, w).Staged)

	// 4. The remainder takes the third line, once the order is staged again
	w = ts.do(t, http.MethodPost, base+"/orders/"+order.ID+"/remainder", "dispatch", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(t, http.MethodPost, base+"/orders", "dispatch", gin.H{"order_id": order.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = ts.do(t, http.MethodPost, base+"/orders/"+order.ID+"/remainder", "dispatch", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	remainder := decode[models.Order](t, w)
	require.Len(t, remainder.Items, 1)
	assert.Equal(t, 3, remainder.Items[0].ItemID)
	assert.True(t, remainder.TotalAmount.Equal(decimal.NewFromInt(300)))

	// 5. Back office confirms dispatch
	w = ts.do(t, http.MethodPut, "/api/back-office/slips/"+slip.ID, "dispatch", gin.H{"status": "dispatched"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.do(t, http.MethodPut, "/api/back-office/slips/"+slip.ID, "backoffice", gin.H{"status": "dispatched", "invoice_no": "INV-1", "version": slip.Version})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.LoadingSlip](t, w)
	assert.Equal(t, models.SlipDispatched, updated.Status)
	assert.Equal(t, "INV-1", updated.InvoiceNo)
	assert.Equal(t, "GP-9", updated.GatePassNo)
	assert.Equal(t, "Emma BackOffice", updated.UpdatedBy)

	w = ts.do(t, http.MethodPut, "/api/back-office/slips/"+slip.ID, "backoffice", gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 6. Reads and print
	w = ts.do(t, http.MethodGet, "/api/loading-slips?status=dispatched", "backoffice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.LoadingSlip](t, w), 1)

	w = ts.do(t, http.MethodGet, "/api/loading-slips/"+slip.ID+"/print", "dispatch", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), slip.SlipNo)

	w = ts.do(t, http.MethodGet, "/api/loading-slips/"+slip.ID+"/history", "backoffice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.AuditLog](t, w), 2)

	w = ts.do(t, http.MethodGet, "/api/loading-slips/LS-1999-0000", "dispatch", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 7. Discard
	w = ts.do(t, http.MethodDelete, base, "dispatch", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodGet, base, "dispatch", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboardAndReports(t *testing.T) {
	ts := newTestServer(t, nil, false)

	w := ts.do(t, http.MethodGet, "/api/dashboard", "backoffice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	d := decode[map[string]any](t, w)
	assert.EqualValues(t, 5, d["total_orders"])
	assert.EqualValues(t, 2, d["total_slips"])

	w = ts.do(t, http.MethodGet, "/api/reference", "marketing", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Saint Gobain")

	w = ts.do(t, http.MethodGet, "/api/reports/orders.xlsx", "marketing", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodGet, "/api/reports/orders.xlsx", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "orders-")
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	assert.Len(t, rows, 7)
	require.NoError(t, f.Close())

	w = ts.do(t, http.MethodGet, "/api/reports/slips.xlsx", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/users", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.User](t, w), 5)

	w = ts.do(t, http.MethodPost, "/api/users", "admin", gin.H{"username": "dispatch2", "password": "dispatch123", "role": "dispatch"})
	assert.Equal(t, http.StatusCreated, w.Code)
	w = ts.do(t, http.MethodPost, "/api/users", "admin", gin.H{"username": "x", "password": "xxxxxx", "role": "owner"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAskAI(t *testing.T) {
	w := newTestServer(t, nil, false).do(t, http.MethodPost, "/api/ask", "admin", gin.H{"message": "hi"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	ts := newTestServer(t, fakeAssistant{reply: "echo: "}, false)
	w = ts.do(t, http.MethodPost, "/api/ask", "admin", gin.H{"message": "how many on hold?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reply":"echo: how many on hold?"}`, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/ask", "finance", gin.H{"message": "hi"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.do(t, http.MethodPost, "/api/ask", "admin", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	failing := newTestServer(t, fakeAssistant{err: errors.New("quota exceeded")}, false)
	w = failing.do(t, http.MethodPost, "/api/ask", "admin", gin.H{"message": "hi"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
