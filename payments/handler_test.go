package payments

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"multitool-backend/accounts"

	"github.com/gin-gonic/gin"
)

type mockStore struct {
	acct   *accounts.Account
	grants []accounts.SubscriptionGrant
	topups []int
}

func (m *mockStore) GetByID(id int) (*accounts.Account, error) {
	if m.acct == nil || m.acct.ID != id {
		return nil, nil
	}
	cp := *m.acct
	return &cp, nil
}

func (m *mockStore) ApplyGrant(id int, g accounts.SubscriptionGrant) error {
	m.grants = append(m.grants, g)
	m.acct.SubscriptionPlan = g.Plan
	m.acct.Credits = g.Credits
	m.acct.IsProUser = g.IsProUser
	m.acct.SubscriptionStartDate = &g.StartDate
	m.acct.SubscriptionEndDate = &g.EndDate
	return nil
}

func (m *mockStore) CreditTopUp(id, amount int) error {
	m.topups = append(m.topups, amount)
	m.acct.Credits += amount
	return nil
}

type mockRecorder struct {
	events []Event
}

func (m *mockRecorder) Record(e Event) error {
	m.events = append(m.events, e)
	return nil
}

type mockNotifier struct {
	receipts []string
}

func (m *mockNotifier) SendSubscriptionReceipt(to, plan string) error {
	m.receipts = append(m.receipts, to+":"+plan)
	return nil
}

const testSecret = "rzp_test_secret"

func setupRouter(h *Handler, accountID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grp := r.Group("/api/payment", func(c *gin.Context) {
		c.Set("account_id", accountID)
		c.Next()
	})
	h.RegisterRoutes(grp)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVerifyPayment_ActivatesPlan(t *testing.T) {
	st := &mockStore{acct: &accounts.Account{ID: 1, Email: "a@b.c", Credits: 150, SubscriptionPlan: PlanFree}}
	rec := &mockRecorder{}
	mail := &mockNotifier{}
	h := NewHandler(st, nil, testSecret, rec, mail)
	r := setupRouter(h, 1)

	sig := signPayment("order_1", "pay_1", testSecret)
	w := postJSON(t, r, "/api/payment/razorpay/verify", gin.H{
		"razorpay_order_id":   "order_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  sig,
		"plan":                "Weekly",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(st.grants) != 1 {
		t.Fatalf("grants = %d, want 1", len(st.grants))
	}
	g := st.grants[0]
	if g.Plan != PlanWeekly || !g.IsProUser || g.Credits != UnlimitedCredits {
		t.Fatalf("unexpected grant: %+v", g)
	}
	if len(rec.events) != 1 || rec.events[0].Event != EventPaymentVerified || rec.events[0].OrderID != "order_1" {
		t.Fatalf("unexpected ledger events: %+v", rec.events)
	}
	if len(mail.receipts) != 1 || mail.receipts[0] != "a@b.c:"+PlanWeekly {
		t.Fatalf("unexpected receipts: %v", mail.receipts)
	}
}

func TestVerifyPayment_RejectsBadSignatureIdempotently(t *testing.T) {
	st := &mockStore{acct: &accounts.Account{ID: 1, Credits: 150, SubscriptionPlan: PlanFree}}
	rec := &mockRecorder{}
	h := NewHandler(st, nil, testSecret, rec, nil)
	r := setupRouter(h, 1)

	body := gin.H{
		"razorpay_order_id":   "order_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "bogus",
		"plan":                "Weekly",
	}
	for i := 0; i < 2; i++ {
		w := postJSON(t, r, "/api/payment/razorpay/verify", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("attempt %d: expected 400, got %d", i+1, w.Code)
		}
		var resp map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if resp["reason"] != "invalid_payment_signature" {
			t.Fatalf("attempt %d: reason = %v", i+1, resp["reason"])
		}
	}
	if len(st.grants) != 0 || len(rec.events) != 0 {
		t.Fatal("rejected payment must not change state or write ledger rows")
	}
	if st.acct.SubscriptionPlan != PlanFree || st.acct.Credits != 150 {
		t.Fatalf("account mutated: %+v", st.acct)
	}
}

// With no key secret configured, a signature computed with the empty key
// must not activate anything; verification refuses outright.
func TestVerifyPayment_FailsClosedWithoutSecret(t *testing.T) {
	st := &mockStore{acct: &accounts.Account{ID: 1, Credits: 150, SubscriptionPlan: PlanFree}}
	rec := &mockRecorder{}
	h := NewHandler(st, nil, "", rec, nil)
	r := setupRouter(h, 1)

	w := postJSON(t, r, "/api/payment/razorpay/verify", gin.H{
		"razorpay_order_id":   "order_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  signPayment("order_1", "pay_1", ""),
		"plan":                "Pro+",
	})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", w.Code, w.Body.String())
	}
	if len(st.grants) != 0 || len(rec.events) != 0 {
		t.Fatal("unconfigured verification must not change state or write ledger rows")
	}
	if st.acct.IsProUser || st.acct.SubscriptionPlan != PlanFree {
		t.Fatalf("account mutated: %+v", st.acct)
	}
}

func TestVerifyPayment_InvalidPlan(t *testing.T) {
	st := &mockStore{acct: &accounts.Account{ID: 1, Credits: 150, SubscriptionPlan: PlanFree}}
	h := NewHandler(st, nil, testSecret, nil, nil)
	r := setupRouter(h, 1)

	w := postJSON(t, r, "/api/payment/razorpay/verify", gin.H{
		"razorpay_order_id":   "order_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  signPayment("order_1", "pay_1", testSecret),
		"plan":                "platinum",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(st.grants) != 0 {
		t.Fatal("invalid plan must not grant")
	}
}

func TestCancelResetsToFreeState(t *testing.T) {
	end := time.Now().AddDate(0, 6, 0)
	st := &mockStore{acct: &accounts.Account{
		ID: 1, Credits: UnlimitedCredits, IsProUser: true,
		SubscriptionPlan: PlanPro, SubscriptionEndDate: &end,
	}}
	h := NewHandler(st, nil, testSecret, nil, nil)
	r := setupRouter(h, 1)

	w := postJSON(t, r, "/api/payment/cancel", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if st.acct.IsProUser || st.acct.SubscriptionPlan != PlanFree || st.acct.Credits != FreeCredits {
		t.Fatalf("cancel did not reset state: %+v", st.acct)
	}
	if !st.acct.SubscriptionEndDate.Before(time.Now().Add(time.Second)) {
		t.Fatal("end date must be clamped to now")
	}
}

func TestSubscribeGrantsPlan(t *testing.T) {
	st := &mockStore{acct: &accounts.Account{ID: 1, Credits: 150, SubscriptionPlan: PlanFree}}
	h := NewHandler(st, nil, testSecret, nil, nil)
	r := setupRouter(h, 1)

	w := postJSON(t, r, "/api/payment/subscribe", gin.H{"plan": "super"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if st.acct.SubscriptionPlan != PlanSuper || !st.acct.IsProUser {
		t.Fatalf("unexpected state: %+v", st.acct)
	}
}

// The promote default resolves through the plan table like every other grant,
// so Pro carries the table's six-month window.
func TestPromoteDefaultsToProFromPlanTable(t *testing.T) {
	st := &mockStore{acct: &accounts.Account{ID: 1, Credits: 150, SubscriptionPlan: PlanFree}}
	h := NewHandler(st, nil, testSecret, nil, nil)
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }
	r := setupRouter(h, 1)

	w := postJSON(t, r, "/api/payment/promote", gin.H{})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(st.grants) != 1 {
		t.Fatalf("grants = %d, want 1", len(st.grants))
	}
	g := st.grants[0]
	if g.Plan != PlanPro || !g.IsProUser {
		t.Fatalf("unexpected grant: %+v", g)
	}
	if !g.EndDate.Equal(now.AddDate(0, 6, 0)) {
		t.Fatalf("end = %v, want %v", g.EndDate, now.AddDate(0, 6, 0))
	}
}

func TestMockPaymentTopsUp(t *testing.T) {
	st := &mockStore{acct: &accounts.Account{ID: 1, Credits: 150}}
	h := NewHandler(st, nil, testSecret, nil, nil)
	r := setupRouter(h, 1)

	w := postJSON(t, r, "/api/payment/verify", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if st.acct.Credits != 250 {
		t.Fatalf("credits = %d, want 250", st.acct.Credits)
	}
}

func TestStatusReportsActiveWindow(t *testing.T) {
	end := time.Now().Add(48 * time.Hour)
	st := &mockStore{acct: &accounts.Account{
		ID: 1, Credits: UnlimitedCredits, IsProUser: true,
		SubscriptionPlan: PlanWeekly, SubscriptionEndDate: &end,
	}}
	h := NewHandler(st, nil, testSecret, nil, nil)
	r := setupRouter(h, 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/payment/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["isPro"] != true || resp["plan"] != PlanWeekly || resp["active"] != true {
		t.Fatalf("unexpected status: %v", resp)
	}
}

func TestStatusUnknownAccount(t *testing.T) {
	h := NewHandler(&mockStore{}, nil, testSecret, nil, nil)
	r := setupRouter(h, 7)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/payment/status", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCreateOrderUnconfigured(t *testing.T) {
	st := &mockStore{acct: &accounts.Account{ID: 1}}
	h := NewHandler(st, nil, testSecret, nil, nil)
	r := setupRouter(h, 1)

	w := postJSON(t, r, "/api/payment/razorpay/order", gin.H{"amount": 199, "plan": "Weekly"})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

type mockOrders struct {
	lastAmount int64
	lastNotes  map[string]interface{}
}

func (m *mockOrders) CreateOrder(amountPaise int64, currency, receipt string, notes map[string]interface{}) (map[string]interface{}, error) {
	m.lastAmount = amountPaise
	m.lastNotes = notes
	return map[string]interface{}{"id": "order_mock", "amount": amountPaise, "currency": currency, "receipt": receipt}, nil
}

func TestCreateOrderConvertsToPaise(t *testing.T) {
	st := &mockStore{acct: &accounts.Account{ID: 1}}
	orders := &mockOrders{}
	h := NewHandler(st, orders, testSecret, nil, nil)
	r := setupRouter(h, 1)

	w := postJSON(t, r, "/api/payment/razorpay/order", gin.H{"amount": 199, "plan": "Pro"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if orders.lastAmount != 19900 {
		t.Fatalf("amount = %d paise, want 19900", orders.lastAmount)
	}
	if orders.lastNotes["plan"] != "Pro" {
		t.Fatalf("notes = %v", orders.lastNotes)
	}
}
