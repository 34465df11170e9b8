package payments

import (
	"log"
	"net/http"
	"time"

	"multitool-backend/accounts"

	"github.com/gin-gonic/gin"
)

// Store is the slice of the account repository the payment surface mutates.
type Store interface {
	GetByID(id int) (*accounts.Account, error)
	ApplyGrant(id int, g accounts.SubscriptionGrant) error
	CreditTopUp(id, amount int) error
}

const mockTopUpCredits = 100

// Notifier sends the post-purchase receipt email.
type Notifier interface {
	SendSubscriptionReceipt(to, plan string) error
}

type Handler struct {
	store  Store
	orders OrderCreator
	secret string
	ledger Recorder
	mail   Notifier
	now    func() time.Time
}

// NewHandler wires the payment endpoints. orders may be nil (order creation
// then returns 503); secret may be empty (payment verification then returns
// 503 rather than accept signatures forged with an empty key); ledger may be
// nil (events are not recorded); mail may be nil (no receipt emails).
func NewHandler(store Store, orders OrderCreator, secret string, ledger Recorder, mail Notifier) *Handler {
	if ledger == nil {
		ledger = nopRecorder{}
	}
	return &Handler{store: store, orders: orders, secret: secret, ledger: ledger, mail: mail, now: time.Now}
}

// RegisterRoutes mounts the payment surface on an authenticated route group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/status", h.getStatus)
	r.POST("/subscribe", h.subscribe)
	r.POST("/verify", h.mockPayment)
	r.POST("/razorpay/order", h.createOrder)
	r.POST("/razorpay/verify", h.verifyPayment)
	r.POST("/promote", h.promote)
	r.POST("/cancel", h.cancel)
}

// record appends to the ledger; a ledger failure never rolls back an applied
// state change, it is only logged.
func (h *Handler) record(e Event) {
	if err := h.ledger.Record(e); err != nil {
		log.Printf("[payment][ledger_error] event=%s account_id=%d err=%v", e.Event, e.AccountID, err)
	}
}

func (h *Handler) account(c *gin.Context) *accounts.Account {
	id := c.GetInt("account_id")
	acct, err := h.store.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return nil
	}
	if acct == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return nil
	}
	return acct
}

func (h *Handler) getStatus(c *gin.Context) {
	acct := h.account(c)
	if acct == nil {
		return
	}
	active := acct.IsProUser && acct.SubscriptionEndDate != nil && h.now().Before(*acct.SubscriptionEndDate)
	c.JSON(http.StatusOK, gin.H{
		"credits":         acct.Credits,
		"isPro":           acct.IsProUser,
		"plan":            acct.SubscriptionPlan,
		"subscriptionEnd": acct.SubscriptionEndDate,
		"active":          active,
	})
}

// subscribe grants a plan directly without a provider checkout. Kept for the
// demo/testing path the clients use; production purchases go through the
// Razorpay order + verify pair.
func (h *Handler) subscribe(c *gin.Context) {
	var body struct {
		Plan string `json:"plan"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	acct := h.account(c)
	if acct == nil {
		return
	}
	grant, err := PlanGrant(body.Plan, h.now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan", "reason": "invalid_plan"})
		return
	}
	if err := h.store.ApplyGrant(acct.ID, grant); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	h.record(Event{AccountID: acct.ID, Event: EventPlanGranted, Plan: grant.Plan})
	c.JSON(http.StatusOK, gin.H{
		"message":         "Subscription activated successfully",
		"plan":            grant.Plan,
		"subscriptionEnd": grant.EndDate,
	})
}

// mockPayment tops up credits without a real charge, for testing clients.
func (h *Handler) mockPayment(c *gin.Context) {
	acct := h.account(c)
	if acct == nil {
		return
	}
	if err := h.store.CreditTopUp(acct.ID, mockTopUpCredits); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	h.record(Event{AccountID: acct.ID, Event: EventCreditTopUp, Amount: mockTopUpCredits})
	c.JSON(http.StatusOK, gin.H{
		"message": "Payment successful",
		"credits": acct.Credits + mockTopUpCredits,
	})
}

func (h *Handler) createOrder(c *gin.Context) {
	var body struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Plan     string `json:"plan"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if body.Currency == "" {
		body.Currency = "INR"
	}
	if _, err := ParsePlan(body.Plan); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan", "reason": "invalid_plan"})
		return
	}
	if h.orders == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payments are not configured"})
		return
	}
	accountID := c.GetInt("account_id")
	order, err := h.orders.CreateOrder(body.Amount*100, body.Currency, newReceipt(), map[string]interface{}{
		"plan":      body.Plan,
		"accountId": accountID,
	})
	if err != nil {
		log.Printf("[payment][order_error] account_id=%d err=%v", accountID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment order"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// verifyPayment is the fraud boundary: the checkout response is posted back by
// the browser, so nothing in it is trusted until the signature is re-derived
// from the key secret. No subscription state changes on a mismatch, however
// many times the same payload is retried. Without a configured secret the
// check cannot prove anything, so verification refuses instead of running the
// HMAC with an empty key.
func (h *Handler) verifyPayment(c *gin.Context) {
	var body struct {
		OrderID   string `json:"razorpay_order_id"`
		PaymentID string `json:"razorpay_payment_id"`
		Signature string `json:"razorpay_signature"`
		Plan      string `json:"plan"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.OrderID == "" || body.PaymentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if h.secret == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payments are not configured"})
		return
	}
	accountID := c.GetInt("account_id")
	if !VerifySignature(body.OrderID, body.PaymentID, body.Signature, h.secret) {
		log.Printf("[payment][fraud] account_id=%d order_id=%s payment_id=%s reason=signature_mismatch",
			accountID, body.OrderID, body.PaymentID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction not legit!", "reason": "invalid_payment_signature"})
		return
	}
	grant, err := PlanGrant(body.Plan, h.now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan", "reason": "invalid_plan"})
		return
	}
	acct := h.account(c)
	if acct == nil {
		return
	}
	if err := h.store.ApplyGrant(acct.ID, grant); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error while updating account"})
		return
	}
	h.record(Event{
		AccountID: acct.ID,
		Event:     EventPaymentVerified,
		Plan:      grant.Plan,
		OrderID:   body.OrderID,
		PaymentID: body.PaymentID,
	})
	if h.mail != nil {
		if err := h.mail.SendSubscriptionReceipt(acct.Email, grant.Plan); err != nil {
			log.Printf("[payment][email_error] receipt to=%s err=%v", acct.Email, err)
		}
	}
	log.Printf("[payment][verified] account_id=%d order_id=%s plan=%s", acct.ID, body.OrderID, grant.Plan)
	c.JSON(http.StatusOK, gin.H{
		"message":   "Payment successful, subscription activated",
		"orderId":   body.OrderID,
		"paymentId": body.PaymentID,
		"plan":      grant.Plan,
	})
}

// promote upgrades an account for demos without a payment. Defaults to the
// Pro plan when no plan is given.
func (h *Handler) promote(c *gin.Context) {
	var body struct {
		Plan string `json:"plan"`
	}
	_ = c.ShouldBindJSON(&body)
	if body.Plan == "" {
		body.Plan = PlanPro
	}
	acct := h.account(c)
	if acct == nil {
		return
	}
	grant, err := PlanGrant(body.Plan, h.now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan", "reason": "invalid_plan"})
		return
	}
	if err := h.store.ApplyGrant(acct.ID, grant); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error during promotion"})
		return
	}
	h.record(Event{AccountID: acct.ID, Event: EventPlanGranted, Plan: grant.Plan})
	c.JSON(http.StatusOK, gin.H{
		"message":          "Account promoted successfully",
		"isPro":            grant.IsProUser,
		"credits":          grant.Credits,
		"subscriptionPlan": grant.Plan,
		"subscriptionEnd":  grant.EndDate,
	})
}

// cancel downgrades immediately and unconditionally; no pro-rating of the
// remaining paid window.
func (h *Handler) cancel(c *gin.Context) {
	acct := h.account(c)
	if acct == nil {
		return
	}
	grant, err := PlanGrant(PlanFree, h.now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if err := h.store.ApplyGrant(acct.ID, grant); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	h.record(Event{AccountID: acct.ID, Event: EventCancelled, Plan: acct.SubscriptionPlan})
	log.Printf("[payment][cancelled] account_id=%d previous_plan=%s", acct.ID, acct.SubscriptionPlan)
	c.JSON(http.StatusOK, gin.H{
		"message": "Subscription cancelled",
		"plan":    PlanFree,
		"credits": FreeCredits,
	})
}
