package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"
)

var ErrInvalidPaymentSignature = errors.New("invalid payment signature")

// VerifySignature authenticates a client-relayed Razorpay payment response.
// The expected signature is HMAC-SHA256 over "orderID|paymentID" keyed with
// the key secret, hex encoded. The secret never reaches the client, so a
// matching signature proves the response came from Razorpay. Comparison is
// constant time.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// OrderCreator creates checkout orders at the payment provider.
type OrderCreator interface {
	CreateOrder(amountPaise int64, currency, receipt string, notes map[string]interface{}) (map[string]interface{}, error)
}

// RazorpayService wraps the Razorpay SDK for order creation and holds the key
// secret used for signature verification.
type RazorpayService struct {
	client *razorpay.Client
	secret string
}

// NewRazorpayFromEnv returns a configured service or nil when the key pair is
// not set, in which case order creation is unavailable but the rest of the
// payment surface still works.
func NewRazorpayFromEnv() *RazorpayService {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	secret := os.Getenv("RAZORPAY_KEY_SECRET")
	if keyID == "" || secret == "" {
		return nil
	}
	return &RazorpayService{
		client: razorpay.NewClient(keyID, secret),
		secret: secret,
	}
}

func (s *RazorpayService) Secret() string { return s.secret }

func (s *RazorpayService) CreateOrder(amountPaise int64, currency, receipt string, notes map[string]interface{}) (map[string]interface{}, error) {
	if s == nil {
		return nil, errors.New("razorpay not configured")
	}
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}
	return s.client.Order.Create(data, nil)
}

// newReceipt builds a unique order receipt tag.
func newReceipt() string {
	return fmt.Sprintf("receipt_order_%s", uuid.NewString())
}
