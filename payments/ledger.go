package payments

import "database/sql"

// Ledger event types.
const (
	EventPaymentVerified = "payment_verified"
	EventPlanGranted     = "plan_granted"
	EventCancelled       = "cancelled"
	EventCreditTopUp     = "credit_topup"
)

// Event is one append-only ledger row.
type Event struct {
	AccountID int
	Event     string
	Plan      string
	OrderID   string
	PaymentID string
	Amount    int
}

// Recorder appends payment events to the audit ledger.
type Recorder interface {
	Record(e Event) error
}

// Ledger is the SQL-backed recorder. Rows are insert-only.
type Ledger struct {
	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) Record(e Event) error {
	_, err := l.db.Exec(`INSERT INTO payment_events (account_id, event, plan, order_id, payment_id, amount)
		VALUES (?,?,?,?,?,?)`,
		e.AccountID, e.Event, e.Plan, e.OrderID, e.PaymentID, e.Amount)
	return err
}

// nopRecorder keeps the payment flow working when no ledger is wired (tests,
// ledger-less deployments).
type nopRecorder struct{}

func (nopRecorder) Record(Event) error { return nil }
