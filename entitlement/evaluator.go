package entitlement

import (
	"errors"
	"time"

	"multitool-backend/accounts"
)

const (
	// MaxFreeGenerations is the free-trial allowance for every account.
	MaxFreeGenerations = 3
	// CostPerGeneration is the credit price of one metered tool call.
	CostPerGeneration = 50
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// Store is the slice of the account repository the evaluator needs. The
// conditional ops must be atomic: they perform the guard and the mutation in
// one storage operation and report via the bool whether the charge landed.
type Store interface {
	GetByID(id int) (*accounts.Account, error)
	ConsumeFreeGeneration(id, max int) (bool, error)
	DebitCredits(id, cost int) (bool, error)
}

// Branch names which rule allowed a metered call.
type Branch string

const (
	BranchPro     Branch = "pro"
	BranchTrial   Branch = "trial"
	BranchCredits Branch = "credits"
)

// Decision is the outcome of one allowed evaluation. Remaining feeds the
// response headers: trial units left on the trial branch, credit balance after
// the debit on the credits branch, -1 (unlimited) on the pro branch. The
// counters are re-read after the charge lands so concurrent charges are
// reflected.
type Decision struct {
	Branch    Branch
	Remaining int
}

type Evaluator struct {
	store Store
	now   func() time.Time
}

func NewEvaluator(store Store) *Evaluator {
	return &Evaluator{store: store, now: time.Now}
}

// CheckAndCharge decides whether the account may perform one metered action
// and applies the corresponding charge. Rules run in order: an active pro
// subscription passes free, then the free-trial allowance is consumed, then
// credits are debited. Each charging step is a single conditional write, so
// concurrent calls against the same account cannot double-spend.
func (e *Evaluator) CheckAndCharge(accountID int) (Decision, error) {
	acct, err := e.store.GetByID(accountID)
	if err != nil {
		return Decision{}, err
	}
	if acct == nil {
		return Decision{}, ErrAccountNotFound
	}

	if e.proActive(acct) {
		return Decision{Branch: BranchPro, Remaining: -1}, nil
	}

	ok, err := e.store.ConsumeFreeGeneration(accountID, MaxFreeGenerations)
	if err != nil {
		return Decision{}, err
	}
	if ok {
		return Decision{Branch: BranchTrial, Remaining: e.trialLeft(accountID, acct)}, nil
	}

	ok, err = e.store.DebitCredits(accountID, CostPerGeneration)
	if err != nil {
		return Decision{}, err
	}
	if ok {
		return Decision{Branch: BranchCredits, Remaining: e.creditsLeft(accountID, acct)}, nil
	}

	return Decision{}, ErrInsufficientCredits
}

// trialLeft re-reads the counter after the consume landed, so the remainder
// accounts for concurrent charges. The pre-charge snapshot is the fallback
// when the re-read fails; the charge itself already succeeded.
func (e *Evaluator) trialLeft(accountID int, snapshot *accounts.Account) int {
	if fresh, err := e.store.GetByID(accountID); err == nil && fresh != nil {
		return clampZero(MaxFreeGenerations - fresh.FreeGenerationsUsed)
	}
	return clampZero(MaxFreeGenerations - snapshot.FreeGenerationsUsed - 1)
}

func (e *Evaluator) creditsLeft(accountID int, snapshot *accounts.Account) int {
	if fresh, err := e.store.GetByID(accountID); err == nil && fresh != nil {
		return fresh.Credits
	}
	return snapshot.Credits - CostPerGeneration
}

func clampZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// proActive re-validates the subscription window instead of trusting the flag
// alone: an expired pro account falls through to trial/credit charging.
func (e *Evaluator) proActive(a *accounts.Account) bool {
	if !a.IsProUser || a.SubscriptionEndDate == nil {
		return false
	}
	return e.now().Before(*a.SubscriptionEndDate)
}
