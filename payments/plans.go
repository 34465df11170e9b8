package payments

import (
	"errors"
	"strings"
	"time"

	"multitool-backend/accounts"
)

const (
	PlanFree    = "Free"
	PlanWeekly  = "Weekly"
	PlanSuper   = "Super"
	PlanPro     = "Pro"
	PlanProPlus = "Pro+"
)

const (
	// FreeCredits is the balance a fresh or downgraded account holds.
	FreeCredits = 150
	// UnlimitedCredits is the sentinel balance paid plans carry; pro accounts
	// never reach it because the evaluator bypasses charging while active.
	UnlimitedCredits = 999999
)

var ErrInvalidPlan = errors.New("invalid plan")

// planDurations maps each paid plan to the window added to the purchase time.
// This table is the single source of plan effects; no handler branches on plan
// names on its own.
var planDurations = map[string]func(time.Time) time.Time{
	PlanWeekly:  func(t time.Time) time.Time { return t.AddDate(0, 0, 7) },
	PlanSuper:   func(t time.Time) time.Time { return t.AddDate(0, 1, 0) },
	PlanPro:     func(t time.Time) time.Time { return t.AddDate(0, 6, 0) },
	PlanProPlus: func(t time.Time) time.Time { return t.AddDate(1, 0, 0) },
}

// ParsePlan canonicalizes a client-supplied plan tag. Matching is
// case-insensitive; unknown tags are rejected, never defaulted.
func ParsePlan(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "free":
		return PlanFree, nil
	case "weekly":
		return PlanWeekly, nil
	case "super":
		return PlanSuper, nil
	case "pro":
		return PlanPro, nil
	case "pro+", "proplus", "pro plus":
		return PlanProPlus, nil
	}
	return "", ErrInvalidPlan
}

// PlanGrant resolves a plan tag into the subscription state it confers,
// anchored at now. Free yields the downgraded state with end date = now.
func PlanGrant(plan string, now time.Time) (accounts.SubscriptionGrant, error) {
	canonical, err := ParsePlan(plan)
	if err != nil {
		return accounts.SubscriptionGrant{}, err
	}
	if canonical == PlanFree {
		return accounts.SubscriptionGrant{
			Plan:      PlanFree,
			Credits:   FreeCredits,
			IsProUser: false,
			StartDate: now,
			EndDate:   now,
		}, nil
	}
	return accounts.SubscriptionGrant{
		Plan:      canonical,
		Credits:   UnlimitedCredits,
		IsProUser: true,
		StartDate: now,
		EndDate:   planDurations[canonical](now),
	}, nil
}
