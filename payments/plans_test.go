package payments

import (
	"errors"
	"testing"
	"time"
)

func TestPlanGrantDurations(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		plan string
		end  time.Time
	}{
		{PlanWeekly, now.AddDate(0, 0, 7)},
		{PlanSuper, now.AddDate(0, 1, 0)},
		{PlanPro, now.AddDate(0, 6, 0)},
		{PlanProPlus, now.AddDate(1, 0, 0)},
	}
	for _, tc := range cases {
		g, err := PlanGrant(tc.plan, now)
		if err != nil {
			t.Fatalf("%s: %v", tc.plan, err)
		}
		if !g.EndDate.Equal(tc.end) {
			t.Errorf("%s: end = %v, want %v", tc.plan, g.EndDate, tc.end)
		}
		if !g.IsProUser {
			t.Errorf("%s: paid plan must set pro", tc.plan)
		}
		if g.Credits != UnlimitedCredits {
			t.Errorf("%s: credits = %d, want sentinel", tc.plan, g.Credits)
		}
		if !g.StartDate.Equal(now) {
			t.Errorf("%s: start = %v, want now", tc.plan, g.StartDate)
		}
	}
}

func TestPlanGrantFree(t *testing.T) {
	now := time.Now()
	g, err := PlanGrant("free", now)
	if err != nil {
		t.Fatal(err)
	}
	if g.IsProUser {
		t.Error("free plan must not set pro")
	}
	if g.Credits != FreeCredits {
		t.Errorf("credits = %d, want %d", g.Credits, FreeCredits)
	}
	if !g.EndDate.Equal(now) {
		t.Errorf("free end date = %v, want now", g.EndDate)
	}
}

func TestPlanGrantUnknown(t *testing.T) {
	if _, err := PlanGrant("platinum", time.Now()); !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("expected ErrInvalidPlan, got %v", err)
	}
}

func TestParsePlanNormalizesCase(t *testing.T) {
	for in, want := range map[string]string{
		"weekly": PlanWeekly,
		"SUPER":  PlanSuper,
		" pro ":  PlanPro,
		"pro+":   PlanProPlus,
		"PRO+":   PlanProPlus,
	} {
		got, err := ParsePlan(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got != want {
			t.Errorf("%q -> %q, want %q", in, got, want)
		}
	}
}
