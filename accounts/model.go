package accounts

import "time"

// Account is the sole owner of credit and subscription state for one identity.
type Account struct {
	ID                    int        `json:"id"`
	GoogleID              string     `json:"-"`
	Email                 string     `json:"email"`
	Mobile                string     `json:"mobile,omitempty"`
	Name                  string     `json:"name"`
	PasswordHash          string     `json:"-"`
	Credits               int        `json:"credits"`
	FreeGenerationsUsed   int        `json:"free_generations_used"`
	IsProUser             bool       `json:"is_pro_user"`
	SubscriptionPlan      string     `json:"subscription_plan"`
	SubscriptionStartDate *time.Time `json:"subscription_start_date,omitempty"`
	SubscriptionEndDate   *time.Time `json:"subscription_end_date,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

// SubscriptionGrant is the concrete entitlement state a plan purchase resolves to.
// It is applied to an account as a single write.
type SubscriptionGrant struct {
	Plan      string
	Credits   int
	IsProUser bool
	StartDate time.Time
	EndDate   time.Time
}
