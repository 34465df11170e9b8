package accounts

import (
	"database/sql"
	"time"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const accountColumns = `id, COALESCE(google_id,''), email, COALESCE(mobile,''), name, password_hash,
	credits, free_generations_used, is_pro_user, subscription_plan,
	subscription_start_date, subscription_end_date, created_at`

func scanAccount(row *sql.Row) (*Account, error) {
	var a Account
	var start, end sql.NullTime
	err := row.Scan(&a.ID, &a.GoogleID, &a.Email, &a.Mobile, &a.Name, &a.PasswordHash,
		&a.Credits, &a.FreeGenerationsUsed, &a.IsProUser, &a.SubscriptionPlan,
		&start, &end, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if start.Valid {
		a.SubscriptionStartDate = &start.Time
	}
	if end.Valid {
		a.SubscriptionEndDate = &end.Time
	}
	return &a, nil
}

func (r *Repository) GetByID(id int) (*Account, error) {
	row := r.db.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE id=? LIMIT 1`, id)
	return scanAccount(row)
}

func (r *Repository) GetByEmail(email string) (*Account, error) {
	row := r.db.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE email=? LIMIT 1`, email)
	return scanAccount(row)
}

func (r *Repository) GetByMobile(mobile string) (*Account, error) {
	row := r.db.QueryRow(`SELECT `+accountColumns+` FROM accounts WHERE mobile=? LIMIT 1`, mobile)
	return scanAccount(row)
}

// Create inserts a new account; credit and subscription defaults come from the schema.
func (r *Repository) Create(a *Account) error {
	res, err := r.db.Exec(`INSERT INTO accounts (google_id, email, mobile, name, password_hash)
		VALUES (NULLIF(?,''), ?, NULLIF(?,''), ?, ?)`,
		a.GoogleID, a.Email, a.Mobile, a.Name, a.PasswordHash)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = int(id)
	a.Credits = 150
	a.SubscriptionPlan = "Free"
	return nil
}

// ConsumeFreeGeneration burns one unit of the free-trial allowance. The
// increment is conditional on the counter still being below max so concurrent
// calls cannot push it past the allowance; the affected-rows result says
// whether this call won the unit.
func (r *Repository) ConsumeFreeGeneration(id, max int) (bool, error) {
	res, err := r.db.Exec(`UPDATE accounts SET free_generations_used = free_generations_used + 1
		WHERE id = ? AND free_generations_used < ?`, id, max)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DebitCredits charges cost credits in one conditional update. The balance
// guard runs inside the statement, so credits can never go negative and two
// racing requests cannot both spend the same credits.
func (r *Repository) DebitCredits(id, cost int) (bool, error) {
	res, err := r.db.Exec(`UPDATE accounts SET credits = credits - ?
		WHERE id = ? AND credits >= ?`, cost, id, cost)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ApplyGrant overwrites the account's whole subscription state with the grant.
func (r *Repository) ApplyGrant(id int, g SubscriptionGrant) error {
	_, err := r.db.Exec(`UPDATE accounts SET subscription_plan=?, credits=?, is_pro_user=?,
		subscription_start_date=?, subscription_end_date=? WHERE id=?`,
		g.Plan, g.Credits, g.IsProUser, g.StartDate, g.EndDate, id)
	return err
}

// CreditTopUp adds credits without touching subscription state.
func (r *Repository) CreditTopUp(id, amount int) error {
	_, err := r.db.Exec(`UPDATE accounts SET credits = credits + ? WHERE id=?`, amount, id)
	return err
}

func (r *Repository) UpdatePassword(id int, passwordHash string) error {
	_, err := r.db.Exec(`UPDATE accounts SET password_hash=? WHERE id=?`, passwordHash, id)
	return err
}

func (r *Repository) LinkGoogleID(id int, googleID, name string) error {
	_, err := r.db.Exec(`UPDATE accounts SET google_id=?, name=? WHERE id=?`, googleID, name, id)
	return err
}

func (r *Repository) SetResetToken(id int, token string, expiry time.Time) error {
	_, err := r.db.Exec(`UPDATE accounts SET reset_token=?, reset_token_expiry=? WHERE id=?`, token, expiry, id)
	return err
}

// GetByResetToken returns the account holding a non-expired reset token.
func (r *Repository) GetByResetToken(token string) (*Account, error) {
	row := r.db.QueryRow(`SELECT `+accountColumns+` FROM accounts
		WHERE reset_token=? AND reset_token_expiry > NOW() LIMIT 1`, token)
	return scanAccount(row)
}

func (r *Repository) ClearResetToken(id int) error {
	_, err := r.db.Exec(`UPDATE accounts SET reset_token=NULL, reset_token_expiry=NULL WHERE id=?`, id)
	return err
}

func (r *Repository) SetOTP(id int, otp string, expiry time.Time) error {
	_, err := r.db.Exec(`UPDATE accounts SET otp=?, otp_expiry=? WHERE id=?`, otp, expiry, id)
	return err
}

// GetByMobileAndOTP returns the account only when the OTP matches and has not expired.
func (r *Repository) GetByMobileAndOTP(mobile, otp string) (*Account, error) {
	row := r.db.QueryRow(`SELECT `+accountColumns+` FROM accounts
		WHERE mobile=? AND otp=? AND otp_expiry > NOW() LIMIT 1`, mobile, otp)
	return scanAccount(row)
}

func (r *Repository) ClearOTP(id int) error {
	_, err := r.db.Exec(`UPDATE accounts SET otp=NULL, otp_expiry=NULL WHERE id=?`, id)
	return err
}
