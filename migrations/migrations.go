package migrations

import (
	"database/sql"
	"fmt"
)

var db *sql.DB

// Init sets the DB connection used by Migrate.
func Init(database *sql.DB) {
	db = database
}

// Migrate creates required tables if they do not exist. Safe to call on every boot.
func Migrate() error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	createAccounts := `
	CREATE TABLE IF NOT EXISTS accounts (
		id INT AUTO_INCREMENT PRIMARY KEY,
		google_id VARCHAR(64) DEFAULT NULL,
		email VARCHAR(191) NOT NULL UNIQUE,
		mobile VARCHAR(20) DEFAULT NULL,
		name VARCHAR(100) NOT NULL,
		password_hash VARCHAR(191) NOT NULL DEFAULT '',
		credits INT NOT NULL DEFAULT 150,
		free_generations_used INT NOT NULL DEFAULT 0,
		is_pro_user TINYINT(1) NOT NULL DEFAULT 0,
		subscription_plan VARCHAR(20) NOT NULL DEFAULT 'Free',
		subscription_start_date DATETIME NULL,
		subscription_end_date DATETIME NULL,
		reset_token VARCHAR(191) DEFAULT NULL,
		reset_token_expiry DATETIME NULL,
		otp VARCHAR(10) DEFAULT NULL,
		otp_expiry DATETIME NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createAccounts); err != nil {
		return err
	}
	_, _ = db.Exec("CREATE INDEX idx_accounts_mobile ON accounts (mobile)")
	_, _ = db.Exec("CREATE INDEX idx_accounts_reset_token ON accounts (reset_token)")

	// Append-only charge/grant ledger; rows are never updated or deleted.
	createPaymentEvents := `
	CREATE TABLE IF NOT EXISTS payment_events (
		id INT AUTO_INCREMENT PRIMARY KEY,
		account_id INT NOT NULL,
		event VARCHAR(32) NOT NULL,
		plan VARCHAR(20) NOT NULL DEFAULT '',
		order_id VARCHAR(64) NOT NULL DEFAULT '',
		payment_id VARCHAR(64) NOT NULL DEFAULT '',
		amount INT NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_payment_events_account (account_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	if _, err := db.Exec(createPaymentEvents); err != nil {
		return err
	}
	return nil
}
