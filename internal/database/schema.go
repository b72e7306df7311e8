package database

// schema.go creates the tables the service needs on startup and seeds the
// default admin account.  Statements are idempotent (CREATE TABLE IF NOT
// EXISTS) so restarting against an existing database is safe.

import (
	"context"
	"database/sql"
	"log"

	"golang.org/x/crypto/bcrypt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		phone VARCHAR(40) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS admin_users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		full_name VARCHAR(255) NOT NULL,
		role ENUM('admin','content_editor') NOT NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		last_login DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		account_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES admin_users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id VARCHAR(100) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NULL,
		category VARCHAR(100) NOT NULL,
		product_type ENUM('supplement','research') NOT NULL,
		disclaimer TEXT NOT NULL,
		image VARCHAR(500) NULL,
		supplement_facts TEXT NULL,
		in_stock TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_products_category (category),
		INDEX idx_products_type (product_type)
	)`,
	`CREATE TABLE IF NOT EXISTS product_dosages (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		product_id VARCHAR(100) NOT NULL,
		size VARCHAR(100) NOT NULL,
		capsules INT NULL,
		price_usd DECIMAL(10,2) NOT NULL,
		price_eur DECIMAL(10,2) NOT NULL,
		FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS addresses (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		account_id BIGINT UNSIGNED NOT NULL,
		address_line1 VARCHAR(255) NOT NULL,
		address_line2 VARCHAR(255) NULL,
		city VARCHAR(100) NOT NULL,
		state VARCHAR(100) NULL,
		postal_code VARCHAR(20) NOT NULL,
		country VARCHAR(100) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		account_id BIGINT UNSIGNED NULL,
		order_number VARCHAR(40) NOT NULL UNIQUE,
		status VARCHAR(30) NOT NULL DEFAULT 'pending',
		subtotal_usd DECIMAL(10,2) NOT NULL,
		subtotal_eur DECIMAL(10,2) NOT NULL,
		shipping_usd DECIMAL(10,2) NOT NULL,
		shipping_eur DECIMAL(10,2) NOT NULL,
		tax_usd DECIMAL(10,2) NOT NULL,
		tax_eur DECIMAL(10,2) NOT NULL,
		total_usd DECIMAL(10,2) NOT NULL,
		total_eur DECIMAL(10,2) NOT NULL,
		currency CHAR(3) NOT NULL DEFAULT 'USD',
		payment_intent_id VARCHAR(255) NULL,
		payment_status VARCHAR(30) NOT NULL DEFAULT 'pending',
		shipping_address_id BIGINT UNSIGNED NULL,
		notes TEXT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_orders_account (account_id),
		FOREIGN KEY (shipping_address_id) REFERENCES addresses(id)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT UNSIGNED NOT NULL,
		product_id VARCHAR(100) NOT NULL,
		product_name VARCHAR(255) NOT NULL,
		dosage VARCHAR(100) NOT NULL,
		quantity INT NOT NULL,
		price_usd DECIMAL(10,2) NOT NULL,
		price_eur DECIMAL(10,2) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		user_email VARCHAR(255) NOT NULL,
		action VARCHAR(60) NOT NULL,
		entity_type VARCHAR(60) NOT NULL,
		entity_id VARCHAR(100) NOT NULL,
		changes JSON NULL,
		ip_address VARCHAR(64) NULL,
		user_agent VARCHAR(500) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_audit_logs_user (user_id),
		INDEX idx_audit_logs_entity (entity_type, entity_id),
		INDEX idx_audit_logs_created (created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS api_keys (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		key_hash CHAR(64) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		permissions JSON NOT NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_by BIGINT UNSIGNED NOT NULL,
		last_used DATETIME NULL,
		expires_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (created_by) REFERENCES admin_users(id)
	)`,
}

// EnsureSchema creates all tables and seeds the default admin user when no
// admin exists yet.  The seed password comes from ADMIN_DEFAULT_PASSWORD via
// config; when empty a placeholder is used and logged so the operator sees it.
func EnsureSchema(ctx context.Context, db *sql.DB, adminPassword string, bcryptCost int) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return seedDefaultAdmin(ctx, db, adminPassword, bcryptCost)
}

const defaultAdminEmail = "admin@purefirenutritional.com"

func seedDefaultAdmin(ctx context.Context, db *sql.DB, password string, cost int) error {
	var id uint64
	err := db.QueryRowContext(ctx,
		"SELECT id FROM admin_users WHERE email=? LIMIT 1", defaultAdminEmail).Scan(&id)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}
	if password == "" {
		password = "ChangeMe123!"
		log.Printf("seeding default admin %s with the placeholder password; change it immediately", defaultAdminEmail)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		"INSERT INTO admin_users (email, password_hash, full_name, role) VALUES (?,?,?,?)",
		defaultAdminEmail, string(hash), "System Administrator", "admin")
	return err
}
