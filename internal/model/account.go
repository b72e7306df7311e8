package model

import "time"

// Account represents a storefront customer as stored in the `accounts`
// table.  The password hash is kept out of JSON serialization entirely so
// no handler can leak it by returning the struct directly.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique email address, normalized to lower case.
//  PasswordHash – bcrypt hashed password (never serialized).
//  FirstName    – given name.
//  LastName     – family name.
//  Phone        – optional contact number.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Account struct {
    ID           uint64    `json:"id"`         // accounts.id
    Email        string    `json:"email"`      // accounts.email
    PasswordHash string    `json:"-"`          // accounts.password_hash
    FirstName    string    `json:"first_name"` // accounts.first_name
    LastName     string    `json:"last_name"`  // accounts.last_name
    Phone        *string   `json:"phone"`      // accounts.phone (nullable)
    CreatedAt    time.Time `json:"created_at"` // accounts.created_at
    UpdatedAt    time.Time `json:"updated_at"` // accounts.updated_at
}

// Session models an entry in the `sessions` table.  One row per storefront
// login; the plain token is not stored, only its SHA-256 hash.  Logout
// deletes the row, which is the only revocation mechanism for sessions.
type Session struct {
    ID        uint64    // sessions.id
    AccountID uint64    // sessions.account_id
    TokenHash string    // sessions.token_hash
    ExpiresAt time.Time // sessions.expires_at
    CreatedAt time.Time // sessions.created_at
}

// Address is a shipping address captured alongside an order.
type Address struct {
    ID         uint64  `json:"id"`
    AccountID  uint64  `json:"account_id"`
    Line1      string  `json:"address_line1"`
    Line2      *string `json:"address_line2"`
    City       string  `json:"city"`
    State      *string `json:"state"`
    PostalCode string  `json:"postal_code"`
    Country    string  `json:"country"`
}
