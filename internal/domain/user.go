package domain

import "time"

// User is an investor account. Authentication and KYC live outside this
// service; the orchestrator only needs identity and contact details.
type User struct {
	ID        string
	Email     string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// UserProfile carries the investor's extended details. WalletAddress is the
// fallback mint target when an investment was created without one.
type UserProfile struct {
	UserID        string
	WalletAddress string
	Phone         string
	Country       string
	UpdatedAt     time.Time
}
