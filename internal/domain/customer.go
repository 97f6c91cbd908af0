package domain

import "time"

type Customer struct {
	ID           int64     `json:"id"`
	LoginID      string    `json:"login_id"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	RegisteredAt time.Time `json:"registered_at"`
	Active       bool      `json:"active"`
}
