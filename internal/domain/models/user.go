package models

import "time"

// User представляет пользователя
type User struct {
	ID       string
	Email    string
	PassHash []byte
}

// Роли профиля
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Profile — публичные данные пользователя и его роль
type Profile struct {
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      string    `json:"role"`
	UpdatedAt time.Time `json:"updated_at"`
}
