package models

import (
	"strings"
	"time"
)

// Address представляет адрес доставки пользователя
type Address struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	Wilaya       string    `json:"wilaya"`
	Commune      string    `json:"commune,omitempty"`
	AddressLine1 string    `json:"address_line1"`
	Label        string    `json:"label,omitempty"`
	IsDefault    bool      `json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
}

// String собирает адрес в одну строку для денормализации в заказ.
func (a Address) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.AddressLine1, a.Commune, a.Wilaya} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
