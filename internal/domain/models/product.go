package models

import "time"

// Product представляет товар каталога.
// Для корзины и избранного это неизменяемый снимок.
type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Price       int        `json:"price"` // цена в целых единицах валюты (DZD)
	Category    string     `json:"category"`
	Discount    *int       `json:"discount,omitempty"` // процент скидки 0..100
	IsNew       bool       `json:"is_new,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	Sizes       []string   `json:"sizes,omitempty"`
	Colors      []string   `json:"colors,omitempty"`
	Image       string     `json:"image"`
	Images      []string   `json:"images,omitempty"`
}

// Категории каталога
const (
	CategoryAll   = "all"
	CategoryMen   = "men"
	CategoryWomen = "women"
	CategoryKids  = "kids"
	CategoryNew   = "new"
	CategorySale  = "sale"
)

// DiscountPercent возвращает скидку или 0, если она не задана.
func (p Product) DiscountPercent() int {
	if p.Discount == nil {
		return 0
	}
	return *p.Discount
}

// UnitPrice возвращает цену единицы с учетом скидки, без округления.
// Округление до отображаемой единицы делается только при показе.
func (p Product) UnitPrice() float64 {
	d := p.DiscountPercent()
	if d == 0 {
		return float64(p.Price)
	}
	return float64(p.Price) * (1 - float64(d)/100)
}
