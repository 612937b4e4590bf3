package models

// CartLine — строка корзины: снимок товара плюс количество и выбранный вариант.
// Ключ строки только ID товара, размер и цвет в ключ не входят.
type CartLine struct {
	Product
	Quantity      int    `json:"quantity"`
	SelectedSize  string `json:"selected_size,omitempty"`
	SelectedColor string `json:"selected_color,omitempty"`
}

// Subtotal возвращает цену строки с учетом скидки.
func (l CartLine) Subtotal() float64 {
	return l.UnitPrice() * float64(l.Quantity)
}

// CartItemRow — строка таблицы cart_items, зеркало строки корзины.
type CartItemRow struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}
