// Package cart держит корзину сессии в памяти и зеркалирует её изменения
// в удаленное хранилище по принципу "отправил и забыл".
package cart

import "github.com/linemk/storefront/internal/domain/models"

// Cart — чистый редьюсер корзины без ввода-вывода.
// Не безопасен для конкурентного использования, синхронизацию обеспечивает Store.
type Cart struct {
	lines []models.CartLine
}

// New создаёт корзину из готовых строк.
func New(lines ...models.CartLine) *Cart {
	c := &Cart{}
	c.Replace(lines)
	return c
}

// Add увеличивает количество строки с тем же товаром на 1 или добавляет новую строку.
// Размер и цвет не входят в ключ: у существующей строки остается вариант первого добавления.
func (c *Cart) Add(product models.Product, size, color string) (models.CartLine, bool) {
	if i := c.index(product.ID); i >= 0 {
		c.lines[i].Quantity++
		return c.lines[i], false
	}
	line := models.CartLine{
		Product:       product,
		Quantity:      1,
		SelectedSize:  size,
		SelectedColor: color,
	}
	c.lines = append(c.lines, line)
	return line, true
}

// Remove удаляет строку товара. Удаление отсутствующей строки ничего не делает.
func (c *Cart) Remove(productID string) (models.CartLine, bool) {
	i := c.index(productID)
	if i < 0 {
		return models.CartLine{}, false
	}
	removed := c.lines[i]
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return removed, true
}

// SetQuantity перезаписывает количество; quantity <= 0 равносильно Remove.
// Возвращает false, если строки нет.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	if quantity <= 0 {
		_, ok := c.Remove(productID)
		return ok
	}
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.lines[i].Quantity = quantity
	return true
}

// Clear очищает корзину.
func (c *Cart) Clear() {
	c.lines = nil
}

// Replace заменяет содержимое, отбрасывая строки с неположительным количеством
// и повторы одного товара.
func (c *Cart) Replace(lines []models.CartLine) {
	c.lines = make([]models.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 || c.index(l.ID) >= 0 {
			continue
		}
		c.lines = append(c.lines, l)
	}
}

// Lines возвращает копию строк.
func (c *Cart) Lines() []models.CartLine {
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total считает сумму (цена со скидкой × количество) без округления.
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// Count возвращает сумму количеств, а не число строк.
func (c *Cart) Count() int {
	var n int
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Len возвращает число строк.
func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) index(productID string) int {
	for i := range c.lines {
		if c.lines[i].ID == productID {
			return i
		}
	}
	return -1
}
