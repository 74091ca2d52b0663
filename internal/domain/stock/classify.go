// Package stock contiene las clasificaciones derivadas del estado de un item.
// Son funciones puras sobre un snapshot: se recalculan en cada lectura y nunca
// se persisten.
package stock

import "github.com/backbar-app/backbar-api/internal/domain/entity"

// IsOutOfStock indica si el item está agotado (existencias en cero).
func IsOutOfStock(item *entity.StockItem) bool {
	return item.QuantityInStock == 0
}

// IsLowStock indica si el item está en stock bajo: existencias por encima de
// cero pero en o por debajo del umbral configurado. Agotado tiene precedencia:
// un item en cero nunca se reporta además como stock bajo.
func IsLowStock(item *entity.StockItem) bool {
	if IsOutOfStock(item) {
		return false
	}
	return item.QuantityInStock <= item.LowStockThreshold
}
