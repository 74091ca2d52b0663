package repository

import "github.com/backbar-app/backbar-api/internal/domain/entity"

// ItemRepository define el puerto de persistencia para StockItem (DIP).
//
// Cada escritura es una actualización atómica de un solo documento: o se
// aplican todos los campos indicados o ninguno. UpdateStock reescribe la
// secuencia changes completa (no hay merge parcial a nivel de array).
type ItemRepository interface {
	Create(item *entity.StockItem) error
	GetByID(id string) (*entity.StockItem, error)
	// ListByOwner devuelve los items del owner ordenados por nombre ascendente.
	ListByOwner(ownerID string) ([]*entity.StockItem, error)
	// UpdateStock persiste únicamente quantity_in_stock y el historial completo.
	UpdateStock(id string, quantityInStock int, changes []entity.HistoryChange) error
	// Update persiste únicamente name, brand, quantity y low_stock_threshold.
	// Nunca toca quantity_in_stock ni changes.
	Update(item *entity.StockItem) error
	Delete(id string) error
}
