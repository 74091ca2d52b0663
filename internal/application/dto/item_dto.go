package dto

import (
	"time"

	"github.com/backbar-app/backbar-api/internal/domain/entity"
	"github.com/backbar-app/backbar-api/internal/domain/stock"
)

// CreateItemRequest body para POST /api/items.
// Las reglas de validación viven en internal/application/validate.
type CreateItemRequest struct {
	Name              string `json:"name" validate:"required"`
	Brand             string `json:"brand" validate:"required,brand"`
	Quantity          int    `json:"quantity" validate:"min=1"`
	QuantityInStock   int    `json:"quantity_in_stock" validate:"min=0"`
	LowStockThreshold int    `json:"low_stock_threshold" validate:"min=0"`
}

// EditItemRequest body para PUT /api/items/:id. Omite quantity_in_stock:
// el stock actual solo cambia vía increase/decrease, nunca por edición.
type EditItemRequest struct {
	Name              string `json:"name" validate:"required"`
	Brand             string `json:"brand" validate:"required,brand"`
	Quantity          int    `json:"quantity" validate:"min=1"`
	LowStockThreshold int    `json:"low_stock_threshold" validate:"min=0"`
}

// HistoryChangeDTO entrada del historial en la forma de transporte.
type HistoryChangeDTO struct {
	ChangeType    string    `json:"change_type"`
	Value         int       `json:"value"`
	PreviousValue int       `json:"previous_value"`
	Date          time.Time `json:"date"`
}

// ItemResponse forma de transporte de un StockItem. Incluye las
// clasificaciones derivadas, recalculadas en cada lectura.
type ItemResponse struct {
	ID                string             `json:"id"`
	OwnerID           string             `json:"owner_id"`
	Name              string             `json:"name"`
	Brand             string             `json:"brand"`
	Quantity          int                `json:"quantity"`
	QuantityInStock   int                `json:"quantity_in_stock"`
	LowStockThreshold int                `json:"low_stock_threshold"`
	DateCreated       time.Time          `json:"date_created"`
	Changes           []HistoryChangeDTO `json:"changes"`
	LowStock          bool               `json:"low_stock"`
	OutOfStock        bool               `json:"out_of_stock"`
}

// ItemListResponse respuesta de GET /api/items: resultado ordenado del
// pipeline de filtros más los contadores y flags de la vista.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	// Contadores sobre la colección completa del owner (no sobre el filtrado).
	LowStockCount   int `json:"low_stock_count"`
	OutOfStockCount int `json:"out_of_stock_count"`
	// Refreshing refleja el flag transitorio del refetch forzado (mínimo ~700ms).
	Refreshing bool `json:"refreshing"`
}

// ToItemResponse convierte la entidad a su forma de transporte.
func ToItemResponse(item *entity.StockItem) ItemResponse {
	changes := make([]HistoryChangeDTO, 0, len(item.Changes))
	for _, ch := range item.Changes {
		changes = append(changes, HistoryChangeDTO{
			ChangeType:    ch.ChangeType,
			Value:         ch.Value,
			PreviousValue: ch.PreviousValue,
			Date:          ch.Date,
		})
	}
	return ItemResponse{
		ID:                item.ID,
		OwnerID:           item.OwnerID,
		Name:              item.Name,
		Brand:             string(item.Brand),
		Quantity:          item.Quantity,
		QuantityInStock:   item.QuantityInStock,
		LowStockThreshold: item.LowStockThreshold,
		DateCreated:       item.DateCreated,
		Changes:           changes,
		LowStock:          stock.IsLowStock(item),
		OutOfStock:        stock.IsOutOfStock(item),
	}
}

// ToStockItem reconstruye la entidad desde la forma de transporte
// (campo a campo, incluyendo el historial completo).
func ToStockItem(in ItemResponse) *entity.StockItem {
	changes := make([]entity.HistoryChange, 0, len(in.Changes))
	for _, ch := range in.Changes {
		changes = append(changes, entity.HistoryChange{
			ChangeType:    ch.ChangeType,
			Value:         ch.Value,
			PreviousValue: ch.PreviousValue,
			Date:          ch.Date,
		})
	}
	return &entity.StockItem{
		ID:                in.ID,
		OwnerID:           in.OwnerID,
		Name:              in.Name,
		Brand:             entity.Brand(in.Brand),
		Quantity:          in.Quantity,
		QuantityInStock:   in.QuantityInStock,
		LowStockThreshold: in.LowStockThreshold,
		DateCreated:       in.DateCreated,
		Changes:           changes,
	}
}
