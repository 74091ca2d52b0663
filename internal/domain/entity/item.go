package entity

import "time"

// Brand marca de producto de backbar. Enumeración fija: la validación rechaza
// cualquier valor fuera de Brands tanto al crear como al editar.
type Brand string

// Marcas válidas para un StockItem.
const (
	BrandRhapsody             Brand = "Rhapsody"
	BrandShadesEQ             Brand = "Shades EQ"
	BrandFaction8             Brand = "Faction8"
	BrandHighSpeedToners      Brand = "High Speed Toners"
	BrandBlondeVoyagePowder   Brand = "Blonde Voyage Powder Lightener"
	BrandBlondeVoyageClay     Brand = "Blonde Voyage Clay Lightener"
)

// Brands lista de marcas válidas, en el orden en que se presentan al usuario.
var Brands = []Brand{
	BrandRhapsody,
	BrandShadesEQ,
	BrandFaction8,
	BrandHighSpeedToners,
	BrandBlondeVoyagePowder,
	BrandBlondeVoyageClay,
}

// IsValid indica si la marca pertenece a la enumeración.
func (b Brand) IsValid() bool {
	for _, v := range Brands {
		if b == v {
			return true
		}
	}
	return false
}

// Tipos de cambio de stock registrados en el historial.
const (
	ChangeIncreasedQuantity = "increasedQuantity"
	ChangeDecreasedQuantity = "decreasedQuantity"
)

// HistoryChange entrada del historial de cambios de stock de un item.
// El historial es append-only: nunca se edita ni se elimina una entrada, y el
// orden de inserción es el orden cronológico.
//
// Los tags JSON corresponden al formato del documento persistido (columna
// JSONB changes).
type HistoryChange struct {
	ChangeType    string    `json:"changeType"` // increasedQuantity | decreasedQuantity
	Value         int       `json:"value"`         // stock resultante tras el cambio
	PreviousValue int       `json:"previousValue"` // stock antes del cambio
	Date          time.Time `json:"date"`
}

// StockItem item de inventario con su stock actual, objetivo de stock lleno y
// historial de mutaciones. Cada item pertenece exclusivamente a un owner:
// las consultas solo devuelven items del usuario autenticado.
type StockItem struct {
	ID                string
	OwnerID           string
	Name              string
	Brand             Brand
	Quantity          int // objetivo de "stock lleno", siempre >= 1
	QuantityInStock   int // existencias actuales, nunca negativo
	LowStockThreshold int
	DateCreated       time.Time
	Changes           []HistoryChange
}
