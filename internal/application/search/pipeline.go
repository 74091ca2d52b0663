// Package search compone los tres criterios de selección de la vista de
// inventario — subconjunto de marcas, búsqueda difusa por nombre y filtro de
// estado — en un único resultado ordenado y determinista.
package search

import (
	"sort"

	"github.com/backbar-app/backbar-api/internal/domain/entity"
	"github.com/backbar-app/backbar-api/internal/domain/stock"
)

// DefaultThreshold umbral de similitud por defecto de la búsqueda difusa.
const DefaultThreshold = 0.49

// Status filtro de estado derivado.
type Status string

// Valores válidos de Status. Cadena vacía = sin filtro.
const (
	StatusLowStock   Status = "low_stock"
	StatusOutOfStock Status = "out_of_stock"
)

// IsValid indica si el filtro de estado es reconocido (vacío incluido).
func (s Status) IsValid() bool {
	return s == "" || s == StatusLowStock || s == StatusOutOfStock
}

// Criteria criterios independientes y ortogonales de la consulta. El valor
// cero de cada campo significa "sin restricción".
type Criteria struct {
	Brands []entity.Brand
	Query  string
	Status Status
}

// Pipeline evalúa los criterios en orden fijo: marca → texto → estado.
type Pipeline struct {
	threshold float64
}

// NewPipeline construye el pipeline con el umbral de similitud dado;
// un umbral <= 0 usa DefaultThreshold.
func NewPipeline(threshold float64) *Pipeline {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Pipeline{threshold: threshold}
}

// Apply evalúa los criterios sobre la colección fuente completa. Nunca parte
// del resultado anterior: limpiar un criterio restaura el efecto de los otros
// dos sin reaplicarlos, evitando truncamientos dependientes del orden.
//
// Una consulta vacía omite la etapa de texto y conserva el orden de entrada;
// con consulta, los items quedan en orden de relevancia descendente (empates
// conservan el orden de la fuente). El filtro de estado se aplica después de
// la búsqueda, de modo que solo estrecha lo que la búsqueda ya devolvió.
// Un resultado vacío es válido, no un error.
func (p *Pipeline) Apply(items []*entity.StockItem, cr Criteria) []*entity.StockItem {
	out := make([]*entity.StockItem, 0, len(items))
	out = append(out, items...)

	if len(cr.Brands) > 0 {
		out = filterBrands(out, cr.Brands)
	}
	if cr.Query != "" {
		out = p.searchByName(out, cr.Query)
	}
	if cr.Status != "" {
		out = filterStatus(out, cr.Status)
	}
	return out
}

func filterBrands(items []*entity.StockItem, brands []entity.Brand) []*entity.StockItem {
	allowed := make(map[entity.Brand]bool, len(brands))
	for _, b := range brands {
		allowed[b] = true
	}
	out := items[:0]
	for _, item := range items {
		if allowed[item.Brand] {
			out = append(out, item)
		}
	}
	return out
}

func (p *Pipeline) searchByName(items []*entity.StockItem, query string) []*entity.StockItem {
	type scored struct {
		item  *entity.StockItem
		score float64
	}
	matches := make([]scored, 0, len(items))
	for _, item := range items {
		if s := score(query, item.Name); s <= p.threshold {
			matches = append(matches, scored{item: item, score: s})
		}
	}
	// Relevancia descendente; SliceStable conserva el orden de la fuente
	// para puntuaciones iguales.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score < matches[j].score
	})
	out := make([]*entity.StockItem, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.item)
	}
	return out
}

func filterStatus(items []*entity.StockItem, status Status) []*entity.StockItem {
	out := items[:0]
	for _, item := range items {
		switch status {
		case StatusLowStock:
			if stock.IsLowStock(item) {
				out = append(out, item)
			}
		case StatusOutOfStock:
			if stock.IsOutOfStock(item) {
				out = append(out, item)
			}
		}
	}
	return out
}
