package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/backbar-app/backbar-api/internal/application/cache"
	"github.com/backbar-app/backbar-api/internal/application/dto"
	"github.com/backbar-app/backbar-api/internal/application/notify"
	"github.com/backbar-app/backbar-api/internal/application/search"
	"github.com/backbar-app/backbar-api/internal/application/validate"
	"github.com/backbar-app/backbar-api/internal/domain"
	"github.com/backbar-app/backbar-api/internal/domain/entity"
	"github.com/backbar-app/backbar-api/internal/domain/repository"
	"github.com/backbar-app/backbar-api/internal/domain/stock"
	"github.com/backbar-app/backbar-api/pkg/logger"
)

// ItemUseCase casos de uso del inventario: consultas vía caché + pipeline y
// mutaciones de stock con historial auditable.
//
// Las mutaciones de stock de un mismo item se serializan con un lock por
// item: cada una relee el snapshot persistido más reciente antes de calcular
// su delta, de modo que pulsaciones rápidas consecutivas ni pierden ni
// duplican decrementos. Toda mutación exitosa termina invalidando la caché
// del owner; nunca se parchea la caché de forma optimista.
type ItemUseCase struct {
	repo     repository.ItemRepository
	items    *cache.Store
	pipeline *search.Pipeline
	events   *notify.ItemEvents
	log      *logger.Logger

	locks sync.Map // itemID → *sync.Mutex
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(repo repository.ItemRepository, items *cache.Store, pipeline *search.Pipeline, events *notify.ItemEvents, log *logger.Logger) *ItemUseCase {
	return &ItemUseCase{repo: repo, items: items, pipeline: pipeline, events: events, log: log}
}

// List devuelve el resultado ordenado del pipeline sobre la vista cacheada
// del owner, más los contadores de stock bajo/agotado de la colección
// completa y el flag de refresh. Con refresh=true fuerza el refetch.
func (uc *ItemUseCase) List(ownerID string, cr search.Criteria, refresh bool) (*dto.ItemListResponse, error) {
	var (
		all []*entity.StockItem
		err error
	)
	if refresh {
		all, err = uc.items.Refresh(ownerID)
	} else {
		all, err = uc.items.Get(ownerID)
	}
	if err != nil {
		return nil, err
	}

	filtered := uc.pipeline.Apply(all, cr)
	out := &dto.ItemListResponse{
		Items:      make([]dto.ItemResponse, 0, len(filtered)),
		Refreshing: uc.items.IsRefreshing(ownerID),
	}
	for _, item := range filtered {
		out.Items = append(out.Items, dto.ToItemResponse(item))
	}
	for _, item := range all {
		if stock.IsLowStock(item) {
			out.LowStockCount++
		}
		if stock.IsOutOfStock(item) {
			out.OutOfStockCount++
		}
	}
	return out, nil
}

// Create valida y persiste un item nuevo: DateCreated = ahora, historial
// vacío, owner actual. La validación detiene la mutación antes de cualquier
// llamada remota. Devuelve la identidad nueva y emite la notificación de
// creación.
func (uc *ItemUseCase) Create(ownerID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if err := validate.Create(in); err != nil {
		return nil, err
	}
	item := &entity.StockItem{
		ID:                uuid.New().String(),
		OwnerID:           ownerID,
		Name:              in.Name,
		Brand:             entity.Brand(in.Brand),
		Quantity:          in.Quantity,
		QuantityInStock:   in.QuantityInStock,
		LowStockThreshold: in.LowStockThreshold,
		DateCreated:       time.Now(),
		Changes:           []entity.HistoryChange{},
	}
	if err := uc.repo.Create(item); err != nil {
		uc.log.Error().Err(err).Str("owner_id", ownerID).Msg("crear item")
		return nil, err
	}
	uc.items.Invalidate(ownerID)
	uc.events.Publish(notify.ItemEvent{Type: notify.EventItemCreated, Item: item})
	resp := dto.ToItemResponse(item)
	return &resp, nil
}

// IncreaseStock incrementa las existencias en exactamente 1 y añade una
// entrada al historial, persistiendo ambos campos como una única escritura
// de documento.
func (uc *ItemUseCase) IncreaseStock(ownerID, itemID string) (*dto.ItemResponse, error) {
	return uc.adjustStock(ownerID, itemID, +1)
}

// DecreaseStock decrementa las existencias en 1 con piso en cero: decrementar
// en cero completa sin error, sin escritura y sin entrada de historial.
func (uc *ItemUseCase) DecreaseStock(ownerID, itemID string) (*dto.ItemResponse, error) {
	return uc.adjustStock(ownerID, itemID, -1)
}

func (uc *ItemUseCase) adjustStock(ownerID, itemID string, delta int) (*dto.ItemResponse, error) {
	mu := uc.itemLock(itemID)
	mu.Lock()
	defer mu.Unlock()

	item, err := uc.ownedItem(ownerID, itemID)
	if err != nil {
		return nil, err
	}

	next := item.QuantityInStock + delta
	if next < 0 {
		next = 0
	}
	if next == item.QuantityInStock {
		// Piso alcanzado: no-op silencioso, no se registra cambio.
		resp := dto.ToItemResponse(item)
		return &resp, nil
	}

	changeType := entity.ChangeIncreasedQuantity
	if delta < 0 {
		changeType = entity.ChangeDecreasedQuantity
	}
	// Copia del historial: la secuencia existente nunca se muta en sitio.
	changes := make([]entity.HistoryChange, 0, len(item.Changes)+1)
	changes = append(changes, item.Changes...)
	changes = append(changes, entity.HistoryChange{
		ChangeType:    changeType,
		Value:         next,
		PreviousValue: item.QuantityInStock,
		Date:          time.Now(),
	})

	if err := uc.repo.UpdateStock(itemID, next, changes); err != nil {
		// Fallo de transporte: el estado queda sin cambios y la caché no se
		// invalida; el reintento es del usuario.
		uc.log.Error().Err(err).Str("item_id", itemID).Msg("actualizar stock")
		return nil, err
	}

	item.QuantityInStock = next
	item.Changes = changes
	uc.items.Invalidate(ownerID)
	resp := dto.ToItemResponse(item)
	return &resp, nil
}

// Edit valida y persiste únicamente name, brand, low_stock_threshold y
// quantity. Nunca toca quantity_in_stock ni changes.
func (uc *ItemUseCase) Edit(ownerID, itemID string, in dto.EditItemRequest) (*dto.ItemResponse, error) {
	if err := validate.Edit(in); err != nil {
		return nil, err
	}
	item, err := uc.ownedItem(ownerID, itemID)
	if err != nil {
		return nil, err
	}

	item.Name = in.Name
	item.Brand = entity.Brand(in.Brand)
	item.Quantity = in.Quantity
	item.LowStockThreshold = in.LowStockThreshold
	if err := uc.repo.Update(item); err != nil {
		uc.log.Error().Err(err).Str("item_id", itemID).Msg("editar item")
		return nil, err
	}
	uc.items.Invalidate(ownerID)
	resp := dto.ToItemResponse(item)
	return &resp, nil
}

// Delete elimina el item del owner e invalida su caché.
func (uc *ItemUseCase) Delete(ownerID, itemID string) error {
	if _, err := uc.ownedItem(ownerID, itemID); err != nil {
		return err
	}
	if err := uc.repo.Delete(itemID); err != nil {
		uc.log.Error().Err(err).Str("item_id", itemID).Msg("eliminar item")
		return err
	}
	uc.items.Invalidate(ownerID)
	return nil
}

// ownedItem carga el item verificando que pertenece al owner. Un item ajeno
// se reporta como no encontrado para no filtrar existencia.
func (uc *ItemUseCase) ownedItem(ownerID, itemID string) (*entity.StockItem, error) {
	item, err := uc.repo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (uc *ItemUseCase) itemLock(itemID string) *sync.Mutex {
	mu, _ := uc.locks.LoadOrStore(itemID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
