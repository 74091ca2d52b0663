package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/backbar-app/backbar-api/internal/domain"
	"github.com/backbar-app/backbar-api/internal/domain/entity"
	"github.com/backbar-app/backbar-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL.
//
// El historial se guarda inline en el documento del item (columna JSONB
// changes): cada mutación de stock reescribe la secuencia completa en la
// misma sentencia que actualiza quantity_in_stock, de modo que la escritura
// del documento es atómica y nunca hay merge parcial del array.
type ItemRepo struct {
	pool *pgxpool.Pool
}

// NewItemRepository construye el adaptador de persistencia para items.
func NewItemRepository(pool *pgxpool.Pool) *ItemRepo {
	return &ItemRepo{pool: pool}
}

// Create persiste un item nuevo con historial vacío.
func (r *ItemRepo) Create(item *entity.StockItem) error {
	query := `
		INSERT INTO items (id, owner_id, name, brand, quantity, quantity_in_stock, low_stock_threshold, date_created, changes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(context.Background(), query,
		item.ID, item.OwnerID, item.Name, string(item.Brand),
		item.Quantity, item.QuantityInStock, item.LowStockThreshold,
		item.DateCreated, item.Changes,
	)
	if err != nil {
		// Una violación de unicidad aquí es una colisión de UUID generado
		// por el servidor, no un error del cliente: se propaga como fallo
		// de infraestructura.
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByID obtiene un item por ID.
func (r *ItemRepo) GetByID(id string) (*entity.StockItem, error) {
	query := `
		SELECT id, owner_id, name, brand, quantity, quantity_in_stock, low_stock_threshold, date_created, changes
		FROM items WHERE id = $1`
	var it entity.StockItem
	err := r.pool.QueryRow(context.Background(), query, id).Scan(
		&it.ID, &it.OwnerID, &it.Name, &it.Brand, &it.Quantity,
		&it.QuantityInStock, &it.LowStockThreshold, &it.DateCreated, &it.Changes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	if it.Changes == nil {
		it.Changes = []entity.HistoryChange{}
	}
	return &it, nil
}

// ListByOwner lista los items del owner ordenados por nombre ascendente.
func (r *ItemRepo) ListByOwner(ownerID string) ([]*entity.StockItem, error) {
	query := `
		SELECT id, owner_id, name, brand, quantity, quantity_in_stock, low_stock_threshold, date_created, changes
		FROM items WHERE owner_id = $1 ORDER BY name ASC`
	rows, err := r.pool.Query(context.Background(), query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockItem
	for rows.Next() {
		var it entity.StockItem
		if err := rows.Scan(&it.ID, &it.OwnerID, &it.Name, &it.Brand, &it.Quantity,
			&it.QuantityInStock, &it.LowStockThreshold, &it.DateCreated, &it.Changes); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if it.Changes == nil {
			it.Changes = []entity.HistoryChange{}
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// UpdateStock persiste quantity_in_stock y el historial completo como una
// única escritura de documento.
func (r *ItemRepo) UpdateStock(id string, quantityInStock int, changes []entity.HistoryChange) error {
	cmd, err := r.pool.Exec(context.Background(),
		`UPDATE items SET quantity_in_stock = $2, changes = $3 WHERE id = $1`,
		id, quantityInStock, changes,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Update actualiza únicamente name, brand, quantity y low_stock_threshold.
// Nunca toca quantity_in_stock ni changes.
func (r *ItemRepo) Update(item *entity.StockItem) error {
	cmd, err := r.pool.Exec(context.Background(),
		`UPDATE items SET name = $2, brand = $3, quantity = $4, low_stock_threshold = $5 WHERE id = $1`,
		item.ID, item.Name, string(item.Brand), item.Quantity, item.LowStockThreshold,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un item por ID.
func (r *ItemRepo) Delete(id string) error {
	_, err := r.pool.Exec(context.Background(), `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}
