package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backbar-app/backbar-api/internal/application/cache"
	"github.com/backbar-app/backbar-api/internal/application/dto"
	"github.com/backbar-app/backbar-api/internal/application/notify"
	"github.com/backbar-app/backbar-api/internal/application/search"
	"github.com/backbar-app/backbar-api/internal/application/usecase"
	"github.com/backbar-app/backbar-api/internal/domain"
	"github.com/backbar-app/backbar-api/internal/domain/entity"
	"github.com/backbar-app/backbar-api/internal/domain/repository"
	apphttp "github.com/backbar-app/backbar-api/internal/interfaces/http"
	"github.com/backbar-app/backbar-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorio fake en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memItemRepo struct {
	mu    sync.Mutex
	items map[string]*entity.StockItem
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: map[string]*entity.StockItem{}}
}

func cloneItem(it *entity.StockItem) *entity.StockItem {
	cp := *it
	cp.Changes = append([]entity.HistoryChange(nil), it.Changes...)
	return &cp
}

func (r *memItemRepo) Create(item *entity.StockItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = cloneItem(item)
	return nil
}

func (r *memItemRepo) GetByID(id string) (*entity.StockItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return cloneItem(it), nil
}

func (r *memItemRepo) ListByOwner(ownerID string) ([]*entity.StockItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.StockItem
	for _, it := range r.items {
		if it.OwnerID == ownerID {
			out = append(out, cloneItem(it))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memItemRepo) UpdateStock(id string, quantityInStock int, changes []entity.HistoryChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.QuantityInStock = quantityInStock
	it.Changes = append([]entity.HistoryChange(nil), changes...)
	return nil
}

func (r *memItemRepo) Update(item *entity.StockItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[item.ID]
	if !ok {
		return domain.ErrNotFound
	}
	it.Name = item.Name
	it.Brand = item.Brand
	it.Quantity = item.Quantity
	it.LowStockThreshold = item.LowStockThreshold
	return nil
}

func (r *memItemRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// seed inserta un item directo en el repo (sin pasar por el caso de uso).
func (r *memItemRepo) seed(ownerID, name string, brand entity.Brand, qty, threshold int) *entity.StockItem {
	it := &entity.StockItem{
		ID:                "item-" + strings.ReplaceAll(name, " ", "-"),
		OwnerID:           ownerID,
		Name:              name,
		Brand:             brand,
		Quantity:          1,
		QuantityInStock:   qty,
		LowStockThreshold: threshold,
		DateCreated:       time.Now(),
		Changes:           []entity.HistoryChange{},
	}
	_ = r.Create(it)
	return it
}

// ──────────────────────────────────────────────────────────────────────────────
// App de pruebas end-to-end (handlers + middleware reales, repo fake)
// ──────────────────────────────────────────────────────────────────────────────

func buildItemsApp(t *testing.T, repo repository.ItemRepository) *fiber.App {
	t.Helper()
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	store := cache.NewStore(repo.ListByOwner, log)
	uc := usecase.NewItemUseCase(repo, store, search.NewPipeline(0), notify.New(8), log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ItemUC:    uc,
		JWTSecret: testJWTSecret,
		OnLogout:  store.Evict,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token(t))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeList(t *testing.T, resp *http.Response) dto.ItemListResponse {
	t.Helper()
	defer resp.Body.Close()
	var out dto.ItemListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Crear un item y listarlo: el item debe aparecer con su clasificación derivada.
func TestItems_CrearYListar(t *testing.T) {
	repo := newMemItemRepo()
	app := buildItemsApp(t, repo)

	resp := doJSON(t, app, http.MethodPost, "/api/items", dto.CreateItemRequest{
		Name:              "Toner 6N",
		Brand:             string(entity.BrandShadesEQ),
		Quantity:          1,
		QuantityInStock:   2,
		LowStockThreshold: 3,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode, "crear item válido debe dar 201")
	resp.Body.Close()

	list := decodeList(t, doJSON(t, app, http.MethodGet, "/api/items", nil))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Toner 6N", list.Items[0].Name)
	assert.True(t, list.Items[0].LowStock, "con stock 2 y umbral 3 debe clasificarse como stock bajo")
	assert.False(t, list.Items[0].OutOfStock)
	assert.Equal(t, 1, list.LowStockCount)
}

// Crear con campos inválidos: 400 con el mapa de campos fallidos.
func TestItems_CrearInvalido_RetornaCamposFallidos(t *testing.T) {
	repo := newMemItemRepo()
	app := buildItemsApp(t, repo)

	resp := doJSON(t, app, http.MethodPost, "/api/items", dto.CreateItemRequest{
		Name:     "",
		Brand:    "Wella", // fuera del catálogo
		Quantity: 0,
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "VALIDATION", body.Code)
	assert.True(t, body.Fields["name"], "name debe reportarse como inválido")
	assert.True(t, body.Fields["brand"], "brand debe reportarse como inválido")
	assert.True(t, body.Fields["quantity"], "quantity debe reportarse como inválido")

	assert.Empty(t, repo.items, "una petición inválida no debe persistir nada")
}

// Incrementar y decrementar stock vía HTTP: el historial se acumula en orden.
func TestItems_IncrementarYDecrementar(t *testing.T) {
	repo := newMemItemRepo()
	it := repo.seed("00000000-0000-0000-0000-000000000001", "Clay Lightener", entity.BrandBlondeVoyageClay, 5, 2)
	app := buildItemsApp(t, repo)

	resp := doJSON(t, app, http.MethodPost, "/api/items/"+it.ID+"/increase", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/items/"+it.ID+"/decrease", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.ItemResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 5, out.QuantityInStock, "5 +1 -1 debe quedar en 5")
	require.Len(t, out.Changes, 2, "cada mutación debe dejar una entrada de historial")
	assert.Equal(t, string(entity.ChangeIncreasedQuantity), out.Changes[0].ChangeType)
	assert.Equal(t, string(entity.ChangeDecreasedQuantity), out.Changes[1].ChangeType)
}

// Mutar un item de otro owner: 404, sin revelar su existencia.
func TestItems_ItemDeOtroOwner_Retorna404(t *testing.T) {
	repo := newMemItemRepo()
	it := repo.seed("otro-owner", "Rhapsody Red", entity.BrandRhapsody, 4, 2)
	app := buildItemsApp(t, repo)

	resp := doJSON(t, app, http.MethodPost, "/api/items/"+it.ID+"/decrease", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode,
		"un item ajeno debe responder 404 como si no existiera")
}

// Filtros combinados vía query params.
func TestItems_ListarConFiltros(t *testing.T) {
	ownerID := "00000000-0000-0000-0000-000000000001"
	repo := newMemItemRepo()
	repo.seed(ownerID, "Toner A", entity.BrandShadesEQ, 1, 2)
	repo.seed(ownerID, "Toner B", entity.BrandRhapsody, 1, 2)
	repo.seed(ownerID, "Powder", entity.BrandShadesEQ, 10, 2)
	app := buildItemsApp(t, repo)

	list := decodeList(t, doJSON(t, app, http.MethodGet,
		"/api/items?brand=Shades+EQ&q=tonr&status=low_stock", nil))

	require.Len(t, list.Items, 1, "solo Toner A cumple marca + texto + estado")
	assert.Equal(t, "Toner A", list.Items[0].Name)
	// Los contadores siempre describen la colección completa, no el filtro.
	assert.Equal(t, 2, list.LowStockCount)
}

// Marca desconocida en el filtro: 400.
func TestItems_FiltroMarcaDesconocida_Retorna400(t *testing.T) {
	repo := newMemItemRepo()
	app := buildItemsApp(t, repo)

	resp := doJSON(t, app, http.MethodGet, "/api/items?brand=Wella", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// Status desconocido en el filtro: 400.
func TestItems_FiltroStatusDesconocido_Retorna400(t *testing.T) {
	repo := newMemItemRepo()
	app := buildItemsApp(t, repo)

	resp := doJSON(t, app, http.MethodGet, "/api/items?status=agotadisimo", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// Editar no debe tocar existencias ni historial.
func TestItems_Editar(t *testing.T) {
	ownerID := "00000000-0000-0000-0000-000000000001"
	repo := newMemItemRepo()
	it := repo.seed(ownerID, "Faction8 4N", entity.BrandFaction8, 7, 2)
	app := buildItemsApp(t, repo)

	resp := doJSON(t, app, http.MethodPut, "/api/items/"+it.ID, dto.EditItemRequest{
		Name:              "Faction8 5N",
		Brand:             string(entity.BrandFaction8),
		Quantity:          2,
		LowStockThreshold: 4,
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.ItemResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Faction8 5N", out.Name)
	assert.Equal(t, 7, out.QuantityInStock, "editar no debe tocar las existencias")
	assert.Empty(t, out.Changes, "editar no debe dejar entradas de historial")
}

// Eliminar: 204 y desaparece del listado.
func TestItems_Eliminar(t *testing.T) {
	ownerID := "00000000-0000-0000-0000-000000000001"
	repo := newMemItemRepo()
	it := repo.seed(ownerID, "High Speed 10V", entity.BrandHighSpeedToners, 3, 1)
	app := buildItemsApp(t, repo)

	resp := doJSON(t, app, http.MethodDelete, "/api/items/"+it.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	list := decodeList(t, doJSON(t, app, http.MethodGet, "/api/items", nil))
	assert.Empty(t, list.Items, "el item eliminado no debe aparecer en el listado")
}

// failingCreateRepo simula un fallo de infraestructura al insertar (p. ej.
// colisión de clave en el almacén).
type failingCreateRepo struct {
	*memItemRepo
}

func (r *failingCreateRepo) Create(item *entity.StockItem) error {
	return fmt.Errorf("insert item: %w", errDuplicateKey)
}

var errDuplicateKey = errors.New("duplicate key value violates unique constraint")

// Un fallo de persistencia al crear no es culpa del cliente: se reporta como
// error interno, nunca como error de validación.
func TestItems_FalloDePersistenciaAlCrear_Retorna500(t *testing.T) {
	repo := &failingCreateRepo{memItemRepo: newMemItemRepo()}
	app := buildItemsApp(t, repo)

	resp := doJSON(t, app, http.MethodPost, "/api/items", dto.CreateItemRequest{
		Name:              "Toner 6N",
		Brand:             string(entity.BrandShadesEQ),
		Quantity:          1,
		QuantityInStock:   2,
		LowStockThreshold: 3,
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INTERNAL", body.Code)
	assert.Empty(t, body.Fields, "un fallo del almacén no debe reportarse como campos inválidos")
}

// Sin token, toda ruta de items responde 401.
func TestItems_SinToken_Retorna401(t *testing.T) {
	repo := newMemItemRepo()
	app := buildItemsApp(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
