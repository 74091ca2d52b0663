// Package cache mantiene la vista de lectura del inventario: una colección
// por owner autenticado, alimentada por el colaborador de persistencia y
// explícitamente invalidada tras cada mutación. No hay parcheo optimista:
// se acepta un viaje extra a cambio de no divergir nunca del remoto.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/backbar-app/backbar-api/internal/domain/entity"
	"github.com/backbar-app/backbar-api/pkg/logger"
)

// FetchFunc obtiene la colección completa de items de un owner desde el
// colaborador de persistencia (ordenada por nombre ascendente).
type FetchFunc func(ownerID string) ([]*entity.StockItem, error)

// MinRefreshingWindow duración mínima del flag "refrescando" tras un refetch
// forzado, para que un refresh rápido siga siendo perceptible en la capa de
// presentación.
const MinRefreshingWindow = 700 * time.Millisecond

type ownerEntry struct {
	items           []*entity.StockItem
	loaded          bool   // hubo al menos un fetch exitoso
	stale           bool   // invalidada: la próxima lectura debe refetchear
	gen             uint64 // se incrementa en cada invalidación
	refreshingUntil time.Time
}

// Store coordinador de caché de lectura e invalidación. Una entrada por
// sesión de owner; solo el Store escribe la entrada, el resto de componentes
// lee snapshots. Los refetch concurrentes de un mismo owner se deduplican
// vía singleflight.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*ownerEntry

	fetch      FetchFunc
	group      singleflight.Group
	minRefresh time.Duration
	log        *logger.Logger
}

// NewStore construye el coordinador.
func NewStore(fetch FetchFunc, log *logger.Logger) *Store {
	return &Store{
		entries:    map[string]*ownerEntry{},
		fetch:      fetch,
		minRefresh: MinRefreshingWindow,
		log:        log,
	}
}

// Get devuelve la colección del owner. Si la caché está fresca sirve el
// snapshot síncronamente; si está ausente o invalidada, refetchea (esperando
// el refetch en vuelo si ya hay uno). Un fetch fallido deja el estado
// anterior intacto y devuelve el error para reintento.
func (s *Store) Get(ownerID string) ([]*entity.StockItem, error) {
	s.mu.RLock()
	e, ok := s.entries[ownerID]
	if ok && e.loaded && !e.stale {
		items := e.items
		s.mu.RUnlock()
		return items, nil
	}
	s.mu.RUnlock()

	return s.refetch(ownerID)
}

// Peek devuelve el último snapshot exitoso sin disparar ningún fetch.
// ok es false antes del primer fetch de la sesión.
func (s *Store) Peek(ownerID string) (items []*entity.StockItem, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, found := s.entries[ownerID]
	if !found || !e.loaded {
		return nil, false
	}
	return e.items, true
}

// Invalidate marca la colección del owner como obsoleta y dispara el refetch
// asíncrono. Los lectores que lleguen antes de que resuelva esperan el mismo
// refetch (singleflight) y observan la colección nueva.
func (s *Store) Invalidate(ownerID string) {
	s.mu.Lock()
	e := s.entry(ownerID)
	e.stale = true
	e.gen++
	s.mu.Unlock()

	go func() {
		if _, err := s.refetch(ownerID); err != nil {
			// La caché queda sin cambios (obsoleta hasta la próxima
			// invalidación o refresh); el reintento es del usuario.
			s.log.Warn().Err(err).Str("owner_id", ownerID).Msg("refetch tras invalidación falló")
		}
	}()
}

// Refresh refetch forzado por el usuario (pull-to-refresh). Se distingue de
// Invalidate solo por el flag transitorio IsRefreshing, visible al menos
// MinRefreshingWindow.
func (s *Store) Refresh(ownerID string) ([]*entity.StockItem, error) {
	s.mu.Lock()
	e := s.entry(ownerID)
	e.stale = true
	e.gen++
	e.refreshingUntil = time.Now().Add(s.minRefresh)
	s.mu.Unlock()

	return s.refetch(ownerID)
}

// IsRefreshing indica si el flag de refresh forzado sigue activo.
func (s *Store) IsRefreshing(ownerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[ownerID]
	return ok && time.Now().Before(e.refreshingUntil)
}

// Evict descarta la entrada del owner (cierre de sesión).
func (s *Store) Evict(ownerID string) {
	s.mu.Lock()
	delete(s.entries, ownerID)
	s.mu.Unlock()
}

// refetch ejecuta el fetch deduplicado por owner y publica el resultado.
// El commit está guardado por generación: si una invalidación llega mientras
// el fetch está en vuelo, la generación ya no coincide, el resultado
// pre-mutación se descarta sin publicar y se refetchea de nuevo, de modo que
// quien espera el refetch siempre observa la colección posterior a la
// invalidación.
func (s *Store) refetch(ownerID string) ([]*entity.StockItem, error) {
	for {
		_, err, _ := s.group.Do(ownerID, func() (interface{}, error) {
			s.mu.Lock()
			gen := s.entry(ownerID).gen
			s.mu.Unlock()

			items, err := s.fetch(ownerID)
			if err != nil {
				return nil, err
			}
			s.mu.Lock()
			e := s.entry(ownerID)
			if e.gen == gen {
				e.items = items
				e.loaded = true
				e.stale = false
			}
			s.mu.Unlock()
			return items, nil
		})
		if err != nil {
			return nil, err
		}

		s.mu.RLock()
		e, ok := s.entries[ownerID]
		fresh := ok && e.loaded && !e.stale
		var items []*entity.StockItem
		if fresh {
			items = e.items
		}
		s.mu.RUnlock()
		if fresh {
			return items, nil
		}
		// El vuelo al que nos unimos quedó obsoleto antes de publicar:
		// olvidar su clave para que el siguiente Do dispare un fetch nuevo.
		s.group.Forget(ownerID)
	}
}

// entry devuelve la entrada del owner, creándola si no existe. Requiere s.mu.
func (s *Store) entry(ownerID string) *ownerEntry {
	e, ok := s.entries[ownerID]
	if !ok {
		e = &ownerEntry{}
		s.entries[ownerID] = e
	}
	return e
}
