// Package notify canal tipado de notificaciones de inventario. El emisor
// recibe el canal por inyección y los consumidores se suscriben
// explícitamente, sin estado ambiente ni bus global.
package notify

import "github.com/backbar-app/backbar-api/internal/domain/entity"

// EventType tipo de evento de inventario.
type EventType string

// Eventos emitidos por el servicio de mutaciones.
const (
	EventItemCreated EventType = "item_created"
)

// ItemEvent notificación sobre un item.
type ItemEvent struct {
	Type EventType
	Item *entity.StockItem
}

// ItemEvents canal tipado con buffer. Publish nunca bloquea la ruta de
// mutación: si no hay consumidor al día, el evento se descarta.
type ItemEvents struct {
	ch chan ItemEvent
}

// New construye el canal con el buffer indicado.
func New(buffer int) *ItemEvents {
	if buffer <= 0 {
		buffer = 16
	}
	return &ItemEvents{ch: make(chan ItemEvent, buffer)}
}

// Publish emite el evento sin bloquear.
func (n *ItemEvents) Publish(ev ItemEvent) {
	select {
	case n.ch <- ev:
	default:
	}
}

// C devuelve el canal de lectura para consumidores.
func (n *ItemEvents) C() <-chan ItemEvent {
	return n.ch
}

// Close cierra el canal. Solo debe llamarse cuando ya no quedan emisores
// activos (apagado de la aplicación).
func (n *ItemEvents) Close() {
	close(n.ch)
}
