// Package websocket транслирует события торгового конвейера
// подписчикам в реальном времени.
package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Event - конверт сообщения для подписчиков
//
// Типы событий: news, trade, listing, signal, position.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	Time time.Time   `json:"time"`
}

// Hub управляет активными WebSocket соединениями
//
// Центральная точка рассылки: движок конвейера отдает события в
// Broadcast, хаб доставляет их всем подключенным клиентам. Медленные
// клиенты отключаются, чтобы не тормозить рассылку.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub создает хаб
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run запускает цикл рассылки, блокируется до отмены контекста
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("WebSocket клиент подключен, всего: %d", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("WebSocket клиент отключен, всего: %d", total)

		case message := <-h.broadcast:
			// список копируется под коротким RLock, отправка без блокировки
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			var toRemove []*Client
			for _, client := range clients {
				select {
				case client.send <- message:
				default:
					toRemove = append(toRemove, client)
				}
			}

			if len(toRemove) > 0 {
				h.mu.Lock()
				for _, client := range toRemove {
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
				}
				h.mu.Unlock()
				log.Printf("Отключено %d медленных WebSocket клиентов", len(toRemove))
			}
		}
	}
}

// Broadcast рассылает событие конвейера всем подписчикам
func (h *Hub) Broadcast(event string, payload interface{}) {
	data, err := json.Marshal(Event{
		Type: event,
		Data: payload,
		Time: time.Now(),
	})
	if err != nil {
		log.Printf("Ошибка сериализации события %s: %v", event, err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		// очередь рассылки переполнена, событие отбрасывается
		log.Printf("Очередь WebSocket рассылки переполнена, событие %s отброшено", event)
	}
}

// ClientCount возвращает число подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}
