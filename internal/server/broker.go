package server

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/J-Olejnik/arepas/internal/api"
)

type subscriber struct {
	id string
	ch chan api.Notification
}

// Broker fans notifications out to connected websocket clients.
type Broker struct {
	mu   sync.Mutex
	subs map[string]*subscriber
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]*subscriber)}
}

// Publish broadcasts a notification. Slow subscribers are dropped
// rather than blocking the publisher.
func (b *Broker) Publish(note api.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		select {
		case sub.ch <- note:
		default:
		}
	}
}

// Count returns the number of connected clients.
func (b *Broker) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broker) subscribe() *subscriber {
	sub := &subscriber{id: uuid.NewString(), ch: make(chan api.Notification, 64)}
	b.mu.Lock()
	b.subs[sub.id] = sub
	b.mu.Unlock()
	return sub
}

func (b *Broker) unsubscribe(sub *subscriber) {
	b.mu.Lock()
	delete(b.subs, sub.id)
	b.mu.Unlock()
	close(sub.ch)
}

// ServeWS upgrades the connection, sends greet immediately, then
// streams published notifications until the client goes away.
func (b *Broker) ServeWS(w http.ResponseWriter, r *http.Request, greet api.Notification) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "closing")

	sub := b.subscribe()
	defer b.unsubscribe(sub)

	ctx := r.Context()
	if err := wsjson.Write(ctx, conn, greet); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case note := <-sub.ch:
			if err := wsjson.Write(ctx, conn, note); err != nil {
				return
			}
		}
	}
}
