// Package push maintains the websocket notification channel: a
// persistent connection over which the backend reports model
// readiness and other asynchronous events, replacing the status
// polling loop older clients needed.
package push

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/J-Olejnik/arepas/internal/api"
)

// Subscriber manages the websocket connection and delivers decoded
// notifications on Events.
type Subscriber struct {
	url    string
	events chan api.Notification
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewSubscriber builds a subscriber for the backend at baseURL.
func NewSubscriber(baseURL string) (*Subscriber, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws/notifications"

	ctx, cancel := context.WithCancel(context.Background())
	return &Subscriber{
		url:    u.String(),
		events: make(chan api.Notification, 16),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Connect establishes the connection and starts the read loop.
func (s *Subscriber) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial websocket: %w", err)
	}
	s.conn = conn
	go s.readLoop(conn)
	return nil
}

// Events is the stream of decoded notifications. The channel is
// closed when the connection ends.
func (s *Subscriber) Events() <-chan api.Notification {
	return s.events
}

// Close tears the connection down.
func (s *Subscriber) Close() error {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn.Close(websocket.StatusNormalClosure, "closing")
	}
	return nil
}

func (s *Subscriber) readLoop(conn *websocket.Conn) {
	defer close(s.events)
	for {
		var note api.Notification
		if err := wsjson.Read(s.ctx, conn, &note); err != nil {
			return
		}
		select {
		case s.events <- note:
		case <-s.ctx.Done():
			return
		}
	}
}
