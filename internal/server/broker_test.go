package server

import (
	"context"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/J-Olejnik/arepas/internal/api"
)

func TestNotificationsEndpoint(t *testing.T) {
	srv, ts := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(ts.URL, "http://", "ws://", 1) + "/ws/notifications"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	// The greet carries the current model state.
	var greet api.Notification
	if err := wsjson.Read(ctx, conn, &greet); err != nil {
		t.Fatal(err)
	}
	if greet.Ready == nil || !*greet.Ready {
		t.Errorf("greet = %+v, want ready", greet)
	}
	if greet.Name != "default.keras" {
		t.Errorf("greet name = %q", greet.Name)
	}

	// Wait for the subscription before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for srv.broker.Count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	srv.publishModelState("Loading model next.keras", false, "next.keras", "")

	var note api.Notification
	if err := wsjson.Read(ctx, conn, &note); err != nil {
		t.Fatal(err)
	}
	if note.Message != "Loading model next.keras" || note.Name != "next.keras" {
		t.Errorf("note = %+v", note)
	}
	if note.Ready == nil || *note.Ready {
		t.Errorf("ready = %v, want false", note.Ready)
	}
}
