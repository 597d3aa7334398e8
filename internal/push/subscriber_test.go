package push

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/J-Olejnik/arepas/internal/api"
)

func TestSubscriberReceivesNotifications(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/notifications" {
			t.Errorf("path = %s", r.URL.Path)
		}
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "done")

		ready := true
		note := api.Notification{
			Type:    "notification",
			Message: "Model loaded",
			Ready:   &ready,
			Name:    "m.keras",
		}
		if err := wsjson.Write(r.Context(), conn, note); err != nil {
			return
		}
		<-r.Context().Done()
	}))
	defer srv.Close()

	sub, err := NewSubscriber(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if err := sub.Connect(); err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	select {
	case note := <-sub.Events():
		if note.Message != "Model loaded" || note.Name != "m.keras" {
			t.Errorf("note = %+v", note)
		}
		if note.Ready == nil || !*note.Ready {
			t.Error("ready flag lost in transit")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no notification received")
	}
}

func TestSubscriberClosesEventsOnDisconnect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		conn.Close(websocket.StatusNormalClosure, "bye")
	}))
	defer srv.Close()

	sub, err := NewSubscriber(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if err := sub.Connect(); err != nil {
		t.Fatal(err)
	}
	defer sub.Close()

	select {
	case _, ok := <-sub.Events():
		if ok {
			// A close frame may race an empty read; drain once more.
			if _, ok := <-sub.Events(); ok {
				t.Error("events channel should close after disconnect")
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("events channel never closed")
	}
}

func TestSubscriberURLDerivation(t *testing.T) {
	sub, err := NewSubscriber("https://review.internal:8443")
	if err != nil {
		t.Fatal(err)
	}
	if sub.url != "wss://review.internal:8443/ws/notifications" {
		t.Errorf("url = %q", sub.url)
	}
}
