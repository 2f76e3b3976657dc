package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// wsWriteTimeout bounds one event write. A client that cannot drain its
// events inside this window is disconnected rather than left to back up
// the hub subscriber.
const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func registerWSRoute(mux *http.ServeMux, hub *Hub) {
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("ws upgrade error: %v", err)
			return
		}
		streamEvents(hub, conn)
	})
}

// streamEvents subscribes the connection to the hub and relays report and
// reminder events until the client goes away. The subscription is taken
// before the greeting so no event between greeting and subscribe is lost.
func streamEvents(hub *Hub, conn *websocket.Conn) {
	defer func() { _ = conn.Close() }()

	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	greeting := ConnectionEvent{
		Event:     newEvent("connection", time.Now().UTC()),
		Connected: true,
	}
	if payload, err := json.Marshal(greeting); err == nil {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}

	// The client sends nothing this service uses; the read pump exists to
	// surface disconnects and close frames.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}
