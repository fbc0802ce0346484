package main

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/juju/loggo"
)

var wsLogger = loggo.GetLogger("ws")

// serverMessage is one JSON notification pushed to monitor clients.
type serverMessage struct {
	UUID    string          `json:"uuid"`
	Type    string          `json:"type"`
	Status  string          `json:"status"`
	Content json.RawMessage `json:"content,omitempty"`
}

// uiConn is one connected monitor client (management console, browser).
type uiConn struct {
	ws   *websocket.Conn
	send chan serverMessage
}

func (c *uiConn) writer() {
	for message := range c.send {
		err := c.ws.WriteJSON(message)
		if err != nil {
			break
		}
	}
}

func (c *uiConn) reader() {
	for {
		// Monitor clients have nothing to say; the read side only
		// detects closed connections.
		_, _, err := c.ws.ReadMessage()
		if err != nil {
			break
		}
	}
}

// wsHub pushes module notifications to every connected monitor client.
type wsHub struct {
	connections map[*uiConn]bool
	uiReg       chan *uiConn // Register connection
	uiUnReg     chan *uiConn // Unregister connection

	broadcast chan serverMessage // Broadcast to all connected UIs
}

func newWsHub() *wsHub {
	return &wsHub{
		connections: make(map[*uiConn]bool),
		uiReg:       make(chan *uiConn),
		uiUnReg:     make(chan *uiConn),
		broadcast:   make(chan serverMessage, 16),
	}
}

// run starts the hub. Meant to be run in its own goroutine.
func (h *wsHub) run() {
	for {
		select {
		case c := <-h.uiReg:
			h.connections[c] = true
			wsLogger.Infof("UI   connected")
		case c := <-h.uiUnReg:
			if _, ok := h.connections[c]; !ok {
				break
			}
			delete(h.connections, c)
			close(c.send)
			wsLogger.Infof("UI   disconnected")
		case msg := <-h.broadcast:
			wsLogger.Debugf("-> UI %+v", msg)
			for c := range h.connections {
				select {
				case c.send <- msg:
				default:
					close(c.send)
					delete(h.connections, c)
				}
			}
		}
	}
}

// notify builds a uuid-stamped message and hands it to the hub without
// ever blocking the caller; when the hub backlog is full the
// notification is dropped.
func (h *wsHub) notify(typ string, content interface{}) {
	var raw json.RawMessage
	if content != nil {
		b, err := json.Marshal(content)
		if err != nil {
			wsLogger.Errorf("marshal %s content: %v", typ, err)
			return
		}
		raw = b
	}
	msg := serverMessage{
		UUID:    uuid.NewString(),
		Type:    typ,
		Status:  "success",
		Content: raw,
	}
	select {
	case h.broadcast <- msg:
	default:
		wsLogger.Debugf("monitor backlog full; dropping %s", typ)
	}
}
