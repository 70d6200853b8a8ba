package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"hexquiz/internal/game"
	"hexquiz/internal/modal"
	"hexquiz/internal/viewmodel"
	"hexquiz/pkg/realtime"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// Client message types.
const (
	msgStart    = "start"
	msgPointer  = "pointer"
	msgAnswer   = "answer"
	msgNext     = "next"
	msgClose    = "close"
	msgViewport = "viewport"
	msgAsset    = "asset"
	msgPing     = "ping"
)

type clientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type serverMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

var errUnknownMessage = errors.New("unknown message type")

// socketConn is one websocket client of a session.
type socketConn struct {
	id   string
	ws   *websocket.Conn
	sess *game.Session
	h    *SessionHandler
	send chan []byte
	done chan struct{}
}

func (h *SessionHandler) socket(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	hub, ok := h.store.Broadcaster(sess.ID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed session=%s: %v", sess.ID, err)
		return
	}

	c := &socketConn{
		id:   uuid.NewString(),
		ws:   ws,
		sess: sess,
		h:    h,
		send: make(chan []byte, 32),
		done: make(chan struct{}),
	}
	log.Printf("websocket connected session=%s conn=%s", sess.ID, c.id)

	sub := hub.Subscribe()
	go func() {
		defer hub.Unsubscribe(sub)
		c.writePump(sub)
	}()
	c.readPump()
	log.Printf("websocket closed session=%s conn=%s", sess.ID, c.id)
}

func (c *socketConn) readPump() {
	defer close(c.done)

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	c.queue(serverMessage{Type: "state", Payload: c.state(nil)})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error conn=%s: %v", c.id, err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.queue(serverMessage{Type: "error", Payload: errorPayload{Code: "invalid_message", Message: "failed to parse message"}})
			continue
		}
		if err := c.handle(msg); err != nil {
			c.queue(serverMessage{Type: "error", Payload: errorPayload{Code: msg.Type, Message: err.Error()}})
		}
		c.h.store.EnsureFrameLoop(c.sess.ID)
	}
}

func (c *socketConn) handle(msg clientMessage) error {
	switch msg.Type {
	case msgStart:
		return c.sess.Start()
	case msgPointer:
		var req pointerRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		return c.sess.Pointer(req.event(time.Now().UTC()))
	case msgAnswer:
		var req struct {
			Key string `json:"key"`
		}
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		return c.sess.SelectAnswer(req.Key)
	case msgNext:
		return c.sess.Next()
	case msgClose:
		c.sess.Close()
		return nil
	case msgViewport:
		var v modal.Viewport
		if err := json.Unmarshal(msg.Payload, &v); err != nil {
			return err
		}
		c.sess.SetViewport(v)
		return nil
	case msgAsset:
		var req assetRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		c.sess.ReportAsset(req.URL, req.OK)
		return nil
	case msgPing:
		c.queue(serverMessage{Type: "pong"})
		return nil
	default:
		return errUnknownMessage
	}
}

func (c *socketConn) writePump(events <-chan realtime.Event) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case message := <-c.send:
			if !c.write(websocket.TextMessage, message) {
				return
			}
		case ev, ok := <-events:
			if !ok {
				_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(serverMessage{Type: "state", Payload: c.state([]string{ev.Kind})})
			if err != nil {
				log.Printf("websocket encode conn=%s: %v", c.id, err)
				continue
			}
			if !c.write(websocket.TextMessage, data) {
				return
			}
		case <-ticker.C:
			if !c.write(websocket.PingMessage, nil) {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *socketConn) write(kind int, data []byte) bool {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteMessage(kind, data); err != nil {
		log.Printf("websocket write error conn=%s: %v", c.id, err)
		return false
	}
	return true
}

// queue sends a reply without blocking; replies to a stalled client are dropped.
func (c *socketConn) queue(msg serverMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("websocket encode conn=%s: %v", c.id, err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *socketConn) state(events []string) viewmodel.State {
	return buildState(c.sess.Snapshot(time.Now().UTC()), events)
}
