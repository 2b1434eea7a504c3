package ws

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer = 16
	writeWait  = 5 * time.Second
)

var (
	errConnClosed     = errors.New("connection closed")
	errSendBufferFull = errors.New("send buffer full")
)

// textFrame marks a payload that goes out as a plain text frame instead of
// JSON.
type textFrame string

// closeRequest asks the writer to emit a close frame and tear down, after
// everything queued ahead of it has been written.
type closeRequest struct {
	reason string
}

// conn adapts a gorilla websocket to the coordinator's Conn capability. A
// single writer goroutine drains the send channel so broadcast, echo and
// close frames never interleave on the wire and always keep queue order.
// Send never blocks: a full buffer counts as a delivery failure, which the
// caller logs and tolerates per participant.
type conn struct {
	name string
	ws   *websocket.Conn
	send chan any
	done chan struct{}
	once sync.Once
}

func newConn(name string, ws *websocket.Conn) *conn {
	c := &conn{
		name: name,
		ws:   ws,
		send: make(chan any, sendBuffer),
		done: make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

func (c *conn) writeLoop() {
	for msg := range c.send {
		var err error
		switch m := msg.(type) {
		case closeRequest:
			deadline := time.Now().Add(writeWait)
			frame := websocket.FormatCloseMessage(websocket.CloseNormalClosure, m.reason)
			if werr := c.ws.WriteControl(websocket.CloseMessage, frame, deadline); werr != nil {
				log.Printf("ws close error for %s: %v", c.name, werr)
			}
			_ = c.ws.Close()
			return
		case textFrame:
			err = c.ws.WriteMessage(websocket.TextMessage, []byte(m))
		default:
			err = c.ws.WriteJSON(msg)
		}
		if err != nil {
			log.Printf("ws write error for %s: %v", c.name, err)
			_ = c.ws.Close()
			return
		}
	}
}

func (c *conn) Send(v any) error {
	select {
	case <-c.done:
		return errConnClosed
	default:
	}
	select {
	case c.send <- v:
		return nil
	default:
		return errSendBufferFull
	}
}

func (c *conn) sendText(s string) error {
	return c.Send(textFrame(s))
}

// Close queues a close frame carrying the reason behind any pending sends,
// then refuses further sends. Repeated closes are no-ops. If the writer is
// wedged or already gone the socket is torn down directly.
func (c *conn) Close(reason string) error {
	c.once.Do(func() {
		close(c.done)
		select {
		case c.send <- closeRequest{reason: reason}:
		default:
			deadline := time.Now().Add(writeWait)
			frame := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
			_ = c.ws.WriteControl(websocket.CloseMessage, frame, deadline)
			_ = c.ws.Close()
		}
	})
	return nil
}
