// Package transport owns the single bidirectional frame stream per client
// (spec.md §2 component 8): accepting the WebSocket upgrade, decoding
// inbound text frames to the dispatcher, and draining a bounded outbound
// queue back out onto the wire.
package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/doodleparty/server/internal/dispatcher"
	"github.com/doodleparty/server/internal/identity"
	"github.com/doodleparty/server/internal/protocol"
)

// outboundQueueSize bounds each connection's pending-send queue (spec.md §5
// OUTBOUND BACKPRESSURE). A full queue is treated as a dead connection.
const outboundQueueSize = 64

const writeTimeout = 5 * time.Second

// Handler upgrades incoming HTTP requests to WebSocket connections and
// wires each one to the dispatcher.
type Handler struct {
	dispatcher *dispatcher.Dispatcher
	log        *logrus.Logger
}

// NewHandler builds a transport Handler.
func NewHandler(d *dispatcher.Dispatcher, log *logrus.Logger) *Handler {
	return &Handler{dispatcher: d, log: log}
}

// ServeHTTP implements http.Handler, upgrading the request to a WebSocket
// and running that connection until it closes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // same-origin enforcement is a client UI concern (spec.md §1 OUT OF SCOPE)
	})
	if err != nil {
		h.log.WithError(err).Warn("transport: websocket upgrade failed")
		return
	}

	out := newConnOutbound(conn, outboundQueueSize)
	go out.writePump()

	connCtx := h.dispatcher.Connect(out)
	h.log.WithField("connection_id", connCtx.ID).Info("transport: connection accepted")

	h.readPump(conn, connCtx.ID, out)
}

func (h *Handler) readPump(conn *websocket.Conn, connID identity.ConnectionID, out *connOutbound) {
	ctx := context.Background()
	defer func() {
		out.close()
		h.dispatcher.Disconnect(connID)
		conn.Close(websocket.StatusNormalClosure, "")
		h.log.WithField("connection_id", connID).Info("transport: connection closed")
	}()

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		h.dispatcher.Handle(connID, data)
	}
}

// connOutbound is the registry.Outbound implementation backing a live
// websocket connection: a bounded channel drained by a dedicated write
// goroutine, matching the teacher's readPump/writePump split.
type connOutbound struct {
	conn   *websocket.Conn
	queue  chan []byte
	closed chan struct{}
}

func newConnOutbound(conn *websocket.Conn, size int) *connOutbound {
	return &connOutbound{
		conn:   conn,
		queue:  make(chan []byte, size),
		closed: make(chan struct{}),
	}
}

// Send enqueues frame for delivery, encoding it to JSON first. It returns
// false if the queue is full or the connection has already closed — the
// dispatcher treats that exactly like a disconnect.
func (o *connOutbound) Send(frame protocol.Frame) bool {
	data, err := json.Marshal(frame)
	if err != nil {
		return false
	}
	select {
	case <-o.closed:
		return false
	default:
	}
	select {
	case o.queue <- data:
		return true
	case <-o.closed:
		return false
	default:
		return false
	}
}

func (o *connOutbound) close() {
	select {
	case <-o.closed:
	default:
		close(o.closed)
	}
}

func (o *connOutbound) writePump() {
	ctx := context.Background()
	for {
		select {
		case data := <-o.queue:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := o.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				o.close()
				return
			}
		case <-o.closed:
			return
		}
	}
}
