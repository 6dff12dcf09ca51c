package websocket

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound queue depth per peer.
	sendQueueSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Phones join from arbitrary origins (QR codes, typed URLs).
		return true
	},
}

// Peer is a WebSocket connection with a buffered outbound queue and
// single-writer discipline.
type Peer struct {
	conn   *websocket.Conn
	send   chan []byte
	logger *zap.Logger

	// Correlation id for log lines; not part of the wire protocol.
	id string

	closeOnce sync.Once
	closed    chan struct{}
	pumping   atomic.Bool
}

// Upgrade upgrades an HTTP request to a WebSocket connection and wraps it
// in a Peer. The pumps are not started until Start is called.
func Upgrade(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (*Peer, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return NewPeer(conn, logger), nil
}

// NewPeer wraps an established WebSocket connection.
func NewPeer(conn *websocket.Conn, logger *zap.Logger) *Peer {
	id := uuid.NewString()
	return &Peer{
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		logger: logger.With(zap.String("conn", id)),
		id:     id,
		closed: make(chan struct{}),
	}
}

// ConnID returns the correlation id assigned to this connection for logging.
func (p *Peer) ConnID() string {
	return p.id
}

// RemoteAddr returns the network address of the peer.
func (p *Peer) RemoteAddr() string {
	return p.conn.RemoteAddr().String()
}

// ReadOne reads a single text message with a deadline. Used for the join
// handshake before the pumps take over the connection.
func (p *Peer) ReadOne(timeout time.Duration) ([]byte, error) {
	p.conn.SetReadLimit(maxMessageSize)
	if err := p.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	_, data, err := p.conn.ReadMessage()
	return data, err
}

// WriteOne writes a single text message with a deadline. Used for join
// handshake replies before the pumps take over the connection.
func (p *Peer) WriteOne(data []byte, timeout time.Duration) error {
	if err := p.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

// Start launches the read and write pumps. onMessage is invoked for every
// inbound text message and onClose exactly once when the connection dies,
// both from the read pump goroutine.
func (p *Peer) Start(onMessage func(data []byte), onClose func()) {
	p.pumping.Store(true)
	go p.writePump()
	go p.readPump(onMessage, onClose)
}

// Send queues a message for delivery. Delivery is fire-and-forget: if the
// peer's queue is full or the peer is closed the message is dropped and
// Send reports false.
func (p *Peer) Send(data []byte) bool {
	select {
	case <-p.closed:
		return false
	default:
	}

	select {
	case p.send <- data:
		return true
	default:
		p.logger.Warn("Dropping message, peer send queue full")
		return false
	}
}

// Close tears the connection down. With the pumps running, messages queued
// before Close are flushed and a close frame is sent before the connection
// drops, so a farewell sent right before Close still reaches the peer.
// Safe to call multiple times and concurrently with the pumps.
func (p *Peer) Close() {
	p.closeOnce.Do(func() {
		close(p.closed)
		if !p.pumping.Load() {
			p.conn.Close()
		}
	})
}

// readPump pumps inbound messages into the handler until the connection
// fails, then runs the close callback and tears the peer down.
func (p *Peer) readPump(onMessage func(data []byte), onClose func()) {
	defer func() {
		p.Close()
		if onClose != nil {
			onClose()
		}
	}()

	p.conn.SetReadLimit(maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		p.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				p.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		if onMessage != nil {
			onMessage(data)
		}
	}
}

// writePump drains the send queue to the connection and keeps the peer
// alive with periodic pings. It owns the connection teardown once the
// pumps are running.
func (p *Peer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.Close()
		p.conn.Close()
	}()

	for {
		select {
		case <-p.closed:
			p.flushSendQueue()
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			p.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case data := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// flushSendQueue writes out whatever was queued before Close. Stops at the
// first write error; the peer is going away either way.
func (p *Peer) flushSendQueue() {
	for {
		select {
		case data := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}
