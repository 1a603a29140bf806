package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	telem "github.com/timvw/horza/internal/otel"
)

const defaultMaxPayloadBytes = 8 * 1024

// ErrSocketInUse means another overview is already reading the socket.
var ErrSocketInUse = errors.New("hook socket in use")

// Collector listens on a unixgram socket and queues every valid event it
// receives.
type Collector struct {
	queue   *Queue
	path    string
	log     *zap.Logger
	metrics *telem.Metrics
	notify  chan struct{}

	MaxPayloadBytes int

	mu     sync.Mutex
	conn   *net.UnixConn
	closed bool
}

func NewCollector(queue *Queue, socketPath string, log *zap.Logger, metrics *telem.Metrics) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{
		queue:           queue,
		path:            socketPath,
		log:             log,
		metrics:         metrics,
		notify:          make(chan struct{}, 1),
		MaxPayloadBytes: defaultMaxPayloadBytes,
	}
}

func (c *Collector) SocketPath() string { return c.path }

// Notify receives a value whenever new events were queued. Signals
// coalesce: one receive may stand for many events.
func (c *Collector) Notify() <-chan struct{} { return c.notify }

// Start binds the socket and reads from it until ctx is cancelled. It
// fails with ErrSocketInUse when a live collector already owns the path.
func (c *Collector) Start(ctx context.Context) error {
	if c.queue == nil {
		return errors.New("events: queue is required")
	}
	if c.path == "" {
		return errors.New("events: socket path is required")
	}
	if c.MaxPayloadBytes <= 0 {
		c.MaxPayloadBytes = defaultMaxPayloadBytes
	}

	conn, err := bind(c.path)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.conn = conn
	c.closed = false
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.close()
	}()
	go c.readLoop(ctx, conn)

	c.log.Info("hook collector listening", zap.String("socket", c.path))
	return nil
}

// bind creates the socket directory, clears a stale socket file and
// listens on path with owner-only permissions.
func bind(path string) (*net.UnixConn, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create socket dir: %w", err)
	}
	if listening(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrSocketInUse)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}

	addr, err := net.ResolveUnixAddr("unixgram", path)
	if err != nil {
		return nil, fmt.Errorf("resolve unix addr: %w", err)
	}
	conn, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		return nil, fmt.Errorf("listen unixgram: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}
	return conn, nil
}

// listening reports whether a reader is bound to the socket at path. A
// leftover file from a crashed overview refuses the connection.
func listening(path string) bool {
	conn, err := net.Dial("unixgram", path)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func (c *Collector) readLoop(ctx context.Context, conn *net.UnixConn) {
	buf := make([]byte, c.MaxPayloadBytes)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			if c.isClosed() || errors.Is(err, net.ErrClosed) {
				return
			}
			c.log.Debug("hook socket read failed", zap.Error(err))
			continue
		}
		e, err := decode(buf[:n], c.MaxPayloadBytes)
		if err != nil {
			c.log.Debug("dropping hook payload", zap.Error(err))
			continue
		}

		c.queue.Push(e)
		c.metrics.RecordHook(ctx, e.Kind)
		select {
		case c.notify <- struct{}{}:
		default:
		}
	}
}

// decode parses one datagram. A payload filling the whole buffer may have
// been truncated and is rejected.
func decode(payload []byte, limit int) (Event, error) {
	if len(payload) == 0 {
		return Event{}, errors.New("empty payload")
	}
	if len(payload) >= limit {
		return Event{}, fmt.Errorf("payload of %d bytes exceeds limit", len(payload))
	}
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return Event{}, fmt.Errorf("malformed payload: %w", err)
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

func (c *Collector) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Collector) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	_ = os.Remove(c.path)
}
