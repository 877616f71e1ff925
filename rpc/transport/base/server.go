package base

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dGrid/rpc/common"
	"github.com/ValentinKolb/dGrid/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates a listener and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// GetName returns the name of the transport type (e.g. "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an accepted connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport accepts connections and hands every frame to the handler.
// Open connections are tracked so Close can drop them, a client then sees the
// member go away instead of talking to a stopped one.
type serverTransport struct {
	connector         IServerConnector
	handler           transport.ServerHandleFunc
	config            common.ServerConfig
	listener          net.Listener
	listenerMu        sync.Mutex
	closed            atomic.Bool
	conns             *xsync.MapOf[net.Conn, struct{}]
	bufferPool        *sync.Pool
	maxWorkersPerConn int
}

// serverConn serves the requests of one accepted connection
type serverConn struct {
	parent  *serverTransport
	conn    net.Conn
	timeout time.Duration
	limit   int
	writeMu sync.Mutex    // responses of concurrent workers must not interleave
	workers chan struct{} // counting semaphore
	wg      sync.WaitGroup
}

// -----------------------------------------------------------
// Transport Factory Method
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport. Every connection
// processes up to maxWorkersPerConn requests concurrently, request payloads up
// to bufferSize bytes are read into pooled buffers.
func NewBaseServerTransport(connector IServerConnector, bufferSize int, maxWorkersPerConn int) transport.IRPCServerTransport {
	bufferSize = max(bufferSize, frameHeaderSize)
	return &serverTransport{
		connector:         connector,
		maxWorkersPerConn: max(maxWorkersPerConn, 1),
		conns:             xsync.NewMapOf[net.Conn, struct{}](),
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return make([]byte, bufferSize)
			},
		},
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Listen(config common.ServerConfig) error {
	if t.handler == nil {
		return fmt.Errorf("no handler registered")
	}
	t.config = config

	listener, err := t.connector.Listen(config)
	if err != nil {
		return fmt.Errorf("failed to create listener: %v", err)
	}
	t.listenerMu.Lock()
	if t.closed.Load() {
		t.listenerMu.Unlock()
		_ = listener.Close()
		return nil
	}
	t.listener = listener
	t.listenerMu.Unlock()

	Logger.Infof("Starting %s server on %s with %d workers per connection (max frame %d bytes)",
		t.connector.GetName(), listener.Addr(), t.maxWorkersPerConn, config.Transport.FrameLimit())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if t.closed.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			Logger.Errorf("Accept error: %v", err)
			continue
		}

		if err := t.connector.UpgradeConnection(conn, config); err != nil {
			Logger.Warningf("Failed to upgrade connection from %s: %v", conn.RemoteAddr(), err)
		}

		t.conns.Store(conn, struct{}{})
		// Close may have run between Accept and Store
		if t.closed.Load() {
			t.conns.Delete(conn)
			_ = conn.Close()
			return nil
		}

		sc := &serverConn{
			parent:  t,
			conn:    conn,
			timeout: time.Duration(config.TimeoutSecond) * time.Second,
			limit:   config.Transport.FrameLimit(),
			workers: make(chan struct{}, t.maxWorkersPerConn),
		}
		go sc.serve()
	}
}

func (t *serverTransport) Close() error {
	t.closed.Store(true)

	t.listenerMu.Lock()
	var err error
	if t.listener != nil {
		err = t.listener.Close()
	}
	t.listenerMu.Unlock()

	t.conns.Range(func(conn net.Conn, _ struct{}) bool {
		_ = conn.Close()
		return true
	})
	return err
}

// --------------------------------------------------------------------------
// Connection Methods
// --------------------------------------------------------------------------

// serve reads frames until the connection fails, then waits for the
// outstanding responses before the connection is released
func (c *serverConn) serve() {
	defer func() {
		c.wg.Wait()
		c.parent.conns.Delete(c.conn)
		_ = c.conn.Close()
	}()

	for {
		err := c.next()
		if err == nil {
			continue
		}

		var tooLarge *FrameTooLargeError
		switch {
		case err == io.EOF || errors.Is(err, net.ErrClosed):
			Logger.Debugf("Connection closed by %s", c.conn.RemoteAddr())
		case errors.As(err, &tooLarge):
			Logger.Warningf("Dropping connection from %s: %v", c.conn.RemoteAddr(), err)
		default:
			Logger.Errorf("Error handling request from %s: %v", c.conn.RemoteAddr(), err)
		}
		return
	}
}

// next reads one request and hands it to a worker. It blocks while all
// workers of the connection are busy.
func (c *serverConn) next() error {
	buf := c.parent.bufferPool.Get().([]byte)

	shardID, requestID, data, err := readFrame(c.conn, buf, c.limit)
	if err != nil {
		c.parent.bufferPool.Put(buf)
		return err
	}

	c.workers <- struct{}{}
	c.wg.Add(1)
	go func() {
		defer func() {
			c.parent.bufferPool.Put(buf)
			<-c.workers
			c.wg.Done()
		}()
		c.respond(shardID, requestID, data)
	}()
	return nil
}

// respond runs the handler and writes its answer under the request id
func (c *serverConn) respond(shardID, requestID uint64, data []byte) {
	start := time.Now()
	resp := c.parent.handler(shardID, data)
	Logger.Debugf("Processed request %d for shard %d in %s", requestID, shardID, time.Since(start))

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			Logger.Errorf("Failed to set write deadline: %v", err)
			return
		}
	}
	if err := writeFrame(c.conn, shardID, requestID, resp, c.limit); err != nil {
		Logger.Errorf("Failed to write response %d: %v", requestID, err)
	}
}
