package websocket

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"
	"golang.org/x/net/websocket"

	"github.com/robotalks/uartsync/pkg/diag"
	"github.com/robotalks/uartsync/pkg/frame"
)

// Default settings.
const (
	DefaultPath      = "/frames"
	DefaultQueueLen  = 64
	DefaultClientLen = 16
)

// Tap streams decoded frames to websocket clients. Every message is a
// diag.Typed wrapped FrameEvent or Counters.
type Tap struct {
	Addr string
	Path string
	// Stats supplies the counters sent every StatsInterval.
	Stats         func() *diag.Counters
	StatsInterval time.Duration

	frames  chan *frame.Frame
	lock    sync.RWMutex
	clients map[*client]struct{}
	dropped atomic.Uint64
}

type client struct {
	conn    *websocket.Conn
	sendCh  chan []byte
	dropped int
}

// New creates a Tap listening on addr.
func New(addr string) *Tap {
	return &Tap{
		Addr:    addr,
		Path:    DefaultPath,
		frames:  make(chan *frame.Frame, DefaultQueueLen),
		clients: make(map[*client]struct{}),
	}
}

// Name implements framework.Named.
func (t *Tap) Name() string {
	return "websocket"
}

// HandleFrame implements frame.Sink.
func (t *Tap) HandleFrame(f *frame.Frame) {
	select {
	case t.frames <- f:
	default:
		t.dropped.Add(1)
	}
}

// Dropped returns the number of frames the tap could not keep up with.
func (t *Tap) Dropped() uint64 {
	return t.dropped.Load()
}

// Clients returns the number of connected clients.
func (t *Tap) Clients() int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return len(t.clients)
}

// Handler returns the http.Handler serving the stream.
func (t *Tap) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(t.Path, websocket.Handler(t.serveConn))
	return mux
}

func (t *Tap) serveConn(conn *websocket.Conn) {
	c := &client{conn: conn, sendCh: make(chan []byte, DefaultClientLen)}
	t.lock.Lock()
	t.clients[c] = struct{}{}
	t.lock.Unlock()
	glog.V(1).Infof("websocket: client %s connected", conn.Request().RemoteAddr)

	closeCh := make(chan struct{})
	go func() {
		// drain until the peer closes
		var msg []byte
		for websocket.Message.Receive(conn, &msg) == nil {
		}
		close(closeCh)
	}()

	defer func() {
		t.lock.Lock()
		delete(t.clients, c)
		t.lock.Unlock()
		conn.Close()
		glog.V(1).Infof("websocket: client %s disconnected", conn.Request().RemoteAddr)
	}()
	for {
		select {
		case msg := <-c.sendCh:
			if err := websocket.Message.Send(conn, msg); err != nil {
				glog.V(1).Infof("websocket: send: %v", err)
				return
			}
		case <-closeCh:
			return
		}
	}
}

func (t *Tap) broadcast(msg []byte) {
	t.lock.Lock()
	defer t.lock.Unlock()
	for c := range t.clients {
		select {
		case c.sendCh <- msg:
		default:
			c.dropped++
		}
	}
}

func (t *Tap) send(msg proto.Message) {
	data, err := diag.Marshal(msg)
	if err != nil {
		glog.Errorf("websocket: encode: %v", err)
		return
	}
	t.broadcast(data)
}

// Run implements framework.Runnable. The HTTP server is only started if
// Addr is set, otherwise Handler is expected to be served elsewhere.
func (t *Tap) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	var server *http.Server
	if t.Addr != "" {
		server = &http.Server{Addr: t.Addr, Handler: t.Handler()}
		go func() {
			glog.Infof("websocket: listening on %s%s", t.Addr, t.Path)
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}
	var statsCh <-chan time.Time
	if t.Stats != nil && t.StatsInterval > 0 {
		ticker := time.NewTicker(t.StatsInterval)
		defer ticker.Stop()
		statsCh = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			if server != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				server.Shutdown(shutdownCtx)
			}
			// hijacked connections are not closed by Shutdown
			t.lock.RLock()
			for c := range t.clients {
				c.conn.Close()
			}
			t.lock.RUnlock()
			return nil
		case err := <-errCh:
			return err
		case f := <-t.frames:
			t.send(diag.NewFrameEvent(f))
		case <-statsCh:
			t.send(t.Stats())
		}
	}
}
