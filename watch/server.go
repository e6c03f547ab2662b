package watch

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/someahole/nodes"
)

// InvalidationEvent is the wire message a subscriber receives each time a
// watched node's cache is invalidated.
type InvalidationEvent struct {
	Object interface{}   `json:"object"`
	Method string        `json:"method"`
	Args   []interface{} `json:"args"`
	At     time.Time     `json:"at"`
}

// subscriber is one connected websocket client.
type subscriber struct {
	id      string
	writeMu sync.Mutex
	socket  *websocket.Conn
	events  chan InvalidationEvent
}

func (s *subscriber) send(ctx context.Context, ev InvalidationEvent) {
	AcquireSendToken(ctx)
	defer ReleaseSendToken(ctx)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.socket.WriteJSON(ev); err != nil {
		if !isCloseError(err) {
			log.Printf("watch: socket.WriteJSON: %v", err)
		}
	}
}

func isCloseError(err error) bool {
	_, ok := err.(*websocket.CloseError)
	return ok || err == websocket.ErrCloseSent
}

// Server fans out a Registry's node invalidations to any number of
// websocket subscribers. Install it with WithInvalidationListener so the
// Registry never imports anything about transport.
type Server struct {
	upgrader *websocket.Upgrader

	maxConcurrentSends int

	mu          sync.RWMutex
	subscribers map[string]*subscriber
}

// NewServer creates a Server bounding its fan-out to maxConcurrentSends
// simultaneous writes, the same CheckOrigin-always-true posture the
// teacher's graphql.Handler uses for its own websocket upgrade (both are
// meant to sit behind an authenticating reverse proxy, not to be exposed
// directly).
func NewServer(maxConcurrentSends int) *Server {
	return &Server{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		maxConcurrentSends: maxConcurrentSends,
		subscribers:        make(map[string]*subscriber),
	}
}

// Listener returns a callback suitable for nodes.WithInvalidationListener:
// every time it fires, the event is fanned out to all current subscribers
// concurrently, bounded by the server's send limiter.
func (s *Server) Listener() func(*nodes.Node) {
	return func(n *nodes.Node) {
		ev := InvalidationEvent{
			Object: n.Object(),
			Method: n.Method().Name(),
			Args:   n.Args(),
			At:     time.Now(),
		}
		s.broadcast(ev)
	}
}

func (s *Server) broadcast(ev InvalidationEvent) {
	s.mu.RLock()
	subs := make([]*subscriber, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.RUnlock()
	if len(subs) == 0 {
		return
	}

	ctx := WithSendLimiter(context.Background(), s.maxConcurrentSends)
	// broadcast itself never sends, so it gives back the token
	// WithSendLimiter acquired for the calling goroutine.
	ReleaseSendToken(ctx)
	var g errgroup.Group
	for _, sub := range subs {
		sub := sub
		g.Go(func() error {
			sub.send(ctx, ev)
			return nil
		})
	}
	g.Wait()
}

// Handler upgrades incoming requests to websockets and keeps each one
// registered as a subscriber until it disconnects, mirroring the teacher's
// graphql.Handler upgrade-then-serve shape.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("watch: upgrader.Upgrade: %v", err)
			return
		}
		defer socket.Close()
		s.serve(socket)
	})
}

func (s *Server) serve(socket *websocket.Conn) {
	sub := &subscriber{
		id:     uuid.NewString(),
		socket: socket,
	}

	s.mu.Lock()
	s.subscribers[sub.id] = sub
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.subscribers, sub.id)
		s.mu.Unlock()
	}()

	for {
		if _, _, err := socket.ReadMessage(); err != nil {
			if !isCloseError(err) {
				log.Printf("watch: socket.ReadMessage: %v", err)
			}
			return
		}
	}
}
