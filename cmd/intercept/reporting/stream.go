package reporting

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/picogrid/interceptor-simulations/cmd/intercept/controllers"
	"github.com/picogrid/interceptor-simulations/pkg/logger"
)

const (
	// FramesPath is where viewers connect
	FramesPath = "/frames"

	clientBuffer = 64
	writeTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamMessage is the envelope every websocket message is sent in
type StreamMessage struct {
	Type string                 `json:"type"` // "hello", "frame"
	Run  string                 `json:"run"`
	Data *controllers.TickFrame `json:"data,omitempty"`
}

type streamClient struct {
	id   string
	conn *websocket.Conn
	send chan StreamMessage
}

// FrameStream broadcasts tick frames to websocket viewers.
// Slow viewers drop frames instead of stalling the simulation.
type FrameStream struct {
	runID   string
	mu      sync.RWMutex
	clients map[string]*streamClient
	server  *http.Server
	log     logger.Logger
}

// NewFrameStream creates a stream for one run
func NewFrameStream(runID string) *FrameStream {
	return &FrameStream{
		runID:   runID,
		clients: make(map[string]*streamClient),
		log:     logger.WithPrefix("stream"),
	}
}

// Handler upgrades viewers and serves frames until they disconnect
func (s *FrameStream) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(FramesPath, s.serveWS)
	return mux
}

func (s *FrameStream) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("upgrade failed: %v", err)
		return
	}

	client := &streamClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan StreamMessage, clientBuffer),
	}
	client.send <- StreamMessage{Type: "hello", Run: s.runID}

	s.mu.Lock()
	s.clients[client.id] = client
	s.mu.Unlock()
	s.log.Debugf("viewer %s connected (%d total)", client.id[:8], s.ClientCount())

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// reads are only used to notice the viewer going away
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	defer func() {
		s.remove(client.id)
		_ = conn.Close()
		s.log.Debugf("viewer %s disconnected", client.id[:8])
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-client.send:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"),
					time.Now().Add(writeTimeout))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

func (s *FrameStream) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, id)
}

// ClientCount returns the number of connected viewers
func (s *FrameStream) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// RecordTick broadcasts the frame to every viewer
func (s *FrameStream) RecordTick(frame controllers.TickFrame) {
	msg := StreamMessage{Type: "frame", Run: s.runID, Data: &frame}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// Start listens on addr and serves viewers in the background
func (s *FrameStream) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.server = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorf("stream server stopped: %v", err)
		}
	}()

	url := fmt.Sprintf("ws://%s%s", ln.Addr().String(), FramesPath)
	logger.Networkf("Streaming frames on %s", url)
	return url, nil
}

// Shutdown closes every viewer and stops the server
func (s *FrameStream) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for id, c := range s.clients {
		close(c.send)
		delete(s.clients, id)
	}
	s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
