package signal

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"paystream/internal/core/domain"
	"paystream/internal/infrastructure/events"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// FeedServer pushes the stream event feed to connected indexer and dashboard
// clients over WebSocket. Events are advisory; a slow client is dropped
// rather than allowed to stall the feed.
type FeedServer struct {
	bus events.Bus

	connections map[string]*websocket.Conn
	mu          sync.RWMutex

	pingInterval time.Duration
	writeTimeout time.Duration

	server *http.Server
	logger *zap.SugaredLogger
}

func NewFeedServer(bus events.Bus, address string, logger *zap.SugaredLogger) *FeedServer {
	s := &FeedServer{
		bus:          bus,
		connections:  make(map[string]*websocket.Conn),
		pingInterval: 30 * time.Second,
		writeTimeout: 10 * time.Second,
		logger:       logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/feed", s.handleFeed)
	s.server = &http.Server{Addr: address, Handler: mux}

	return s
}

// Start subscribes to the bus and serves until the context is cancelled.
func (s *FeedServer) Start(ctx context.Context) error {
	if err := s.bus.Subscribe(ctx, s.broadcast); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Infow("event feed listening", "address", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *FeedServer) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}

	clientID := uuid.NewString()
	s.mu.Lock()
	s.connections[clientID] = conn
	s.mu.Unlock()

	s.logger.Infow("feed client connected", "client_id", clientID, "remote", r.RemoteAddr)

	go s.keepAlive(clientID, conn)
}

func (s *FeedServer) keepAlive(clientID string, conn *websocket.Conn) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	defer s.drop(clientID, conn)

	// Discard inbound frames; the feed is one-way.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for range ticker.C {
		conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}

func (s *FeedServer) drop(clientID string, conn *websocket.Conn) {
	conn.Close()
	s.mu.Lock()
	delete(s.connections, clientID)
	s.mu.Unlock()
	s.logger.Infow("feed client disconnected", "client_id", clientID)
}

func (s *FeedServer) broadcast(event *domain.StreamEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorw("failed to marshal event for feed", "error", err)
		return
	}

	s.mu.RLock()
	conns := make(map[string]*websocket.Conn, len(s.connections))
	for id, c := range s.connections {
		conns[id] = c
	}
	s.mu.RUnlock()

	for id, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.Warnw("dropping slow feed client", "client_id", id, "error", err)
			s.drop(id, conn)
		}
	}
}
