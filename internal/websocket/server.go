// internal/websocket/server.go
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The server only binds loopback.
		return true
	},
}

// Server bridges the core to websocket front ends: inbound RPC calls are
// routed to the target's exported methods, and it implements the event
// hub's Broadcaster so every connected client sees the push stream.
type Server struct {
	authKey string
	router  *Router
	logger  *zap.Logger

	mu         sync.RWMutex
	clients    map[string]*Client
	port       int
	httpServer *http.Server
}

// NewServer creates a server routing RPC calls to the target. An empty
// authKey disables the handshake check. logger may be nil.
func NewServer(target interface{}, authKey string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		authKey: authKey,
		router:  NewRouter(target),
		logger:  logger,
		clients: make(map[string]*Client),
	}
}

// Start listens on an ephemeral loopback port and returns it.
func (s *Server) Start(ctx context.Context) (int, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to find available port: %w", err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	s.httpServer = &http.Server{Handler: mux}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			s.logger.Error("websocket server stopped", zap.Error(err))
		}
	}()

	s.logger.Info("websocket server listening", zap.Int("port", s.port))
	return s.port, nil
}

// Stop disconnects all clients and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clients = make(map[string]*Client)
	s.mu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Port returns the bound port.
func (s *Server) Port() int {
	return s.port
}

// BroadcastEvent pushes an event to every connected client. Implements
// eventhub.Broadcaster.
func (s *Server) BroadcastEvent(eventType string, payload interface{}) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, client := range s.clients {
		if err := client.SendEvent(eventType, payload); err != nil {
			s.logger.Warn("dropping event for slow client",
				zap.String("client_id", client.ID),
				zap.String("event", eventType))
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.authKey != "" && r.Header.Get("X-Auth-Key") != s.authKey {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(uuid.NewString(), conn)
	s.mu.Lock()
	s.clients[client.ID] = client
	s.mu.Unlock()

	go client.writePump()
	s.readPump(client)
}

func (s *Server) readPump(client *Client) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, client.ID)
		s.mu.Unlock()
		client.Close()
	}()

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		s.handleMessage(client, message)
	}
}

func (s *Server) handleMessage(client *Client, message []byte) {
	var envelope Envelope
	if err := json.Unmarshal(message, &envelope); err != nil {
		s.logger.Warn("invalid websocket frame", zap.Error(err))
		return
	}
	if envelope.Kind != "rpc_request" || envelope.Request == nil {
		return
	}

	req := envelope.Request
	result, err := s.router.Call(req.Method, req.Params)

	var errMsg string
	if err != nil {
		errMsg = err.Error()
	}
	if err := client.SendResponse(req.ID, result, errMsg); err != nil {
		s.logger.Warn("failed to answer rpc",
			zap.String("method", req.Method),
			zap.Error(err))
	}
}
