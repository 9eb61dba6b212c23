package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/fortuna/hardwood/internal/season"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict origins once the frontend host is fixed
	},
}

// Server pushes stats refresh notifications to websocket subscribers.
type Server struct {
	port   string
	server *http.Server
	hub    *Hub
}

// NewServer creates a new WebSocket server
func NewServer() *Server {
	return &Server{hub: NewHub()}
}

// Start starts the WebSocket server
func (s *Server) Start(port string) error {
	s.port = port

	go s.hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/stats", s.handleStats)
	mux.HandleFunc("/ws/health", s.handleHealth)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: mux,
	}

	log.Printf("WebSocket server listening on :%s", port)
	return s.server.ListenAndServe()
}

// handleStats subscribes a connection to stats refresh events.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// statsMessage is the payload sent after each refresh. Only the team
// summary travels over the socket; clients fetch full snapshots over
// REST.
type statsMessage struct {
	Type   string `json:"type"`
	Season int    `json:"season"`
	Teams  int    `json:"teams"`
}

// BroadcastStatsRefreshed notifies all subscribers that a season's
// stats were recomputed.
func (s *Server) BroadcastStatsRefreshed(seasonYear int, snap []season.SnapshotRow) {
	msg, err := json.Marshal(statsMessage{
		Type:   "stats_refreshed",
		Season: seasonYear,
		Teams:  len(snap),
	})
	if err != nil {
		log.Printf("[ws] encoding stats message: %v", err)
		return
	}
	s.hub.Broadcast(msg)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
