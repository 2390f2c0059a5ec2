package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pagegrade/pagegrade/internal/audit"
	"github.com/pagegrade/pagegrade/internal/logging"
	"github.com/pagegrade/pagegrade/internal/model"
)

const writeTimeout = 10 * time.Second

// auditEvent is the frame pushed to websocket subscribers whenever an audit
// is created, completes or fails.
type auditEvent struct {
	Type  string             `json:"type"`
	Audit *model.AuditResult `json:"audit"`
}

// stageEvent is the frame pushed while a running audit moves through the
// pipeline stages.
type stageEvent struct {
	Type    string `json:"type"`
	AuditID string `json:"audit_id"`
	Stage   string `json:"stage"`
}

// errorEvent answers a malformed or rejected inbound request.
type errorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// auditRequest is the inbound frame submitting a URL for audit.
type auditRequest struct {
	URL         string `json:"url"`
	WebsiteType string `json:"website_type"`
}

// SubmitFunc starts an audit for an inbound websocket request.
type SubmitFunc func(rawURL string, websiteType model.WebsiteType) (*model.AuditResult, error)

// Hub broadcasts audit lifecycle updates to websocket subscribers and starts
// audits submitted over the socket. It implements audit.ProgressNotifier.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	submit  SubmitFunc
	logger  logging.Logger
}

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		logger:  logger.With(logging.Field{Key: "component", Value: "ws-hub"}),
	}
}

// BindSubmitter lets inbound websocket frames start audits. Called once
// during server construction; the hub rejects inbound requests until then.
func (h *Hub) BindSubmitter(fn SubmitFunc) {
	h.submit = fn
}

// AuditUpdated pushes the result to every subscriber. A client that cannot
// be written to is dropped.
func (h *Hub) AuditUpdated(result *model.AuditResult) {
	h.broadcast(auditEvent{Type: "audit_update", Audit: result})
}

// AuditStage pushes a progress stage frame to every subscriber.
func (h *Hub) AuditStage(auditID, stage string) {
	h.broadcast(stageEvent{Type: "audit_stage", AuditID: auditID, Stage: stage})
}

func (h *Hub) broadcast(event any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(event); err != nil {
			h.logger.Debug("dropping websocket client",
				logging.Field{Key: "error", Value: err.Error()})
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Serve registers conn and blocks until the client disconnects. Inbound
// frames submit audits; the submitting client then sees the audit's stage
// frames and final result through the regular broadcasts.
func (h *Hub) Serve(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("websocket client connected", logging.Field{Key: "clients", Value: n})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		h.handleRequest(conn, data)
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *Hub) handleRequest(conn *websocket.Conn, data []byte) {
	var req auditRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.reply(conn, errorEvent{Type: "error", Error: "malformed audit request"})
		return
	}
	if h.submit == nil {
		h.reply(conn, errorEvent{Type: "error", Error: "audit submission not available"})
		return
	}
	if _, err := h.submit(req.URL, model.WebsiteType(req.WebsiteType)); err != nil {
		h.reply(conn, errorEvent{Type: "error", Error: err.Error()})
	}
}

// reply writes one frame to a single connection. Broadcast writes hold the
// same lock, so writes to a connection never interleave.
func (h *Hub) reply(conn *websocket.Conn, event any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(event); err != nil {
		h.logger.Debug("websocket reply failed",
			logging.Field{Key: "error", Value: err.Error()})
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeTimeout))
		conn.Close()
		delete(h.clients, conn)
	}
}

var _ audit.ProgressNotifier = (*Hub)(nil)

// upgrader is shared by all websocket endpoints.
func newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// TODO: tighten for production
			return true
		},
	}
}
