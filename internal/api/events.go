package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"taskpilot/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development - customize for production
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const eventReadDeadline = 60 * time.Second

// EventsHandler streams task lifecycle events over WebSocket
type EventsHandler struct {
	jwtService  *services.JWTService
	taskService *services.TaskService
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(jwtService *services.JWTService, taskService *services.TaskService) *EventsHandler {
	return &EventsHandler{
		jwtService:  jwtService,
		taskService: taskService,
	}
}

// HandleWebSocket handles WebSocket connections for streaming task events
// GET /events
// WebSocket protocol:
// 1. Client sends: $AUTH <jwt-token>
// 2. Server validates token and replies AUTH_SUCCESS
// 3. Server pushes task events as JSON messages
func (h *EventsHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WEBSOCKET] Failed to upgrade connection - %v", err)
		return
	}
	defer conn.Close()

	claims, err := h.authenticate(conn)
	if err != nil {
		log.Printf("[WEBSOCKET] Authentication failed - %v", err)
		conn.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf("ERROR: %v", err)))
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("AUTH_SUCCESS")); err != nil {
		log.Printf("Failed to send auth success message: %v", err)
		return
	}

	connectionID := uuid.New().String()
	log.Printf("[WEBSOCKET] Event stream established: connection_id=%s, device=%s", connectionID, claims.DeviceID)

	// Respond to client pings and extend the read deadline
	conn.SetPingHandler(func(appData string) error {
		if err := conn.SetReadDeadline(time.Now().Add(eventReadDeadline)); err != nil {
			log.Printf("Failed to extend read deadline: %v", err)
		}
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(10*time.Second))
	})
	if err := conn.SetReadDeadline(time.Now().Add(eventReadDeadline)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}

	events, cancel := h.taskService.Subscribe()
	defer cancel()

	// Reader goroutine: drains client messages so ping/close frames are
	// processed, signals when the connection dies.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("WebSocket error: %v", err)
				}
				return
			}
			if err := conn.SetReadDeadline(time.Now().Add(eventReadDeadline)); err != nil {
				log.Printf("Failed to extend read deadline: %v", err)
			}
		}
	}()

	sent := 0
	startTime := time.Now()
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("[WEBSOCKET] Failed to write event: connection_id=%s, error=%v", connectionID, err)
				return
			}
			sent++
		case <-done:
			log.Printf("[WEBSOCKET] Event stream closed: connection_id=%s, device=%s, events_sent=%d, duration=%.0fs",
				connectionID, claims.DeviceID, sent, time.Since(startTime).Seconds())
			return
		}
	}
}

// authenticate waits for and validates the $AUTH message
func (h *EventsHandler) authenticate(conn *websocket.Conn) (*services.DeviceClaims, error) {
	messageType, message, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("failed to read auth message: %w", err)
	}
	if messageType != websocket.TextMessage {
		return nil, fmt.Errorf("expected text message for authentication")
	}

	msgStr := strings.TrimSpace(string(message))
	if !strings.HasPrefix(msgStr, "$AUTH ") {
		return nil, fmt.Errorf("first message must be $AUTH <token>")
	}

	token := strings.TrimSpace(strings.TrimPrefix(msgStr, "$AUTH "))
	if token == "" {
		return nil, fmt.Errorf("token is required")
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}
