package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"goportfolio/ports"

	"github.com/gin-gonic/gin"
)

// SSEClient represents a connected SSE client
type SSEClient struct {
	PortfolioID string
	Channel     chan ports.PortfolioEvent
}

// SSEHub manages Server-Sent Events for portfolio change notifications
type SSEHub struct {
	clients    map[string]map[chan ports.PortfolioEvent]bool
	clientsMu  sync.RWMutex
	register   chan SSEClient
	unregister chan SSEClient
	broadcast  chan ports.PortfolioEvent
	done       chan struct{}
	closeOnce  sync.Once

	keepAlive time.Duration
}

// NewSSEHub creates a new SSE hub and starts its dispatch loop
func NewSSEHub() *SSEHub {
	hub := &SSEHub{
		clients:    make(map[string]map[chan ports.PortfolioEvent]bool),
		register:   make(chan SSEClient, 10),
		unregister: make(chan SSEClient, 10),
		broadcast:  make(chan ports.PortfolioEvent, 100),
		done:       make(chan struct{}),
		keepAlive:  30 * time.Second,
	}

	go hub.run()
	return hub
}

// Close stops the dispatch loop and disconnects every client
func (h *SSEHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// run processes SSE hub operations
func (h *SSEHub) run() {
	for {
		select {
		case <-h.done:
			h.clientsMu.Lock()
			for id, clients := range h.clients {
				for ch := range clients {
					close(ch)
				}
				delete(h.clients, id)
			}
			h.clientsMu.Unlock()
			return

		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.PortfolioID] == nil {
				h.clients[client.PortfolioID] = make(map[chan ports.PortfolioEvent]bool)
			}
			h.clients[client.PortfolioID][client.Channel] = true
			log.Printf("[SSE] Client registered for portfolio %s (total clients: %d)",
				client.PortfolioID, len(h.clients[client.PortfolioID]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.PortfolioID]; exists {
				if clients[client.Channel] {
					delete(clients, client.Channel)
					close(client.Channel)
				}
				if len(clients) == 0 {
					delete(h.clients, client.PortfolioID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for clientChan := range h.clients[event.PortfolioID.String()] {
				select {
				case clientChan <- event:
				default:
					log.Printf("[SSE] Client channel full for portfolio %s, skipping event", event.PortfolioID)
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// Publish implements ports.EventPublisher
func (h *SSEHub) Publish(event ports.PortfolioEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[SSE] Broadcast channel full, dropping event: %s", event.EventType)
	}
}

// HandleSSE streams the events of one portfolio
func (h *SSEHub) HandleSSE(c *gin.Context) {
	portfolioID := c.Param("id")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "Cache-Control")

	clientChan := make(chan ports.PortfolioEvent, 10)

	select {
	case h.register <- SSEClient{PortfolioID: portfolioID, Channel: clientChan}:
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "SSE hub registration failed"})
		return
	}

	defer func() {
		select {
		case h.unregister <- SSEClient{PortfolioID: portfolioID, Channel: clientChan}:
		default:
		}
	}()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-clientChan:
			if !ok {
				return false
			}
			eventJSON, err := json.Marshal(event)
			if err != nil {
				log.Printf("[SSE] Failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(event.EventType, string(eventJSON))
			return true

		case <-time.After(h.keepAlive):
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}

// ClientCount returns the number of active clients for a portfolio
func (h *SSEHub) ClientCount(portfolioID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[portfolioID])
}
