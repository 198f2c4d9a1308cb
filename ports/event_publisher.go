package ports

import (
	"time"

	"goportfolio/domain/core"
)

// Portfolio event types
const (
	EventEvaluationsAdded  = "evaluations_added"
	EventEvaluationRemoved = "evaluation_removed"
	EventPortfolioDeleted  = "portfolio_deleted"
)

// PortfolioEvent tells a rendering client that a portfolio's constraint
// system changed and its geometry should be refetched
type PortfolioEvent struct {
	PortfolioID core.PortfolioID       `json:"portfolio_id"`
	EventType   string                 `json:"event_type"`
	SystemHash  string                 `json:"system_hash,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

// EventPublisher fans portfolio events out to subscribers. Publish must
// not block.
type EventPublisher interface {
	Publish(event PortfolioEvent)
}
