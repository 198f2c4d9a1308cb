package api

import (
	"testing"
	"time"

	"goportfolio/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEHub_DeliversToPortfolioClients(t *testing.T) {
	hub := NewSSEHub()
	defer hub.Close()

	mine := make(chan ports.PortfolioEvent, 1)
	other := make(chan ports.PortfolioEvent, 1)
	hub.register <- SSEClient{PortfolioID: "p1", Channel: mine}
	hub.register <- SSEClient{PortfolioID: "p2", Channel: other}
	require.Eventually(t, func() bool {
		return hub.ClientCount("p1") == 1 && hub.ClientCount("p2") == 1
	}, time.Second, 5*time.Millisecond)

	hub.Publish(ports.PortfolioEvent{PortfolioID: "p1", EventType: ports.EventEvaluationsAdded})

	select {
	case e := <-mine:
		assert.Equal(t, ports.EventEvaluationsAdded, e.EventType)
		assert.False(t, e.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	assert.Empty(t, other)

	hub.unregister <- SSEClient{PortfolioID: "p1", Channel: mine}
	require.Eventually(t, func() bool { return hub.ClientCount("p1") == 0 }, time.Second, 5*time.Millisecond)
}
