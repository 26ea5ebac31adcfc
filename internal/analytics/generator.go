// Package analytics serves partnership statistics. The Generator produces
// placeholder numbers until a real analytics pipeline exists; it sits behind
// domain.AnalyticsProvider so swapping it in later touches no callers.
package analytics

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/partnerdeck/partnerdeck/internal/domain"
)

type Generator struct {
	mu   sync.Mutex
	data map[string]*domain.AnalyticsData
	rng  *rand.Rand
}

func NewGenerator(seed uint64) *Generator {
	return &Generator{
		data: make(map[string]*domain.AnalyticsData),
		rng:  rand.New(rand.NewPCG(seed, seed)),
	}
}

// Analytics returns the statistics for a server, generating them on first
// request. Numbers are sticky per server id so the dashboard doesn't show
// different values on every refresh.
func (g *Generator) Analytics(_ context.Context, serverID string) (*domain.AnalyticsData, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if cached, ok := g.data[serverID]; ok {
		out := *cached
		return &out, nil
	}

	generated := &domain.AnalyticsData{
		ServerID:          serverID,
		Growth:            g.rng.IntN(500) + 100,
		SentRequests:      g.rng.IntN(150),
		ReceivedRequests:  g.rng.IntN(200),
		ReputationScore:   g.rng.IntN(50) + 50,
		TotalPartnerships: g.rng.IntN(75),
		PendingRequests:   g.rng.IntN(20),
		ApprovedRequests:  g.rng.IntN(60),
		RejectedRequests:  g.rng.IntN(15),
	}
	g.data[serverID] = generated

	out := *generated
	return &out, nil
}
