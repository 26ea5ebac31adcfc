package domain

import "context"

// AnalyticsData holds the partnership statistics shown on the analytics page.
type AnalyticsData struct {
	ServerID          string `json:"serverId"`
	Growth            int    `json:"growth"`
	SentRequests      int    `json:"sentRequests"`
	ReceivedRequests  int    `json:"receivedRequests"`
	ReputationScore   int    `json:"reputationScore"`
	TotalPartnerships int    `json:"totalPartnerships"`
	PendingRequests   int    `json:"pendingRequests"`
	ApprovedRequests  int    `json:"approvedRequests"`
	RejectedRequests  int    `json:"rejectedRequests"`
}

// AnalyticsProvider serves per-server partnership statistics. The current
// implementation generates placeholder numbers; a real engine can replace it
// without touching callers.
type AnalyticsProvider interface {
	Analytics(ctx context.Context, serverID string) (*AnalyticsData, error)
}
