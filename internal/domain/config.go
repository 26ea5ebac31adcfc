package domain

import (
	"context"
	"time"
)

// Section names as they appear in the API route layout.
const (
	SectionMain     = "main"
	SectionChannels = "channels"
	SectionOther    = "other"
	SectionPremium  = "premium"
)

// DefaultEmbedColor is Discord's blurple, used when a premium config omits a color.
const DefaultEmbedColor = "#5865F2"

// MainConfig holds the advertisement a server publishes to partners.
type MainConfig struct {
	AdTitle       string   `json:"adTitle"`
	AdDescription string   `json:"adDescription"`
	AdInviteLink  string   `json:"adInviteLink"`
	AdOtherLinks  []string `json:"adOtherLinks"`
	AdBanner      string   `json:"adBanner"`
}

// ChannelConfig assigns bot functions to channels. A nil entry means the
// function is disabled for that server.
type ChannelConfig struct {
	PartnerChannel *string `json:"partnerChannel"`
	ReviewChannel  *string `json:"reviewChannel"`
	BumpChannel    *string `json:"bumpChannel"`
	LogChannel     *string `json:"logChannel"`
}

// OtherConfig holds the server's directory category.
type OtherConfig struct {
	Category string `json:"category"`
}

// PremiumConfig toggles paid automation features.
type PremiumConfig struct {
	EmbedColor  string `json:"embedColor"`
	AutoApprove bool   `json:"autoApprove"`
	AutoBump    bool   `json:"autoBump"`
	AutoMass    bool   `json:"autoMass"`
	AutoBurst   bool   `json:"autoBurst"`
}

// ServerConfig is the aggregate record for one Discord server. Each section
// is optional and updated independently; updating one section never touches
// the others.
type ServerConfig struct {
	ServerID      string         `json:"serverId"`
	MainConfig    *MainConfig    `json:"mainConfig,omitempty"`
	ChannelConfig *ChannelConfig `json:"channelConfig,omitempty"`
	OtherConfig   *OtherConfig   `json:"otherConfig,omitempty"`
	PremiumConfig *PremiumConfig `json:"premiumConfig,omitempty"`
	UpdatedAt     time.Time      `json:"updatedAt,omitzero"`
}

// Categories is the fixed set of directory categories a server can pick.
var Categories = []string{
	"Gaming",
	"Technology",
	"Music",
	"Education",
	"Community",
	"Entertainment",
	"Art & Design",
	"Business",
	"Lifestyle",
	"Other",
}

// ValidCategory reports whether s is one of the fixed directory categories.
func ValidCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}

// ConfigStore is keyed storage of ServerConfig aggregates. Records are
// created implicitly on first upsert. Get never fails for a missing record;
// it returns an aggregate with all sections absent. Concurrent upserts of
// different sections of the same server must both survive, which requires
// implementations to merge at section granularity rather than
// read-modify-write the whole aggregate.
type ConfigStore interface {
	Get(ctx context.Context, serverID string) (*ServerConfig, error)
	UpsertMain(ctx context.Context, serverID string, cfg MainConfig) error
	UpsertChannels(ctx context.Context, serverID string, cfg ChannelConfig) error
	UpsertOther(ctx context.Context, serverID string, cfg OtherConfig) error
	UpsertPremium(ctx context.Context, serverID string, cfg PremiumConfig) error
}
