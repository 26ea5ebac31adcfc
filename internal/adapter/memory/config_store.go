// Package memory implements the config store as a process-local map. It is
// used in tests and when no DATABASE_URL is configured.
package memory

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/partnerdeck/partnerdeck/internal/domain"
)

// ConfigStore keeps one ServerConfig aggregate per server id. Section
// upserts replace only their own section under the store lock, so concurrent
// upserts of different sections never lose each other's writes.
type ConfigStore struct {
	mu      sync.RWMutex
	configs map[string]*domain.ServerConfig
	clock   clockwork.Clock
}

var _ domain.ConfigStore = (*ConfigStore)(nil)

func NewConfigStore(clock clockwork.Clock) *ConfigStore {
	return &ConfigStore{
		configs: make(map[string]*domain.ServerConfig),
		clock:   clock,
	}
}

// Get returns a copy of the aggregate, or an empty record with all sections
// absent when nothing was ever stored for this id.
func (s *ConfigStore) Get(_ context.Context, serverID string) (*domain.ServerConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[serverID]
	if !ok {
		return &domain.ServerConfig{ServerID: serverID}, nil
	}

	return cloneConfig(cfg), nil
}

func (s *ConfigStore) UpsertMain(_ context.Context, serverID string, cfg domain.MainConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.record(serverID)
	section := cfg
	section.AdOtherLinks = append([]string(nil), cfg.AdOtherLinks...)
	record.MainConfig = &section
	record.UpdatedAt = s.clock.Now()
	return nil
}

func (s *ConfigStore) UpsertChannels(_ context.Context, serverID string, cfg domain.ChannelConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.record(serverID)
	section := domain.ChannelConfig{
		PartnerChannel: cloneString(cfg.PartnerChannel),
		ReviewChannel:  cloneString(cfg.ReviewChannel),
		BumpChannel:    cloneString(cfg.BumpChannel),
		LogChannel:     cloneString(cfg.LogChannel),
	}
	record.ChannelConfig = &section
	record.UpdatedAt = s.clock.Now()
	return nil
}

func (s *ConfigStore) UpsertOther(_ context.Context, serverID string, cfg domain.OtherConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.record(serverID)
	section := cfg
	record.OtherConfig = &section
	record.UpdatedAt = s.clock.Now()
	return nil
}

func (s *ConfigStore) UpsertPremium(_ context.Context, serverID string, cfg domain.PremiumConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.record(serverID)
	section := cfg
	record.PremiumConfig = &section
	record.UpdatedAt = s.clock.Now()
	return nil
}

// record returns the aggregate for serverID, creating it implicitly on first
// use. Caller must hold the write lock.
func (s *ConfigStore) record(serverID string) *domain.ServerConfig {
	cfg, ok := s.configs[serverID]
	if !ok {
		cfg = &domain.ServerConfig{ServerID: serverID}
		s.configs[serverID] = cfg
	}
	return cfg
}

func cloneConfig(cfg *domain.ServerConfig) *domain.ServerConfig {
	out := &domain.ServerConfig{
		ServerID:  cfg.ServerID,
		UpdatedAt: cfg.UpdatedAt,
	}

	if cfg.MainConfig != nil {
		main := *cfg.MainConfig
		main.AdOtherLinks = append([]string(nil), cfg.MainConfig.AdOtherLinks...)
		out.MainConfig = &main
	}
	if cfg.ChannelConfig != nil {
		out.ChannelConfig = &domain.ChannelConfig{
			PartnerChannel: cloneString(cfg.ChannelConfig.PartnerChannel),
			ReviewChannel:  cloneString(cfg.ChannelConfig.ReviewChannel),
			BumpChannel:    cloneString(cfg.ChannelConfig.BumpChannel),
			LogChannel:     cloneString(cfg.ChannelConfig.LogChannel),
		}
	}
	if cfg.OtherConfig != nil {
		other := *cfg.OtherConfig
		out.OtherConfig = &other
	}
	if cfg.PremiumConfig != nil {
		premium := *cfg.PremiumConfig
		out.PremiumConfig = &premium
	}

	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
