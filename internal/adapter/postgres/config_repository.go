package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/partnerdeck/partnerdeck/internal/domain"
)

// Section columns, one JSONB column per independently updatable section.
// Upserting a section writes exactly one column in a single statement, so
// concurrent upserts of different sections for the same server id cannot
// clobber each other.
const (
	columnMain     = "main_config"
	columnChannels = "channel_config"
	columnOther    = "other_config"
	columnPremium  = "premium_config"
)

type ConfigRepo struct {
	pool *pgxpool.Pool
}

var _ domain.ConfigStore = (*ConfigRepo)(nil)

func NewConfigRepo(pool *pgxpool.Pool) *ConfigRepo {
	return &ConfigRepo{pool: pool}
}

func (r *ConfigRepo) Get(ctx context.Context, serverID string) (*domain.ServerConfig, error) {
	var (
		mainRaw, channelsRaw, otherRaw, premiumRaw []byte
		updatedAt                                  time.Time
	)

	err := r.pool.QueryRow(ctx, `
		SELECT main_config, channel_config, other_config, premium_config, updated_at
		FROM server_configs
		WHERE server_id = $1
	`, serverID).Scan(&mainRaw, &channelsRaw, &otherRaw, &premiumRaw, &updatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.ServerConfig{ServerID: serverID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	cfg := &domain.ServerConfig{
		ServerID:  serverID,
		UpdatedAt: updatedAt,
	}

	if err := unmarshalSection(mainRaw, &cfg.MainConfig); err != nil {
		return nil, fmt.Errorf("corrupt main_config for server %s: %w", serverID, err)
	}
	if err := unmarshalSection(channelsRaw, &cfg.ChannelConfig); err != nil {
		return nil, fmt.Errorf("corrupt channel_config for server %s: %w", serverID, err)
	}
	if err := unmarshalSection(otherRaw, &cfg.OtherConfig); err != nil {
		return nil, fmt.Errorf("corrupt other_config for server %s: %w", serverID, err)
	}
	if err := unmarshalSection(premiumRaw, &cfg.PremiumConfig); err != nil {
		return nil, fmt.Errorf("corrupt premium_config for server %s: %w", serverID, err)
	}

	return cfg, nil
}

func (r *ConfigRepo) UpsertMain(ctx context.Context, serverID string, cfg domain.MainConfig) error {
	return r.upsertSection(ctx, serverID, columnMain, cfg)
}

func (r *ConfigRepo) UpsertChannels(ctx context.Context, serverID string, cfg domain.ChannelConfig) error {
	return r.upsertSection(ctx, serverID, columnChannels, cfg)
}

func (r *ConfigRepo) UpsertOther(ctx context.Context, serverID string, cfg domain.OtherConfig) error {
	return r.upsertSection(ctx, serverID, columnOther, cfg)
}

func (r *ConfigRepo) UpsertPremium(ctx context.Context, serverID string, cfg domain.PremiumConfig) error {
	return r.upsertSection(ctx, serverID, columnPremium, cfg)
}

func (r *ConfigRepo) upsertSection(ctx context.Context, serverID, column string, section any) error {
	payload, err := json.Marshal(section)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", column, err)
	}

	// column comes from the fixed constants above, never from user input.
	query := fmt.Sprintf(`
		INSERT INTO server_configs (server_id, %[1]s, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (server_id) DO UPDATE SET
			%[1]s = EXCLUDED.%[1]s,
			updated_at = NOW()
	`, column)

	if _, err := r.pool.Exec(ctx, query, serverID, payload); err != nil {
		return fmt.Errorf("failed to upsert %s: %w", column, err)
	}
	return nil
}

func unmarshalSection[T any](raw []byte, target **T) error {
	if len(raw) == 0 {
		return nil
	}
	var section T
	if err := json.Unmarshal(raw, &section); err != nil {
		return err
	}
	*target = &section
	return nil
}
