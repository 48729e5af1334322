package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/kkkkikiki/crowdfund/internal/config"
)

// Table names, one file per entity kind
const (
	CampaignsTable   = "campaigns"
	RewardTiersTable = "reward_tiers"
	PledgesTable     = "pledges"
	UsersTable       = "users"
)

// Headers of each table, in column order
var (
	CampaignsHeader   = []string{"campaignId", "name", "goal", "deadline", "category", "raisedTotal"}
	RewardTiersHeader = []string{"campaignId", "tierName", "minAmount", "quota"}
	PledgesHeader     = []string{"pledgeId", "userId", "campaignId", "amount", "tierName", "outcome", "createdAt"}
	UsersHeader       = []string{"userId", "username", "displayName", "credential"}
)

// DB holds the data directory and its table files
type DB struct {
	Dir string

	Campaigns   *Table
	RewardTiers *Table
	Pledges     *Table
	Users       *Table

	dir *os.File
}

// NewDB opens the data directory named by cfg, creating it when missing
func NewDB(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*DB, error) {
	return Open(ctx, cfg.Storage.Dir, Options{LegacyEscaping: cfg.Storage.LegacyEscaping}, logger)
}

// Options tune how table files are written
type Options struct {
	// LegacyEscaping replaces delimiters inside fields with spaces instead of
	// quoting them. Lossy, but byte-compatible with files written by the
	// legacy desktop tool.
	LegacyEscaping bool
}

// Open opens (or creates) a data directory at dir
func Open(ctx context.Context, dir string, opts Options, logger zerolog.Logger) (*DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	handle, err := os.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage directory: %w", err)
	}

	db := &DB{Dir: dir, dir: handle}
	newTable := func(name string, header []string) *Table {
		return &Table{
			Name:   name,
			Path:   filepath.Join(dir, name+".csv"),
			Header: header,
			opts:   opts,
			syncer: db.syncDir,
		}
	}
	db.Campaigns = newTable(CampaignsTable, CampaignsHeader)
	db.RewardTiers = newTable(RewardTiersTable, RewardTiersHeader)
	db.Pledges = newTable(PledgesTable, PledgesHeader)
	db.Users = newTable(UsersTable, UsersHeader)

	logger.Info().Str("dir", dir).Bool("legacy_escaping", opts.LegacyEscaping).Msg("opened flat-file storage")

	return db, nil
}

// syncDir flushes directory entries so a completed rename survives a crash
func (db *DB) syncDir() error {
	if db.dir == nil {
		return nil
	}
	if err := db.dir.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return fmt.Errorf("failed to sync storage directory: %w", err)
	}
	return nil
}

// Close releases the directory handle
func (db *DB) Close() error {
	if db.dir == nil {
		return nil
	}
	if err := db.dir.Close(); err != nil {
		return fmt.Errorf("failed to close storage directory: %w", err)
	}
	db.dir = nil
	return nil
}
