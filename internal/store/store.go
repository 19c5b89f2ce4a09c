// Package store provides the durable key-value layer underneath the ledger:
// JSON values over a flat string key space, a timestamped backup copy on
// every save, and automatic recovery from the newest backup when a primary
// record is missing or corrupt.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	applog "caja/internal/log"
)

// LastBackupKey records the wall-clock time of the most recent backed-up save.
const LastBackupKey = "control-caja-backup-timestamp"

const (
	backupSep     = "_backup_"
	backupKeep    = 5
	backupVersion = "1.0"
	probeKey      = "__store_probe__"
)

// ErrUnavailable is returned by every write when the capability probe failed
// at open time. The session keeps operating in memory without persistence.
var ErrUnavailable = errors.New("storage unavailable")

// Backend is the flat string-keyed storage medium underneath the Store.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Clear(ctx context.Context) error
}

type backupEnvelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	Version   string          `json:"version"`
}

// Store layers JSON encoding, backup rotation and recovery-on-read over a
// Backend.
type Store struct {
	backend   Backend
	now       func() time.Time
	available bool
	warnOnce  sync.Once
}

// New probes the backend with a trivial write and delete. If the probe fails
// the store opens in degraded mode: every Save reports ErrUnavailable and
// every Load returns the caller's default.
func New(ctx context.Context, backend Backend) *Store {
	return NewWithClock(ctx, backend, time.Now)
}

// NewWithClock is New with an injectable clock for deterministic backup
// timestamps in tests.
func NewWithClock(ctx context.Context, backend Backend, now func() time.Time) *Store {
	s := &Store{backend: backend, now: now}
	s.available = s.probe(ctx)
	if !s.available {
		s.warn()
	}
	return s
}

// Available reports whether the open-time capability probe succeeded.
func (s *Store) Available() bool {
	return s.available
}

func (s *Store) probe(ctx context.Context) bool {
	if err := s.backend.Set(ctx, probeKey, "ok"); err != nil {
		return false
	}
	if err := s.backend.Delete(ctx, probeKey); err != nil {
		return false
	}
	return true
}

func (s *Store) warn() {
	s.warnOnce.Do(func() {
		slog.Warn("storage unavailable, data will not survive this session",
			applog.FieldComponent, applog.ComponentStore)
	})
}

// Save writes v under key, adds a timestamped backup copy, records the
// last-backup marker and prunes that key's backups to the newest five.
func (s *Store) Save(ctx context.Context, key string, v any) error {
	if !s.available {
		s.warn()
		return ErrUnavailable
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	ts := s.now().UnixMilli()

	if err := s.backend.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	env, err := json.Marshal(backupEnvelope{Data: raw, Timestamp: ts, Version: backupVersion})
	if err != nil {
		return fmt.Errorf("encode backup for %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, backupKey(key, ts), string(env)); err != nil {
		return fmt.Errorf("write backup for %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, LastBackupKey, strconv.FormatInt(ts, 10)); err != nil {
		return fmt.Errorf("write backup marker: %w", err)
	}

	s.pruneBackups(ctx, key)
	return nil
}

// Load reads key into dest. A missing or unparseable primary record falls
// through to the newest backup, which is restored into the primary key on
// success. When nothing usable exists dest is left at the caller's default
// and Load reports false.
func (s *Store) Load(ctx context.Context, key string, dest any) bool {
	if !s.available {
		s.warn()
		return false
	}

	raw, ok, err := s.backend.Get(ctx, key)
	if err == nil && ok {
		if json.Valid([]byte(raw)) && json.Unmarshal([]byte(raw), dest) == nil {
			return true
		}
		slog.Warn("primary record unreadable, trying backups",
			applog.FieldComponent, applog.ComponentStore, applog.FieldKey, key)
	}

	return s.recoverFromBackup(ctx, key, dest)
}

func (s *Store) recoverFromBackup(ctx context.Context, key string, dest any) bool {
	keys, err := s.backend.Keys(ctx, key+backupSep)
	if err != nil || len(keys) == 0 {
		return false
	}
	sortByTimestampDesc(keys)

	for _, bk := range keys {
		raw, ok, err := s.backend.Get(ctx, bk)
		if err != nil || !ok {
			continue
		}
		var env backupEnvelope
		if json.Unmarshal([]byte(raw), &env) != nil {
			continue
		}
		if len(env.Data) == 0 || json.Unmarshal(env.Data, dest) != nil {
			continue
		}
		// Self-heal: restore the recovered payload into the primary key.
		if err := s.backend.Set(ctx, key, string(env.Data)); err != nil {
			slog.Warn("failed to restore primary record from backup",
				applog.FieldComponent, applog.ComponentStore,
				applog.FieldKey, key, applog.FieldError, err)
		}
		slog.Info("recovered record from backup",
			applog.FieldComponent, applog.ComponentStore,
			applog.FieldKey, key, "backup", bk)
		return true
	}
	return false
}

// LastBackup returns the time of the most recent backed-up save, if any.
func (s *Store) LastBackup(ctx context.Context) (time.Time, bool) {
	if !s.available {
		return time.Time{}, false
	}
	raw, ok, err := s.backend.Get(ctx, LastBackupKey)
	if err != nil || !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// Clear deletes every record including backups and the last-backup marker.
func (s *Store) Clear(ctx context.Context) error {
	if !s.available {
		s.warn()
		return ErrUnavailable
	}
	return s.backend.Clear(ctx)
}

func (s *Store) pruneBackups(ctx context.Context, key string) {
	keys, err := s.backend.Keys(ctx, key+backupSep)
	if err != nil {
		slog.Warn("failed to list backups for pruning",
			applog.FieldComponent, applog.ComponentStore,
			applog.FieldKey, key, applog.FieldError, err)
		return
	}
	if len(keys) <= backupKeep {
		return
	}
	sortByTimestampDesc(keys)
	for _, old := range keys[backupKeep:] {
		if err := s.backend.Delete(ctx, old); err != nil {
			slog.Warn("failed to delete old backup",
				applog.FieldComponent, applog.ComponentStore,
				applog.FieldKey, old, applog.FieldError, err)
		}
	}
}

func backupKey(key string, ts int64) string {
	return key + backupSep + strconv.FormatInt(ts, 10)
}

func embeddedTimestamp(backupKey string) int64 {
	i := strings.LastIndex(backupKey, "_")
	if i < 0 {
		return 0
	}
	ts, err := strconv.ParseInt(backupKey[i+1:], 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

func sortByTimestampDesc(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		return embeddedTimestamp(keys[i]) > embeddedTimestamp(keys[j])
	})
}
