package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/mathblocks/internal/store"
)

// DefaultBatchSize is how many events go in one request.
const DefaultBatchSize = 200

// maxBatches bounds one sync run.
const maxBatches = 50

// SyncConfig configures the remote collector.
type SyncConfig struct {
	Endpoint  string
	Token     string
	BatchSize int
	Timeout   time.Duration
}

// SyncResult reports what a sync delivered.
type SyncResult struct {
	Sent    int
	Batches int
}

// Syncer uploads unsynced events. Concurrent calls share one run, and an
// event is marked synced only after the collector accepted it, so calling
// Sync repeatedly is safe.
type Syncer struct {
	repo   store.EventRepo
	cfg    SyncConfig
	client *http.Client
	log    zerolog.Logger
	group  singleflight.Group
}

// NewSyncer returns a Syncer for repo. With no endpoint Sync is a no-op.
func NewSyncer(repo store.EventRepo, cfg SyncConfig, log zerolog.Logger) *Syncer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Syncer{
		repo:   repo,
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

// Enabled reports whether an endpoint is configured.
func (s *Syncer) Enabled() bool {
	return s.cfg.Endpoint != ""
}

// Sync pushes every unsynced event.
func (s *Syncer) Sync(ctx context.Context) (SyncResult, error) {
	v, err, _ := s.group.Do("sync", func() (any, error) {
		return s.run(ctx)
	})
	res, _ := v.(SyncResult)
	return res, err
}

type wireEvent struct {
	ID        int64          `json:"id"`
	Sequence  int64          `json:"sequence"`
	Timestamp time.Time      `json:"timestamp"`
	Name      string         `json:"name"`
	Model     string         `json:"model,omitempty"`
	Learner   string         `json:"learner,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

type wireBatch struct {
	Events []wireEvent `json:"events"`
}

func (s *Syncer) run(ctx context.Context) (SyncResult, error) {
	var res SyncResult
	if !s.Enabled() {
		return res, nil
	}
	for res.Batches < maxBatches {
		events, err := s.repo.Query(ctx, store.QueryOpts{UnsyncedOnly: true, Limit: s.cfg.BatchSize})
		if err != nil {
			return res, err
		}
		if len(events) == 0 {
			break
		}
		if err := s.post(ctx, events); err != nil {
			return res, err
		}
		ids := make([]int64, len(events))
		for i, e := range events {
			ids[i] = e.ID
		}
		if err := s.repo.MarkSynced(ctx, ids); err != nil {
			return res, err
		}
		res.Sent += len(events)
		res.Batches++
		s.log.Debug().Int("events", len(events)).Msg("analytics batch synced")
	}
	return res, nil
}

func (s *Syncer) post(ctx context.Context, events []store.Event) error {
	batch := wireBatch{Events: make([]wireEvent, len(events))}
	for i, e := range events {
		batch.Events[i] = wireEvent{
			ID:        e.ID,
			Sequence:  e.Sequence,
			Timestamp: e.Timestamp,
			Name:      e.Name,
			Model:     e.Model,
			Learner:   e.Learner,
			SessionID: e.SessionID,
			Payload:   e.Payload,
		}
	}
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post events: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("collector returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
