// Package housekeeping runs the periodic retention compaction job that
// deletes TriggerActivation documents older than the configured retention
// period, keeping the activation store bounded.
package housekeeping

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/actionmesh/metacontrol/internal/activationstore"
	"github.com/actionmesh/metacontrol/internal/metrics"
)

// Compactor deletes activation documents older than a retention period on a
// cron schedule.
type Compactor struct {
	store     activationstore.CompactableStore
	retention time.Duration
	log       *zap.Logger

	cron *cron.Cron
}

// New returns a Compactor that deletes documents older than retention from
// store whenever the schedule fires. schedule is a standard 5-field cron
// expression (e.g. "0 3 * * *").
func New(store activationstore.CompactableStore, retention time.Duration, schedule string, log *zap.Logger) (*Compactor, error) {
	c := &Compactor{
		store:     store,
		retention: retention,
		log:       log,
		cron:      cron.New(),
	}
	if _, err := c.cron.AddFunc(schedule, c.runOnce); err != nil {
		return nil, err
	}
	return c, nil
}

// Start begins the cron schedule in the background. It does not block.
func (c *Compactor) Start() {
	c.cron.Start()
}

// Stop cancels the schedule and waits for any in-progress run to finish.
func (c *Compactor) Stop() {
	<-c.cron.Stop().Done()
}

func (c *Compactor) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-c.retention)
	n, err := c.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		c.log.Error("housekeeping compaction failed", zap.Time("cutoff", cutoff), zap.Error(err))
		return
	}

	metrics.RecordHousekeepingCompacted(n)
	if n > 0 {
		c.log.Info("housekeeping compaction completed", zap.Time("cutoff", cutoff), zap.Int64("deleted", n))
	}
}
