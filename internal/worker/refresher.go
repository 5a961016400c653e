package worker

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/equipctl/equipctl/internal/client"
	"github.com/equipctl/equipctl/internal/log"
	"github.com/equipctl/equipctl/internal/model"
)

// EquipmentLister fetches the current equipment collection.
type EquipmentLister interface {
	List(ctx context.Context) ([]model.Equipment, error)
}

// Compile-time check that the REST client satisfies EquipmentLister
var _ EquipmentLister = (*client.Client)(nil)

// Refresher periodically reloads the equipment list and reports each
// result through a callback. Used by watch mode.
type Refresher struct {
	mu       sync.Mutex
	lister   EquipmentLister
	interval time.Duration
	onResult func(items []model.Equipment, err error)
	cron     *cron.Cron
	running  bool
}

// NewRefresher creates a refresher that polls at the given interval.
func NewRefresher(lister EquipmentLister, interval time.Duration, onResult func([]model.Equipment, error)) *Refresher {
	return &Refresher{
		lister:   lister,
		interval: interval,
		onResult: onResult,
	}
}

// Start begins periodic refresh. The first fetch runs immediately,
// subsequent fetches follow the configured interval.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}

	r.cron = cron.New()
	_, err := r.cron.AddFunc("@every "+r.interval.String(), func() {
		r.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	r.cron.Start()
	r.running = true
	log.Info("Refresher started", "interval", r.interval.String())

	go r.RunOnce(ctx)
	return nil
}

// Stop halts periodic refresh and waits for any in-flight fetch
// started by the cron schedule to complete.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}

	<-r.cron.Stop().Done()
	r.running = false
	log.Info("Refresher stopped")
}

// RunOnce performs a single fetch and delivers the result.
func (r *Refresher) RunOnce(ctx context.Context) {
	items, err := r.lister.List(ctx)
	if err != nil {
		log.Warn("Refresh failed", "error", err)
	} else {
		log.Debug("Refresh completed", "count", len(items))
	}
	if r.onResult != nil {
		r.onResult(items, err)
	}
}
