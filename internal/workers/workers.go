package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"devtogether/internal/pkg/metrics"
	"devtogether/internal/platform/config"
)

type readPurger interface {
	PurgeRead(retention time.Duration) (int64, error)
}

// NotificationPurger deletes read notifications once they age past the retention window.
type NotificationPurger struct {
	store     readPurger
	retention time.Duration
	interval  time.Duration
}

func NewNotificationPurger(store readPurger, cfg config.NotificationsConfig) *NotificationPurger {
	interval := cfg.PurgeInterval
	if interval <= 0 {
		interval = time.Hour
	}
	return &NotificationPurger{store: store, retention: cfg.ReadRetention, interval: interval}
}

// Run purges once immediately and then on every interval until ctx is done.
func (p *NotificationPurger) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if _, err := p.PurgeOnce(); err != nil {
			log.Error().Err(err).Msg("notification purge failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *NotificationPurger) PurgeOnce() (int64, error) {
	if p.retention <= 0 {
		return 0, nil
	}
	n, err := p.store.PurgeRead(p.retention)
	if err != nil {
		return 0, err
	}
	metrics.ObservePurged(n)
	log.Info().Int64("deleted", n).Dur("retention", p.retention).Msg("purged read notifications")
	return n, nil
}
