package media

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/ayush/travel-journal/backend/internal/metrics"
)

// References lists every image URL still used by a story.
type References interface {
	ImageURLs(ctx context.Context) ([]string, error)
}

// Reconciler removes stored files that no story references. Files younger
// than the grace period are kept so an upload is not swept before the story
// that uses it is saved.
type Reconciler struct {
	media   *Manager
	refs    References
	grace   time.Duration
	timeout time.Duration
	log     *logrus.Logger
}

func NewReconciler(m *Manager, refs References, grace time.Duration, log *logrus.Logger) *Reconciler {
	return &Reconciler{media: m, refs: refs, grace: grace, timeout: 5 * time.Minute, log: log}
}

// Sweep runs one reconciliation pass and returns the number of files removed.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	removed, err := r.sweep(ctx)
	metrics.RecordOrphanSweep(removed, err)
	return removed, err
}

func (r *Reconciler) sweep(ctx context.Context) (int, error) {
	urls, err := r.refs.ImageURLs(ctx)
	if err != nil {
		return 0, err
	}
	referenced := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if name, ok := uploadReference(u); ok {
			referenced[name] = struct{}{}
		}
	}

	var objs []string
	cutoff := r.media.now().Add(-r.grace)
	err = r.media.run(ctx, "list", func(ctx context.Context) error {
		list, err := r.media.backend.List(ctx)
		if err != nil {
			return err
		}
		for _, o := range list {
			if _, ok := referenced[o.Name]; ok || o.ModTime.After(cutoff) {
				continue
			}
			objs = append(objs, o.Name)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range objs {
		err := r.media.run(ctx, "remove", func(ctx context.Context) error {
			return r.media.backend.Remove(ctx, name)
		})
		if err != nil {
			r.log.WithError(err).WithField("name", name).Warn("orphan removal failed")
			continue
		}
		removed++
	}
	return removed, nil
}

// uploadReference returns the stored name a story URL points at. Host and
// scheme are ignored so stories saved under an older base URL still keep
// their files.
func uploadReference(rawURL string) (string, bool) {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	if !strings.Contains(p, uploadsPrefix) {
		return "", false
	}
	return NameFromURL(rawURL)
}

// Start schedules Sweep on a cron spec such as "@every 1h". The caller
// stops the returned scheduler on shutdown.
func (r *Reconciler) Start(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		removed, err := r.Sweep(ctx)
		if err != nil {
			r.log.WithError(err).Error("orphan sweep failed")
			return
		}
		r.log.WithField("removed", removed).Info("orphan sweep finished")
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
