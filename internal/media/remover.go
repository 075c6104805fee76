package media

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Remover deletes images in the background. Failures are logged, never returned,
// so a broken media host cannot block or roll back the write that orphaned the image.
// A nil *Remover or one without a host does nothing.
type Remover struct {
	host    Host
	log     zerolog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewRemover(host Host, log zerolog.Logger) *Remover {
	return &Remover{host: host, log: log, timeout: 30 * time.Second}
}

// Remove schedules deletion of every non-empty url.
func (r *Remover) Remove(urls ...string) {
	if r == nil || r.host == nil {
		return
	}
	ids := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		if id := ExtractPublicID(u); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		// detached from the request, which has usually finished by now
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		for _, id := range ids {
			if err := r.host.Destroy(ctx, id); err != nil {
				r.log.Warn().Err(err).Str("public_id", id).Msg("failed to remove image")
				continue
			}
			r.log.Debug().Str("public_id", id).Msg("image removed")
		}
	}()
}

// Wait blocks until scheduled removals have finished.
func (r *Remover) Wait() {
	if r == nil {
		return
	}
	r.wg.Wait()
}
