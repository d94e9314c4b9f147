package ocr

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

const (
	defaultMaxConcurrent  = 4
	defaultExtractTimeout = 30 * time.Second
)

// Pool bounds concurrent document extraction. PDF parsing is CPU and
// memory heavy; without the bound a burst of uploads can take the whole
// process down.
type Pool struct {
	engine  Engine
	sem     *semaphore.Weighted
	timeout time.Duration
	log     zerolog.Logger
}

// NewPool wraps engine with a concurrency bound and a per-document
// deadline. Non-positive arguments fall back to the defaults.
func NewPool(engine Engine, maxConcurrent int64, timeout time.Duration, log zerolog.Logger) *Pool {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	if timeout <= 0 {
		timeout = defaultExtractTimeout
	}
	return &Pool{
		engine:  engine,
		sem:     semaphore.NewWeighted(maxConcurrent),
		timeout: timeout,
		log:     log,
	}
}

// ExtractText waits for a worker slot, then runs the engine under an
// explicit deadline. Cancellation while queued returns immediately without
// touching the engine.
func (p *Pool) ExtractText(ctx context.Context, data []byte) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer p.sem.Release(1)

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	text, err := p.engine.ExtractText(callCtx, data)
	if err != nil {
		p.log.Debug().Err(err).Dur("elapsed", time.Since(start)).Msg("document text extraction failed")
		return "", err
	}
	p.log.Debug().Int("bytes", len(data)).Int("chars", len(text)).Dur("elapsed", time.Since(start)).Msg("document text extracted")
	return text, nil
}
