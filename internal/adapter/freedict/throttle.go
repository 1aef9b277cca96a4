package freedict

import (
	"math/rand/v2"
	"net/http"
	"sync"
	"time"
)

// rateLimiter enforces the dictionary API's process-global rate limit (spec
// §4.5/§5): at most one in-flight request, a base minimum interval between
// request starts, an interval that grows on HTTP 429 up to a ceiling, and a
// bounded backoff wait. It is shared by every Provider constructed from the
// same *rateLimiter (see NewProviderWithLimiter), so concurrent fetchers
// across the process observe the same cooldown.
type rateLimiter struct {
	mu            sync.Mutex
	sem           chan struct{}
	nextAllowedAt time.Time
	interval      time.Duration
}

const (
	baseInterval   = 600 * time.Millisecond
	maxInterval    = 2500 * time.Millisecond
	maxBackoffWait = 8 * time.Second
	jitterFraction = 0.2
)

func newRateLimiter() *rateLimiter {
	return &rateLimiter{
		sem:      make(chan struct{}, 1),
		interval: baseInterval,
	}
}

// acquire blocks the caller until it's the rate limiter's turn to issue a
// request, then returns a release function that must be called once the
// request (including its retries) has finished.
func (r *rateLimiter) acquire() func() {
	r.sem <- struct{}{}

	r.mu.Lock()
	wait := time.Until(r.nextAllowedAt)
	r.mu.Unlock()

	if wait > 0 {
		if wait > maxBackoffWait {
			wait = maxBackoffWait
		}
		time.Sleep(wait)
	}

	return func() { <-r.sem }
}

// scheduleNext records when the next request may start, applying jitter
// around the current interval.
func (r *rateLimiter) scheduleNext() {
	r.mu.Lock()
	defer r.mu.Unlock()

	jitter := time.Duration(float64(r.interval) * jitterFraction * rand.Float64())
	r.nextAllowedAt = time.Now().Add(r.interval + jitter)
}

// onRateLimited grows the interval (capped) after an HTTP 429, so subsequent
// fetchers observe the extended cooldown.
func (r *rateLimiter) onRateLimited() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.interval *= 2
	if r.interval > maxInterval {
		r.interval = maxInterval
	}
}

// onSuccess relaxes the interval back toward the base rate after a clean
// response, so a transient 429 burst doesn't permanently slow the run.
func (r *rateLimiter) onSuccess() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.interval > baseInterval {
		r.interval -= r.interval / 4
		if r.interval < baseInterval {
			r.interval = baseInterval
		}
	}
}

func isRateLimited(resp *http.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusTooManyRequests
}
