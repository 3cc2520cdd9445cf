package password

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/jrsteele09/casnet-auth/metrics"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// MaxBytes is the longest plaintext bcrypt uses in full. Longer inputs are rejected rather than
// silently truncated.
const MaxBytes = 72

// Hasher produces and checks salted password digests.
type Hasher interface {
	// Hash returns a self-describing digest of plaintext. Two calls with the same input differ.
	Hash(ctx context.Context, plaintext string) (string, error)
	// Verify reports whether plaintext matches digest. Malformed digests verify as false.
	Verify(ctx context.Context, plaintext, digest string) bool
}

// BcryptHasher hashes with bcrypt. Work runs under a fixed budget of concurrent operations so that
// a burst of logins cannot take every CPU away from other requests.
type BcryptHasher struct {
	cost    int
	workers *semaphore.Weighted
}

var _ Hasher = (*BcryptHasher)(nil)

type HasherOption func(*BcryptHasher)

// WithWorkers caps the number of hash or verify operations running at once.
func WithWorkers(n int) HasherOption {
	return func(h *BcryptHasher) {
		if n > 0 {
			h.workers = semaphore.NewWeighted(int64(n))
		}
	}
}

func NewBcryptHasher(cost int, options ...HasherOption) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("[password NewBcryptHasher] cost %d outside %d..%d", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	h := &BcryptHasher{cost: cost}
	for _, opt := range options {
		opt(h)
	}
	if h.workers == nil {
		h.workers = semaphore.NewWeighted(int64(runtime.NumCPU()))
	}
	return h, nil
}

// Cost returns the bcrypt work factor used for new digests.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	defer observe("hash", time.Now())

	if len(plaintext) > MaxBytes {
		return "", fmt.Errorf("[password Hash] %w", bcrypt.ErrPasswordTooLong)
	}
	if err := h.workers.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("[password Hash] waiting for worker: %w", err)
	}
	defer h.workers.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("[password Hash] %w", err)
	}
	return string(digest), nil
}

func (h *BcryptHasher) Verify(ctx context.Context, plaintext, digest string) bool {
	defer observe("verify", time.Now())

	if digest == "" || len(plaintext) > MaxBytes {
		return false
	}
	if err := h.workers.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.workers.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

func observe(operation string, start time.Time) {
	metrics.PasswordHashDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
