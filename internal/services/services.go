// Package services implements the blog's use cases on top of the repositories.
// Ownership rules live here, so they hold for every caller of the package.
package services

import (
	"context"
	"time"

	"github.com/sbilibin2017/gw-blog/internal/errs"
	"github.com/sbilibin2017/gw-blog/internal/logger"
)

// Transactor runs fn inside a single database transaction carried by ctx.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

type options struct {
	now func() time.Time
}

// Option configures a service.
type Option func(*options)

// WithClock replaces time.Now for timestamps set by the service.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// logError logs client errors at warn level and everything else at error level.
func logError(msg string, err error, keysAndValues ...any) {
	keysAndValues = append(keysAndValues, "err", err)
	if errs.IsClientError(err) {
		logger.Log.Warnw(msg, keysAndValues...)
		return
	}
	logger.Log.Errorw(msg, keysAndValues...)
}
