// Package pipeline wraps every state-changing operation with a database
// transaction and declarative cache invalidation. Queries bypass the
// transaction entirely.
package pipeline

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/m-atef1999/Spotless-sub000/cache"
)

// Command is one state-changing unit of work. Run executes with a
// transaction-scoped DB handle; every write made through it commits or rolls
// back atomically. CacheKeys lists the cache entries the command dirties.
type Command struct {
	Name      string
	CacheKeys []string
	Run       func(ctx context.Context, tx *gorm.DB) error
}

type Pipeline struct {
	db    *gorm.DB
	cache cache.Store
	log   *zap.Logger
}

func New(db *gorm.DB, store cache.Store, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{db: db, cache: store, log: log}
}

// Execute runs the command inside a transaction. On handler error the
// transaction rolls back and the error propagates unchanged. On success the
// declared cache keys are removed; invalidation is best-effort and never
// fails the command, but it is not covered by the rollback either.
func (p *Pipeline) Execute(ctx context.Context, cmd Command) error {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return cmd.Run(ctx, tx)
	})
	if err != nil {
		return err
	}

	if len(cmd.CacheKeys) > 0 && p.cache != nil {
		if cerr := p.cache.Remove(ctx, cmd.CacheKeys...); cerr != nil {
			p.log.Warn("cache invalidation failed",
				zap.String("command", cmd.Name),
				zap.Strings("keys", cmd.CacheKeys),
				zap.Error(cerr))
		}
	}
	return nil
}

// Query runs a read-only func against the raw DB handle, outside any
// transaction. Queries perform no writes and must not hold locks.
func (p *Pipeline) Query(ctx context.Context, fn func(ctx context.Context, db *gorm.DB) error) error {
	return fn(ctx, p.db.WithContext(ctx))
}

// DB exposes the underlying handle for wiring repositories.
func (p *Pipeline) DB() *gorm.DB { return p.db }
