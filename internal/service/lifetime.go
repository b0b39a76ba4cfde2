package service

import (
	"context"
	"sync"
)

// Lifetime scopes the network calls of one view. Close cancels calls still in
// flight, and flows drop whatever settles afterwards.
type Lifetime struct {
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func NewLifetime() *Lifetime {
	ctx, cancel := context.WithCancel(context.Background())
	return &Lifetime{ctx: ctx, cancel: cancel}
}

// Bind derives a context that ends with either parent or the lifetime.
func (l *Lifetime) Bind(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(l.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (l *Lifetime) Alive() bool {
	return l.ctx.Err() == nil
}

func (l *Lifetime) Close() {
	l.once.Do(l.cancel)
}
