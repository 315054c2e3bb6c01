package settings

import (
	"context"
	"sync/atomic"

	"ai-shopassist-be/internal/entity"
)

// Provider holds the current settings snapshot. Components read through it
// so a refresh is visible without rebuilding them.
type Provider struct {
	source  Source
	current atomic.Pointer[Settings]
}

func NewProvider(ctx context.Context, source Source) (*Provider, error) {
	p := &Provider{source: source}
	if _, _, err := p.Refresh(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Refresh reloads the source and returns the previous and new snapshots.
func (p *Provider) Refresh(ctx context.Context) (prev, next *Settings, err error) {
	next, err = p.source.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	prev = p.current.Swap(next)
	return prev, next, nil
}

func (p *Provider) Current() *Settings {
	return p.current.Load()
}

func (p *Provider) APIKey() string {
	return p.Current().APIKey
}

func (p *Provider) CommerceEnabled() bool {
	return p.Current().CommerceEnabled
}

func (p *Provider) ExcludedIDs(contentType entity.ContentType) []int64 {
	return p.Current().excludedFor(contentType)
}

func (p *Provider) BatchSize() int {
	if n := p.Current().BatchSize; n > 0 {
		return n
	}
	return 10
}
