package contract

import "context"

// ProtectionRegistry records seed URLs that serve bot challenge pages.
// Keys are normalized URLs.
type ProtectionRegistry interface {
	IsFlagged(ctx context.Context, normalizedURL string) (bool, error)
	Flag(ctx context.Context, normalizedURL, marker string) error
	Clear(ctx context.Context, normalizedURL string) (bool, error)
}
