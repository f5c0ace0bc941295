// Package domain holds types for API key auth and quotas
package domain

// Key is an authenticated API key
type Key struct {
	ID         string
	Tier       string // demo professional enterprise
	DailyLimit int    // requests per UTC day, 0 means unlimited
	Active     bool
}
