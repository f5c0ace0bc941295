package domain

import "context"

// ServicePort authenticates raw bearer tokens and enforces daily quotas
type ServicePort interface {
	// Authenticate resolves a raw token to its key and counts one request
	// against the key's daily quota. Unknown, inactive, or exhausted keys
	// return an error
	Authenticate(ctx context.Context, token string) (Key, error)
}
