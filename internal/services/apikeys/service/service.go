// Package service contains api key auth workflows
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"medner/internal/modkit/repokit"
	perrs "medner/internal/platform/errors"
	"medner/internal/services/apikeys/domain"
	"medner/internal/services/apikeys/repo"
)

// Service defines the service contract for api keys
type Service interface{ domain.ServicePort }

// Svc implements the Service interface
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
}

// New creates a new api keys service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) *Svc {
	if db == nil {
		panic("apikeys.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("apikeys.Service requires a non nil Repo binder")
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db}
}

// Authenticate implements domain.ServicePort
func (s *Svc) Authenticate(ctx context.Context, token string) (domain.Key, error) {
	if token == "" {
		return domain.Key{}, perrs.Unauthorizedf("missing api key")
	}

	k, err := s.Repo.FindByHash(ctx, hashToken(token))
	if err != nil {
		return domain.Key{}, perrs.Unauthorizedf("unknown api key")
	}
	if !k.Active {
		return domain.Key{}, perrs.Forbiddenf("api key disabled")
	}

	allowed, err := s.Repo.CountUse(ctx, k.ID, k.DailyLimit)
	if err != nil {
		return domain.Key{}, perrs.DBf("quota update failed: %v", err)
	}
	if !allowed {
		return domain.Key{}, perrs.Newf(perrs.ErrorCodeTooManyRequests, "daily quota exhausted for tier %s", k.Tier)
	}
	return k, nil
}

// TokenFunc adapts the service for the bearer auth middleware. The key id
// doubles as the user id; tier travels as the tenant id
func (s *Svc) TokenFunc() func(token string) (string, string, error) {
	return func(token string) (string, string, error) {
		k, err := s.Authenticate(context.Background(), token)
		if err != nil {
			return "", "", err
		}
		return k.ID, k.Tier, nil
	}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
