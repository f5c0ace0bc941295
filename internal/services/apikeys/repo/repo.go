// Package repo provides postgres access for api keys
package repo

import (
	"context"
	"errors"

	"medner/internal/modkit/repokit"
	"medner/internal/services/apikeys/domain"
)

// ErrNoRows signals a missing key without importing a driver in callers
var ErrNoRows = errors.New("apikeys: no rows")

// Repo defines the repository contract for api keys
type Repo interface {
	// FindByHash returns the key whose token hash matches
	FindByHash(ctx context.Context, tokenHash string) (domain.Key, error)
	// CountUse adds one request to today's usage and reports whether the
	// key is still within limit. Unlimited keys always count as allowed
	CountUse(ctx context.Context, keyID string, limit int) (bool, error)
}

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Repo] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Repo { return &pg{q: q} }

func (r *pg) FindByHash(ctx context.Context, tokenHash string) (domain.Key, error) {
	const sql = `
select key_id, tier, daily_limit, active
from api_keys
where token_hash = $1
`
	var k domain.Key
	err := r.q.QueryRow(ctx, sql, tokenHash).Scan(&k.ID, &k.Tier, &k.DailyLimit, &k.Active)
	if err != nil {
		// treat every scan failure on this single-row read as not found;
		// the service maps it to unauthorized either way
		return domain.Key{}, ErrNoRows
	}
	return k, nil
}

func (r *pg) CountUse(ctx context.Context, keyID string, limit int) (bool, error) {
	if limit <= 0 {
		const sql = `
insert into api_key_usage (key_id, day, used)
values ($1, current_date, 1)
on conflict (key_id, day) do update set used = api_key_usage.used + 1
`
		_, err := r.q.Exec(ctx, sql, keyID)
		return err == nil, err
	}

	// the conditional upsert returns no row once the limit is reached
	const sql = `
insert into api_key_usage (key_id, day, used)
values ($1, current_date, 1)
on conflict (key_id, day) do update set used = api_key_usage.used + 1
where api_key_usage.used < $2
returning used
`
	rows, err := r.q.Query(ctx, sql, keyID, limit)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	allowed := rows.Next()
	return allowed, rows.Err()
}
