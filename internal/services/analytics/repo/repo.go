// Package repo provides clickhouse access for analytics
package repo

import (
	"context"

	"medner/internal/platform/store"
	"medner/internal/services/analytics/domain"
)

// CH implements domain.WriterPort over the clickhouse seam
type CH struct {
	db store.Clickhouse
}

// NewCH creates the clickhouse repo
func NewCH(db store.Clickhouse) *CH {
	if db == nil {
		panic("analytics.CH requires a non nil clickhouse seam")
	}
	return &CH{db: db}
}

// WriteBatch inserts events into annotation_events
func (r *CH) WriteBatch(ctx context.Context, xs []domain.Event) error {
	if len(xs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(xs))
	for _, e := range xs {
		rows = append(rows, []any{
			e.ID,
			e.At.UTC(),
			e.Endpoint,
			int32(e.Texts),
			int32(e.Entities),
			int32(e.Problems),
			int32(e.Treatments),
			int32(e.Tests),
			int32(e.FromModel),
			int32(e.FromPattern),
			int32(e.FromDictionary),
			e.Threshold,
			e.ElapsedMs,
			e.UserID,
		})
	}
	return r.db.Insert(ctx, "annotation_events", rows)
}
