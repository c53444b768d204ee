package bunstore

import (
	"context"

	"github.com/goliatone/go-blog-cache/pagination"
	"github.com/goliatone/go-blog-cache/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// auditColumns are never rewritten by an update.
var auditColumns = []string{"created_at", "created_by"}

func newRepository[T any](db *bun.DB, newRecord func() T, getID func(T) uuid.UUID, setID func(T, uuid.UUID), identifier string) repository.Repository[T] {
	return repository.NewRepository[T](db, repository.ModelHandlers[T]{
		NewRecord:     newRecord,
		GetID:         getID,
		SetID:         setID,
		GetIdentifier: func() string { return identifier },
	})
}

// paged applies ordering and the limit/offset of req to a select.
func paged(alias string, req pagination.Request, allowed map[string]bool) repository.SelectCriteria {
	req = req.Normalize()
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr(alias + "." + store.OrderExpr(req, allowed)).
			Limit(req.Size).
			Offset(req.Offset())
	}
}

func where(query string, args ...any) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where(query, args...)
	}
}

func relation(name string) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation(name)
	}
}

// upsert inserts record through the repository when its primary key is
// new and otherwise rewrites every column except exclude and the audit
// creation stamps.
func upsert[T any](ctx context.Context, db *bun.DB, repo repository.Repository[T], record T, exclude ...string) (T, error) {
	exists, err := db.NewSelect().Model(record).WherePK().Exists(ctx)
	if err != nil {
		return record, err
	}
	if !exists {
		return repo.Create(ctx, record)
	}

	_, err = db.NewUpdate().
		Model(record).
		WherePK().
		ExcludeColumn(append(append([]string{}, auditColumns...), exclude...)...).
		Exec(ctx)
	return record, err
}

// adjustCounter adds delta to column without letting it drop below zero.
func adjustCounter(ctx context.Context, db *bun.DB, model any, entity, column string, id uuid.UUID, delta int64) error {
	res, err := db.NewUpdate().
		Model(model).
		Set("? = CASE WHEN ? + ? < 0 THEN 0 ELSE ? + ? END", bun.Ident(column), bun.Ident(column), delta, bun.Ident(column), delta).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return mapError(err, entity, "id", id.String())
	}
	return expectAffected(res, entity, id.String())
}

func toInt64(n int) int64 { return int64(n) }
