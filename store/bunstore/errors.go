package bunstore

import (
	"database/sql"

	"github.com/goliatone/go-blog-cache/store"
	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

// mapError turns driver level errors into categorized ones. Missing rows
// become store.ErrNotFound so callers can branch on store.IsNotFound.
func mapError(err error, entity, by, value string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) || errors.IsNotFound(err) || repository.IsRecordNotFound(err) {
		return store.NotFound(entity, by, value)
	}

	var categorized *errors.Error
	if errors.As(err, &categorized) {
		return err
	}
	return errors.Wrap(err, errors.CategoryInternal, "query "+entity+" failed").
		WithMetadata(map[string]any{"entity": entity, by: value})
}

// expectAffected reports not-found when an update matched no rows.
func expectAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err, entity, "id", id)
	}
	if n == 0 {
		return store.NotFound(entity, "id", id)
	}
	return nil
}
