// Package service holds the business operations behind the HTTP handlers.
// Every entity gets the same create/find/update/delete semantics from
// Entity; the entity files only add their key columns and delete policy.
package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"docuisine/internal/domain"
	"docuisine/internal/repo"
)

// Patch is a partial update: only the fields it carries are applied.
type Patch[T any] interface {
	Apply(*T)
}

// Schema describes one entity to the generic service.
type Schema[T any] struct {
	// Name is used in error messages and logs ("category").
	Name string
	// KeyColumns is the natural key, backed by a unique index.
	KeyColumns []string
	// Key renders a row's natural key for messages.
	Key func(*T) string
	// Validate runs inside the write transaction before insert and update.
	Validate func(tx *gorm.DB, m *T) error
	// BeforeDelete enforces the delete policy: return InUse to refuse, or
	// clean up dependents on tx.
	BeforeDelete func(tx *gorm.DB, m *T) error
	// Conflict overrides the error reported for a unique violation.
	Conflict func(m *T) error
}

// Lookup selects a row by id or by natural key. When both are set the id wins.
type Lookup struct {
	ID  *int64
	Key []any
}

type Entity[T any, P Patch[T]] struct {
	db     *repo.DB
	tbl    repo.Table[T]
	schema Schema[T]
	log    *zap.Logger
}

func NewEntity[T any, P Patch[T]](db *repo.DB, l *zap.Logger, schema Schema[T]) *Entity[T, P] {
	if l == nil {
		l = zap.NewNop()
	}
	return &Entity[T, P]{db: db, schema: schema, log: l.With(zap.String("entity", schema.Name))}
}

// Create inserts m. A natural key collision rolls the transaction back and
// returns a conflict; nothing is written.
func (e *Entity[T, P]) Create(ctx context.Context, m *T) (*T, error) {
	return e.CreateWith(ctx, m, nil)
}

// CreateWith inserts m and then runs then in the same transaction, for rows
// that belong to m.
func (e *Entity[T, P]) CreateWith(ctx context.Context, m *T, then func(tx *gorm.DB, m *T) error) (*T, error) {
	err := e.db.Tx(ctx, func(tx *gorm.DB) error {
		if e.schema.Validate != nil {
			if err := e.schema.Validate(tx, m); err != nil {
				return err
			}
		}
		out, err := e.tbl.Insert(tx, m)
		if err != nil {
			return e.storageError("create", err)
		}
		if err := e.writeOutcome(out, m); err != nil {
			return err
		}
		if then != nil {
			return then(tx, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Find resolves a Lookup. Exactly one mode is needed; with neither the
// call is rejected as an invalid argument.
func (e *Entity[T, P]) Find(ctx context.Context, l Lookup) (*T, error) {
	switch {
	case l.ID != nil:
		return e.Get(ctx, *l.ID)
	case len(l.Key) > 0:
		return e.GetByKey(ctx, l.Key...)
	default:
		return nil, domain.InvalidArgument("either %s id or %s must be provided", e.schema.Name, strings.Join(e.schema.KeyColumns, "/"))
	}
}

func (e *Entity[T, P]) Get(ctx context.Context, id int64) (*T, error) {
	return e.get(e.db.Conn(ctx), id)
}

// GetByKey looks a row up by its natural key, one value per key column.
func (e *Entity[T, P]) GetByKey(ctx context.Context, key ...any) (*T, error) {
	if len(key) != len(e.schema.KeyColumns) {
		return nil, domain.InvalidArgument("%s key needs %d value(s), got %d", e.schema.Name, len(e.schema.KeyColumns), len(key))
	}
	m, err := e.tbl.GetBy(e.db.Conn(ctx), e.schema.KeyColumns, key)
	if err != nil {
		return nil, e.storageError("get", err)
	}
	if m == nil {
		return nil, domain.NotFound(e.schema.Name, "%s with %s not found", e.schema.Name, describeKey(e.schema.KeyColumns, key))
	}
	return m, nil
}

// List returns every row in id order.
func (e *Entity[T, P]) List(ctx context.Context) ([]T, error) {
	out, err := e.tbl.List(e.db.Conn(ctx))
	if err != nil {
		return nil, e.storageError("list", err)
	}
	return out, nil
}

// Page returns rows [offset, offset+limit) in id order and the total count.
func (e *Entity[T, P]) Page(ctx context.Context, offset, limit int) ([]T, int64, error) {
	out, total, err := e.tbl.Page(e.db.Conn(ctx), offset, limit)
	if err != nil {
		return nil, 0, e.storageError("page", err)
	}
	return out, total, nil
}

func (e *Entity[T, P]) Count(ctx context.Context) (int64, error) {
	n, err := e.tbl.Count(e.db.Conn(ctx), "")
	if err != nil {
		return 0, e.storageError("count", err)
	}
	return n, nil
}

// Update applies the supplied fields of patch to row id. On a key collision
// the row keeps its previous values.
func (e *Entity[T, P]) Update(ctx context.Context, id int64, patch P) (*T, error) {
	return e.UpdateWith(ctx, id, patch, nil)
}

// UpdateWith is Update plus extra writes in the same transaction.
func (e *Entity[T, P]) UpdateWith(ctx context.Context, id int64, patch P, then func(tx *gorm.DB, m *T) error) (*T, error) {
	var updated *T
	err := e.db.Tx(ctx, func(tx *gorm.DB) error {
		m, err := e.get(tx, id)
		if err != nil {
			return err
		}
		patch.Apply(m)
		if e.schema.Validate != nil {
			if err := e.schema.Validate(tx, m); err != nil {
				return err
			}
		}
		out, err := e.tbl.Save(tx, m)
		if err != nil {
			return e.storageError("update", err)
		}
		if err := e.writeOutcome(out, m); err != nil {
			return err
		}
		if then != nil {
			if err := then(tx, m); err != nil {
				return err
			}
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes row id after the entity's delete policy has run.
func (e *Entity[T, P]) Delete(ctx context.Context, id int64) error {
	return e.db.Tx(ctx, func(tx *gorm.DB) error {
		m, err := e.get(tx, id)
		if err != nil {
			return err
		}
		if e.schema.BeforeDelete != nil {
			if err := e.schema.BeforeDelete(tx, m); err != nil {
				return err
			}
		}
		out, err := e.tbl.Delete(tx, m)
		if err != nil {
			return e.storageError("delete", err)
		}
		if out != repo.OK {
			e.log.Debug("delete refused", zap.Int64("id", id), zap.Stringer("outcome", out))
			return domain.InUse(e.schema.Name, "%s %d is still referenced", e.schema.Name, id)
		}
		return nil
	})
}

func (e *Entity[T, P]) get(db *gorm.DB, id int64) (*T, error) {
	m, err := e.tbl.Get(db, id)
	if err != nil {
		return nil, e.storageError("get", err)
	}
	if m == nil {
		return nil, domain.NotFound(e.schema.Name, "%s with id %d not found", e.schema.Name, id)
	}
	return m, nil
}

// writeOutcome maps the outcome of an insert or save. Only a unique
// violation is a conflict; a foreign key rejection on write means m points
// at a row that does not exist.
func (e *Entity[T, P]) writeOutcome(out repo.Outcome, m *T) error {
	switch out {
	case repo.OK:
		return nil
	case repo.Conflict:
		return e.conflict(m)
	default:
		e.log.Debug("write refused", zap.Stringer("outcome", out))
		return domain.InvalidArgument("%s references a row that does not exist", e.schema.Name)
	}
}

func (e *Entity[T, P]) conflict(m *T) error {
	if e.schema.Conflict != nil {
		err := e.schema.Conflict(m)
		e.log.Debug("unique violation", zap.Error(err))
		return err
	}
	key := ""
	if e.schema.Key != nil {
		key = e.schema.Key(m)
	}
	e.log.Debug("unique violation", zap.String("key", key))
	return domain.Exists(e.schema.Name, "%s %q already exists", e.schema.Name, key)
}

func (e *Entity[T, P]) storageError(op string, err error) error {
	e.log.Error("storage error", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s %s: %w", op, e.schema.Name, err)
}

func describeKey(cols []string, vals []any) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s %v", c, vals[i])
	}
	return strings.Join(parts, " and ")
}
