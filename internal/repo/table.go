package repo

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Outcome is the typed result of a write. Constraint violations are reported
// here instead of as errors so callers can roll back and map them.
type Outcome int

const (
	OK Outcome = iota
	// Conflict means a unique index rejected the row.
	Conflict
	// InUse means a foreign key still references the row.
	InUse
)

func (o Outcome) String() string {
	switch o {
	case Conflict:
		return "conflict"
	case InUse:
		return "in_use"
	default:
		return "ok"
	}
}

// Table is the persistence gateway for one model type. It holds no state;
// every method runs on the handle it is given (a transaction or a Conn).
// Missing rows come back as (nil, nil).
type Table[T any] struct{}

func (Table[T]) Get(db *gorm.DB, id int64) (*T, error) {
	var m T
	err := db.Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetBy looks a row up by an alternate key, one value per column.
func (Table[T]) GetBy(db *gorm.DB, columns []string, values []any) (*T, error) {
	if len(columns) == 0 || len(columns) != len(values) {
		return nil, fmt.Errorf("repo: %d key columns, %d values", len(columns), len(values))
	}
	q := db
	for i, col := range columns {
		q = q.Where(clause.Eq{Column: clause.Column{Name: col}, Value: values[i]})
	}
	var m T
	err := q.Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (Table[T]) List(db *gorm.DB) ([]T, error) {
	var out []T
	if err := db.Order("id asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Page returns one page ordered by id plus the total row count.
func (Table[T]) Page(db *gorm.DB, offset, limit int) ([]T, int64, error) {
	var (
		zero  T
		total int64
		out   []T
	)
	if err := db.Model(&zero).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("id asc").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Count counts rows matching query/args; an empty query counts the table.
func (Table[T]) Count(db *gorm.DB, query string, args ...any) (int64, error) {
	var (
		zero T
		n    int64
	)
	q := db.Model(&zero)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Insert creates m and fills in the generated id and timestamps.
// Associations are not written; insert children with InsertAll.
func (Table[T]) Insert(db *gorm.DB, m *T) (Outcome, error) {
	return classify(db.Omit(clause.Associations).Create(m).Error)
}

// InsertAll creates ms in batches. An empty slice is a no-op.
func (Table[T]) InsertAll(db *gorm.DB, ms []T) (Outcome, error) {
	if len(ms) == 0 {
		return OK, nil
	}
	return classify(db.Omit(clause.Associations).Create(&ms).Error)
}

// Save writes every column of m. Associations are left alone.
func (Table[T]) Save(db *gorm.DB, m *T) (Outcome, error) {
	return classify(db.Omit(clause.Associations).Save(m).Error)
}

func (Table[T]) Delete(db *gorm.DB, m *T) (Outcome, error) {
	return classify(db.Delete(m).Error)
}

// DeleteWhere removes every row matching query/args.
func (Table[T]) DeleteWhere(db *gorm.DB, query string, args ...any) (Outcome, error) {
	var zero T
	return classify(db.Where(query, args...).Delete(&zero).Error)
}

// classify turns constraint violations into outcomes and passes every other
// error through untouched.
func classify(err error) (Outcome, error) {
	if err == nil {
		return OK, nil
	}
	switch {
	case IsUniqueViolation(err):
		return Conflict, nil
	case IsForeignKeyViolation(err):
		return InUse, nil
	}
	return OK, err
}

// IsUniqueViolation reports a unique index rejection from any supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	if code, ok := driverCode(err); ok {
		return code == pgUniqueViolation || code == mysqlDupEntry
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

// IsForeignKeyViolation reports a foreign key rejection from any supported driver.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	if code, ok := driverCode(err); ok {
		return code == pgForeignKeyViolation || code == mysqlRowIsReferenced || code == mysqlRowIsReferenced2
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}
