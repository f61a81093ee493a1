package repo

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// DB wraps the gorm handle with an explicit transaction helper. The gorm
// session is opened with SkipDefaultTransaction, so every mutation that must
// be atomic goes through Tx.
type DB struct{ db *gorm.DB }

func New(db *gorm.DB) *DB { return &DB{db: db} }

// Conn returns a context-bound handle for reads outside a transaction.
func (d *DB) Conn(ctx context.Context) *gorm.DB { return d.db.WithContext(ctx) }

// Tx begins a transaction, runs fn, and commits when fn returns nil. On error
// or panic it rolls back; panics are rethrown after the rollback.
func (d *DB) Tx(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	tx := d.db.WithContext(ctx).Begin(&sql.TxOptions{})
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit().Error
	}()

	err = fn(tx)
	return err
}
