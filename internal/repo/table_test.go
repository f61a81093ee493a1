package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"docuisine/internal/domain"
)

func newSQLite(t *testing.T) *DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&domain.Category{}))
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return New(gdb)
}

func TestClassify(t *testing.T) {
	boom := errors.New("boom")
	pgOther := &pgconn.PgError{Code: "42P01"}
	cases := []struct {
		name string
		err  error
		want Outcome
		pass error
	}{
		{"nil", nil, OK, nil},
		{"gorm duplicate", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), Conflict, nil},
		{"gorm foreign key", gorm.ErrForeignKeyViolated, InUse, nil},
		{"pg unique", &pgconn.PgError{Code: "23505"}, Conflict, nil},
		{"pg foreign key", &pgconn.PgError{Code: "23503"}, InUse, nil},
		{"pg other", pgOther, OK, pgOther},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062}, Conflict, nil},
		{"mysql referenced", &mysql.MySQLError{Number: 1451}, InUse, nil},
		{"sqlite message", errors.New("UNIQUE constraint failed: categories.name"), Conflict, nil},
		{"other", boom, OK, boom},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := classify(tc.err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.pass, err)
		})
	}
}

func TestTableInsertConflict(t *testing.T) {
	db := newSQLite(t)
	ctx := context.Background()
	var cats Table[domain.Category]

	first := &domain.Category{Name: "Soup"}
	out, err := cats.Insert(db.Conn(ctx), first)
	require.NoError(t, err)
	assert.Equal(t, OK, out)
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	out, err = cats.Insert(db.Conn(ctx), &domain.Category{Name: "Soup"})
	require.NoError(t, err)
	assert.Equal(t, Conflict, out)

	n, err := cats.Count(db.Conn(ctx), "name = ?", "Soup")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestTableGetMissing(t *testing.T) {
	db := newSQLite(t)
	got, err := Table[domain.Category]{}.Get(db.Conn(context.Background()), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTxRollsBack(t *testing.T) {
	db := newSQLite(t)
	ctx := context.Background()
	var cats Table[domain.Category]

	boom := errors.New("boom")
	err := db.Tx(ctx, func(tx *gorm.DB) error {
		if _, err := cats.Insert(tx, &domain.Category{Name: "Bread"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.Panics(t, func() {
		_ = db.Tx(ctx, func(tx *gorm.DB) error {
			_, _ = cats.Insert(tx, &domain.Category{Name: "Cake"})
			panic("half way")
		})
	})

	n, err := cats.Count(db.Conn(ctx), "")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, db.Tx(ctx, func(tx *gorm.DB) error {
		_, err := cats.Insert(tx, &domain.Category{Name: "Pie"})
		return err
	}))
	rows, total, err := cats.Page(db.Conn(ctx), 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Pie", rows[0].Name)
}
