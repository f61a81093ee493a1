package repo

import (
	"errors"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	mysqlDupEntry         = "1062"
	mysqlRowIsReferenced  = "1451"
	mysqlRowIsReferenced2 = "1217"
)

// driverCode extracts the native error code when err comes from the
// postgres or mysql driver.
func driverCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return strconv.Itoa(int(myErr.Number)), true
	}
	return "", false
}
