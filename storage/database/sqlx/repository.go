package sqlxrepos

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/kistconnect/portal/core"
	"github.com/kistconnect/portal/core/user"
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
	pgAdminShutdown   = "57P01"
	pgCrashShutdown   = "57P02"
	pgDataCorrupted   = "XX001"
)

// fatalSQLiteCodes mean the database file can not be used anymore.
var fatalSQLiteCodes = []sqlite3.ErrNo{sqlite3.ErrCorrupt, sqlite3.ErrNotADB, sqlite3.ErrReadonly}

// wrapErr annotates err with msg. Errors after which the database can not serve requests
// anymore become shutdown errors. Returns nil if err is nil.
func wrapErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if isFatal(err) {
		return core.NewShutdownError(fmt.Sprintf("%s: %v", msg, err))
	}
	return errors.Wrap(err, msg)
}

func isFatal(err error) bool {
	switch e := errors.Cause(err).(type) {
	case *pq.Error:
		return e.Code == pgAdminShutdown || e.Code == pgCrashShutdown || e.Code == pgDataCorrupted
	case sqlite3.Error:
		for _, code := range fatalSQLiteCodes {
			if e.Code == code {
				return true
			}
		}
	}
	return false
}

// isUniqueViolation reports whether err was caused by a unique constraint, on either engine.
func isUniqueViolation(err error) bool {
	switch e := errors.Cause(err).(type) {
	case *pq.Error:
		return e.Code == pgUniqueViolation
	case sqlite3.Error:
		return e.ExtendedCode == sqlite3.ErrConstraintUnique || e.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// timestamps are stored as unix nanoseconds
func toNanos(t time.Time) int64 { return t.UTC().UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

func displayName(name string) string {
	if name == "" {
		return user.UnknownName
	}
	return name
}
