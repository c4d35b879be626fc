package service

import (
	"database/sql"
	"errors"
	"time"
)

var (
	ErrIDRequired         = errors.New("id is required")
	ErrNotFound           = errors.New("record not found")
	ErrStorageUnavailable = errors.New("object storage is not configured")
)

// timeNow is replaced in tests.
var timeNow = func() time.Time { return time.Now().UTC() }

// notFound maps a missing row to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
