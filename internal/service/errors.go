package service

import "errors"

var (
	// ErrNotPersisted means the in-memory record advanced but the write to
	// storage failed. The next mutation or Flush retries.
	ErrNotPersisted = errors.New("progress not persisted")

	// ErrCorruptRecord means stored progress could not be decoded.
	ErrCorruptRecord = errors.New("stored progress is corrupt")

	ErrUnknownBadge = errors.New("unknown badge")

	// ErrEmptyMessage rejects blank submissions before any state changes.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrBusy rejects a submission while another turn is pending.
	ErrBusy = errors.New("a turn is already in progress")
)
