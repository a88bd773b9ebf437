package models

import "errors"

var (
	// ErrSourceUnavailable covers network and HTTP failures, missing
	// configuration keys and missing required headers. Fatal to a run.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMalformedRecord marks a row or JSON object that is missing a field
	// or fails date/time parsing. The record is skipped.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrSerialization means an output calendar could not be written. Fatal.
	ErrSerialization = errors.New("serialization failure")
)
