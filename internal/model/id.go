package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewID returns a new sortable unique ID.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// LooksLikeID returns true if s has the shape of an ID returned by NewID.
func LooksLikeID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
