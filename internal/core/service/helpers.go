package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/crewboard/crewboard-api/internal/api/metrics"
	"github.com/crewboard/crewboard-api/internal/core/access"
	"github.com/crewboard/crewboard-api/internal/core/ports"
)

// subject converts the authenticated actor into the guard's view of it.
func subject(a ports.Actor) access.Subject {
	return access.Subject{UserID: a.ID, Role: a.Role}
}

// guarded records a denial metric and passes the error through unchanged.
func guarded(err error) error {
	var de *access.DeniedError
	if errors.As(err, &de) {
		metrics.AccessDenialsTotal.WithLabelValues(string(de.Action)).Inc()
	}
	return err
}

// newID returns a random 12-byte hex identifier for embedded documents.
func newID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		// fallback: current nanoseconds
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
