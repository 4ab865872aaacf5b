package redisstore

import (
	"fmt"

	"github.com/DoyleJ11/lol-draft-series/internal/engine"
)

const keyPrefix = "draft"

// sessionKey holds the session JSON document.
func sessionKey(id string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// sessionsIndexKey is the SET of known session ids.
func sessionsIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions", keyPrefix)
}

// usedKey is the HASH of champion id -> champion JSON for one side.
func usedKey(id string, side engine.Side) string {
	return fmt.Sprintf("%s:used:%s:%s", keyPrefix, id, side)
}

// resultsKey is the HASH of result id -> result JSON for one session.
func resultsKey(id string) string {
	return fmt.Sprintf("%s:results:%s", keyPrefix, id)
}
