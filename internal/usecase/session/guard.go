package session

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// turnGuard serializes turn processing per session and rejects a trainee
// utterance identical to the one currently in flight or most recently
// completed. State is in-process only; a restart clears it, which is safe
// because the transcript itself is the durable record.
type turnGuard struct {
	mu       sync.Mutex
	inflight map[uuid.UUID]string
	last     map[uuid.UUID]string
}

func newTurnGuard() *turnGuard {
	return &turnGuard{
		inflight: make(map[uuid.UUID]string),
		last:     make(map[uuid.UUID]string),
	}
}

// fingerprint normalizes an utterance for duplicate detection.
func fingerprint(utterance string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(strings.ToLower(utterance))))
	return hex.EncodeToString(sum[:])
}

// begin registers an utterance as in flight. It reports false when the same
// utterance is already being processed or was the session's previous turn.
func (g *turnGuard) begin(sessionID uuid.UUID, utterance string) bool {
	fp := fingerprint(utterance)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inflight[sessionID] == fp || g.last[sessionID] == fp {
		return false
	}
	g.inflight[sessionID] = fp
	return true
}

// finish clears the in-flight slot. committed marks whether the turn made it
// into the transcript; only committed turns arm the duplicate check for the
// next call.
func (g *turnGuard) finish(sessionID uuid.UUID, utterance string, committed bool) {
	fp := fingerprint(utterance)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inflight[sessionID] == fp {
		delete(g.inflight, sessionID)
	}
	if committed {
		g.last[sessionID] = fp
	}
}

// forget drops all guard state for a session, on session end.
func (g *turnGuard) forget(sessionID uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, sessionID)
	delete(g.last, sessionID)
}
