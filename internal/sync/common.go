// Package sync keeps the local store convergent with the backend: each entity
// family pairs pull-based snapshots with push-driven updates, both landing
// in the store where the last write applied wins.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"tradeconsole/internal/ports"
	"tradeconsole/internal/store"
)

// inflight guards a snapshot pull so overlapping requests are dropped, not
// queued.
type inflight struct {
	v atomic.Bool
}

func (f *inflight) tryAcquire() bool { return f.v.CompareAndSwap(false, true) }
func (f *inflight) release()         { f.v.Store(false) }

// reportError normalizes a transport failure into the store's single
// user-facing error field. Errors stop here; nothing above the reconciler
// layer sees them except through the store.
func reportError(ctx context.Context, st *store.Store, log ports.Logger, err error, prefix string) {
	log.Error(ctx, err, prefix)
	st.SetError(prefix + ": " + err.Error())
}

// decodePush unmarshals a push payload, logging and dropping malformed
// frames so garbage never reaches the store.
func decodePush(ctx context.Context, log ports.Logger, event string, data json.RawMessage, out interface{}) bool {
	if err := json.Unmarshal(data, out); err != nil {
		log.Error(ctx, err, "Dropping undecodable push payload", map[string]interface{}{"event": event})
		return false
	}
	return true
}

// Open-ended range bounds for cache reads.
var (
	timeZero = time.Time{}
	timeMax  = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
)

// validationErrorf builds a client-side input rejection; no request is sent
// for these.
func validationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ports.ErrValidation}, args...)...)
}

// unsubscribeAll composes bus unsubscribe functions into one teardown.
func unsubscribeAll(fns ...func()) func() {
	return func() {
		for _, fn := range fns {
			fn()
		}
	}
}
