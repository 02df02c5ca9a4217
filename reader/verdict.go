package reader

import (
	"context"

	"github.com/quay/zlog"

	"github.com/quay/rpmverify/keystash"
	"github.com/quay/rpmverify/sig"
)

// ErrorMapper is C7: it maps a verification Verdict to a log level and
// decides whether a NoKey/NotTrusted signer has already been warned
// about via the shared KeyIdStash.
type ErrorMapper struct {
	// Stash suppresses repeated NoKey/NotTrusted warnings for the same
	// signer. A nil Stash means every occurrence logs at WARNING.
	Stash *keystash.Stash
}

// Report logs verdict at the disposition C7 assigns it. It never
// changes the verdict itself -- logging is a side effect, not part of
// the reader's return value.
func (m *ErrorMapper) Report(ctx context.Context, verdict sig.Verdict, keyID uint32, message string) {
	switch verdict {
	case sig.Ok:
		zlog.Debug(ctx).Msg("Header sanity check: OK")
	case sig.NotTrusted, sig.NoKey:
		seen := false
		if m.Stash != nil {
			seen = m.Stash.Observe(keyID)
		}
		ev := zlog.Debug(ctx)
		if !seen {
			ev = zlog.Warn(ctx)
		}
		ev.Uint32("key_id", keyID).Str("verdict", verdict.String()).Msg("signature not fully verified")
	case sig.NotFound:
		if message != "" {
			zlog.Warn(ctx).Msg(message)
		}
	case sig.Fail:
		zlog.Error(ctx).Str("message", message).Msg("header verification failed")
	}
}
