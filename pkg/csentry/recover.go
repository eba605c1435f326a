// recover.go provides the Recover helper for standalone panic recovery.
// Use this in HTTP handlers, goroutines, or other code outside of Runner.

package csentry

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Recover captures a panic as a fatal message with its stack trace and
// returns the recovered value. It does NOT re-panic. When r is nil the
// reporter attached to ctx is used; run and cxdb context IDs found in ctx
// are merged into "extra".
//
// Use in defer:
//
//	func handler(ctx context.Context) {
//	    defer csentry.Recover(ctx, client)
//	    // code that might panic
//	}
func Recover(ctx context.Context, r Reporter) any {
	recovered := recover()
	if recovered == nil {
		return nil
	}

	if r == nil {
		var ok bool
		if r, ok = ReporterFromContext(ctx); !ok {
			return recovered
		}
	}

	attrs := map[string]any{
		AttrLogger:     "panic",
		AttrStackTrace: string(debug.Stack()),
	}
	if extra := ExtraFromContext(ctx); extra != nil {
		attrs[AttrContext] = map[string]any{sectionExtra: extra}
	}

	// Errors are ignored so the caller is unaffected.
	_ = r.CaptureMessage(attrs, LevelFatal, "panic: %s", formatRecovered(recovered))

	return recovered
}

// formatRecovered formats a recovered panic value as a string.
func formatRecovered(recovered any) string {
	if recovered == nil {
		return "<nil>"
	}
	if err, ok := recovered.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", recovered)
}
