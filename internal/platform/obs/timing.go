package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

// RequestIDKey carries the request id through adapter calls so slow geocode
// or solicitation round-trips can be tied back to the request that paid
// for them.
const RequestIDKey ctxKey = "req_id"

// Time returns a deferred-call hook that logs the operation's duration, and
// the error when the caller passes a pointer to one:
//
//	defer obs.Time(ctx, "geocode")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		ms := time.Since(start).Milliseconds()

		if errp != nil && *errp != nil {
			log.Printf("op=%s dur=%dms req_id=%s err=%v", name, ms, reqID, *errp)
			return
		}
		log.Printf("op=%s dur=%dms req_id=%s", name, ms, reqID)
	}
}
