package service

import (
	"context"
	"time"
)

// Once the gateway has accepted a request its reference must be stored even if
// the caller has gone away, so the write runs detached and is retried.
const refWriteAttempts = 3

var refWriteBackoff = 50 * time.Millisecond

func writeRef(ctx context.Context, write func(context.Context) error) error {
	bg := context.WithoutCancel(ctx)
	var err error
	for attempt := 1; attempt <= refWriteAttempts; attempt++ {
		if err = write(bg); err == nil {
			return nil
		}
		if attempt < refWriteAttempts {
			time.Sleep(refWriteBackoff * time.Duration(attempt))
		}
	}
	return err
}
