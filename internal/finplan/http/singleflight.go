package finplanhttp

import (
	"context"

	"golang.org/x/sync/singleflight"
)

var reportBuildGroup singleflight.Group

// singleflightBuild collapses concurrent identical report builds so a burst
// of dashboard loads hits the service once per key.
func singleflightBuild(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	resultChan := reportBuildGroup.DoChan(key, func() (any, error) {
		return fn(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		return res.Val, res.Err
	}
}
