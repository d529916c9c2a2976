package cep

import (
	"context"
	"time"

	"clientregistry/pkg/sentinel"
)

// Static serves lookups from a fixed table. Tests and local runs use it
// with deterministic data and a configurable latency to mimic real calls.
type Static struct {
	Records map[string]Result
	Latency time.Duration
}

func (s Static) Lookup(ctx context.Context, code string) (Result, error) {
	if s.Latency > 0 {
		select {
		case <-time.After(s.Latency):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	if res, ok := s.Records[Normalize(code)]; ok {
		return res, nil
	}
	return Result{}, sentinel.ErrNotFound
}
