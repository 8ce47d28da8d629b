package store

import (
	"context"
	"time"

	"github.com/raphaelgruber/pokerub/internal/metrics"
)

type instrumented struct {
	kv KV
	mc *metrics.Collector
}

// Instrument wraps kv so every call is timed into mc.
func Instrument(kv KV, mc *metrics.Collector) KV {
	if mc == nil {
		return kv
	}
	return &instrumented{kv: kv, mc: mc}
}

func (s *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	v, ok, err := s.kv.Get(ctx, key)
	s.mc.Observe(metrics.OpStoreRead, start, err)
	return v, ok, err
}

func (s *instrumented) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.kv.Set(ctx, key, value)
	s.mc.Observe(metrics.OpStoreWrite, start, err)
	return err
}

func (s *instrumented) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := s.kv.Remove(ctx, key)
	s.mc.Observe(metrics.OpStoreDelete, start, err)
	return err
}

func (s *instrumented) Close() error {
	return s.kv.Close()
}
