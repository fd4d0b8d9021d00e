// Package cacheperf measures feed latency and database load under different
// page cache setups.
package cacheperf

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
)

// QueryCounter counts SELECTs issued through a gorm handle.
type QueryCounter struct {
	queries atomic.Int64
}

// Attach registers the counter on db's query callback chain.
func (c *QueryCounter) Attach(db *gorm.DB) error {
	return db.Callback().Query().After("gorm:query").Register("cacheperf:count", func(*gorm.DB) {
		c.queries.Add(1)
	})
}

func (c *QueryCounter) Load() int64 { return c.queries.Load() }
func (c *QueryCounter) Reset()      { c.queries.Store(0) }

// Request is one simulated index hit.
type Request struct {
	Page string
}

// MakeRequests 大部分请求落在首页，其余随机翻页
func MakeRequests(n, maxPage int, seed int64) []Request {
	rnd := rand.New(rand.NewSource(seed))
	out := make([]Request, n)
	for i := range out {
		page := 1
		if rnd.Float64() > 0.7 && maxPage > 1 {
			page = 2 + rnd.Intn(maxPage-1)
		}
		out[i] = Request{Page: fmt.Sprint(page)}
	}
	return out
}

// Result of one scenario run.
type Result struct {
	Name      string
	Durations []time.Duration
	Queries   int64
}

// Run replays reqs against call, optionally warming first.
func Run(ctx context.Context, name string, counter *QueryCounter, reqs []Request, warm bool, call func(context.Context, Request) error) (Result, error) {
	if warm {
		for _, r := range reqs {
			if err := call(ctx, r); err != nil {
				return Result{}, err
			}
		}
	}
	counter.Reset()
	out := make([]time.Duration, 0, len(reqs))
	for _, r := range reqs {
		start := time.Now()
		if err := call(ctx, r); err != nil {
			return Result{}, err
		}
		out = append(out, time.Since(start))
	}
	return Result{Name: name, Durations: out, Queries: counter.Load()}, nil
}

func (r Result) String() string {
	return fmt.Sprintf("%-14s avg=%v p95=%v p99=%v db_queries=%d",
		r.Name, Avg(r.Durations), Pct(r.Durations, 0.95), Pct(r.Durations, 0.99), r.Queries)
}

func Avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func Pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
