// Command bench runs a synthetic load-through workload against the cache and
// exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/lrucache/cache"
	"github.com/IvanBrykalov/lrucache/internal/util"
	pmet "github.com/IvanBrykalov/lrucache/metrics/prom"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// loadFunc is the common surface of Loading and Decaying used by workers.
type loadFunc func(ctx context.Context, k string) (string, error)

func main() {
	// ---- Flags ----
	var (
		capacity = flag.Int("cap", 100_000, "cache capacity (entries)")
		mode     = flag.String("mode", "loading", "cache variant: loading | decaying")
		maxAge   = flag.Duration("max_age", time.Second, "freshness window for -mode=decaying")
		resize   = flag.Duration("resize_every", 0, "halve/restore capacity at this interval (0 = never)")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		latency  = flag.Duration("load_latency", time.Millisecond, "simulated loader latency")
		absentP  = flag.Int("absent", 0, "percentage of keys the loader reports as absent [0..100]")

		keys  = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed  = flag.Int64("seed", time.Now().UnixNano(), "random seed")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr; empty = disabled")
	)
	flag.Parse()
	if err := util.InitLogging(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// ---- pprof / Prometheus (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			slog.Info("Serving pprof.", "addr", *pprofAddr)
			slog.Error("pprof server stopped.", "error", http.ListenAndServe(*pprofAddr, nil))
		}()
	}
	metrics := pmet.New(nil, "lru", "bench", nil)
	if *metricsAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			slog.Info("Serving metrics.", "addr", *metricsAddr)
			slog.Error("metrics server stopped.", "error", http.ListenAndServe(*metricsAddr, nil))
		}()
	}

	// ---- Loader: deterministic per key, optionally absent ----
	absentPct := *absentP
	delay := *latency
	var loaderCalls atomic.Uint64
	fetch := func(ctx context.Context, k string) (string, bool, error) {
		loaderCalls.Add(1)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", false, ctx.Err()
		}
		n, err := strconv.Atoi(k[2:])
		if err != nil {
			return "", false, err
		}
		if n%100 < absentPct {
			return "", false, nil
		}
		return "v" + k, true, nil
	}

	// ---- Build cache ----
	var (
		load   loadFunc
		stats  func() cache.Stats
		resz   func(int) error
		length func() int
	)
	switch *mode {
	case "loading":
		c, err := cache.NewLoading(cache.Options[string, string]{Capacity: *capacity, Metrics: metrics}, fetch)
		if err != nil {
			slog.Error("Failed to build cache.", "error", err)
			os.Exit(2)
		}
		load = func(ctx context.Context, k string) (string, error) { return c.LoadOr(ctx, k, "") }
		stats, resz, length = c.Stats, c.SetCapacity, c.Len
	case "decaying":
		clk := cache.SystemClock{}
		c, err := cache.NewDecaying(
			cache.Options[string, cache.Stamped[string]]{Capacity: *capacity},
			cache.StampLoader(clk, cache.Loader[string, string](fetch)),
			cache.MaxAge[string](clk, *maxAge))
		if err != nil {
			slog.Error("Failed to build cache.", "error", err)
			os.Exit(2)
		}
		load = func(ctx context.Context, k string) (string, error) {
			v, err := c.Load(ctx, k)
			if errors.Is(err, cache.ErrAbsent) {
				return "", nil
			}
			return v.Value, err
		}
		stats, resz, length = c.Stats, c.SetCapacity, c.Len
	default:
		slog.Error("Unknown mode.", "mode", *mode)
		os.Exit(2)
	}

	// ---- Snapshot flags for goroutines ----
	keysMax := uint64(*keys - 1)
	seedBase := *seed
	zipfSVal := *zipfS
	zipfVVal := *zipfV
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}

	// ---- Load generation ----
	var total, absent uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	if *resize > 0 {
		g.Go(func() error {
			t := time.NewTicker(*resize)
			defer t.Stop()
			small := false
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-t.C:
				}
				n := *capacity
				if small = !small; small {
					n = max(1, n/2)
				}
				if err := resz(n); err != nil {
					return err
				}
				slog.Debug("Resized cache.", "capacity", n, "len", length())
			}
		})
	}
	for w := 0; w < workersN; w++ {
		id := w
		g.Go(func() error {
			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			localZipf := rand.NewZipf(localR, zipfSVal, zipfVVal, keysMax)

			for gctx.Err() == nil {
				k := "k:" + strconv.FormatUint(localZipf.Uint64(), 10)
				v, err := load(gctx, k)
				if err != nil {
					if gctx.Err() != nil {
						return nil
					}
					return fmt.Errorf("load %s: %w", k, err)
				}
				atomic.AddUint64(&total, 1)
				if v == "" {
					atomic.AddUint64(&absent, 1)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("Workload failed.", "error", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	// ---- Report ----
	ops := atomic.LoadUint64(&total)
	st := stats()
	hitRate := 0.0
	if ops > 0 {
		hitRate = float64(st.Hits) / float64(ops) * 100
	}

	fmt.Printf("mode=%s cap=%d workers=%d keys=%d dur=%v seed=%d\n",
		*mode, *capacity, workersN, *keys, elapsed, seedBase)
	fmt.Printf("ops=%d (%.0f ops/s)  absent=%d\n", ops, float64(ops)/elapsed.Seconds(), atomic.LoadUint64(&absent))
	fmt.Printf("hits=%d  loads=%d  loader-calls=%d  failures=%d  hit-rate=%.2f%%\n",
		st.Hits, st.Loads, loaderCalls.Load(), st.Failures, hitRate)
	fmt.Printf("Len()=%d\n", length())
}
