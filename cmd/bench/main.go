// Command bench runs a synthetic workload against a cost-bounded cache and
// exposes optional pprof/Prometheus endpoints.
//
// Engine limits, logging and the metrics endpoint come from the config file
// and COSTLRU_* environment variables; flags shape the workload.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/costlru/cache"
	"github.com/IvanBrykalov/costlru/internal/config"
	"github.com/IvanBrykalov/costlru/internal/logging"
	"github.com/IvanBrykalov/costlru/lru"
	pmet "github.com/IvanBrykalov/costlru/metrics/prom"
)

func main() {
	// ---- Flags ----
	var (
		cfgPath = flag.String("config", "", "YAML config file (optional)")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")

		keys     = flag.Int("keys", 1_000_000, "keyspace size")
		minValue = flag.Int("min_value", 64, "minimum value size in bytes")
		maxValue = flag.Int("max_value", 4096, "maximum value size in bytes")
		zipfS    = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV    = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		preload  = flag.Int("preload", 10_000, "preload entries")

		pprofAddr = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bench:", err)
		os.Exit(2)
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bench:", err)
		os.Exit(2)
	}

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			log.Info("pprof: serving", "addr", *pprofAddr)
			log.Warn("pprof: stopped", "err", http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, cfg.Metrics.Namespace, "bench", nil)
	if cfg.Metrics.Addr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Info("metrics: serving", "addr", cfg.Metrics.Addr)
			log.Warn("metrics: stopped", "err", http.ListenAndServe(cfg.Metrics.Addr, nil))
		}()
	}

	// ---- Build engine + cache ----
	opt := cfg.EngineOptions()
	opt.Metrics = metrics
	opt.Logger = log
	eng, err := lru.New(opt)
	if err != nil {
		log.Error("engine", "err", err)
		os.Exit(2)
	}
	c := cache.New[string, []byte](cache.Options[string, []byte]{
		Engine:  eng,
		Shards:  cfg.Cache.Shards,
		Cost:    func(b []byte) int64 { return int64(len(b)) },
		Metrics: metrics,
		Logger:  log,
	})
	defer func() { _ = c.Close() }()

	// ---- Snapshot flags for goroutines ----
	readPctVal := *readPct
	keysMax := uint64(*keys - 1)
	seedBase := *seed
	zipfSVal := *zipfS
	zipfVVal := *zipfV
	lo, hi := *minValue, *maxValue
	if hi < lo {
		hi = lo
	}
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}
	valueOf := func(r *rand.Rand) []byte {
		return make([]byte, lo+r.Intn(hi-lo+1))
	}

	// ---- Preload to get a realistic hit-rate ----
	pr := rand.New(rand.NewSource(seedBase))
	for i := 0; i < *preload; i++ {
		c.Set("k:"+strconv.Itoa(i), valueOf(pr))
	}

	// ---- Load generation ----
	var reads, writes, hits, misses, refused, total atomic.Uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workersN; w++ {
		w := w
		g.Go(func() error {
			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(seedBase + int64(w)*9973))
			localZipf := rand.NewZipf(localR, zipfSVal, zipfVVal, keysMax)

			keyByZipf := func() string {
				return "k:" + strconv.FormatUint(localZipf.Uint64(), 10)
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				default:
				}

				total.Add(1)
				if int(localR.Int31n(100)) < readPctVal {
					reads.Add(1)
					if _, ok := c.Get(keyByZipf()); ok {
						hits.Add(1)
					} else {
						misses.Add(1)
					}
				} else {
					writes.Add(1)
					if !c.Set(keyByZipf(), valueOf(localR)) {
						refused.Add(1)
					}
				}
			}
		})
	}
	_ = g.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	ops := total.Load()
	readsN := reads.Load()
	hitsN := hits.Load()

	hitRate := 0.0
	if readsN > 0 {
		hitRate = float64(hitsN) / float64(readsN) * 100
	}

	fmt.Printf("workers=%d keys=%d values=%d..%dB dur=%v seed=%d\n",
		workersN, *keys, lo, hi, elapsed, seedBase)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d  refused=%d\n",
		ops, float64(ops)/elapsed.Seconds(), readsN, writes.Load(), refused.Load())
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", hitsN, misses.Load(), hitRate)
	fmt.Printf("Len()=%d Cost()=%d\n", c.Len(), c.Cost())
	fmt.Println(eng.String())

	if err := eng.Verify(); err != nil {
		log.Error("engine state corrupt", "err", err)
		os.Exit(1)
	}
}
