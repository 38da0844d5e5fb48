// Command notesauth-loadtest measures Engine resolve and refresh throughput
// against the in-memory or Redis refresh store.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ancorit/notesauth"
	"github.com/ancorit/notesauth/directory"
)

const loadtestPassword = "loadtest-password"

type userState struct {
	access string
	mu     sync.Mutex
	pair   notesauth.TokenPair
}

func main() {
	var (
		users       = flag.Int("users", 10000, "number of users to seed and log in")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (resolve + refresh)")
		backend     = flag.String("backend", "memory", "refresh store backend: memory or redis")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *users <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "users, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	cfg := notesauth.DefaultConfig()
	cfg.JWT.Secret = []byte("notesauth-loadtest-secret")
	cfg.Refresh.Backend = *backend
	cfg.Metrics.EnableLatencyHistograms = true

	dir, err := directory.NewMemory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "directory: %v\n", err)
		os.Exit(1)
	}

	builder := notesauth.New().
		WithConfig(cfg).
		WithDirectory(dir).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	if *backend == "redis" {
		client, cleanup, err := redisClient(*redisAddr)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer cleanup()
		builder = builder.WithRedis(client)
	}

	engine, err := builder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	states := make([]userState, *users)
	fmt.Printf("seeding and logging in %d users...\n", *users)
	startSeed := time.Now()
	for i := 0; i < *users; i++ {
		u := notesauth.User{
			ID:    fmt.Sprintf("user-%d", i),
			Email: fmt.Sprintf("user-%d@loadtest.local", i),
			Name:  fmt.Sprintf("Load Test %d", i),
		}
		if err := dir.Create(ctx, u, loadtestPassword); err != nil {
			fmt.Fprintf(os.Stderr, "create user: %v\n", err)
			os.Exit(1)
		}
		pair, err := engine.Login(ctx, u.Email, loadtestPassword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "login: %v\n", err)
			os.Exit(1)
		}
		states[i].access = pair.AccessToken
		states[i].pair = pair
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	resolveStats := runPhase(*ops, *concurrency, 7919, func(r *rand.Rand) bool {
		_, ok := engine.ResolveCurrentUser(ctx, states[r.Intn(len(states))].access)
		return ok
	})
	refreshStats := runPhase(*ops, *concurrency, 6151, func(r *rand.Rand) bool {
		state := &states[r.Intn(len(states))]
		state.mu.Lock()
		defer state.mu.Unlock()

		next, err := engine.Refresh(ctx, state.pair.RefreshToken)
		if err != nil {
			return false
		}
		state.pair = next
		return true
	})

	fmt.Println("---- results ----")
	printStats("resolve", resolveStats)
	printStats("refresh", refreshStats)

	snap := engine.MetricsSnapshot()
	fmt.Printf("engine: refresh_success=%d refresh_failure=%d resolve_success=%d resolve_failure=%d\n",
		snap.Counters[notesauth.MetricRefreshSuccess],
		snap.Counters[notesauth.MetricRefreshFailure],
		snap.Counters[notesauth.MetricResolveSuccess],
		snap.Counters[notesauth.MetricResolveFailure],
	)
}

func redisClient(addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		fmt.Printf("using miniredis at %s\n", mr.Addr())
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	fmt.Printf("using redis at %s\n", addr)
	return client, func() { _ = client.Close() }, nil
}

// runPhase runs ops calls of fn across concurrency workers. fn reports
// success.
func runPhase(ops, concurrency int, seed int64, fn func(r *rand.Rand) bool) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seed))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				ok := fn(r)
				d := time.Since(t0)
				if !ok {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
