// Command cloak-relay runs the withdrawal relay: it accepts withdraw
// requests over HTTP, queues them in Redis, and a worker pool matches each
// to an available PoW claim, assembles the ledger transaction, and submits
// it (spec §4.8/§6).
package main

import (
	"context"
	"fmt"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/Machine-Labz/cloak-sub000/internal/onchain"
	"github.com/Machine-Labz/cloak-sub000/internal/relay"
	"github.com/Machine-Labz/cloak-sub000/internal/relayqueue"
)

const (
	version = "0.1.0"
	banner  = `
   _____ _            _       _____      _
  / ____| |          | |     |  __ \    | |
 | |    | | ___   __ _| | __  | |__) |__| | __ _ _   _
 | |    | |/ _ \ / _  | |/ /  |  _  // _  |/ _  | | | |
 | |____| | (_) | (_| |   <   | | \ \ (_| | (_| | |_| |
  \_____|_|\___/ \__,_|_|\_\  |_|  \_\__,_|\__,_|\__, |
                                                   __/ |
  Cloak Relay v%s                                |___/
`
)

// Config holds the relay's runtime configuration (spec §6 env vars).
type Config struct {
	ListenAddr     string
	RedisAddr      string
	CloakProgramID string
	RegistryID     string
	MintAddress    string
	CORSOrigins    []string
	NumWorkers     int
}

func main() {
	cfg := parseFlags()
	fmt.Printf(banner, version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() *Config {
	cfg := &Config{}

	port := envOr("RELAY_PORT", "3002")
	flag.StringVar(&cfg.ListenAddr, "listen", "0.0.0.0:"+port, "HTTP listen address")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", envOr("REDIS_URL", "localhost:6379"), "Redis connection address")
	flag.StringVar(&cfg.CloakProgramID, "cloak-program-id", envOr("CLOAK_PROGRAM_ID", ""), "shield-pool program id")
	flag.StringVar(&cfg.RegistryID, "registry-program-id", envOr("SCRAMBLE_REGISTRY_PROGRAM_ID", ""), "scramble-registry program id")
	flag.StringVar(&cfg.MintAddress, "mint-address", envOr("MINT_ADDRESS", ""), "token mint (empty = native asset)")
	flag.IntVar(&cfg.NumWorkers, "workers", 4, "number of concurrent withdraw workers")

	flag.Parse()
	cfg.CORSOrigins = corsOrigins()
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func corsOrigins() []string {
	raw := os.Getenv("CORS_ORIGINS")
	if raw == "" {
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// noOpSubmitter stands in until a ledger RPC client is wired in: it lets
// the worker pool run end to end (dequeue, claim discovery, retry/dead
// letter routing) against a real Redis queue without submitting anything.
type noOpSubmitter struct{}

func (noOpSubmitter) SubmitWithdraw(ctx context.Context, payload relay.WithdrawRequestPayload, claim *onchain.Claim) (string, error) {
	return "", fmt.Errorf("cloak-relay: no ledger client configured")
}

// emptyClaimSource reports no claims until chain account scanning is wired
// in; claim discovery itself is fully implemented in internal/relay.
type emptyClaimSource struct{}

func (emptyClaimSource) ListClaims(ctx context.Context) ([]*onchain.Claim, error) {
	return nil, nil
}

func run(ctx context.Context, cfg *Config) error {
	fmt.Println("Connecting to Redis...")
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer rdb.Close()
	fmt.Println("Redis connected.")

	queue := relayqueue.New(rdb, relayqueue.DefaultConfig())
	finder := relay.NewClaimFinder(emptyClaimSource{}, 1000)
	status := relay.NewStatusStore()
	pool := relay.NewPool(queue, finder, noOpSubmitter{}, status, cfg.NumWorkers, func() uint64 { return 0 })
	pool.Run(ctx)

	server := relay.NewServer(pool, status)
	mux := http.NewServeMux()
	server.Routes(mux)

	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	fmt.Printf("Relay listening on %s\n", cfg.ListenAddr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}

	fmt.Println("Relay stopped.")
	return nil
}
