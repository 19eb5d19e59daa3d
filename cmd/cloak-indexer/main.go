// Command cloak-indexer runs the note-commitment indexer: it ingests
// deposits, maintains the Merkle tree, and serves the HTTP surface wallets
// use to scan for their notes and build withdrawal proofs (spec §4.7/§6).
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Machine-Labz/cloak-sub000/internal/indexerapi"
	"github.com/Machine-Labz/cloak-sub000/internal/indexerdb"
	"github.com/Machine-Labz/cloak-sub000/internal/merkle"
	"github.com/Machine-Labz/cloak-sub000/internal/onchain"
	"github.com/Machine-Labz/cloak-sub000/pkg/types"
)

const (
	version = "0.1.0"
	banner  = `
  _____ _            _      _____           _
 / ____| |          | |    |_   _|         | |
| |    | | ___   __ _| | __   | |  _ __   __| | _____  _____ _ __
| |    | |/ _ \ / _  | |/ /   | | | '_ \ / _  |/ _ \ \/ / _ \ '__|
| |____| | (_) | (_| |   <   _| |_| | | | (_| |  __/>  <  __/ |
 \_____|_|\___/ \__,_|_|\_\ |_____|_| |_|\__,_|\___/_/\_\___|_|

  Cloak Indexer v%s
`
)

// Config holds the indexer's runtime configuration, read from flags and the
// environment variables of spec §6.
type Config struct {
	ListenAddr string
	MerkleDepth int

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	CloakProgramID string
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

	flag.StringVar(&cfg.ListenAddr, "listen", envOr("INDEXER_LISTEN_ADDR", "0.0.0.0:8080"), "HTTP listen address")
	flag.IntVar(&cfg.MerkleDepth, "merkle-depth", 32, "Merkle tree depth")

	flag.StringVar(&cfg.DBHost, "db-host", "localhost", "PostgreSQL host")
	flag.IntVar(&cfg.DBPort, "db-port", 5432, "PostgreSQL port")
	flag.StringVar(&cfg.DBUser, "db-user", "cloak", "PostgreSQL user")
	flag.StringVar(&cfg.DBPassword, "db-password", "", "PostgreSQL password")
	flag.StringVar(&cfg.DBName, "db-name", "cloak_indexer", "PostgreSQL database name")

	flag.StringVar(&cfg.CloakProgramID, "cloak-program-id", envOr("CLOAK_PROGRAM_ID", ""), "shield-pool program id")

	flag.Parse()
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(ctx context.Context, cfg *Config) error {
	fmt.Println("Connecting to database...")
	dbConfig := &indexerdb.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  "disable",
		MaxConns: 20,
	}
	store, err := indexerdb.New(ctx, dbConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()
	fmt.Println("Database connected.")

	fmt.Println("Initializing Merkle tree...")
	tree, err := merkle.New(store, cfg.MerkleDepth)
	if err != nil {
		return fmt.Errorf("failed to initialize merkle tree: %w", err)
	}
	if err := tree.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize merkle tree: %w", err)
	}

	ring := onchain.InitRootsRing()

	// PushRoot publishes into this process's in-memory RootsRing only; no
	// ledger RPC client is wired in, so nothing is sent on-chain. It always
	// succeeds, so ingested notes are marked root_pushed.
	pushRoot := func(root types.Hash) error {
		ring.PushRoot(root)
		return nil
	}

	server := indexerapi.New(tree, store, ring, pushRoot)
	mux := http.NewServeMux()
	server.Routes(mux)

	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	fmt.Printf("Indexer listening on %s\n", cfg.ListenAddr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}

	fmt.Println("Indexer stopped.")
	return nil
}
