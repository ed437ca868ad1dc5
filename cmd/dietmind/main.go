package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dietmind/internal/api"
	"dietmind/internal/config"
	"dietmind/internal/database"
	"dietmind/internal/ghost"
	"dietmind/internal/llm"
	"dietmind/internal/mealplan"
	"dietmind/internal/metrics"
	"dietmind/internal/planner"
)

func main() {
	config.LoadDotEnv()

	cmd := "serve"
	var args []string
	if len(os.Args) > 1 {
		cmd, args = os.Args[1], os.Args[2:]
	}

	switch cmd {
	case "serve":
		serve()
	case "extract":
		extractCmd := flag.NewFlagSet("extract", flag.ExitOnError)
		normalize := extractCmd.Bool("normalize", true, "Strip code fences and convert HTML before extracting")
		extractCmd.Parse(args)

		if err := extract(os.Stdin, os.Stdout, *normalize); err != nil {
			log.Fatalf("Extraction failed: %v", err)
		}
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(args)

		cleanupMetrics(*days)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: dietmind <command> [arguments]")
	fmt.Println("Commands:")
	fmt.Println("  serve                   Start the HTTP API (default)")
	fmt.Println("  extract [-normalize]    Read a plan document from stdin and print it as JSON")
	fmt.Println("  metrics-cleanup -days N Remove execution metrics older than N days")
}

func serve() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	textGen, err := llm.NewTextGenerator(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create text generator: %v", err)
	}
	if c, ok := textGen.(llm.Closer); ok {
		defer c.Close()
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	planRepo := planner.NewPlanRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)
	mealPlanner := planner.NewPlanner(textGen, cfg.GenerationTimeout)

	var publisher api.Publisher
	if cfg.GhostEnabled() {
		publisher = ghost.NewPublisher(ghost.NewClient(cfg))
		log.Printf("Publishing to Ghost at %s", cfg.GhostURL)
	}

	handler := api.NewHandler(mealPlanner, planRepo, metricsStore, publisher, db.Dir())
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		StaticDir:      cfg.StaticDir,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("DietMind server listening on port %s (provider: %s)", cfg.Port, cfg.LLMProvider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

// extract prints the plan found in r, or {"raw": ...} when nothing was
// recognized, matching the API's response shape.
func extract(r io.Reader, w io.Writer, normalize bool) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	doc := string(raw)
	if normalize {
		doc = mealplan.Normalize(doc)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	plan := mealplan.Extract(doc)
	if plan.IsEmpty() {
		return enc.Encode(map[string]string{"raw": string(raw)})
	}
	return enc.Encode(plan)
}

func cleanupMetrics(days int) {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	affected, err := metrics.NewStore(db.SQL).Cleanup(days)
	if err != nil {
		log.Fatalf("Cleanup failed: %v", err)
	}
	fmt.Printf("Successfully removed %d old metric records.\n", affected)
}
