package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup"
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/ledger"
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/logger"
)

// Global flags
var (
	dbPath     string
	tempDir    string
	sampleRate int
	ledgerRPC  string
)

func init() {
	flag.StringVar(&dbPath, "db", getEnvOrDefault("AUDIODEDUP_DB_PATH", "audioregistry.sqlite3"), "Path to the SQLite database file")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("AUDIODEDUP_TEMP_DIR", "/tmp"), "Directory for temporary audio conversion files")
	flag.IntVar(&sampleRate, "rate", 22050, "Audio sample rate for processing")
	flag.StringVar(&ledgerRPC, "ledger", getEnvOrDefault("AUDIODEDUP_LEDGER_RPC", ""), "Registry node JSON-RPC endpoint")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// createService creates a new deduplication service with configured options
func createService() (audiodedup.Service, error) {
	opts := []audiodedup.Option{
		audiodedup.WithDBPath(dbPath),
		audiodedup.WithTempDir(tempDir),
		audiodedup.WithSampleRate(sampleRate),
	}
	if ledgerRPC != "" {
		opts = append(opts, audiodedup.WithRegistrar(ledger.NewRegistrar(ledgerRPC)))
	}
	return audiodedup.NewService(opts...)
}

func main() {
	log := logger.GetLogger()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	// Shift the command out so global flags still parse.
	os.Args = append(os.Args[:1], os.Args[2:]...)
	flag.Parse()

	log.Debugf("Executing command: %s", command)

	switch command {
	case "submit":
		handleSubmit()
	case "check":
		handleCheck()
	case "list":
		handleList()
	case "delete":
		handleDelete()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: audiodedup <command> [flags] [args]

Commands:
  submit <file>   Submit an audio file for duplicate check and registration
  check <file>    Run the duplicate check without registering
  list            List all registered audios
  delete <id>     Delete a registered audio by identifier

Flags:
  -db     Path to the SQLite database file
  -temp   Directory for temporary conversion files
  -rate   Audio sample rate for processing
  -ledger Registry node JSON-RPC endpoint`)
}

func handleSubmit() {
	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: audiodedup submit <file>")
		os.Exit(1)
	}
	path := args[0]

	service, err := createService()
	if err != nil {
		logger.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := service.Submit(ctx, path, path)
	if err != nil {
		logger.Fatalf("Submission failed: %v", err)
	}

	if !result.Admitted {
		fmt.Printf("REJECTED: %.1f%% similar to %s\n", result.Score*100, result.MatchedID)
		os.Exit(1)
	}

	fmt.Printf("Registered %s\n", result.Identifier)
	if result.Duplicate {
		fmt.Printf("  flagged: %.1f%% similar to %s (below rejection bar)\n", result.Score*100, result.MatchedID)
	}
	fmt.Printf("  ipfs:   %s\n", result.IPFSHash)
	if result.LedgerTx != "" {
		fmt.Printf("  ledger: %s\n", result.LedgerTx)
	}
}

func handleCheck() {
	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: audiodedup check <file>")
		os.Exit(1)
	}
	path := args[0]

	service, err := createService()
	if err != nil {
		logger.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := service.Check(ctx, path)
	if err != nil {
		logger.Fatalf("Check failed: %v", err)
	}

	if result.Duplicate {
		fmt.Printf("Duplicate: %.1f%% similar to %s\n", result.Score*100, result.MatchedID)
	} else {
		fmt.Println("No duplicate found")
	}
}

func handleList() {
	service, err := createService()
	if err != nil {
		logger.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	records, err := service.List()
	if err != nil {
		logger.Fatalf("Failed to list audios: %v", err)
	}

	if len(records) == 0 {
		fmt.Println("No audios registered")
		return
	}

	for _, rec := range records {
		fmt.Printf("%s  ipfs=%s  ledger=%s  created=%s\n",
			rec.Identifier, rec.IPFSHash, rec.LedgerTx, rec.CreatedAt.Format(time.RFC3339))
	}
	fmt.Printf("%d audio(s)\n", len(records))
}

func handleDelete() {
	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: audiodedup delete <identifier>")
		os.Exit(1)
	}
	identifier := args[0]

	service, err := createService()
	if err != nil {
		logger.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	if err := service.Delete(identifier); err != nil {
		logger.Fatalf("Failed to delete %s: %v", identifier, err)
	}
	fmt.Printf("Deleted %s\n", identifier)
}
