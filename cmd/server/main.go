package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup"
	"github.com/ReshikaSuresh433/audio-copyright-detection/pkg/audiodedup/ledger"
)

var (
	port           int
	dbPath         string
	tempDir        string
	sampleRate     int
	ledgerRPC      string
	allowedOrigins string
)

func init() {
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("AUDIODEDUP_DB_PATH", "audioregistry.sqlite3"), "Path to SQLite database")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("AUDIODEDUP_TEMP_DIR", "/tmp"), "Temporary directory")
	flag.IntVar(&sampleRate, "rate", 22050, "Audio sample rate")
	flag.StringVar(&ledgerRPC, "ledger", getEnvOrDefault("AUDIODEDUP_LEDGER_RPC", ""), "Registry node JSON-RPC endpoint (empty disables ledger registration)")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	flag.Parse()

	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	opts := []audiodedup.Option{
		audiodedup.WithDBPath(dbPath),
		audiodedup.WithTempDir(tempDir),
		audiodedup.WithSampleRate(sampleRate),
	}
	if ledgerRPC != "" {
		opts = append(opts, audiodedup.WithRegistrar(ledger.NewRegistrar(ledgerRPC)))
	}

	service, err := audiodedup.NewService(opts...)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	config := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		TempDir:        tempDir,
		SampleRate:     sampleRate,
		LedgerRPC:      ledgerRPC,
		AllowedOrigins: origins,
	}

	server := NewServer(service, config)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
