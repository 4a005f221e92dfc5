package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ateliergo/atelier/internal/api"
	"github.com/ateliergo/atelier/internal/genai"
	"github.com/ateliergo/atelier/internal/store"
	"github.com/ateliergo/atelier/internal/util"
	"github.com/ateliergo/atelier/internal/whatsapp"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for Atelier state data
	DefaultStateDir = "/var/lib/atelier"
	// DefaultWhatsAppDBFileName is the default SQLite filename for the whatsmeow session store
	DefaultWhatsAppDBFileName = "whatsmeow.db"
	// DefaultAppDBFileName is the default SQLite filename for profiles and conversations
	DefaultAppDBFileName = "atelier.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	// Build module options
	waOpts := buildWhatsAppOptions(flags)
	storeOpts := buildStoreOptions(flags)
	genaiOpts := buildGenAIOptions(flags)
	apiOpts := buildAPIOptions(flags)

	// Start the service
	slog.Info("Bootstrapping Atelier with configured modules")
	slog.Debug("Module options counts", "whatsapp", len(waOpts), "store", len(storeOpts), "genai", len(genaiOpts), "api", len(apiOpts))
	slog.Debug("Final configuration", "state_dir", *flags.stateDir, "app_dsn_set", *flags.appDBDSN != "", "api_addr", *flags.apiAddr, "transport", *flags.transport)
	if err := api.Run(waOpts, storeOpts, genaiOpts, apiOpts); err != nil {
		slog.Error("Atelier failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Atelier exited successfully")
}

// Config holds environment configuration
type Config struct {
	WhatsAppDBDSN    string
	ApplicationDBDSN string
	StateDir         string
	OpenAIKey        string
	BaseURL          string
	TextModel        string
	VisionModel      string
	APIAddr          string
	Transport        string
}

// Flags holds command line flag values
type Flags struct {
	qrOutput      *string
	numeric       *bool
	stateDir      *string
	whatsappDBDSN *string
	appDBDSN      *string
	openaiKey     *string
	baseURL       *string
	textModel     *string
	visionModel   *string
	apiAddr       *string
	transport     *string
}

// initializeLogger sets up structured logging with the level taken from $LOG_LEVEL
func initializeLogger() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		WhatsAppDBDSN:    os.Getenv("WHATSAPP_DB_DSN"),
		ApplicationDBDSN: util.FirstEnv("DATABASE_DSN", "DATABASE_URL"),
		StateDir:         os.Getenv("ATELIER_STATE_DIR"),
		OpenAIKey:        util.FirstEnv("OPENROUTER_API_KEY", "OPENAI_API_KEY"),
		BaseURL:          os.Getenv("OPENROUTER_BASE_URL"),
		TextModel:        os.Getenv("ATELIER_TEXT_MODEL"),
		VisionModel:      os.Getenv("ATELIER_VISION_MODEL"),
		APIAddr:          os.Getenv("API_ADDR"),
		Transport:        os.Getenv("ATELIER_TRANSPORT"),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No ATELIER_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// Default whatsmeow session store to SQLite in the state directory, with
	// foreign keys enabled as the library recommends
	if config.WhatsAppDBDSN == "" {
		config.WhatsAppDBDSN = "file:" + filepath.Join(config.StateDir, DefaultWhatsAppDBFileName) + "?_foreign_keys=on"
		slog.Debug("No WhatsApp DSN provided, defaulting to SQLite", "sqlite_path", config.WhatsAppDBDSN)
	}

	// Default application store to SQLite in the state directory
	if config.ApplicationDBDSN == "" {
		config.ApplicationDBDSN = filepath.Join(config.StateDir, DefaultAppDBFileName)
		slog.Debug("No application DSN provided, defaulting to SQLite", "sqlite_path", config.ApplicationDBDSN)
	}

	slog.Debug("environment variables loaded",
		"WHATSAPP_DB_DSN_SET", config.WhatsAppDBDSN != "",
		"DATABASE_DSN_SET", config.ApplicationDBDSN != "",
		"ATELIER_STATE_DIR", config.StateDir,
		"OPENROUTER_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"ATELIER_TRANSPORT", config.Transport)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		qrOutput:      flag.String("qr-output", "", "path to write login QR code"),
		numeric:       flag.Bool("numeric-code", false, "use numeric login code instead of QR code"),
		stateDir:      flag.String("state-dir", config.StateDir, "state directory for Atelier data (overrides $ATELIER_STATE_DIR)"),
		whatsappDBDSN: flag.String("whatsapp-db-dsn", config.WhatsAppDBDSN, "database DSN for the whatsmeow session store (overrides $WHATSAPP_DB_DSN)"),
		appDBDSN:      flag.String("db-dsn", config.ApplicationDBDSN, "database DSN for profiles and conversations (overrides $DATABASE_DSN or $DATABASE_URL)"),
		openaiKey:     flag.String("openai-api-key", config.OpenAIKey, "OpenRouter/OpenAI API key (overrides $OPENROUTER_API_KEY or $OPENAI_API_KEY)"),
		baseURL:       flag.String("openai-base-url", config.BaseURL, "OpenAI-compatible API base URL (overrides $OPENROUTER_BASE_URL)"),
		textModel:     flag.String("text-model", config.TextModel, "model for text completions (overrides $ATELIER_TEXT_MODEL)"),
		visionModel:   flag.String("vision-model", config.VisionModel, "model for image analysis (overrides $ATELIER_VISION_MODEL)"),
		apiAddr:       flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		transport:     flag.String("transport", config.Transport, "messaging transport: whatsapp or twilio (overrides $ATELIER_TRANSPORT)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"qrOutput", *flags.qrOutput,
		"numeric", *flags.numeric,
		"stateDir", *flags.stateDir,
		"whatsappDBDSN_set", *flags.whatsappDBDSN != "",
		"appDBDSN_set", *flags.appDBDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"transport", *flags.transport)

	// Re-derive default DSNs when only the state directory changed
	if *flags.whatsappDBDSN == config.WhatsAppDBDSN && *flags.stateDir != config.StateDir {
		*flags.whatsappDBDSN = "file:" + filepath.Join(*flags.stateDir, DefaultWhatsAppDBFileName) + "?_foreign_keys=on"
		slog.Debug("Updated WhatsApp DSN based on state directory", "new_state_dir", *flags.stateDir)
	}
	if *flags.appDBDSN == config.ApplicationDBDSN && *flags.stateDir != config.StateDir {
		*flags.appDBDSN = filepath.Join(*flags.stateDir, DefaultAppDBFileName)
		slog.Debug("Updated application DSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	for _, dsn := range []string{stripSQLiteURIPrefix(*flags.whatsappDBDSN), *flags.appDBDSN} {
		if dsn == "" || store.DetectDSNType(dsn) == "postgres" {
			continue
		}
		dir := filepath.Dir(dsn)
		if store.DetectDSNType(dsn) == "file" {
			// Directory DSNs are created by the file store itself
			dir = dsn
		}
		slog.Debug("Creating state directory for file-based database", "state_dir", dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", dir)
			return err
		}
	}
	return nil
}

// stripSQLiteURIPrefix removes the file: prefix and query parameters from a
// SQLite URI so its parent directory can be derived.
func stripSQLiteURIPrefix(dsn string) string {
	dsn = strings.TrimPrefix(dsn, "file:")
	if idx := strings.IndexByte(dsn, '?'); idx >= 0 {
		dsn = dsn[:idx]
	}
	return dsn
}

// buildWhatsAppOptions constructs WhatsApp configuration options
func buildWhatsAppOptions(flags Flags) []whatsapp.Option {
	var waOpts []whatsapp.Option
	if *flags.qrOutput != "" {
		waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
	}
	if *flags.numeric {
		waOpts = append(waOpts, whatsapp.WithNumericCode())
	}
	if *flags.whatsappDBDSN != "" {
		waOpts = append(waOpts, whatsapp.WithDBDSN(*flags.whatsappDBDSN))
	}
	return waOpts
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.appDBDSN != "" {
		slog.Debug("Configuring application store", "dsn_type", store.DetectDSNType(*flags.appDBDSN))
		storeOpts = append(storeOpts, store.WithDSN(*flags.appDBDSN))
	} else {
		slog.Debug("No database DSN provided, will use in-memory store")
	}
	return storeOpts
}

// buildGenAIOptions constructs GenAI configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	if *flags.baseURL != "" {
		genaiOpts = append(genaiOpts, genai.WithBaseURL(*flags.baseURL))
	}
	if *flags.textModel != "" {
		genaiOpts = append(genaiOpts, genai.WithTextModel(*flags.textModel))
	}
	if *flags.visionModel != "" {
		genaiOpts = append(genaiOpts, genai.WithVisionModel(*flags.visionModel))
	}
	return genaiOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.transport != "" {
		apiOpts = append(apiOpts, api.WithTransport(*flags.transport))
	}
	return apiOpts
}
