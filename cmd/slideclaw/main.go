package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"slideclaw/internal/agent"
	"slideclaw/internal/client"
	"slideclaw/internal/config"
	"slideclaw/internal/deck"
	"slideclaw/internal/export"
	"slideclaw/internal/gemini"
	"slideclaw/internal/logging"
	"slideclaw/internal/rpc"
	"slideclaw/internal/server"
	"slideclaw/internal/store"
)

var (
	// Global flags
	verbose    bool
	configPath string
	serverURL  string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:     "slideclaw",
	Short:   "slideclaw - AI-powered presentation tool",
	Version: "0.1.0",
	Long: `slideclaw generates HTML slide decks from natural-language prompts.

The serve command runs the HTTP API; every other command talks to a
running server over that API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

// serveCmd runs the HTTP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the slideclaw server",
	Long: `Starts the HTTP API server. Presentations are stored as JSON files
under the configured data directory. Set GEMINI_API_KEY to enable
generation.`,
	RunE: runServe,
}

// createCmd generates a presentation from a prompt
var createCmd = &cobra.Command{
	Use:   "create [prompt]",
	Short: "Generate a presentation from a prompt",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCreate,
}

// listCmd lists presentations
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all presentations",
	RunE:  runList,
}

// exportCmd downloads a rendered document
var exportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Export a presentation to PDF or PPTX",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

// configCmd groups configuration subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the design config and available CSS libraries",
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [library]",
	Short: "Set the preferred CSS library for slide generation",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSet,
}

// pluginCmd speaks JSON-RPC over stdio for gateway hosts
var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Run the gateway plugin adapter on stdin/stdout",
	Long: `Reads line-delimited JSON-RPC 2.0 requests from stdin and writes
responses to stdout. Each slideclaw.* method proxies to the HTTP
server, so one must be running.`,
	RunE: runPlugin,
}

var (
	servePort    int
	createEditID string
	exportFormat string
	exportOutput string
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ~/.slideclaw/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "url", "", "Server base URL (or set SLIDECLAW_URL)")

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config)")
	createCmd.Flags().StringVar(&createEditID, "presentation", "", "Edit an existing presentation instead of creating one")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "pdf", "Export format: pdf or pptx")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(pluginCmd)
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	return config.Load(path)
}

// baseURL resolves the server address: --url flag first, then config
// (which already folds in SLIDECLAW_URL).
func baseURL(cfg *config.Config) string {
	if serverURL != "" {
		return serverURL
	}
	if cfg.Server.BaseURL != "" {
		return cfg.Server.BaseURL
	}
	return client.DefaultBaseURL
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if err := logging.Initialize(cfg.Storage.DataDir, cfg.Logging.DebugMode || verbose, cfg.Logging.Level); err != nil {
		return err
	}
	logging.Boot("serve: port=%d data=%s model=%s", cfg.Server.Port, cfg.Storage.DataDir, cfg.LLM.Model)

	if cfg.LLM.APIKey == "" {
		logger.Warn("no API key configured; agent generation will fail", zap.String("env", "GEMINI_API_KEY"))
	}

	st := store.New(cfg.Storage.DataDir)
	svc := deck.NewService(st)
	llm := gemini.New(gemini.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLMTimeout(),
	})
	router := server.NewRouter(server.Deps{
		Deck:   svc,
		Store:  st,
		Agent:  agent.NewRunner(llm, agent.NewToolset(svc, st)),
		Export: export.NewService(export.NewChromeRenderer(cfg.Export)),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("slideclaw server listening", zap.Int("port", cfg.Server.Port))
		fmt.Printf("slideclaw server listening on http://localhost:%d\n", cfg.Server.Port)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	prompt := strings.Join(args, " ")

	fmt.Println("Generating presentation...")
	api := client.New(baseURL(cfg))
	result, err := api.Generate(cmd.Context(), prompt, createEditID)
	if err != nil {
		return err
	}
	if result.PresentationID != "" {
		fmt.Printf("Presentation created: %s\n", result.PresentationID)
	}
	fmt.Println(result.Message)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	api := client.New(baseURL(cfg))
	presentations, err := api.ListPresentations(cmd.Context())
	if err != nil {
		return err
	}
	if len(presentations) == 0 {
		fmt.Println("No presentations found.")
		return nil
	}
	fmt.Println("\nPresentations:")
	for _, p := range presentations {
		date := p.CreatedAt
		if t, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil {
			date = t.Format("2006-01-02")
		}
		fmt.Printf("  %s  %s  (%d slides, %s)\n", p.ID, p.Title, p.SlideCount, date)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id := args[0]
	format := strings.ToLower(exportFormat)
	if format != "pdf" && format != "pptx" {
		return fmt.Errorf("invalid format %q: use pdf or pptx", exportFormat)
	}
	output := exportOutput
	if output == "" {
		output = fmt.Sprintf("presentation-%s.%s", id, format)
	}

	fmt.Printf("Exporting %s as %s...\n", id, strings.ToUpper(format))
	api := client.New(baseURL(cfg))
	data, err := api.Export(cmd.Context(), id, format)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	abs, err := filepath.Abs(output)
	if err != nil {
		abs = output
	}
	fmt.Printf("Exported to: %s\n", abs)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("# %s\n%s", path, data)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	api := client.New(baseURL(cfg))
	info, err := api.GetDesignConfig(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Library: %s\n\nAvailable:\n", info.Config.Library)
	for _, entry := range info.Catalog {
		fmt.Printf("  %-10s %s\n", entry.Key, entry.Description)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	api := client.New(baseURL(cfg))
	updated, err := api.SetDesignConfig(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Library set to: %s\n", updated.Library)
	return nil
}

func runPlugin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logging.Initialize(cfg.Storage.DataDir, cfg.Logging.DebugMode || verbose, cfg.Logging.Level); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := rpc.NewServer(os.Stdin, os.Stdout)
	rpc.RegisterGateway(s, client.New(baseURL(cfg)))
	logging.RPC("plugin adapter started: url=%s", baseURL(cfg))
	return s.Serve(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
