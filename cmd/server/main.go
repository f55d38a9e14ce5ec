package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/joshdurbin/shortlink/internal/app"
	"github.com/joshdurbin/shortlink/internal/config"
	"github.com/joshdurbin/shortlink/internal/transport/client"
)

const clientTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:   "shortlink",
	Short: "A URL shortening service written in Go",
	Long:  "A URL shortening service with sqlite, postgres, redis or in-memory storage",
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the URL shortening server",
	RunE:  runServer,
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Client commands for interacting with the server",
}

var createCmd = &cobra.Command{
	Use:   "create [URL]",
	Short: "Create a short URL",
	Args:  cobra.ExactArgs(1),
	RunE: withCommands(func(ctx context.Context, c *client.Commands, args []string) error {
		return c.Create(ctx, args[0])
	}),
}

var getCmd = &cobra.Command{
	Use:   "get [SHORT_CODE]",
	Short: "Get information about a short URL",
	Args:  cobra.ExactArgs(1),
	RunE: withCommands(func(ctx context.Context, c *client.Commands, args []string) error {
		return c.Get(ctx, args[0])
	}),
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [SHORT_CODE]",
	Short: "Print the URL a short code redirects to (counts a visit)",
	Args:  cobra.ExactArgs(1),
	RunE: withCommands(func(ctx context.Context, c *client.Commands, args []string) error {
		return c.Resolve(ctx, args[0])
	}),
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all short URLs, newest first",
	Args:  cobra.NoArgs,
	RunE: withCommands(func(ctx context.Context, c *client.Commands, args []string) error {
		return c.List(ctx)
	}),
}

func init() {
	registerServerFlags(serverCmd.Flags())

	clientCmd.PersistentFlags().StringP("server-url", "u", config.Default().Server.ServerURL, "Server URL")

	clientCmd.AddCommand(createCmd, getCmd, resolveCmd, listCmd)
	rootCmd.AddCommand(serverCmd, clientCmd)
}

func registerServerFlags(flags *pflag.FlagSet) {
	defaults := config.Default()

	flags.StringP("config", "c", "", "Path to a YAML config file")
	flags.StringP("port", "p", defaults.Server.Port, "Server port")
	flags.String("server-url", defaults.Server.ServerURL, "Base URL used to build short links")
	flags.String("store", defaults.Store.Driver, "Store driver: sqlite, postgres, redis or memory")
	flags.String("db-path", defaults.Store.SQLite.Path, "SQLite database file path")
	flags.String("postgres-dsn", "", "Postgres connection string")
	flags.String("redis-url", "", "Redis connection URL")
	flags.Int("code-length", defaults.Shortener.Length, "Number of symbols in generated codes")
	flags.Uint64("seed", 0, "Seed for deterministic code generation (0 uses crypto randomness)")
	flags.Int("max-attempts", defaults.Shortener.MaxAttempts, "Code generation attempts per new URL")
	flags.String("log-level", defaults.Logging.Level, "Log level: debug, info, warn or error")
	flags.Bool("log-json", defaults.Logging.JSON, "Emit JSON logs")
	flags.BoolP("verbose", "v", false, "Shorthand for --log-level=debug")
}

// loadConfig layers defaults, the optional config file and explicitly set flags
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	path, _ := flags.GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = f.Value.String()
		case "server-url":
			cfg.Server.ServerURL = f.Value.String()
		case "store":
			cfg.Store.Driver = f.Value.String()
		case "db-path":
			cfg.Store.SQLite.Path = f.Value.String()
		case "postgres-dsn":
			cfg.Store.Postgres.DSN = f.Value.String()
		case "redis-url":
			cfg.Store.Redis.URL = f.Value.String()
		case "code-length":
			cfg.Shortener.Length, _ = flags.GetInt(f.Name)
		case "seed":
			cfg.Shortener.Seed, _ = flags.GetUint64(f.Name)
		case "max-attempts":
			cfg.Shortener.MaxAttempts, _ = flags.GetInt(f.Name)
		case "log-level":
			cfg.Logging.Level = f.Value.String()
		case "log-json":
			cfg.Logging.JSON, _ = flags.GetBool(f.Name)
		case "verbose":
			if verbose, _ := flags.GetBool(f.Name); verbose {
				cfg.Logging.Level = "debug"
			}
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := app.NewLogger(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting URL shortener server", "port", cfg.Server.Port, "store", cfg.Store.Driver)

	if err := app.Run(ctx, cfg, logger); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

// withCommands adapts a client operation into a cobra RunE
func withCommands(fn func(context.Context, *client.Commands, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		serverURL, _ := cmd.Flags().GetString("server-url")
		commands := client.NewCommands(client.NewClient(serverURL), cmd.OutOrStdout())

		ctx, cancel := context.WithTimeout(cmd.Context(), clientTimeout)
		defer cancel()

		return fn(ctx, commands, args)
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
