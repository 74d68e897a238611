// Command tilemerge serves the tile merge game.
//
// It supports three modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" – plays in the terminal, resuming the last saved game
//
// Flags control host/port, config directory, session storage, logging,
// and optional ngrok tunneling for easy external access during development.
// Every flag can also be set from a TILEMERGE_* environment variable or .env.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tile Merge Game Server"
)

const envPrefix = "TILEMERGE_"

// Storage backends for sessions
const (
	storageFile     = "file"
	storagePostgres = "postgres"
	storageMemory   = "memory"
)

func envVars(names ...string) cli.ValueSourceChain {
	keys := make([]string, 0, len(names)+1)
	keys = append(keys, envPrefix+names[0])
	keys = append(keys, names[1:]...)
	return cli.EnvVars(keys...)
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "tilemerge",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: envVars("HOST")},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: envVars("PORT")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing game variants", Sources: envVars("CONFIG_DIR", "CONFIG_DIR")},
			&cli.StringFlag{Name: "storage", Value: storageFile, Usage: "Session storage: file, postgres or memory", Sources: envVars("STORAGE")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "Directory for file session storage", Sources: envVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "database-url", Usage: "Postgres URL for postgres session storage", Sources: envVars("DATABASE_URL", "DATABASE_URL")},
			&cli.DurationFlag{Name: "session-ttl", Value: 24 * time.Hour, Usage: "Drop sessions idle for longer than this", Sources: envVars("SESSION_TTL")},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", Sources: envVars("DEBUG")},
			&cli.StringFlag{Name: "log-format", Value: "console", Usage: "Log format: console or json", Sources: envVars("LOG_FORMAT")},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: envVars("NGROK", "NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: envVars("NGROK_AUTHTOKEN", "NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: envVars("NGROK_DOMAIN", "NGROK_DOMAIN")},
		},
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServer,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server, starting an internal HTTP API if none is reachable",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "REST API to proxy to", Sources: envVars("API_URL")},
				},
				Action: runStdioMCP,
			},
			{
				Name:  "play",
				Usage: "Play in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "Variant to play (default variant when empty)", Sources: envVars("PLAY_CONFIG")},
					&cli.BoolFlag{Name: "fresh", Usage: "Discard the saved terminal game"},
					&cli.StringFlag{Name: "log-file", Usage: "Write logs here instead of discarding them", Sources: envVars("PLAY_LOG_FILE")},
				},
				Action: runPlay,
			},
		},
	}
}

// initLogger builds a console logger for development or a JSON logger for
// production.
func initLogger(format string, debug bool, outputs ...string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	var zapCfg zap.Config
	if format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if len(outputs) > 0 {
		zapCfg.OutputPaths = outputs
		zapCfg.ErrorOutputPaths = outputs
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	return zapCfg.Build()
}

func loggerFor(cmd *cli.Command) (*zap.Logger, error) {
	return initLogger(cmd.String("log-format"), cmd.Bool("debug"))
}

func main() {
	// Load .env file if it exists
	envErr := godotenv.Load()

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		if envErr != nil && !os.IsNotExist(envErr) {
			fmt.Fprintf(os.Stderr, "warning: error loading .env file: %v\n", envErr)
		}
		os.Exit(1)
	}
}
