package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/provisor-io/provisor/internal/config"
	"github.com/provisor-io/provisor/internal/mcp"
	"github.com/provisor-io/provisor/internal/resource"
)

var serveWatch bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP resource server",
	Long: `Start the MCP server and expose the configured resources.

The server speaks the Model Context Protocol over stdio, so it plugs
directly into MCP clients. Logs go to stderr as JSON; stdout carries
only protocol messages.

Resources are read at provisor://<name>, with parameters supplied as
query values:

  provisor://sampledata?client=acme

With --watch, the config file is monitored and the resource set is
reloaded on change; clients receive a list_changed notification.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload resources when the config file changes")
	rootCmd.AddCommand(serveCmd)
}

// serveFuncs returns the server-side functions available to mcp_server
// resources.
func serveFuncs() resource.FuncMap {
	return resource.BuiltinFuncs()
}

func runServe(cmd *cobra.Command, args []string) error {
	// stdout is the protocol channel; all diagnostics go to stderr.
	srvLogger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: serveLogLevel(),
	}))

	providers, err := mcp.NewProviders(cfg, serveFuncs(), srvLogger)
	if err != nil {
		return fmt.Errorf("failed to build resource providers: %w", err)
	}

	srv, err := mcp.NewServer(versionInfo.Version, providers,
		mcp.WithLogger(srvLogger),
		mcp.WithServerName(cfg.Name),
	)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	srvLogger.Info("starting MCP server",
		"name", cfg.Name,
		"version", versionInfo.Version,
		"transport", "stdio",
		"resources", providers.Registry.Len(),
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if serveWatch {
		if cfgFileUsed == "" {
			srvLogger.Warn("--watch requested but no config file is in use; watching disabled")
		} else {
			g.Go(func() error {
				return watchConfig(ctx, cfgFileUsed, srv, srvLogger)
			})
		}
	}

	g.Go(func() error {
		defer cancel() // stdin EOF stops the watcher too
		return srv.Serve(ctx, os.Stdin, os.Stdout)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// serveLogLevel maps the configured level to slog.
func serveLogLevel() slog.Level {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// watchDebounce coalesces editor write bursts into one reload.
const watchDebounce = 200 * time.Millisecond

// watchConfig monitors the config file and swaps the server's resource set
// on change. A broken edit keeps the previous set serving.
func watchConfig(ctx context.Context, path string, srv *mcp.Server, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors typically replace the file, which
	// drops a watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	logger.Info("watching config file", "path", path)

	var lastReload time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if time.Since(lastReload) < watchDebounce {
				continue
			}
			lastReload = time.Now()

			if err := reloadResources(path, srv, logger); err != nil {
				logger.Error("config reload failed, keeping previous resource set", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)
		}
	}
}

// reloadResources re-reads the config file and swaps the provider bundle.
func reloadResources(path string, srv *mcp.Server, logger *slog.Logger) error {
	loaded, err := config.NewLoader().WithConfigPath(path).Load()
	if err != nil {
		return err
	}

	if v := config.Validate(loaded); v != nil && v.HasErrors() {
		return v
	}

	providers, err := mcp.NewProviders(loaded, serveFuncs(), logger)
	if err != nil {
		return err
	}

	srv.Reload(providers)
	return nil
}
