package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rubiojr/searchfields/pkg/api"
	"github.com/rubiojr/searchfields/pkg/log"
	"github.com/rubiojr/searchfields/pkg/storage"
	"github.com/urfave/cli/v3"
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the search API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Address to listen on (overrides the config file)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, c.String("config"), c.String("listen"))
		},
	}
}

// serve runs the API until interrupted, reloading filters when the config
// file changes or on SIGHUP.
func serve(ctx context.Context, configPath, listen string) error {
	logger := log.ForComponent("serve")

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if listen == "" {
		listen = cfg.Listen
	}

	catalog, err := cfg.BuildCatalog()
	if err != nil {
		return fmt.Errorf("building filters: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warnf("failed to close storage: %v", err)
		}
	}()

	server := api.NewServer(catalog, store, cfg.SearchParam)
	httpServer := &http.Server{
		Addr:              listen,
		Handler:           server.Handler(),
		ReadTimeout:       cfg.ReadTimeout.Duration,
		ReadHeaderTimeout: cfg.ReadTimeout.Duration,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on http://%s (%d filters)", listen, len(catalog.Names()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	reload := func() {
		if err := reloadCatalog(ctx, configPath, server, store); err != nil {
			logger.Errorf("failed to reload configuration: %v", err)
			return
		}
		logger.Infof("configuration reloaded")
	}

	var events chan fsnotify.Event
	var watchErrors chan error
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warnf("failed to create config file watcher: %v", err)
	} else {
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Warnf("failed to close config file watcher: %v", err)
			}
		}()

		if err := watcher.Add(configPath); err != nil {
			logger.Warnf("failed to watch config file %s: %v", configPath, err)
		} else {
			logger.Infof("watching config file for changes: %s", configPath)
		}
		events = watcher.Events
		watchErrors = watcher.Errors
	}

	for {
		select {
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("serving: %w", err)
			}
			return nil
		case <-ctx.Done():
			return shutdown(httpServer)
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				logger.Infof("received SIGHUP, reloading configuration")
				reload()
			case syscall.SIGINT, syscall.SIGTERM:
				fmt.Println("\nShutting down...")
				return shutdown(httpServer)
			}
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			// Editors often replace the file instead of writing it
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			logger.Infof("config file changed: %s (event: %s)", event.Name, event.Op.String())

			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				time.Sleep(200 * time.Millisecond)
				if _, err := os.Stat(configPath); os.IsNotExist(err) {
					logger.Warnf("config file was removed and not replaced, skipping reload")
					continue
				}
				if err := watcher.Add(configPath); err != nil {
					logger.Warnf("failed to re-add config file to watcher: %v", err)
				}
			} else {
				time.Sleep(100 * time.Millisecond)
			}
			reload()
		case err, ok := <-watchErrors:
			if !ok {
				watchErrors = nil
				continue
			}
			logger.Warnf("config file watcher error: %v", err)
		}
	}
}

// reloadCatalog rebuilds the filters from the config file and swaps them
// into the running server. Table definitions are updated and missing tables
// or columns created; the database path is left as it is.
func reloadCatalog(ctx context.Context, configPath string, server *api.Server, store *storage.Store) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	catalog, err := cfg.BuildCatalog()
	if err != nil {
		return fmt.Errorf("building filters: %w", err)
	}
	for _, table := range cfg.Tables {
		if err := store.UpdateTable(ctx, table); err != nil {
			return fmt.Errorf("updating table %s: %w", table.Name, err)
		}
	}
	server.SetCatalog(catalog)
	return nil
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
