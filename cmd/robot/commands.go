package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ricirt/report-robot/internal/api"
	"github.com/ricirt/report-robot/internal/api/handler"
	"github.com/ricirt/report-robot/internal/config"
	"github.com/ricirt/report-robot/internal/domain"
	"github.com/ricirt/report-robot/internal/worker"
)

// loader is swapped in tests.
var loader = config.Load

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "robot",
		Short:         "Distributes report tabs to salespeople and notifies them on Telegram",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		runCmd(),
		queueCmd(),
		serveCmd(),
		configCmd(),
		botCmd(),
	)
	return root
}

// withApp loads config, bootstraps the pipeline and closes it after fn.
func withApp(ctx context.Context, fn func(context.Context, *app) error) error {
	cfg, err := loader()
	if err != nil {
		return err
	}
	a, err := bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}

func runCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process every input file now in a single pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(cmd, "Distribute every file in the input folder now? [y/N] ") {
				fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
				return nil
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				sum, err := a.runner.RunNow(ctx)
				if err != nil {
					a.logger.Error("manual run failed", zap.Error(err))
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "files: %d  succeeded: %d  failed: %d\n", sum.Files, sum.Succeeded, sum.Failed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes" || answer == "s" || answer == "si"
}

func queueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Control the resumable job queue",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Build the queue from the input folder and activate the trigger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				n, err := a.runner.Start(ctx)
				if err != nil {
					return err
				}
				if n == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no input files, nothing queued")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "queued %d files\n", n)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "pause",
		Short: "Deactivate the trigger, keeping the saved progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				if err := a.runner.Pause(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "queue paused")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Deactivate the trigger and clear the saved queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				if err := a.runner.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "queue reset")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the saved queue and trigger state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				st, err := a.runner.Status(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				counts := st.State.Counts()
				fmt.Fprintf(out, "trigger active: %v\n", st.TriggerActive)
				fmt.Fprintf(out, "progress: %d/%d\n", st.State.Cursor, len(st.State.Jobs))
				fmt.Fprintf(out, "pending: %d  processing: %d  done: %d  error: %d\n",
					counts[domain.JobPending], counts[domain.JobProcessing], counts[domain.JobDone], counts[domain.JobError])
				for i, j := range st.State.Jobs {
					fmt.Fprintf(out, "%3d  %-10s  %s\n", i+1, j.Status, j.Name)
				}
				return nil
			})
		},
	})

	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the tracking endpoint and drive the queue while its trigger is active",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return withApp(ctx, serve)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	cfg, logger := a.cfg, a.logger

	// ---- background loops ----
	// Workers get their own context so shutdown can stop HTTP first.
	workerCtx, cancelWorkers := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelWorkers()

	pool := worker.NewPool(worker.NewQueueDriver(a.runner, a.trigger, cfg.Queue.TriggerInterval, logger))
	pool.Start(workerCtx)

	// ---- HTTP server ----
	tracking := handler.NewTrackingHandler(a.tracker, cfg.Tracker.RedirectDelay, logger)
	router := api.NewRouter(api.Handlers{
		Tracking: tracking,
		Queue:    handler.NewQueueHandler(a.runner, logger),
		Health: handler.NewHealthHandler(map[string]handler.Check{
			"postgres": a.pool.Ping,
			"redis":    a.redis.Ping,
		}),
	}, a.reg, logger)
	tracking.SetHooks(a.metrics.TrackingHook())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// ---- graceful shutdown ----
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		runErr = fmt.Errorf("http server: %w", err)
	}

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Stop the queue driver and let an in-flight step save its checkpoint.
	cancelWorkers()
	pool.Wait()

	logger.Info("server stopped cleanly")
	return runErr
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Report missing or malformed settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loader()
			if err != nil {
				return err
			}
			res := cfg.Validate()
			if res.OK() {
				fmt.Fprintln(cmd.OutOrStdout(), "configuration OK")
				return nil
			}
			for _, p := range res.Problems {
				fmt.Fprintln(cmd.OutOrStdout(), "- "+p)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <path>",
		Short: "Print one value by dotted path, e.g. telegram.api_base_url",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loader()
			if err != nil {
				return err
			}
			v, ok := cfg.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown config key: %s", args[0])
			}
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	})

	return cmd
}

func botCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Telegram bot utilities",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Check the bot token against the Bot API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loader()
			if err != nil {
				return err
			}
			logger, _, err := newLogger(cfg.Logs)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			username, err := newTelegram(cfg, nil, logger).Ping(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bot @%s is reachable\n", username)
			return nil
		},
	})
	return cmd
}
