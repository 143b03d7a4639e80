package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openclaw/dashd/config"
	"github.com/openclaw/dashd/internal/daemon/channel"
	"github.com/openclaw/dashd/internal/daemon/collector"
	"github.com/openclaw/dashd/internal/daemon/discovery"
	"github.com/openclaw/dashd/internal/daemon/engine"
	"github.com/openclaw/dashd/internal/daemon/notify"
	"github.com/openclaw/dashd/internal/daemon/pidfile"
	"github.com/openclaw/dashd/internal/daemon/scheduler"
	"github.com/openclaw/dashd/internal/daemon/server"
	"github.com/openclaw/dashd/internal/daemon/store"
	"github.com/openclaw/dashd/logging"
	"github.com/openclaw/dashd/pkg/models"
	"github.com/spf13/cobra"
)

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the daemon",
		Long:  "Start the dashd daemon in foreground mode.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDefault(configPath)
			if err != nil {
				return err
			}
			logging.Configure(cfg.Log.Level, cfg.Log.File)
			logger := logging.NewLogger("dashd")

			pidPath := config.PidFilePath()
			if err := pidfile.Acquire(pidPath); err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			defer func() {
				if err := pidfile.Release(pidPath); err != nil {
					logger.Errorf("Failed to release pidfile: %v", err)
				}
			}()

			// Discovery pipeline: scanner + classifier + builder behind one
			// scan function.
			scanner, err := discovery.NewScanner(cfg, logging.NewLogger("scanner"))
			if err != nil {
				return err
			}
			classifier := discovery.NewClassifier(cfg, logging.NewLogger("classify"))
			builder := discovery.NewBuilder(classifier, logging.NewLogger("builder"))
			scanFn := func(ctx context.Context) (*models.WorkspaceSnapshot, error) {
				observations, err := scanner.Scan(ctx)
				if err != nil {
					return nil, err
				}
				return builder.Build(scanner.Root(), observations), nil
			}

			st := store.New()
			manager := channel.NewManager(cfg.Channels, logging.NewLogger("channels"))
			notifier := notify.New(manager, logging.NewLogger("notify"))
			sched := scheduler.New(cfg.Discovery.Interval(), scanFn, st, notifier, logging.NewLogger("scheduler"))

			eng := engine.New(manager, logging.NewLogger("engine"))
			eng.Register(collector.NewJobsCollector(cfg.WorkspaceRoot,
				time.Duration(cfg.Collectors.JobsIntervalSeconds)*time.Second,
				logging.NewLogger("jobs")))
			eng.Register(collector.NewSessionsCollector(cfg.WorkspaceRoot,
				time.Duration(cfg.Collectors.SessionsIntervalSeconds)*time.Second,
				logging.NewLogger("sessions")))

			srv := server.New(cfg, logging.NewLogger("server"), st, manager, eng, sched)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-stop
				logger.Info("Received stop signal")
				cancel()

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Errorf("Server shutdown error: %v", err)
				}
				manager.Close()

				_ = pidfile.Release(pidPath)
				os.Exit(0)
			}()

			go sched.Run(ctx)
			go eng.Start(ctx)
			go manager.RunHeartbeat(ctx)

			// The watcher is best-effort: without it the timer still covers
			// everything.
			if watcher, err := scheduler.NewWatcher(cfg.WorkspaceRoot, 0, sched.Refresh, logging.NewLogger("watcher")); err != nil {
				logger.WithError(err).Warn("Workspace watcher unavailable, relying on timer only")
			} else {
				go watcher.Run(ctx)
			}

			logger.WithField("pid", os.Getpid()).Info("Starting daemon")
			if err := srv.ListenAndServe(); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			pidPath := config.PidFilePath()

			running, pid, err := pidfile.IsRunning(pidPath)
			if err != nil {
				return fmt.Errorf("error checking status: %w", err)
			}
			if !running {
				fmt.Println("Daemon is not running")
				return nil
			}

			proc, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("failed to find process %d: %w", pid, err)
			}
			if err := proc.Signal(syscall.SIGTERM); err != nil {
				return fmt.Errorf("failed to send stop signal: %w", err)
			}

			fmt.Printf("Sent SIGTERM to process %d\n", pid)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			pidPath := config.PidFilePath()
			running, pid, err := pidfile.IsRunning(pidPath)
			if err != nil {
				return fmt.Errorf("error: %w", err)
			}

			if running {
				fmt.Printf("Running (PID: %d)\n", pid)
			} else {
				fmt.Println("Stopped")
				os.Exit(1)
			}
			return nil
		},
	}
}
