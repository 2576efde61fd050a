package cmd

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"db-sync/internal/filename"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the storage directory and report dump changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, cleanup, err := openEngine(ctx, false)
		if err != nil {
			return err
		}
		defer cleanup()

		interval := viper.GetDuration("watch.interval")
		if interval <= 0 {
			interval = 5 * time.Second
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		defer watcher.Close()
		if err := watcher.Add(e.Dir.Path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", e.Dir.Path, err)
		}

		out := cmd.OutOrStdout()
		poll := func() {
			res, err := e.Check(ctx)
			if err != nil {
				Logger.Error("check failed", "err", err)
				return
			}
			if res.Changed {
				fmt.Fprintf(out, "[%s]\n", time.Now().Format(time.TimeOnly))
				printChanges(out, res)
			}
		}

		Logger.Info("watching", "dir", e.Dir.Path, "interval", interval)
		poll()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				poll()
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				// state database writes land in the same directory
				if ev.Has(fsnotify.Chmod) || !filename.IsDump(filepath.Base(ev.Name)) {
					continue
				}
				Logger.Debug("fs event", "event", ev.String())
				poll()
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				Logger.Warn("watcher error", "err", err)
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Duration("interval", 0, "poll interval (default from watch.interval)")
	viper.BindPFlag("watch.interval", watchCmd.Flags().Lookup("interval"))
}
