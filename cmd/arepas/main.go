package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/J-Olejnik/arepas/internal/api"
	"github.com/J-Olejnik/arepas/internal/config"
	"github.com/J-Olejnik/arepas/internal/push"
	"github.com/J-Olejnik/arepas/internal/tui"
)

func main() {
	var (
		serverURL   string
		cfgPath     string
		downloadDir string
	)

	root := &cobra.Command{
		Use:   "arepas",
		Short: "Review console for image classification",
		Long: `AREPAS - a terminal review console for image classification.

Submits scan images to an inference backend, shows predictions with
their saliency overlays, and manages the review database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if serverURL != "" {
				cfg.Server.URL = serverURL
			}

			logger := newLogger(cfg.Log.File)
			slog.SetDefault(logger)

			client := api.NewClient(cfg.Server.URL).WithLogger(logger)

			// The notification channel is preferred; without it the
			// console still starts and learns the model state from
			// one status fetch.
			var events <-chan api.Notification
			sub, err := push.NewSubscriber(cfg.Server.URL)
			if err == nil {
				if err := sub.Connect(); err != nil {
					logger.Warn("notification channel unavailable", "error", err)
				} else {
					events = sub.Events()
					defer sub.Close()
				}
			}

			model := tui.NewModel(tui.Options{
				Backend:        client,
				Events:         events,
				TypingInterval: cfg.UI.TypingInterval(),
				ToastTimeout:   cfg.UI.ToastTimeout(),
				DownloadDir:    downloadDir,
				Log:            logger,
			})
			program := tea.NewProgram(model, tea.WithAltScreen())
			_, err = program.Run()
			return err
		},
	}

	root.Flags().StringVar(&serverURL, "server", "", "backend base URL (overrides config)")
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file")
	root.Flags().StringVar(&downloadDir, "download-dir", ".", "directory for saliency downloads")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger logs to the configured file, or discards everything so
// log lines never corrupt the terminal display.
func newLogger(path string) *slog.Logger {
	if path == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
