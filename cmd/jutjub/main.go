package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/khoahotran/jutjub/adapters/api"
	"github.com/khoahotran/jutjub/adapters/cache"
	"github.com/khoahotran/jutjub/adapters/event"
	"github.com/khoahotran/jutjub/internal/application/service"
	"github.com/khoahotran/jutjub/internal/config"
	"github.com/khoahotran/jutjub/internal/domain/session"
	"github.com/khoahotran/jutjub/pkg/apperror"
	"github.com/khoahotran/jutjub/pkg/auth"
	"github.com/khoahotran/jutjub/pkg/logger"
	"github.com/khoahotran/jutjub/pkg/tracing"
)

// app carries the dependencies every command shares. It is built once in
// the root command's pre-run hook.
type app struct {
	cfg       config.Config
	logger    logger.Logger
	sessions  session.Store
	client    *api.Client
	decoder   *auth.TokenDecoder
	cache     service.ThumbnailCache
	publisher service.EventPublisher
	tp        *sdktrace.TracerProvider
	closers   []func()

	jsonOut bool
	out     io.Writer
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = tracing.Shutdown(ctx, a.tp)
	_ = a.logger.Sync()
}

// print writes v as indented JSON with --json, otherwise it calls text.
func (a *app) print(v any, text func(w io.Writer)) error {
	if a.jsonOut {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(a.out)
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var (
		configDir string
		baseURL   string
		verbose   bool
	)

	root := &cobra.Command{
		Use:           "jutjub",
		Short:         "Browse, upload and interact with jutjub videos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configDir)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if baseURL != "" {
				cfg.API.BaseURL = baseURL
			}
			a.cfg = cfg
			a.out = cmd.OutOrStdout()

			env := "cli"
			if verbose {
				env = "development"
			}
			a.logger = logger.NewZapLogger(env)

			a.tp, err = tracing.NewTracerProvider(cfg, a.logger, "jutjub-cli", cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			path := cfg.Session.Path
			if path == "" {
				path = session.DefaultPath()
			}
			a.sessions = session.NewFileStore(path)
			a.decoder = auth.NewTokenDecoder()

			a.client, err = api.New(api.Options{
				BaseURL:  cfg.API.BaseURL,
				Timeout:  cfg.API.Timeout,
				Sessions: a.sessions,
				Logger:   a.logger,
			})
			if err != nil {
				return err
			}

			var closeCache, closePublisher func()
			a.cache, closeCache = cache.NewThumbnailCache(cfg, a.logger)
			a.publisher, closePublisher = event.NewPublisher(cfg, a.logger)
			a.closers = append(a.closers, closeCache, closePublisher)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}

	root.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory holding config.yaml")
	root.PersistentFlags().StringVar(&baseURL, "api", "", "video API base URL (overrides API_BASE_URL)")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print results as JSON")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests")

	root.AddCommand(
		newFeedCmd(a),
		newUploadCmd(a),
		newLikeCmd(a),
		newCommentsCmd(a),
		newDeleteCmd(a),
		newAuthCmd(a),
		newPreviewCmd(a),
		newLoadtestCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", apperror.UserMessage(err))
		os.Exit(1)
	}
}
