package appmode

import (
	"context"
	"errors"
	"net/http"

	"github.com/UnendingLoop/TextSplitter/internal/config"
	"github.com/UnendingLoop/TextSplitter/internal/metrics"
	"github.com/UnendingLoop/TextSplitter/internal/processor"
	"github.com/UnendingLoop/TextSplitter/internal/settings"
	"github.com/UnendingLoop/TextSplitter/internal/transport"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// RunServer serves until ctx is done, then drains connections and saves the settings
func RunServer(ctx context.Context, stop context.CancelFunc, cfg *config.Config, log *zap.Logger) error {
	store := settings.Open(cfg.SettingsPath, log)
	proc := processor.New(cfg.MatcherOptions(), metrics.NewRecorder(nil), log)
	srv := transport.NewServer(cfg.Address, proc, store, log)

	var result error
	serveErr := make(chan error, 1)
	go func() {
		log.Info("node is serving", zap.String("address", srv.Addr))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
			serveErr <- err
			stop()
		}
		close(serveErr)
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown node correctly", zap.String("address", cfg.Address), zap.Error(err))
		result = multierror.Append(result, err)
	} else {
		log.Info("node server is closed", zap.String("address", cfg.Address))
	}

	if err := <-serveErr; err != nil {
		result = multierror.Append(result, err)
	}

	if err := store.Save(); err != nil {
		log.Error("failed to save settings", zap.String("path", store.Path()), zap.Error(err))
		result = multierror.Append(result, err)
	}

	return result
}
