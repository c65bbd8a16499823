// Package app assembles the conversion pipeline from configuration.
package app

import (
	"time"

	"github.com/ternarybob/arbor"

	"github.com/moisescabello/cliptoepub/internal/common"
	"github.com/moisescabello/cliptoepub/internal/interfaces"
	"github.com/moisescabello/cliptoepub/internal/services/classifier"
	"github.com/moisescabello/cliptoepub/internal/services/convert"
	"github.com/moisescabello/cliptoepub/internal/services/extract"
	"github.com/moisescabello/cliptoepub/internal/services/history"
	"github.com/moisescabello/cliptoepub/internal/services/images"
	"github.com/moisescabello/cliptoepub/internal/services/llm"
	"github.com/moisescabello/cliptoepub/internal/services/subtitles"
	"github.com/moisescabello/cliptoepub/internal/storage/badger"
)

// App owns the service graph and the storage lifecycle.
type App struct {
	Config    *common.Config
	Logger    arbor.ILogger
	Storage   interfaces.StorageManager
	Converter *convert.Service
	History   interfaces.HistorySink
}

// New wires the full pipeline. The LLM rewriter is only attached when
// a prompt is configured and the selected provider has credentials;
// without it captures convert verbatim.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	if config.Cache.Enabled || config.History.Enabled {
		storage, err := badger.NewManager(logger, &config.Cache)
		if err != nil {
			return nil, err
		}
		a.Storage = storage
	}

	var historySink interfaces.HistorySink
	if config.History.Enabled && a.Storage != nil {
		historySink = history.NewService(a.Storage.HistoryStorage(), logger)
	}
	a.History = historySink

	fetcher := subtitles.NewService(config.Subtitles, logger)
	registry := extract.NewRegistry(30*time.Second, fetcher, logger)

	var rewriter interfaces.RewriteService
	if config.LLM.GetActivePrompt() != nil {
		provider, err := llm.NewProvider(&config.LLM, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("LLM rewrite disabled")
		} else {
			rewriter = llm.NewService(&config.LLM, provider, logger)
		}
	}

	var cache interfaces.CacheStorage
	if config.Cache.Enabled && a.Storage != nil {
		cache = a.Storage.CacheStorage()
	}

	a.Converter = convert.NewService(config, convert.Options{
		Classifier: classifier.NewService(logger),
		Registry:   registry,
		Rewriter:   rewriter,
		Images:     images.NewService(config.Images, logger),
		Cache:      cache,
		History:    historySink,
	}, logger)

	logger.Info().
		Str("provider", string(config.LLM.Provider)).
		Bool("llm", rewriter != nil).
		Msg("Application initialized")

	return a, nil
}

// Close releases the storage backend.
func (a *App) Close() error {
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
