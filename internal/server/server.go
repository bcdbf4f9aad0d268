// Package server wires every concrete dependency (storage, cache,
// providers, the job worker, the sync pipelines and the HTTP router) into
// one running process, mirroring the way the teacher's golem app assembles
// its own dependency graph in internal/golem/app.go.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Scott-fo/t3-clone/internal/cache"
	"github.com/Scott-fo/t3-clone/internal/config"
	"github.com/Scott-fo/t3-clone/internal/crypto"
	"github.com/Scott-fo/t3-clone/internal/httpapi"
	"github.com/Scott-fo/t3-clone/internal/jobs"
	"github.com/Scott-fo/t3-clone/internal/providers"
	"github.com/Scott-fo/t3-clone/internal/providers/anthropic"
	"github.com/Scott-fo/t3-clone/internal/providers/gemini"
	"github.com/Scott-fo/t3-clone/internal/providers/openai"
	"github.com/Scott-fo/t3-clone/internal/providers/openrouter"
	"github.com/Scott-fo/t3-clone/internal/sse"
	"github.com/Scott-fo/t3-clone/internal/store/postgres"
	"github.com/Scott-fo/t3-clone/internal/sync"
	"github.com/Scott-fo/t3-clone/pkg/app"
	"github.com/Scott-fo/t3-clone/pkg/errorx"
	"github.com/Scott-fo/t3-clone/pkg/logger"
)

var (
	openaiModels     = []string{"gpt-4.1", "gpt-4.1-mini", "o4-mini"}
	anthropicModels  = []string{"claude-opus-4", "claude-sonnet-4"}
	geminiModels     = []string{"gemini-2.5-pro", "gemini-2.5-flash"}
	openrouterModels = []string{"deepseek/deepseek-r1", "meta-llama/llama-3.3-70b-instruct"}
)

// NewApp builds the cobra-driven application that owns the whole server
// lifecycle, the way cmd/golem/golem.go hands its assembled App to Run().
func NewApp(basename string) *app.App {
	opts := config.NewOptions()
	return app.NewApp(
		"t3-clone-server",
		basename,
		app.WithOptions(opts),
		app.WithDescription("multi-provider AI chat sync backend"),
		app.WithRunFunc(run(opts)),
	)
}

func run(opts *config.Options) app.RunFunc {
	return func(basename string) error {
		if err := logger.Init("info", true); err != nil {
			return errorx.Wrap(errorx.Fatal, err, "init logger")
		}

		ctx := context.Background()

		pg, err := postgres.Open(ctx, opts.PostgresDSN)
		if err != nil {
			return errorx.Wrap(errorx.Fatal, err, "connect to postgres")
		}
		defer pg.Close()

		cvrCache := cache.NewRedis(opts.RedisAddr)
		keyRing, err := crypto.NewKeyRing(opts.MasterKey)
		if err != nil {
			return errorx.Wrap(errorx.Fatal, err, "build key ring")
		}

		hub := sse.NewHub()

		httpClient := &http.Client{Timeout: 2 * time.Minute}
		registry := providers.NewRegistry(
			openai.New(opts.OpenAIBaseURL, httpClient, openaiModels),
			anthropic.New(opts.AnthropicBaseURL, httpClient, anthropicModels),
			gemini.New(opts.GeminiBaseURL, httpClient, geminiModels),
			openrouter.New(opts.OpenRouterBaseURL, httpClient, openrouterModels),
		)

		worker := jobs.NewWorker(pg, cvrCache, hub, registry, keyRing)
		workerCtx, cancelWorker := context.WithCancel(ctx)
		defer cancelWorker()
		go worker.Run(workerCtx)

		entities := sync.NewDefaultRegistry()
		puller := sync.NewPuller(pg, cvrCache, entities)
		pusher := sync.NewPusher(pg, hub, worker)

		router := httpapi.NewRouter(httpapi.Deps{
			Store:   pg,
			Hub:     hub,
			Puller:  puller,
			Pusher:  pusher,
			KeyRing: keyRing,
		})

		logger.Info("listening on %s", opts.HTTPAddr)
		if err := router.Run(opts.HTTPAddr); err != nil {
			return errorx.Wrap(errorx.Fatal, err, "serve http")
		}
		return nil
	}
}
