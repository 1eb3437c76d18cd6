// Package app wires configuration, the persistence stores, the Gemini
// clients and the HTTP layer into one runnable server.
package app

import (
	"context"
	"log"

	"librarylaunchpad/internal/campaign"
	"librarylaunchpad/internal/config"
	"librarylaunchpad/internal/gateway/handler"
	"librarylaunchpad/internal/gateway/server"
	"librarylaunchpad/internal/imagestore"
	"librarylaunchpad/internal/llmclient"
	"librarylaunchpad/internal/store"
)

type App struct {
	srv *server.Server
	llm llmclient.LLMClient
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	llm, err := llmclient.NewGeminiClient(ctx, cfg.LLM.APIKey, cfg.LLM.TextModel)
	if err != nil {
		return nil, err
	}
	img, err := llmclient.NewGeminiImageClient(ctx, cfg.LLM.APIKey, cfg.LLM.ImageModel)
	if err != nil {
		return nil, err
	}

	st := store.NewFromEnv(cfg.Store.PostgresDSN, cfg.Store.FilePath)

	var images *imagestore.Store
	if cfg.Image.Enabled {
		images, err = imagestore.New(imagestore.Config{
			Endpoint:  cfg.Image.Endpoint,
			Region:    cfg.Image.Region,
			AccessKey: cfg.Image.AccessKey,
			SecretKey: cfg.Image.SecretKey,
			Bucket:    cfg.Image.Bucket,
			UseSSL:    cfg.Image.UseSSL,
		})
		if err != nil {
			log.Printf("image store disabled: %v", err)
			images = nil
		}
	}

	svc := campaign.NewService(llm, img, st, images)
	h := handler.New(svc, st)
	mux := server.NewMux(h)

	return &App{
		srv: server.New(cfg.Port, mux),
		llm: llm,
	}, nil
}

func (a *App) Start() error {
	return a.srv.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.srv.Shutdown(ctx)
	if a.llm != nil {
		_ = a.llm.Close()
	}
	return err
}
