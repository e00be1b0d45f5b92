package builder

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shouni/go-detail-kit/internal/config"
	"github.com/shouni/go-detail-kit/internal/gemini"
	"github.com/shouni/go-detail-kit/pkg/export"
	"github.com/shouni/go-detail-kit/pkg/generator"
	"github.com/shouni/go-detail-kit/pkg/planner"
	"github.com/shouni/go-detail-kit/pkg/store"
)

// Build は設定からアプリケーション全体の依存グラフを組み立てます。
// 返り値の AppContext は使い終わったら Close すること。
func Build(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	aiClient, err := InitializeAIClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}

	st, cleanup, err := InitializeStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ストレージの初期化に失敗しました: %w", err)
	}

	pln := planner.New(aiClient)
	gen := generator.New(aiClient, st, generator.Config{
		CallTimeout:  cfg.CallTimeout,
		RateInterval: cfg.RateInterval,
	})
	fetcher := export.NewFetcher(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.RelayPrefix)

	return NewAppContext(cfg, pln, gen, st, fetcher, cleanup), nil
}

// InitializeAIClient は Gemini クライアントを初期化します。
func InitializeAIClient(cfg *config.Config) (*gemini.Client, error) {
	textModel := cfg.GeminiTextModel
	if cfg.Options.TextModel != "" {
		textModel = cfg.Options.TextModel
	}
	imageModel := cfg.GeminiImageModel
	if cfg.Options.ImageModel != "" {
		imageModel = cfg.Options.ImageModel
	}

	return gemini.New(gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		TextModel:  textModel,
		ImageModel: imageModel,
		HTTPClient: &http.Client{Timeout: cfg.CallTimeout},
	})
}

// InitializeStore は画像永続化層を初期化します。
// バケット未設定ならローカルディレクトリへのフォールバックになるのだ。
func InitializeStore(ctx context.Context, cfg *config.Config) (*store.Store, func(), error) {
	if cfg.GCSBucket == "" {
		slog.Info("GCSバケット未設定なのでローカル保存を使うのだ", "dir", cfg.OutputDir)
		return store.New(store.NewLocalWriter(cfg.OutputDir)), func() {}, nil
	}

	writer, err := store.NewGCSWriter(ctx, cfg.GCSBucket)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := writer.Close(); err != nil {
			slog.Warn("GCSクライアントのクローズに失敗したのだ", "error", err)
		}
	}
	return store.New(writer), cleanup, nil
}
