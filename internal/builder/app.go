package builder

import (
	"github.com/shouni/go-detail-kit/internal/config"
	"github.com/shouni/go-detail-kit/pkg/export"
	"github.com/shouni/go-detail-kit/pkg/generator"
	"github.com/shouni/go-detail-kit/pkg/planner"
	"github.com/shouni/go-detail-kit/pkg/store"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各実行関数に渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config  *config.Config         // Configは、環境変数から読み込まれたグローバルな設定です（APIキー、バケット名など）。
	Options config.GenerateOptions // Optionsは、コマンドラインから渡された実行時の設定です（入力パス、長さ、モデル名など）。

	Planner   *planner.Planner         // Plannerは、商品情報からセクション構成を設計するプランナーです。
	Generator *generator.PageGenerator // Generatorは、セクション画像を並列生成するオーケストレーターです。
	Store     *store.Store             // Storeは、生成画像を耐久ストレージへ移す永続化層です。
	Fetcher   export.ImageFetcher      // Fetcherは、エクスポート時に画像参照をバイナリへ解決します。

	cleanup func() // ストレージクライアントなどの後始末
}

// NewAppContext は AppContext の新しいインスタンスを生成する
func NewAppContext(
	cfg *config.Config,
	pln *planner.Planner,
	gen *generator.PageGenerator,
	st *store.Store,
	fetcher export.ImageFetcher,
	cleanup func(),
) *AppContext {
	return &AppContext{
		Config:    cfg,
		Options:   cfg.Options,
		Planner:   pln,
		Generator: gen,
		Store:     st,
		Fetcher:   fetcher,
		cleanup:   cleanup,
	}
}

// Close は保持しているクライアント類を解放します。複数回呼んでも安全です。
func (a *AppContext) Close() {
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
}
