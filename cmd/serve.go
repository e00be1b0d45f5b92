package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-detail-kit/internal/builder"
	"github.com/shouni/go-detail-kit/internal/config"
	"github.com/shouni/go-detail-kit/internal/server"

	"github.com/spf13/cobra"
)

var servePort int

// serveCmd は、編集サーフェス向けのHTTP APIサーバーを起動するのだ。
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "編集用のHTTP APIサーバーを起動するのだ。",
	Long: `生成済みページをブラウザから編集するためのAPIサーバーを起動するのだ。
ページはセッションとしてメモリ上に保持され、並べ替え・再生成・Undo/Redo・
エクスポートのエンドポイントを提供するのだよ。`,
	Example: "  detail-kit serve --port 8080",
	RunE:    serveCommand,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "待ち受けポートなのだ。未指定なら環境変数 PORT に従うのだ。")
}

func serveCommand(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	cfg.Options = opts
	if servePort > 0 {
		cfg.ServerPort = servePort
	}

	appCtx, err := builder.Build(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("アプリケーションの構築に失敗したのだ: %w", err)
	}
	defer appCtx.Close()

	srv := server.New(appCtx.Planner, appCtx.Generator, appCtx.Fetcher, cfg.FontPath)

	slog.Info("編集APIサーバーを起動するのだ！", "port", cfg.ServerPort)
	if err := srv.Run(cfg.ServerPort); err != nil {
		return fmt.Errorf("サーバーの実行に失敗したのだ: %w", err)
	}
	return nil
}
