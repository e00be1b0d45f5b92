package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-detail-kit/internal/config"
	"github.com/shouni/go-detail-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// generateCmd は、AIによるセクション設計と画像生成を実行するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "商品情報から詳細ページを生成しますなのだ。",
	Long: `商品入力JSONを解析し、訴求ロジックに沿ったセクション構成と
各セクションの画像を生成するのだ。出力はページJSONになるのだよ。`,
	Example: "  detail-kit generate -f examples/product.json -o output/page.json --thumbnail",
	RunE:    generateCommand,
}

func init() {
	generateCmd.Flags().StringVarP(&opts.PageLength, "length", "l", "", "セクション数（5 / 7 / 9 / auto）なのだ。未指定なら入力JSONに従うのだ。")
	generateCmd.Flags().BoolVar(&opts.WithThumbnail, "thumbnail", false, "1:1のサムネイルも一緒に生成するのだ。")
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. 必須チェック
	if opts.InputFile == "" {
		return fmt.Errorf("商品入力JSON（--input）を指定してほしいのだ")
	}

	// 2. 環境変数等から基本設定をロードするのだ
	cfg := config.Load()
	cfg.Options = opts

	slog.Info("詳細ページ生成パイプラインを起動するのだ！",
		"input", opts.InputFile,
		"text_model", cfg.GeminiTextModel,
		"image_model", cfg.GeminiImageModel,
		"thumbnail", opts.WithThumbnail)

	// 3. 更新した config を考慮しつつパイプラインを実行するのだ
	if err := pipeline.ExecuteGenerate(ctx, cfg); err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！")
	return nil
}
