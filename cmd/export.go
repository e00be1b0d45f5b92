package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-detail-kit/internal/config"
	"github.com/shouni/go-detail-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// exportCmd は、保存済みページJSONから最終成果物を書き出すのだ！
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "ページJSONから最終成果物を書き出すのだ！",
	Long: `generate で出力されたページJSONを読み込み、マーケットプレイス登録に使う
成果物（1枚もののJPEG、画像ZIP、貼り付け用HTML）を書き出すのだ。`,
	Example: "  detail-kit export -f output/page.json --format raster --export-dir output/export",
	RunE:    exportCommand,
}

func init() {
	exportCmd.Flags().StringVar(&opts.Format, "format", "all", "書き出す形式（raster / bundle / markup / all）なのだ。")
	exportCmd.Flags().StringVar(&opts.ExportDir, "export-dir", "", "成果物の保存先ディレクトリなのだ。")
}

func exportCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if opts.InputFile == "" {
		return fmt.Errorf("読み込むページJSON（--input）を指定してほしいのだ")
	}
	switch opts.Format {
	case "raster", "bundle", "markup", "all":
	default:
		return fmt.Errorf("不正な形式なのだ: %q（raster / bundle / markup / all から選ぶのだ）", opts.Format)
	}

	cfg := config.Load()
	cfg.Options = opts

	slog.Info("エクスポートを開始するのだ！", "input", opts.InputFile, "format", opts.Format)

	if err := pipeline.ExecuteExport(ctx, cfg); err != nil {
		return fmt.Errorf("エクスポート中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての成果物が揃ったのだ！")
	return nil
}
