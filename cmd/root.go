package cmd

import (
	"fmt"
	"os"

	"github.com/shouni/go-detail-kit/internal/config"

	"github.com/spf13/cobra"
)

// opts は、各サブコマンドが共有する実行時パラメータなのだ。
var opts config.GenerateOptions

// rootCmd はアプリケーションのルートコマンドなのだ。
var rootCmd = &cobra.Command{
	Use:   "detail-kit",
	Short: "AIで韓国ECの商品詳細ページを生成するツールなのだ。",
	Long: `商品情報と参照画像から、訴求ロジックに沿ったセクション構成を設計し、
セクションごとの画像を生成して1枚の詳細ページに組み上げるのだ。`,
	SilenceUsage:      true,
	PersistentPreRunE: preRunAppE,
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- ソース入力・出力関連 ---
	rootCmd.PersistentFlags().StringVarP(&opts.InputFile, "input", "f", "", "入力JSONのパス（商品入力 or ページJSON）なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.OutputFile, "output-file", "o", "", "ページJSONの保存パスなのだ。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.TextModel, "model", config.DefaultTextModel, "プランニングに使う Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", config.DefaultImageModel, "画像生成に使う Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "Webリクエストのタイムアウトなのだ。")
}

// preRunAppE は、コマンド実行前に環境変数などの必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	// Gemini APIを利用するため、APIキーの存在チェックは欠かせないのだ！
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}
	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(generateCmd, exportCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
