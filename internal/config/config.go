// Package config はアプリケーション全体の環境設定を一箇所に集めます。
// 環境変数（および任意の .env ファイル）だけを読み、CLIフラグは cmd 側で上書きします。
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// デフォルト値の定義なのだ
const (
	DefaultTextModel    = "gemini-3-flash-preview"
	DefaultImageModel   = "gemini-3-pro-image-preview"
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultCallTimeout  = 90 * time.Second
	DefaultRateInterval = 10 * time.Second
	DefaultOutputDir    = "output"
	DefaultServerPort   = 8080
)

// Config はアプリケーション全体の環境設定（APIキーやストレージ設定）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey     string
	GeminiTextModel  string
	GeminiImageModel string

	GCSBucket   string // 空ならローカル保存にフォールバックする
	OutputDir   string
	FontPath    string // テキスト合成に使う韓国語フォント。空なら画像のみの合成になる
	RelayPrefix string // 直接取得できない画像の中継プレフィックス

	ServerPort   int
	HTTPTimeout  time.Duration
	CallTimeout  time.Duration
	RateInterval time.Duration

	Options GenerateOptions
}

// Load は .env（存在すれば）と環境変数から設定を読み込み、構造体を返すのだ！
// APIキーの有無はここでは検証しない。実際に必要になるコマンドが検証する。
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Debug(".envの読み込みをスキップしたのだ", "error", err)
	}

	return &Config{
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiTextModel:  getEnv("GEMINI_MODEL", DefaultTextModel),
		GeminiImageModel: getEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),
		GCSBucket:        getEnv("GCS_BUCKET", ""),
		OutputDir:        getEnv("OUTPUT_DIR", DefaultOutputDir),
		FontPath:         getEnv("FONT_PATH", ""),
		RelayPrefix:      getEnv("IMAGE_RELAY_PREFIX", ""),
		ServerPort:       getEnvInt("PORT", DefaultServerPort),
		HTTPTimeout:      getEnvDuration("HTTP_TIMEOUT", DefaultHTTPTimeout),
		CallTimeout:      getEnvDuration("GENERATION_TIMEOUT", DefaultCallTimeout),
		RateInterval:     getEnvDuration("GENERATION_RATE_INTERVAL", DefaultRateInterval),
	}
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// ソース入力関連
	InputFile  string // --input: 商品入力JSONのパス
	OutputFile string // --output-file: ページJSONの保存先

	// 生成挙動設定
	PageLength    string // --length: 5 / 7 / 9 / auto
	WithThumbnail bool   // --thumbnail
	TextModel     string // --model
	ImageModel    string // --image-model

	// エクスポート関連
	ExportDir string // --export-dir
	Format    string // --format: raster / bundle / markup / all

	// 実行制御
	HTTPTimeout time.Duration // --http-timeout
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("環境変数の数値変換に失敗したので既定値を使うのだ", "key", key, "value", v)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("環境変数の時間変換に失敗したので既定値を使うのだ", "key", key, "value", v)
		return fallback
	}
	return d
}
