// Package pipeline は、CLIコマンドから呼ばれる実行フローの束ね役です。
// 生成（プラン→画像→永続化→保存）とエクスポートの2つのフェーズを提供します。
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shouni/go-detail-kit/internal/builder"
	"github.com/shouni/go-detail-kit/internal/config"
	"github.com/shouni/go-detail-kit/pkg/domain"
	"github.com/shouni/go-detail-kit/pkg/export"
	"github.com/shouni/go-detail-kit/pkg/generator"
)

// ExecuteGenerate は、商品入力JSONを読み込み、
// プランニングと画像生成（Phase 1 & 2)を実行してページJSONを保存するのだ。
func ExecuteGenerate(ctx context.Context, cfg *config.Config) error {
	appCtx, err := builder.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	input, err := loadProductInput(cfg.Options.InputFile)
	if err != nil {
		return err
	}
	applyOptions(input, cfg.Options)

	// --- Phase 1: Plan Phase (セクション設計) ---
	slog.Info("Phase 1: セクション設計を開始するのだ...", "product", input.Name, "length", input.PageLength)
	sections, err := appCtx.Planner.Plan(ctx, *input)
	if err != nil {
		return fmt.Errorf("セクション設計に失敗したのだ: %w", err)
	}

	// --- Phase 2: Image Phase (画像生成と永続化) ---
	slog.Info("Phase 2: 画像生成を開始するのだ...", "sections", len(sections))
	page, err := appCtx.Generator.GeneratePage(ctx, *input, sections, func(stage generator.Stage) {
		slog.Info("進捗が更新されたのだ", "stage", stage)
	})
	if err != nil {
		return fmt.Errorf("画像生成に失敗したのだ: %w", err)
	}

	outputPath := cfg.Options.OutputFile
	if outputPath == "" {
		outputPath = filepath.Join(cfg.OutputDir, "page.json")
	}
	if err := savePage(outputPath, page); err != nil {
		return err
	}

	slog.Info("詳細ページの生成が完了したのだ！", "path", outputPath, "sections", len(page.Sections))
	return nil
}

// ExecuteExport は、保存済みのページJSONを基に、
// 指定された形式の最終成果物を書き出す最終ステージなのだ！
func ExecuteExport(ctx context.Context, cfg *config.Config) error {
	appCtx, err := builder.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	page, err := loadPage(cfg.Options.InputFile)
	if err != nil {
		return err
	}

	exportDir := cfg.Options.ExportDir
	if exportDir == "" {
		exportDir = filepath.Join(cfg.OutputDir, "export")
	}
	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return fmt.Errorf("エクスポート先の作成に失敗しました: %w", err)
	}

	format := cfg.Options.Format
	if format == "" {
		format = "all"
	}

	if format == "raster" || format == "all" {
		composer := export.NewRasterComposer(appCtx.Fetcher, cfg.FontPath)
		data, err := composer.ComposeJPEG(ctx, page, export.RasterOptions{})
		if err != nil {
			return fmt.Errorf("ラスタエクスポートに失敗したのだ: %w", err)
		}
		if err := writeArtifact(exportDir, "detail_page.jpg", data); err != nil {
			return err
		}
	}

	if format == "bundle" || format == "all" {
		bundle := export.NewBundleExporter(appCtx.Fetcher)
		data, err := bundle.Export(ctx, page)
		if err != nil {
			return fmt.Errorf("バンドルエクスポートに失敗したのだ: %w", err)
		}
		if err := writeArtifact(exportDir, "detail_page_images.zip", data); err != nil {
			return err
		}
	}

	if format == "markup" || format == "all" {
		markup := export.NewMarkupBuilder().Build(page)
		if err := writeArtifact(exportDir, "detail_page.html", []byte(markup)); err != nil {
			return err
		}
	}

	slog.Info("エクスポートが完了したのだ！", "dir", exportDir, "format", format)
	return nil
}

// loadProductInput は商品入力JSONを読み込んで検証します。
func loadProductInput(path string) (*domain.ProductInput, error) {
	if path == "" {
		return nil, fmt.Errorf("入力ファイルが指定されていません（--input）")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("入力ファイル '%s' の読み込みに失敗しました: %w", path, err)
	}
	var input domain.ProductInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("入力ファイル '%s' のデコードに失敗しました: %w", path, err)
	}
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("入力の検証に失敗しました: %w", err)
	}
	return &input, nil
}

// applyOptions はCLIフラグによる上書きを入力に反映します。
func applyOptions(input *domain.ProductInput, opts config.GenerateOptions) {
	if opts.PageLength != "" {
		input.PageLength = domain.PageLength(opts.PageLength)
	}
	if opts.WithThumbnail {
		input.WithThumbnail = true
	}
}

// loadPage は保存済みのページJSONを読み込みます。
func loadPage(path string) (*domain.GeneratedDetailPage, error) {
	if path == "" {
		return nil, fmt.Errorf("ページJSONが指定されていません（--input）")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ページJSON '%s' の読み込みに失敗しました: %w", path, err)
	}
	var page domain.GeneratedDetailPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("ページJSON '%s' のデコードに失敗しました: %w", path, err)
	}
	return &page, nil
}

// savePage はページをJSONとして保存します。
func savePage(path string, page *domain.GeneratedDetailPage) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("保存先の作成に失敗しました: %w", err)
	}
	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return fmt.Errorf("ページのエンコードに失敗しました: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ページの保存に失敗しました: %w", err)
	}
	return nil
}

func writeArtifact(dir, name string, data []byte) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("成果物の保存に失敗しました %s: %w", path, err)
	}
	slog.Info("成果物を保存したのだ", "path", path, "bytes", len(data))
	return nil
}
