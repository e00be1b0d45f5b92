package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shouni/go-detail-kit/pkg/domain"
)

// BundleExporter は、表示中セクションの画像一式をZIPアーカイブにまとめます。
type BundleExporter struct {
	fetcher ImageFetcher
}

// NewBundleExporter は BundleExporter を生成します。
func NewBundleExporter(fetcher ImageFetcher) *BundleExporter {
	return &BundleExporter{fetcher: fetcher}
}

// Export は現在の表示順・表示状態に基づいてZIPを構築します。
// 1セクションの取得失敗はログに残してスキップし、残りの構築は続行するのだ。
func (e *BundleExporter) Export(ctx context.Context, page *domain.GeneratedDetailPage) ([]byte, error) {
	visible := page.VisibleSections()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	added := 0

	for i, section := range visible {
		if section.ImageURL == "" {
			continue
		}
		data, err := e.fetcher.Fetch(ctx, section.ImageURL)
		if err != nil {
			slog.Warn("セクション画像の取得に失敗したのでスキップするのだ",
				"position", i+1, "logic_type", section.LogicType, "error", err)
			continue
		}
		name := fmt.Sprintf("%02d_%s%s", i+1, section.LogicType, extForData(data))
		if err := addZipEntry(zw, name, data); err != nil {
			return nil, err
		}
		added++
	}

	if page.Thumbnail != nil && page.Thumbnail.ImageURL != "" {
		if data, err := e.fetcher.Fetch(ctx, page.Thumbnail.ImageURL); err != nil {
			slog.Warn("サムネイルの取得に失敗したのでスキップするのだ", "error", err)
		} else {
			if err := addZipEntry(zw, "thumbnail"+extForData(data), data); err != nil {
				return nil, err
			}
			added++
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("アーカイブの完了に失敗しました: %w", err)
	}

	slog.Info("バンドルエクスポートが完了したのだ", "entries", added)
	return buf.Bytes(), nil
}

func addZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("アーカイブエントリの作成に失敗しました %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("アーカイブへの書き込みに失敗しました %s: %w", name, err)
	}
	return nil
}

// extForData はバイナリの内容から拡張子を推定します。
func extForData(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
