package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalWriter はローカルディレクトリへの ObjectWriter 実装です。
// CLI 実行やオフライン検証のときに GCS の代わりとして使います。
type LocalWriter struct {
	baseDir string
}

// NewLocalWriter はベースディレクトリを受け取ってライターを返します。
func NewLocalWriter(baseDir string) *LocalWriter {
	return &LocalWriter{baseDir: baseDir}
}

// Write はファイルを書き出し、そのパスを返します。
func (w *LocalWriter) Write(_ context.Context, name string, data []byte, _ string) (string, error) {
	fullPath := filepath.Join(w.baseDir, name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("ファイルの書き込みに失敗しました %s: %w", fullPath, err)
	}
	return fullPath, nil
}
