package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
)

// GCSWriter は Google Cloud Storage への ObjectWriter 実装です。
type GCSWriter struct {
	client *storage.Client
	bucket string
}

// NewGCSWriter は GCS クライアントを初期化してライターを返します。
func NewGCSWriter(ctx context.Context, bucket string) (*GCSWriter, error) {
	if bucket == "" {
		return nil, fmt.Errorf("GCSバケット名が指定されていません")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("GCSクライアントの初期化に失敗しました: %w", err)
	}
	return &GCSWriter{client: client, bucket: bucket}, nil
}

// Write はオブジェクトを書き込み、公開URLを返します。
func (w *GCSWriter) Write(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	obj := w.client.Bucket(w.bucket).Object(name)
	writer := obj.NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("GCSへの書き込みに失敗しました %s: %w", name, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("GCSへの書き込み完了に失敗しました %s: %w", name, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", w.bucket, name), nil
}

// Close は下位クライアントを解放します。
func (w *GCSWriter) Close() error {
	return w.client.Close()
}
