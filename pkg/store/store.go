// Package store は、生成画像を耐久ストレージへ移して安定したURLを返す
// アダプターです。アップロードに失敗してもエラーにはせず、
// インライン表現をそのまま返すフォールバック契約を持ちます。
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/shouni/go-detail-kit/pkg/domain"
)

// ObjectWriter はオブジェクトストレージへの書き込みの抽象です。
// 成功時は外部から参照可能なURLを返します。
type ObjectWriter interface {
	Write(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

const (
	cacheExpiration = 30 * time.Minute
	cacheCleanup    = 1 * time.Hour
)

// Store は画像ストアアダプターの実体です。
// 同一バイナリの重複アップロードはコンテンツハッシュのキャッシュで抑止します。
type Store struct {
	writer ObjectWriter
	urls   *cache.Cache
}

// New は Store を生成します。
func New(writer ObjectWriter) *Store {
	return &Store{
		writer: writer,
		urls:   cache.New(cacheExpiration, cacheCleanup),
	}
}

// Persist は画像を耐久ストレージへ移し、安定したURLを返します。
//   - すでにリモートURLならそのまま返す（冪等なno-op）
//   - アップロードに失敗したら元のインライン表現をそのまま返す
//
// どちらの場合も error は返さない契約なのだ。呼び出し側は
// 「URLかインラインのどちらかが返る」ことだけを前提にすればよい。
func (s *Store) Persist(ctx context.Context, image string) (string, error) {
	if domain.IsRemoteURL(image) {
		return image, nil
	}

	mimeType, data, err := domain.DecodeDataURI(image)
	if err != nil {
		slog.Warn("インライン画像として解釈できないのでそのまま返すのだ", "error", err)
		return image, nil
	}

	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])
	if cached, ok := s.urls.Get(key); ok {
		return cached.(string), nil
	}

	name := fmt.Sprintf("sections/%s%s", key[:16], extFor(mimeType))
	url, err := s.writer.Write(ctx, name, data, mimeType)
	if err != nil || url == "" {
		slog.Warn("アップロードに失敗したのでインラインのまま使うのだ", "name", name, "error", err)
		return image, nil
	}

	s.urls.Set(key, url, cache.DefaultExpiration)
	return url, nil
}

func extFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
