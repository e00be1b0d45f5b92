package export

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shouni/go-detail-kit/pkg/domain"
)

// ImageFetcher はセクション画像をバイナリに解決する抽象です。
type ImageFetcher interface {
	Fetch(ctx context.Context, image string) ([]byte, error)
}

const defaultFetchTimeout = 30 * time.Second

// Fetcher は ImageFetcher の標準実装です。
// data URI はローカルでデコードし、リモートURLはHTTPで取得します。
// 直接取得がブロックされた場合は中継プレフィックス経由で再試行します。
type Fetcher struct {
	httpClient  *http.Client
	relayPrefix string // 例: "https://relay.example.com/fetch?url="
}

// NewFetcher は Fetcher を生成します。relayPrefix は空でも構いません。
func NewFetcher(httpClient *http.Client, relayPrefix string) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &Fetcher{httpClient: httpClient, relayPrefix: relayPrefix}
}

// Fetch は画像参照をバイナリに解決します。
func (f *Fetcher) Fetch(ctx context.Context, image string) ([]byte, error) {
	if domain.IsDataURI(image) {
		_, data, err := domain.DecodeDataURI(image)
		if err != nil {
			return nil, fmt.Errorf("インライン画像のデコードに失敗しました: %w", err)
		}
		return data, nil
	}
	if !domain.IsRemoteURL(image) {
		return nil, fmt.Errorf("解決できない画像参照です: %q", image)
	}

	data, err := f.get(ctx, image)
	if err == nil {
		return data, nil
	}
	if f.relayPrefix == "" {
		return nil, err
	}

	// 直接取得に失敗した場合のみ中継経由で1回だけ再試行する
	relayed, relayErr := f.get(ctx, f.relayPrefix+url.QueryEscape(image))
	if relayErr != nil {
		return nil, fmt.Errorf("中継経由の取得にも失敗しました: %w (直接取得: %v)", relayErr, err)
	}
	return relayed, nil
}

func (f *Fetcher) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("画像の取得に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("画像の取得に失敗しました: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
