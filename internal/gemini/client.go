// Package gemini は Gemini generateContent API の薄い REST クライアントです。
// テキスト（プラン生成）と画像（セクション/サムネイル生成）の両方をここで扱います。
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/go-detail-kit/pkg/domain"
)

const (
	defaultBaseURL    = "https://generativelanguage.googleapis.com"
	defaultAPIVersion = "v1beta"
	defaultTimeout    = 120 * time.Second

	textTemperature = 0.4
)

// Options はクライアント生成時の設定です。APIキーは必ず明示的に注入します。
type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	TextModel  string
	ImageModel string
	HTTPClient *http.Client
}

// Client は Gemini API クライアントの実体です。
type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string
	textModel  string
	imageModel string
	httpClient *http.Client
}

// New はクライアントを生成します。APIキーが空の場合は
// ネットワークに触れる前に ErrMissingAPIKey で失敗します。
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, domain.ErrMissingAPIKey
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		apiVersion: apiVersion,
		textModel:  opts.TextModel,
		imageModel: opts.ImageModel,
		httpClient: httpClient,
	}, nil
}

// GenerateJSON はJSON応答モードでテキスト生成を実行し、本文をそのまま返します。
func (c *Client) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: userPrompt}}},
		},
		SystemInstruction: &content{Role: "user", Parts: []part{{Text: systemPrompt}}},
		GenerationConfig: generationConfig{
			Temperature:      textTemperature,
			ResponseMIMEType: "application/json",
		},
	}

	resp, err := c.generateContent(ctx, c.textModel, req)
	if err != nil {
		return "", err
	}

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("テキスト応答が空です")
	}
	return text, nil
}

// GenerateImage は参照画像つきで1枚の画像を生成します。
// 参照画像はプロンプト本文の前にラベル付きで並べます。
func (c *Client) GenerateImage(ctx context.Context, req domain.ImageRequest) (*domain.ImageResult, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("プロンプトが空です")
	}
	if req.NegativePrompt != "" {
		prompt += "\n\nStrictly avoid: " + req.NegativePrompt
	}

	parts := []part{{Text: prompt}}
	for i, ref := range req.References {
		parts = append(parts,
			part{Text: fmt.Sprintf("Reference image #%d (the real product):", i+1)},
			part{InlineData: &blob{Data: ref.DataBase64, MimeType: ref.MimeType}},
		)
	}

	genCfg := generationConfig{
		ResponseModalities: []string{"IMAGE"},
	}
	if req.AspectRatio != "" {
		genCfg.ImageConfig = &imageConfig{AspectRatio: req.AspectRatio}
	}

	payload := generateContentRequest{
		Contents:         []content{{Role: "user", Parts: parts}},
		GenerationConfig: genCfg,
	}

	resp, err := c.generateContent(ctx, c.imageModel, payload)
	if err != nil {
		return nil, err
	}

	result := extractImage(resp)
	if result == nil {
		return nil, fmt.Errorf("応答に画像が含まれていません")
	}
	return result, nil
}

func (c *Client) generateContent(ctx context.Context, model string, payload generateContentRequest) (generateContentResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return generateContentResponse{}, fmt.Errorf("リクエストのエンコードに失敗しました: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return generateContentResponse{}, fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return generateContentResponse{}, fmt.Errorf("リクエストの送信に失敗しました: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return generateContentResponse{}, fmt.Errorf("応答の読み取りに失敗しました: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		if isQuotaExhausted(httpResp.StatusCode, rawBody) {
			return generateContentResponse{}, fmt.Errorf("%w: %s", domain.ErrQuotaExhausted, httpResp.Status)
		}
		return generateContentResponse{}, fmt.Errorf("gemini API %s: %s", httpResp.Status, strings.TrimSpace(string(rawBody)))
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return generateContentResponse{}, fmt.Errorf("応答のデコードに失敗しました: %w", err)
	}
	return decoded, nil
}

// isQuotaExhausted はクォータ/クレジット切れの判定です。
// 429 と RESOURCE_EXHAUSTED だけを区別し、それ以外は一般エラーとして扱います。
func isQuotaExhausted(statusCode int, body []byte) bool {
	if statusCode == http.StatusTooManyRequests {
		return true
	}
	return bytes.Contains(body, []byte("RESOURCE_EXHAUSTED"))
}

func extractText(resp generateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func extractImage(resp generateContentResponse) *domain.ImageResult {
	if len(resp.Candidates) == 0 {
		return nil
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData == nil || p.InlineData.Data == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
		if err != nil {
			continue
		}
		return &domain.ImageResult{Data: data, MimeType: p.InlineData.MimeType}
	}
	return nil
}
