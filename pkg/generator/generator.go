// Package generator は、プラン済みセクション列から詳細ページの画像一式を
// 並列生成するオーケストレーターです。
// 個々の失敗はプレースホルダーに置き換えてバッチを続行し、
// クォータ切れだけは全体を中断させるのだ。
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/shouni/go-detail-kit/pkg/domain"
	"github.com/shouni/go-detail-kit/pkg/planner"
)

// 生成パラメータの既定値なのだ。
const (
	sectionAspectRatio   = "9:16" // 詳細ページは縦長固定
	thumbnailAspectRatio = "1:1"

	// MaxAttachedReferences は1リクエストに添付する参照画像の上限です。
	MaxAttachedReferences = 3

	DefaultCallTimeout  = 90 * time.Second
	DefaultRateInterval = 10 * time.Second
	DefaultBurst        = 2
)

// negativeConstraints は全セクション共通の禁止事項です。
// 文字・透かし・枠はテキスト合成側で載せるので、画像そのものには絶対に入れない。
const negativeConstraints = "embedded text, letters, words, typography, watermark, logo overlay, UI elements, boxes, frames, borders, speech bubbles, collage, split screen, low quality, distorted product"

// ImageGenerator は画像生成呼び出しの抽象です。internal/gemini が実装します。
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req domain.ImageRequest) (*domain.ImageResult, error)
}

// Persister は生成画像を耐久ストレージへ移すための抽象です。pkg/store が実装します。
type Persister interface {
	Persist(ctx context.Context, image string) (string, error)
}

// Stage は進捗コールバックの粒度です。
type Stage string

const (
	StagePlanCompleted       Stage = "plan_completed"
	StageGenerationStarted   Stage = "generation_started"
	StageGenerationCompleted Stage = "generation_completed"
)

// ProgressFunc は粗い節目ごとに呼ばれる進捗通知です。nil でも構いません。
type ProgressFunc func(stage Stage)

// Config は生成の実行パラメータです。ゼロ値は既定値に補正されます。
type Config struct {
	CallTimeout  time.Duration
	RateInterval time.Duration
	Burst        int
}

// PageGenerator は詳細ページ1枚ぶんの画像生成バッチを実行します。
type PageGenerator struct {
	imageGen  ImageGenerator
	persister Persister
	cfg       Config
}

// New は PageGenerator を生成します。
func New(imageGen ImageGenerator, persister Persister, cfg Config) *PageGenerator {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if cfg.RateInterval <= 0 {
		cfg.RateInterval = DefaultRateInterval
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	return &PageGenerator{imageGen: imageGen, persister: persister, cfg: cfg}
}

// GeneratePage は全セクション（および任意のサムネイル）の画像を並列生成します。
// 戻り値のセクション順はプラン順そのもので、完了順には依存しません。
// すべてのリクエストが決着（成功 or プレースホルダー）するまで返りません。
func (g *PageGenerator) GeneratePage(ctx context.Context, input domain.ProductInput, sections []domain.DetailSection, progress ProgressFunc) (*domain.GeneratedDetailPage, error) {
	notify(progress, StagePlanCompleted)

	page := &domain.GeneratedDetailPage{
		ProductName:  input.Name,
		Category:     input.Category,
		Price:        input.Price,
		DiscountRate: input.DiscountRate,
		Sections:     make([]domain.DetailSection, len(sections)),
	}
	copy(page.Sections, sections)
	for i := range page.Sections {
		page.Sections[i].IsGenerating = true
	}

	refs := collectReferences(input.ReferenceImages)

	eg, egCtx := errgroup.WithContext(ctx)
	limiter := rate.NewLimiter(rate.Every(g.cfg.RateInterval), g.cfg.Burst)

	slog.Info("並列画像生成を開始するのだ",
		"sections", len(page.Sections),
		"thumbnail", input.WithThumbnail,
		"interval", g.cfg.RateInterval)
	notify(progress, StageGenerationStarted)

	for i := range page.Sections {
		i := i
		eg.Go(func() error {
			if err := limiter.Wait(egCtx); err != nil {
				// クォータ切れなどでバッチが打ち切られた場合、未着手ぶんはここで止まる
				g.settleAsPlaceholder(&page.Sections[i])
				return nil
			}
			return g.generateSection(ctx, &page.Sections[i], input, refs)
		})
	}

	if input.WithThumbnail {
		eg.Go(func() error {
			if err := limiter.Wait(egCtx); err != nil {
				return nil
			}
			// サムネイルの失敗は「サムネイルなし」であってバッチの失敗ではない
			thumb, err := g.generateThumbnail(ctx, input, refs)
			if err != nil {
				if errors.Is(err, domain.ErrQuotaExhausted) {
					return err
				}
				slog.Warn("サムネイル生成に失敗したのだ", "error", err)
				return nil
			}
			page.Thumbnail = thumb
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		if errors.Is(err, domain.ErrQuotaExhausted) {
			slog.Error("クレジット不足でバッチを中断するのだ", "error", err)
			return nil, err
		}
		return nil, fmt.Errorf("画像生成バッチに失敗しました: %w", err)
	}

	notify(progress, StageGenerationCompleted)
	slog.Info("全セクションが決着したのだ", "sections", len(page.Sections))
	return page, nil
}

// generateSection は1セクションぶんの生成と永続化です。
// 通常の失敗はプレースホルダーに置き換えて nil を返し、
// クォータ切れだけをエラーとして上げます。
func (g *PageGenerator) generateSection(ctx context.Context, section *domain.DetailSection, input domain.ProductInput, refs []domain.ImageReference) error {
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
	defer cancel()

	req := domain.ImageRequest{
		Prompt:         buildSectionPrompt(section.VisualPrompt, input),
		NegativePrompt: negativeConstraints,
		AspectRatio:    sectionAspectRatio,
		References:     refs,
	}

	result, err := g.imageGen.GenerateImage(callCtx, req)
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExhausted) {
			return err
		}
		slog.Warn("セクション生成に失敗したのでプレースホルダーにするのだ",
			"order", section.Order, "logic_type", section.LogicType, "error", err)
		g.settleAsPlaceholder(section)
		return nil
	}

	section.ImageURL = g.persist(ctx, domain.EncodeDataURI(result.MimeType, result.Data))
	section.IsGenerating = false
	slog.Info("セクション生成に成功したのだ", "order", section.Order, "logic_type", section.LogicType)
	return nil
}

// GenerateSectionImage は編集サーフェス用の単発再生成です。
// 成功時のみ新しいURLを返し、失敗時は呼び出し側が旧画像を保持します。
func (g *PageGenerator) GenerateSectionImage(ctx context.Context, visualPrompt string, input domain.ProductInput) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
	defer cancel()

	refs := collectReferences(input.ReferenceImages)
	if len(refs) > 1 {
		refs = refs[:1] // 再生成はプライマリ参照のみで行う
	}

	result, err := g.imageGen.GenerateImage(callCtx, domain.ImageRequest{
		Prompt:         buildSectionPrompt(visualPrompt, input),
		NegativePrompt: negativeConstraints,
		AspectRatio:    sectionAspectRatio,
		References:     refs,
	})
	if err != nil {
		return "", fmt.Errorf("セクションの再生成に失敗しました: %w", err)
	}
	return g.persist(ctx, domain.EncodeDataURI(result.MimeType, result.Data)), nil
}

// GenerateThumbnailImage はサムネイル単発生成の公開版です。
func (g *PageGenerator) GenerateThumbnailImage(ctx context.Context, prompt string, refs []domain.ImageReference) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
	defer cancel()

	result, err := g.imageGen.GenerateImage(callCtx, domain.ImageRequest{
		Prompt:         prompt,
		NegativePrompt: negativeConstraints,
		AspectRatio:    thumbnailAspectRatio,
		References:     refs,
	})
	if err != nil {
		return "", err
	}
	return g.persist(ctx, domain.EncodeDataURI(result.MimeType, result.Data)), nil
}

func (g *PageGenerator) generateThumbnail(ctx context.Context, input domain.ProductInput, refs []domain.ImageReference) (*domain.Thumbnail, error) {
	prompt := planner.BuildThumbnailPrompt(input)
	url, err := g.GenerateThumbnailImage(ctx, prompt, refs)
	if err != nil {
		return nil, err
	}
	return &domain.Thumbnail{ImageURL: url, Prompt: prompt}, nil
}

// persist は生成結果を耐久ストレージへ移します。
// 失敗してもインライン表現のまま返す契約なので、エラーはここで吸収します。
func (g *PageGenerator) persist(ctx context.Context, dataURI string) string {
	if g.persister == nil {
		return dataURI
	}
	url, err := g.persister.Persist(ctx, dataURI)
	if err != nil || url == "" {
		slog.Warn("画像の永続化に失敗したのでインラインのまま使うのだ", "error", err)
		return dataURI
	}
	return url
}

func (g *PageGenerator) settleAsPlaceholder(section *domain.DetailSection) {
	section.ImageURL = PlaceholderDataURI()
	section.IsGenerating = false
}

// collectReferences はインライン形式の参照画像だけを先頭から最大3枚集めます。
// リモートURLは添付できないので黙って読み飛ばします。
func collectReferences(images []string) []domain.ImageReference {
	refs := make([]domain.ImageReference, 0, MaxAttachedReferences)
	for _, img := range images {
		if len(refs) >= MaxAttachedReferences {
			break
		}
		if ref, ok := domain.ReferenceFromDataURI(img); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// buildSectionPrompt はセクションの視覚指示にカテゴリ・ターゲット層の文脈を足します。
func buildSectionPrompt(visualPrompt string, input domain.ProductInput) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(visualPrompt))
	b.WriteString(". Professional Korean e-commerce detail page photograph, tall vertical composition.")
	if input.Category != "" {
		fmt.Fprintf(&b, " Product category: %s.", input.Category)
	}
	if input.TargetAudience != "" {
		fmt.Fprintf(&b, " Styled to appeal to: %s.", input.TargetAudience)
	}
	b.WriteString(" The product must look identical to the reference images.")
	return b.String()
}

func notify(progress ProgressFunc, stage Stage) {
	if progress != nil {
		progress(stage)
	}
}
