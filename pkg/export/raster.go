package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"

	_ "image/png" // セクション画像のデコード用

	"github.com/fogleman/gg"

	"github.com/shouni/go-detail-kit/pkg/domain"
	"github.com/shouni/go-detail-kit/pkg/style"
)

// RasterOptions はフラット化の出力パラメータです。ゼロ値は既定値に補正されます。
type RasterOptions struct {
	BaseWidth  int     // 論理幅（px）
	Multiplier float64 // ピクセル密度の倍率
	Quality    int     // JPEG品質
}

const (
	defaultBaseWidth  = 860
	defaultMultiplier = 2.0
	defaultQuality    = 90
)

// RasterComposer は、合成済みページ全体を1枚のJPEGにフラット化します。
// ビューポートではなくスクロール全高をそのまま描画するのだ。
type RasterComposer struct {
	fetcher  ImageFetcher
	fontPath string // 韓国語グリフを含むTTF/OTFへのパス。空ならテキスト合成なし
}

// NewRasterComposer は RasterComposer を生成します。
func NewRasterComposer(fetcher ImageFetcher, fontPath string) *RasterComposer {
	return &RasterComposer{fetcher: fetcher, fontPath: fontPath}
}

// ComposeJPEG は現在の表示順・表示状態・倍率を反映したページ全体の
// ラスタ画像を生成します。1枚でも画像解決に失敗したら部分画像は作らず、
// エラーとして報告します。
func (c *RasterComposer) ComposeJPEG(ctx context.Context, page *domain.GeneratedDetailPage, opts RasterOptions) ([]byte, error) {
	if opts.BaseWidth <= 0 {
		opts.BaseWidth = defaultBaseWidth
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = defaultMultiplier
	}
	if opts.Quality <= 0 {
		opts.Quality = defaultQuality
	}

	visible := page.VisibleSections()
	if len(visible) == 0 {
		return nil, fmt.Errorf("表示中のセクションがありません")
	}

	// 先に全画像を解決してから寸法を確定する。途中で失敗したら全体を失敗させる
	images := make([]image.Image, len(visible))
	for i, section := range visible {
		if section.ImageURL == "" {
			return nil, fmt.Errorf("セクション%d（%s）の画像が未生成です", i+1, section.LogicType)
		}
		data, err := c.fetcher.Fetch(ctx, section.ImageURL)
		if err != nil {
			return nil, fmt.Errorf("セクション%dの画像解決に失敗しました: %w", i+1, err)
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("セクション%dの画像デコードに失敗しました: %w", i+1, err)
		}
		images[i] = img
	}

	canvasW := int(float64(opts.BaseWidth) * opts.Multiplier)
	headerH := int(float64(canvasW) * 0.22)

	// 各セクションの描画サイズ（倍率はレンダリング時にのみ適用される）
	drawWs := make([]int, len(visible))
	drawHs := make([]int, len(visible))
	totalH := headerH
	for i, section := range visible {
		scale := section.Scale
		if scale <= 0 {
			scale = 100
		}
		bounds := images[i].Bounds()
		drawWs[i] = canvasW * scale / 100
		drawHs[i] = bounds.Dy() * drawWs[i] / bounds.Dx()
		totalH += drawHs[i]
	}

	dc := gg.NewContext(canvasW, totalH)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	theme := style.ResolveTheme(page.Category)
	c.drawHeader(dc, page, canvasW, headerH, theme)

	y := headerH
	for i := range visible {
		x := (canvasW - drawWs[i]) / 2
		c.drawSectionImage(dc, images[i], x, y, drawWs[i])
		if err := c.drawOverlay(dc, visible[i], theme, float64(x), float64(y), float64(drawWs[i]), float64(drawHs[i])); err != nil {
			return nil, err
		}
		y += drawHs[i]
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dc.Image(), &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("JPEGエンコードに失敗しました: %w", err)
	}

	slog.Info("ラスタエクスポートが完了したのだ", "width", canvasW, "height", totalH)
	return buf.Bytes(), nil
}

// drawSectionImage はセクション画像を指定幅に合わせて描画します。
func (c *RasterComposer) drawSectionImage(dc *gg.Context, img image.Image, x, y, drawW int) {
	bounds := img.Bounds()
	scale := float64(drawW) / float64(bounds.Dx())

	dc.Push()
	dc.Translate(float64(x), float64(y))
	dc.Scale(scale, scale)
	dc.DrawImage(img, 0, 0)
	dc.Pop()
}

// drawHeader は商品名・価格・割引のヘッダーブロックを描画します。
func (c *RasterComposer) drawHeader(dc *gg.Context, page *domain.GeneratedDetailPage, canvasW, headerH int, theme style.CategoryTheme) {
	// カテゴリテーマのアクセントバー
	dc.SetRGB(theme.AccentR, theme.AccentG, theme.AccentB)
	dc.DrawRectangle(0, 0, float64(canvasW), float64(canvasW)*0.01)
	dc.Fill()

	if c.fontPath == "" {
		return
	}

	pad := float64(canvasW) * 0.06
	titleSize := float64(canvasW) * 0.045
	if err := dc.LoadFontFace(c.fontPath, titleSize); err != nil {
		return
	}
	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawStringWrapped(page.ProductName, pad, float64(headerH)*0.35, 0, 0.5, float64(canvasW)-2*pad, 1.3, gg.AlignLeft)

	priceSize := float64(canvasW) * 0.035
	if err := dc.LoadFontFace(c.fontPath, priceSize); err != nil {
		return
	}
	priceText := formatWon(page.Price) + "원"
	if page.DiscountRate > 0 {
		dc.SetRGB(theme.AccentR, theme.AccentG, theme.AccentB)
		discount := fmt.Sprintf("%d%%", page.DiscountRate)
		dc.DrawString(discount, pad, float64(headerH)*0.75)
		w, _ := dc.MeasureString(discount)
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.DrawString(priceText, pad+w+priceSize*0.6, float64(headerH)*0.75)
	} else {
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.DrawString(priceText, pad, float64(headerH)*0.75)
	}
}

// drawOverlay はセクションのコピーをスタイル記述子に従って画像上に合成します。
func (c *RasterComposer) drawOverlay(dc *gg.Context, section domain.DetailSection, theme style.CategoryTheme, x, y, w, h float64) error {
	if c.fontPath == "" {
		// フォント未指定の場合は画像のみの簡易合成として扱う
		return nil
	}

	desc := style.Resolve(section.LogicType)
	pad := w * desc.Padding
	baseSize := w * 0.035
	fontSize := baseSize * desc.FontScale
	textW := w - 2*pad

	// 縦アンカーに応じたテキスト基準位置
	var textY, ay float64
	switch desc.Anchor {
	case domain.TextTop:
		textY, ay = y+pad, 0
	case domain.TextBottom:
		textY, ay = y+h-pad, 1
	default:
		textY, ay = y+h/2, 0.5
	}

	var ax float64
	var align gg.Align
	switch desc.Align {
	case style.AlignLeft:
		ax, align = 0, gg.AlignLeft
	case style.AlignRight:
		ax, align = 1, gg.AlignRight
	default:
		ax, align = 0.5, gg.AlignCenter
	}
	textX := x + pad + ax*textW

	if err := dc.LoadFontFace(c.fontPath, fontSize); err != nil {
		return fmt.Errorf("フォントの読み込みに失敗しました %s: %w", c.fontPath, err)
	}

	message := section.KeyMessage
	if desc.Decoration == style.DecorQuote {
		message = "“" + message + "”"
	}

	// トーンに合わせて影→本文の順で二度描きして可読性を確保する
	if section.TextTone == domain.ToneDark {
		dc.SetRGBA(1, 1, 1, 0.7)
	} else {
		dc.SetRGBA(0, 0, 0, 0.55)
	}
	shadowOffset := fontSize * 0.06
	dc.DrawStringWrapped(message, textX+shadowOffset, textY+shadowOffset, ax, ay, textW, 1.4, align)

	if section.TextTone == domain.ToneDark {
		dc.SetRGB(0.08, 0.08, 0.08)
	} else {
		dc.SetRGB(1, 1, 1)
	}
	dc.DrawStringWrapped(message, textX, textY, ax, ay, textW, 1.4, align)

	if desc.Decoration == style.DecorUnderline {
		lineW, _ := dc.MeasureString(message)
		if lineW > textW {
			lineW = textW
		}
		dc.SetRGB(theme.AccentR, theme.AccentG, theme.AccentB)
		dc.DrawRectangle(textX-ax*lineW, textY+fontSize*0.8, lineW, fontSize*0.08)
		dc.Fill()
	}

	if desc.Badge.Visible && desc.Badge.Label != "" {
		if err := c.drawBadge(dc, desc.Badge.Label, theme, x+pad, y+pad*0.5, baseSize); err != nil {
			return err
		}
	}
	return nil
}

// drawBadge はセクション左上の小さなラベルを描画します。
func (c *RasterComposer) drawBadge(dc *gg.Context, label string, theme style.CategoryTheme, x, y, baseSize float64) error {
	badgeSize := baseSize * 0.7
	if err := dc.LoadFontFace(c.fontPath, badgeSize); err != nil {
		return fmt.Errorf("フォントの読み込みに失敗しました %s: %w", c.fontPath, err)
	}

	textW, textH := dc.MeasureString(label)
	padX, padY := badgeSize*0.8, badgeSize*0.45

	dc.SetRGBA(theme.AccentR, theme.AccentG, theme.AccentB, 0.9)
	dc.DrawRoundedRectangle(x, y, textW+2*padX, textH+2*padY, badgeSize*0.3)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	dc.DrawString(label, x+padX, y+padY+textH*0.85)
	return nil
}
