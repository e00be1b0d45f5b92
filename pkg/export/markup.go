package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/shouni/go-detail-kit/pkg/domain"
)

// MarkupBuilder は、マーケットプレイスのリッチテキストエディタへ
// 貼り付けるための簡略化された静的HTML断片を構築します。
// 対話的なコントロールは一切含めず、読める内容と画像参照だけを残すのだ。
type MarkupBuilder struct{}

// NewMarkupBuilder は MarkupBuilder を生成します。
func NewMarkupBuilder() *MarkupBuilder {
	return &MarkupBuilder{}
}

// Build は現在の表示状態から貼り付け用HTML断片を生成します。
// インライン（data URI）のままの画像は貼り付け先でホストできないため、
// リモートURLを持つセクションだけが <img> を持ちます。
func (b *MarkupBuilder) Build(page *domain.GeneratedDetailPage) string {
	var sb strings.Builder

	sb.WriteString(`<div style="max-width:860px;margin:0 auto;font-family:sans-serif;">` + "\n")

	// 商品名と価格のヘッダーブロック
	fmt.Fprintf(&sb, `<h1 style="font-size:28px;">%s</h1>`+"\n", html.EscapeString(page.ProductName))
	if page.Price > 0 {
		if page.DiscountRate > 0 {
			fmt.Fprintf(&sb, `<p style="font-size:20px;"><strong>%d%%</strong> %s원</p>`+"\n",
				page.DiscountRate, formatWon(page.Price))
		} else {
			fmt.Fprintf(&sb, `<p style="font-size:20px;">%s원</p>`+"\n", formatWon(page.Price))
		}
	}

	for _, section := range page.VisibleSections() {
		sb.WriteString(`<div style="margin:24px 0;">` + "\n")
		if domain.IsRemoteURL(section.ImageURL) {
			fmt.Fprintf(&sb, `<img src="%s" alt="%s" style="width:100%%;display:block;" />`+"\n",
				html.EscapeString(section.ImageURL), html.EscapeString(section.Title))
		}
		if section.Title != "" {
			fmt.Fprintf(&sb, `<h2 style="font-size:22px;">%s</h2>`+"\n", html.EscapeString(section.Title))
		}
		if section.KeyMessage != "" {
			fmt.Fprintf(&sb, `<p style="font-size:16px;">%s</p>`+"\n", html.EscapeString(section.KeyMessage))
		}
		if section.SubMessage != "" {
			fmt.Fprintf(&sb, `<p style="font-size:14px;color:#666;">%s</p>`+"\n", html.EscapeString(section.SubMessage))
		}
		sb.WriteString("</div>\n")
	}

	sb.WriteString("</div>\n")
	return sb.String()
}

// formatWon は桁区切りつきの価格表記を返します。
func formatWon(price int) string {
	s := fmt.Sprintf("%d", price)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
