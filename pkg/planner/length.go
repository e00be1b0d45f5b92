package planner

import (
	"strconv"
	"strings"

	"github.com/shouni/go-detail-kit/pkg/domain"
)

// 自動選択のしきい値なのだ。比較は厳密な > で、境界値ちょうどは下のティアに落ちる。
const (
	longPagePriceThreshold = 100000
	midPagePriceThreshold  = 30000
)

// ResolveLength は希望ページ長と価格・カテゴリから実際のセクション数を決めます。
// 明示指定（5/7/9）はそのまま、auto はヒューリスティックのしきい値表に従います。
func ResolveLength(requested domain.PageLength, price int, category string) int {
	switch requested {
	case domain.Length5:
		return 5
	case domain.Length7:
		return 7
	case domain.Length9:
		return 9
	}

	if price > longPagePriceThreshold || isPremiumCategory(category) {
		return 9
	}
	if price > midPagePriceThreshold {
		return 7
	}
	return 5
}

// isPremiumCategory は、長尺ページが標準となるカテゴリかどうかを判定します。
func isPremiumCategory(category string) bool {
	c := strings.ToLower(strings.TrimSpace(category))
	return strings.Contains(c, "beauty") ||
		strings.Contains(c, "뷰티") ||
		strings.Contains(c, "digital") ||
		strings.Contains(c, "디지털") ||
		c == "it"
}

// formatPrice は韓国ウォンの桁区切り表記を返します。プロンプト内の表示用です。
func formatPrice(price int) string {
	s := strconv.Itoa(price)
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
