// Package style は、訴求ロジックの役割からテキストオーバーレイの
// 見た目を決める純粋な解決器を提供します。
// 役割→スタイルの対応は静的なテーブルであり、計算によるスタイル導出は存在しません。
package style

import (
	"strings"

	"github.com/shouni/go-detail-kit/pkg/domain"
)

// FontWeight はオーバーレイ文字の太さトークンです。
type FontWeight string

const (
	WeightRegular FontWeight = "regular"
	WeightBold    FontWeight = "bold"
	WeightBlack   FontWeight = "black"
)

// Align はテキストの水平揃えです。
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Decoration は役割固有の装飾です。
type Decoration string

const (
	DecorNone      Decoration = "none"
	DecorUnderline Decoration = "underline" // フック用の下線
	DecorQuote     Decoration = "quote"     // 社会的証明用の引用符
)

// Badge はセクション左上などに載せる小さなラベルです。
type Badge struct {
	Visible bool
	Label   string
}

// StyleDescriptor は1セクションのテキスト合成に使う視覚スタイルの値オブジェクトです。
// 同一性を持たず、必要になるたびに Resolve で引き直します。
type StyleDescriptor struct {
	FontScale  float64 // 基準フォントサイズに対する倍率
	FontWeight FontWeight
	Align      Align
	Anchor     domain.TextPosition // 縦方向のアンカー
	Padding    float64             // キャンバス幅に対するパディング比
	Badge      Badge
	Decoration Decoration
}

// descriptorTable は8役割ぶんの固定テーブルです。
// 正確なアンカー/揃えの値は下流のレイアウトが依存する契約なので、むやみに変えないこと。
var descriptorTable = map[domain.LogicType]StyleDescriptor{
	domain.LogicHook: {
		FontScale:  1.6,
		FontWeight: WeightBlack,
		Align:      AlignCenter,
		Anchor:     domain.TextCenter,
		Padding:    0.08,
		Badge:      Badge{},
		Decoration: DecorUnderline,
	},
	domain.LogicSolution: {
		FontScale:  1.2,
		FontWeight: WeightBold,
		Align:      AlignLeft,
		Anchor:     domain.TextBottom,
		Padding:    0.08,
		Badge:      Badge{},
		Decoration: DecorNone,
	},
	domain.LogicClarity: {
		FontScale:  1.0,
		FontWeight: WeightRegular,
		Align:      AlignLeft,
		Anchor:     domain.TextTop,
		Padding:    0.06,
		Badge:      Badge{Visible: true, Label: "SPEC"},
		Decoration: DecorNone,
	},
	domain.LogicSocialProof: {
		FontScale:  1.1,
		FontWeight: WeightRegular,
		Align:      AlignCenter,
		Anchor:     domain.TextCenter,
		Padding:    0.1,
		Badge:      Badge{Visible: true, Label: "REVIEW"},
		Decoration: DecorQuote,
	},
	domain.LogicService: {
		FontScale:  1.0,
		FontWeight: WeightBold,
		Align:      AlignLeft,
		Anchor:     domain.TextTop,
		Padding:    0.06,
		Badge:      Badge{Visible: true, Label: "HOW TO"},
		Decoration: DecorNone,
	},
	domain.LogicRiskReversal: {
		FontScale:  1.1,
		FontWeight: WeightBold,
		Align:      AlignCenter,
		Anchor:     domain.TextBottom,
		Padding:    0.08,
		Badge:      Badge{Visible: true, Label: "보장"},
		Decoration: DecorNone,
	},
	domain.LogicBrandStory: {
		FontScale:  1.0,
		FontWeight: WeightRegular,
		Align:      AlignCenter,
		Anchor:     domain.TextCenter,
		Padding:    0.12,
		Badge:      Badge{},
		Decoration: DecorNone,
	},
	domain.LogicComparison: {
		FontScale:  1.1,
		FontWeight: WeightBold,
		Align:      AlignCenter,
		Anchor:     domain.TextTop,
		Padding:    0.06,
		Badge:      Badge{Visible: true, Label: "VS"},
		Decoration: DecorNone,
	},
}

// Resolve は役割からスタイルを引きます。全域関数であり、未知の役割には
// solution のスタイルを返します。エラーは決して返さないのだ。
func Resolve(lt domain.LogicType) StyleDescriptor {
	if d, ok := descriptorTable[lt]; ok {
		return d
	}
	return descriptorTable[domain.LogicSolution]
}

// CategoryTheme はカテゴリ由来のアクセントカラー（RGB 0-1）です。
type CategoryTheme struct {
	AccentR, AccentG, AccentB float64
}

// ResolveTheme はカテゴリからアクセントカラーを引きます。こちらも純粋な全域関数です。
func ResolveTheme(category string) CategoryTheme {
	switch {
	case containsAny(category, "beauty", "뷰티"):
		return CategoryTheme{AccentR: 0.85, AccentG: 0.45, AccentB: 0.60}
	case containsAny(category, "digital", "디지털"):
		return CategoryTheme{AccentR: 0.20, AccentG: 0.45, AccentB: 0.85}
	default:
		return CategoryTheme{AccentR: 0.15, AccentG: 0.15, AccentB: 0.15}
	}
}

func containsAny(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if sub != "" && strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
