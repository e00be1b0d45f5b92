package planner

import "github.com/shouni/go-detail-kit/pkg/domain"

// roleTemplates は、ページ長ごとの固定の役割シーケンスです。
// プランナーはこの並びを絶対に並べ替えたり差し替えたりしてはいけないのだ。
var roleTemplates = map[int][]domain.LogicType{
	5: {
		domain.LogicHook,
		domain.LogicSolution,
		domain.LogicClarity,
		domain.LogicSocialProof,
		domain.LogicRiskReversal,
	},
	7: {
		domain.LogicHook,
		domain.LogicSolution,
		domain.LogicClarity,
		domain.LogicSocialProof,
		domain.LogicService,
		domain.LogicBrandStory,
		domain.LogicRiskReversal,
	},
	9: {
		domain.LogicHook,
		domain.LogicSolution,
		domain.LogicClarity,
		domain.LogicSocialProof,
		domain.LogicService,
		domain.LogicBrandStory,
		domain.LogicComparison,
		domain.LogicRiskReversal,
		domain.LogicService,
	},
}

// RoleSequence は指定長の役割リストのコピーを返します。未定義長の場合は nil です。
func RoleSequence(length int) []domain.LogicType {
	roles, ok := roleTemplates[length]
	if !ok {
		return nil
	}
	out := make([]domain.LogicType, len(roles))
	copy(out, roles)
	return out
}

// slotFor は位置からレイアウトスロットを確定します。
// 先頭はヒーロー、末尾はクロージング（使用シーン）、それ以外は特徴紹介なのだ。
// 生成時に一度だけ確定して保存するので、後から並べ替えても意味は変わらないのだよ。
func slotFor(index, total int) domain.LayoutSlot {
	switch {
	case index == 0:
		return domain.SlotHero
	case index == total-1:
		return domain.SlotUsage
	default:
		return domain.SlotFeature
	}
}
