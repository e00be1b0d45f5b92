// Package planner は、商品メタデータから詳細ページのセクション構成案を組み立てます。
// ページ長の解決、役割シーケンスの割り当て、テキスト生成呼び出しによる
// セクション別コピーの充填までを担当するのだ。
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/shouni/go-detail-kit/pkg/domain"
)

// TextGenerator はプラン生成に使う外部テキスト生成呼び出しの抽象です。
// JSONモードでの応答本文をそのまま返す想定です。
type TextGenerator interface {
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Planner はセクションプランナーの実体です。
type Planner struct {
	textGen TextGenerator
}

// New は Planner を生成します。
func New(textGen TextGenerator) *Planner {
	return &Planner{textGen: textGen}
}

// planEntry はテキスト生成応答の1セクションぶんの構造です。
type planEntry struct {
	LogicType    string `json:"logic_type"`
	Title        string `json:"title"`
	KeyMessage   string `json:"key_message"`
	SubMessage   string `json:"sub_message"`
	VisualPrompt string `json:"visual_prompt"`
	TextPosition string `json:"text_position"`
	TextTone     string `json:"text_tone"`
}

// Plan は入力からセクション列を組み立てます。画像はすべて未生成の状態で返します。
// 応答が構造的に不正な場合は部分的なプランを作らず、全体を失敗させるのだ。
func (p *Planner) Plan(ctx context.Context, input domain.ProductInput) ([]domain.DetailSection, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("入力の検証に失敗しました: %w", err)
	}

	length := ResolveLength(input.PageLength, input.Price, input.Category)
	roles := RoleSequence(length)
	if roles == nil {
		return nil, fmt.Errorf("未定義のページ長です: %d", length)
	}

	slog.Info("セクションプランを作成するのだ",
		"product", input.Name,
		"length", length,
		"requested", input.PageLength)

	raw, err := p.textGen.GenerateJSON(ctx, planSystemPrompt, BuildPlanPrompt(input, roles))
	if err != nil {
		return nil, fmt.Errorf("プラン生成呼び出しに失敗しました: %w", err)
	}

	entries, err := parsePlanResponse(raw, roles)
	if err != nil {
		return nil, err
	}

	sections := make([]domain.DetailSection, len(entries))
	for i, e := range entries {
		sections[i] = domain.DetailSection{
			ID:           uuid.NewString(),
			Order:        i,
			LogicType:    roles[i],
			LayoutSlot:   slotFor(i, len(roles)),
			Title:        e.Title,
			KeyMessage:   e.KeyMessage,
			SubMessage:   e.SubMessage,
			VisualPrompt: e.VisualPrompt,
			TextPosition: normalizePosition(e.TextPosition),
			TextTone:     normalizeTone(e.TextTone),
			Scale:        100,
		}
	}
	return sections, nil
}

// parsePlanResponse は応答JSONを検証付きでパースします。
// 件数が役割シーケンスと一致しない、または必須フィールドが欠けている場合は
// ErrInvalidPlan を包んだハードエラーを返します。
func parsePlanResponse(raw string, roles []domain.LogicType) ([]planEntry, error) {
	cleaned := stripJSONFences(raw)

	var entries []planEntry
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		return nil, fmt.Errorf("%w: JSONのパースに失敗しました: %v", domain.ErrInvalidPlan, err)
	}

	if len(entries) != len(roles) {
		return nil, fmt.Errorf("%w: セクション数が一致しません (期待: %d, 実際: %d)",
			domain.ErrInvalidPlan, len(roles), len(entries))
	}

	for i, e := range entries {
		if e.Title == "" || e.KeyMessage == "" || e.VisualPrompt == "" {
			return nil, fmt.Errorf("%w: セクション%dに必須フィールドが欠けています", domain.ErrInvalidPlan, i+1)
		}
	}
	return entries, nil
}

// stripJSONFences は、モデルが付けがちな ```json フェンスを取り除きます。
func stripJSONFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func normalizePosition(s string) domain.TextPosition {
	switch domain.TextPosition(strings.ToLower(strings.TrimSpace(s))) {
	case domain.TextTop:
		return domain.TextTop
	case domain.TextBottom:
		return domain.TextBottom
	default:
		return domain.TextCenter
	}
}

func normalizeTone(s string) domain.TextTone {
	if domain.TextTone(strings.ToLower(strings.TrimSpace(s))) == domain.ToneDark {
		return domain.ToneDark
	}
	return domain.ToneLight
}
