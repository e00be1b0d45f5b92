package planner

import (
	"fmt"
	"strings"

	"github.com/shouni/go-detail-kit/pkg/domain"
)

// planSystemPrompt はプラン生成呼び出しの役割定義です。
// コピーは韓国語、画像指示は英語という言語の分担をここで固定します。
const planSystemPrompt = `You are a senior Korean e-commerce detail page copywriter and art director.
You write persuasive marketing copy for Coupang and Naver Smart Store detail pages.
All customer-facing copy (title, key_message, sub_message) MUST be written in natural Korean.
All visual_prompt values MUST be written in English, as instructions for an image generation model.
You MUST respond with a single JSON array and nothing else.`

// roleDirectives は役割ごとのコピーライティング指示です。
var roleDirectives = map[domain.LogicType]string{
	domain.LogicHook:         "a scroll-stopping emotional hook that names the customer's desire or pain",
	domain.LogicSolution:     "how this product solves the problem, benefit-first",
	domain.LogicClarity:      "concrete specs, dimensions, materials or composition, stated plainly",
	domain.LogicSocialProof:  "a believable customer-voice testimonial or review summary",
	domain.LogicService:      "a simple how-to-use or usage-scene walkthrough",
	domain.LogicRiskReversal: "guarantees, exchange/return policy, quality assurance that removes purchase anxiety",
	domain.LogicBrandStory:   "the brand's philosophy and why it made this product",
	domain.LogicComparison:   "an honest comparison against generic alternatives, without naming competitors",
}

// BuildPlanPrompt は、商品情報と役割シーケンスから構造化プラン要求の本文を組み立てます。
func BuildPlanPrompt(input domain.ProductInput, roles []domain.LogicType) string {
	var b strings.Builder

	b.WriteString("# PRODUCT\n")
	fmt.Fprintf(&b, "- name: %s\n", input.Name)
	if input.Description != "" {
		fmt.Fprintf(&b, "- description: %s\n", input.Description)
	}
	if input.Category != "" {
		fmt.Fprintf(&b, "- category: %s\n", input.Category)
	}
	fmt.Fprintf(&b, "- price: %s KRW\n", formatPrice(input.Price))
	if input.DiscountRate > 0 {
		fmt.Fprintf(&b, "- discount: %d%%\n", input.DiscountRate)
	}
	if input.PromotionText != "" {
		fmt.Fprintf(&b, "- promotion: %s\n", input.PromotionText)
	}
	if input.TargetAudience != "" {
		fmt.Fprintf(&b, "- target audience: %s\n", input.TargetAudience)
	}
	if input.TargetGender != "" || input.TargetAge != "" {
		fmt.Fprintf(&b, "- target demographic: %s %s\n", input.TargetGender, input.TargetAge)
	}

	b.WriteString("\n# TASK\n")
	fmt.Fprintf(&b, "Plan a %d-section vertical detail page. Produce EXACTLY %d entries, one per section, in this exact order:\n", len(roles), len(roles))
	for i, role := range roles {
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, role, roleDirectives[role])
	}

	b.WriteString(`
# OUTPUT FORMAT
Respond with a JSON array only. Each element:
{
  "logic_type": "<the role for this section, copied verbatim from the list above>",
  "title": "<short Korean section headline>",
  "key_message": "<one-sentence Korean main copy>",
  "sub_message": "<optional shorter Korean supporting line, may be empty>",
  "visual_prompt": "<English scene description for an image generation model, referencing the real product>",
  "text_position": "<top|center|bottom, where overlay copy should sit so it does not cover the product>",
  "text_tone": "<light|dark, light when the described scene is dark, dark when it is bright>"
}
No markdown fences, no commentary, no trailing text.
`)

	return b.String()
}

// thumbnailStyleDirectives はサムネイルのスタイルモードごとの演出指示です。
var thumbnailStyleDirectives = map[domain.ThumbnailStyle]string{
	domain.ThumbClean:     "clean studio product shot, seamless solid background, soft even lighting, centered composition",
	domain.ThumbLifestyle: "warm lifestyle scene, product in a natural usage context, shallow depth of field",
	domain.ThumbCreative:  "bold creative composition, dramatic lighting, striking color contrast, editorial feel",
}

// BuildThumbnailPrompt は1:1サムネイル生成用のプロンプトを組み立てます。
func BuildThumbnailPrompt(input domain.ProductInput) string {
	styleDirective, ok := thumbnailStyleDirectives[input.ThumbnailStyle]
	if !ok {
		styleDirective = thumbnailStyleDirectives[domain.ThumbClean]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Square e-commerce thumbnail photograph of the product %q. ", input.Name)
	b.WriteString(styleDirective)
	b.WriteString(". The product must match the reference image exactly.")
	if input.ShowModel {
		b.WriteString(" A hand or partial model may hold or present the product naturally.")
	} else {
		b.WriteString(" No people, no hands, product only.")
	}
	return b.String()
}
