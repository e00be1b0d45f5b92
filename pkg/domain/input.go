package domain

import "fmt"

// PageLength は希望するセクション数です。auto の場合は価格とカテゴリから決めます。
type PageLength string

const (
	Length5    PageLength = "5"
	Length7    PageLength = "7"
	Length9    PageLength = "9"
	LengthAuto PageLength = "auto"
)

// ThumbnailStyle はサムネイル生成のスタイルモードです。
type ThumbnailStyle string

const (
	ThumbClean     ThumbnailStyle = "clean"
	ThumbLifestyle ThumbnailStyle = "lifestyle"
	ThumbCreative  ThumbnailStyle = "creative"
)

// MaxReferenceImages はフォームから受け付ける参照画像の上限です。
const MaxReferenceImages = 5

// ProductInput はフォーム側コラボレーターが検証済みで渡してくる商品メタデータです。
// ReferenceImages は data URI 形式のインライン画像を想定しています。
type ProductInput struct {
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	TargetAudience  string         `json:"target_audience"`
	Category        string         `json:"category"`
	Price           int            `json:"price"`
	DiscountRate    int            `json:"discount_rate"`
	PromotionText   string         `json:"promotion_text"`
	TargetGender    string         `json:"target_gender"`
	TargetAge       string         `json:"target_age"`
	ReferenceImages []string       `json:"reference_images"`
	PageLength      PageLength     `json:"page_length"`
	WithThumbnail   bool           `json:"with_thumbnail"`
	ThumbnailStyle  ThumbnailStyle `json:"thumbnail_style"`
	ShowModel       bool           `json:"show_model"` // サムネイルに手・モデルを登場させるか
}

// Validate はプランニング開始前の必須条件を検証します。
// 商品名と参照画像1枚以上がなければ、そもそも生成を始められないのだ。
func (in *ProductInput) Validate() error {
	if in.Name == "" {
		return fmt.Errorf("商品名が空です")
	}
	if len(in.ReferenceImages) == 0 {
		return fmt.Errorf("参照画像が1枚も指定されていません")
	}
	if len(in.ReferenceImages) > MaxReferenceImages {
		return fmt.Errorf("参照画像は最大%d枚までです: %d枚", MaxReferenceImages, len(in.ReferenceImages))
	}
	switch in.PageLength {
	case Length5, Length7, Length9, LengthAuto, "":
	default:
		return fmt.Errorf("不正なページ長です: %q", in.PageLength)
	}
	return nil
}
