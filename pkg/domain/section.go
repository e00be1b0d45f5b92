package domain

import "fmt"

// LogicType は、セクションが担う訴求ロジックの役割を表す固定の列挙型です。
type LogicType string

const (
	LogicHook         LogicType = "hook"         // 注意を引くフック
	LogicSolution     LogicType = "solution"     // 課題解決の提示
	LogicClarity      LogicType = "clarity"      // スペック・仕様の明確化
	LogicSocialProof  LogicType = "socialProof"  // レビュー・社会的証明
	LogicService      LogicType = "service"      // 使い方・ハウツー
	LogicRiskReversal LogicType = "riskReversal" // 保証・リスク解消
	LogicBrandStory   LogicType = "brandStory"   // ブランドストーリー
	LogicComparison   LogicType = "comparison"   // 競合比較
)

// AllLogicTypes は定義済みの全役割リストです。バリデーション用に公開しています。
var AllLogicTypes = []LogicType{
	LogicHook, LogicSolution, LogicClarity, LogicSocialProof,
	LogicService, LogicRiskReversal, LogicBrandStory, LogicComparison,
}

// IsValid は既知の役割かどうかを返します。
func (lt LogicType) IsValid() bool {
	for _, t := range AllLogicTypes {
		if t == lt {
			return true
		}
	}
	return false
}

// LayoutSlot は、セクションのレイアウト上の意味（ヒーロー/特徴/クロージング）を表します。
// 表示順から推測するのではなく、生成時に確定させて保持するのだ。
// これにより、並べ替えてもレイアウト上の意味が勝手に変わらないのだよ。
type LayoutSlot string

const (
	SlotHero    LayoutSlot = "hero"
	SlotFeature LayoutSlot = "feature"
	SlotUsage   LayoutSlot = "usage"
)

// TextPosition はテキストオーバーレイの縦位置です。
type TextPosition string

const (
	TextTop    TextPosition = "top"
	TextCenter TextPosition = "center"
	TextBottom TextPosition = "bottom"
)

// TextTone はオーバーレイ文字色のコントラストモードです。
type TextTone string

const (
	ToneLight TextTone = "light" // 暗い画像向けの白文字
	ToneDark  TextTone = "dark"  // 明るい画像向けの黒文字
)

// DetailSection は詳細ページを構成する1つの物語単位です。
// 生成画像1枚と、その上に重ねるコピー文言を保持します。
type DetailSection struct {
	ID           string       `json:"id"`
	Order        int          `json:"order"`
	LogicType    LogicType    `json:"logic_type"`
	LayoutSlot   LayoutSlot   `json:"layout_slot"`
	Title        string       `json:"title"`
	KeyMessage   string       `json:"key_message"`           // 韓国語のメインコピー
	SubMessage   string       `json:"sub_message,omitempty"` // 補足コピー（任意）
	VisualPrompt string       `json:"visual_prompt"`         // 画像生成用の英語指示文
	ImageURL     string       `json:"image_url,omitempty"`   // 生成前は空
	IsGenerating bool         `json:"is_generating"`
	TextPosition TextPosition `json:"text_position"`
	TextTone     TextTone     `json:"text_tone"`
	Hidden       bool         `json:"hidden"`
	Scale        int          `json:"scale"` // 表示倍率（％）。保存画像そのものは変更しない
}

// Thumbnail は任意生成のサムネイル（1:1）です。
type Thumbnail struct {
	ImageURL string `json:"image_url"`
	Prompt   string `json:"prompt"`
}

// GeneratedDetailPage は生成済み詳細ページの集約ルートです。
// Sections の順序は表示順そのものであり、ユーザー操作で並べ替えられます。
type GeneratedDetailPage struct {
	ProductName  string          `json:"product_name"`
	Category     string          `json:"category,omitempty"`
	Price        int             `json:"price"`
	DiscountRate int             `json:"discount_rate"`
	Sections     []DetailSection `json:"sections"`
	Thumbnail    *Thumbnail      `json:"thumbnail,omitempty"`
}

// Clone はページ全体のディープコピーを返します。Undo/Redo のスナップショットに使います。
func (p *GeneratedDetailPage) Clone() *GeneratedDetailPage {
	cp := *p
	cp.Sections = make([]DetailSection, len(p.Sections))
	copy(cp.Sections, p.Sections)
	if p.Thumbnail != nil {
		t := *p.Thumbnail
		cp.Thumbnail = &t
	}
	return &cp
}

// VisibleSections は、非表示を除いた現在の表示順のセクション列を返します。
// 3種類のエクスポートはすべてこのリストを入力とします。
func (p *GeneratedDetailPage) VisibleSections() []DetailSection {
	visible := make([]DetailSection, 0, len(p.Sections))
	for _, s := range p.Sections {
		if !s.Hidden {
			visible = append(visible, s)
		}
	}
	return visible
}

// SectionByID は ID が一致するセクションへのポインタを返します。見つからなければ nil です。
func (p *GeneratedDetailPage) SectionByID(id string) *DetailSection {
	for i := range p.Sections {
		if p.Sections[i].ID == id {
			return &p.Sections[i]
		}
	}
	return nil
}

// Reorder は from の位置のセクションを to へ移動します。
// 入れ替えではなく安定した挿入移動で、他セクションの相対順序は保たれます。
func (p *GeneratedDetailPage) Reorder(from, to int) error {
	n := len(p.Sections)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("reorder: インデックスが範囲外です (from=%d, to=%d, len=%d)", from, to, n)
	}
	if from == to {
		return nil
	}
	moved := p.Sections[from]
	rest := append(p.Sections[:from:from], p.Sections[from+1:]...)
	sections := make([]DetailSection, 0, n)
	sections = append(sections, rest[:to]...)
	sections = append(sections, moved)
	sections = append(sections, rest[to:]...)
	p.Sections = sections
	p.renumber()
	return nil
}

// renumber は Order 値を位置インデックスの順列に揃えます。
func (p *GeneratedDetailPage) renumber() {
	for i := range p.Sections {
		p.Sections[i].Order = i
	}
}

// ValidateOrder は Order 値が位置インデックスの順列であることを検証します。
func (p *GeneratedDetailPage) ValidateOrder() error {
	for i, s := range p.Sections {
		if s.Order != i {
			return fmt.Errorf("order不変条件に違反しています: index=%d, order=%d", i, s.Order)
		}
	}
	return nil
}
