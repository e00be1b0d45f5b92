// Package editor は、生成済み詳細ページに対する編集サーフェスです。
// すべての編集はページ全体のスナップショットを履歴に積んでから適用されるので、
// どの操作もUndo/Redoで行き来できるのだ。
package editor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-detail-kit/pkg/domain"
)

// 表示倍率の許容範囲（％）なのだ。
const (
	MinScale = 50
	MaxScale = 150
)

// Regenerator はセクション単発の画像再生成の抽象です。pkg/generator が実装します。
type Regenerator interface {
	GenerateSectionImage(ctx context.Context, visualPrompt string, input domain.ProductInput) (string, error)
}

// PageEditor は1枚の詳細ページを編集するステートフルなセッションです。
// 並行アクセスの調停は呼び出し側（セッション層）の責務です。
type PageEditor struct {
	page    *domain.GeneratedDetailPage
	history History
	regen   Regenerator
}

// NewPageEditor は page を編集対象とする PageEditor を生成します。
// page の所有権はエディタに移ります。
func NewPageEditor(page *domain.GeneratedDetailPage, regen Regenerator) *PageEditor {
	return &PageEditor{page: page, regen: regen}
}

// Page は現在の編集状態を返します。
func (e *PageEditor) Page() *domain.GeneratedDetailPage {
	return e.page
}

// ReplaceImage は指定セクションの画像参照を差し替えます。
func (e *PageEditor) ReplaceImage(sectionID, imageURL string) error {
	section := e.page.SectionByID(sectionID)
	if section == nil {
		return fmt.Errorf("セクションが見つかりません: %s", sectionID)
	}
	e.history.Push(e.page.Clone())
	section.ImageURL = imageURL
	section.IsGenerating = false
	return nil
}

// EditPrompt は指定セクションの視覚指示文を書き換えます。
// 画像は再生成されるまで古いままです。
func (e *PageEditor) EditPrompt(sectionID, visualPrompt string) error {
	section := e.page.SectionByID(sectionID)
	if section == nil {
		return fmt.Errorf("セクションが見つかりません: %s", sectionID)
	}
	e.history.Push(e.page.Clone())
	section.VisualPrompt = visualPrompt
	return nil
}

// EditCopy は指定セクションのコピー文言を書き換えます。空文字は「消去」として扱います。
func (e *PageEditor) EditCopy(sectionID, title, keyMessage, subMessage string) error {
	section := e.page.SectionByID(sectionID)
	if section == nil {
		return fmt.Errorf("セクションが見つかりません: %s", sectionID)
	}
	e.history.Push(e.page.Clone())
	section.Title = title
	section.KeyMessage = keyMessage
	section.SubMessage = subMessage
	return nil
}

// Reorder はセクションを from から to へ安定挿入で移動します。
func (e *PageEditor) Reorder(from, to int) error {
	snapshot := e.page.Clone()
	if err := e.page.Reorder(from, to); err != nil {
		return err
	}
	e.history.Push(snapshot)
	return nil
}

// ToggleVisibility は指定セクションの表示/非表示を反転します。
// 非表示はエクスポートから除外されるだけで、データは保持されます。
func (e *PageEditor) ToggleVisibility(sectionID string) error {
	section := e.page.SectionByID(sectionID)
	if section == nil {
		return fmt.Errorf("セクションが見つかりません: %s", sectionID)
	}
	e.history.Push(e.page.Clone())
	section.Hidden = !section.Hidden
	return nil
}

// Rescale は表示倍率（％）を設定します。範囲外の値は黙って収められます。
func (e *PageEditor) Rescale(sectionID string, scale int) error {
	section := e.page.SectionByID(sectionID)
	if section == nil {
		return fmt.Errorf("セクションが見つかりません: %s", sectionID)
	}
	if scale < MinScale {
		scale = MinScale
	}
	if scale > MaxScale {
		scale = MaxScale
	}
	e.history.Push(e.page.Clone())
	section.Scale = scale
	return nil
}

// Regenerate は指定セクションの画像を現在の視覚指示文で作り直します。
// 失敗した場合は旧画像を保持したままエラーを返し、履歴にも積みません。
func (e *PageEditor) Regenerate(ctx context.Context, sectionID string, input domain.ProductInput) error {
	if e.regen == nil {
		return fmt.Errorf("再生成が構成されていません")
	}
	section := e.page.SectionByID(sectionID)
	if section == nil {
		return fmt.Errorf("セクションが見つかりません: %s", sectionID)
	}

	snapshot := e.page.Clone()
	section.IsGenerating = true

	url, err := e.regen.GenerateSectionImage(ctx, section.VisualPrompt, input)
	section.IsGenerating = false
	if err != nil {
		slog.Warn("再生成に失敗したので旧画像を保持するのだ",
			"section_id", sectionID, "error", err)
		return err
	}

	e.history.Push(snapshot)
	section.ImageURL = url
	return nil
}

// Undo は直前の編集を取り消します。取り消すものがなければ false です。
func (e *PageEditor) Undo() bool {
	prev, ok := e.history.Undo(e.page)
	if !ok {
		return false
	}
	e.page = prev
	return true
}

// Redo は取り消した編集をやり直します。やり直すものがなければ false です。
func (e *PageEditor) Redo() bool {
	next, ok := e.history.Redo(e.page)
	if !ok {
		return false
	}
	e.page = next
	return true
}

// CanUndo / CanRedo はUI側のボタン活性制御用です。
func (e *PageEditor) CanUndo() bool { return e.history.CanUndo() }
func (e *PageEditor) CanRedo() bool { return e.history.CanRedo() }
