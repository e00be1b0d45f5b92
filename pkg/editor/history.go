package editor

import "github.com/shouni/go-detail-kit/pkg/domain"

// MaxHistoryDepth はUndoスタックが保持するスナップショットの上限です。
// 古いものから黙って捨てられます。
const MaxHistoryDepth = 50

// History はページ全体のスナップショットによるUndo/Redoスタックです。
// 差分ではなくディープコピーを積む素朴な方式で、セクション数が高々9の
// この集約には十分なのだ。
type History struct {
	undo []*domain.GeneratedDetailPage
	redo []*domain.GeneratedDetailPage
}

// Push は編集前のスナップショットをUndoスタックに積み、Redoスタックを破棄します。
// 新しい編集が入った時点で「やり直し先」の未来は無効になるのだ。
func (h *History) Push(snapshot *domain.GeneratedDetailPage) {
	h.undo = append(h.undo, snapshot)
	if len(h.undo) > MaxHistoryDepth {
		h.undo = h.undo[len(h.undo)-MaxHistoryDepth:]
	}
	h.redo = nil
}

// Undo は直前のスナップショットを返し、現在の状態をRedoスタックへ退避します。
// 履歴が空なら (nil, false) を返します。
func (h *History) Undo(current *domain.GeneratedDetailPage) (*domain.GeneratedDetailPage, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	last := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current.Clone())
	return last, true
}

// Redo はUndoで戻した状態を1段進めます。進める先がなければ (nil, false) です。
func (h *History) Redo(current *domain.GeneratedDetailPage) (*domain.GeneratedDetailPage, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	last := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current.Clone())
	return last, true
}

// CanUndo はUndo可能かどうかを返します。
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo はRedo可能かどうかを返します。
func (h *History) CanRedo() bool { return len(h.redo) > 0 }
