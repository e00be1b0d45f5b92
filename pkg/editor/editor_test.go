package editor

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/shouni/go-detail-kit/pkg/domain"
)

// fakeRegen は固定URLまたはエラーを返すテスト用の再生成実装です。
type fakeRegen struct {
	url   string
	err   error
	calls int
}

func (f *fakeRegen) GenerateSectionImage(_ context.Context, _ string, _ domain.ProductInput) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func testPage() *domain.GeneratedDetailPage {
	return &domain.GeneratedDetailPage{
		ProductName: "무선 이어버드",
		Price:       45000,
		Sections: []domain.DetailSection{
			{ID: "a", Order: 0, LogicType: domain.LogicHook, KeyMessage: "한 번 들으면", ImageURL: "https://cdn.example.com/a.png", VisualPrompt: "earbuds on marble", Scale: 100},
			{ID: "b", Order: 1, LogicType: domain.LogicSolution, KeyMessage: "노이즈 캔슬링", ImageURL: "https://cdn.example.com/b.png", VisualPrompt: "commuter scene", Scale: 100},
			{ID: "c", Order: 2, LogicType: domain.LogicClarity, KeyMessage: "스펙 한눈에", ImageURL: "https://cdn.example.com/c.png", VisualPrompt: "spec flat lay", Scale: 100},
		},
	}
}

func sectionIDs(page *domain.GeneratedDetailPage) []string {
	ids := make([]string, len(page.Sections))
	for i, s := range page.Sections {
		ids[i] = s.ID
	}
	return ids
}

func TestPageEditor_EditOperations(t *testing.T) {
	t.Run("画像差し替えができるのだ", func(t *testing.T) {
		e := NewPageEditor(testPage(), nil)
		if err := e.ReplaceImage("b", "https://cdn.example.com/new.png"); err != nil {
			t.Fatalf("ReplaceImage: %v", err)
		}
		if got := e.Page().SectionByID("b").ImageURL; got != "https://cdn.example.com/new.png" {
			t.Errorf("ImageURL = %s", got)
		}
	})

	t.Run("存在しないIDはエラーで状態も履歴も変わらないのだ", func(t *testing.T) {
		e := NewPageEditor(testPage(), nil)
		if err := e.ReplaceImage("zzz", "x"); err == nil {
			t.Fatal("エラーが返るべき")
		}
		if e.CanUndo() {
			t.Error("失敗した操作が履歴に積まれている")
		}
	})

	t.Run("プロンプト編集は画像を変えないのだ", func(t *testing.T) {
		e := NewPageEditor(testPage(), nil)
		if err := e.EditPrompt("a", "earbuds floating in water"); err != nil {
			t.Fatalf("EditPrompt: %v", err)
		}
		section := e.Page().SectionByID("a")
		if section.VisualPrompt != "earbuds floating in water" {
			t.Errorf("VisualPrompt = %s", section.VisualPrompt)
		}
		if section.ImageURL != "https://cdn.example.com/a.png" {
			t.Error("プロンプト編集で画像まで変わっている")
		}
	})

	t.Run("並べ替えは安定挿入でorderが振り直されるのだ", func(t *testing.T) {
		e := NewPageEditor(testPage(), nil)
		if err := e.Reorder(0, 2); err != nil {
			t.Fatalf("Reorder: %v", err)
		}
		want := []string{"b", "c", "a"}
		if got := sectionIDs(e.Page()); !reflect.DeepEqual(got, want) {
			t.Errorf("order = %v, want %v", got, want)
		}
		if err := e.Page().ValidateOrder(); err != nil {
			t.Errorf("ValidateOrder: %v", err)
		}
	})

	t.Run("範囲外の並べ替えはエラーで履歴に積まれないのだ", func(t *testing.T) {
		e := NewPageEditor(testPage(), nil)
		if err := e.Reorder(0, 9); err == nil {
			t.Fatal("エラーが返るべき")
		}
		if e.CanUndo() {
			t.Error("失敗した並べ替えが履歴に積まれている")
		}
	})

	t.Run("表示切り替えはトグルでデータを消さないのだ", func(t *testing.T) {
		e := NewPageEditor(testPage(), nil)
		if err := e.ToggleVisibility("b"); err != nil {
			t.Fatalf("ToggleVisibility: %v", err)
		}
		if !e.Page().SectionByID("b").Hidden {
			t.Error("非表示になっていない")
		}
		if err := e.ToggleVisibility("b"); err != nil {
			t.Fatalf("ToggleVisibility: %v", err)
		}
		section := e.Page().SectionByID("b")
		if section.Hidden {
			t.Error("再表示されていない")
		}
		if section.KeyMessage != "노이즈 캔슬링" {
			t.Error("トグルでコピー文言が失われている")
		}
	})

	t.Run("倍率は範囲内に収められるのだ", func(t *testing.T) {
		cases := []struct {
			in   int
			want int
		}{
			{0, 50},
			{-10, 50},
			{49, 50},
			{50, 50},
			{100, 100},
			{150, 150},
			{151, 150},
			{999, 150},
		}
		for _, tc := range cases {
			e := NewPageEditor(testPage(), nil)
			if err := e.Rescale("a", tc.in); err != nil {
				t.Fatalf("Rescale(%d): %v", tc.in, err)
			}
			if got := e.Page().SectionByID("a").Scale; got != tc.want {
				t.Errorf("Rescale(%d) → Scale = %d, want %d", tc.in, got, tc.want)
			}
		}
	})
}

func TestPageEditor_Regenerate(t *testing.T) {
	t.Run("成功したら新URLに置き換わるのだ", func(t *testing.T) {
		regen := &fakeRegen{url: "https://cdn.example.com/regen.png"}
		e := NewPageEditor(testPage(), regen)

		if err := e.Regenerate(context.Background(), "a", domain.ProductInput{Name: "무선 이어버드"}); err != nil {
			t.Fatalf("Regenerate: %v", err)
		}
		section := e.Page().SectionByID("a")
		if section.ImageURL != "https://cdn.example.com/regen.png" {
			t.Errorf("ImageURL = %s", section.ImageURL)
		}
		if section.IsGenerating {
			t.Error("生成中フラグが下りていない")
		}
	})

	t.Run("失敗したら旧画像を保持して履歴にも積まないのだ", func(t *testing.T) {
		regen := &fakeRegen{err: fmt.Errorf("upstream down")}
		e := NewPageEditor(testPage(), regen)

		if err := e.Regenerate(context.Background(), "a", domain.ProductInput{Name: "무선 이어버드"}); err == nil {
			t.Fatal("エラーが返るべき")
		}
		section := e.Page().SectionByID("a")
		if section.ImageURL != "https://cdn.example.com/a.png" {
			t.Errorf("旧画像が失われている: %s", section.ImageURL)
		}
		if section.IsGenerating {
			t.Error("失敗後も生成中フラグが立ったまま")
		}
		if e.CanUndo() {
			t.Error("失敗した再生成が履歴に積まれている")
		}
	})

	t.Run("成功した再生成はUndoで旧画像に戻るのだ", func(t *testing.T) {
		regen := &fakeRegen{url: "https://cdn.example.com/regen.png"}
		e := NewPageEditor(testPage(), regen)

		if err := e.Regenerate(context.Background(), "a", domain.ProductInput{Name: "무선 이어버드"}); err != nil {
			t.Fatalf("Regenerate: %v", err)
		}
		if !e.Undo() {
			t.Fatal("Undoできるべき")
		}
		if got := e.Page().SectionByID("a").ImageURL; got != "https://cdn.example.com/a.png" {
			t.Errorf("Undo後のImageURL = %s", got)
		}
	})
}

func TestPageEditor_UndoRedo(t *testing.T) {
	t.Run("UndoとRedoで状態が完全に往復するのだ", func(t *testing.T) {
		e := NewPageEditor(testPage(), nil)
		original := e.Page().Clone()

		if err := e.Reorder(0, 2); err != nil {
			t.Fatalf("Reorder: %v", err)
		}
		if err := e.ToggleVisibility("b"); err != nil {
			t.Fatalf("ToggleVisibility: %v", err)
		}
		edited := e.Page().Clone()

		if !e.Undo() || !e.Undo() {
			t.Fatal("2回Undoできるべき")
		}
		if !reflect.DeepEqual(e.Page(), original) {
			t.Errorf("Undo後の状態が元と一致しない: %+v", e.Page())
		}

		if !e.Redo() || !e.Redo() {
			t.Fatal("2回Redoできるべき")
		}
		if !reflect.DeepEqual(e.Page(), edited) {
			t.Errorf("Redo後の状態が編集後と一致しない: %+v", e.Page())
		}
	})

	t.Run("空の履歴ではUndoもRedoも何もしないのだ", func(t *testing.T) {
		e := NewPageEditor(testPage(), nil)
		if e.Undo() {
			t.Error("空のUndoがtrueを返した")
		}
		if e.Redo() {
			t.Error("空のRedoがtrueを返した")
		}
	})

	t.Run("Undo後に新しい編集をするとRedoは破棄されるのだ", func(t *testing.T) {
		e := NewPageEditor(testPage(), nil)
		if err := e.ToggleVisibility("a"); err != nil {
			t.Fatalf("ToggleVisibility: %v", err)
		}
		if !e.Undo() {
			t.Fatal("Undoできるべき")
		}
		if err := e.Rescale("a", 120); err != nil {
			t.Fatalf("Rescale: %v", err)
		}
		if e.CanRedo() {
			t.Error("新しい編集後もRedoが残っている")
		}
	})

	t.Run("履歴は上限を超えると古いものから捨てられるのだ", func(t *testing.T) {
		e := NewPageEditor(testPage(), nil)
		for i := 0; i < MaxHistoryDepth+10; i++ {
			scale := 50 + (i % 100)
			if err := e.Rescale("a", scale); err != nil {
				t.Fatalf("Rescale: %v", err)
			}
		}
		undos := 0
		for e.Undo() {
			undos++
		}
		if undos != MaxHistoryDepth {
			t.Errorf("undo可能回数 = %d, want %d", undos, MaxHistoryDepth)
		}
	})
}
