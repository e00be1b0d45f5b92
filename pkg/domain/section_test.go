package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func buildTestPage(n int) *GeneratedDetailPage {
	page := &GeneratedDetailPage{ProductName: "テスト商品", Price: 45000}
	for i := 0; i < n; i++ {
		page.Sections = append(page.Sections, DetailSection{
			ID:        string(rune('a' + i)),
			Order:     i,
			LogicType: LogicHook,
			Scale:     100,
		})
	}
	return page
}

func sectionIDs(sections []DetailSection) []string {
	ids := make([]string, len(sections))
	for i, s := range sections {
		ids[i] = s.ID
	}
	return ids
}

func TestDetailSection_JSON(t *testing.T) {
	t.Run("セクションがJSONで往復できるのだ", func(t *testing.T) {
		sec := DetailSection{
			ID:           "sec-001",
			Order:        0,
			LogicType:    LogicSocialProof,
			LayoutSlot:   SlotHero,
			Title:        "후기로 증명된 선택",
			KeyMessage:   "구매자 98%가 만족한 무선 이어버드",
			VisualPrompt: "close-up studio shot of wireless earbuds",
			TextPosition: TextBottom,
			TextTone:     ToneLight,
			Scale:        100,
		}

		data, err := json.Marshal(sec)
		if err != nil {
			t.Fatalf("Marshal失敗なのだ: %v", err)
		}

		var decoded DetailSection
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Unmarshal失敗なのだ: %v", err)
		}

		if !reflect.DeepEqual(sec, decoded) {
			t.Errorf("変換前後でデータが一致しないのだ。期待: %+v, 実際: %+v", sec, decoded)
		}
	})
}

func TestGeneratedDetailPage_Reorder(t *testing.T) {
	t.Run("安定した挿入移動で他の相対順序が保たれるのだ", func(t *testing.T) {
		page := buildTestPage(5)
		if err := page.Reorder(0, 3); err != nil {
			t.Fatalf("Reorder失敗なのだ: %v", err)
		}

		got := sectionIDs(page.Sections)
		want := []string{"b", "c", "d", "a", "e"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("順序が違うのだ。期待: %v, 実際: %v", want, got)
		}
		if err := page.ValidateOrder(); err != nil {
			t.Errorf("Order値が順列になっていないのだ: %v", err)
		}
	})

	t.Run("後方から前方への移動もできるのだ", func(t *testing.T) {
		page := buildTestPage(5)
		if err := page.Reorder(4, 1); err != nil {
			t.Fatalf("Reorder失敗なのだ: %v", err)
		}

		got := sectionIDs(page.Sections)
		want := []string{"a", "e", "b", "c", "d"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("順序が違うのだ。期待: %v, 実際: %v", want, got)
		}
	})

	t.Run("範囲外のインデックスはエラーになるのだ", func(t *testing.T) {
		page := buildTestPage(3)
		if err := page.Reorder(0, 5); err == nil {
			t.Error("範囲外なのにエラーが返らないのだ")
		}
	})
}

func TestGeneratedDetailPage_VisibleSections(t *testing.T) {
	page := buildTestPage(4)
	page.Sections[1].Hidden = true

	visible := page.VisibleSections()
	if len(visible) != 3 {
		t.Fatalf("表示セクション数が違うのだ。期待: 3, 実際: %d", len(visible))
	}
	for _, s := range visible {
		if s.Hidden {
			t.Error("非表示セクションが含まれているのだ")
		}
	}
}

func TestGeneratedDetailPage_Clone(t *testing.T) {
	t.Run("クローンは元のページから独立しているのだ", func(t *testing.T) {
		page := buildTestPage(3)
		page.Thumbnail = &Thumbnail{ImageURL: "https://example.com/thumb.png"}

		cp := page.Clone()
		cp.Sections[0].ImageURL = "https://example.com/changed.png"
		cp.Thumbnail.ImageURL = "https://example.com/changed-thumb.png"

		if page.Sections[0].ImageURL != "" {
			t.Error("クローンの変更が元のセクションに波及しているのだ")
		}
		if page.Thumbnail.ImageURL != "https://example.com/thumb.png" {
			t.Error("クローンの変更が元のサムネイルに波及しているのだ")
		}
	})
}

func TestProductInput_Validate(t *testing.T) {
	valid := ProductInput{
		Name:            "무선 이어버드",
		ReferenceImages: []string{"data:image/png;base64,aGVsbG8="},
		PageLength:      LengthAuto,
	}

	t.Run("正常な入力は通るのだ", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Errorf("正常な入力でエラーが発生したのだ: %v", err)
		}
	})

	t.Run("商品名が空なら弾かれるのだ", func(t *testing.T) {
		in := valid
		in.Name = ""
		if err := in.Validate(); err == nil {
			t.Error("商品名なしでエラーが返らないのだ")
		}
	})

	t.Run("参照画像ゼロなら弾かれるのだ", func(t *testing.T) {
		in := valid
		in.ReferenceImages = nil
		if err := in.Validate(); err == nil {
			t.Error("参照画像なしでエラーが返らないのだ")
		}
	})

	t.Run("不正なページ長は弾かれるのだ", func(t *testing.T) {
		in := valid
		in.PageLength = "6"
		if err := in.Validate(); err == nil {
			t.Error("不正なページ長でエラーが返らないのだ")
		}
	})
}

func TestDecodeDataURI(t *testing.T) {
	t.Run("data URIからMIMEとバイナリを取り出せるのだ", func(t *testing.T) {
		mime, data, err := DecodeDataURI("data:image/png;base64,aGVsbG8=")
		if err != nil {
			t.Fatalf("デコード失敗なのだ: %v", err)
		}
		if mime != "image/png" {
			t.Errorf("MIMEタイプが違うのだ: %s", mime)
		}
		if string(data) != "hello" {
			t.Errorf("バイナリが違うのだ: %s", data)
		}
	})

	t.Run("往復変換で元に戻るのだ", func(t *testing.T) {
		uri := EncodeDataURI("image/jpeg", []byte{0xFF, 0xD8, 0xFF})
		mime, data, err := DecodeDataURI(uri)
		if err != nil {
			t.Fatalf("デコード失敗なのだ: %v", err)
		}
		if mime != "image/jpeg" || !reflect.DeepEqual(data, []byte{0xFF, 0xD8, 0xFF}) {
			t.Error("往復変換でデータが一致しないのだ")
		}
	})

	t.Run("不正な形式はエラーになるのだ", func(t *testing.T) {
		if _, _, err := DecodeDataURI("https://example.com/a.png"); err == nil {
			t.Error("URLなのにエラーが返らないのだ")
		}
	})
}
