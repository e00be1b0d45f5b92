package store

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/shouni/go-detail-kit/pkg/domain"
)

// recordingWriter は書き込みを記録するスタブです。
type recordingWriter struct {
	writes int
	err    error
}

func (w *recordingWriter) Write(_ context.Context, name string, _ []byte, _ string) (string, error) {
	w.writes++
	if w.err != nil {
		return "", w.err
	}
	return "https://cdn.example.com/" + name, nil
}

func TestStore_Persist(t *testing.T) {
	ctx := context.Background()
	inline := domain.EncodeDataURI("image/png", []byte("image-bytes"))

	t.Run("インライン画像をアップロードしてURLを返すのだ", func(t *testing.T) {
		w := &recordingWriter{}
		url, err := New(w).Persist(ctx, inline)
		if err != nil {
			t.Fatalf("Persist失敗なのだ: %v", err)
		}
		if !strings.HasPrefix(url, "https://cdn.example.com/sections/") {
			t.Errorf("URLが違うのだ: %s", url)
		}
		if !strings.HasSuffix(url, ".png") {
			t.Errorf("拡張子が違うのだ: %s", url)
		}
	})

	t.Run("リモートURLは冪等にそのまま返すのだ", func(t *testing.T) {
		w := &recordingWriter{}
		url, err := New(w).Persist(ctx, "https://example.com/already.png")
		if err != nil {
			t.Fatalf("Persist失敗なのだ: %v", err)
		}
		if url != "https://example.com/already.png" {
			t.Errorf("URLが変わっているのだ: %s", url)
		}
		if w.writes != 0 {
			t.Error("no-opのはずなのに書き込みが走っているのだ")
		}
	})

	t.Run("同じバイナリの二重アップロードはキャッシュで抑止するのだ", func(t *testing.T) {
		w := &recordingWriter{}
		s := New(w)

		first, _ := s.Persist(ctx, inline)
		second, _ := s.Persist(ctx, inline)

		if first != second {
			t.Errorf("同一データで違うURLが返ったのだ: %s vs %s", first, second)
		}
		if w.writes != 1 {
			t.Errorf("書き込み回数が違うのだ。期待: 1, 実際: %d", w.writes)
		}
	})

	t.Run("アップロード失敗時はインラインをそのまま返すのだ", func(t *testing.T) {
		w := &recordingWriter{err: errors.New("bucket unavailable")}
		url, err := New(w).Persist(ctx, inline)
		if err != nil {
			t.Fatalf("フォールバック契約に反してエラーが返ったのだ: %v", err)
		}
		if url != inline {
			t.Errorf("インラインのまま返っていないのだ: %s", url)
		}
	})

	t.Run("解釈できない入力もそのまま返すのだ", func(t *testing.T) {
		w := &recordingWriter{}
		url, err := New(w).Persist(ctx, "not-an-image")
		if err != nil {
			t.Fatalf("エラーが返ったのだ: %v", err)
		}
		if url != "not-an-image" {
			t.Errorf("入力が変わっているのだ: %s", url)
		}
	})
}

func TestLocalWriter_Write(t *testing.T) {
	dir := t.TempDir()
	w := NewLocalWriter(dir)

	path, err := w.Write(context.Background(), "sections/abc.png", []byte("data"), "image/png")
	if err != nil {
		t.Fatalf("Write失敗なのだ: %v", err)
	}

	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("保存ファイルが読めないのだ: %v", err)
	}
	if string(saved) != "data" {
		t.Errorf("内容が違うのだ: %s", saved)
	}
}
