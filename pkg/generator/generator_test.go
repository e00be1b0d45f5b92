package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shouni/go-detail-kit/pkg/domain"
)

// fakeImageGen はプロンプト内容に応じて成否を切り替えるスタブです。
type fakeImageGen struct {
	mu       sync.Mutex
	calls    int
	refCount []int
	failOn   func(prompt string) error
}

func (f *fakeImageGen) GenerateImage(_ context.Context, req domain.ImageRequest) (*domain.ImageResult, error) {
	f.mu.Lock()
	f.calls++
	f.refCount = append(f.refCount, len(req.References))
	f.mu.Unlock()

	if f.failOn != nil {
		if err := f.failOn(req.Prompt); err != nil {
			return nil, err
		}
	}
	return &domain.ImageResult{Data: []byte(req.Prompt), MimeType: "image/png"}, nil
}

// passthroughPersister は data URI をそのまま返す永続化スタブです。
type passthroughPersister struct{}

func (passthroughPersister) Persist(_ context.Context, image string) (string, error) {
	return image, nil
}

// failingPersister はアップロード失敗を模倣します。
type failingPersister struct{}

func (failingPersister) Persist(_ context.Context, _ string) (string, error) {
	return "", errors.New("upload failed")
}

func fastConfig() Config {
	return Config{
		CallTimeout:  5 * time.Second,
		RateInterval: time.Millisecond,
		Burst:        10,
	}
}

func plannedSections(n int) []domain.DetailSection {
	sections := make([]domain.DetailSection, n)
	for i := range sections {
		sections[i] = domain.DetailSection{
			ID:           fmt.Sprintf("sec-%d", i),
			Order:        i,
			LogicType:    domain.LogicSolution,
			VisualPrompt: fmt.Sprintf("scene %d", i),
			Scale:        100,
		}
	}
	return sections
}

func generatorInput(withThumb bool) domain.ProductInput {
	return domain.ProductInput{
		Name:            "무선 이어버드",
		Price:           45000,
		Category:        "digital/IT",
		WithThumbnail:   withThumb,
		ThumbnailStyle:  domain.ThumbClean,
		ReferenceImages: []string{domain.EncodeDataURI("image/png", []byte("ref1"))},
	}
}

func TestPageGenerator_GeneratePage(t *testing.T) {
	t.Run("全セクションが成功してプラン順のまま返るのだ", func(t *testing.T) {
		gen := &fakeImageGen{}
		pg := New(gen, passthroughPersister{}, fastConfig())

		page, err := pg.GeneratePage(context.Background(), generatorInput(false), plannedSections(5), nil)
		if err != nil {
			t.Fatalf("GeneratePage失敗なのだ: %v", err)
		}
		if len(page.Sections) != 5 {
			t.Fatalf("セクション数が違うのだ: %d", len(page.Sections))
		}
		for i, s := range page.Sections {
			if s.ID != fmt.Sprintf("sec-%d", i) {
				t.Errorf("位置%dの並びが完了順に引きずられているのだ: %s", i, s.ID)
			}
			if s.ImageURL == "" || s.IsGenerating {
				t.Errorf("位置%dが未決着のまま返っているのだ", i)
			}
			// fakeはプロンプトをそのまま画像データにするので、自分のシーンが入っているはず
			_, data, err := domain.DecodeDataURI(s.ImageURL)
			if err != nil {
				t.Fatalf("位置%dのdata URIが壊れているのだ: %v", i, err)
			}
			if !strings.Contains(string(data), fmt.Sprintf("scene %d", i)) {
				t.Errorf("位置%dに別セクションの画像が入っているのだ: %s", i, data)
			}
		}
	})

	t.Run("一部の失敗はプレースホルダーで決着してバッチは成功するのだ", func(t *testing.T) {
		gen := &fakeImageGen{failOn: func(prompt string) error {
			if strings.Contains(prompt, "scene 1") || strings.Contains(prompt, "scene 3") {
				return errors.New("model error")
			}
			return nil
		}}
		pg := New(gen, passthroughPersister{}, fastConfig())

		page, err := pg.GeneratePage(context.Background(), generatorInput(false), plannedSections(5), nil)
		if err != nil {
			t.Fatalf("個別失敗でバッチ全体が失敗したのだ: %v", err)
		}

		placeholder := PlaceholderDataURI()
		var placeholders int
		for _, s := range page.Sections {
			if s.IsGenerating {
				t.Errorf("セクション%sが未決着なのだ", s.ID)
			}
			if s.ImageURL == placeholder {
				placeholders++
			}
		}
		if placeholders != 2 {
			t.Errorf("プレースホルダー数が違うのだ。期待: 2, 実際: %d", placeholders)
		}
	})

	t.Run("クォータ切れだけはバッチ全体を中断させるのだ", func(t *testing.T) {
		gen := &fakeImageGen{failOn: func(prompt string) error {
			if strings.Contains(prompt, "scene 2") {
				return fmt.Errorf("api: %w", domain.ErrQuotaExhausted)
			}
			return nil
		}}
		pg := New(gen, passthroughPersister{}, fastConfig())

		page, err := pg.GeneratePage(context.Background(), generatorInput(false), plannedSections(5), nil)
		if !errors.Is(err, domain.ErrQuotaExhausted) {
			t.Errorf("ErrQuotaExhaustedが返らないのだ: %v", err)
		}
		if page != nil {
			t.Error("中断したのにページが返っているのだ")
		}
	})

	t.Run("サムネイルの失敗はサムネイルなしで決着するのだ", func(t *testing.T) {
		gen := &fakeImageGen{failOn: func(prompt string) error {
			if strings.Contains(prompt, "thumbnail") {
				return errors.New("model error")
			}
			return nil
		}}
		pg := New(gen, passthroughPersister{}, fastConfig())

		page, err := pg.GeneratePage(context.Background(), generatorInput(true), plannedSections(3), nil)
		if err != nil {
			t.Fatalf("サムネイル失敗でバッチが失敗したのだ: %v", err)
		}
		if page.Thumbnail != nil {
			t.Error("失敗したのにサムネイルが入っているのだ")
		}
		for _, s := range page.Sections {
			if s.ImageURL == "" {
				t.Error("セクション側が巻き添えになっているのだ")
			}
		}
	})

	t.Run("サムネイル要求ありなら1:1で一緒に生成されるのだ", func(t *testing.T) {
		gen := &fakeImageGen{}
		pg := New(gen, passthroughPersister{}, fastConfig())

		page, err := pg.GeneratePage(context.Background(), generatorInput(true), plannedSections(3), nil)
		if err != nil {
			t.Fatalf("GeneratePage失敗なのだ: %v", err)
		}
		if page.Thumbnail == nil || page.Thumbnail.ImageURL == "" {
			t.Fatal("サムネイルが生成されていないのだ")
		}
		if page.Thumbnail.Prompt == "" {
			t.Error("サムネイルのプロンプトが保存されていないのだ")
		}
		if gen.calls != 4 {
			t.Errorf("呼び出し回数が違うのだ。期待: 4, 実際: %d", gen.calls)
		}
	})

	t.Run("進捗コールバックが節目ごとに呼ばれるのだ", func(t *testing.T) {
		gen := &fakeImageGen{}
		pg := New(gen, passthroughPersister{}, fastConfig())

		var mu sync.Mutex
		var stages []Stage
		progress := func(s Stage) {
			mu.Lock()
			stages = append(stages, s)
			mu.Unlock()
		}

		if _, err := pg.GeneratePage(context.Background(), generatorInput(false), plannedSections(3), progress); err != nil {
			t.Fatalf("GeneratePage失敗なのだ: %v", err)
		}

		want := []Stage{StagePlanCompleted, StageGenerationStarted, StageGenerationCompleted}
		if len(stages) != len(want) {
			t.Fatalf("進捗の回数が違うのだ: %v", stages)
		}
		for i := range want {
			if stages[i] != want[i] {
				t.Errorf("進捗%dが違うのだ。期待: %s, 実際: %s", i, want[i], stages[i])
			}
		}
	})

	t.Run("永続化に失敗してもインラインのまま成功するのだ", func(t *testing.T) {
		gen := &fakeImageGen{}
		pg := New(gen, failingPersister{}, fastConfig())

		page, err := pg.GeneratePage(context.Background(), generatorInput(false), plannedSections(2), nil)
		if err != nil {
			t.Fatalf("永続化失敗が伝播しているのだ: %v", err)
		}
		for _, s := range page.Sections {
			if !domain.IsDataURI(s.ImageURL) {
				t.Errorf("インラインにフォールバックしていないのだ: %s", s.ImageURL)
			}
		}
	})
}

func TestCollectReferences(t *testing.T) {
	dataURI := func(s string) string { return domain.EncodeDataURI("image/png", []byte(s)) }

	t.Run("インライン画像だけを最大3枚まで集めるのだ", func(t *testing.T) {
		refs := collectReferences([]string{
			dataURI("a"),
			"https://example.com/remote.png", // リモートは添付不可
			dataURI("b"),
			dataURI("c"),
			dataURI("d"),
		})
		if len(refs) != MaxAttachedReferences {
			t.Fatalf("参照数が違うのだ。期待: %d, 実際: %d", MaxAttachedReferences, len(refs))
		}
	})

	t.Run("全部リモートなら空になるのだ", func(t *testing.T) {
		refs := collectReferences([]string{"https://example.com/a.png"})
		if len(refs) != 0 {
			t.Errorf("リモートURLが添付されているのだ: %d", len(refs))
		}
	})
}

func TestGenerateSectionImage(t *testing.T) {
	t.Run("再生成はプライマリ参照1枚だけで実行するのだ", func(t *testing.T) {
		gen := &fakeImageGen{}
		pg := New(gen, passthroughPersister{}, fastConfig())

		in := generatorInput(false)
		in.ReferenceImages = []string{
			domain.EncodeDataURI("image/png", []byte("a")),
			domain.EncodeDataURI("image/png", []byte("b")),
		}

		url, err := pg.GenerateSectionImage(context.Background(), "new scene", in)
		if err != nil {
			t.Fatalf("再生成失敗なのだ: %v", err)
		}
		if url == "" {
			t.Error("URLが空なのだ")
		}
		if gen.refCount[0] != 1 {
			t.Errorf("参照枚数が違うのだ。期待: 1, 実際: %d", gen.refCount[0])
		}
	})

	t.Run("失敗時はエラーを返して呼び出し側が旧画像を保持するのだ", func(t *testing.T) {
		gen := &fakeImageGen{failOn: func(string) error { return errors.New("model error") }}
		pg := New(gen, passthroughPersister{}, fastConfig())

		if _, err := pg.GenerateSectionImage(context.Background(), "scene", generatorInput(false)); err == nil {
			t.Error("失敗なのにエラーが返らないのだ")
		}
	})
}
