// Package server は、編集サーフェス向けのHTTP APIを提供します。
// ページはセッションとしてメモリ上に保持され、一定時間操作がなければ破棄されます。
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/shouni/go-detail-kit/pkg/domain"
	"github.com/shouni/go-detail-kit/pkg/editor"
	"github.com/shouni/go-detail-kit/pkg/export"
	"github.com/shouni/go-detail-kit/pkg/generator"
)

// セッションの生存期間なのだ。操作があるたびに延長される。
const (
	sessionTTL      = 2 * time.Hour
	cleanupInterval = 30 * time.Minute
)

// SectionPlanner は商品入力からセクション構成を設計する抽象です。
type SectionPlanner interface {
	Plan(ctx context.Context, input domain.ProductInput) ([]domain.DetailSection, error)
}

// PageBuilder はページ一括生成とセクション単発再生成の抽象です。
type PageBuilder interface {
	GeneratePage(ctx context.Context, input domain.ProductInput, sections []domain.DetailSection, progress generator.ProgressFunc) (*domain.GeneratedDetailPage, error)
	GenerateSectionImage(ctx context.Context, visualPrompt string, input domain.ProductInput) (string, error)
}

// session は1枚のページに対する編集セッションです。
// エディタ自体は並行安全ではないので、ここで直列化します。
type session struct {
	mu     sync.Mutex
	editor *editor.PageEditor
	input  domain.ProductInput
}

// Server は編集サーフェスのHTTPサーバーです。
type Server struct {
	planner  SectionPlanner
	builder  PageBuilder
	fetcher  export.ImageFetcher
	fontPath string

	sessions *cache.Cache
	engine   *gin.Engine
}

// New は Server を生成し、ルーティングを登録します。
func New(planner SectionPlanner, builder PageBuilder, fetcher export.ImageFetcher, fontPath string) *Server {
	s := &Server{
		planner:  planner,
		builder:  builder,
		fetcher:  fetcher,
		fontPath: fontPath,
		sessions: cache.New(sessionTTL, cleanupInterval),
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.Default())

	api := engine.Group("/api")
	{
		api.POST("/pages", s.handleCreatePage)
		api.GET("/pages/:id", s.handleGetPage)

		api.POST("/pages/:id/undo", s.handleUndo)
		api.POST("/pages/:id/redo", s.handleRedo)
		api.POST("/pages/:id/reorder", s.handleReorder)

		api.PUT("/pages/:id/sections/:sid/image", s.handleReplaceImage)
		api.PUT("/pages/:id/sections/:sid/prompt", s.handleEditPrompt)
		api.PUT("/pages/:id/sections/:sid/copy", s.handleEditCopy)
		api.PUT("/pages/:id/sections/:sid/scale", s.handleRescale)
		api.POST("/pages/:id/sections/:sid/toggle", s.handleToggleVisibility)
		api.POST("/pages/:id/sections/:sid/regenerate", s.handleRegenerate)

		api.GET("/pages/:id/export/markup", s.handleExportMarkup)
		api.GET("/pages/:id/export/bundle", s.handleExportBundle)
		api.GET("/pages/:id/export/raster", s.handleExportRaster)
	}

	s.engine = engine
	return s
}

// Handler はテストや埋め込み用に http.Handler を公開します。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run はサーバーを起動します。ブロックします。
func (s *Server) Run(port int) error {
	return s.engine.Run(fmt.Sprintf(":%d", port))
}

// lookup はセッションを取り出し、TTLを延長します。
func (s *Server) lookup(id string) (*session, bool) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, false
	}
	s.sessions.Set(id, v, sessionTTL)
	return v.(*session), true
}

func (s *Server) storeSession(sess *session) string {
	id := uuid.NewString()
	s.sessions.Set(id, sess, sessionTTL)
	return id
}
