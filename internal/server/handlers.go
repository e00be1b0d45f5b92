package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shouni/go-detail-kit/pkg/domain"
	"github.com/shouni/go-detail-kit/pkg/editor"
	"github.com/shouni/go-detail-kit/pkg/export"
)

// pageResponse はセッションIDつきのページ表現です。
type pageResponse struct {
	PageID  string                      `json:"page_id"`
	Page    *domain.GeneratedDetailPage `json:"page"`
	CanUndo bool                        `json:"can_undo"`
	CanRedo bool                        `json:"can_redo"`
}

func (s *Server) respondPage(c *gin.Context, id string, sess *session) {
	c.JSON(http.StatusOK, pageResponse{
		PageID:  id,
		Page:    sess.editor.Page(),
		CanUndo: sess.editor.CanUndo(),
		CanRedo: sess.editor.CanRedo(),
	})
}

// respondError はドメインのエラーをHTTPステータスへ写します。
// クレジット切れは402、キー未設定は401、プラン不成立は502で、
// フロント側が文言を出し分けられるようにするのだ。
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrQuotaExhausted):
		status = http.StatusPaymentRequired
	case errors.Is(err, domain.ErrMissingAPIKey):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidPlan):
		status = http.StatusBadGateway
	}
	slog.Warn("リクエスト処理に失敗したのだ", "status", status, "error", err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleCreatePage(c *gin.Context) {
	var input domain.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不正なリクエストボディです: " + err.Error()})
		return
	}
	if err := input.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	sections, err := s.planner.Plan(ctx, input)
	if err != nil {
		s.respondError(c, err)
		return
	}

	page, err := s.builder.GeneratePage(ctx, input, sections, nil)
	if err != nil {
		s.respondError(c, err)
		return
	}

	sess := &session{
		editor: editor.NewPageEditor(page, s.builder),
		input:  input,
	}
	id := s.storeSession(sess)
	s.respondPage(c, id, sess)
}

func (s *Server) handleGetPage(c *gin.Context) {
	id := c.Param("id")
	sess, ok := s.lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "セッションが見つかりません"})
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.respondPage(c, id, sess)
}

// withSession はセッションを直列化した上でハンドラ本体を実行します。
func (s *Server) withSession(c *gin.Context, fn func(id string, sess *session)) {
	id := c.Param("id")
	sess, ok := s.lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "セッションが見つかりません"})
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(id, sess)
}

func (s *Server) handleUndo(c *gin.Context) {
	s.withSession(c, func(id string, sess *session) {
		sess.editor.Undo()
		s.respondPage(c, id, sess)
	})
}

func (s *Server) handleRedo(c *gin.Context) {
	s.withSession(c, func(id string, sess *session) {
		sess.editor.Redo()
		s.respondPage(c, id, sess)
	})
}

func (s *Server) handleReorder(c *gin.Context) {
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.withSession(c, func(id string, sess *session) {
		if err := sess.editor.Reorder(req.From, req.To); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.respondPage(c, id, sess)
	})
}

func (s *Server) handleReplaceImage(c *gin.Context) {
	var req struct {
		ImageURL string `json:"image_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.withSession(c, func(id string, sess *session) {
		if err := sess.editor.ReplaceImage(c.Param("sid"), req.ImageURL); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		s.respondPage(c, id, sess)
	})
}

func (s *Server) handleEditPrompt(c *gin.Context) {
	var req struct {
		VisualPrompt string `json:"visual_prompt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.withSession(c, func(id string, sess *session) {
		if err := sess.editor.EditPrompt(c.Param("sid"), req.VisualPrompt); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		s.respondPage(c, id, sess)
	})
}

func (s *Server) handleEditCopy(c *gin.Context) {
	var req struct {
		Title      string `json:"title"`
		KeyMessage string `json:"key_message"`
		SubMessage string `json:"sub_message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.withSession(c, func(id string, sess *session) {
		if err := sess.editor.EditCopy(c.Param("sid"), req.Title, req.KeyMessage, req.SubMessage); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		s.respondPage(c, id, sess)
	})
}

func (s *Server) handleRescale(c *gin.Context) {
	var req struct {
		Scale int `json:"scale" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.withSession(c, func(id string, sess *session) {
		if err := sess.editor.Rescale(c.Param("sid"), req.Scale); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		s.respondPage(c, id, sess)
	})
}

func (s *Server) handleToggleVisibility(c *gin.Context) {
	s.withSession(c, func(id string, sess *session) {
		if err := sess.editor.ToggleVisibility(c.Param("sid")); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		s.respondPage(c, id, sess)
	})
}

func (s *Server) handleRegenerate(c *gin.Context) {
	s.withSession(c, func(id string, sess *session) {
		if err := sess.editor.Regenerate(c.Request.Context(), c.Param("sid"), sess.input); err != nil {
			s.respondError(c, err)
			return
		}
		s.respondPage(c, id, sess)
	})
}

func (s *Server) handleExportMarkup(c *gin.Context) {
	s.withSession(c, func(_ string, sess *session) {
		out := export.NewMarkupBuilder().Build(sess.editor.Page())
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(out))
	})
}

func (s *Server) handleExportBundle(c *gin.Context) {
	s.withSession(c, func(_ string, sess *session) {
		out, err := export.NewBundleExporter(s.fetcher).Export(c.Request.Context(), sess.editor.Page())
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="detail_page_images.zip"`)
		c.Data(http.StatusOK, "application/zip", out)
	})
}

func (s *Server) handleExportRaster(c *gin.Context) {
	s.withSession(c, func(_ string, sess *session) {
		composer := export.NewRasterComposer(s.fetcher, s.fontPath)
		out, err := composer.ComposeJPEG(c.Request.Context(), sess.editor.Page(), export.RasterOptions{})
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="detail_page.jpg"`)
		c.Data(http.StatusOK, "image/jpeg", out)
	})
}
