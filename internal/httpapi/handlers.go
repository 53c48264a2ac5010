package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/alexanderramin/learnerbot/internal/contract"
	"github.com/alexanderramin/learnerbot/internal/export"
	"github.com/alexanderramin/learnerbot/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	chat     service.ChatService
	progress service.ProgressService
	logger   *zap.Logger
}

func NewHandler(chat service.ChatService, progress service.ProgressService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{chat: chat, progress: progress, logger: logger}
}

// GET /healthcheck
func (h *Handler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /api/progress
func (h *Handler) GetProgress(c *gin.Context) {
	RespondOK(c, contract.NewProgressView(h.progress.GetProgress()))
}

// GET /api/history
func (h *Handler) GetHistory(c *gin.Context) {
	RespondOK(c, gin.H{
		"session_id": h.chat.SessionID(),
		"turns":      contract.NewTurnViews(h.chat.History()),
	})
}

// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	RespondOK(c, contract.StatusView{
		SessionID:  h.chat.SessionID(),
		Busy:       h.chat.Busy(),
		Configured: h.chat.Configured(),
		Reachable:  h.chat.Reachable(c.Request.Context()),
		Turns:      len(h.chat.History()),
	})
}

// GET /api/welcome
func (h *Handler) GetWelcome(c *gin.Context) {
	RespondOK(c, service.Welcome())
}

// POST /api/turns
// body: { "text": "..." }
func (h *Handler) SubmitTurn(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	res, err := h.chat.SubmitTurn(c.Request.Context(), req.Text)
	if err != nil {
		status, code := classify(err)
		_ = c.Error(err)
		RespondError(c, status, code, err)
		return
	}
	if res.Err != nil {
		_ = c.Error(res.Err)
	}
	RespondOK(c, contract.NewTurnResultView(res))
}

// POST /api/answers
// body: { "correct": true }
func (h *Handler) RecordAnswer(c *gin.Context) {
	var req struct {
		Correct *bool `json:"correct"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Correct == nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("correct is required"))
		return
	}

	res, err := service.RecordQuizAnswer(c.Request.Context(), h.progress, *req.Correct)
	if err != nil {
		status, code := classify(err)
		RespondError(c, status, code, err)
		return
	}
	RespondOK(c, contract.NewAnswerResultView(res))
}

// POST /api/session
func (h *Handler) NewSession(c *gin.Context) {
	h.chat.NewSession()
	RespondOK(c, gin.H{
		"session_id": h.chat.SessionID(),
		"welcome":    service.Welcome(),
	})
}

// POST /api/progress/reset
// body: { "confirm": true }
func (h *Handler) ResetProgress(c *gin.Context) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if !req.Confirm {
		RespondError(c, http.StatusBadRequest, "confirmation_required", errors.New("reset must be confirmed"))
		return
	}

	p, err := h.progress.Reset(c.Request.Context())
	warning := ""
	if err != nil {
		if !errors.Is(err, service.ErrNotPersisted) {
			status, code := classify(err)
			RespondError(c, status, code, err)
			return
		}
		warning = err.Error()
	}
	h.logger.Info("progress reset via api")
	RespondOK(c, gin.H{
		"progress":        contract.NewProgressView(p),
		"persist_warning": warning,
	})
}

// GET /api/export
func (h *Handler) ExportProgress(c *gin.Context) {
	var buf bytes.Buffer
	err := export.Write(&buf, export.Report{
		Progress:    h.progress.GetProgress(),
		History:     h.chat.History(),
		GeneratedAt: time.Now(),
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "export_failed", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="learnerbot-progress.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
