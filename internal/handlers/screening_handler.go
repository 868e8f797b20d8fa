package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/screening-service/internal/memorygame"
	"github.com/SAP-F-2025/screening-service/internal/models"
	"github.com/SAP-F-2025/screening-service/internal/quiz"
	"github.com/SAP-F-2025/screening-service/internal/report"
	"github.com/SAP-F-2025/screening-service/internal/services"
	"github.com/SAP-F-2025/screening-service/internal/utils"
	"github.com/SAP-F-2025/screening-service/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ScreeningHandler struct {
	BaseHandler
	screeningService services.ScreeningService
}

type SubmitOrientationRequest struct {
	Answers map[string]string `json:"answers" validate:"required,orientation_answers"`
}

type AdvanceRequest struct {
	Step int `json:"step" validate:"quiz_step"`
}

// CardView is a card as shown to the player. Face-down cards carry no symbol.
type CardView struct {
	Index    int    `json:"index"`
	Symbol   string `json:"symbol,omitempty"`
	Revealed bool   `json:"revealed"`
	Matched  bool   `json:"matched"`
}

type GameView struct {
	Cards          []CardView        `json:"cards"`
	Moves          int               `json:"moves"`
	MatchedPairs   int               `json:"matched_pairs"`
	TotalPairs     int               `json:"total_pairs"`
	FirstSelection *int              `json:"first_selection,omitempty"`
	Locked         bool              `json:"locked"`
	Status         memorygame.Status `json:"status"`
}

type SessionResponse struct {
	ID            string                    `json:"id"`
	Step          quiz.Step                 `json:"step"`
	StepName      string                    `json:"step_name"`
	CreatedAt     time.Time                 `json:"created_at"`
	Answers       models.OrientationAnswers `json:"answers,omitempty"`
	ClockUploaded bool                      `json:"clock_uploaded"`
	Game          GameView                  `json:"game"`
	Finished      bool                      `json:"finished"`
}

type CardResponse struct {
	Outcome memorygame.Outcome `json:"outcome"`
	Game    GameView           `json:"game"`
}

func NewScreeningHandler(
	screeningService services.ScreeningService,
	v *validator.Validator,
	logger utils.Logger,
) *ScreeningHandler {
	return &ScreeningHandler{
		BaseHandler:      NewBaseHandler(logger, v),
		screeningService: screeningService,
	}
}

func newGameView(s memorygame.Snapshot) GameView {
	cards := make([]CardView, len(s.Cards))
	for i, c := range s.Cards {
		cards[i] = CardView{Index: i, Revealed: c.Revealed, Matched: c.Matched}
		if c.Revealed || c.Matched {
			cards[i].Symbol = c.Symbol
		}
	}
	return GameView{
		Cards:          cards,
		Moves:          s.Moves,
		MatchedPairs:   s.MatchedPairs,
		TotalPairs:     s.TotalPairs,
		FirstSelection: s.FirstSelection,
		Locked:         s.Locked,
		Status:         s.Status,
	}
}

func newSessionResponse(v *services.SessionView) SessionResponse {
	return SessionResponse{
		ID:            v.ID,
		Step:          v.Step,
		StepName:      v.StepName,
		CreatedAt:     v.CreatedAt,
		Answers:       v.Answers,
		ClockUploaded: v.ClockUploaded,
		Game:          newGameView(v.Game),
		Finished:      v.Finished,
	}
}

// CreateSession starts a new screening
// @Summary Start screening
// @Tags screening
// @Produce json
// @Success 201 {object} SessionResponse
// @Router /sessions [post]
func (h *ScreeningHandler) CreateSession(c *gin.Context) {
	view, err := h.screeningService.CreateSession(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSessionResponse(view))
}

// GetSession returns the current state of a screening
// @Summary Get screening
// @Tags screening
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SessionResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (h *ScreeningHandler) GetSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	view, err := h.screeningService.GetSession(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(view))
}

func (h *ScreeningHandler) DeleteSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.screeningService.DeleteSession(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SubmitOrientation stores the step 1 answers
// @Summary Submit orientation answers
// @Tags screening
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param answers body SubmitOrientationRequest true "Answers keyed q1..q7"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /sessions/{id}/orientation [post]
func (h *ScreeningHandler) SubmitOrientation(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req SubmitOrientationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting orientation answers", "session_id", id, "answered", len(req.Answers))

	view, err := h.screeningService.SubmitOrientation(c.Request.Context(), id, req.Answers)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(view))
}

// UploadClock accepts the clock drawing as multipart field "file". Only its
// presence is scored, so the content is not kept.
func (h *ScreeningHandler) UploadClock(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Clock drawing is required",
			Details: err.Error(),
		})
		return
	}

	view, err := h.screeningService.UploadClock(c.Request.Context(), id, file.Filename, file.Size)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(view))
}

// Advance moves the session to the next step
// @Summary Advance screening step
// @Tags screening
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param step body AdvanceRequest true "Target step"
// @Success 200 {object} SessionResponse
// @Failure 422 {object} ErrorResponse
// @Router /sessions/{id}/next [post]
func (h *ScreeningHandler) Advance(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req AdvanceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	view, err := h.screeningService.Advance(c.Request.Context(), id, quiz.Step(req.Step))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(view))
}

func (h *ScreeningHandler) SelectCard(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	index, ok := ParseCardIndexParam(c, "index")
	if !ok {
		return
	}

	res, err := h.screeningService.SelectCard(c.Request.Context(), id, index)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, CardResponse{
		Outcome: res.Outcome,
		Game:    newGameView(res.Game),
	})
}

func (h *ScreeningHandler) RestartGame(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	snap, err := h.screeningService.RestartGame(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGameView(*snap))
}

// Finish scores the screening
// @Summary Finish screening
// @Tags screening
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.Report
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /sessions/{id}/finish [post]
func (h *ScreeningHandler) Finish(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Finishing screening", "session_id", id)

	r, err := h.screeningService.Finish(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// GetReport renders the finished report as json (default), html or xlsx
// @Summary Get screening report
// @Tags screening
// @Produce json,html,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Session ID"
// @Param format query string false "json, html or xlsx"
// @Success 200 {object} models.Report
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/report [get]
func (h *ScreeningHandler) GetReport(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "html" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported report format",
			Details: "format must be one of: json, html, xlsx",
		})
		return
	}

	r, err := h.screeningService.GetReport(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	switch format {
	case "html":
		body, err := report.RenderHTML(*r)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", body)
	case "xlsx":
		body, err := report.RenderXLSX(*r)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="screening-%s.xlsx"`, id))
		c.Data(http.StatusOK, xlsxContentType, body)
	default:
		c.JSON(http.StatusOK, r)
	}
}
