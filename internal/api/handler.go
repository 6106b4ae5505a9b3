package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/profitpulse/internal/dispatch"
	"github.com/guttosm/profitpulse/internal/domain/dto"
)

// analyzeActions maps the :kind path segment to a protocol action.
var analyzeActions = map[string]string{
	"maxProfit":  dto.ActionMaxProfit,
	"maxLoss":    dto.ActionMaxLoss,
	"zeroReturn": dto.ActionZeroReturn,
}

// Handler exposes the protocol dispatcher over HTTP.
//
// Every endpoint answers with the same dto.Envelope the TCP listener writes,
// so HTTP and TCP clients see identical payloads.
type Handler struct {
	d dispatch.Handler
}

// NewHandler constructs a new Handler instance around d.
func NewHandler(d dispatch.Handler) *Handler {
	return &Handler{d: d}
}

// Analyze handles POST /api/v1/analyze/:kind.
//
// Responses:
//   - 200 OK: SUCCESS envelope with the analysis result.
//   - 400 Bad Request: ERROR envelope for a malformed body.
//   - 404 Not Found: ERROR envelope for an unknown kind.
//
// Analyze godoc
// @Summary      Run an analysis
// @Description  Runs max profit, max loss or zero return over a sequence and records the result
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        kind  path      string           true  "Analysis kind"  Enums(maxProfit, maxLoss, zeroReturn)
// @Param        body  body      dto.AnalyzeBody  true  "Values to analyze"
// @Success      200   {object}  dto.Envelope     "Success"
// @Failure      400   {object}  dto.Envelope     "Malformed body"
// @Failure      404   {object}  dto.Envelope     "Unknown kind"
// @Router       /api/v1/analyze/{kind} [post]
func (h *Handler) Analyze(c *gin.Context) {
	kind := c.Param("kind")
	action, ok := analyzeActions[kind]
	if !ok {
		c.JSON(http.StatusNotFound, dto.Failure("Unknown action: analyze."+kind))
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, dispatch.ProcessingError(err))
		return
	}

	env := h.d.Dispatch(c.Request.Context(), action, body)
	if !env.OK() {
		c.JSON(http.StatusBadRequest, env)
		return
	}
	c.JSON(http.StatusOK, env)
}

// ListResults handles GET /api/v1/results.
//
// ListResults godoc
// @Summary      List recorded results
// @Description  Returns every line of the result log, oldest first
// @Tags         results
// @Produce      json
// @Success      200  {object}  dto.Envelope  "Success"
// @Failure      500  {object}  dto.Envelope  "Store failure"
// @Router       /api/v1/results [get]
func (h *Handler) ListResults(c *gin.Context) {
	h.respond(c, h.d.Dispatch(c.Request.Context(), dto.ActionResultsList, nil))
}

// ClearResults handles DELETE /api/v1/results.
//
// ClearResults godoc
// @Summary      Clear recorded results
// @Description  Removes every record from the result log
// @Tags         results
// @Produce      json
// @Success      200  {object}  dto.Envelope  "Success"
// @Failure      500  {object}  dto.Envelope  "Store failure"
// @Router       /api/v1/results [delete]
func (h *Handler) ClearResults(c *gin.Context) {
	h.respond(c, h.d.Dispatch(c.Request.Context(), dto.ActionResultsClear, nil))
}

func (h *Handler) respond(c *gin.Context, env dto.Envelope) {
	if !env.OK() {
		c.JSON(http.StatusInternalServerError, env)
		return
	}
	c.JSON(http.StatusOK, env)
}
