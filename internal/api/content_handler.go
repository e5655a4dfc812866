package api

import (
	"errors"
	"net/http"
	"strings"

	"alcyxob/fitness-content/internal/domain"
	"alcyxob/fitness-content/internal/logger"
	"alcyxob/fitness-content/internal/normalize"
	"alcyxob/fitness-content/internal/service"

	"github.com/gin-gonic/gin"
)

// ContentHandler serves the derived views: resolution, matrix, task lists.
type ContentHandler struct {
	contentService service.ContentService
	log            *logger.Logger
}

func NewContentHandler(contentService service.ContentService, log *logger.Logger) *ContentHandler {
	return &ContentHandler{contentService: contentService, log: log}
}

// ResolvedText is the method's text items rendered for one gender.
type ResolvedText struct {
	Gender           domain.Gender `json:"gender"`
	SpecificCues     []string      `json:"specificCues"`
	Highlights       []string      `json:"highlights"`
	NotificationText string        `json:"notificationText,omitempty"`
}

type ResolveResponse struct {
	ExerciseID string         `json:"exerciseId"`
	Method     MethodResponse `json:"method"`
	Text       *ResolvedText  `json:"text,omitempty"`
}

func resolveTexts(items []domain.Text, g domain.Gender) []string {
	out := make([]string, 0, len(items))
	for _, t := range items {
		out = append(out, t.Resolve(g))
	}
	return out
}

// resolutionContextFromQuery reads location, persona and brand. persona may be
// repeated or comma separated.
func resolutionContextFromQuery(c *gin.Context) domain.ResolutionContext {
	rctx := domain.ResolutionContext{BrandID: strings.TrimSpace(c.Query("brand"))}
	if raw := strings.TrimSpace(c.Query("location")); raw != "" {
		if loc, known := normalize.ParseLocation(raw); known {
			rctx.Location = loc
		} else {
			rctx.Location = domain.Location(raw)
		}
	}
	for _, v := range c.QueryArray("persona") {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				rctx.PersonaTags = append(rctx.PersonaTags, tag)
			}
		}
	}
	return rctx
}

func (h *ContentHandler) handleServiceError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrExerciseNotFound), errors.Is(err, service.ErrNoMethods):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		h.log.Error("Content request failed", "action", action, "error", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to "+action+".")
	}
}

// ResolveMethod godoc
// @Summary Pick the execution method to present
// @Description Runs the brand, location, persona and gear cascade over the exercise's methods.
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ObjectID Hex"
// @Param location query string false "Location, e.g. home"
// @Param persona query []string false "Persona tags"
// @Param brand query string false "Brand ID"
// @Param gender query string false "male or female; renders text items"
// @Success 200 {object} ResolveResponse
// @Failure 404 {object} gin.H "Exercise not found or has no methods"
// @Router /exercises/{exerciseId}/resolve [get]
func (h *ContentHandler) ResolveMethod(c *gin.Context) {
	id, ok := exerciseIDParam(c)
	if !ok {
		return
	}
	var gender domain.Gender
	switch g := domain.Gender(strings.ToLower(c.Query("gender"))); g {
	case "", domain.GenderMale, domain.GenderFemale:
		gender = g
	default:
		abortWithError(c, http.StatusBadRequest, "gender must be male or female")
		return
	}

	resolved, err := h.contentService.ResolveMethod(c.Request.Context(), id, resolutionContextFromQuery(c))
	if err != nil {
		h.handleServiceError(c, err, "resolve method")
		return
	}

	resp := ResolveResponse{
		ExerciseID: resolved.ExerciseID.Hex(),
		Method: MethodResponse{
			Index:           resolved.Index,
			ExecutionMethod: resolved.Method,
			Status:          resolved.Status,
		},
	}
	if gender != "" {
		m := resolved.Method
		text := &ResolvedText{
			Gender:       gender,
			SpecificCues: resolveTexts(m.SpecificCues, gender),
			Highlights:   resolveTexts(m.Highlights, gender),
		}
		if m.NotificationText != nil {
			text.NotificationText = m.NotificationText.Resolve(gender)
		}
		resp.Text = text
	}
	c.JSON(http.StatusOK, resp)
}

// GetExerciseMatrix godoc
// @Summary Content matrix row of one exercise
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ObjectID Hex"
// @Success 200 {object} domain.ContentMatrixRow
// @Router /exercises/{exerciseId}/matrix [get]
func (h *ContentHandler) GetExerciseMatrix(c *gin.Context) {
	id, ok := exerciseIDParam(c)
	if !ok {
		return
	}
	row, err := h.contentService.GetExerciseMatrix(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "analyze exercise")
		return
	}
	c.JSON(http.StatusOK, row)
}

// GetCatalogMatrix godoc
// @Summary Content matrix of the whole catalog with a summary
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Param readyOnly query bool false "Only rows without critical gaps"
// @Success 200 {object} service.CatalogMatrix
// @Router /content/matrix [get]
func (h *ContentHandler) GetCatalogMatrix(c *gin.Context) {
	matrix, err := h.contentService.GetCatalogMatrix(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err, "analyze catalog")
		return
	}
	if c.Query("readyOnly") == "true" {
		ready := make([]domain.ContentMatrixRow, 0, len(matrix.Rows))
		for _, r := range matrix.Rows {
			if r.ReadyToPublish() {
				ready = append(ready, r)
			}
		}
		matrix.Rows = ready
	}
	c.JSON(http.StatusOK, matrix)
}

// GetTaskLists godoc
// @Summary Production queues
// @Description Every mapped method queued by its first unfinished workflow step.
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.TaskLists
// @Router /content/tasks [get]
func (h *ContentHandler) GetTaskLists(c *gin.Context) {
	lists, err := h.contentService.GetTaskLists(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err, "build task lists")
		return
	}
	c.JSON(http.StatusOK, lists)
}
