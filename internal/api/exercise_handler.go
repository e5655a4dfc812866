package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"alcyxob/fitness-content/internal/domain"
	"alcyxob/fitness-content/internal/engine"
	"alcyxob/fitness-content/internal/logger"
	"alcyxob/fitness-content/internal/normalize"
	"alcyxob/fitness-content/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
	log             *logger.Logger
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService, log *logger.Logger) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService, log: log}
}

// --- DTOs for API (Data Transfer Objects) ---

// MethodResponse is an execution method with its index and derived status.
type MethodResponse struct {
	Index int `json:"index"`
	domain.ExecutionMethod
	Status domain.ProductionStatus `json:"status"`
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID                string                `json:"id"`
	Name              domain.LocalizedText  `json:"name"`
	Description       domain.LocalizedText  `json:"description"`
	BaseMovementID    string                `json:"baseMovementId,omitempty"`
	MovementGroup     string                `json:"movementGroup,omitempty"`
	RequiredLocations []domain.Location     `json:"requiredLocations"`
	MechanicalType    domain.MechanicalType `json:"mechanicalType,omitempty"`
	Symmetry          domain.Symmetry       `json:"symmetry,omitempty"`
	MovementType      domain.MovementType   `json:"movementType,omitempty"`
	GeneralCues       []domain.Text         `json:"generalCues"`
	Highlights        []domain.Text         `json:"highlights"`
	ExecutionMethods  []MethodResponse      `json:"executionMethods"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
}

// ExerciseWriteResponse carries the saved exercise and what normalization found.
type ExerciseWriteResponse struct {
	Exercise    ExerciseResponse       `json:"exercise"`
	Diagnostics []normalize.Diagnostic `json:"diagnostics"`
}

type WorkflowPatchRequest map[domain.WorkflowStep]bool

type MediaUploadRequest struct {
	Kind        service.MediaKind `json:"kind" binding:"required,oneof=video image"`
	ContentType string            `json:"contentType" binding:"required"`
}

type AttachMediaRequest struct {
	Kind            service.MediaKind `json:"kind" binding:"required,oneof=video image"`
	URL             string            `json:"url" binding:"required"`
	DurationSeconds *float64          `json:"durationSeconds"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	methods := make([]MethodResponse, len(ex.ExecutionMethods))
	for i, m := range ex.ExecutionMethods {
		methods[i] = MethodResponse{Index: i, ExecutionMethod: m, Status: engine.Status(m)}
	}
	return ExerciseResponse{
		ID:                ex.ID.Hex(),
		Name:              ex.Name,
		Description:       ex.Description,
		BaseMovementID:    ex.BaseMovementID,
		MovementGroup:     ex.MovementGroup,
		RequiredLocations: ex.RequiredLocations,
		MechanicalType:    ex.MechanicalType,
		Symmetry:          ex.Symmetry,
		MovementType:      ex.MovementType,
		GeneralCues:       ex.GeneralCues,
		Highlights:        ex.Highlights,
		ExecutionMethods:  methods,
		CreatedAt:         ex.CreatedAt,
		UpdatedAt:         ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to a slice of ExerciseResponse DTO.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

func mapWrite(ex *domain.Exercise, diags []normalize.Diagnostic) ExerciseWriteResponse {
	if diags == nil {
		diags = []normalize.Diagnostic{}
	}
	return ExerciseWriteResponse{Exercise: MapExerciseToResponse(ex), Diagnostics: diags}
}

// --- Path helpers ---

func exerciseIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("exerciseId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format in URL path.")
		return primitive.NilObjectID, false
	}
	return id, true
}

func methodIndexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		abortWithError(c, http.StatusBadRequest, "Invalid method index in URL path.")
		return 0, false
	}
	return index, true
}

// bindRaw reads the body as a generic JSON object for the normalizer.
func bindRaw(c *gin.Context) (map[string]interface{}, bool) {
	var raw map[string]interface{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return nil, false
	}
	return raw, true
}

// handleServiceError maps service sentinel errors to status codes.
func (h *ExerciseHandler) handleServiceError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrExerciseNotFound), errors.Is(err, service.ErrMethodNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidationFailed),
		errors.Is(err, service.ErrUnknownStep),
		errors.Is(err, service.ErrInvalidMediaKind),
		errors.Is(err, service.ErrContentTypeDenied):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrWorkflowReset):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		h.log.Error("Exercise request failed", "action", action, "error", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to "+action+".")
	}
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Create a new exercise
// @Description Normalizes the body (legacy shapes accepted) and stores it.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} ExerciseWriteResponse "Exercise created with normalization diagnostics"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Forbidden (not an editor)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	raw, ok := bindRaw(c)
	if !ok {
		return
	}
	ex, diags, err := h.exerciseService.CreateExercise(c.Request.Context(), raw)
	if err != nil {
		h.handleServiceError(c, err, "create exercise")
		return
	}
	c.JSON(http.StatusCreated, mapWrite(ex, diags))
}

// NormalizeExercise godoc
// @Summary Preview normalization
// @Description Returns the canonical form of the body and its diagnostics without saving.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ExerciseWriteResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Router /exercises/normalize [post]
func (h *ExerciseHandler) NormalizeExercise(c *gin.Context) {
	raw, ok := bindRaw(c)
	if !ok {
		return
	}
	ex, diags, err := h.exerciseService.Normalize(raw)
	if err != nil {
		h.handleServiceError(c, err, "normalize exercise")
		return
	}
	c.JSON(http.StatusOK, mapWrite(ex, diags))
}

// ListExercises godoc
// @Summary List the catalog
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ExerciseResponse
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	exercises, err := h.exerciseService.ListExercises(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err, "retrieve exercises")
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// GetExercise godoc
// @Summary Get one exercise
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ObjectID Hex"
// @Success 200 {object} ExerciseResponse
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{exerciseId} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	id, ok := exerciseIDParam(c)
	if !ok {
		return
	}
	ex, err := h.exerciseService.GetExerciseByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "retrieve exercise")
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(ex))
}

// UpdateExercise godoc
// @Summary Replace an exercise
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ObjectID Hex"
// @Success 200 {object} ExerciseWriteResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{exerciseId} [put]
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	id, ok := exerciseIDParam(c)
	if !ok {
		return
	}
	raw, ok := bindRaw(c)
	if !ok {
		return
	}
	ex, diags, err := h.exerciseService.UpdateExercise(c.Request.Context(), id, raw)
	if err != nil {
		h.handleServiceError(c, err, "update exercise")
		return
	}
	c.JSON(http.StatusOK, mapWrite(ex, diags))
}

// DeleteExercise godoc
// @Summary Delete an exercise with all its methods
// @Tags Exercises
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ObjectID Hex"
// @Success 204
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{exerciseId} [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	id, ok := exerciseIDParam(c)
	if !ok {
		return
	}
	if err := h.exerciseService.DeleteExercise(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err, "delete exercise")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddMethod godoc
// @Summary Append an execution method
// @Tags Methods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ObjectID Hex"
// @Success 201 {object} ExerciseWriteResponse
// @Router /exercises/{exerciseId}/methods [post]
func (h *ExerciseHandler) AddMethod(c *gin.Context) {
	id, ok := exerciseIDParam(c)
	if !ok {
		return
	}
	raw, ok := bindRaw(c)
	if !ok {
		return
	}
	ex, diags, err := h.exerciseService.AddMethod(c.Request.Context(), id, raw)
	if err != nil {
		h.handleServiceError(c, err, "add method")
		return
	}
	c.JSON(http.StatusCreated, mapWrite(ex, diags))
}

// RemoveMethod godoc
// @Summary Remove an execution method and its workflow
// @Tags Methods
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ObjectID Hex"
// @Param index path int true "Method index"
// @Success 200 {object} ExerciseResponse
// @Router /exercises/{exerciseId}/methods/{index} [delete]
func (h *ExerciseHandler) RemoveMethod(c *gin.Context) {
	id, ok := exerciseIDParam(c)
	if !ok {
		return
	}
	index, ok := methodIndexParam(c)
	if !ok {
		return
	}
	ex, err := h.exerciseService.RemoveMethod(c.Request.Context(), id, index)
	if err != nil {
		h.handleServiceError(c, err, "remove method")
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(ex))
}

// UpdateWorkflow godoc
// @Summary Mark workflow steps of a method
// @Description Body maps steps (filmed, audio, edited, uploaded) to true. Clearing a completed step is rejected.
// @Tags Methods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ObjectID Hex"
// @Param index path int true "Method index"
// @Success 200 {object} domain.Workflow
// @Failure 409 {object} gin.H "Completed step cannot be reset"
// @Router /exercises/{exerciseId}/methods/{index}/workflow [patch]
func (h *ExerciseHandler) UpdateWorkflow(c *gin.Context) {
	id, ok := exerciseIDParam(c)
	if !ok {
		return
	}
	index, ok := methodIndexParam(c)
	if !ok {
		return
	}
	var req WorkflowPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	w, err := h.exerciseService.UpdateWorkflow(c.Request.Context(), id, index, req)
	if err != nil {
		h.handleServiceError(c, err, "update workflow")
		return
	}
	c.JSON(http.StatusOK, w)
}

// RequestMediaUpload godoc
// @Summary Get a presigned upload URL for method media
// @Tags Methods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ObjectID Hex"
// @Param index path int true "Method index"
// @Param request body MediaUploadRequest true "Media kind and content type"
// @Success 200 {object} service.MediaUpload
// @Router /exercises/{exerciseId}/methods/{index}/media/upload-url [post]
func (h *ExerciseHandler) RequestMediaUpload(c *gin.Context) {
	id, ok := exerciseIDParam(c)
	if !ok {
		return
	}
	index, ok := methodIndexParam(c)
	if !ok {
		return
	}
	var req MediaUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	upload, err := h.exerciseService.RequestMediaUpload(c.Request.Context(), id, index, req.Kind, req.ContentType)
	if err != nil {
		h.handleServiceError(c, err, "prepare media upload")
		return
	}
	c.JSON(http.StatusOK, upload)
}

// AttachMedia godoc
// @Summary Attach an uploaded (or external) media URL to a method
// @Tags Methods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ObjectID Hex"
// @Param index path int true "Method index"
// @Param request body AttachMediaRequest true "Media kind and URL"
// @Success 200 {object} domain.Media
// @Router /exercises/{exerciseId}/methods/{index}/media [put]
func (h *ExerciseHandler) AttachMedia(c *gin.Context) {
	id, ok := exerciseIDParam(c)
	if !ok {
		return
	}
	index, ok := methodIndexParam(c)
	if !ok {
		return
	}
	var req AttachMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	media, err := h.exerciseService.AttachMedia(c.Request.Context(), id, index, req.Kind, req.URL, req.DurationSeconds)
	if err != nil {
		h.handleServiceError(c, err, "attach media")
		return
	}
	c.JSON(http.StatusOK, media)
}
