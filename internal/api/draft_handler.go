package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"

	"alcyxob/fitness-content/internal/drafts"
	"alcyxob/fitness-content/internal/logger"

	"github.com/gin-gonic/gin"
)

const maxDraftBytes = 1 << 20

var draftKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// DraftHandler autosaves editor work. Keys are scoped to the editor.
type DraftHandler struct {
	cache *drafts.Cache
	log   *logger.Logger
}

func NewDraftHandler(cache *drafts.Cache, log *logger.Logger) *DraftHandler {
	return &DraftHandler{cache: cache, log: log}
}

func draftKey(c *gin.Context) (string, bool) {
	key := c.Param("key")
	if !draftKeyPattern.MatchString(key) {
		abortWithError(c, http.StatusBadRequest, "Invalid draft key.")
		return "", false
	}
	editorID, err := getEditorIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify editor from token.")
		return "", false
	}
	return editorID + ":" + key, true
}

// SaveDraft godoc
// @Summary Autosave a draft
// @Description Stores any JSON object; writes are debounced.
// @Tags Drafts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Draft key, e.g. an exercise ID or new-exercise"
// @Success 202 {object} gin.H "savedAt"
// @Router /drafts/{key} [put]
func (h *DraftHandler) SaveDraft(c *gin.Context) {
	key, ok := draftKey(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDraftBytes+1))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Failed to read body.")
		return
	}
	if len(body) > maxDraftBytes {
		abortWithError(c, http.StatusRequestEntityTooLarge, "Draft is too large.")
		return
	}
	if !json.Valid(body) {
		abortWithError(c, http.StatusBadRequest, "Draft must be valid JSON.")
		return
	}
	savedAt := h.cache.Put(key, json.RawMessage(body))
	c.JSON(http.StatusAccepted, gin.H{"savedAt": savedAt})
}

// GetDraft godoc
// @Summary Load a draft
// @Tags Drafts
// @Produce json
// @Security BearerAuth
// @Param key path string true "Draft key"
// @Success 200 {object} drafts.Envelope
// @Failure 404 {object} gin.H "No draft"
// @Router /drafts/{key} [get]
func (h *DraftHandler) GetDraft(c *gin.Context) {
	key, ok := draftKey(c)
	if !ok {
		return
	}
	env, err := h.cache.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, drafts.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error("Failed to load draft", "key", key, "error", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to load draft.")
		return
	}
	c.JSON(http.StatusOK, env)
}

// DiscardDraft godoc
// @Summary Discard a draft
// @Tags Drafts
// @Security BearerAuth
// @Param key path string true "Draft key"
// @Success 204
// @Router /drafts/{key} [delete]
func (h *DraftHandler) DiscardDraft(c *gin.Context) {
	key, ok := draftKey(c)
	if !ok {
		return
	}
	if err := h.cache.Discard(c.Request.Context(), key); err != nil {
		h.log.Error("Failed to discard draft", "key", key, "error", err)
		abortWithError(c, http.StatusInternalServerError, "Failed to discard draft.")
		return
	}
	c.Status(http.StatusNoContent)
}
