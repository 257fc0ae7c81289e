// Package http provides HTTP handlers for the anonymization API.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sivd/piivault/internal/anonymizer/http/dto"
	anonymizerUseCase "github.com/sivd/piivault/internal/anonymizer/usecase"
	"github.com/sivd/piivault/internal/httputil"
	customValidation "github.com/sivd/piivault/internal/validation"
)

// maxListLimit caps vault listings regardless of the requested limit.
const maxListLimit = 1000

// AnonymizerHandler handles HTTP requests for anonymization operations.
type AnonymizerHandler struct {
	useCase anonymizerUseCase.AnonymizerUseCase
	logger  *slog.Logger
}

// NewAnonymizerHandler creates a new anonymizer handler.
func NewAnonymizerHandler(
	useCase anonymizerUseCase.AnonymizerUseCase,
	logger *slog.Logger,
) *AnonymizerHandler {
	return &AnonymizerHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// AnonymizeHandler replaces detected PII in a text message with tokens.
// POST /v1/anonymize
func (h *AnonymizerHandler) AnonymizeHandler(c *gin.Context) {
	var req dto.AnonymizeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.useCase.AnonymizeText(c.Request.Context(), req.Message)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTextResultToResponse(result))
}

// DeanonymizeHandler restores tokens in a text message to their original
// values. Unknown tokens stay in place.
// POST /v1/deanonymize
func (h *AnonymizerHandler) DeanonymizeHandler(c *gin.Context) {
	var req dto.DeanonymizeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	message, err := h.useCase.DeanonymizeText(c.Request.Context(), req.AnonymizedMessage)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.DeanonymizeTextResponse{Message: message})
}

// AnonymizeObjectHandler tokenizes the PII leaves of a nested structure.
// POST /v1/anonymize-object
func (h *AnonymizerHandler) AnonymizeObjectHandler(c *gin.Context) {
	var req dto.AnonymizeObjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	data, err := h.useCase.AnonymizeObject(c.Request.Context(), req.Data, req.PIIFields)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ObjectResponse{Data: data})
}

// DeanonymizeObjectHandler restores tokens in the leaves of a nested
// structure.
// POST /v1/deanonymize-object
func (h *AnonymizerHandler) DeanonymizeObjectHandler(c *gin.Context) {
	var req dto.DeanonymizeObjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	data, err := h.useCase.DeanonymizeObject(c.Request.Context(), req.Data)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ObjectResponse{Data: data})
}

// ListVaultEntriesHandler lists the newest vault entries.
// GET /v1/vault/entries?limit=N&decrypt=true
func (h *AnonymizerHandler) ListVaultEntriesHandler(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.HandleBadRequestGin(c, fmt.Errorf("invalid limit parameter: %q", raw), h.logger)
			return
		}
		limit = parsed
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	decrypt := false
	if raw := c.Query("decrypt"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.HandleBadRequestGin(c, fmt.Errorf("invalid decrypt parameter: %q", raw), h.logger)
			return
		}
		decrypt = parsed
	}

	listings, err := h.useCase.ListVaultEntries(c.Request.Context(), limit, decrypt)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapListingsToResponse(listings))
}
