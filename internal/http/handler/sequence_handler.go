package handler

import (
	"net/http"
	"strings"

	"github.com/glassline/erp-api/internal/domain"
	"github.com/glassline/erp-api/internal/mapper"
	"github.com/glassline/erp-api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SequenceHandler exposes document number maintenance to administrators
type SequenceHandler struct {
	sequenceService *service.NumberSequenceService
	logger          *zap.Logger
}

func NewSequenceHandler(sequenceService *service.NumberSequenceService, logger *zap.Logger) *SequenceHandler {
	return &SequenceHandler{
		sequenceService: sequenceService,
		logger:          logger,
	}
}

// @Summary List number sequences
// @Tags Admin
// @Produce json
// @Success 200 {array} domain.NumberSequenceDTO
// @Failure 403 {object} domain.APIError "Admin role required"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/sequences [get]
func (h *SequenceHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	sequences, err := h.sequenceService.List(r.Context(), orgID)
	if err != nil {
		h.logger.Error("failed to list number sequences", zap.Error(err))
		handleServiceError(w, err)
		return
	}

	dtos := make([]domain.NumberSequenceDTO, len(sequences))
	for i := range sequences {
		dtos[i] = mapper.ToNumberSequenceDTO(&sequences[i])
	}
	respondJSON(w, http.StatusOK, dtos)
}

// @Summary Repair all number sequences
// @Description Per-type failures are reported in the body; the response is 200 either way.
// @Tags Admin
// @Produce json
// @Success 200 {array} domain.SequenceRepairResult
// @Failure 403 {object} domain.APIError "Admin role required"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/sequences/repair [post]
func (h *SequenceHandler) RepairAll(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	results := h.sequenceService.RepairAll(r.Context(), orgID)
	respondJSON(w, http.StatusOK, results)
}

// @Summary Repair one number sequence
// @Tags Admin
// @Produce json
// @Param docType path string true "Document type" Enums(QUOTE, ORDER, INVOICE)
// @Success 200 {object} domain.SequenceRepairResult
// @Failure 400 {object} domain.APIError "Unknown document type"
// @Failure 403 {object} domain.APIError "Admin role required"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/sequences/{docType}/repair [post]
func (h *SequenceHandler) Repair(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	docType := domain.DocType(strings.ToUpper(chi.URLParam(r, "docType")))
	if !docType.IsValid() {
		respondWithError(w, http.StatusBadRequest, "docType must be one of QUOTE, ORDER, INVOICE")
		return
	}

	next, err := h.sequenceService.Repair(r.Context(), orgID, docType)
	if err != nil {
		respondJSON(w, http.StatusOK, domain.SequenceRepairResult{
			DocType: docType,
			Status:  domain.SequenceFailed,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, domain.SequenceRepairResult{
		DocType:    docType,
		NextNumber: next,
		Status:     domain.SequenceRepaired,
	})
}
