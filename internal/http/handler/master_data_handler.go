package handler

import (
	"net/http"

	"github.com/glassline/erp-api/internal/domain"
	"github.com/glassline/erp-api/internal/service"
	"go.uber.org/zap"
)

// MasterDataHandler serves the settings that feed the pricing engine:
// processes, tax rates and organization pricing floors.
type MasterDataHandler struct {
	processService      *service.ProcessService
	taxRateService      *service.TaxRateService
	organizationService *service.OrganizationService
	logger              *zap.Logger
}

func NewMasterDataHandler(
	processService *service.ProcessService,
	taxRateService *service.TaxRateService,
	organizationService *service.OrganizationService,
	logger *zap.Logger,
) *MasterDataHandler {
	return &MasterDataHandler{
		processService:      processService,
		taxRateService:      taxRateService,
		organizationService: organizationService,
		logger:              logger,
	}
}

// @Summary List processes
// @Tags MasterData
// @Produce json
// @Param active query bool false "Only active processes"
// @Success 200 {array} domain.ProcessDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /processes [get]
func (h *MasterDataHandler) ListProcesses(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"
	processes, err := h.processService.List(r.Context(), orgID, activeOnly)
	if err != nil {
		h.logger.Error("failed to list processes", zap.Error(err))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, processes)
}

// @Summary Create process
// @Tags MasterData
// @Accept json
// @Produce json
// @Param request body domain.CreateProcessRequest true "Process data"
// @Success 201 {object} domain.ProcessDTO
// @Failure 400 {object} domain.APIError "Validation error"
// @Failure 403 {object} domain.APIError "Admin role required"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /processes [post]
func (h *MasterDataHandler) CreateProcess(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	var req domain.CreateProcessRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	process, err := h.processService.Create(r.Context(), orgID, &req)
	if err != nil {
		h.logger.Error("failed to create process", zap.Error(err))
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/processes/"+process.ID.String())
	respondJSON(w, http.StatusCreated, process)
}

// @Summary Update process
// @Tags MasterData
// @Accept json
// @Produce json
// @Param id path string true "Process ID" format(uuid)
// @Param request body domain.UpdateProcessRequest true "Process data"
// @Success 200 {object} domain.ProcessDTO
// @Failure 400 {object} domain.APIError "Validation error"
// @Failure 404 {object} domain.APIError "Process not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /processes/{id} [put]
func (h *MasterDataHandler) UpdateProcess(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req domain.UpdateProcessRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	process, err := h.processService.Update(r.Context(), orgID, id, &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, process)
}

// @Summary Get GST rates
// @Tags MasterData
// @Produce json
// @Success 200 {object} domain.TaxRatesDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tax-rates [get]
func (h *MasterDataHandler) GetTaxRates(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	rates, err := h.taxRateService.List(r.Context(), orgID)
	if err != nil {
		h.logger.Error("failed to get tax rates", zap.Error(err))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rates)
}

// @Summary Update GST rates
// @Tags MasterData
// @Accept json
// @Produce json
// @Param request body domain.UpdateTaxRatesRequest true "CGST, SGST and IGST percentages"
// @Success 200 {object} domain.TaxRatesDTO
// @Failure 400 {object} domain.APIError "Validation error"
// @Failure 403 {object} domain.APIError "Admin role required"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /tax-rates [put]
func (h *MasterDataHandler) UpdateTaxRates(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateTaxRatesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rates, err := h.taxRateService.Upsert(r.Context(), orgID, &req)
	if err != nil {
		h.logger.Error("failed to update tax rates", zap.Error(err))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rates)
}

// @Summary Get organization pricing settings
// @Tags MasterData
// @Produce json
// @Success 200 {object} domain.OrganizationPricingDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /organization/pricing [get]
func (h *MasterDataHandler) GetPricingSettings(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	settings, err := h.organizationService.GetPricingSettings(r.Context(), orgID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, settings)
}

// @Summary Update organization pricing settings
// @Tags MasterData
// @Accept json
// @Produce json
// @Param request body domain.UpdateOrganizationPricingRequest true "Minimum charge and wastage"
// @Success 200 {object} domain.OrganizationPricingDTO
// @Failure 400 {object} domain.APIError "Validation error"
// @Failure 403 {object} domain.APIError "Admin role required"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /organization/pricing [put]
func (h *MasterDataHandler) UpdatePricingSettings(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizationID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateOrganizationPricingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	settings, err := h.organizationService.UpdatePricingSettings(r.Context(), orgID, &req)
	if err != nil {
		h.logger.Error("failed to update pricing settings", zap.Error(err))
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, settings)
}
