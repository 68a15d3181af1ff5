package handler

import (
	"errors"
	"mime/multipart"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tatweer-edu/visit-plans-api/internal/dto"
	"github.com/tatweer-edu/visit-plans-api/internal/service"
	"github.com/tatweer-edu/visit-plans-api/internal/utils"
)

// importFields are the accepted multipart field names, in import order.
var importFields = []string{"schools_boys", "schools_girls", "principals", "supervisors", "assignments"}

// ManagerHandler wires the manager console endpoints.
type ManagerHandler struct {
	managers service.ManagerService
	imports  service.ImportService
	exports  service.ExportService
	logger   zerolog.Logger
}

// NewManagerHandler constructs the handler.
func NewManagerHandler(managers service.ManagerService, imports service.ImportService, exports service.ExportService, logger zerolog.Logger) *ManagerHandler {
	return &ManagerHandler{
		managers: managers,
		imports:  imports,
		exports:  exports,
		logger:   logger.With().Str("component", "manager_handler").Logger(),
	}
}

// Register attaches manager endpoints to the router group.
func (h *ManagerHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.dashboard)
	router.Get("/plans/:id", h.planDetail)
	router.Post("/plans/:id/approve", h.forceApprove)
	router.Post("/plans/:id/draft", h.backToDraft)
	router.Get("/unlock-requests", h.pendingUnlocks)
	router.Post("/unlock-requests/:id/resolve", h.resolveUnlock)
	router.Get("/export-week", h.exportWeek)
	router.Post("/weeks/generate", h.generateWeeks)
	router.Post("/import", h.importSpreadsheets)
	router.Get("/import/rejected", h.rejectedWorkbook)
}

func (h *ManagerHandler) dashboard(c *fiber.Ctx) error {
	var query dto.DashboardQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	dashboard, err := h.managers.Dashboard(c.Context(), query)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}

func (h *ManagerHandler) planDetail(c *fiber.Ctx) error {
	planID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	plan, err := h.managers.PlanDetail(c.Context(), planID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "plan retrieved", plan)
}

func (h *ManagerHandler) forceApprove(c *fiber.Ctx) error {
	planID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	plan, err := h.managers.ForceApprove(c.Context(), planID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "plan approved", dto.NewPlanActionResponse(plan, true, "plan approved"))
}

func (h *ManagerHandler) backToDraft(c *fiber.Ctx) error {
	planID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	plan, err := h.managers.BackToDraft(c.Context(), planID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "plan returned to draft", dto.NewPlanActionResponse(plan, true, "plan returned to draft"))
}

func (h *ManagerHandler) pendingUnlocks(c *fiber.Ctx) error {
	requests, err := h.managers.PendingUnlocks(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "unlock requests retrieved", requests)
}

func (h *ManagerHandler) resolveUnlock(c *fiber.Ctx) error {
	requestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.UnlockResolveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resolved, err := h.managers.ResolveUnlock(c.Context(), requestID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "unlock request resolved", resolved)
}

func (h *ManagerHandler) exportWeek(c *fiber.Ctx) error {
	weekNo, err := parseQueryInt(c, "week")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid week number")
	}

	export, err := h.exports.WeekWorkbook(c.Context(), weekNo)
	if err != nil {
		return h.handleError(c, err)
	}

	return sendWorkbook(c, export)
}

func (h *ManagerHandler) generateWeeks(c *fiber.Ctx) error {
	var payload dto.WeekGenerateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	weeks, err := h.managers.GenerateWeeks(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "weeks generated", weeks)
}

func (h *ManagerHandler) importSpreadsheets(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "multipart form required")
	}

	files := make(map[string]*multipart.FileHeader, len(importFields))
	for _, field := range importFields {
		if headers, ok := form.File[field]; ok && len(headers) > 0 {
			files[field] = headers[0]
		}
	}

	result, err := h.imports.Process(c.Context(), files)
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().
		Str("submission_id", result.SubmissionID).
		Int("rejected", result.Rejected).
		Msg("import submission processed")

	return utils.SendSuccess(c, "import completed", result)
}

func (h *ManagerHandler) rejectedWorkbook(c *fiber.Ctx) error {
	submissionID := c.Query("batch")
	if submissionID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "batch identifier required")
	}

	export, err := h.exports.RejectedWorkbook(c.Context(), submissionID)
	if err != nil {
		return h.handleError(c, err)
	}

	return sendWorkbook(c, export)
}

func (h *ManagerHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "plan not found")
	case errors.Is(err, service.ErrWeekNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "week not found")
	case errors.Is(err, service.ErrPlanNotFull):
		return utils.SendError(c, fiber.StatusConflict, "plan is not fully filled")
	case errors.Is(err, service.ErrUnlockRequestNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "unlock request not found")
	case errors.Is(err, service.ErrUnlockAlreadyResolved):
		return utils.SendError(c, fiber.StatusConflict, "unlock request already resolved")
	case errors.Is(err, service.ErrStartNotSunday):
		return utils.SendError(c, fiber.StatusBadRequest, "start date must be a sunday")
	case errors.Is(err, service.ErrNoImportFiles):
		return utils.SendError(c, fiber.StatusBadRequest, "at least one spreadsheet is required")
	case errors.Is(err, service.ErrNotSpreadsheet):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "only xlsx files are accepted")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "import submission not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
