package handler

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tatweer-edu/visit-plans-api/internal/dto"
	"github.com/tatweer-edu/visit-plans-api/internal/service"
	"github.com/tatweer-edu/visit-plans-api/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PlanHandler wires the supervisor-facing plan endpoints.
type PlanHandler struct {
	plans   service.PlanService
	exports service.ExportService
	logger  zerolog.Logger
}

// NewPlanHandler constructs the handler.
func NewPlanHandler(plans service.PlanService, exports service.ExportService, logger zerolog.Logger) *PlanHandler {
	return &PlanHandler{
		plans:   plans,
		exports: exports,
		logger:  logger.With().Str("component", "plan_handler").Logger(),
	}
}

// Register attaches plan endpoints to the router group.
func (h *PlanHandler) Register(router fiber.Router) {
	router.Get("/weeks", h.weeks)
	router.Get("/schools", h.schools)
	router.Get("/export", h.export)
	router.Get("", h.get)
	router.Put("", h.submit)
	router.Post("/:id/unlock", h.requestUnlock)
}

func (h *PlanHandler) weeks(c *fiber.Ctx) error {
	weeks, err := h.plans.Weeks(c.Context())
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "weeks retrieved", weeks)
}

func (h *PlanHandler) schools(c *fiber.Ctx) error {
	schools, err := h.plans.AssignedSchools(c.Context(), supervisorIDFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "schools retrieved", schools)
}

func (h *PlanHandler) get(c *fiber.Ctx) error {
	weekNo, err := parseQueryInt(c, "week")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid week number")
	}

	plan, err := h.plans.GetPlan(c.Context(), supervisorIDFromContext(c), weekNo)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "plan retrieved", plan)
}

// submit saves the weekday entries and, when action=approve, tries to approve
// the saved plan. An incomplete week keeps the save and reports a warning
// instead of failing the whole submission.
func (h *PlanHandler) submit(c *fiber.Ctx) error {
	weekNo, err := parseQueryInt(c, "week")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid week number")
	}

	var payload dto.PlanSaveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	supervisorID := supervisorIDFromContext(c)
	plan, err := h.plans.GetPlan(c.Context(), supervisorID, weekNo)
	if err != nil {
		return h.handleError(c, err)
	}

	saved, err := h.plans.Save(c.Context(), supervisorID, plan.ID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	if payload.Action != "approve" {
		return utils.SendSuccess(c, "plan saved", fiber.Map{
			"plan":   saved,
			"result": dto.NewPlanActionResponse(saved, true, "plan saved"),
		})
	}

	approved, err := h.plans.Approve(c.Context(), supervisorID, saved.ID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFull) {
			return utils.SendSuccess(c, "plan saved", fiber.Map{
				"plan":   saved,
				"result": dto.NewPlanActionResponse(saved, false, "plan saved as draft: all five days must be filled before approval"),
			})
		}
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "plan approved", fiber.Map{
		"plan":   approved,
		"result": dto.NewPlanActionResponse(approved, true, "plan approved"),
	})
}

func (h *PlanHandler) requestUnlock(c *fiber.Ctx) error {
	planID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.UnlockRequestCreate
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	plan, err := h.plans.RequestUnlock(c.Context(), supervisorIDFromContext(c), planID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "unlock requested", plan)
}

func (h *PlanHandler) export(c *fiber.Ctx) error {
	weekNo, err := parseQueryInt(c, "week")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid week number")
	}

	export, err := h.exports.PlanWorkbook(c.Context(), supervisorIDFromContext(c), weekNo)
	if err != nil {
		return h.handleError(c, err)
	}

	return sendWorkbook(c, export)
}

func (h *PlanHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "plan not found")
	case errors.Is(err, service.ErrWeekNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "week not found")
	case errors.Is(err, service.ErrBreakWeek):
		return utils.SendError(c, fiber.StatusBadRequest, "week is a break week")
	case errors.Is(err, service.ErrPlanLocked):
		return utils.SendError(c, fiber.StatusConflict, "plan is locked")
	case errors.Is(err, service.ErrPlanNotApproved):
		return utils.SendError(c, fiber.StatusConflict, "plan is not approved")
	case errors.Is(err, service.ErrUnlockAlreadyPending):
		return utils.SendError(c, fiber.StatusConflict, "unlock request already pending")
	case errors.Is(err, service.ErrSchoolNotAssigned):
		return utils.SendError(c, fiber.StatusBadRequest, "school is not assigned to you")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *PlanHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

func sendWorkbook(c *fiber.Ctx, export service.Export) error {
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, export.FileName))
	return c.Send(export.Data)
}
