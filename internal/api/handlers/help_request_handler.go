package handlers

import (
	"frontdesk/internal/dto"
	"frontdesk/internal/models"
	"frontdesk/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type HelpRequestHandler struct {
	service *service.HelpRequestService
	logger  *zap.Logger
}

func NewHelpRequestHandler(service *service.HelpRequestService, logger *zap.Logger) *HelpRequestHandler {
	return &HelpRequestHandler{
		service: service,
		logger:  logger,
	}
}

// Create godoc
// @Summary Escalate a question
// @Description Create a pending help request and notify the supervisor
// @Tags help-requests
// @Accept json
// @Produce json
// @Param request body dto.CreateHelpRequestRequest true "Escalation"
// @Success 201 {object} dto.Response{data=dto.HelpRequestResponse}
// @Failure 400 {object} dto.Response
// @Router /api/help-requests [post]
func (h *HelpRequestHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateHelpRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}

	request, err := h.service.Create(c.Context(), service.CreateParams{
		CustomerPhone:   req.CustomerPhone,
		Question:        req.Question,
		CallID:          req.CallID,
		AgentConfidence: req.AgentConfidence,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.OK(dto.NewHelpRequestResponse(request)))
}

// List godoc
// @Summary List help requests
// @Description List help requests newest first, optionally filtered by status
// @Tags help-requests
// @Produce json
// @Param status query string false "pending, resolved or unresolved"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.Response{data=[]dto.HelpRequestResponse}
// @Router /api/help-requests [get]
func (h *HelpRequestHandler) List(c *fiber.Ctx) error {
	var status *models.RequestStatus
	if raw := c.Query("status"); raw != "" {
		s := models.RequestStatus(raw)
		status = &s
	}

	requests, err := h.service.List(c.Context(), status, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(dto.OK(dto.NewHelpRequestResponses(requests)))
}

// Stats godoc
// @Summary Help request statistics
// @Tags help-requests
// @Produce json
// @Success 200 {object} dto.Response{data=dto.HelpRequestStatsResponse}
// @Router /api/help-requests/stats [get]
func (h *HelpRequestHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(dto.OK(dto.NewHelpRequestStatsResponse(stats)))
}

// Get godoc
// @Summary Get a help request
// @Tags help-requests
// @Produce json
// @Param id path string true "Request id"
// @Success 200 {object} dto.Response{data=dto.HelpRequestResponse}
// @Failure 404 {object} dto.Response
// @Router /api/help-requests/{id} [get]
func (h *HelpRequestHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request id"))
	}

	request, err := h.service.Get(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(dto.OK(dto.NewHelpRequestResponse(request)))
}

// Respond godoc
// @Summary Answer a pending help request
// @Description Record the supervisor's answer, learn it and call the customer back
// @Tags help-requests
// @Accept json
// @Produce json
// @Param id path string true "Request id"
// @Param request body dto.RespondRequest true "Answer"
// @Success 200 {object} dto.Response{data=dto.HelpRequestResponse}
// @Failure 400 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Failure 409 {object} dto.Response
// @Security BearerAuth
// @Router /api/help-requests/{id}/respond [post]
func (h *HelpRequestHandler) Respond(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request id"))
	}

	var req dto.RespondRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}

	request, err := h.service.Resolve(c.Context(), id, req.Answer)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(dto.OKMessage(dto.NewHelpRequestResponse(request), "Response recorded and knowledge base updated"))
}

// ProcessTimeouts godoc
// @Summary Force expired pending requests to unresolved
// @Description Manual trigger for the same sweep the background worker runs
// @Tags help-requests
// @Produce json
// @Success 200 {object} dto.Response{data=dto.ProcessTimeoutsResponse}
// @Security BearerAuth
// @Router /api/help-requests/process-timeouts [post]
func (h *HelpRequestHandler) ProcessTimeouts(c *fiber.Ctx) error {
	ids, err := h.service.SweepTimeouts(c.Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	timedOut := make([]string, 0, len(ids))
	for _, id := range ids {
		timedOut = append(timedOut, id.String())
	}
	return c.JSON(dto.OK(dto.ProcessTimeoutsResponse{
		TimedOut: timedOut,
		Count:    len(timedOut),
	}))
}
