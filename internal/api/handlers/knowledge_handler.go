package handlers

import (
	"strings"

	"frontdesk/internal/dto"
	"frontdesk/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type KnowledgeHandler struct {
	service *service.KnowledgeService
	logger  *zap.Logger
}

func NewKnowledgeHandler(service *service.KnowledgeService, logger *zap.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{
		service: service,
		logger:  logger,
	}
}

// Search godoc
// @Summary Search the knowledge base
// @Description Rank entries against a question; the top match's usage counter is incremented
// @Tags knowledge-base
// @Produce json
// @Param q query string true "Customer question"
// @Param threshold query number false "Minimum composite score" default(0.3)
// @Param limit query int false "Max matches" default(5)
// @Param tags query string false "Comma-separated semantic tags"
// @Success 200 {object} dto.Response{data=[]dto.SearchMatchResponse}
// @Router /api/knowledge-base/search [get]
func (h *KnowledgeHandler) Search(c *fiber.Ctx) error {
	question := c.Query("q")
	if strings.TrimSpace(question) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("q is required"))
	}

	var tags []string
	if raw := c.Query("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	matches, err := h.service.Search(c.Context(), service.SearchParams{
		Question:      question,
		Threshold:     c.QueryFloat("threshold"),
		ExtractedTags: tags,
		Limit:         c.QueryInt("limit"),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(dto.OK(dto.NewSearchMatchResponses(matches)))
}

// Create godoc
// @Summary Add a knowledge entry
// @Tags knowledge-base
// @Accept json
// @Produce json
// @Param request body dto.CreateKnowledgeRequest true "Entry"
// @Success 201 {object} dto.Response{data=dto.KnowledgeResponse}
// @Failure 400 {object} dto.Response
// @Failure 409 {object} dto.Response
// @Security BearerAuth
// @Router /api/knowledge-base [post]
func (h *KnowledgeHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateKnowledgeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}

	entry, err := h.service.CreateEntry(c.Context(), service.CreateEntryParams{
		QuestionPattern: req.QuestionPattern,
		Answer:          req.Answer,
		Tags:            req.Tags,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(dto.NewKnowledgeResponse(entry)))
}

// List godoc
// @Summary List knowledge entries
// @Description Most used first; learned entries carry their originating request; inactive entries are hidden unless requested
// @Tags knowledge-base
// @Produce json
// @Param include_inactive query bool false "Include soft-deleted entries"
// @Param limit query int false "Page size" default(100)
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.Response{data=[]dto.KnowledgeWithSourceResponse}
// @Router /api/knowledge-base [get]
func (h *KnowledgeHandler) List(c *fiber.Ctx) error {
	entries, err := h.service.ListEntriesWithSources(c.Context(),
		!c.QueryBool("include_inactive"),
		c.QueryInt("limit"),
		c.QueryInt("offset"),
	)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(dto.OK(dto.NewKnowledgeWithSourceResponses(entries)))
}

// Stats godoc
// @Summary Knowledge base statistics
// @Tags knowledge-base
// @Produce json
// @Success 200 {object} dto.Response{data=dto.KnowledgeStatsResponse}
// @Router /api/knowledge-base/stats [get]
func (h *KnowledgeHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(dto.OK(dto.NewKnowledgeStatsResponse(stats)))
}

// Get godoc
// @Summary Get a knowledge entry
// @Tags knowledge-base
// @Produce json
// @Param id path string true "Entry id"
// @Success 200 {object} dto.Response{data=dto.KnowledgeResponse}
// @Failure 404 {object} dto.Response
// @Router /api/knowledge-base/{id} [get]
func (h *KnowledgeHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid entry id"))
	}

	entry, err := h.service.GetEntry(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(dto.OK(dto.NewKnowledgeResponse(entry)))
}

// Update godoc
// @Summary Update a knowledge entry
// @Tags knowledge-base
// @Accept json
// @Produce json
// @Param id path string true "Entry id"
// @Param request body dto.UpdateKnowledgeRequest true "Fields to change"
// @Success 200 {object} dto.Response{data=dto.KnowledgeResponse}
// @Failure 400 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Failure 409 {object} dto.Response
// @Security BearerAuth
// @Router /api/knowledge-base/{id} [patch]
func (h *KnowledgeHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid entry id"))
	}

	var req dto.UpdateKnowledgeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}

	entry, err := h.service.UpdateEntry(c.Context(), id, service.UpdateEntryParams{
		QuestionPattern: req.QuestionPattern,
		Answer:          req.Answer,
		Tags:            req.Tags,
		IsActive:        req.IsActive,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(dto.OK(dto.NewKnowledgeResponse(entry)))
}

// Delete godoc
// @Summary Retire a knowledge entry
// @Description Soft delete: the entry stops matching but stays readable
// @Tags knowledge-base
// @Produce json
// @Param id path string true "Entry id"
// @Success 200 {object} dto.Response{data=dto.KnowledgeResponse}
// @Failure 404 {object} dto.Response
// @Security BearerAuth
// @Router /api/knowledge-base/{id} [delete]
func (h *KnowledgeHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid entry id"))
	}

	entry, err := h.service.SoftDelete(c.Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(dto.OKMessage(dto.NewKnowledgeResponse(entry), "Entry deactivated"))
}
