package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/pkg/errors"
	"github.com/landmark-guide/internal/pkg/utils"
	"github.com/landmark-guide/internal/pkg/validator"
	"github.com/landmark-guide/internal/usecase/dto"
	"go.uber.org/zap"
)

// StructureEngine - операции движка над структурами и их состоянием
type StructureEngine interface {
	Structures() []domain.Structure
	Structure(id int) (domain.Structure, error)
	Statistics() domain.VisitStatistics
	MarkOpened(ctx context.Context, id int) (*domain.Structure, error)
	ToggleLiked(ctx context.Context, id int) (*domain.Structure, error)
	ResetVisits(ctx context.Context) domain.Snapshot
	ResetLikes(ctx context.Context) domain.Snapshot
	DismissLastVisited(ctx context.Context) domain.Snapshot
}

// StructureHandler обрабатывает запросы по структурам
type StructureHandler struct {
	engine StructureEngine
	logger *zap.Logger
}

// NewStructureHandler создает новый экземпляр StructureHandler
func NewStructureHandler(engine StructureEngine, logger *zap.Logger) *StructureHandler {
	return &StructureHandler{
		engine: engine,
		logger: logger,
	}
}

// ListStructures godoc
// @Summary List structures
// @Description Все структуры в порядке датасета со статическими и динамическими полями
// @Tags Structures
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.StructureListResponse}
// @Router /api/v1/structures [get]
func (h *StructureHandler) ListStructures(c *fiber.Ctx) error {
	structures := h.engine.Structures()
	resp := dto.StructureListResponse{
		Structures: structures,
		Statistics: h.engine.Statistics(),
	}
	return utils.SendSuccess(c, resp, &utils.Meta{Total: len(structures)})
}

// GetStructure godoc
// @Summary Get structure by id
// @Tags Structures
// @Produce json
// @Param id path int true "ID структуры"
// @Success 200 {object} utils.SuccessResponse{data=domain.Structure}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/structures/{id} [get]
func (h *StructureHandler) GetStructure(c *fiber.Ctx) error {
	id, err := structureID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	s, err := h.engine.Structure(id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, s, nil)
}

// OpenStructure godoc
// @Summary Mark structure as opened
// @Description Пользователь открыл детальную карточку структуры
// @Tags Structures
// @Produce json
// @Param id path int true "ID структуры"
// @Success 200 {object} utils.SuccessResponse{data=domain.Structure}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/structures/{id}/open [post]
func (h *StructureHandler) OpenStructure(c *fiber.Ctx) error {
	id, err := structureID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	s, err := h.engine.MarkOpened(c.Context(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, s, nil)
}

// ToggleLike godoc
// @Summary Toggle like
// @Tags Structures
// @Produce json
// @Param id path int true "ID структуры"
// @Success 200 {object} utils.SuccessResponse{data=domain.Structure}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/structures/{id}/like [post]
func (h *StructureHandler) ToggleLike(c *fiber.Ctx) error {
	id, err := structureID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	s, err := h.engine.ToggleLiked(c.Context(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, s, nil)
}

// ResetVisits godoc
// @Summary Reset visits
// @Description Сбрасывает посещения и счетчики, кроме числа полных проходов
// @Tags Structures
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=domain.Snapshot}
// @Router /api/v1/visits/reset [post]
func (h *StructureHandler) ResetVisits(c *fiber.Ctx) error {
	h.logger.Info("Resetting visits")
	return utils.SendSuccess(c, h.engine.ResetVisits(c.Context()), nil)
}

// ResetLikes godoc
// @Summary Reset likes
// @Tags Structures
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=domain.Snapshot}
// @Router /api/v1/likes/reset [post]
func (h *StructureHandler) ResetLikes(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.engine.ResetLikes(c.Context()), nil)
}

// DismissLastVisited godoc
// @Summary Dismiss the last visited banner
// @Tags Structures
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=domain.Snapshot}
// @Router /api/v1/last-visited [delete]
func (h *StructureHandler) DismissLastVisited(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.engine.DismissLastVisited(c.Context()), nil)
}

func structureID(c *fiber.Ctx) (int, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return 0, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"id": c.Params("id")})
	}
	if err := validator.Validate(&dto.StructureIDRequest{ID: id}); err != nil {
		return 0, err
	}
	return id, nil
}
