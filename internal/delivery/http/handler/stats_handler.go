package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/pkg/utils"
	"go.uber.org/zap"
)

// StatisticsSource отдает текущие счетчики посещений
type StatisticsSource interface {
	Statistics() domain.VisitStatistics
}

// StatsHandler обрабатывает запросы для статистики
type StatsHandler struct {
	source StatisticsSource
	logger *zap.Logger
}

// NewStatsHandler создает новый экземпляр StatsHandler
func NewStatsHandler(source StatisticsSource, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		source: source,
		logger: logger,
	}
}

// GetStatistics godoc
// @Summary Get visit statistics
// @Description Возвращает число посещений, число различных дней, число полных проходов и дату последнего посещения
// @Tags Statistics
// @Accept json
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=domain.VisitStatistics}
// @Router /api/v1/stats [get]
func (h *StatsHandler) GetStatistics(c *fiber.Ctx) error {
	h.logger.Debug("Handling get statistics request")
	return utils.SendSuccess(c, h.source.Statistics(), nil)
}
