package dto

import (
	"time"

	"github.com/landmark-guide/internal/domain"
)

// HealthResponse - ответ health check
type HealthResponse struct {
	Status         string    `json:"status"`
	DatasetVersion string    `json:"dataset_version"`
	TrackingState  string    `json:"tracking_state"`
	Time           time.Time `json:"time"`
}

// RecommendModeResponse - рекомендованный режим для позиции
type RecommendModeResponse struct {
	Mode domain.Mode `json:"mode"`
}

// PermissionResponse - результат доставки ответа на запрос разрешения
type PermissionResponse struct {
	// DeliveredToPrompt is false when no prompt was waiting and the answer went
	// straight to the engine.
	DeliveredToPrompt bool            `json:"delivered_to_prompt"`
	Snapshot          domain.Snapshot `json:"snapshot"`
}

// StructureListResponse - список структур со статистикой
type StructureListResponse struct {
	Structures []domain.Structure     `json:"structures"`
	Statistics domain.VisitStatistics `json:"statistics"`
}
