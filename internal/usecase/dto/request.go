package dto

// FixRequest - одно обновление позиции от устройства
type FixRequest struct {
	Lat        *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon        *float64 `json:"lon" validate:"required,min=-180,max=180"`
	Background bool     `json:"background"`
}

// ModeRequest - смена режима
type ModeRequest struct {
	Mode string `json:"mode" validate:"required,mode"`
}

// RecommendModeRequest - query-параметры для подсказки режима при онбординге
type RecommendModeRequest struct {
	Lat *float64 `validate:"required,min=-90,max=90"`
	Lon *float64 `validate:"required,min=-180,max=180"`
}

// PermissionRequest - ответ пользователя на запрос разрешения
type PermissionRequest struct {
	Kind    string `json:"kind" validate:"required,permission_kind"`
	Granted *bool  `json:"granted" validate:"required"`
}

// RevokePermissionRequest - разрешение отозвано в настройках системы
type RevokePermissionRequest struct {
	Kind string `json:"kind" validate:"required,permission_kind"`
}

// StructureIDRequest - path-параметр :id
type StructureIDRequest struct {
	ID int `validate:"min=0"`
}
