// Package docs Landmark Guide API.
//
// Сервис отслеживания посещений достопримечательностей в пределах безопасной зоны.
// Принимает фиксы позиции от устройства, ведет режим и состояние трекинга,
// фиксирует посещения структур и ведет статистику.
//
// Основные возможности:
// - Прием фиксов позиции (HTTP и Redis Stream)
// - Переключение режимов adventure / virtual_tour
// - Эскалация разрешений на геолокацию
// - Учет посещений, лайков и открытий структур
// - Поток снимков состояния (SSE)
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//	- text/event-stream
//
// swagger:meta
package docs
