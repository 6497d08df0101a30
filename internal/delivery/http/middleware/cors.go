package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS - middleware для device/web клиентов гида.
// Last-Event-ID разрешен, чтобы браузер мог продолжить поток состояния.
func CORS(allowOrigins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type,Accept,Accept-Language,Last-Event-ID",
		ExposeHeaders:    "Content-Type",
		AllowCredentials: false,
	})
}
