package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"pwioi_backend/internals/middlewares/logger"
)

// SetupMiddlewares: urutan = recover → access log → CORS → limiter → timezone.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(logger.LoggerMiddleware())
	app.Use(CorsMiddleware())
	app.Use(GlobalRateLimiter())
	app.Use(SchoolTimezone())
}
