// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pwioi_backend/internals/features/academics"
	routeDetails "pwioi_backend/internals/route/details"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, svcs *academics.Services) {
	startTime = time.Now()

	log.Println("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, db)

	// ===================== ADMIN =====================
	// Auth di luar cakupan service ini; group tetap /api/a supaya bisa dipasang gateway.
	log.Println("[INFO] Setting up ADMIN group...")
	admin := app.Group("/api/a")

	v := validator.New()

	log.Println("[INFO] Mounting Academics routes...")
	routeDetails.AcademicsAdminRoutes(admin, svcs, v)
}
