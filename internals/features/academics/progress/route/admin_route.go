// file: internals/features/academics/progress/route/admin_route.go
package route

import (
	"github.com/gofiber/fiber/v2"

	ctl "pwioi_backend/internals/features/academics/progress/controller"
	svc "pwioi_backend/internals/features/academics/progress/service"
)

func ProgressAdminRoutes(admin fiber.Router, s *svc.Service) {
	h := ctl.NewProgressController(s)

	admin.Get("/subjects/:subject_id/progress", h.Subject)
	admin.Get("/progress/rollup", h.Rollup)
}
