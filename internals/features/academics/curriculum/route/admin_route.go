// file: internals/features/academics/curriculum/route/admin_route.go
package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	ctl "pwioi_backend/internals/features/academics/curriculum/controller"
	svc "pwioi_backend/internals/features/academics/curriculum/service"
)

// CurriculumAdminRoutes: `bulk` dipasang di endpoint upload xlsx.
func CurriculumAdminRoutes(admin fiber.Router, store *svc.Store, v *validator.Validate, bulk ...fiber.Handler) {
	h := ctl.NewCurriculumController(store, v)

	grp := admin.Group("/subjects/:subject_id/curriculum")
	grp.Get("/", h.GetTree)
	grp.Post("/", h.Replace)
	grp.Post("/upload", append(bulk, h.Upload)...)

	admin.Patch("/sub-topics/:id/status", h.UpdateStatus)
}
