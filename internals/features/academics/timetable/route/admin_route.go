// file: internals/features/academics/timetable/route/admin_route.go
package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	ctl "pwioi_backend/internals/features/academics/timetable/controller"
	svc "pwioi_backend/internals/features/academics/timetable/service"
)

// TimetableAdminRoutes: generate + CRUD class session. `bulk` dipasang di endpoint generate.
func TimetableAdminRoutes(admin fiber.Router, s *svc.SessionService, v *validator.Validate, bulk ...fiber.Handler) {
	h := ctl.NewClassSessionController(s, v)

	subj := admin.Group("/subjects/:subject_id/sessions")
	subj.Get("/", h.List)
	subj.Post("/", h.Create)
	subj.Post("/generate", append(bulk, h.Generate)...)

	sess := admin.Group("/sessions")
	sess.Patch("/:id", h.Patch)
	sess.Delete("/:id", h.Delete)
}
