// file: internals/route/details/academics_routes.go
package details

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"pwioi_backend/internals/features/academics"
	curriculumRoute "pwioi_backend/internals/features/academics/curriculum/route"
	progressRoute "pwioi_backend/internals/features/academics/progress/route"
	timetableRoute "pwioi_backend/internals/features/academics/timetable/route"
	"pwioi_backend/internals/middlewares"
)

func AcademicsAdminRoutes(admin fiber.Router, s *academics.Services, v *validator.Validate) {
	heavy := middlewares.HeavyWriteRateLimiter()

	timetableRoute.TimetableAdminRoutes(admin, s.Sessions, v, heavy)
	curriculumRoute.CurriculumAdminRoutes(admin, s.Curriculum, v, heavy)
	progressRoute.ProgressAdminRoutes(admin, s.Progress)
}
