package middlewares

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"pwioi_backend/internals/configs"
	"pwioi_backend/internals/helpers/dbtime"
)

// SchoolTimezone: header X-School-Timezone (IANA) kalau valid, selain itu SCHOOL_TIMEZONE.
func SchoolTimezone() fiber.Handler {
	def := configs.SchoolLocation()
	return func(c *fiber.Ctx) error {
		loc := def
		if h := strings.TrimSpace(c.Get("X-School-Timezone")); h != "" {
			l, err := time.LoadLocation(h)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"message": "invalid X-School-Timezone header",
				})
			}
			loc = l
		}
		c.Locals(dbtime.LocSchoolTimezone, loc.String())
		c.Locals(dbtime.LocSchoolLoc, loc)
		return c.Next()
	}
}
