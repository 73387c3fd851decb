// file: internals/features/academics/progress/controller/progress_controller.go
package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	orgService "pwioi_backend/internals/features/academics/organization/service"
	svc "pwioi_backend/internals/features/academics/progress/service"
	helper "pwioi_backend/internals/helpers"
)

type ProgressController struct {
	Svc *svc.Service
}

func NewProgressController(s *svc.Service) *ProgressController {
	return &ProgressController{Svc: s}
}

// GET /subjects/:subject_id/progress
func (ctl *ProgressController) Subject(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("subject_id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "subject_id is not a valid uuid")
	}
	sp, err := ctl.Svc.SubjectProgress(c.UserContext(), id)
	if err != nil {
		return helper.WriteError(c, "Progress.Subject", err)
	}
	return helper.JsonOK(c, "ok", sp)
}

// GET /progress/rollup?level=school|center|division&parent_id=
func (ctl *ProgressController) Rollup(c *fiber.Ctx) error {
	level, err := orgService.ParseUnitLevel(c.Query("level"))
	if err != nil {
		return helper.WriteError(c, "Progress.Rollup", err)
	}

	var parentID *uuid.UUID
	if s := strings.TrimSpace(c.Query("parent_id")); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "parent_id is not a valid uuid")
		}
		parentID = &id
	}

	r, err := ctl.Svc.Rollup(c.UserContext(), level, parentID)
	if err != nil {
		return helper.WriteError(c, "Progress.Rollup", err)
	}
	return helper.JsonOK(c, "ok", r)
}
