// file: internals/features/academics/curriculum/controller/curriculum_controller.go
package controller

import (
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"pwioi_backend/internals/constants"
	d "pwioi_backend/internals/features/academics/curriculum/dto"
	svc "pwioi_backend/internals/features/academics/curriculum/service"
	helper "pwioi_backend/internals/helpers"
	"pwioi_backend/internals/helpers/dbtime"
)

const maxUploadBytes = 10 << 20

type CurriculumController struct {
	Store    *svc.Store
	Validate *validator.Validate
}

func NewCurriculumController(s *svc.Store, v *validator.Validate) *CurriculumController {
	return &CurriculumController{Store: s, Validate: v}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, name+" is not a valid uuid")
	}
	return id, nil
}

// GET /subjects/:subject_id/curriculum
func (ctl *CurriculumController) GetTree(c *fiber.Ctx) error {
	subjectID, err := parseUUIDParam(c, "subject_id")
	if err != nil {
		return helper.WriteError(c, "Curriculum.Tree", err)
	}
	tree, err := ctl.Store.Tree(c.UserContext(), subjectID)
	if err != nil {
		return helper.WriteError(c, "Curriculum.Tree", err)
	}
	return helper.JsonOK(c, "ok", d.FromTree(tree))
}

// POST /subjects/:subject_id/curriculum (JSON rows)
func (ctl *CurriculumController) Replace(c *fiber.Ctx) error {
	const tag = "Curriculum.Replace"
	subjectID, err := parseUUIDParam(c, "subject_id")
	if err != nil {
		return helper.WriteError(c, tag, err)
	}

	var req d.ReplaceCurriculumRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[%s] BodyParser error: %v", tag, err)
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	res, err := ctl.Store.Replace(c.UserContext(), subjectID, req.ToImportRows())
	if err != nil {
		return helper.WriteError(c, tag, err)
	}
	return helper.JsonCreated(c, "curriculum replaced", res)
}

// POST /subjects/:subject_id/curriculum/upload (multipart, field "file")
func (ctl *CurriculumController) Upload(c *fiber.Ctx) error {
	const tag = "Curriculum.Upload"
	subjectID, err := parseUUIDParam(c, "subject_id")
	if err != nil {
		return helper.WriteError(c, tag, err)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "file is required (xlsx)")
	}
	if fh.Size > maxUploadBytes {
		return helper.JsonError(c, fiber.StatusRequestEntityTooLarge, "file too large (max 10MB)")
	}
	switch constants.DetectImportFormat(fh.Filename) {
	case constants.ImportXLSX:
	case constants.ImportXLS:
		return helper.JsonError(c, fiber.StatusBadRequest, "legacy .xls is not supported, save the sheet as .xlsx")
	default:
		return helper.JsonError(c, fiber.StatusBadRequest, "only .xlsx files are supported")
	}

	f, err := fh.Open()
	if err != nil {
		return helper.WriteError(c, tag, err)
	}
	defer f.Close()

	rows, err := svc.ReadXLSXRows(f)
	if err != nil {
		return helper.WriteError(c, tag, err)
	}
	res, err := ctl.Store.Replace(c.UserContext(), subjectID, rows)
	if err != nil {
		return helper.WriteError(c, tag, err)
	}
	return helper.JsonCreated(c, "curriculum imported", res)
}

// PATCH /sub-topics/:id/status
func (ctl *CurriculumController) UpdateStatus(c *fiber.Ctx) error {
	const tag = "Curriculum.UpdateStatus"
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.WriteError(c, tag, err)
	}

	var req d.UpdateSubTopicStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	loc := dbtime.GetSchoolLocation(c, ctl.Store.Loc)
	var date *time.Time
	if req.Date != nil && strings.TrimSpace(*req.Date) != "" {
		t, err := dbtime.ParseDate(*req.Date, loc)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		date = &t
	}

	row, err := ctl.Store.UpdateSubTopicStatus(c.UserContext(), id, req.StatusValue(), date, loc)
	if err != nil {
		return helper.WriteError(c, tag, err)
	}
	return helper.JsonUpdated(c, "status updated", d.FromSubTopic(*row))
}
