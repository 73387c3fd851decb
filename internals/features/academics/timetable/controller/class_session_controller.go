// file: internals/features/academics/timetable/controller/class_session_controller.go
package controller

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	d "pwioi_backend/internals/features/academics/timetable/dto"
	svc "pwioi_backend/internals/features/academics/timetable/service"
	helper "pwioi_backend/internals/helpers"
	"pwioi_backend/internals/helpers/dbtime"
)

type ClassSessionController struct {
	Svc      *svc.SessionService
	Validate *validator.Validate
}

func NewClassSessionController(s *svc.SessionService, v *validator.Validate) *ClassSessionController {
	return &ClassSessionController{Svc: s, Validate: v}
}

/* =========================
   Helpers
========================= */

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	idStr := strings.TrimSpace(c.Params(name))
	if idStr == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, name+" is required")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, name+" is not a valid uuid")
	}
	return id, nil
}

// writeErr: ConflictError → 409 + detail slot; sisanya via helper.WriteError.
func writeErr(c *fiber.Ctx, tag string, err error) error {
	var ce *svc.ConflictError
	if errors.As(err, &ce) {
		log.Printf("[%s] conflict: %s", tag, ce.Message)
		return helper.JsonErrorWithData(c, fiber.StatusConflict, ce.Message, ce)
	}
	return helper.WriteError(c, tag, err)
}

func (ctl *ClassSessionController) loc(c *fiber.Ctx) *time.Location {
	return dbtime.GetSchoolLocation(c, ctl.Svc.Loc)
}

// parseRangeEnd: tanggal saja → akhir hari (inklusif).
func parseRangeEnd(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := dbtime.ParseDate(s, loc); err == nil {
		return dbtime.EndOfDay(t, loc), nil
	}
	return dbtime.ParseInstant(s, loc)
}

/* =========================
   POST /subjects/:subject_id/sessions/generate
========================= */

func (ctl *ClassSessionController) Generate(c *fiber.Ctx) error {
	const tag = "Timetable.Generate"
	subjectID, err := parseUUIDParam(c, "subject_id")
	if err != nil {
		return writeErr(c, tag, err)
	}

	var req d.GenerateSessionsRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[%s] BodyParser error: %v", tag, err)
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	loc := ctl.loc(c)
	from, err := dbtime.ParseInstant(req.From, loc)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, fmt.Sprintf("invalid from %q (want YYYY-MM-DD)", req.From))
	}
	to, err := parseRangeEnd(req.To, loc)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, fmt.Sprintf("invalid to %q (want YYYY-MM-DD)", req.To))
	}

	res, err := ctl.Svc.Generate(c.UserContext(), subjectID, svc.GenerateInput{
		RangeStart: from,
		RangeEnd:   to,
		Items:      req.Items,
		RoomID:     req.RoomID,
		AllowPast:  req.AllowPast,
		Location:   loc,
	})
	if err != nil {
		return writeErr(c, tag, err)
	}

	return helper.JsonCreated(c, "sessions generated", d.GenerateSessionsResponse{
		Created:         len(res.Sessions),
		Sessions:        d.FromModels(res.Sessions, loc),
		Skipped:         res.Skipped,
		PlannedAssigned: res.Recompute.Assigned,
	})
}

/* =========================
   POST /subjects/:subject_id/sessions
========================= */

func (ctl *ClassSessionController) Create(c *fiber.Ctx) error {
	const tag = "Timetable.Create"
	subjectID, err := parseUUIDParam(c, "subject_id")
	if err != nil {
		return writeErr(c, tag, err)
	}

	var req d.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[%s] BodyParser error: %v", tag, err)
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	loc := ctl.loc(c)
	in := req.ToInput()
	in.Location = loc
	row, err := ctl.Svc.CreateSession(c.UserContext(), subjectID, in)
	if err != nil {
		return writeErr(c, tag, err)
	}
	return helper.JsonCreated(c, "session created", d.FromModel(*row, loc))
}

/* =========================
   PATCH /sessions/:id
========================= */

func (ctl *ClassSessionController) Patch(c *fiber.Ctx) error {
	const tag = "Timetable.Patch"
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return writeErr(c, tag, err)
	}

	var req d.PatchSessionRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[%s] BodyParser error: %v", tag, err)
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	loc := ctl.loc(c)
	p := req.ToPatch()
	p.Location = loc
	row, err := ctl.Svc.UpdateSession(c.UserContext(), id, p)
	if err != nil {
		return writeErr(c, tag, err)
	}
	return helper.JsonUpdated(c, "session updated", d.FromModel(*row, loc))
}

/* =========================
   DELETE /sessions/:id
========================= */

func (ctl *ClassSessionController) Delete(c *fiber.Ctx) error {
	const tag = "Timetable.Delete"
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return writeErr(c, tag, err)
	}
	if err := ctl.Svc.DeleteSession(c.UserContext(), id); err != nil {
		return writeErr(c, tag, err)
	}
	return helper.JsonDeleted(c, "session deleted", fiber.Map{"class_session_id": id})
}

/* =========================
   GET /subjects/:subject_id/sessions
========================= */

func (ctl *ClassSessionController) List(c *fiber.Ctx) error {
	const tag = "Timetable.List"
	subjectID, err := parseUUIDParam(c, "subject_id")
	if err != nil {
		return writeErr(c, tag, err)
	}

	loc := ctl.loc(c)
	var f svc.ListFilter
	if s := strings.TrimSpace(c.Query("from")); s != "" {
		t, err := dbtime.ParseInstant(s, loc)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid from")
		}
		f.From = &t
	}
	if s := strings.TrimSpace(c.Query("to")); s != "" {
		t, err := parseRangeEnd(s, loc)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid to")
		}
		f.To = &t
	}

	pg := helper.ResolvePaging(c, 50, 500)
	f.Offset, f.Limit = pg.Offset, pg.Limit

	rows, total, err := ctl.Svc.ListSessions(c.UserContext(), subjectID, f)
	if err != nil {
		return writeErr(c, tag, err)
	}
	return helper.JsonList(c, "ok", d.FromModels(rows, loc), helper.BuildPaginationFromPage(total, pg.Page, pg.PerPage))
}
