// file: internals/helpers/errors.go
package helper

import (
	"errors"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// --- PG error mapping ---
// 23P01 = exclusion_violation
// 23503 = foreign_key_violation
// 23505 = unique_violation

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// MapPGError: (status, message) untuk error dari database.
func MapPGError(err error) (int, string) {
	switch sqlState(err) {
	case "23P01":
		return http.StatusConflict, "schedule conflict: time range overlap"
	case "23503":
		return http.StatusBadRequest, "referenced record not found (foreign key violation)"
	case "23505":
		return http.StatusConflict, "duplicate data (unique violation)"
	}
	return http.StatusInternalServerError, err.Error()
}

// WriteError: *fiber.Error → status aslinya; error DB → MapPGError; sisanya 500.
func WriteError(c *fiber.Ctx, tag string, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= 500 {
			log.Printf("[%s] %v", tag, err)
		}
		return JsonError(c, fe.Code, fe.Message)
	}
	code, msg := MapPGError(err)
	log.Printf("[%s] %v", tag, err)
	if code >= 500 {
		msg = "internal server error"
	}
	return JsonError(c, code, msg)
}
