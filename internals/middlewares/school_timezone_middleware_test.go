package middlewares

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"pwioi_backend/internals/configs"
	"pwioi_backend/internals/helpers/dbtime"
)

func TestSchoolTimezone(t *testing.T) {
	configs.SchoolTimezone = "UTC"
	app := fiber.New()
	app.Use(SchoolTimezone())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(dbtime.GetSchoolLocation(c, nil).String())
	})

	cases := []struct {
		header string
		status int
		body   string
	}{
		{"", fiber.StatusOK, "UTC"},
		{"Asia/Jakarta", fiber.StatusOK, "Asia/Jakarta"},
		{"Mars/Olympus", fiber.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		if tc.header == "Asia/Jakarta" {
			if _, err := time.LoadLocation(tc.header); err != nil {
				continue
			}
		}
		req := httptest.NewRequest(fiber.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("X-School-Timezone", tc.header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != tc.status {
			t.Fatalf("header %q: status = %d, want %d", tc.header, resp.StatusCode, tc.status)
		}
		if tc.body != "" {
			raw, _ := io.ReadAll(resp.Body)
			if got := string(raw); got != tc.body {
				t.Fatalf("header %q: loc = %q, want %q", tc.header, got, tc.body)
			}
		}
	}
}

func TestHeavyWriteRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Post("/bulk", HeavyWriteRateLimiter(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	var last int
	for i := 0; i < 11; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/bulk", nil))
		if err != nil {
			t.Fatal(err)
		}
		last = resp.StatusCode
	}
	if last != fiber.StatusTooManyRequests {
		t.Fatalf("11th request = %d, want 429", last)
	}
}
