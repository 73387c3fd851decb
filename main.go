package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"
	"github.com/robfig/cron/v3"

	"pwioi_backend/internals/configs"
	database "pwioi_backend/internals/databases"
	"pwioi_backend/internals/features/academics"
	progressScheduler "pwioi_backend/internals/features/academics/progress/scheduler"
	"pwioi_backend/internals/features/academics/timetable/calendar"
	ttScheduler "pwioi_backend/internals/features/academics/timetable/scheduler"
	ttService "pwioi_backend/internals/features/academics/timetable/service"
	middlewares "pwioi_backend/internals/middlewares"
	routes "pwioi_backend/internals/route"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		BodyLimit:               12 << 20, // upload xlsx kurikulum
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// 🔎 Request-ID + timing
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		// HTTP timeout guard; generate & import butuh lebih lama dari statement biasa
		ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
		return err
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + warm-up
	database.ConnectDB()
	database.TunePool()
	database.WarmUpQueries()
	if configs.DBAutoMigrate {
		if err := database.Migrate(database.DB); err != nil {
			log.Fatalf("❌ %v", err)
		}
	}

	// 🔒 booking lock (opsional) + 📅 calendar sync (opsional)
	var locker ttService.ResourceLocker = ttService.NoopLocker{}
	rdb := configs.ConnectRedis()
	if rdb != nil {
		locker = ttService.NewRedisLocker(rdb, configs.BookingLockTTL)
	}
	notifier := calendar.FromConfig(context.Background(), configs.GoogleCalendarCredentialsFile, configs.GoogleCalendarID)

	loc := configs.SchoolLocation()
	svcs := academics.NewServices(database.DB, academics.Options{
		Location:       loc,
		AllowPastSlots: configs.AllowPastSlots,
		MaxRangeDays:   configs.MaxScheduleRangeDays,
		Locker:         locker,
		Notifier:       notifier,
	})

	// ⏱ scheduler setelah DB siap
	cr := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if err := progressScheduler.AddProgressReportJob(cr, configs.ProgressReportCron, svcs.Progress); err != nil {
		log.Fatalf("[REPORT] add cron failed: %v", err)
	}
	if err := ttScheduler.AddSessionReaperJob(cr, configs.SessionPurgeCron, database.DB, configs.SessionPurgeRetention); err != nil {
		log.Fatalf("[SESSION-REAPER] add cron failed: %v", err)
	}
	cr.Start()

	// ✅ Routes
	routes.SetupRoutes(app, database.DB, svcs)

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 60 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")

	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: HTTP → cron → redis → pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	<-cr.Stop().Done()
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
