package configs

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

var (
	// Zona waktu sekolah dipakai untuk generator jadwal & tanggal rencana (planned date)
	SchoolTimezone string

	// Kebijakan slot lampau pada generator jadwal (default: dibuang)
	AllowPastSlots bool

	// Batas panjang rentang generator (hari)
	MaxScheduleRangeDays int

	ProgressReportCron string

	// Purge class session yang sudah soft-delete
	SessionPurgeCron      string
	SessionPurgeRetention time.Duration

	RedisAddr string
	// BookingLockTTL: TTL minimum lock room/teacher (tidak diperpanjang);
	// batch generate besar memakai 50ms per slot kalau lebih lama.
	BookingLockTTL time.Duration

	GoogleCalendarCredentialsFile string
	GoogleCalendarID              string

	DBAutoMigrate bool
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ .env not found, using system ENV")
		} else {
			log.Println("✅ .env loaded")
		}
	} else {
		log.Println("🚀 Running in Railway, using system ENV")
	}

	SchoolTimezone = GetEnv("SCHOOL_TIMEZONE", "Asia/Kolkata")
	AllowPastSlots = GetEnvBool("SCHEDULE_ALLOW_PAST_SLOTS", false)
	MaxScheduleRangeDays = GetEnvInt("SCHEDULE_MAX_RANGE_DAYS", 366)
	ProgressReportCron = GetEnv("PROGRESS_REPORT_CRON", "0 6 * * *")
	SessionPurgeCron = GetEnv("SESSION_PURGE_CRON", "30 3 * * *")
	SessionPurgeRetention = time.Duration(GetEnvInt("SESSION_PURGE_RETENTION_DAYS", 30)) * 24 * time.Hour

	RedisAddr = GetEnv("REDIS_ADDR")
	BookingLockTTL = GetEnvDuration("BOOKING_LOCK_TTL", 15*time.Second)

	GoogleCalendarCredentialsFile = GetEnv("GOOGLE_CALENDAR_CREDENTIALS_FILE")
	GoogleCalendarID = GetEnv("GOOGLE_CALENDAR_ID", "primary")

	DBAutoMigrate = GetEnvBool("DB_AUTO_MIGRATE", false)

	if _, err := time.LoadLocation(SchoolTimezone); err != nil {
		log.Printf("❌ SCHOOL_TIMEZONE %q invalid, falling back to UTC: %v", SchoolTimezone, err)
		SchoolTimezone = "UTC"
	} else {
		log.Printf("✅ SCHOOL_TIMEZONE=%s", SchoolTimezone)
	}

	if RedisAddr == "" {
		log.Println("⚠️ REDIS_ADDR not set, booking lock disabled (check-then-act only)")
	}
	if GoogleCalendarCredentialsFile == "" {
		log.Println("⚠️ GOOGLE_CALENDAR_CREDENTIALS_FILE not set, calendar sync disabled")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func GetEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func GetEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// SchoolLocation: *time.Location dari SCHOOL_TIMEZONE, fallback UTC.
func SchoolLocation() *time.Location {
	if loc, err := time.LoadLocation(SchoolTimezone); err == nil && SchoolTimezone != "" {
		return loc
	}
	return time.UTC
}

// =======================
// DATABASE CONNECTOR (CLI)
// =======================
func InitCLIDB() *gorm.DB {
	dbUser := GetEnv("DB_USER")
	dbPassword := GetEnv("DB_PASSWORD")
	dbHost := GetEnv("DB_HOST")
	dbPort := GetEnv("DB_PORT")
	dbName := GetEnv("DB_NAME")
	dbSSL := GetEnv("DB_SSLMODE", "require")

	dsn := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPassword, dbHost, dbPort, dbName, dbSSL)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: NewGormLogger(),
	})
	if err != nil {
		log.Fatalf("❌ DB connection failed (CLI): %v", err)
	}
	log.Println("✅ Database (CLI) connected.")
	return db
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormLogger.Warn,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	l.LogLevel = level
	return l
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Printf("[INFO] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Printf("[WARN] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		log.Printf("[ERROR] "+msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	switch {
	case err != nil && err != gorm.ErrRecordNotFound:
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	case elapsed > l.SlowThreshold:
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	case l.LogLevel >= gormLogger.Info:
		log.Printf("[QUERY] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
