// file: internals/features/academics/timetable/service/locker.go
package service

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

/*
   ResourceLocker mempersempit race check-then-act antar request untuk
   room/teacher yang sama. Bukan jaminan: tanpa Redis, NoopLocker dipakai.
*/

type ResourceLocker interface {
	// Lock mengambil semua key; release wajib dipanggil kalau err == nil.
	// ttl = perkiraan lama check+tulis dari pemanggil; 0 = default locker.
	Lock(ctx context.Context, ttl time.Duration, keys ...string) (release func(), err error)
}

type NoopLocker struct{}

func (NoopLocker) Lock(context.Context, time.Duration, ...string) (func(), error) {
	return func() {}, nil
}

// lockPerSlot: jatah waktu per kandidat saat batch generate besar.
const lockPerSlot = 50 * time.Millisecond

func lockTTL(slots int) time.Duration { return time.Duration(slots) * lockPerSlot }

var ErrResourceBusy = fiber.NewError(fiber.StatusConflict, "room or teacher is being scheduled by another request, retry shortly")

// RedisLocker: lock tidak diperpanjang; TTL efektif = max(TTL, ttl pemanggil).
type RedisLocker struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{RDB: rdb, TTL: ttl}
}

// hapus hanya kalau token masih milik kita
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *RedisLocker) ttlFor(hint time.Duration) time.Duration {
	if hint > l.TTL {
		return hint
	}
	return l.TTL
}

func (l *RedisLocker) Lock(ctx context.Context, ttl time.Duration, keys ...string) (func(), error) {
	ttl = l.ttlFor(ttl)
	// urutan tetap supaya dua request tidak saling tunggu silang
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	token := uuid.NewString()
	var held []string
	release := func() {
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for _, k := range held {
			_ = releaseScript.Run(rctx, l.RDB, []string{k}, token).Err()
		}
	}

	for _, k := range sorted {
		ok, err := l.RDB.SetNX(ctx, k, token, ttl).Result()
		if err != nil {
			release()
			return nil, err
		}
		if !ok {
			release()
			return nil, ErrResourceBusy
		}
		held = append(held, k)
	}
	return release, nil
}

func RoomLockKey(id uuid.UUID) string    { return "cpr:lock:room:" + id.String() }
func TeacherLockKey(id uuid.UUID) string { return "cpr:lock:teacher:" + id.String() }

func lockKeys(teacherID uuid.UUID, roomID *uuid.UUID) []string {
	keys := []string{TeacherLockKey(teacherID)}
	if roomID != nil {
		keys = append(keys, RoomLockKey(*roomID))
	}
	return keys
}
