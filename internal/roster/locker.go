package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/segurplan-dev/roster-manager/backend/internal/config"
	"github.com/segurplan-dev/roster-manager/backend/internal/domain"
)

// NoopLocker no serializa nada; lo usan la herramienta de siembra y las
// pruebas, donde no hay mutaciones concurrentes.
type NoopLocker struct{}

func (NoopLocker) AcquireSlot(postID int64, slotNumber int32) (func(), error) {
	return func() {}, nil
}

// RedisLocker serializa las mutaciones sobre una misma ranura mediante
// SET NX con caducidad. Ranuras distintas usan claves distintas, así que
// nunca se bloquean entre sí; si el candado no se consigue dentro del
// tiempo de espera configurado se devuelve un conflicto reintentable.
type RedisLocker struct {
	cfg    *config.Config
	client *redis.Client
}

func NewRedisLocker(cfg *config.Config, client *redis.Client) *RedisLocker {
	return &RedisLocker{cfg: cfg, client: client}
}

func (l *RedisLocker) AcquireSlot(postID int64, slotNumber int32) (func(), error) {
	key := fmt.Sprintf("roster:lock:%d:%d", postID, slotNumber)
	// El token identifica a este poseedor: al liberar solo se borra el
	// candado si sigue siendo nuestro.
	token := uuid.NewString()

	ttl := time.Duration(l.cfg.Redis.LockExpiration) * time.Second
	deadline := time.Now().Add(time.Duration(l.cfg.Redis.LockWait) * time.Second)

	for {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(l.cfg.Redis.ConnectTimeout)*time.Second)
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		cancel()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, domain.ErrConflict
		}
		time.Sleep(100 * time.Millisecond)
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(l.cfg.Redis.ConnectTimeout)*time.Second)
		defer cancel()

		// Comparar y borrar en un solo paso: si el candado caducó y otro
		// poseedor lo readquirió entre medias, no se le debe borrar el suyo.
		unlockScript.Run(ctx, l.client, []string{key}, token)
	}
	return release, nil
}

var unlockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	end
	return 0
`)
