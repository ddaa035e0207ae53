package repo

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisLedgerRepo 多实例共享冷却账本, 存为一个 hash: key -> unix milli
type redisLedgerRepo struct {
	cli  redis.Cmdable
	hash string
}

func NewRedisLedgerRepo(cli redis.Cmdable, hash string) LedgerRepo {
	if hash == "" {
		hash = "signal-monitor:ledger"
	}
	return &redisLedgerRepo{
		cli:  cli,
		hash: hash,
	}
}

func (repo *redisLedgerRepo) Load(ctx context.Context) (map[string]time.Time, error) {
	raw, err := repo.cli.HGetAll(ctx, repo.hash).Result()
	if err != nil {
		return nil, err
	}
	res := make(map[string]time.Time, len(raw))
	for k, v := range raw {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			// 脏数据直接忽略, 下次触发会覆盖
			continue
		}
		res[k] = time.UnixMilli(ms)
	}
	return res, nil
}

func (repo *redisLedgerRepo) Save(ctx context.Context, key string, firedAt time.Time) error {
	return repo.cli.HSet(ctx, repo.hash, key, firedAt.UnixMilli()).Err()
}

func (repo *redisLedgerRepo) Reset(ctx context.Context) error {
	return repo.cli.Del(ctx, repo.hash).Err()
}
