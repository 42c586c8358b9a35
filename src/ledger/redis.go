package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/minebridge/cryptonote-pool/src/model"
	"github.com/pkg/errors"
)

// RedisStore is the ledger store collaborator: worker balances live in
// hashes under `<coin>:workers:<address>`, payment history in sorted sets
// under `<coin>:payments:all` and `<coin>:payments:<address>`.
type RedisStore struct {
	client *redis.Client
	coin   string
}

func Connect(address string) (*redis.Client, error) {
	rd := redis.NewClient(&redis.Options{
		Addr: address,
		DB:   0, // use default DB
	})
	if err := rd.Ping(context.Background()); err.Err() != nil {
		return nil, errors.Wrap(err.Err(), "failed to ping redis")
	}
	return rd, nil
}

func NewRedisStore(client *redis.Client, coin string) *RedisStore {
	return &RedisStore{client: client, coin: coin}
}

func (s *RedisStore) workerKey(addr model.WorkerAddr) string {
	return fmt.Sprintf("%s:workers:%s", s.coin, addr)
}

func (s *RedisStore) paymentsKey(suffix string) string {
	return fmt.Sprintf("%s:payments:%s", s.coin, suffix)
}

// WorkerBalances enumerates every worker of the coin and bulk-reads its
// balance and payout threshold. Missing or unparsable fields read as zero,
// matching hash semantics for never-written fields.
func (s *RedisStore) WorkerBalances(ctx context.Context) ([]model.WorkerAccount, error) {
	keys, err := s.client.Keys(ctx, s.workerKey("*")).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed enumerating worker keys")
	}

	pipe := s.client.Pipeline()
	reads := make([]*redis.SliceCmd, len(keys))
	for i, key := range keys {
		reads[i] = pipe.HMGet(ctx, key, "balance", "minPayoutLevel")
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "failed reading worker balances")
	}

	accounts := make([]model.WorkerAccount, 0, len(keys))
	for i, key := range keys {
		parts := strings.Split(key, ":")
		vals := reads[i].Val()
		accounts = append(accounts, model.WorkerAccount{
			Address:        model.WorkerAddr(parts[len(parts)-1]),
			Balance:        fieldToInt64(vals[0]),
			MinPayoutLevel: fieldToInt64(vals[1]),
		})
	}
	return accounts, nil
}

// SettlePayment commits one settled command in a single MULTI/EXEC: balance
// decrements, paid increments, the global history entry and the per-worker
// entries. Either everything lands or nothing does.
func (s *RedisStore) SettlePayment(ctx context.Context, batch model.SettlementBatch) error {
	pipe := s.client.TxPipeline()
	for _, ch := range batch.Changes {
		pipe.HIncrBy(ctx, s.workerKey(ch.Address), "balance", -ch.Amount)
		pipe.HIncrBy(ctx, s.workerKey(ch.Address), "paid", ch.Amount)
	}
	score := float64(batch.Payment.Timestamp)
	pipe.ZAdd(ctx, s.paymentsKey("all"), &redis.Z{
		Score:  score,
		Member: batch.Payment.GlobalEntry(),
	})
	for _, wp := range batch.PerWorker {
		pipe.ZAdd(ctx, s.paymentsKey(string(wp.Address)), &redis.Z{
			Score:  score,
			Member: batch.Payment.WorkerEntry(wp.Amount),
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "failed committing settlement for tx %s", batch.Payment.TxHash)
	}
	return nil
}

// PaymentsSince returns global history entries with scores in [since, now],
// newest limit entries at most.
func (s *RedisStore) PaymentsSince(ctx context.Context, since int64, limit int64) ([]string, error) {
	data := s.client.ZRangeByScore(ctx, s.paymentsKey("all"), &redis.ZRangeBy{
		Min:   fmt.Sprintf("%d", since),
		Max:   "+inf",
		Count: limit,
	})
	if data.Err() != nil {
		return nil, errors.Wrap(data.Err(), "failed reading payment history")
	}
	return data.Val(), nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func fieldToInt64(v interface{}) int64 {
	str, ok := v.(string)
	if !ok {
		return 0
	}
	parsed, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}
