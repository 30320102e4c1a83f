package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shestoi/GoShop/internal/repository"
)

const (
	hashFieldCodeHash = "code_hash"
	hashFieldAttempts = "attempts"
)

// OTPRepository реализует repository.OTPRepository используя Redis hash
type OTPRepository struct {
	client *redis.Client
}

// NewOTPRepository создаёт новый Redis OTP repository
func NewOTPRepository(client *redis.Client) *OTPRepository {
	return &OTPRepository{client: client}
}

func otpKey(phone string) string {
	return fmt.Sprintf("otp:%s", phone)
}

func otpLockKey(phone string) string {
	return fmt.Sprintf("otp:lock:%s", phone)
}

// Save перезаписывает код телефона и сбрасывает счётчик попыток
func (r *OTPRepository) Save(ctx context.Context, code repository.OTPCode, ttl time.Duration) error {
	key := otpKey(code.Phone)

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		hashFieldCodeHash, code.CodeHash,
		hashFieldAttempts, code.Attempts,
		hashFieldCreatedAt, code.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save otp: %w", err)
	}
	return nil
}

func (r *OTPRepository) Get(ctx context.Context, phone string) (repository.OTPCode, error) {
	values, err := r.client.HGetAll(ctx, otpKey(phone)).Result()
	if err != nil {
		return repository.OTPCode{}, fmt.Errorf("failed to get otp: %w", err)
	}
	if values[hashFieldCodeHash] == "" {
		return repository.OTPCode{}, repository.ErrNotFound
	}

	code := repository.OTPCode{Phone: phone, CodeHash: values[hashFieldCodeHash]}
	code.Attempts, _ = strconv.Atoi(values[hashFieldAttempts])
	code.CreatedAt, _ = time.Parse(time.RFC3339Nano, values[hashFieldCreatedAt])
	return code, nil
}

// incrementAttemptsScript увеличивает счётчик только у существующего ключа,
// иначе HINCRBY создал бы хеш без TTL
var incrementAttemptsScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
return redis.call("HINCRBY", KEYS[1], ARGV[1], 1)
`)

// IncrementAttempts атомарно увеличивает счётчик, TTL ключа не меняется
func (r *OTPRepository) IncrementAttempts(ctx context.Context, phone string) (int, error) {
	n, err := incrementAttemptsScript.Run(ctx, r.client, []string{otpKey(phone)}, hashFieldAttempts).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to increment otp attempts: %w", err)
	}
	if n < 0 {
		return 0, repository.ErrNotFound
	}
	return n, nil
}

func (r *OTPRepository) Delete(ctx context.Context, phone string) error {
	if err := r.client.Del(ctx, otpKey(phone)).Err(); err != nil {
		return fmt.Errorf("failed to delete otp: %w", err)
	}
	return nil
}

// AcquireResendLock SET NX EX: ключ живёт отдельно от кода
func (r *OTPRepository) AcquireResendLock(ctx context.Context, phone string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, otpLockKey(phone), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire otp resend lock: %w", err)
	}
	return ok, nil
}

func (r *OTPRepository) ReleaseResendLock(ctx context.Context, phone string) error {
	if err := r.client.Del(ctx, otpLockKey(phone)).Err(); err != nil {
		return fmt.Errorf("failed to release otp resend lock: %w", err)
	}
	return nil
}
