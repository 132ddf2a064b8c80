// Package redisseq issues order numbers from a per-day counter in Redis:
// ORD, the UTC date and a six digit sequence, e.g. ORD20250301000042.
package redisseq

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	"dispatch/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const (
	// Prefix starts every order number.
	Prefix = "ORD"

	keyPrefix = "dispatch:order_seq:"
	keyTTL    = 48 * time.Hour
)

// nextScript increments the day's counter and sets its expiry on first use, atomically.
var nextScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// Sequence implements ports.OrderNumberGenerator on Redis. When Redis fails it
// falls back to another generator so order creation keeps working.
type Sequence struct {
	client   redis.Scripter
	fallback ports.OrderNumberGenerator
	logger   *slog.Logger
	now      func() time.Time
}

// NewSequence creates a sequence. fallback may be nil, in which case Redis errors are returned.
func NewSequence(client redis.Scripter, fallback ports.OrderNumberGenerator, logger *slog.Logger) *Sequence {
	return &Sequence{
		client:   client,
		fallback: fallback,
		logger:   logger.With("component", "order_sequence"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Next returns the next order number of the current UTC day.
func (s *Sequence) Next(ctx context.Context) (string, error) {
	day := s.now().Format("20060102")

	n, err := nextScript.Run(ctx, s.client, []string{keyPrefix + day}, int(keyTTL.Seconds())).Int64()
	if err != nil {
		if s.fallback == nil {
			return "", fmt.Errorf("order sequence: %w", err)
		}
		s.logger.WarnContext(ctx, "Order sequence unavailable, using fallback", "error", err)
		return s.fallback.Next(ctx)
	}

	return fmt.Sprintf("%s%s%06d", Prefix, day, n), nil
}

const randomAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TimestampGenerator builds numbers from the Unix time in milliseconds followed by
// six random characters. It needs no shared state, which makes it the fallback
// when Redis is not configured.
type TimestampGenerator struct {
	now func() time.Time
}

func NewTimestampGenerator() *TimestampGenerator {
	return &TimestampGenerator{now: time.Now}
}

// Next returns e.g. ORD1740821400000K3Q9ZD.
func (g *TimestampGenerator) Next(_ context.Context) (string, error) {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = randomAlphabet[rand.IntN(len(randomAlphabet))]
	}
	return Prefix + strconv.FormatInt(g.now().UnixMilli(), 10) + string(suffix), nil
}
