package credential

import (
	"context"
	"time"
)

// Repository persists credentials. Getters return (nil, nil) when nothing matches.
type Repository interface {
	// Upsert inserts or replaces the credential for (user, platform). The last
	// write wins; the stored SID and counters survive a replace. The returned
	// credential reflects the stored row.
	Upsert(ctx context.Context, c *Credential) (*Credential, error)
	GetBySID(ctx context.Context, userID uint, sid string) (*Credential, error)
	GetByPlatform(ctx context.Context, userID uint, platform string) (*Credential, error)
	ListByUser(ctx context.Context, userID uint) ([]*Credential, error)
	// RecordUsage adds one call, and one error when success is false, to the
	// stored counters without touching the secret or status columns.
	RecordUsage(ctx context.Context, c *Credential, success bool, errMessage string) error
	// SaveRefreshedToken writes the token columns and status after a refresh.
	SaveRefreshedToken(ctx context.Context, c *Credential) error
	// RecordFailure stores the error status and message and counts one error.
	RecordFailure(ctx context.Context, c *Credential) error
	// MarkExpired flips a connected credential whose stored token expired at or
	// before now to expired. It reports false when the stored row no longer
	// qualifies, for example after the user saved a fresh token.
	MarkExpired(ctx context.Context, c *Credential, now time.Time) (bool, error)
	Delete(ctx context.Context, id uint) error
	// ListExpiring returns connected credentials whose token expiry is at or before now.
	ListExpiring(ctx context.Context, now time.Time, limit int) ([]*Credential, error)
}

type LogFilter struct {
	UserID   uint
	Platform string
	Level    string
	Action   string
	Page     int
	PageSize int
}

type LogRepository interface {
	Create(ctx context.Context, log *IntegrationLog) error
	List(ctx context.Context, filter LogFilter) ([]*IntegrationLog, int64, error)
}

type UsageRepository interface {
	// Increment adds to the counters of the (user, platform, day) row, creating it if needed.
	Increment(ctx context.Context, userID uint, platform string, day time.Time, calls, errors int64) error
	List(ctx context.Context, userID uint, platform string, since time.Time) ([]*UsageStat, error)
}
