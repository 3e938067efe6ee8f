package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/shared/biztime"
	apperrors "github.com/connecthub/connecthub/internal/shared/errors"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

const (
	DefaultUsageDays = 30
	MaxUsageDays     = 365
)

type RecordUsageCommand struct {
	UserID       uint
	Platform     string
	Success      bool
	ErrorMessage string
}

type RecordUsageUseCase struct {
	credentialRepo credential.Repository
	usageRepo      credential.UsageRepository
	activity       activityLog
	logger         logger.Interface
}

func NewRecordUsageUseCase(credentialRepo credential.Repository, usageRepo credential.UsageRepository, logRepo credential.LogRepository, logger logger.Interface) *RecordUsageUseCase {
	return &RecordUsageUseCase{
		credentialRepo: credentialRepo,
		usageRepo:      usageRepo,
		activity:       activityLog{repo: logRepo, logger: logger},
		logger:         logger,
	}
}

// Execute counts one API call on the credential and on today's usage row.
func (uc *RecordUsageUseCase) Execute(ctx context.Context, cmd RecordUsageCommand) (*credential.Credential, error) {
	key := strings.ToLower(strings.TrimSpace(cmd.Platform))
	c, err := uc.credentialRepo.GetByPlatform(ctx, cmd.UserID, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	if c == nil {
		return nil, mapError(credential.ErrCredentialNotFound)
	}

	c.RecordUsage(cmd.Success, cmd.ErrorMessage)
	if err := uc.credentialRepo.RecordUsage(ctx, c, cmd.Success, cmd.ErrorMessage); err != nil {
		return nil, mapError(err)
	}

	var errs int64
	if !cmd.Success {
		errs = 1
	}
	if err := uc.usageRepo.Increment(ctx, cmd.UserID, key, biztime.StartOfDayUTC(biztime.NowUTC()), 1, errs); err != nil {
		uc.logger.Errorw("failed to increment usage stats", "user_id", cmd.UserID, "platform", key, "error", err)
		return nil, fmt.Errorf("failed to record usage: %w", err)
	}

	if !cmd.Success {
		uc.activity.record(ctx, cmd.UserID, key, c.SID(), credential.ActionAPICall, credential.LogLevelError,
			"API call failed", map[string]any{"error": cmd.ErrorMessage})
	}
	return c, nil
}

type UsageStatsQuery struct {
	UserID   uint
	Platform string
	Days     int
}

type UsageStatsResult struct {
	Days        int
	Stats       []*credential.UsageStat
	TotalCalls  int64
	TotalErrors int64
}

type GetUsageStatsUseCase struct {
	usageRepo credential.UsageRepository
	logger    logger.Interface
}

func NewGetUsageStatsUseCase(usageRepo credential.UsageRepository, logger logger.Interface) *GetUsageStatsUseCase {
	return &GetUsageStatsUseCase{usageRepo: usageRepo, logger: logger}
}

// Execute returns the daily rows of the last Days days, today included.
func (uc *GetUsageStatsUseCase) Execute(ctx context.Context, q UsageStatsQuery) (*UsageStatsResult, error) {
	days := q.Days
	if days == 0 {
		days = DefaultUsageDays
	}
	if days < 1 || days > MaxUsageDays {
		return nil, apperrors.NewValidationError(fmt.Sprintf("days must be between 1 and %d", MaxUsageDays))
	}

	since := biztime.StartOfDayUTC(biztime.NowUTC()).AddDate(0, 0, -(days - 1))
	stats, err := uc.usageRepo.List(ctx, q.UserID, strings.ToLower(strings.TrimSpace(q.Platform)), since)
	if err != nil {
		uc.logger.Errorw("failed to list usage stats", "user_id", q.UserID, "error", err)
		return nil, fmt.Errorf("failed to list usage stats: %w", err)
	}

	res := &UsageStatsResult{Days: days, Stats: stats}
	for _, s := range stats {
		res.TotalCalls += s.APICalls
		res.TotalErrors += s.Errors
	}
	return res, nil
}
