package usecases

import (
	"context"
	"fmt"

	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/shared/logger"
	"github.com/connecthub/connecthub/internal/shared/utils"
)

type LogActivityCommand struct {
	UserID   uint
	Platform string
	Action   string
	Level    credential.LogLevel
	Message  string
	Details  map[string]any
}

type LogActivityUseCase struct {
	credentialRepo credential.Repository
	logRepo        credential.LogRepository
	logger         logger.Interface
}

func NewLogActivityUseCase(credentialRepo credential.Repository, logRepo credential.LogRepository, logger logger.Interface) *LogActivityUseCase {
	return &LogActivityUseCase{credentialRepo: credentialRepo, logRepo: logRepo, logger: logger}
}

// Execute appends a client-reported entry, linking the user's credential
// for the platform when one exists.
func (uc *LogActivityUseCase) Execute(ctx context.Context, cmd LogActivityCommand) (*credential.IntegrationLog, error) {
	var credentialSID string
	if cmd.Platform != "" {
		c, err := uc.credentialRepo.GetByPlatform(ctx, cmd.UserID, cmd.Platform)
		if err != nil {
			return nil, fmt.Errorf("failed to get credential: %w", err)
		}
		if c != nil {
			credentialSID = c.SID()
		}
	}

	entry, err := credential.NewIntegrationLog(cmd.UserID, cmd.Platform, credentialSID, cmd.Action, cmd.Level, cmd.Message, cmd.Details)
	if err != nil {
		return nil, mapError(err)
	}
	if err := uc.logRepo.Create(ctx, entry); err != nil {
		uc.logger.Errorw("failed to write integration log", "user_id", cmd.UserID, "action", cmd.Action, "error", err)
		return nil, fmt.Errorf("failed to write integration log: %w", err)
	}
	return entry, nil
}

type ListLogsQuery struct {
	UserID   uint
	Platform string
	Level    string
	Action   string
	Page     int
	PageSize int
}

type ListLogsResult struct {
	Logs     []*credential.IntegrationLog
	Total    int64
	Page     int
	PageSize int
}

type ListLogsUseCase struct {
	logRepo credential.LogRepository
	logger  logger.Interface
}

func NewListLogsUseCase(logRepo credential.LogRepository, logger logger.Interface) *ListLogsUseCase {
	return &ListLogsUseCase{logRepo: logRepo, logger: logger}
}

// Execute lists the user's log entries newest first.
func (uc *ListLogsUseCase) Execute(ctx context.Context, q ListLogsQuery) (*ListLogsResult, error) {
	if q.Level != "" && !credential.LogLevel(q.Level).IsValid() {
		return nil, mapError(credential.ErrInvalidLogLevel)
	}
	p := utils.ValidatePagination(q.Page, q.PageSize)
	logs, total, err := uc.logRepo.List(ctx, credential.LogFilter{
		UserID:   q.UserID,
		Platform: q.Platform,
		Level:    q.Level,
		Action:   q.Action,
		Page:     p.Page,
		PageSize: p.PageSize,
	})
	if err != nil {
		uc.logger.Errorw("failed to list integration logs", "user_id", q.UserID, "error", err)
		return nil, fmt.Errorf("failed to list integration logs: %w", err)
	}
	return &ListLogsResult{Logs: logs, Total: total, Page: p.Page, PageSize: p.PageSize}, nil
}
