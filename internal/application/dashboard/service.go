// Package dashboard aggregates the per-user overview shown on the home page.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/connecthub/connecthub/internal/application/credential/dto"
	"github.com/connecthub/connecthub/internal/domain/credential"
	"github.com/connecthub/connecthub/internal/domain/workflow"
	"github.com/connecthub/connecthub/internal/domain/workspace"
	"github.com/connecthub/connecthub/internal/shared/logger"
)

const RecentLogLimit = 10

type Dashboard struct {
	ConnectedPlatforms  int                           `json:"connected_platforms"`
	TotalCredentials    int                           `json:"total_credentials"`
	CredentialsByStatus map[string]int                `json:"credentials_by_status"`
	WorkspaceCount      int64                         `json:"workspace_count"`
	WorkflowsByStatus   map[string]int64              `json:"workflows_by_status"`
	RecentLogs          []*dto.IntegrationLogResponse `json:"recent_logs"`
	GeneratedAt         time.Time                     `json:"generated_at"`
}

type Service struct {
	credentialRepo credential.Repository
	logRepo        credential.LogRepository
	workspaceRepo  workspace.Repository
	memberRepo     workspace.MemberRepository
	workflowRepo   workflow.Repository
	logger         logger.Interface
}

func NewService(
	credentialRepo credential.Repository,
	logRepo credential.LogRepository,
	workspaceRepo workspace.Repository,
	memberRepo workspace.MemberRepository,
	workflowRepo workflow.Repository,
	logger logger.Interface,
) *Service {
	return &Service{
		credentialRepo: credentialRepo,
		logRepo:        logRepo,
		workspaceRepo:  workspaceRepo,
		memberRepo:     memberRepo,
		workflowRepo:   workflowRepo,
		logger:         logger,
	}
}

// GetDashboard runs the independent queries concurrently.
func (s *Service) GetDashboard(ctx context.Context, userID uint, now time.Time) (*Dashboard, error) {
	d := &Dashboard{
		CredentialsByStatus: map[string]int{},
		WorkflowsByStatus:   map[string]int64{},
		RecentLogs:          []*dto.IntegrationLogResponse{},
		GeneratedAt:         now,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		creds, err := s.credentialRepo.ListByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("credentials: %w", err)
		}
		d.TotalCredentials = len(creds)
		for _, c := range creds {
			d.CredentialsByStatus[string(c.Status())]++
			if c.Status() == credential.StatusConnected {
				d.ConnectedPlatforms++
			}
		}
		return nil
	})
	g.Go(func() error {
		n, err := s.workspaceRepo.CountForUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("workspaces: %w", err)
		}
		d.WorkspaceCount = n
		return nil
	})
	g.Go(func() error {
		logs, _, err := s.logRepo.List(gctx, credential.LogFilter{UserID: userID, Page: 1, PageSize: RecentLogLimit})
		if err != nil {
			return fmt.Errorf("integration logs: %w", err)
		}
		d.RecentLogs = dto.ToIntegrationLogResponses(logs)
		return nil
	})
	g.Go(func() error {
		members, err := s.memberRepo.ListByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("memberships: %w", err)
		}
		ids := make([]uint, 0, len(members))
		for _, m := range members {
			if m.IsActive() {
				ids = append(ids, m.WorkspaceID())
			}
		}
		if len(ids) == 0 {
			return nil
		}
		counts, err := s.workflowRepo.CountByStatus(gctx, ids)
		if err != nil {
			return fmt.Errorf("workflows: %w", err)
		}
		for status, n := range counts {
			d.WorkflowsByStatus[string(status)] = n
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Errorw("failed to build dashboard", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}
	if d.RecentLogs == nil {
		d.RecentLogs = []*dto.IntegrationLogResponse{}
	}
	return d, nil
}
