package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driven"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driving"
	"github.com/custodia-labs/shiftsheet/internal/logger"
)

// Ensure SyncService implements the interface.
var _ driving.SyncService = (*SyncService)(nil)

// SyncService fetches team data from Graph, writes it to the workbook and
// reconciles workbook edits back into schedule groups.
type SyncService struct {
	graph     driven.GraphClient
	workbooks driven.WorkbookOpener
	history   driven.SyncHistoryStore
	session   *Session
	policy    domain.UnknownUserPolicy
	now       func() time.Time
}

// NewSyncService creates a sync service. history and session may be nil.
func NewSyncService(
	graph driven.GraphClient,
	workbooks driven.WorkbookOpener,
	history driven.SyncHistoryStore,
	session *Session,
) *SyncService {
	return &SyncService{
		graph:     graph,
		workbooks: workbooks,
		history:   history,
		session:   session,
		policy:    domain.UnknownUserSkip,
		now:       time.Now,
	}
}

// SetDefaultPolicy sets the unknown-user policy used when SyncOptions leaves it empty.
func (s *SyncService) SetDefaultPolicy(policy domain.UnknownUserPolicy) {
	if policy.Valid() {
		s.policy = policy
	}
}

// ListTeams returns the signed-in user's joined teams.
func (s *SyncService) ListTeams(ctx context.Context) ([]domain.Team, error) {
	teams, err := s.graph.ListJoinedTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("list joined teams: %w", err)
	}
	return teams, nil
}

// WriteTeams writes the joined teams table to the workbook.
func (s *SyncService) WriteTeams(ctx context.Context, workbookPath string) ([]domain.Team, error) {
	teams, err := s.ListTeams(ctx)
	if err != nil {
		return nil, err
	}

	wb, err := s.workbooks.Open(workbookPath, true)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	if err := wb.WriteTeams(teams); err != nil {
		return nil, fmt.Errorf("write teams: %w", err)
	}
	if err := wb.Save(); err != nil {
		return nil, fmt.Errorf("save workbook: %w", err)
	}
	return teams, nil
}

// teamData is the indexed remote state of one team.
type teamData struct {
	members *domain.MembersMap
	groups  *domain.ScheduleGroupNamesMap
}

// fetchTeam reads members, owners and schedule groups concurrently and indexes them.
func (s *SyncService) fetchTeam(ctx context.Context, teamID string) (*teamData, error) {
	var (
		members []domain.Member
		owners  []domain.Member
		groups  []domain.ScheduleGroup
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = s.graph.ListMembers(gctx, teamID)
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		owners, err = s.graph.ListOwners(gctx, teamID)
		if err != nil {
			return fmt.Errorf("list owners: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		groups, err = s.graph.ListScheduleGroups(gctx, teamID)
		if err != nil {
			return fmt.Errorf("list schedule groups: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("sync: team %s has %d members, %d owners, %d schedule groups",
		teamID, len(members), len(owners), len(groups))

	return &teamData{
		members: BuildMembersMap(owners, members),
		groups:  BuildScheduleGroupNamesMap(groups),
	}, nil
}

// Export writes a team's members and schedule groups to the workbook.
func (s *SyncService) Export(ctx context.Context, teamID, workbookPath string) (err error) {
	if err := s.begin(domain.EventFetchStarted); err != nil {
		return err
	}
	defer func() { s.end(domain.EventFetchCompleted, err) }()

	if s.session != nil {
		s.session.SelectTeam(teamID)
	}

	data, err := s.fetchTeam(ctx, teamID)
	if err != nil {
		return err
	}

	wb, err := s.workbooks.Open(workbookPath, true)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	if err := wb.WriteTeamMembers(data.members, data.groups); err != nil {
		return fmt.Errorf("write team members: %w", err)
	}
	if err := wb.WriteScheduleGroups(data.members, data.groups); err != nil {
		return fmt.Errorf("write schedule groups: %w", err)
	}
	if err := wb.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	logger.Info("exported %d members and %d schedule groups to %s",
		data.members.Len(), data.groups.Len(), workbookPath)
	return nil
}

// Sync reconciles the workbook schedule table into Graph schedule groups.
// The returned report is non-nil whenever the run got as far as starting.
func (s *SyncService) Sync(ctx context.Context, teamID string, opts driving.SyncOptions) (report *domain.SyncReport, err error) {
	if err := s.begin(domain.EventSyncStarted); err != nil {
		return nil, err
	}

	report = &domain.SyncReport{
		RunID:     uuid.New().String(),
		TeamID:    teamID,
		StartedAt: s.now(),
		DryRun:    opts.DryRun,
	}

	defer func() {
		report.FinishedAt = s.now()
		if err != nil {
			report.Error = err.Error()
		}
		s.record(ctx, report)
		s.end(domain.EventSyncCompleted, err)
	}()

	if s.session != nil {
		s.session.SelectTeam(teamID)
	}

	policy := opts.UnknownUserPolicy
	if !policy.Valid() {
		policy = s.policy
	}

	rows, err := s.readScheduleRows(opts.WorkbookPath)
	if err != nil {
		return report, err
	}

	data, err := s.fetchTeam(ctx, teamID)
	if err != nil {
		return report, err
	}

	plan, err := Reconcile(data.members, data.groups, rows, policy)
	if err != nil {
		return report, fmt.Errorf("reconcile: %w", err)
	}

	report.Operations = plan.Operations(teamID)
	report.Skipped = plan.Skipped

	if opts.DryRun || plan.Empty() {
		logger.Debug("sync: %d operations planned, push skipped (dry run: %v)", len(report.Operations), opts.DryRun)
		return report, nil
	}

	results, err := PushOperations(ctx, s.graph, report.Operations)
	for _, r := range results {
		if r.Err != nil {
			report.Failed = append(report.Failed, domain.FailedOperation{Operation: r.Operation, Err: r.Err.Error()})
		}
	}
	if err != nil {
		return report, err
	}

	created, updated := report.Counts()
	logger.Info("sync complete: %d groups created, %d updated, %d rows skipped",
		created, updated, len(report.Skipped))
	return report, nil
}

func (s *SyncService) readScheduleRows(path string) ([]domain.ScheduleRow, error) {
	wb, err := s.workbooks.Open(path, false)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	rows, err := wb.ReadScheduleRows()
	if err != nil {
		return nil, fmt.Errorf("read schedule table: %w", err)
	}
	return rows, nil
}

// History returns recent sync runs, newest first.
func (s *SyncService) History(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.List(ctx, limit)
}

func (s *SyncService) record(ctx context.Context, report *domain.SyncReport) {
	if s.history == nil {
		return
	}
	// Record even if the caller's context was cancelled mid-run.
	if err := s.history.Record(context.WithoutCancel(ctx), report.Summary()); err != nil {
		logger.Warn("sync: failed to record run %s: %v", report.RunID, err)
	}
}

// begin moves the session into an in-process phase.
func (s *SyncService) begin(event domain.Event) error {
	if s.session == nil {
		return nil
	}
	err := s.session.Fire(event)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidTransition) && !s.session.Phase().SignedIn() {
		return fmt.Errorf("%w: run 'shiftsheet login' first", domain.ErrAuthRequired)
	}
	return err
}

// end completes or fails the in-process phase.
func (s *SyncService) end(completed domain.Event, err error) {
	if s.session == nil {
		return
	}
	if err != nil {
		s.session.Fail(err)
		return
	}
	if ferr := s.session.Fire(completed); ferr != nil {
		logger.Debug("sync: session transition %s: %v", completed, ferr)
	}
}
