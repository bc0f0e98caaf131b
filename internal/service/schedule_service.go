package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kadeface/ai-class-scheduling/internal/dto"
	"github.com/kadeface/ai-class-scheduling/internal/models"
	"github.com/kadeface/ai-class-scheduling/internal/scheduling"
	appErrors "github.com/kadeface/ai-class-scheduling/pkg/errors"
	"github.com/kadeface/ai-class-scheduling/pkg/export"
	"github.com/kadeface/ai-class-scheduling/pkg/jobs"
)

// Proposal lifecycle states for asynchronous generation.
const (
	ProposalStatusPending = "pending"
	ProposalStatusReady   = "ready"
	ProposalStatusFailed  = "failed"
)

type scheduleEngine interface {
	Schedule(input scheduling.Input) *scheduling.Result
}

type scheduleRepository interface {
	Replace(ctx context.Context, academicYear, semester string, classIDs []string, entries []models.ScheduleEntry) error
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, error)
}

type runObserver interface {
	ObserveRun(result *scheduling.Result, elapsed time.Duration)
}

type timetableCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{})
	InvalidatePrefix(ctx context.Context, prefix string)
}

// ScheduleServiceConfig governs service behaviour. MaxIterations and
// TimeLimit act as defaults for requests that do not set them in rules.
type ScheduleServiceConfig struct {
	ProposalTTL   time.Duration
	AsyncWorkers  int
	MaxIterations int
	TimeLimit     time.Duration
}

// ScheduleService orchestrates scheduling runs: it validates requests, feeds
// the engine, parks proposals for review and commits accepted ones.
type ScheduleService struct {
	engine    scheduleEngine
	repo      scheduleRepository
	cache     timetableCache
	metrics   runObserver
	validator *validator.Validate
	logger    *zap.Logger
	store     *proposalStore
	queue     *jobs.Queue
	cfg       ScheduleServiceConfig
}

// NewScheduleService wires scheduler dependencies. Optional collaborators
// (repo, cache, metrics) may be nil; the related features degrade gracefully.
func NewScheduleService(
	engine scheduleEngine,
	repo scheduleRepository,
	cache timetableCache,
	metrics runObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScheduleServiceConfig,
) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.AsyncWorkers <= 0 {
		cfg.AsyncWorkers = 1
	}

	s := &ScheduleService{
		engine:    engine,
		repo:      repo,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		store:     newProposalStore(cfg.ProposalTTL),
		cfg:       cfg,
	}
	s.queue = jobs.NewQueue("schedule-generation", s.runAsyncJob, jobs.QueueConfig{
		Workers: cfg.AsyncWorkers,
		Logger:  logger,
	})
	return s
}

// StartWorkers launches the async generation workers.
func (s *ScheduleService) StartWorkers(ctx context.Context) {
	s.queue.Start(ctx)
}

// StopWorkers drains the async generation workers.
func (s *ScheduleService) StopWorkers() {
	s.queue.Stop()
}

// Generate runs the engine synchronously and parks the result as a proposal.
// An async request is queued instead and returns a pending proposal.
func (s *ScheduleService) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule generation payload")
	}

	proposal := scheduleProposal{
		ProposalID:  uuid.NewString(),
		Status:      ProposalStatusPending,
		Request:     req,
		RequestedAt: time.Now().UTC(),
	}

	if req.Async {
		s.store.Save(proposal)
		if err := s.queue.Enqueue(jobs.Job{ID: proposal.ProposalID, Type: "generate", Payload: proposal.ProposalID}); err != nil {
			s.store.Delete(proposal.ProposalID)
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue schedule generation")
		}
		return &dto.GenerateScheduleResponse{ProposalID: proposal.ProposalID, Status: ProposalStatusPending}, nil
	}

	result := s.runEngine(req)
	proposal.Status = ProposalStatusReady
	proposal.Result = result
	s.store.Save(proposal)

	return &dto.GenerateScheduleResponse{
		ProposalID: proposal.ProposalID,
		Status:     proposal.Status,
		Result:     result,
	}, nil
}

// Proposal returns the current state of a generated (or pending) proposal.
func (s *ScheduleService) Proposal(ctx context.Context, proposalID string) (*dto.GenerateScheduleResponse, error) {
	if proposalID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "proposal id is required")
	}
	proposal, ok := s.store.Get(proposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	return &dto.GenerateScheduleResponse{
		ProposalID: proposal.ProposalID,
		Status:     proposal.Status,
		Result:     proposal.Result,
	}, nil
}

// Save persists a ready proposal's assignments atomically: the scope covered
// by the run is rewritten in one transaction.
func (s *ScheduleService) Save(ctx context.Context, req dto.SaveScheduleRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save schedule payload")
	}
	if s.repo == nil {
		return 0, appErrors.Clone(appErrors.ErrInternal, "schedule repository unavailable")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if proposal.Status != ProposalStatusReady || proposal.Result == nil {
		return 0, appErrors.Clone(appErrors.ErrPreconditionFailed, "proposal is not ready to be saved")
	}
	if !proposal.Result.Success {
		return 0, appErrors.Clone(appErrors.ErrConflict, "a failed proposal cannot be saved")
	}

	entries, classIDs := buildEntries(proposal)
	if err := s.repo.Replace(ctx, proposal.Request.AcademicYear, proposal.Request.Semester, classIDs, entries); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist schedule entries")
	}

	if s.cache != nil {
		s.cache.InvalidatePrefix(ctx, timetableCachePrefix(proposal.Request.AcademicYear, proposal.Request.Semester))
	}
	s.store.Delete(req.ProposalID)

	s.logger.Info("schedule saved",
		zap.String("academic_year", proposal.Request.AcademicYear),
		zap.String("semester", proposal.Request.Semester),
		zap.Int("entries", len(entries)),
	)
	return len(entries), nil
}

// List returns persisted schedule entries, read through the cache.
func (s *ScheduleService) List(ctx context.Context, query dto.ScheduleQuery) ([]models.ScheduleEntry, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule query")
	}
	if s.repo == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "schedule repository unavailable")
	}

	key := fmt.Sprintf("%s:%s:%s:%s", timetableCachePrefix(query.AcademicYear, query.Semester), query.ClassID, query.TeacherID, "v1")
	var cached []models.ScheduleEntry
	if s.cache != nil && s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	entries, err := s.repo.List(ctx, models.ScheduleFilter{
		AcademicYear: query.AcademicYear,
		Semester:     query.Semester,
		ClassID:      query.ClassID,
		TeacherID:    query.TeacherID,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule entries")
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, entries)
	}
	return entries, nil
}

// Export renders one class's persisted weekly timetable as CSV or PDF.
func (s *ScheduleService) Export(ctx context.Context, req dto.ExportScheduleRequest) ([]byte, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export request")
	}
	entries, err := s.List(ctx, dto.ScheduleQuery{
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		ClassID:      req.ClassID,
	})
	if err != nil {
		return nil, "", err
	}
	if len(entries) == 0 {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "no schedule entries for this class")
	}

	days, periods := gridShape(entries)
	title := fmt.Sprintf("%s %s 课表", req.AcademicYear, req.Semester)
	grid := export.NewTimetableGrid(title, days, periods)
	for _, e := range entries {
		cell := e.CourseName
		if cell == "" {
			cell = e.CourseID
		}
		if e.TeacherName != "" {
			cell += " " + e.TeacherName
		}
		grid.Set(e.DayOfWeek, e.Period, cell)
	}

	switch req.Format {
	case "pdf":
		data, err := export.NewPDFExporter().Render(grid)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, "application/pdf", nil
	default:
		data, err := export.NewCSVExporter().Render(grid)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, "text/csv", nil
	}
}

func (s *ScheduleService) runEngine(req dto.GenerateScheduleRequest) *scheduling.Result {
	rules := models.DefaultSchedulingRules()
	rules.MaxIterations, rules.TimeLimit = 0, 0
	if req.Rules != nil {
		rules = *req.Rules
	}
	if rules.MaxIterations <= 0 && s.cfg.MaxIterations > 0 {
		rules.MaxIterations = s.cfg.MaxIterations
	}
	if rules.TimeLimit <= 0 && s.cfg.TimeLimit > 0 {
		rules.TimeLimit = s.cfg.TimeLimit
	}
	started := time.Now()
	result := s.engine.Schedule(scheduling.Input{
		Plans:        req.Plans,
		Rules:        rules,
		Periods:      req.Periods,
		Rooms:        req.Rooms,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
	})
	if s.metrics != nil {
		s.metrics.ObserveRun(result, time.Since(started))
	}
	return result
}

func (s *ScheduleService) runAsyncJob(ctx context.Context, job jobs.Job) error {
	proposalID, _ := job.Payload.(string)
	proposal, ok := s.store.Get(proposalID)
	if !ok {
		return fmt.Errorf("proposal %s vanished before generation", proposalID)
	}

	result := s.runEngine(proposal.Request)
	if result == nil {
		proposal.Status = ProposalStatusFailed
	} else {
		proposal.Status = ProposalStatusReady
		proposal.Result = result
	}
	s.store.Save(proposal)
	return nil
}

func buildEntries(proposal scheduleProposal) ([]models.ScheduleEntry, []string) {
	courseNames := make(map[string]string)
	teacherNames := make(map[string]string)
	for _, plan := range proposal.Request.Plans {
		for _, entry := range plan.CourseAssignments {
			if entry.Course != nil {
				courseNames[entry.Course.ID] = entry.Course.Name
			}
			if entry.Teacher != nil {
				teacherNames[entry.Teacher.ID] = entry.Teacher.Name
			}
		}
	}

	classSeen := make(map[string]bool)
	var classIDs []string
	entries := make([]models.ScheduleEntry, 0, len(proposal.Result.Assignments))
	for _, a := range proposal.Result.Assignments {
		entries = append(entries, models.ScheduleEntry{
			AcademicYear: proposal.Request.AcademicYear,
			Semester:     proposal.Request.Semester,
			ClassID:      a.ClassID,
			CourseID:     a.CourseID,
			CourseName:   courseNames[a.CourseID],
			TeacherID:    a.TeacherID,
			TeacherName:  teacherNames[a.TeacherID],
			RoomID:       a.RoomID,
			DayOfWeek:    a.Slot.DayOfWeek,
			Period:       a.Slot.Period,
			Status:       models.ScheduleEntryStatusActive,
		})
		if !classSeen[a.ClassID] {
			classSeen[a.ClassID] = true
			classIDs = append(classIDs, a.ClassID)
		}
	}
	return entries, classIDs
}

func gridShape(entries []models.ScheduleEntry) ([]int, int) {
	daySeen := make(map[int]bool)
	var days []int
	periods := 0
	for _, e := range entries {
		if !daySeen[e.DayOfWeek] {
			daySeen[e.DayOfWeek] = true
			days = append(days, e.DayOfWeek)
		}
		if e.Period > periods {
			periods = e.Period
		}
	}
	return days, periods
}

func timetableCachePrefix(academicYear, semester string) string {
	return fmt.Sprintf("timetable:%s:%s", academicYear, semester)
}

// --- Proposal store ---

type scheduleProposal struct {
	ProposalID  string
	Status      string
	Request     dto.GenerateScheduleRequest
	Result      *scheduling.Result
	RequestedAt time.Time
}

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]scheduleProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]scheduleProposal),
	}
}

func (s *proposalStore) Save(proposal scheduleProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ProposalID] = proposal
}

func (s *proposalStore) Get(id string) (scheduleProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return scheduleProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return scheduleProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
