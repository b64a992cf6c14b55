package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tahasaad555/campus-admin-api/internal/models"
	appErrors "github.com/tahasaad555/campus-admin-api/pkg/errors"
	"github.com/tahasaad555/campus-admin-api/pkg/export"
	"github.com/tahasaad555/campus-admin-api/pkg/jobs"
)

type reportRepository interface {
	Create(ctx context.Context, job *models.ReportJob) error
	FindByID(ctx context.Context, id string) (*models.ReportJob, error)
	ListByRequester(ctx context.Context, userID string, limit int) ([]models.ReportJob, error)
	MarkRunning(ctx context.Context, id string) error
	Complete(ctx context.Context, id, contentType string, payload []byte) error
	Fail(ctx context.Context, id, message string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type reportClassGroupSource interface {
	FindByID(ctx context.Context, id string) (*models.ClassGroupDetail, error)
	ListEntries(ctx context.Context, classGroupID string) ([]models.TimetableEntry, error)
}

type reportDashboardSource interface {
	BusiestRooms(ctx context.Context, limit int) ([]models.RoomUsage, error)
}

type reportReservationSource interface {
	List(ctx context.Context, filter models.ReservationFilter) ([]models.ReservationDetail, int, error)
}

// ReportServiceConfig tunes the report worker pool.
type ReportServiceConfig struct {
	WorkerConcurrency int
	WorkerRetries     int
	RetentionTTL      time.Duration
}

// ReportService renders exports asynchronously: callers enqueue a job and
// poll it until DONE, then download the payload.
type ReportService struct {
	repo         reportRepository
	groups       reportClassGroupSource
	dashboards   reportDashboardSource
	reservations reportReservationSource
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	queue        *jobs.Queue
	logger       *zap.Logger
	cfg          ReportServiceConfig
}

// NewReportService constructs a ReportService and its worker queue. Start
// must be called before jobs are accepted.
func NewReportService(repo reportRepository, groups reportClassGroupSource, dashboards reportDashboardSource, reservations reportReservationSource, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WorkerConcurrency <= 0 {
		cfg.WorkerConcurrency = 2
	}
	if cfg.RetentionTTL <= 0 {
		cfg.RetentionTTL = 24 * time.Hour
	}

	s := &ReportService{
		repo:         repo,
		groups:       groups,
		dashboards:   dashboards,
		reservations: reservations,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		logger:       logger,
		cfg:          cfg,
	}
	s.queue = jobs.NewQueue("reports", s.process, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool.
func (s *ReportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *ReportService) Stop() {
	s.queue.Stop()
}

// Enqueue persists a job and hands it to the worker pool.
func (s *ReportService) Enqueue(ctx context.Context, reportType models.ReportType, params, requestedBy string) (*models.ReportJob, error) {
	switch reportType {
	case models.ReportRoomUsageCSV, models.ReportTimetablePDF, models.ReportReservationCSV:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report type: %s", reportType))
	}
	if reportType == models.ReportTimetablePDF && params == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetable reports require a class group id")
	}

	job := &models.ReportJob{
		Type:        reportType,
		Params:      params,
		RequestedBy: requestedBy,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist report job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(reportType)}); err != nil {
		if failErr := s.repo.Fail(ctx, job.ID, "worker pool unavailable"); failErr != nil {
			s.logger.Warn("failed to mark report job failed", zap.Error(failErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}
	return job, nil
}

// Get loads a job's status without its payload.
func (s *ReportService) Get(ctx context.Context, id string) (*models.ReportJob, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	job.Payload = nil
	return job, nil
}

// ListMine returns recent jobs for the requesting user.
func (s *ReportService) ListMine(ctx context.Context, userID string, limit int) ([]models.ReportJob, error) {
	list, err := s.repo.ListByRequester(ctx, userID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list report jobs")
	}
	return list, nil
}

// Download returns a finished job including its payload.
func (s *ReportService) Download(ctx context.Context, id string) (*models.ReportJob, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	if job.Status != models.ReportDone {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("report is %s, not ready for download", job.Status))
	}
	return job, nil
}

// PurgeExpired removes finished jobs past the retention window.
func (s *ReportService) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.cfg.RetentionTTL)
	return s.repo.DeleteOlderThan(ctx, cutoff)
}

// process is the queue handler rendering one report.
func (s *ReportService) process(ctx context.Context, job jobs.Job) error {
	stored, err := s.repo.FindByID(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load report job %s: %w", job.ID, err)
	}
	if err := s.repo.MarkRunning(ctx, stored.ID); err != nil {
		s.logger.Warn("failed to mark report running", zap.String("job_id", stored.ID), zap.Error(err))
	}

	var payload []byte
	var contentType string
	switch stored.Type {
	case models.ReportRoomUsageCSV:
		payload, contentType, err = s.renderRoomUsage(ctx)
	case models.ReportTimetablePDF:
		payload, contentType, err = s.renderTimetable(ctx, stored.Params)
	case models.ReportReservationCSV:
		payload, contentType, err = s.renderReservations(ctx)
	default:
		err = fmt.Errorf("unknown report type: %s", stored.Type)
	}
	if err != nil {
		if failErr := s.repo.Fail(ctx, stored.ID, err.Error()); failErr != nil {
			s.logger.Warn("failed to record report failure", zap.String("job_id", stored.ID), zap.Error(failErr))
		}
		return err
	}

	if err := s.repo.Complete(ctx, stored.ID, contentType, payload); err != nil {
		return fmt.Errorf("complete report job %s: %w", stored.ID, err)
	}
	s.logger.Info("report rendered", zap.String("job_id", stored.ID), zap.String("type", string(stored.Type)), zap.Int("bytes", len(payload)))
	return nil
}

func (s *ReportService) renderRoomUsage(ctx context.Context) ([]byte, string, error) {
	usage, err := s.dashboards.BusiestRooms(ctx, 50)
	if err != nil {
		return nil, "", err
	}
	data := export.Dataset{Headers: []string{"Room", "Entries", "Weekly Hours"}}
	for _, row := range usage {
		data.Rows = append(data.Rows, map[string]string{
			"Room":         row.Location,
			"Entries":      strconv.Itoa(row.EntryCount),
			"Weekly Hours": strconv.Itoa(row.HoursUsed),
		})
	}
	payload, err := s.csv.Render(data)
	return payload, "text/csv", err
}

func (s *ReportService) renderTimetable(ctx context.Context, classGroupID string) ([]byte, string, error) {
	group, err := s.groups.FindByID(ctx, classGroupID)
	if err != nil {
		return nil, "", fmt.Errorf("load class group %s: %w", classGroupID, err)
	}
	entries, err := s.groups.ListEntries(ctx, classGroupID)
	if err != nil {
		return nil, "", err
	}

	data := export.Dataset{Headers: []string{"Day", "Start", "End", "Course", "Type", "Room", "Instructor"}}
	for _, entry := range entries {
		data.Rows = append(data.Rows, map[string]string{
			"Day":        string(entry.Day),
			"Start":      entry.StartTime,
			"End":        entry.EndTime,
			"Course":     entry.Name,
			"Type":       string(entry.Type),
			"Room":       entry.Location,
			"Instructor": entry.Instructor,
		})
	}
	title := fmt.Sprintf("Timetable %s (%s)", group.Name, group.AcademicYear)
	payload, err := s.pdf.Render(data, title)
	return payload, "application/pdf", err
}

func (s *ReportService) renderReservations(ctx context.Context) ([]byte, string, error) {
	list, _, err := s.reservations.List(ctx, models.ReservationFilter{PageSize: 100})
	if err != nil {
		return nil, "", err
	}
	data := export.Dataset{Headers: []string{"Room", "Date", "Start", "End", "Requester", "Status", "Purpose"}}
	for _, res := range list {
		data.Rows = append(data.Rows, map[string]string{
			"Room":      res.RoomNumber,
			"Date":      res.Date.Format("2006-01-02"),
			"Start":     res.StartTime,
			"End":       res.EndTime,
			"Requester": res.UserFirstName + " " + res.UserLastName,
			"Status":    string(res.Status),
			"Purpose":   res.Purpose,
		})
	}
	payload, err := s.csv.Render(data)
	return payload, "text/csv", err
}
