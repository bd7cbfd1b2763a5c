package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/bubbel/internal/config"
	"github.com/mamadbah2/bubbel/internal/domain/models"
	"github.com/mamadbah2/bubbel/internal/service/reporting"
	"github.com/mamadbah2/bubbel/pkg/clients/whatsapp"
)

// ReportBuilder produces the nightly report.
type ReportBuilder interface {
	BuildDailyReport(ctx context.Context, day time.Time) (models.DailyReport, error)
}

// Archive stores built reports.
type Archive interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

// Scheduler manages scheduled tasks. Archive and notifier are optional.
type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	builder   ReportBuilder
	archive   Archive
	notifier  whatsapp.Client
	recipient string
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.Config, builder ReportBuilder, archive Archive, notifier whatsapp.Client, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load report timezone: %w", err)
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		schedule:  cfg.Reporting.CronSchedule,
		builder:   builder,
		archive:   archive,
		notifier:  notifier,
		recipient: cfg.WhatsApp.AlertRecipient,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Start registers the nightly report and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.dailyReportJob); err != nil {
		return fmt.Errorf("schedule daily report %q: %w", s.schedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) dailyReportJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.RunDailyReport(ctx); err != nil {
		s.logger.Error("daily report failed", zap.Error(err))
	}
}

// RunDailyReport builds today's report, archives it and alerts on low stock.
// Archive and alert failures are logged and do not fail the run.
func (s *Scheduler) RunDailyReport(ctx context.Context) error {
	s.logger.Info("generating daily report")

	report, err := s.builder.BuildDailyReport(ctx, s.now())
	if err != nil {
		return fmt.Errorf("build daily report: %w", err)
	}

	if s.archive != nil {
		if err := s.archive.SaveDailyReport(ctx, report); err != nil {
			s.logger.Error("failed to archive daily report", zap.Error(err))
		} else {
			s.logger.Info("daily report archived", zap.Time("date", report.Date))
		}
	}

	if s.notifier == nil || s.recipient == "" || len(report.RestockProducts) == 0 {
		return nil
	}

	req := whatsapp.SendTextMessageRequest{
		To:   s.recipient,
		Body: reporting.FormatDailyReport(report),
	}
	if _, err := s.notifier.SendTextMessage(ctx, req); err != nil {
		s.logger.Error("failed to send low stock alert", zap.Error(err))
	} else {
		s.logger.Info("low stock alert sent", zap.Strings("products", report.RestockProducts))
	}
	return nil
}
