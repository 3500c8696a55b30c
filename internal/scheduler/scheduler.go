package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"SignalScanner/internal/notifier"
	"SignalScanner/internal/report"
)

// Scanner runs a batch scan; *scanner.Scanner implements it.
type Scanner interface {
	Scan(ctx context.Context, list []string) (*report.Report, error)
}

// Sender delivers a formatted message; *notifier.TelegramNotifier implements it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Publisher streams a finished report; *publisher.Producer implements it.
type Publisher interface {
	PublishReport(ctx context.Context, rep *report.Report) error
}

// Scheduler manages the periodic watchlist scan and chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Scanner   Scanner
	Watchlist func() ([]string, error)
	Latest    *report.Latest
	Notifier  Sender
	Publisher Publisher
	Ctx       context.Context
	log       zerolog.Logger
}

// NewScheduler creates a new Scheduler. Notifier and Publisher may be nil.
func NewScheduler(ctx context.Context, s Scanner, watchlist func() ([]string, error), latest *report.Latest,
	tn Sender, pub Publisher, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Scanner:   s,
		Watchlist: watchlist,
		Latest:    latest,
		Notifier:  tn,
		Publisher: pub,
		Ctx:       ctx,
		log:       log,
	}
}

// RegisterAll registers the watchlist scan task.
func (s *Scheduler) RegisterAll(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunScanNow executes the watchlist scan immediately.
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	s.log.Info().Msg("running scheduled scan")
	list, err := s.Watchlist()
	if err != nil {
		s.log.Error().Err(err).Msg("load watchlist")
		s.trySend(fmt.Sprintf("❌ Scheduled scan failed: %v", err))
		return
	}
	if _, err := s.runScan(list); err != nil {
		s.trySend(fmt.Sprintf("❌ Scheduled scan failed: %v", err))
	}
}

// runScan scans list, stores the report as latest, sends the summary and
// publishes every result.
func (s *Scheduler) runScan(list []string) (*report.Report, error) {
	rep, err := s.Scanner.Scan(s.Ctx, list)
	if err != nil {
		s.log.Error().Err(err).Msg("scan failed")
		return nil, err
	}
	s.Latest.Set(rep)

	s.trySend(notifier.FormatScanSummary(rep))

	if s.Publisher != nil {
		if err := s.Publisher.PublishReport(s.Ctx, rep); err != nil {
			s.log.Error().Err(err).Str("scan_id", rep.ID).Msg("publish report")
		}
	}
	return rep, nil
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(_ context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch fields[0] {
	case "/scan":
		list := fields[1:]
		if len(list) == 0 {
			wl, err := s.Watchlist()
			if err != nil {
				return fmt.Sprintf("❌ Load watchlist: %v", err)
			}
			list = wl
		}
		// runScan already delivers the summary.
		if _, err := s.runScan(list); err != nil {
			return fmt.Sprintf("❌ Scan failed: %v", err)
		}
		return ""
	case "/latest":
		rep := s.Latest.Get()
		if rep == nil {
			return "No scan has completed yet."
		}
		return notifier.FormatScanSummary(rep)
	default:
		return helpText
	}
}

const helpText = "Available commands:\n• /scan [TICKER ...] scan the given tickers or the watchlist\n• /latest show the last scan summary"

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
