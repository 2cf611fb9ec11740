package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leakspider/leakspider/internal/alert"
	"github.com/leakspider/leakspider/internal/crawler"
	"github.com/leakspider/leakspider/internal/database"
	"github.com/leakspider/leakspider/internal/detect"
	"github.com/leakspider/leakspider/internal/model"
	"github.com/leakspider/leakspider/internal/results"
)

// CrawlStep fetches the service's pages breadth-first.
type CrawlStep struct {
	spider *crawler.Spider
}

// NewCrawlStep creates the crawl stage.
func NewCrawlStep(spider *crawler.Spider) *CrawlStep {
	return &CrawlStep{spider: spider}
}

// Name returns the step name.
func (s *CrawlStep) Name() string { return "crawl" }

// Do crawls the seed and records fetched pages in the report.
func (s *CrawlStep) Do(ctx context.Context, report *model.CrawlReport) error {
	seedURL := report.Seed
	if !strings.Contains(seedURL, "://") {
		seedURL = "http://" + seedURL
	}

	result, err := s.spider.Crawl(ctx, seedURL)
	if result != nil {
		report.Pages = result.Pages
		report.PagesCrawled = len(result.Pages)
		report.PagesFailed = result.Failed
	}
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}
	return nil
}

// DetectStep scans fetched pages for leaked credentials.
type DetectStep struct {
	scanner *detect.Scanner
}

// NewDetectStep creates the detection stage.
func NewDetectStep(scanner *detect.Scanner) *DetectStep {
	return &DetectStep{scanner: scanner}
}

// Name returns the step name.
func (s *DetectStep) Name() string { return "detect" }

// Do runs every matcher over every page snapshot.
func (s *DetectStep) Do(ctx context.Context, report *model.CrawlReport) error {
	for _, page := range report.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Credentials = append(report.Credentials, s.scanner.Scan(page)...)
	}
	return nil
}

// PersistStep stores discoveries in the database and the append-only
// results file.
type PersistStep struct {
	db      *database.LeakDB
	results *results.Writer
	logger  *slog.Logger
}

// NewPersistStep creates the persistence stage.
func NewPersistStep(db *database.LeakDB, writer *results.Writer, logger *slog.Logger) *PersistStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistStep{db: db, results: writer, logger: logger}
}

// Name returns the step name.
func (s *PersistStep) Name() string { return "persist" }

// Do writes each discovery to the database and, when it is new, appends it
// to the results file. Credentials already stored by an earlier run are
// removed from the report so the alert stage fires exactly once per
// discovery, not once per run that re-encounters it.
func (s *PersistStep) Do(ctx context.Context, report *model.CrawlReport) error {
	fresh := report.Credentials[:0]
	for i := range report.Credentials {
		cred := &report.Credentials[i]

		inserted, err := s.db.InsertCredential(ctx, cred)
		if err != nil {
			return fmt.Errorf("failed to persist credential: %w", err)
		}
		if !inserted {
			s.logger.Debug("credential already known, skipping",
				slog.String("identifier", cred.Identifier))
			continue
		}

		if err := s.results.Append(cred); err != nil {
			// The database has the record; losing the file line is
			// recoverable, so log and keep going.
			report.AddError("failed to append result for " + cred.Identifier)
			s.logger.Error("failed to append result",
				slog.String("identifier", cred.Identifier),
				slog.String("error", err.Error()))
		}
		fresh = append(fresh, *cred)
	}
	report.Credentials = fresh
	return nil
}

// AlertStep sends notifications for newly discovered credentials.
type AlertStep struct {
	dispatcher *alert.Dispatcher
}

// NewAlertStep creates the alert stage.
func NewAlertStep(dispatcher *alert.Dispatcher) *AlertStep {
	return &AlertStep{dispatcher: dispatcher}
}

// Name returns the step name.
func (s *AlertStep) Name() string { return "alert" }

// Do dispatches alerts and records delivery counts. Delivery failures are
// counted, never returned; alerting must not take down the run.
func (s *AlertStep) Do(ctx context.Context, report *model.CrawlReport) error {
	sent, failed := s.dispatcher.Dispatch(ctx, report.Credentials)
	report.AlertsSent = sent
	report.AlertsFailed = failed
	return nil
}

// SaveReportStep stores the finished report in the database for the
// history subcommand.
type SaveReportStep struct {
	db *database.LeakDB
}

// NewSaveReportStep creates the report persistence stage.
func NewSaveReportStep(db *database.LeakDB) *SaveReportStep {
	return &SaveReportStep{db: db}
}

// Name returns the step name.
func (s *SaveReportStep) Name() string { return "save-report" }

// Do stamps the finish time and saves the report.
func (s *SaveReportStep) Do(ctx context.Context, report *model.CrawlReport) error {
	report.FinishedAt = time.Now()
	if err := s.db.SaveCrawlReport(ctx, report); err != nil {
		return fmt.Errorf("failed to save crawl report: %w", err)
	}
	return nil
}

// DefaultPipeline assembles the standard crawl-detect-persist-alert run.
func DefaultPipeline(
	spider *crawler.Spider,
	scanner *detect.Scanner,
	db *database.LeakDB,
	writer *results.Writer,
	dispatcher *alert.Dispatcher,
	logger *slog.Logger,
) *Pipeline {
	p := New(WithLogger(logger))
	p.AddSteps(
		NewCrawlStep(spider),
		NewDetectStep(scanner),
		NewPersistStep(db, writer, logger),
		NewAlertStep(dispatcher),
		NewSaveReportStep(db),
	)
	return p
}
