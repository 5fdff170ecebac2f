package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"inkmeta/internal"
	"inkmeta/internal/config"
	"inkmeta/internal/storage"
)

var ErrMalformedDocument = errors.New("malformed document")

type MalformedDocumentError struct {
	Archetype string
	Section   internal.Section
	Reason    string
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("%s: %s section %q: %s", e.Archetype, ErrMalformedDocument, e.Section, e.Reason)
}

func (e *MalformedDocumentError) Unwrap() error {
	return ErrMalformedDocument
}

type DocumentResult struct {
	Archetype      string
	Records        []internal.UsageRecord
	Primary        int
	Secondary      int
	BelowThreshold int
	Unresolved     int
	Omitted        int
}

type DocumentFailure struct {
	Archetype string
	Err       error
}

type RunResult struct {
	Records   []internal.UsageRecord
	Documents int
	Failed    []DocumentFailure
}

type Pipeline struct {
	cfg    config.Config
	logger *zap.Logger
}

func NewPipeline(cfg config.Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// ProcessDocument turns one report page into usage records: all key-card rows
// plus the less-frequent rows that clear the frequency threshold, each with a
// resolvable image path.
func (p *Pipeline) ProcessDocument(archetype string, r io.Reader) (DocumentResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return DocumentResult{}, eris.Wrapf(err, "pipeline: parse %s", archetype)
	}

	res := DocumentResult{Archetype: archetype}

	primary := ExtractSection(doc, internal.SectionKeyCards)
	switch primary.Status {
	case SectionAbsent:
		return DocumentResult{}, &MalformedDocumentError{Archetype: archetype, Section: primary.Section, Reason: "heading not found"}
	case SectionMalformed:
		return DocumentResult{}, &MalformedDocumentError{Archetype: archetype, Section: primary.Section, Reason: primary.Reason}
	}
	if primary.Empty {
		return DocumentResult{}, &MalformedDocumentError{Archetype: archetype, Section: primary.Section, Reason: "card table has no rows"}
	}
	res.Primary = len(primary.Rows)
	res.Omitted += primary.Omitted
	rows := append([]internal.CardRow(nil), primary.Rows...)

	secondary := ExtractSection(doc, internal.SectionLessFrequent)
	switch secondary.Status {
	case SectionMalformed:
		return DocumentResult{}, &MalformedDocumentError{Archetype: archetype, Section: secondary.Section, Reason: secondary.Reason}
	case SectionFound:
		res.Omitted += secondary.Omitted
		for _, row := range secondary.Rows {
			if !QualifiesLessFrequent(row) {
				res.BelowThreshold++
				continue
			}
			res.Secondary++
			rows = append(rows, row)
		}
	}

	for _, row := range rows {
		setCode, cardNumber, ok := ResolveIdentifier(row.ImageSrc)
		if !ok {
			res.Unresolved++
			p.logger.Debug("unresolvable image path",
				zap.String("archetype", archetype),
				zap.String("image_src", row.ImageSrc),
			)
			continue
		}
		res.Records = append(res.Records, internal.UsageRecord{
			Archetype:  archetype,
			Quantity:   row.Quantity,
			ImageSrc:   row.ImageSrc,
			SetCode:    setCode,
			CardNumber: cardNumber,
		})
	}

	p.logger.Info("document processed",
		zap.String("archetype", archetype),
		zap.Int("records", len(res.Records)),
		zap.Int("key_cards", res.Primary),
		zap.Int("less_frequent", res.Secondary),
		zap.Int("below_threshold", res.BelowThreshold),
		zap.Int("unresolved", res.Unresolved),
		zap.Int("omitted", res.Omitted),
	)
	return res, nil
}

func (p *Pipeline) ProcessFile(path string) (DocumentResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return DocumentResult{}, eris.Wrapf(err, "pipeline: open %s", path)
	}
	defer f.Close()
	return p.ProcessDocument(filepath.Base(path), f)
}

// ProcessDir processes every regular file in dir in name order. In strict mode
// the first malformed document ends the run; otherwise it is recorded and
// skipped.
func (p *Pipeline) ProcessDir(dir string) (RunResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return RunResult{}, eris.Wrapf(err, "pipeline: read dir %s", dir)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		// Stat follows symlinks so linked report files are picked up.
		info, err := os.Stat(filepath.Join(dir, e.Name()))
		if errors.Is(err, os.ErrNotExist) {
			p.logger.Warn("skipping dangling link", zap.String("archetype", e.Name()))
			continue
		}
		if err != nil {
			return RunResult{}, eris.Wrapf(err, "pipeline: stat %s", e.Name())
		}
		if info.Mode().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var run RunResult
	for _, name := range names {
		doc, err := p.ProcessFile(filepath.Join(dir, name))
		if err != nil {
			if !errors.Is(err, ErrMalformedDocument) || p.cfg.StrictMode {
				return RunResult{}, err
			}
			p.logger.Warn("skipping malformed document", zap.String("archetype", name), zap.Error(err))
			run.Failed = append(run.Failed, DocumentFailure{Archetype: name, Err: err})
			continue
		}
		run.Documents++
		run.Records = append(run.Records, doc.Records...)
	}
	return run, nil
}

type ScrapeService struct {
	cfg      config.Config
	logger   *zap.Logger
	pipeline *Pipeline
}

func NewScrapeService(cfg config.Config, logger *zap.Logger) *ScrapeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScrapeService{cfg: cfg, logger: logger, pipeline: NewPipeline(cfg, logger)}
}

type ScrapeResult struct {
	Documents int
	Failed    []DocumentFailure
	Inserted  int
	Corrected int64
}

// Run rebuilds the store at cfg.DBPath from every report in cfg.ReportDir. The
// store is only touched once every document has been processed.
func (s *ScrapeService) Run() (ScrapeResult, error) {
	start := time.Now()

	table, err := LoadCorrections(s.cfg.CorrectionsPath)
	if err != nil {
		return ScrapeResult{}, err
	}

	run, err := s.pipeline.ProcessDir(s.cfg.ReportDir)
	if err != nil {
		return ScrapeResult{}, err
	}

	written, err := storage.WriteRun(s.cfg.DBPath, run.Records, table.Entries())
	if err != nil {
		return ScrapeResult{}, err
	}

	s.logger.Info("store rebuilt",
		zap.String("db", s.cfg.DBPath),
		zap.Int("documents", run.Documents),
		zap.Int("failed", len(run.Failed)),
		zap.Int("inserted", written.Inserted),
		zap.Int64("corrected", written.Corrected),
		zap.Duration("elapsed", time.Since(start)),
	)

	return ScrapeResult{
		Documents: run.Documents,
		Failed:    run.Failed,
		Inserted:  written.Inserted,
		Corrected: written.Corrected,
	}, nil
}
