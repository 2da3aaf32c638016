package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/export"
	"github.com/andresuchdata/replenish/internal/replenishment"
	"github.com/rs/zerolog/log"
)

// ErrNoPublishers is returned when publishing is requested with nothing configured.
var ErrNoPublishers = errors.New("no report publishers configured")

// ResultSource provides the computation a report is rendered from.
type ResultSource interface {
	Result(ctx context.Context, filter domain.ReplenishmentFilter) (*replenishment.Result, error)
}

// Report is the outcome of one publish request.
type Report struct {
	Week      int               `json:"week"`
	Locations []Location        `json:"locations"`
	Failures  map[string]string `json:"failures,omitempty"`
}

type Service struct {
	source     ResultSource
	publishers []Publisher
}

func NewService(source ResultSource, publishers ...Publisher) *Service {
	return &Service{source: source, publishers: publishers}
}

// Publishers returns the configured publishers.
func (s *Service) Publishers() []Publisher { return s.publishers }

// MeetingSummary renders the plain-text summary for filter.
func (s *Service) MeetingSummary(ctx context.Context, filter domain.ReplenishmentFilter) (string, error) {
	res, err := s.source.Result(ctx, filter)
	if err != nil {
		return "", err
	}
	return replenishment.RenderMeetingSummary(res.Risk, res.PurchaseOrders), nil
}

// Render builds the report artifacts for a computed result.
func Render(res *replenishment.Result, supplierCode string) ([]Artifact, error) {
	base := ReportPrefix(res.Summary.CurrentWeek)
	if supplierCode != "" {
		base += "-" + strings.ToLower(supplierCode)
	}

	var csvBuf bytes.Buffer
	if err := export.WriteSuggestionsCSV(&csvBuf, res.Suggestions); err != nil {
		return nil, fmt.Errorf("render suggestions: %w", err)
	}

	var xlsxBuf bytes.Buffer
	if err := export.WritePurchaseOrdersWorkbook(&xlsxBuf, res.PurchaseOrders, res.Summary.CurrentWeek); err != nil {
		return nil, fmt.Errorf("render purchase orders: %w", err)
	}

	return []Artifact{
		{
			Name:        base + "-meeting-summary.txt",
			ContentType: ContentTypeText,
			Data:        []byte(replenishment.RenderMeetingSummary(res.Risk, res.PurchaseOrders)),
		},
		{Name: base + "-suggestions.csv", ContentType: ContentTypeCSV, Data: csvBuf.Bytes()},
		{Name: base + "-purchase-orders.xlsx", ContentType: ContentTypeXLSX, Data: xlsxBuf.Bytes()},
	}, nil
}

// ReportPrefix is the common name prefix of a week's report files.
func ReportPrefix(week int) string {
	return fmt.Sprintf("replenishment-w%02d", week)
}

// Publish renders the reports for filter and hands them to every publisher.
// A failing publisher is reported in Failures and does not stop the others;
// the call errors only when no publisher succeeded.
func (s *Service) Publish(ctx context.Context, filter domain.ReplenishmentFilter) (*Report, error) {
	if len(s.publishers) == 0 {
		return nil, ErrNoPublishers
	}
	filter = filter.Normalize()

	res, err := s.source.Result(ctx, filter)
	if err != nil {
		return nil, err
	}

	artifacts, err := Render(res, filter.SupplierCode)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Week:      res.Summary.CurrentWeek,
		Locations: make([]Location, 0, len(artifacts)*len(s.publishers)),
		Failures:  make(map[string]string),
	}

	for _, p := range s.publishers {
		for _, a := range artifacts {
			loc, err := p.Publish(ctx, a)
			if err != nil {
				log.Error().Err(err).Str("publisher", p.Name()).Str("artifact", a.Name).Msg("publish: upload failed")
				report.Failures[p.Name()] = err.Error()
				break
			}
			report.Locations = append(report.Locations, loc)
		}
	}

	if len(report.Failures) == len(s.publishers) {
		return report, fmt.Errorf("all publishers failed")
	}

	log.Info().Int("week", report.Week).Int("files", len(report.Locations)).Msg("publish: reports published")
	return report, nil
}

// List returns the published files for week across all publishers.
func (s *Service) List(ctx context.Context, week int) ([]Location, error) {
	var out []Location
	for _, p := range s.publishers {
		locs, err := p.List(ctx, ReportPrefix(week))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name(), err)
		}
		out = append(out, locs...)
	}
	if out == nil {
		out = make([]Location, 0)
	}
	return out, nil
}

// Open reads a published file back from the first publisher that can serve it.
func (s *Service) Open(ctx context.Context, name string) ([]byte, error) {
	for _, p := range s.publishers {
		if o, ok := p.(interface {
			Open(ctx context.Context, name string) ([]byte, error)
		}); ok {
			return o.Open(ctx, name)
		}
	}
	return nil, ErrNoPublishers
}
