package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forecast-go/internal/analysis"
	"forecast-go/internal/forecast"
	"forecast-go/internal/state"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Horizon bounds accepted by the outlook batch.
const (
	MinOutlookYears     = 1
	MaxOutlookYears     = 50
	DefaultOutlookYears = 10
	DefaultCountry      = "Uzbekistan"
)

// ErrNoUsableIndicators is returned together with the outlook when every
// indicator was skipped. The outlook still lists the problems.
var ErrNoUsableIndicators = errors.New("no indicator could be evaluated")

type OutlookRequest struct {
	Years   int
	Country string
}

// IndicatorOutcome is one row of an outlook: where the indicator stands,
// where the forecast puts it at the end of the horizon and where it should be.
type IndicatorOutcome struct {
	Name          string  `json:"name"`
	File          string  `json:"file"`
	Column        string  `json:"column"`
	Regime        string  `json:"regime"`
	Current       float64 `json:"current"`
	Forecast      float64 `json:"forecast"`
	Target        float64 `json:"target"`
	LowerIsBetter bool    `json:"lower_is_better,omitempty"`
	// Degraded marks a forecast that failed and was replaced by the
	// current value.
	Degraded bool `json:"degraded,omitempty"`
}

// Gap returns target minus forecast. LowerIsBetter does not change it.
func (o IndicatorOutcome) Gap() float64 {
	return o.Target - o.Forecast
}

type Outlook struct {
	ID           uuid.UUID          `json:"id"`
	Country      string             `json:"country"`
	Years        int                `json:"years"`
	GeneratedAt  time.Time          `json:"generated_at"`
	Entries      []IndicatorOutcome `json:"entries"`
	Problems     []string           `json:"problems"`
	Advice       string             `json:"advice,omitempty"`
	AdviceStatus string             `json:"advice_status"`
	AdviceError  string             `json:"advice_error,omitempty"`
}

// OutlookService evaluates the whole indicator catalogue for one horizon.
type OutlookService struct {
	resolver   *forecast.Resolver
	indicators []Indicator
	advisors   *AdvisorHolder
	workers    int
	fitTimeout time.Duration
	now        func() time.Time
}

type OutlookOption func(*OutlookService)

func WithWorkers(n int) OutlookOption {
	return func(s *OutlookService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithFitTimeout bounds the time spent on each indicator. Zero disables it.
func WithFitTimeout(d time.Duration) OutlookOption {
	return func(s *OutlookService) {
		s.fitTimeout = d
	}
}

func WithAdvisors(h *AdvisorHolder) OutlookOption {
	return func(s *OutlookService) {
		s.advisors = h
	}
}

func WithNow(now func() time.Time) OutlookOption {
	return func(s *OutlookService) {
		s.now = now
	}
}

func NewOutlookService(resolver *forecast.Resolver, indicators []Indicator, opts ...OutlookOption) *OutlookService {
	s := &OutlookService{
		resolver:   resolver,
		indicators: indicators,
		advisors:   NewAdvisorHolder(nil),
		workers:    4,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Indicators returns a copy of the catalogue.
func (s *OutlookService) Indicators() []Indicator {
	return append([]Indicator(nil), s.indicators...)
}

func (s *OutlookService) Resolver() *forecast.Resolver {
	return s.resolver
}

type indicatorResult struct {
	outcome IndicatorOutcome
	problem string
	ok      bool
}

// Run forecasts every indicator in parallel and assembles the outlook in
// catalogue order.
func (s *OutlookService) Run(ctx context.Context, req OutlookRequest) (*Outlook, error) {
	if req.Years < MinOutlookYears || req.Years > MaxOutlookYears {
		return nil, &forecast.Error{
			Kind:    forecast.KindInvalidHorizon,
			Dataset: "outlook",
			Err:     fmt.Errorf("years must be between %d and %d, got %d", MinOutlookYears, MaxOutlookYears, req.Years),
		}
	}
	if req.Country == "" {
		req.Country = DefaultCountry
	}

	results := make([]indicatorResult, len(s.indicators))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, ind := range s.indicators {
		i, ind := i, ind
		g.Go(func() error {
			results[i] = s.evaluate(gctx, ind, req.Years)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Outlook{
		ID:          uuid.New(),
		Country:     req.Country,
		Years:       req.Years,
		GeneratedAt: s.now().UTC(),
		Entries:     []IndicatorOutcome{},
		Problems:    []string{},
	}
	for _, r := range results {
		if r.ok {
			out.Entries = append(out.Entries, r.outcome)
		} else {
			out.Problems = append(out.Problems, r.problem)
		}
	}

	log.Info().
		Str("run_id", out.ID.String()).
		Int("years", out.Years).
		Int("entries", len(out.Entries)).
		Int("problems", len(out.Problems)).
		Msg("Outlook computed")

	if len(out.Entries) == 0 {
		out.AdviceStatus = AdviceDisabled
		return out, ErrNoUsableIndicators
	}

	out.Advice, out.AdviceStatus, out.AdviceError = advise(ctx, s.advisors, buildOutlookPrompt(out))
	if out.AdviceStatus == AdviceError {
		log.Warn().Str("run_id", out.ID.String()).Str("error", out.AdviceError).Msg("Advisor call failed")
	}
	return out, nil
}

// evaluate applies the skip and degrade policy to one indicator.
func (s *OutlookService) evaluate(ctx context.Context, ind Indicator, years int) indicatorResult {
	if s.fitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fitTimeout)
		defer cancel()
	}

	outcome := IndicatorOutcome{
		Name:          ind.Name,
		File:          ind.File,
		Column:        ind.Column,
		LowerIsBetter: ind.LowerIsBetter,
	}

	df, err := s.resolver.Load(ctx, ind.File)
	if errors.Is(err, forecast.ErrDatasetNotFound) {
		log.Warn().Str("indicator", ind.Name).Str("file", ind.File).Msg("Dataset missing, skipping")
		return indicatorResult{problem: fmt.Sprintf("%s: file not found (%s). Skipped.", ind.Name, ind.File)}
	}

	reading := analysis.ReadCurrentAndTarget(df, ind.Column)

	var res *forecast.Result
	if err == nil {
		res, err = s.resolver.ForecastFrame(ctx, ind.File, df, ind.Column, years)
	}

	if err != nil {
		if !reading.HasCurrent {
			log.Warn().Err(err).Str("indicator", ind.Name).Msg("Indicator skipped")
			return indicatorResult{problem: fmt.Sprintf("%s: %v", ind.Name, err)}
		}
		log.Warn().Err(err).Str("indicator", ind.Name).Msg("Forecast failed, holding current value")
		outcome.Regime = forecast.RegimeSnapshot.String()
		outcome.Current = reading.Current
		outcome.Forecast = reading.Current
		outcome.Degraded = true
	} else {
		final, _ := res.Final()
		outcome.Regime = res.Regime.String()
		outcome.Forecast = final.Estimate
		switch {
		case reading.HasCurrent:
			outcome.Current = reading.Current
		default:
			if v, ok := lastMetricValue(df, ind.Column); ok {
				outcome.Current = v
			} else {
				outcome.Current = final.Estimate
			}
		}
	}

	outcome.Target = ind.DefaultTarget
	if reading.HasTarget {
		outcome.Target = reading.Target
	}
	return indicatorResult{outcome: outcome, ok: true}
}

func lastMetricValue(df *state.DataFrame, column string) (float64, bool) {
	if df == nil {
		return 0, false
	}
	col, ok := forecast.NewColumnResolver(df.Headers).Resolve(column)
	if !ok {
		return 0, false
	}
	return df.LastFloat(col.Index)
}
