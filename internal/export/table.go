package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"forecast-go/internal/forecast"
	"forecast-go/internal/service"

	"github.com/shopspring/decimal"
)

func fixed(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// WriteForecastTable prints one line per point.
func WriteForecastTable(w io.Writer, r *forecast.Result) error {
	fmt.Fprintf(w, "%s / %s (%s, column %s)\n", r.Dataset, r.Metric, r.Regime, r.Column)
	if r.Fit != nil {
		fmt.Fprintf(w, "trend %s per year, r2 %s, %d observations\n",
			decimal.NewFromFloat(r.Fit.Slope).StringFixed(4), fixed(r.Fit.RSquared), r.Fit.Observations)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tESTIMATE\tLOWER\tUPPER\tKIND")
	for _, p := range r.Points {
		kind := "forecast"
		if p.Historical {
			kind = "fit"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.Timestamp.Format("2006-01-02"), fixed(p.Estimate), fixed(p.Lower), fixed(p.Upper), kind)
	}
	return tw.Flush()
}

// WriteOutlookTable prints the outlook entries, problems and advice.
func WriteOutlookTable(w io.Writer, o *service.Outlook) error {
	fmt.Fprintf(w, "%s outlook, %d years (run %s)\n\n", o.Country, o.Years, o.ID)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(OutlookHeaders(o.Years), "\t")))
	for _, e := range o.Entries {
		degraded := ""
		if e.Degraded {
			degraded = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Name, e.File, e.Column, e.Regime,
			fixed(e.Current), fixed(e.Forecast), fixed(e.Target), fixed(e.Gap()), degraded)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(o.Problems) > 0 {
		fmt.Fprintln(w, "\nProblems:")
		for _, p := range o.Problems {
			fmt.Fprintf(w, "  - %s\n", p)
		}
	}

	switch o.AdviceStatus {
	case service.AdviceOK:
		fmt.Fprintf(w, "\nRecommendations:\n%s\n", o.Advice)
	case service.AdviceError:
		fmt.Fprintf(w, "\nRecommendations unavailable: %s\n", o.AdviceError)
	}
	return nil
}

// WritePersonalTable prints factor scores with strengths and weaknesses.
func WritePersonalTable(w io.Writer, a *service.PersonalAssessment) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FACTOR\tRATING\tSCORE")
	for _, s := range a.Scores {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", s.Name, s.Rating, s.Score)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nAverage: %s\n", fixed(a.Average))
	fmt.Fprintf(w, "Strengths: %s\n", strings.Join(a.Strengths, ", "))
	fmt.Fprintf(w, "Weaknesses: %s\n", strings.Join(a.Weaknesses, ", "))
	switch a.AdviceStatus {
	case service.AdviceOK:
		fmt.Fprintf(w, "\nRecommendations:\n%s\n", a.Advice)
	case service.AdviceError:
		fmt.Fprintf(w, "\nRecommendations unavailable: %s\n", a.AdviceError)
	}
	return nil
}
