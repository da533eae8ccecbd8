package conformance

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Report collects the results of a run.
type Report struct {
	Backend  string        `json:"backend"`
	Results  []CaseResult  `json:"results"`
	Duration time.Duration `json:"duration"`

	// Cancelled is set when the context ended before every case was started.
	Cancelled bool `json:"cancelled,omitempty"`
}

// Summary aggregates a report.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Errored int `json:"errored"`
	Skipped int `json:"skipped"`

	// Distance statistics over the max distance of every executed case
	// that produced comparable outputs.
	MeanMaxDistance   float64 `json:"meanMaxDistance"`
	StdDevMaxDistance float64 `json:"stdDevMaxDistance"`
	WorstDistance     float64 `json:"worstDistance"`
	WorstCase         string  `json:"worstCase,omitempty"`
}

// Count returns the number of results with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// OK reports whether no case failed or errored.
func (r *Report) OK() bool {
	return r.Count(StatusFail) == 0 && r.Count(StatusError) == 0
}

// Summary computes aggregate counts and distance statistics.
func (r *Report) Summary() Summary {
	s := Summary{
		Total:   len(r.Results),
		Passed:  r.Count(StatusPass),
		Failed:  r.Count(StatusFail),
		Errored: r.Count(StatusError),
		Skipped: r.Count(StatusSkip),
	}

	var dists []float64
	var names []string
	for _, res := range r.Results {
		if res.Status != StatusPass && res.Status != StatusFail {
			continue
		}
		if math.IsInf(res.MaxDistance, 0) || math.IsNaN(res.MaxDistance) {
			continue
		}
		dists = append(dists, res.MaxDistance)
		names = append(names, res.Name)
	}
	if len(dists) == 0 {
		return s
	}

	s.MeanMaxDistance, s.StdDevMaxDistance = stat.MeanStdDev(dists, nil)
	if len(dists) == 1 {
		s.StdDevMaxDistance = 0
	}
	worst := floats.MaxIdx(dists)
	s.WorstDistance = dists[worst]
	s.WorstCase = names[worst]
	return s
}

// WriteText writes a human-readable table. Passing cases are listed only when verbose.
func (r *Report) WriteText(w io.Writer, verbose bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tMAX DIST\tTOLERANCE\tCASE")
	for _, res := range r.Results {
		if !verbose && (res.Status == StatusPass || res.Status == StatusSkip) {
			continue
		}
		fmt.Fprintf(tw, "%s\t%g\t%s\t%s\n", res.Status, res.MaxDistance, formatTolerance(res.Tolerance), res.Name)
		if res.Message != "" && res.Status != StatusPass {
			fmt.Fprintf(tw, "\t\t\t  %s\n", res.Message)
		}
		for _, m := range res.Mismatches {
			fmt.Fprintf(tw, "\t\t\t  [%d] expected %g, got %g (distance %g)\n", m.Index, m.Expected, m.Actual, m.Distance)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := r.Summary()
	_, err := fmt.Fprintf(w, "\n%s: %d passed, %d failed, %d errors, %d skipped (%d total) in %s\n",
		r.Backend, s.Passed, s.Failed, s.Errored, s.Skipped, s.Total, r.Duration.Round(time.Millisecond))
	if err != nil {
		return err
	}
	if s.WorstCase != "" {
		_, err = fmt.Fprintf(w, "max distance: mean %.3g, stddev %.3g, worst %g (%s)\n",
			s.MeanMaxDistance, s.StdDevMaxDistance, s.WorstDistance, s.WorstCase)
	}
	return err
}

// WriteJSON writes the report and its summary as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		*Report
		Summary Summary `json:"summary"`
	}{r, r.Summary()})
}

func formatTolerance(t Tolerance) string {
	if t.Metric == "" {
		return "-"
	}
	return t.String()
}

// jsonFloat encodes non-finite values as strings, which encoding/json rejects as numbers.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return json.Marshal(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return json.Marshal(v)
}

// MarshalJSON implements json.Marshaler.
func (m Mismatch) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Index    int       `json:"index"`
		Expected jsonFloat `json:"expected"`
		Actual   jsonFloat `json:"actual"`
		Distance jsonFloat `json:"distance"`
	}{m.Index, jsonFloat(m.Expected), jsonFloat(m.Actual), jsonFloat(m.Distance)})
}

// MarshalJSON implements json.Marshaler.
func (r CaseResult) MarshalJSON() ([]byte, error) {
	type plain CaseResult
	return json.Marshal(struct {
		plain
		MaxDistance jsonFloat `json:"maxDistance"`
	}{plain(r), jsonFloat(r.MaxDistance)})
}
