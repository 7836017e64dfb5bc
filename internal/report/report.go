// Package report renders sweep rows as plain-text tables.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/caiodallaqua/orthosphere/internal/angle"
	"github.com/caiodallaqua/orthosphere/internal/sweep"
)

const (
	ANGLES_HEADER = "Dim     Min    Max    Mean±Std    Median   Time(ms)   Est.Max"
	ANGLES_RULE   = 65

	SEARCH_HEADER = "Dim    Count"
	SEARCH_RULE   = 12
)

type Writer struct {
	out io.Writer
}

func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// RunHeader names the run so the tables can be matched with its log lines.
func (w *Writer) RunHeader(runID string, policy string) error {
	_, err := fmt.Fprintf(w.out, "Run %s (bound policy: %s)\n", runID, policy)

	return err
}

func (w *Writer) AnglesHeader(numVectors uint32) error {
	pairs := angle.NumPairs(int(numVectors))

	_, err := fmt.Fprintf(w.out,
		"\nPhase 1: Analyzing %d random vectors (%d unique pairs) per dimension\n\n%s\n%s\n",
		numVectors, pairs, ANGLES_HEADER, strings.Repeat("-", ANGLES_RULE),
	)

	return err
}

func (w *Writer) AngleRow(row sweep.AngleRow) error {
	sum := row.Summary

	_, err := fmt.Fprintf(w.out, "%5d  %5.1f %6.1f  %5.1f±%4.1f  %6.1f  %8.1f   %6s\n",
		row.Dim, sum.Min, sum.Max, sum.Mean, sum.Std, sum.Median, millis(row.Elapsed), row.Bound,
	)

	return err
}

func (w *Writer) SearchHeader(tolerance float64, maxAttempts uint32) error {
	_, err := fmt.Fprintf(w.out,
		"\nPhase 2: Finding nearly orthogonal vectors (±%v° from 90°, max %d attempts)\n\n%s\n%s\n",
		tolerance, maxAttempts, SEARCH_HEADER, strings.Repeat("-", SEARCH_RULE),
	)

	return err
}

func (w *Writer) SearchRow(row sweep.SearchRow) error {
	suffix := ""
	if row.Truncated {
		suffix = "  (capped)"
	}

	_, err := fmt.Fprintf(w.out, "%5d  %5d%s\n", row.Dim, row.Count, suffix)

	return err
}

func (w *Writer) Angles(numVectors uint32, rows []sweep.AngleRow) error {
	if err := w.AnglesHeader(numVectors); err != nil {
		return err
	}

	for _, row := range rows {
		if err := w.AngleRow(row); err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) Search(tolerance float64, maxAttempts uint32, rows []sweep.SearchRow) error {
	if err := w.SearchHeader(tolerance, maxAttempts); err != nil {
		return err
	}

	for _, row := range rows {
		if err := w.SearchRow(row); err != nil {
			return err
		}
	}

	return nil
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
