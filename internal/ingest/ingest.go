// Package ingest loads uploaded survey logs and builds the survey summary.
package ingest

import (
	"fmt"
	"os"

	"github.com/verte-zerg/noisetui/internal/survey"
)

// UploadedFile is an in-memory log upload with its display name.
type UploadedFile struct {
	Name string
	Data []byte
}

// Result holds the parsed logs in upload order plus per-file errors.
type Result struct {
	Logs   map[string]*survey.Log
	Order  []string
	Errors []string
}

// LoadAll parses each uploaded file through a transient temp file. A
// parse failure is recorded per file and never aborts the batch; the
// temp file is removed on every exit path.
func LoadAll(files []UploadedFile) Result {
	res := Result{Logs: map[string]*survey.Log{}}
	for _, f := range files {
		log, err := parseOne(f)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", f.Name, err))
			continue
		}
		res.Logs[f.Name] = log
		res.Order = append(res.Order, f.Name)
	}
	return res
}

func parseOne(f UploadedFile) (*survey.Log, error) {
	tmp, err := os.CreateTemp("", "noisetui-*.csv")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(f.Data); err != nil {
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}
	return survey.NewLog(tmpPath)
}

// Summary is the survey-wide derived data for the Summary tab. ErrMsg
// is set and the tables left nil when construction fails.
type Summary struct {
	Positions  []string
	Resi       *survey.Table
	TypicalLeq *survey.Table
	Lmax       *survey.Table
	ErrMsg     string
}

// NoValidLogsMsg is the fixed message for an empty log set.
const NoValidLogsMsg = "no valid logs loaded"

// BuildSummary constructs one survey over all parsed logs in upload
// order and pulls the three derived tables. Failures degrade to a
// message rather than propagating.
func BuildSummary(res Result) Summary {
	if len(res.Order) == 0 {
		return Summary{ErrMsg: NoValidLogsMsg}
	}
	s := survey.NewSurvey()
	for _, name := range res.Order {
		s.AddLog(res.Logs[name], name)
	}
	out := Summary{Positions: s.Positions()}

	resi, err := s.ResiSummary()
	if err != nil {
		out.ErrMsg = fmt.Sprintf("failed to build residential summary: %v", err)
		return out
	}
	out.Resi = resi

	leq, err := s.TypicalLeqSpectra()
	if err != nil {
		out.ErrMsg = fmt.Sprintf("failed to build typical Leq spectra: %v", err)
		return out
	}
	out.TypicalLeq = leq

	lmax, err := s.LmaxSpectra()
	if err != nil {
		out.ErrMsg = fmt.Sprintf("failed to build Lmax spectra: %v", err)
		return out
	}
	out.Lmax = lmax
	return out
}
