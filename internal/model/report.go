package model

import (
	"encoding/hex"
	"sort"
)

// ReportVersion is the current report format version.
const ReportVersion = 1

// Status represents the terminal state of one source resolution.
type Status int

const (
	// Verified indicates the on-disk content matched the recorded checksum.
	Verified Status = iota
	// Embedded indicates the text came from the artifact and was trusted as-is.
	Embedded
	// Mismatched indicates the content was found but its checksum differs.
	Mismatched
	// NotFound indicates no candidate path existed on disk.
	NotFound
	// ReadError indicates the candidate existed but could not be read or decoded.
	ReadError
)

func (s Status) String() string {
	switch s {
	case Verified:
		return "verified"
	case Embedded:
		return "embedded"
	case Mismatched:
		return "mismatched"
	case NotFound:
		return "not-found"
	case ReadError:
		return "read-error"
	}

	return "unknown"
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(value string) (Status, bool) {
	for _, s := range []Status{Verified, Embedded, Mismatched, NotFound, ReadError} {
		if s.String() == value {
			return s, true
		}
	}

	return 0, false
}

// Resolution pairs a record with the outcome of resolving it.
type Resolution struct {
	Record SourceRecord
	// Source is nil when Status is NotFound or ReadError.
	Source *ResolvedSource
	Status Status
	Err    error
}

// Outcome is the serialisable per-file row of a Report.
type Outcome struct {
	Path        string `json:"path"`
	DisplayPath string `json:"display_path"`
	OnDiskPath  string `json:"on_disk_path,omitempty"`
	Embedded    bool   `json:"embedded"`
	Status      string `json:"status"`
	Algorithm   string `json:"algorithm"`
	Expected    string `json:"expected"`
	Actual      string `json:"actual,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Summary counts outcomes by status.
type Summary struct {
	Total      int `json:"total"`
	Verified   int `json:"verified"`
	Embedded   int `json:"embedded"`
	Mismatched int `json:"mismatched"`
	NotFound   int `json:"not_found"`
	Failed     int `json:"failed"`
	// Skipped counts sources that never reached a terminal status because
	// the run was cancelled or stopped early.
	Skipped int `json:"skipped,omitempty"`
}

// Report is the verification result for one artifact.
type Report struct {
	Version    int       `json:"version"`
	Artifact   string    `json:"artifact"`
	SourceRoot string    `json:"source_root"`
	Policy     string    `json:"policy"`
	Summary    Summary   `json:"summary"`
	Outcomes   []Outcome `json:"outcomes"`
	Digest     string    `json:"digest,omitempty"`
}

// Reproducible reports whether every source was verified or embedded.
func (r Report) Reproducible() bool {
	return r.Complete() && r.Summary.Mismatched == 0 && r.Summary.NotFound == 0 && r.Summary.Failed == 0
}

// Complete reports whether every source of the artifact has an outcome.
func (r Report) Complete() bool {
	return r.Summary.Skipped == 0
}

// MarkSkipped records the sources of an artifact with expected records that
// have no outcome in the report.
func (r *Report) MarkSkipped(expected int) {
	r.Summary.Skipped = max(expected-r.Summary.Total, 0)
}

// NewReport builds a report from resolutions. Outcomes are sorted by
// recorded path so identical inputs always produce identical reports.
func NewReport(artifact string, sourceRoot Path, policy string, resolutions []Resolution) Report {
	report := Report{
		Version:    ReportVersion,
		Artifact:   artifact,
		SourceRoot: string(sourceRoot),
		Policy:     policy,
		Outcomes:   make([]Outcome, 0, len(resolutions)),
	}

	for _, res := range resolutions {
		outcome := NewOutcome(res)
		report.Outcomes = append(report.Outcomes, outcome)
		report.Summary.add(res.Status)
	}

	sort.SliceStable(report.Outcomes, func(i, j int) bool {
		return report.Outcomes[i].Path < report.Outcomes[j].Path
	})

	return report
}

// NewOutcome converts a resolution into its report row.
func NewOutcome(res Resolution) Outcome {
	outcome := Outcome{
		Path:        string(res.Record.Path()),
		DisplayPath: string(res.Record.Path()),
		Embedded:    res.Record.Embedded(),
		Status:      res.Status.String(),
		Algorithm:   res.Record.Algorithm().String(),
		Expected:    hex.EncodeToString(res.Record.Hash()),
	}

	if res.Source != nil {
		outcome.DisplayPath = res.Source.DisplayPath()
		outcome.OnDiskPath = string(res.Source.OnDiskPath)

		if res.Source.HasDiskPath() {
			outcome.Actual = hex.EncodeToString(res.Source.Text.Checksum)
		}
	}

	if res.Err != nil {
		outcome.Error = res.Err.Error()
	}

	return outcome
}

func (s *Summary) add(status Status) {
	s.Total++

	switch status {
	case Verified:
		s.Verified++
	case Embedded:
		s.Embedded++
	case Mismatched:
		s.Mismatched++
	case NotFound:
		s.NotFound++
	case ReadError:
		s.Failed++
	}
}
