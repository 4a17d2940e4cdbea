package controller

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	m "srcverify.dev/pkg/srcverify/internal/model"
)

const unknownStatusLabel = "unknown"

func statusIcon(status string) string {
	switch status {
	case m.Verified.String():
		return "✓"
	case m.Embedded.String():
		return "≡"
	case m.Mismatched.String():
		return "✗"
	case m.NotFound.String():
		return "?"
	case m.ReadError.String():
		return "!"
	}

	return unknownStatusLabel
}

func renderReportTable(report m.Report) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Status", "Recorded Path", "Resolved From"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, outcome := range report.Outcomes {
		resolvedFrom := outcome.DisplayPath
		if outcome.Error != "" {
			resolvedFrom = outcome.Error
		}

		table.Append([]string{
			fmt.Sprintf("%s %s", statusIcon(outcome.Status), outcome.Status),
			outcome.Path,
			resolvedFrom,
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", report.Summary.Total),
		"",
		summaryLine(report),
	})

	table.Render()

	return tableBuffer.String()
}

func summaryLine(report m.Report) string {
	s := report.Summary

	line := fmt.Sprintf("verified %d | embedded %d | mismatched %d | not found %d | failed %d",
		s.Verified, s.Embedded, s.Mismatched, s.NotFound, s.Failed)
	if s.Skipped > 0 {
		line += fmt.Sprintf(" | skipped %d", s.Skipped)
	}

	return line
}

func verdictLine(report m.Report) string {
	if !report.Complete() {
		return fmt.Sprintf("Artifact %s: incomplete run, %d source(s) not checked", report.Artifact, report.Summary.Skipped)
	}

	if report.Reproducible() {
		return fmt.Sprintf("Artifact %s: all sources match their recorded checksums", report.Artifact)
	}

	return fmt.Sprintf("Artifact %s: NOT reproducible from local sources", report.Artifact)
}

func progressLine(resolution m.Resolution) string {
	status := resolution.Status.String()

	target := string(resolution.Record.Path())
	if resolution.Source != nil {
		target = resolution.Source.DisplayPath()
	}

	line := fmt.Sprintf("%s %-10s %s", statusIcon(status), status, target)
	if resolution.Err != nil {
		line += fmt.Sprintf(" (%v)", resolution.Err)
	}

	return line
}
