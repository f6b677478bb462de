package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"romrenamer/internal/layout"
	"romrenamer/internal/report"
)

func renderRun(out io.Writer, rep *report.Report, plan layout.Plan, dryRun bool) {
	renderCounts(out, rep)

	if len(plan.Actions) > 0 {
		verb := "Moved"
		if dryRun {
			verb = "Planned"
		}
		rows := make([][]string, 0, len(plan.Actions))
		for _, action := range plan.Actions {
			rows = append(rows, []string{action.Kind, action.Source, action.Dest})
		}
		fmt.Fprintf(out, "\n%s %d files:\n", verb, len(plan.Actions))
		fmt.Fprintln(out, renderTable(
			[]string{"Kind", "Source", "Destination"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft},
		))
	}

	if problems := rep.Problems(); len(problems) > 0 {
		fmt.Fprintf(out, "\n%d problems:\n", len(problems))
		for _, problem := range problems {
			fmt.Fprintf(out, "  %s\n", problem)
		}
	}
}

func renderCounts(out io.Writer, rep *report.Report) {
	rows := [][]string{
		{"Scanned files", strconv.Itoa(rep.Counts.Scanned)},
		{"Complete games", strconv.Itoa(rep.Counts.Complete)},
		{"Incomplete games", strconv.Itoa(rep.Counts.Incomplete)},
		{"Unrecognized files", strconv.Itoa(rep.Counts.Unrecognized)},
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Outcome", "Count"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	))
}

type jsonRun struct {
	RunID    string           `json:"run_id"`
	Counts   report.Counts    `json:"counts"`
	Problems []report.Problem `json:"problems"`
	Plan     layout.Plan      `json:"plan"`
}

func writeJSONReport(out io.Writer, rep *report.Report, plan layout.Plan) error {
	payload := jsonRun{
		RunID:    rep.RunID,
		Counts:   rep.Counts,
		Problems: rep.Problems(),
		Plan:     plan,
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
