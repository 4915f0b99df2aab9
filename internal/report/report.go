// Package report renders plans, apply results, and remote listings as
// tables for terminal consumption.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/flowmeta/flowmeta/internal/model"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// RenderPlan prints the planned actions for one kind, one row per object.
// An empty plan prints a single confirmation line instead of a table.
func RenderPlan(w io.Writer, plan *model.Plan) {
	if plan.Empty() {
		fmt.Fprintf(w, "%s: nothing to do (%d unchanged)\n", plan.Kind, len(plan.Unchanged))
		return
	}

	t := newTable(w)
	t.SetTitle(plan.Kind)
	t.AppendHeader(table.Row{"ACTION", "IDENTIFIER"})

	for _, id := range plan.Create {
		t.AppendRow(table.Row{text.FgGreen.Sprint("create"), id})
	}
	for _, id := range plan.Update {
		t.AppendRow(table.Row{text.FgYellow.Sprint("update"), id})
	}
	for _, id := range plan.Delete {
		t.AppendRow(table.Row{text.FgRed.Sprint("delete"), id})
	}

	t.AppendFooter(table.Row{"", fmt.Sprintf("%d create, %d update, %d delete, %d unchanged",
		len(plan.Create), len(plan.Update), len(plan.Delete), len(plan.Unchanged))})
	t.Render()
}

// RenderApply prints per-object outcomes followed by a summary line.
// Failures carry their reason so the operator does not need the logs.
func RenderApply(w io.Writer, result *model.ApplyResult) {
	t := newTable(w)
	t.SetTitle(result.Kind)
	t.AppendHeader(table.Row{"IDENTIFIER", "OUTCOME", "DETAIL"})

	for _, res := range result.Results {
		detail := res.Reason
		if res.Outcome != model.OutcomeFailed && res.Outcome != model.OutcomeUnchanged {
			detail = res.Duration.Round(time.Millisecond).String()
		}
		t.AppendRow(table.Row{res.Identifier, colorOutcome(res.Outcome), detail})
	}

	summary := result.Summary()
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d created, %d updated, %d deleted, %d unchanged, %d failed",
		summary.Created, summary.Updated, summary.Deleted, summary.Unchanged, summary.Failed)})
	t.Render()
}

// RenderObjects prints a remote listing. Columns are the union of the
// attribute names across the set, sorted, after the identifier.
func RenderObjects(w io.Writer, kind, identifierField string, set *model.Set) {
	if set.Len() == 0 {
		fmt.Fprintf(w, "%s: no objects\n", kind)
		return
	}

	columns := attributeColumns(set)

	t := newTable(w)
	t.SetTitle(fmt.Sprintf("%s (%d)", kind, set.Len()))

	header := table.Row{strings.ToUpper(identifierField)}
	for _, col := range columns {
		header = append(header, strings.ToUpper(col))
	}
	t.AppendHeader(header)

	for _, id := range set.Identifiers() {
		obj, _ := set.Get(id)
		row := table.Row{id}
		for _, col := range columns {
			row = append(row, cell(obj.Attributes[col]))
		}
		t.AppendRow(row)
	}

	t.Render()
}

func attributeColumns(set *model.Set) []string {
	seen := map[string]bool{}
	for _, id := range set.Identifiers() {
		obj, _ := set.Get(id)
		for name := range obj.Attributes {
			seen[name] = true
		}
	}

	columns := make([]string, 0, len(seen))
	for name := range seen {
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns
}

const maxCellWidth = 60

func cell(value any) string {
	if value == nil {
		return ""
	}
	s := fmt.Sprintf("%v", value)
	if len(s) > maxCellWidth {
		s = s[:maxCellWidth-3] + "..."
	}
	return s
}

func colorOutcome(outcome string) string {
	switch outcome {
	case model.OutcomeCreated:
		return text.FgGreen.Sprint(outcome)
	case model.OutcomeUpdated:
		return text.FgYellow.Sprint(outcome)
	case model.OutcomeDeleted:
		return text.FgRed.Sprint(outcome)
	case model.OutcomeFailed:
		return text.FgHiRed.Sprint(outcome)
	default:
		return outcome
	}
}
