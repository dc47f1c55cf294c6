package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/dukex/operion-studio/pkg/execution"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/registry"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderCatalog(w io.Writer, catalog registry.Catalog) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "CATEGORY\tCOLOR\tTYPE\tNAME\tICON\tDESCRIPTION")

	for _, category := range registry.Categories() {
		style := registry.StyleFor(category)

		for _, nt := range catalog[category] {
			icon := nt.Icon
			if icon == "" {
				icon = style.Icon
			}

			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", category, style.Color, nt.Type, nt.Name, icon, nt.Description)
		}
	}

	return tw.Flush()
}

func renderWorkflows(w io.Writer, workflows []models.Workflow) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tACTIVE\tNODES\tEDGES\tTAGS")

	for _, wf := range workflows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%d\t%d\t%s\n",
			wf.ID, wf.Name, wf.Category, wf.IsActive,
			len(wf.Graph.Nodes), len(wf.Graph.Edges), strings.Join(wf.Tags, ","))
	}

	return tw.Flush()
}

func renderRows(w io.Writer, rows []execution.Row) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "EXECUTION\tSTATUS\tSTARTED\tDURATION\tERROR")

	for _, row := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			row.ExecutionID, row.Status, row.StartedAt.Local().Format(time.DateTime), row.DurationText(), row.Error)
	}

	return tw.Flush()
}

func renderLog(w io.Writer, entry models.LogEntry) {
	node := ""
	if entry.NodeID != "" {
		node = " [" + entry.NodeID + "]"
	}

	fmt.Fprintf(w, "%s %-7s%s %s\n", entry.Timestamp.Local().Format(time.TimeOnly), strings.ToUpper(string(entry.Level)), node, entry.Message)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidID, raw)
	}

	return id, nil
}

// lockedWriter serializes writes from event handlers and the command itself.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.w.Write(p)
}
