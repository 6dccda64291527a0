package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/func/cfn-sagemaker/handler"
	"github.com/func/cfn-sagemaker/storage"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

func colorStatus(s handler.Status) string {
	switch s {
	case handler.Success:
		return green(s)
	case handler.InProgress:
		return yellow(s)
	case handler.Failed:
		return red(s)
	}
	return string(s)
}

// summary returns a one line summary of an event.
func summary(ev *handler.ProgressEvent) string {
	s := colorStatus(ev.Status)
	switch {
	case ev.Status == handler.Failed:
		s += fmt.Sprintf(" %s: %s", ev.ErrorCode, ev.Message)
	case ev.Status == handler.InProgress && ev.CallbackContext != nil:
		s += faint(fmt.Sprintf(" stage=%s delay=%ds", ev.CallbackContext.Stage, ev.CallbackDelaySeconds))
	case ev.ResourceModels != nil:
		s += faint(fmt.Sprintf(" %d models", len(ev.ResourceModels)))
	}
	return s
}

// writeJSON writes v as indented json.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeRuns writes a table of checkpoints.
func writeRuns(w io.Writer, runs []*storage.Checkpoint) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tACTION\tSTATUS\tINVOCATIONS\tUPDATED")
	for _, cp := range runs {
		status := "PENDING"
		if cp.Event != nil {
			status = string(cp.Event.Status)
			if !cp.Done() && cp.Event.Status == handler.Success {
				status = string(handler.InProgress)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			cp.ID,
			cp.Request.TypeName,
			cp.Request.Action,
			status,
			cp.Invocations,
			cp.Updated.Format("2006-01-02 15:04:05"),
		)
	}
	return tw.Flush()
}
