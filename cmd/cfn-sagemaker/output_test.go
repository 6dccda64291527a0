package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/func/cfn-sagemaker/handler"
	"github.com/func/cfn-sagemaker/storage"
	"go.uber.org/zap/zapcore"
)

func TestSummary(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name string
		ev   *handler.ProgressEvent
		want string
	}{
		{
			name: "Success",
			ev:   handler.Done(nil),
			want: "SUCCESS",
		},
		{
			name: "Pending",
			ev:   handler.Pending(nil, &handler.CallbackContext{Stage: "create"}, 5),
			want: "IN_PROGRESS stage=create delay=5s",
		},
		{
			name: "Listed",
			ev:   handler.Listed([]interface{}{1, 2}, nil),
			want: "SUCCESS 2 models",
		},
		{
			name: "Failed",
			ev:   handler.Fail(handler.Errorf(handler.NotFound, "Resource of type 'AWS::SageMaker::Pipeline' with identifier 'p1' was not found.")),
			want: "FAILED NotFound: Resource of type 'AWS::SageMaker::Pipeline' with identifier 'p1' was not found.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summary(tt.ev)
			if got != tt.want {
				t.Errorf("summary() does not match\nGot  %q\nWant %q", got, tt.want)
			}
		})
	}
}

func TestWriteRuns(t *testing.T) {
	color.NoColor = true
	updated := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	next := "token"

	runs := []*storage.Checkpoint{
		{
			ID:          "a",
			Request:     &handler.Request{Action: handler.Create, TypeName: "AWS::SageMaker::Pipeline"},
			Event:       handler.Done(nil),
			Invocations: 1,
			Updated:     updated,
		},
		{
			ID:      "b",
			Request: &handler.Request{Action: handler.List, TypeName: "AWS::SageMaker::Pipeline", NextToken: &next},
			Event:   handler.Listed(nil, &next),
			Updated: updated,
		},
		{
			ID:      "c",
			Request: &handler.Request{Action: handler.Delete, TypeName: "AWS::SageMaker::ModelPackageGroup"},
			Updated: updated,
		},
	}

	var buf bytes.Buffer
	if err := writeRuns(&buf, runs); err != nil {
		t.Fatalf("writeRuns() err = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("Got %d lines, want 4\n%s", len(lines), buf.String())
	}
	for i, want := range []string{"SUCCESS", "IN_PROGRESS", "PENDING"} {
		fields := strings.Fields(lines[i+1])
		if fields[3] != want {
			t.Errorf("Run %s status = %q, want %q", fields[0], fields[3], want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := newLogger(tt.level)
			if err != nil {
				t.Fatalf("newLogger() err = %v", err)
			}
			if !logger.Core().Enabled(tt.want) {
				t.Errorf("Level %s not enabled", tt.want)
			}
			if tt.want > zapcore.DebugLevel && logger.Core().Enabled(tt.want-1) {
				t.Errorf("Level %s enabled", tt.want-1)
			}
		})
	}

	if _, err := newLogger("loud"); err == nil {
		t.Errorf("Want error for invalid level")
	}
}
