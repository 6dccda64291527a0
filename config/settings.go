package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/hcl2/gohcl"
	"github.com/hashicorp/hcl2/hcl"
	"github.com/hashicorp/hcl2/hclparse"
	"golang.org/x/crypto/ssh/terminal"
)

// EnvFile is the environment variable that points to the settings file.
const EnvFile = "CFN_SAGEMAKER_CONFIG"

// DefaultFile is loaded from the working directory if EnvFile is not set.
const DefaultFile = "cfn-sagemaker.hcl"

// Settings configure the provider, the local orchestrator and the server.
type Settings struct {
	// Region is used for requests that do not set a region.
	Region string `hcl:"region,optional"`

	// Profile is the shared config profile used when a request does not
	// carry credentials.
	Profile string `hcl:"profile,optional"`

	// Endpoint overrides the SageMaker endpoint.
	Endpoint string `hcl:"endpoint,optional"`

	LogLevel string `hcl:"log_level,optional"`

	// StateFile is the bolt database used for run checkpoints. If empty,
	// ~/.cfn-sagemaker/state.db is used.
	StateFile string `hcl:"state_file,optional"`

	// CallbackDelay is the delay in seconds handlers request while a resource
	// is stabilizing. Zero means the default delay; it cannot be disabled.
	CallbackDelay int `hcl:"callback_delay,optional"`

	Server *Server `hcl:"server,block"`
	Retry  *Retry  `hcl:"retry,block"`
}

// Server configures the http server.
type Server struct {
	Address string `hcl:"address,optional"`
}

// Retry configures how the local orchestrator retries retryable failures.
type Retry struct {
	// MaxRetries is the number of retries of a single invocation. Nil means
	// the default, zero disables retries.
	MaxRetries *int   `hcl:"max_retries,optional"`
	MaxElapsed string `hcl:"max_elapsed,optional"`

	elapsed time.Duration
}

// Elapsed returns the parsed max elapsed duration.
func (r *Retry) Elapsed() time.Duration { return r.elapsed }

// Retries returns the max number of retries.
func (r *Retry) Retries() int {
	if r.MaxRetries == nil {
		return 0
	}
	return *r.MaxRetries
}

func intPtr(v int) *int { return &v }

// Defaults returns the default settings.
func Defaults() *Settings {
	return &Settings{
		Region:        os.Getenv("AWS_REGION"),
		LogLevel:      "info",
		CallbackDelay: 5,
		Server:        &Server{Address: "127.0.0.1:8080"},
		Retry:         &Retry{MaxRetries: intPtr(5), MaxElapsed: "2m", elapsed: 2 * time.Minute},
	}
}

// File returns the settings file to load. An empty string is returned if no
// file is configured and the default file does not exist.
func File() string {
	if f := os.Getenv(EnvFile); f != "" {
		return f
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}
	return ""
}

// A Loader loads settings files.
//
// The zero value is ready to load files.
type Loader struct {
	parser *hclparse.Parser
}

// Load loads settings from the given file. Settings that are not set in the
// file are taken from Defaults(). If filename is empty, the defaults are
// returned.
func (l *Loader) Load(filename string) (*Settings, hcl.Diagnostics) {
	def := Defaults()
	if filename == "" {
		return def, nil
	}
	if l.parser == nil {
		l.parser = hclparse.NewParser()
	}

	f, diags := l.parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, diags
	}

	var s Settings
	diags = append(diags, gohcl.DecodeBody(f.Body, nil, &s)...)
	if diags.HasErrors() {
		return nil, diags
	}

	s.merge(def)

	if s.Retry.MaxElapsed != "" {
		d, err := time.ParseDuration(s.Retry.MaxElapsed)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid duration",
				Detail:   fmt.Sprintf("The max_elapsed value %q is not a valid duration: %v.", s.Retry.MaxElapsed, err),
			})
			return nil, diags
		}
		s.Retry.elapsed = d
	}
	if s.Retry.Retries() < 0 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid max retries",
			Detail:   "The max_retries must not be negative.",
		})
		return nil, diags
	}
	if s.CallbackDelay < 0 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid callback delay",
			Detail:   "The callback_delay must not be negative.",
		})
		return nil, diags
	}

	return &s, diags
}

// merge fills in unset values from def.
func (s *Settings) merge(def *Settings) {
	if s.Region == "" {
		s.Region = def.Region
	}
	if s.LogLevel == "" {
		s.LogLevel = def.LogLevel
	}
	if s.CallbackDelay == 0 {
		s.CallbackDelay = def.CallbackDelay
	}
	if s.Server == nil {
		s.Server = &Server{}
	}
	if s.Server.Address == "" {
		s.Server.Address = def.Server.Address
	}
	if s.Retry == nil {
		s.Retry = &Retry{}
	}
	if s.Retry.MaxRetries == nil {
		s.Retry.MaxRetries = def.Retry.MaxRetries
	}
	if s.Retry.MaxElapsed == "" {
		s.Retry.MaxElapsed = def.Retry.MaxElapsed
	}
}

// WriteDiagnostics writes diagnostics as a human readable string to w. It
// should only be used for diagnostics that originate from files loaded by
// the Loader.
//
// If a TTY is attached, the output will be colorized and wrap at the terminal
// width. Otherwise, wrap will occur at 78 characters and output won't contain
// ANSI escape characters.
func (l *Loader) WriteDiagnostics(w io.Writer, diags hcl.Diagnostics) {
	var files map[string]*hcl.File
	if l.parser != nil {
		files = l.parser.Files()
	}
	cols, _, err := terminal.GetSize(0)
	if err != nil {
		cols = 78
	}
	color := terminal.IsTerminal(0)
	wr := hcl.NewDiagnosticTextWriter(w, files, uint(cols), color)
	if err := wr.WriteDiagnostics(diags); err != nil {
		fmt.Fprintln(w, err)
	}
}
