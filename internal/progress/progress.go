package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Transfer reports the progress of a byte transfer. Bytes written to it
// are counted, not stored.
type Transfer interface {
	io.Writer
	Finish()
}

// NewTransfer returns a terminal progress bar, or a line-based reporter
// when the CI environment variable is set. total is -1 when unknown.
func NewTransfer(total int64, description string) Transfer {
	return newTransfer(os.Stderr, total, description)
}

func newTransfer(out io.Writer, total int64, description string) Transfer {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{out: out, description: description}
	}
	return &TerminalReporter{bar: progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Write(p []byte) (int, error) {
	return r.bar.Write(p)
}

func (r *TerminalReporter) Finish() {
	_ = r.bar.Finish()
}

// CIReporter prints a single summary line suitable for CI logs.
type CIReporter struct {
	out         io.Writer
	description string
	written     int64
}

func (r *CIReporter) Write(p []byte) (int, error) {
	r.written += int64(len(p))
	return len(p), nil
}

func (r *CIReporter) Finish() {
	fmt.Fprintf(r.out, "%s: %d bytes\n", r.description, r.written)
}
