package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// outlineStats summarizes a batch outline run.
type outlineStats struct {
	Files    int
	Failed   int
	Symbols  int
	Duration time.Duration
}

// progressReporter shows a progress bar while many files are outlined.
// Progress goes to stderr so that stdout stays machine-readable.
type progressReporter struct {
	quiet     bool
	out       io.Writer
	fileBar   *progressbar.ProgressBar
	startTime time.Time
}

func newProgressReporter(out io.Writer, quiet bool) *progressReporter {
	return &progressReporter{
		quiet:     quiet,
		out:       out,
		startTime: time.Now(),
	}
}

func (p *progressReporter) OnDiscoveryComplete(files int) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "Outlining %s files\n", formatNumber(files))
}

func (p *progressReporter) OnStart(totalFiles int) {
	if p.quiet {
		return
	}
	p.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("Outlining files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(p.out)
		}),
	)
}

func (p *progressReporter) OnFileProcessed(fileName string) {
	if p.quiet || p.fileBar == nil {
		return
	}
	p.fileBar.Add(1)
}

func (p *progressReporter) OnComplete(stats outlineStats) {
	if p.quiet {
		return
	}
	if p.fileBar != nil {
		p.fileBar.Finish()
		p.fileBar = nil
	}
	fmt.Fprintf(p.out, "✓ Outlined %s files, %s symbols in %.1fs\n",
		formatNumber(stats.Files), formatNumber(stats.Symbols), stats.Duration.Seconds())
	if stats.Failed > 0 {
		fmt.Fprintf(p.out, "  Failed: %s\n", formatNumber(stats.Failed))
	}
}

// formatNumber renders n with thousands separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
