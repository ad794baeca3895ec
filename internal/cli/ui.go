//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/parsearch/internal/orchestration"
)

const (
	// ProgressRefreshRate is the spinner animation and redraw interval.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in characters of the progress bar.
	ProgressBarWidth = 30
)

// Spinner abstracts a terminal spinner so DisplayProgress can be tested
// without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress shows a spinner with a completion bar while the searches
// run. It returns, and calls wg.Done, once progressChan is closed.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numPlans int, out io.Writer) {
	defer wg.Done()
	if numPlans <= 0 {
		for range progressChan {
		}
		return
	}

	s := newSpinner(spinner.WithWriter(out))
	done, found, failed := 0, 0, 0
	s.UpdateSuffix(progressSuffix(done, found, failed, numPlans))
	s.Start()
	defer s.Stop()

	for update := range progressChan {
		done++
		switch {
		case update.Err != nil:
			failed++
		case update.Found:
			found++
		}
		s.UpdateSuffix(progressSuffix(done, found, failed, numPlans))
	}
}

func progressSuffix(done, found, failed, total int) string {
	suffix := fmt.Sprintf(" Searching %s %d/%d", progressBar(float64(done)/float64(total), ProgressBarWidth), done, total)
	if found > 0 {
		suffix += fmt.Sprintf(", %d found", found)
	}
	if failed > 0 {
		suffix += fmt.Sprintf(", %d failed", failed)
	}
	return suffix
}

// progressBar renders progress (clamped to [0, 1]) as a bar of the given width.
func progressBar(progress float64, length int) string {
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0.0 {
		progress = 0.0
	}
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}
