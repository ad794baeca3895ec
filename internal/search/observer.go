//go:generate mockgen -source=observer.go -destination=mocks/mock_observer.go -package=mocks

package search

// Observer receives the outcome of every search run by a Searcher. It is
// called from the coordinator goroutine after all workers have been joined.
type Observer interface {
	// SearchCompleted is called when a search finished, successfully or not.
	// err is nil for a true/false result.
	SearchCompleted(report Report, err error)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(report Report, err error)

// SearchCompleted calls f.
func (f ObserverFunc) SearchCompleted(report Report, err error) { f(report, err) }

// NopObserver discards every notification.
type NopObserver struct{}

// SearchCompleted does nothing.
func (NopObserver) SearchCompleted(Report, error) {}

// Observers fans a notification out to several observers in order.
type Observers []Observer

// SearchCompleted notifies every observer.
func (obs Observers) SearchCompleted(report Report, err error) {
	for _, o := range obs {
		o.SearchCompleted(report, err)
	}
}
