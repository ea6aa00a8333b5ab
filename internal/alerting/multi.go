package alerting

import (
	"context"
	"errors"
	"sync"
)

// MultiAlerter fans alerts out to multiple channels.
type MultiAlerter struct {
	mu       sync.RWMutex
	alerters []Alerter
}

// NewMultiAlerter creates a multi-channel alerter.
func NewMultiAlerter(alerters ...Alerter) *MultiAlerter {
	return &MultiAlerter{alerters: alerters}
}

// Name returns "multi".
func (m *MultiAlerter) Name() string {
	return "multi"
}

// Add registers another alerter.
func (m *MultiAlerter) Add(a Alerter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerters = append(m.alerters, a)
}

// Alert sends the alert to every channel and joins any failures.
func (m *MultiAlerter) Alert(ctx context.Context, severity Severity, message string, fields ...any) error {
	m.mu.RLock()
	alerters := make([]Alerter, len(m.alerters))
	copy(alerters, m.alerters)
	m.mu.RUnlock()

	var errs []error
	for _, a := range alerters {
		if err := a.Alert(ctx, severity, message, fields...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
