package health

import (
	"context"
	"sync"
	"time"
)

// Check probes one component and reports its current status.
type Check func(ctx context.Context) Status

// Monitor collects health checks from the framework's components. Checks
// registered by stores and templates run on demand; push-style updates
// are kept until replaced.
type Monitor struct {
	mu       sync.RWMutex
	checks   map[string]Check
	statuses map[string]Status
}

// NewMonitor creates an empty health monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		checks:   make(map[string]Check),
		statuses: make(map[string]Status),
	}
}

// Register adds a check for a named component, replacing any previous one.
func (m *Monitor) Register(name string, check Check) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[name] = check
}

// Update records a status for a named component without running a check.
func (m *Monitor) Update(name string, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status.Component = name
	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now()
	}
	m.statuses[name] = status
}

// Get retrieves the most recent status for a named component.
func (m *Monitor) Get(name string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, exists := m.statuses[name]
	return status, exists
}

// Components returns the names of all registered or reported components.
func (m *Monitor) Components() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{}, len(m.checks)+len(m.statuses))
	names := make([]string, 0, len(m.checks)+len(m.statuses))
	for name := range m.checks {
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for name := range m.statuses {
		if _, ok := seen[name]; !ok {
			names = append(names, name)
		}
	}
	return names
}

// CheckAll runs every registered check, stores the results, and returns
// the aggregate status under the given system name. Pushed statuses
// without a check participate with their last reported value.
func (m *Monitor) CheckAll(ctx context.Context, systemName string) Status {
	m.mu.Lock()
	checks := make(map[string]Check, len(m.checks))
	for name, check := range m.checks {
		checks[name] = check
	}
	m.mu.Unlock()

	for name, check := range checks {
		status := check(ctx)
		m.Update(name, status)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	subStatuses := make([]Status, 0, len(m.statuses))
	for _, status := range m.statuses {
		subStatuses = append(subStatuses, status)
	}
	return Aggregate(systemName, subStatuses)
}

// Remove drops a component's check and status.
func (m *Monitor) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.checks, name)
	delete(m.statuses, name)
}
