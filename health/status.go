// Package health reports the condition of the mapping layer and its
// backing store. Stores and templates publish statuses to a Monitor,
// which aggregates them into a single system view suitable for
// readiness endpoints.
package health

import (
	"regexp"
	"time"
)

// Connection strings and credentials leak through driver error text, so
// status messages are scrubbed before they leave the process.
var (
	natsURLRegex    = regexp.MustCompile(`nats://[^\s]+`)
	httpURLRegex    = regexp.MustCompile(`https?://[^\s]+`)
	credentialRegex = regexp.MustCompile(`(?i)(password|token|secret|credential)[^a-zA-Z]*[:=][^,\s}]+`)
)

// Status represents the health state of one component of the framework.
type Status struct {
	Component   string    `json:"component"`
	Healthy     bool      `json:"healthy"`
	Status      string    `json:"status"` // "healthy", "degraded", "unhealthy"
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	SubStatuses []Status  `json:"sub_statuses,omitempty"`
	Metrics     *Metrics  `json:"metrics,omitempty"`
}

// Metrics carries store-level measurements alongside a status.
type Metrics struct {
	RTT          time.Duration `json:"rtt,omitempty"`
	ErrorCount   int           `json:"error_count,omitempty"`
	LastActivity time.Time     `json:"last_activity,omitempty"`
}

// IsHealthy returns true if the status is healthy.
func (s Status) IsHealthy() bool {
	return s.Status == "healthy"
}

// IsDegraded returns true if the status is degraded.
func (s Status) IsDegraded() bool {
	return s.Status == "degraded"
}

// IsUnhealthy returns true if the status is unhealthy.
func (s Status) IsUnhealthy() bool {
	return s.Status == "unhealthy"
}

// WithMetrics returns a copy of the status with metrics attached.
func (s Status) WithMetrics(metrics *Metrics) Status {
	s.Metrics = metrics
	return s
}

// NewHealthy creates a healthy status.
func NewHealthy(component, message string) Status {
	return Status{
		Component: component,
		Healthy:   true,
		Status:    "healthy",
		Message:   sanitizeMessage(message),
		Timestamp: time.Now(),
	}
}

// NewDegraded creates a degraded status.
func NewDegraded(component, message string) Status {
	return Status{
		Component: component,
		Status:    "degraded",
		Message:   sanitizeMessage(message),
		Timestamp: time.Now(),
	}
}

// NewUnhealthy creates an unhealthy status.
func NewUnhealthy(component, message string) Status {
	return Status{
		Component: component,
		Status:    "unhealthy",
		Message:   sanitizeMessage(message),
		Timestamp: time.Now(),
	}
}

// Aggregate folds sub-statuses into one:
//   - any unhealthy sub-status makes the aggregate unhealthy
//   - otherwise any degraded sub-status makes it degraded
//   - otherwise it is healthy
func Aggregate(component string, subStatuses []Status) Status {
	if len(subStatuses) == 0 {
		return NewHealthy(component, "no sub-components to aggregate")
	}

	hasUnhealthy := false
	hasDegraded := false
	for _, sub := range subStatuses {
		switch {
		case sub.IsUnhealthy():
			hasUnhealthy = true
		case sub.IsDegraded():
			hasDegraded = true
		}
	}

	var status Status
	switch {
	case hasUnhealthy:
		status = NewUnhealthy(component, "one or more sub-components are unhealthy")
	case hasDegraded:
		status = NewDegraded(component, "one or more sub-components are degraded")
	default:
		status = NewHealthy(component, "all sub-components are healthy")
	}

	status.SubStatuses = make([]Status, len(subStatuses))
	copy(status.SubStatuses, subStatuses)
	return status
}

func sanitizeMessage(message string) string {
	if message == "" {
		return ""
	}
	message = natsURLRegex.ReplaceAllString(message, "[URL]")
	message = httpURLRegex.ReplaceAllString(message, "[URL]")
	message = credentialRegex.ReplaceAllString(message, "[REDACTED]")
	return message
}
