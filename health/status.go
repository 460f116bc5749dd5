package health

// Status constants describe the operational state of a dependency.
const (
	// StatusHealthy indicates the dependency is usable.
	StatusHealthy = "healthy"

	// StatusDegraded indicates the dependency is usable with reduced function.
	StatusDegraded = "degraded"

	// StatusUnhealthy indicates the dependency is not usable.
	StatusUnhealthy = "unhealthy"
)

// Status is the result of one check.
type Status struct {
	// Status is one of StatusHealthy, StatusDegraded or StatusUnhealthy.
	Status string `json:"status"`

	// Message is a human-readable summary.
	Message string `json:"message,omitempty"`

	// Details carries diagnostic context such as the probed address.
	Details map[string]any `json:"details,omitempty"`
}

// IsHealthy returns true if the status is StatusHealthy.
func (s Status) IsHealthy() bool {
	return s.Status == StatusHealthy
}

// IsDegraded returns true if the status is StatusDegraded.
func (s Status) IsDegraded() bool {
	return s.Status == StatusDegraded
}

// IsUnhealthy returns true if the status is StatusUnhealthy.
func (s Status) IsUnhealthy() bool {
	return s.Status == StatusUnhealthy
}

// Healthy creates a healthy status.
func Healthy(message string) Status {
	return Status{Status: StatusHealthy, Message: message}
}

// Degraded creates a degraded status.
func Degraded(message string, details map[string]any) Status {
	return Status{Status: StatusDegraded, Message: message, Details: details}
}

// Unhealthy creates an unhealthy status.
func Unhealthy(message string, details map[string]any) Status {
	return Status{Status: StatusUnhealthy, Message: message, Details: details}
}
