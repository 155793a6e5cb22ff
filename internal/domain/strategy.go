package domain

// Strategy is a server-managed trading strategy instance. The client only
// mirrors it; execution happens entirely on the backend.
type Strategy struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	ClassName  string                 `json:"class_name"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Status     StrategyStatus         `json:"status"`
	CreatedAt  string                 `json:"created_at"`
	StartedAt  string                 `json:"started_at,omitempty"`
	StoppedAt  string                 `json:"stopped_at,omitempty"`
}

// Key returns the natural identifier of the strategy.
func (s Strategy) Key() string { return s.ID }
