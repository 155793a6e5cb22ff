package rest

import (
	"context"
	"fmt"
	"net/http"

	"tradeconsole/internal/ports"
)

type healthEnvelope struct {
	Status string `json:"status"`
}

// Health probes the backend health endpoint. Anything other than
// {"status":"ok"} counts as a failure.
func (c *Client) Health(ctx context.Context) error {
	var env healthEnvelope
	if err := c.do(ctx, "Health", http.MethodGet, "/health", nil, nil, &env); err != nil {
		return err
	}
	if env.Status != "ok" {
		return fmt.Errorf("Health failed: %w: status %q", ports.ErrServerError, env.Status)
	}
	return nil
}
