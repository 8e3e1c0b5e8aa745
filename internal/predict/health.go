package predict

import (
	"context"
	"net/http"
)

// healthPaths maps each service to its liveness route. The brain service
// has none, so its upload route is probed with GET.
var healthPaths = map[Service]string{
	ServiceAssess:  "/api/health",
	ServiceThyroid: "/api/health",
	ServiceLung:    "/health",
	ServiceBrain:   "/",
}

// Health probes a service. It returns nil when the service answered 2xx.
func (c *Client) Health(ctx context.Context, s Service) error {
	_, err := c.do(ctx, call{
		service: s,
		method:  http.MethodGet,
		path:    healthPaths[s],
	})
	return err
}
