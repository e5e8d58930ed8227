package natskv

import (
	"context"
	"fmt"

	jerrors "github.com/ediel-queiroz/jnosql/errors"
	"github.com/ediel-queiroz/jnosql/health"
	"github.com/ediel-queiroz/jnosql/natsclient"
)

// healthProbeKey is never written; the probe expects a clean not-found.
const healthProbeKey = "health.probe"

// HealthCheck reports the store's condition. It satisfies health.Check,
// so it can be registered directly with a health.Monitor. The connection
// status is consulted first, then a single KV read proves the bucket
// answers.
func (m *Manager) HealthCheck(ctx context.Context) health.Status {
	if m.client != nil {
		switch m.client.Status() {
		case natsclient.StatusConnected:
		case natsclient.StatusReconnecting:
			return health.NewDegraded(component, "reconnecting to NATS")
		default:
			return health.NewUnhealthy(component, "not connected to NATS")
		}
	}

	_, err := m.kv.Get(ctx, healthProbeKey)
	switch {
	case err == nil, jerrors.IsKeyNotFound(err):
	case jerrors.IsTransient(err):
		return health.NewDegraded(component, fmt.Sprintf("bucket probe: %v", err))
	default:
		return health.NewUnhealthy(component, fmt.Sprintf("bucket probe: %v", err))
	}

	status := health.NewHealthy(component, "bucket reachable")
	if m.client != nil {
		if rtt, err := m.client.RTT(); err == nil {
			status = status.WithMetrics(&health.Metrics{RTT: rtt})
		}
	}
	return status
}
