package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// OperationsSnapshot is returned by GET /v1/admin/metrics.
type OperationsSnapshot struct {
	CatalogQueries int64   `json:"catalogQueries"`
	RoleChanges    int64   `json:"roleChanges"`
	RoleRejections int64   `json:"roleRejections"`
	AdActivations  int64   `json:"adActivations"`
	Uploads        int64   `json:"uploads"`
	BackendErrors  int64   `json:"backendErrors"`
	CacheHitRate   float64 `json:"cacheHitRate"`
	Period         string  `json:"period"`
}

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
