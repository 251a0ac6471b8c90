package config

type SecurityLevel int

const (
	SecurityPublic  SecurityLevel = iota // No authentication
	SecurityAccess                       // Access token required
	SecurityManager                      // Access token of an admin or lab manager
	SecurityAdmin                        // Access token of an admin
)

// EndpointSecurityConfig maps "METHOD /route/template" to the level it needs.
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Auth - Public
	"POST /api/v1/auth/signup": SecurityPublic,
	"POST /api/v1/auth/signin": SecurityPublic,
	"GET /healthz":             SecurityPublic,

	// Catalog - writes need a manager
	"POST /api/v1/equipment":        SecurityManager,
	"PATCH /api/v1/equipment/{id}":  SecurityManager,
	"DELETE /api/v1/equipment/{id}": SecurityManager,
	"POST /api/v1/labs":             SecurityManager,
	"PATCH /api/v1/labs/{id}":       SecurityManager,
	"DELETE /api/v1/labs/{id}":      SecurityManager,

	// Reservations - decisions need a manager
	"POST /api/v1/reservations/{id}/decision":     SecurityManager,
	"POST /api/v1/lab-reservations/{id}/decision": SecurityManager,

	// Maintenance
	"POST /api/v1/maintenance":        SecurityManager,
	"PATCH /api/v1/maintenance/{id}":  SecurityManager,
	"DELETE /api/v1/maintenance/{id}": SecurityManager,

	// Auto-approval - system scope is checked again in the service
	"PUT /api/v1/auto-approval/settings":           SecurityManager,
	"GET /api/v1/auto-approval/settings/{id}/logs": SecurityManager,

	// Admin
	"GET /api/v1/admin/users":           SecurityAdmin,
	"PUT /api/v1/admin/users/{id}/role": SecurityAdmin,
}

// GetSecurityLevel returns the security level for a route
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to access for unknown routes
	return SecurityAccess
}
