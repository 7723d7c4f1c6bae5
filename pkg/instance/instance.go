// Package instance names the running process in logs and lock values.
package instance

import (
	"os"

	"github.com/arcacommerce/arca-backend/pkg/env"
)

const fallbackID = "local"

// ID prefers ARCA_INSTANCE_ID, then the platform DYNO name, then the hostname.
func ID() string {
	if id := env.First("ARCA_INSTANCE_ID", "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallbackID
}
