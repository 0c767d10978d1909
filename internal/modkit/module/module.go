// Package module holds the contract modules satisfy and a process-wide port registry
package module

import phttp "dadhumor/internal/platform/net/http"

// Module mounts routes and exposes the ports other components wire against
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
