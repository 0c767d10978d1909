// Package modkit builds API modules from shared deps and functional options
package modkit

import "dadhumor/internal/modkit/module"

// Module is the surface api.Mount composes: routes, ports and a name
type Module = module.Module
