package module

import "dadhumor/internal/services/dispatch/domain"

// Ports defines dispatch module ports exposed via the registry
type Ports struct {
	Dispatcher domain.DispatcherPort
}
