package modkit

import (
	"dadhumor/internal/platform/config"
	"dadhumor/internal/platform/logger"

	"github.com/prometheus/client_golang/prometheus"
)

// Deps holds what every module receives from its host process
// a nil Metrics registerer leaves collectors unregistered
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	Metrics prometheus.Registerer
}
