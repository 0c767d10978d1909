// Package bootstrap performs the one-time process setup shared by every binary
package bootstrap

import (
	"sync/atomic"

	"dadhumor/internal/adapters/credentials"
	"dadhumor/internal/core/version"
	"dadhumor/internal/platform/logger"
	"dadhumor/internal/platform/net/http/bind"
)

var done atomic.Bool

// Init names the service and brings up logging, validation and the shared
// credential source. It reports whether this call did the work; later calls are no-ops
func Init(service string) bool {
	if !done.CompareAndSwap(false, true) {
		return false
	}
	version.SetService(service)

	opts := logger.FromEnv()
	if opts.Service == "" {
		opts.Service = service
	}
	logger.Init(opts)

	bind.Init()
	credentials.Default()

	logger.Named("bootstrap").Info().
		Str("service", service).
		Str("version", version.Info().Version).
		Msg("process initialized")
	return true
}
