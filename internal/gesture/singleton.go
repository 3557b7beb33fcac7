package gesture

import (
	"errors"
	"sync"
)

// Only one OS-level interceptor usefully exists per process, so the running
// service is reachable through a single explicitly initialized instance.
var (
	instanceMu sync.Mutex
	instance   *Service
)

// InitInstance registers s as the process-wide service. It fails if an
// instance is already registered; call ShutdownInstance first.
func InitInstance(s *Service) error {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance != nil {
		return errors.New("gesture service already initialized")
	}
	instance = s
	return nil
}

// Instance returns the process-wide service, or nil before InitInstance.
func Instance() *Service {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	return instance
}

// ShutdownInstance stops and unregisters the process-wide service. Safe to
// call when none is registered.
func ShutdownInstance() {
	instanceMu.Lock()
	s := instance
	instance = nil
	instanceMu.Unlock()
	if s != nil {
		s.Stop()
	}
}
