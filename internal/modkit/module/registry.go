package module

import "sync"

// global port registry filled while Mount constructs the module list
// later modules (orchestrator, replay) look up the ports of the worker
// modules registered before them
var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register stores the port set published under a module name
// re-registering a name replaces the previous ports
func Register(name string, ports any) {
	mu.Lock()
	reg[name] = ports
	mu.Unlock()
}

// PortsAs fetches the port set for name and asserts it to T
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	v, ok := reg[name]
	mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	out, ok := v.(T)
	return out, ok
}

// Reset clears the registry between tests
func Reset() {
	mu.Lock()
	reg = map[string]any{}
	mu.Unlock()
}
