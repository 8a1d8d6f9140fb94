package loadbalancer

import "sync"

// Balancer rotates round-robin over equivalent backend instances of one
// domain service.
type Balancer struct {
	targets []string
	mu      sync.Mutex
	current int
}

func New(targets []string) *Balancer {
	return &Balancer{targets: targets}
}

// Next returns the next backend, or "" when no targets are configured.
func (b *Balancer) Next() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.targets) == 0 {
		return ""
	}
	target := b.targets[b.current]
	b.current = (b.current + 1) % len(b.targets)
	return target
}

func (b *Balancer) Targets() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.targets))
	copy(out, b.targets)
	return out
}
