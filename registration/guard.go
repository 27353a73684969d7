package registration

import (
	"context"
	"strings"
	"sync"
)

// Guard stops the same submission from running twice at once.
// ok is false when key is already held.
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

// GuardKey is the key a submission is guarded under.
func GuardKey(email string) string {
	return "register:" + strings.ToLower(strings.TrimSpace(email))
}

// LocalGuard is an in-process Guard.
type LocalGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{held: make(map[string]struct{})}
}

func (g *LocalGuard) Acquire(_ context.Context, key string) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[key]; busy {
		return nil, false, nil
	}
	g.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, true, nil
}
