package registry

import (
	"context"
	"fmt"
	"sort"
)

// resolveOrder walks systems depth-first, seeded lowest priority first
// (ties by registration order). Dependencies are emitted before their
// dependents. Unknown dependencies are logged and skipped.
func (r *Registry) resolveOrder() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seeds := make([]string, 0, len(r.entries))
	for name := range r.entries {
		seeds = append(seeds, name)
	}
	sort.SliceStable(seeds, func(i, j int) bool {
		a, b := r.entries[seeds[i]], r.entries[seeds[j]]
		if pa, pb := a.sys.Priority(), b.sys.Priority(); pa != pb {
			return pa < pb
		}
		return a.seq < b.seq
	})

	var (
		order   = make([]string, 0, len(seeds))
		visited = make(map[string]bool, len(seeds))
		onPath  = make(map[string]int)
		path    []string
	)

	var visit func(name string) error
	visit = func(name string) error {
		if idx, ok := onPath[name]; ok {
			cycle := make([]string, 0, len(path)-idx+1)
			cycle = append(cycle, path[idx:]...)
			cycle = append(cycle, name)
			return &CycleError{Path: cycle}
		}
		if visited[name] {
			return nil
		}

		onPath[name] = len(path)
		path = append(path, name)

		for _, dep := range r.entries[name].sys.Dependencies() {
			if _, ok := r.entries[dep]; !ok {
				r.logger.Warn("missing dependency", "system", name, "dependency", dep)
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		delete(onPath, name)
		visited[name] = true
		order = append(order, name)
		return nil
	}

	for _, name := range seeds {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// safeInit runs Initialize, converting a panic into an error.
func safeInit(ctx context.Context, sys System) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return sys.Initialize(ctx)
}

// safeDestroy runs Destroy, converting a panic into an error.
func safeDestroy(sys System) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return sys.Destroy()
}
