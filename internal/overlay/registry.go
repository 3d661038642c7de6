package overlay

import (
	"image"
	"sort"

	"crosshair/pkg/window"
)

// SurfaceID identifies a surface for the lifetime of a registry
type SurfaceID int

// Surface is one presented overlay window
type Surface struct {
	ID      SurfaceID
	Handle  window.Handle
	Monitor int
	Origin  image.Point
	Size    image.Point
}

// Registry owns the active surfaces. It is only touched from the dispatch
// goroutine and holds no lock.
type Registry struct {
	surfaces map[SurfaceID]*Surface
	next     SurfaceID
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{surfaces: make(map[SurfaceID]*Surface)}
}

// Add registers a surface and assigns its ID
func (r *Registry) Add(s *Surface) SurfaceID {
	r.next++
	s.ID = r.next
	r.surfaces[s.ID] = s
	return s.ID
}

// Remove drops a surface, reporting whether it was present
func (r *Registry) Remove(id SurfaceID) bool {
	if _, ok := r.surfaces[id]; !ok {
		return false
	}
	delete(r.surfaces, id)
	return true
}

// RemoveHandle drops the surface owning a window handle
func (r *Registry) RemoveHandle(h window.Handle) (*Surface, bool) {
	s, ok := r.Lookup(h)
	if !ok {
		return nil, false
	}
	return s, r.Remove(s.ID)
}

// Lookup finds the surface owning a window handle
func (r *Registry) Lookup(h window.Handle) (*Surface, bool) {
	for _, s := range r.surfaces {
		if s.Handle == h {
			return s, true
		}
	}
	return nil, false
}

// Len returns the number of active surfaces
func (r *Registry) Len() int {
	return len(r.surfaces)
}

// Surfaces returns the active surfaces ordered by ID
func (r *Registry) Surfaces() []*Surface {
	out := make([]*Surface, 0, len(r.surfaces))
	for _, s := range r.surfaces {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Teardown destroys every active surface and empties the registry. Destroy
// may call back into RemoveHandle; the snapshot keeps iteration stable. The
// first destroy error is returned after all surfaces were attempted.
func (r *Registry) Teardown(destroy func(window.Handle) error) error {
	var firstErr error
	for _, s := range r.Surfaces() {
		if err := destroy(s.Handle); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.surfaces = make(map[SurfaceID]*Surface)
	return firstErr
}
