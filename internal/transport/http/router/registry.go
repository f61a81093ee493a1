package router

import (
	"sort"

	"docuisine/internal/transport/http/ez"
)

// A module implements any of these to be mounted on the matching group.
type (
	RootModule  interface{ MountRoot(ez.EZ) }
	APIModule   interface{ MountAPI(ez.EZ) }
	AdminModule interface{ MountAdmin(ez.EZ) }
)

// Modules that implement prioritizer mount in ascending order; others
// default to 100.
type prioritizer interface{ Priority() int }

// Registry collects handler modules for the engines. It is built by main,
// not filled from package init.
type Registry struct {
	root  []RootModule
	api   []APIModule
	admin []AdminModule
}

func NewRegistry(mods ...any) *Registry {
	r := &Registry{}
	for _, m := range mods {
		r.Register(m)
	}
	return r
}

// Register files mod under every group it can mount on.
func (r *Registry) Register(mod any) {
	if m, ok := mod.(RootModule); ok {
		r.root = append(r.root, m)
	}
	if m, ok := mod.(APIModule); ok {
		r.api = append(r.api, m)
	}
	if m, ok := mod.(AdminModule); ok {
		r.admin = append(r.admin, m)
	}
}

func (r *Registry) MountRoot(e ez.EZ) {
	for _, m := range sorted(r.root) {
		m.MountRoot(e)
	}
}

func (r *Registry) MountAPI(e ez.EZ) {
	for _, m := range sorted(r.api) {
		m.MountAPI(e)
	}
}

func (r *Registry) MountAdmin(e ez.EZ) {
	for _, m := range sorted(r.admin) {
		m.MountAdmin(e)
	}
}

func sorted[M any](mods []M) []M {
	out := append([]M(nil), mods...)
	sort.SliceStable(out, func(i, j int) bool {
		return priorityOf(out[i]) < priorityOf(out[j])
	})
	return out
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
