package action

import "fmt"

// Registry holds ActionDescriptors discovered from host adapters at
// process initialization. Registration happens once; after that, reads
// are lock-free.
type Registry struct {
	byID  map[string]*ActionDescriptor
	order []string
}

// NewRegistry returns an empty action registry.
func NewRegistry() *Registry {
	return &Registry{byID: map[string]*ActionDescriptor{}}
}

// Register adds descriptor to the registry. Fails with DuplicateActionId
// if its id is already present, or DuplicateParamName if two of its
// parameters share a name.
func (r *Registry) Register(descriptor *ActionDescriptor) error {
	if descriptor.ID == "" {
		return fmt.Errorf("action: descriptor id must not be empty")
	}
	if _, exists := r.byID[descriptor.ID]; exists {
		return &DuplicateActionId{ID: descriptor.ID}
	}
	seen := map[string]bool{}
	for _, name := range descriptor.ParamNames() {
		if seen[name] {
			return &DuplicateParamName{ActionID: descriptor.ID, Param: name}
		}
		seen[name] = true
	}
	r.byID[descriptor.ID] = descriptor
	r.order = append(r.order, descriptor.ID)
	return nil
}

// Lookup resolves actionId to its descriptor, or UnknownAction.
func (r *Registry) Lookup(actionID string) (*ActionDescriptor, error) {
	d, ok := r.byID[actionID]
	if !ok {
		return nil, &UnknownAction{ID: actionID}
	}
	return d, nil
}

// All returns every registered descriptor in registration order.
func (r *Registry) All() []*ActionDescriptor {
	out := make([]*ActionDescriptor, len(r.order))
	for i, id := range r.order {
		out[i] = r.byID[id]
	}
	return out
}
