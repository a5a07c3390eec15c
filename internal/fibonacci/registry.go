package fibonacci

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultAlgorithm is the generator selected when none is named.
const DefaultAlgorithm = "decimal"

// Creator builds a fresh Generator positioned at F(0).
type Creator func() Generator

// GeneratorFactory is a registry of generator implementations keyed by name.
// It is safe for concurrent use.
type GeneratorFactory struct {
	mu       sync.RWMutex
	creators map[string]Creator
}

// NewGeneratorFactory returns an empty factory.
func NewGeneratorFactory() *GeneratorFactory {
	return &GeneratorFactory{creators: make(map[string]Creator)}
}

// NewDefaultFactory returns a factory with the built-in generators registered.
func NewDefaultFactory() *GeneratorFactory {
	f := NewGeneratorFactory()
	f.mustRegister("decimal", func() Generator { return NewDecimalGenerator() })
	f.mustRegister("big", func() Generator { return NewBigGenerator() })
	return f
}

// Register adds a generator under name. Registering an empty name, a nil
// creator or a duplicate name is an error.
func (f *GeneratorFactory) Register(name string, creator Creator) error {
	if name == "" {
		return fmt.Errorf("generator name must not be empty")
	}
	if creator == nil {
		return fmt.Errorf("generator %q: nil creator", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.creators[name]; exists {
		return fmt.Errorf("generator %q already registered", name)
	}
	f.creators[name] = creator
	return nil
}

func (f *GeneratorFactory) mustRegister(name string, creator Creator) {
	if err := f.Register(name, creator); err != nil {
		panic(err)
	}
}

// Get returns the creator registered under name.
func (f *GeneratorFactory) Get(name string) (Creator, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	creator, ok := f.creators[name]
	if !ok {
		return nil, fmt.Errorf("unknown algorithm %q (available: %v)", name, f.listLocked())
	}
	return creator, nil
}

// New builds a generator by name.
func (f *GeneratorFactory) New(name string) (Generator, error) {
	creator, err := f.Get(name)
	if err != nil {
		return nil, err
	}
	return creator(), nil
}

// List returns the registered names in sorted order.
func (f *GeneratorFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.listLocked()
}

func (f *GeneratorFactory) listLocked() []string {
	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
