package scene

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/poiesic/morphit/core"
	"github.com/poiesic/morphit/morph"
)

// Character is a named object exposing a fixed set of shape key parameters.
// It is safe for concurrent use.
type Character struct {
	name string

	mu     sync.RWMutex
	values map[string]float64
}

var _ morph.Target = (*Character)(nil)

// NewCharacter creates a character exposing the given parameters, all at 0.
func NewCharacter(name string, parameters ...string) *Character {
	values := make(map[string]float64, len(parameters))
	for _, p := range parameters {
		values[p] = 0
	}
	return &Character{name: name, values: values}
}

// FromRecord rebuilds a character from its persisted state.
func FromRecord(record *core.CharacterRecord) *Character {
	values := maps.Clone(record.Parameters)
	if values == nil {
		values = make(map[string]float64)
	}
	return &Character{name: record.Name, values: values}
}

// Name returns the object name.
func (c *Character) Name() string {
	return c.name
}

// Parameters returns the exposed parameter names in sorted order.
func (c *Character) Parameters() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.values))
}

// SetParameter sets an exposed parameter.
func (c *Character) SetParameter(name string, value float64) error {
	if value < 0 || value > 1 {
		return fmt.Errorf("%w: %s=%v", ErrValueOutOfRange, name, value)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[name]; !ok {
		return fmt.Errorf("%w: %s on %s", ErrUnknownParameter, name, c.name)
	}
	c.values[name] = value
	return nil
}

// Value returns the current value of a parameter.
func (c *Character) Value(name string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[name]
	return v, ok
}

// Snapshot returns a copy of every parameter value.
func (c *Character) Snapshot() map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.values)
}

// Active returns the parameters with a non-zero value.
func (c *Character) Active() core.ParameterSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	active := core.ParameterSet{}
	for name, v := range c.values {
		if v != 0 {
			active[name] = v
		}
	}
	return active
}

// Record returns the persistable form of the character.
func (c *Character) Record() *core.CharacterRecord {
	return &core.CharacterRecord{
		Id:         core.IDFromContent(c.name),
		Name:       c.name,
		Parameters: c.Snapshot(),
	}
}
