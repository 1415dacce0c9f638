package symbols

import (
	"fmt"
	"sort"

	"github.com/quill-lang/quill/internal/typesystem"
)

// RegisterTrait declares a trait and its method names. Each method name is
// also bound to the trait for method-to-trait resolution.
func (c *Context) RegisterTrait(name string, methods []string) error {
	if _, exists := c.traits[name]; exists {
		return fmt.Errorf("trait %q already declared", name)
	}
	c.traits[name] = append([]string(nil), methods...)
	for _, m := range methods {
		c.methodTraits[m] = name
	}
	return nil
}

// HasTrait reports whether the trait is declared.
func (c *Context) HasTrait(name string) bool {
	_, ok := c.traits[name]
	return ok
}

// TraitOfMethod returns the trait owning a method name.
func (c *Context) TraitOfMethod(method string) (string, bool) {
	t, ok := c.methodTraits[method]
	return t, ok
}

// TraitMethods returns the method names of a trait.
func (c *Context) TraitMethods(name string) []string {
	return c.traits[name]
}

// RegisterImpl registers an implementation of trait for target with the
// given method signatures. The implementation receives the next index in
// the unit's resolved trait-method table.
func (c *Context) RegisterImpl(trait string, target typesystem.Type, methods map[string]typesystem.Type) (InstanceDef, error) {
	if _, ok := c.traits[trait]; !ok {
		return InstanceDef{}, fmt.Errorf("implementation for undeclared trait %q", trait)
	}
	for _, m := range c.traits[trait] {
		if _, ok := methods[m]; !ok {
			return InstanceDef{}, fmt.Errorf("implementation of %q for %s is missing method %q", trait, target, m)
		}
	}

	def := InstanceDef{Trait: trait, Target: target, Methods: methods, Index: c.implCount}
	c.implCount++
	c.impls[trait] = append(c.impls[trait], def)
	return def, nil
}

// Implementations returns the registered implementations of a trait in
// registration order.
func (c *Context) Implementations(trait string) []InstanceDef {
	return c.impls[trait]
}

// AllImplementations returns every registered implementation ordered by
// table index. The code generator freezes this into the unit's resolved
// trait-method table.
func (c *Context) AllImplementations() []InstanceDef {
	var out []InstanceDef
	for _, defs := range c.impls {
		out = append(out, defs...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
