// Package stacks collects the stacks shipped with this repository.
package stacks

import (
	"sync"

	"github.com/VPPATEL-SPS/aws-cdk-examples/internal/registry"
	"github.com/VPPATEL-SPS/aws-cdk-examples/stacks/eventrule"
	"github.com/VPPATEL-SPS/aws-cdk-examples/stacks/httpapi"
	"github.com/VPPATEL-SPS/aws-cdk-examples/stacks/restapi"
)

var (
	defaultRegistry *registry.Registry
	once            sync.Once
)

// Registry returns the registry of all shipped stacks.
func Registry() *registry.Registry {
	once.Do(func() {
		defaultRegistry = registry.New()
		for _, s := range []registry.Stack{
			eventrule.Stack(),
			httpapi.Stack(),
			restapi.Stack(),
		} {
			if err := defaultRegistry.Register(s); err != nil {
				panic(err)
			}
		}
	})
	return defaultRegistry
}

// All returns every shipped stack sorted by name.
func All() []registry.Stack {
	return Registry().All()
}

// Lookup returns the shipped stack with the given name.
func Lookup(name string) (registry.Stack, bool) {
	return Registry().Lookup(name)
}
