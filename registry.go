/*
 * registry.go, part of qcio.
 *
 * Copyright 2024 The qcio authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package qcio

import (
	"sort"
	"sync"
)

//registration knows how to build one concrete Results type.
type registration struct {
	pairing Pairing
	build   func(input Spec, success bool, data Data, prov Provenance, opts []ResultOption) (Output, error)
	fromMap func(m map[string]any) (Output, error)
}

//Registry maps pairing names to the concrete Results types, so a Results
//can be built, or read back, knowing only the kinds of its input and data,
//or the name of its pairing. It is safe for concurrent use. The zero value
//is an empty registry.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registration
}

//NewRegistry returns a registry with every pairing of the Spec and Data
//variants registered.
func NewRegistry() *Registry {
	R := new(Registry)
	registerVariants[*FileSpec](R)
	registerVariants[*CalcSpec](R)
	registerVariants[*CompositeCalcSpec](R)
	return R
}

func registerVariants[S Spec](R *Registry) {
	//These can't fail, as all the types are concrete.
	Register[S, *EmptyData](R)
	Register[S, *SinglePointData](R)
	Register[S, *OptimizationData](R)
	Register[S, *ConformerSearchData](R)
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

//DefaultRegistry returns the process-wide registry, with every pairing
//registered. It is built on the first call, and every call returns the
//same one.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

//Register adds Results[S, D] to R and returns its pairing. Registering a
//pairing again does nothing. S and D must be concrete variants.
func Register[S Spec, D Data](R *Registry) (Pairing, error) {
	sk, okS := specKindOf[S]()
	dk, okD := dataKindOf[D]()
	if !okS || !okD {
		return Pairing{}, invalid("Registry", "", "only concrete Spec and Data variants can be registered")
	}
	P := Pairing{Spec: sk, Data: dk}
	R.mu.Lock()
	defer R.mu.Unlock()
	if R.entries == nil {
		R.entries = make(map[string]registration)
	}
	if _, ok := R.entries[P.Name()]; ok {
		return P, nil
	}
	R.entries[P.Name()] = registration{
		pairing: P,
		build: func(input Spec, success bool, data Data, prov Provenance, opts []ResultOption) (Output, error) {
			s, ok := input.(S)
			if !ok {
				return nil, invalid("Results", "input_data", "expected a %s, got %T", sk, input)
			}
			d, ok := data.(D)
			if !ok {
				return nil, invalid("Results", "data", "expected a %s, got %T", dk, data)
			}
			return asOutput[S, D](NewTyped[S, D](s, success, d, prov, opts...))
		},
		fromMap: func(m map[string]any) (Output, error) {
			return asOutput[S, D](ResultsFromMap[S, D](m))
		},
	}
	return P, nil
}

func (R *Registry) lookup(name string) (registration, error) {
	R.mu.RLock()
	reg, ok := R.entries[name]
	R.mu.RUnlock()
	if !ok {
		return registration{}, &UnregisteredTypeError{Name: name}
	}
	return reg, nil
}

//Lookup returns the pairing registered under name, or an
//*UnregisteredTypeError.
func (R *Registry) Lookup(name string) (Pairing, error) {
	reg, err := R.lookup(name)
	return reg.pairing, err
}

//Names returns the registered names, sorted.
func (R *Registry) Names() []string {
	R.mu.RLock()
	defer R.mu.RUnlock()
	ret := make([]string, 0, len(R.entries))
	for k := range R.entries {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

//Len returns the number of registered pairings.
func (R *Registry) Len() int {
	R.mu.RLock()
	defer R.mu.RUnlock()
	return len(R.entries)
}

//New builds the concrete Results matching the kinds of input and data.
func (R *Registry) New(input Spec, success bool, data Data, prov Provenance, opts ...ResultOption) (Output, error) {
	if isNil(input) {
		return nil, invalid("Results", "input_data", "field required")
	}
	if isNil(data) {
		return nil, invalid("Results", "data", "field required")
	}
	reg, err := R.lookup(Pairing{Spec: input.Kind(), Data: data.Kind()}.Name())
	if err != nil {
		return nil, errDecorate(err, "New")
	}
	ret, err := reg.build(input, success, data, prov, opts)
	return ret, errDecorate(err, "New")
}

//Specialize returns o as the concrete Results type of its pairing. If o is
//already concrete, it is returned as is, so calling Specialize again on
//the result does nothing.
func (R *Registry) Specialize(o Output) (Output, error) {
	g, ok := o.(*Results[Spec, Data])
	if !ok {
		return o, nil
	}
	reg, err := R.lookup(g.Pairing().Name())
	if err != nil {
		return nil, errDecorate(err, "Specialize")
	}
	ret, err := reg.build(g.InputData, g.Success, g.Data, g.Provenance, []ResultOption{withMeta(g.meta())})
	return ret, errDecorate(err, "Specialize")
}

//ResultsFromMap migrates legacy fields in m, infers the kinds of its input
//and data, and builds the matching concrete Results. The notices for the
//legacy fields rewritten are returned along the Results.
func (R *Registry) ResultsFromMap(m map[string]any) (Output, []Notice, error) {
	m, notices := Migrate(RecordResults, m)
	in, _ := m["input_data"].(map[string]any)
	dm, _ := m["data"].(map[string]any)
	P := Pairing{Spec: InferSpecKind(in), Data: InferDataKind(dm)}
	ret, err := R.ResultsFromNamedMap(P.Name(), m)
	return ret, notices, err
}

//ResultsFromNamedMap builds the Results registered under name from its
//mapping form, which must have no legacy fields.
func (R *Registry) ResultsFromNamedMap(name string, m map[string]any) (Output, error) {
	reg, err := R.lookup(name)
	if err != nil {
		return nil, errDecorate(err, "ResultsFromNamedMap")
	}
	ret, err := reg.fromMap(m)
	return ret, errDecorate(err, "ResultsFromNamedMap")
}
