package il

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/funvibe/gneedle/internal/platform"
	"github.com/funvibe/gneedle/internal/typesystem"
)

// ModuleKind is the kind of image a module is written as.
type ModuleKind int

const (
	Dll ModuleKind = iota
	Console
	Windows
	NetModule
)

var moduleKindNames = map[ModuleKind]string{
	Dll:       "dll",
	Console:   "console",
	Windows:   "windows",
	NetModule: "netmodule",
}

func (k ModuleKind) String() string {
	if name, ok := moduleKindNames[k]; ok {
		return name
	}
	return "ModuleKind(" + strconv.Itoa(int(k)) + ")"
}

// ParseModuleKind accepts the names printed by String.
func ParseModuleKind(s string) (ModuleKind, error) {
	for kind, name := range moduleKindNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return kind, nil
		}
	}
	return 0, platform.NewOutOfRangeError("module kind", s)
}

// Parameters describe how a module is created.
type Parameters struct {
	Kind         ModuleKind
	Architecture platform.Architecture
}

// DefaultParameters targets the architecture of the running process.
func DefaultParameters(kind ModuleKind) (Parameters, error) {
	if _, ok := moduleKindNames[kind]; !ok {
		return Parameters{}, platform.NewOutOfRangeError("module kind", kind.String())
	}
	arch, err := platform.ProcessArchitecture()
	if err != nil {
		return Parameters{}, err
	}
	return Parameters{Kind: kind, Architecture: arch}, nil
}

// Module holds the type references of one module, indexed by canonical name.
// It is safe for concurrent use.
type Module struct {
	name   string
	mvid   uuid.UUID
	params Parameters

	mu       sync.RWMutex
	types    map[typesystem.Name]typesystem.Reference
	refs     map[string]*TypeReference
	revision uint64
}

// NewModule creates an empty module with default parameters for kind.
func NewModule(name string, kind ModuleKind) (*Module, error) {
	params, err := DefaultParameters(kind)
	if err != nil {
		return nil, err
	}
	return NewModuleWithParameters(name, params)
}

// NewModuleWithParameters creates an empty module with a fresh MVID.
func NewModuleWithParameters(name string, params Parameters) (*Module, error) {
	if _, ok := moduleKindNames[params.Kind]; !ok {
		return nil, platform.NewOutOfRangeError("module kind", params.Kind.String())
	}
	if !params.Architecture.Valid() {
		return nil, platform.NewOutOfRangeError("architecture", params.Architecture.String())
	}
	return &Module{
		name:   name,
		mvid:   uuid.New(),
		params: params,
		types:  make(map[typesystem.Name]typesystem.Reference),
		refs:   make(map[string]*TypeReference),
	}, nil
}

func (m *Module) Name() string { return m.name }

// MVID is the module version identifier.
func (m *Module) MVID() uuid.UUID { return m.mvid }

func (m *Module) Kind() ModuleKind { return m.params.Kind }

func (m *Module) Architecture() platform.Architecture { return m.params.Architecture }

// Revision increases every time a type is added to the module.
func (m *Module) Revision() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.revision
}

// DefineType adds a top-level type declaring the given generic parameters.
func (m *Module) DefineType(namespace, name string, genericParameters ...string) (*TypeReference, error) {
	ref := newTypeReference(namespace, name, nil, genericParameters)
	return m.add(ref)
}

// DefineNestedType adds a type nested in declaring. It inherits the
// parameters of declaring.
func (m *Module) DefineNestedType(declaring *TypeReference, name string, genericParameters ...string) (*TypeReference, error) {
	ref := newTypeReference("", name, declaring, genericParameters)
	return m.add(ref)
}

func (m *Module) add(ref *TypeReference) (*TypeReference, error) {
	if _, err := m.Register(ref); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.refs[ref.FullName()] = ref
	m.mu.Unlock()
	return ref, nil
}

// Register indexes a reference under its canonical name and returns that
// name. Registering an already known name keeps the first reference.
func (m *Module) Register(r typesystem.Reference) (typesystem.Name, error) {
	name, err := typesystem.NameOfReference(r)
	if err != nil {
		return typesystem.Name{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.types[name]; !ok {
		m.types[name] = r
		m.revision++
	}
	return name, nil
}

// ImportReference converts a runtime handle into a reference of this module
// and registers it. A generic definition imported at the top level becomes
// a plain definition reference; used as an argument it is instantiated
// over its own parameters, matching how the runtime renders it.
func (m *Module) ImportReference(h typesystem.Handle) (typesystem.Reference, error) {
	ref, err := m.importHandle(h, false)
	if err != nil {
		return nil, err
	}
	if _, err := m.Register(ref); err != nil {
		return nil, err
	}
	return ref, nil
}

func (m *Module) importHandle(h typesystem.Handle, argument bool) (typesystem.Reference, error) {
	if h == nil {
		return nil, typesystem.NewUnrecognizedTypeShapeError(h)
	}
	if h.IsGenericParameter() {
		return &GenericParameter{name: h.Name()}, nil
	}
	if !h.IsGenericType() {
		return m.importDefinition(h)
	}
	def := h.GenericTypeDefinition()
	if def == nil {
		return nil, typesystem.NewGenericShapeError(h.Name())
	}
	element, err := m.importDefinition(def)
	if err != nil {
		return nil, err
	}
	if h.IsGenericTypeDefinition() {
		if argument {
			return element.Open(), nil
		}
		return element, nil
	}
	args := make([]typesystem.Reference, 0, len(h.GenericArguments()))
	allParameters := true
	for _, a := range h.GenericArguments() {
		arg, err := m.importHandle(a, true)
		if err != nil {
			return nil, err
		}
		if _, ok := arg.(*GenericParameter); !ok {
			allParameters = false
		}
		args = append(args, arg)
	}
	if allParameters && !argument {
		return element, nil
	}
	return element.MakeGenericInstance(args...)
}

// importDefinition returns the module's reference for a plain type or a
// generic definition, creating it and its declaring chain on first use.
func (m *Module) importDefinition(h typesystem.Handle) (*TypeReference, error) {
	var declaring *TypeReference
	if d := h.DeclaringType(); d != nil {
		if def := d.GenericTypeDefinition(); def != nil {
			d = def
		}
		var err error
		if declaring, err = m.importDefinition(d); err != nil {
			return nil, err
		}
	}

	var ref *TypeReference
	if declaring != nil {
		ref = &TypeReference{name: h.Name(), declaring: declaring}
	} else {
		ref = &TypeReference{namespace: h.Namespace(), name: h.Name()}
	}
	if existing, ok := m.lookupRef(ref.FullName()); ok {
		return existing, nil
	}
	for i, p := range h.GenericArguments() {
		if h.IsGenericTypeDefinition() {
			ref.genericParameters = append(ref.genericParameters, &GenericParameter{name: p.Name(), position: i, owner: ref})
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.refs[ref.FullName()]; ok {
		return existing, nil
	}
	m.refs[ref.FullName()] = ref
	return ref, nil
}

func (m *Module) lookupRef(fullName string) (*TypeReference, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ref, ok := m.refs[fullName]
	return ref, ok
}

// GetType finds a type by any runtime or IL rendering of its name.
func (m *Module) GetType(name string) (typesystem.Reference, bool) {
	n, err := typesystem.ParseName(name)
	if err != nil {
		return nil, false
	}
	return m.Lookup(n)
}

// Lookup finds a type by canonical name.
func (m *Module) Lookup(name typesystem.Name) (typesystem.Reference, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.types[name]
	return r, ok
}

// Entry is a registered type and its canonical name.
type Entry struct {
	Name      typesystem.Name
	Reference typesystem.Reference
}

// Types returns the registered types ordered by name.
func (m *Module) Types() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]Entry, 0, len(m.types))
	for name, ref := range m.types {
		entries = append(entries, Entry{Name: name, Reference: ref})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name.String() < entries[j].Name.String() })
	return entries
}
