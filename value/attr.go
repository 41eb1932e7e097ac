package value

// GetAttrDot implements `a.x` (spec.md §4.1 "Attribute access", dot
// access). accessor is the type of the current frame's instance
// binding (nil outside a method body); it gates private attributes.
func GetAttrDot(obj Object, name string, accessor *Type) (Object, error) {
	t := obj.Type()

	if os := t.Slots.Object; os != nil && os.GetNamespace != nil {
		if ns := os.GetNamespace(obj); ns != nil {
			if v, flags, ok := ns.Lookup(name); ok {
				return checkedRead(v, flags, t, accessor, name)
			}
		}
	}

	if t.Namespace != nil {
		if v, flags, ok := t.Namespace.Lookup(name); ok {
			return checkedRead(v, flags, t, accessor, name)
		}
	}

	for _, anc := range t.MRO {
		if anc.Namespace == nil {
			continue
		}
		if v, flags, ok := anc.Namespace.Lookup(name); ok {
			return checkedRead(v, flags, anc, accessor, name)
		}
	}

	return nil, errAttributef("'%s' object has no attribute '%s'", t.Name, name)
}

func checkedRead(v Object, flags AttrFlags, owner, accessor *Type, name string) (Object, error) {
	if !flags.Has(AttrPublic) {
		if accessor == nil || !IsInstance(accessor, owner) {
			return nil, errAccessViolationf("'%s' is a private attribute of '%s'", name, owner.Name)
		}
	}
	if nw, ok := v.(*NativeWrapper); ok {
		return nw.Get()
	}
	return v, nil
}

// GetAttrScope implements `a::x` (spec.md §4.1 "scope access"): only
// const attributes of the type are visible.
func GetAttrScope(t *Type, name string) (Object, error) {
	if t.Namespace != nil {
		if v, flags, ok := t.Namespace.Lookup(name); ok {
			if !flags.Has(AttrConst) {
				return nil, errAccessViolationf("'%s' is not a const attribute of '%s'", name, t.Name)
			}
			return v, nil
		}
	}
	for _, anc := range t.MRO {
		if anc.Namespace == nil {
			continue
		}
		if v, flags, ok := anc.Namespace.Lookup(name); ok {
			if !flags.Has(AttrConst) {
				return nil, errAccessViolationf("'%s' is not a const attribute of '%s'", name, anc.Name)
			}
			return v, nil
		}
	}
	return nil, errAttributef("'%s' has no static attribute '%s'", t.Name, name)
}

// SetAttrDot implements `a.x = v`: object-slot override first, else
// instance namespace when mutable and public.
func SetAttrDot(obj Object, name string, val Object, accessor *Type) error {
	t := obj.Type()

	if os := t.Slots.Object; os != nil && os.SetAttr != nil {
		return os.SetAttr(obj, name, val, false)
	}

	if os := t.Slots.Object; os != nil && os.GetNamespace != nil {
		if ns := os.GetNamespace(obj); ns != nil {
			if _, flags, ok := ns.Lookup(name); ok {
				if flags.Has(AttrConst) {
					return errAccessViolationf("'%s' is a const attribute of '%s'", name, t.Name)
				}
				if !flags.Has(AttrPublic) && (accessor == nil || !IsInstance(accessor, t)) {
					return errAccessViolationf("'%s' is a private attribute of '%s'", name, t.Name)
				}
				ns.Set(name, val)
				return nil
			}
		}
	}

	return errUnassignablef("'%s' object has no assignable attribute '%s'", t.Name, name)
}

// NativeWrapper mediates access to a host-language field of an
// object, invoked automatically by attribute access (spec.md §GLOSSARY).
type NativeWrapper struct {
	Header
	get func() (Object, error)
	set func(Object) error
}

var TypeNativeWrapper = &Type{Name: "NativeWrapper", QName: "nativewrapper", Flags: FlagStruct}

func NewNativeWrapper(get func() (Object, error), set func(Object) error) *NativeWrapper {
	return &NativeWrapper{Header: NewHeader(TypeNativeWrapper, RefInline), get: get, set: set}
}

func (nw *NativeWrapper) Get() (Object, error) {
	if nw.get == nil {
		return NilValue, nil
	}
	return nw.get()
}

func (nw *NativeWrapper) Set(v Object) error {
	if nw.set == nil {
		return errUnassignablef("attribute is read-only")
	}
	return nw.set(v)
}
