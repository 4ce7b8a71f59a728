package lattice

// Resources are world-global singleton values keyed by type, with an optional
// name for holding several values of one type side by side.

// SetResource stores the value of type T, replacing any previous one.
func SetResource[T any](w *World, value T) {
	w.resources[typeOf[T]()] = value
}

// GetResource returns the stored value of type T.
func GetResource[T any](w *World) (T, bool) {
	var zero T
	v, ok := w.resources[typeOf[T]()]
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// RemoveResource deletes the stored value of type T and returns it.
func RemoveResource[T any](w *World) (T, bool) {
	var zero T
	typ := typeOf[T]()
	v, ok := w.resources[typ]
	if !ok {
		return zero, false
	}
	delete(w.resources, typ)
	return v.(T), true
}

// SetNamedResource stores a value of type T under name. Values of the same
// type under different names do not collide.
func SetNamedResource[T any](w *World, name string, value T) {
	w.namedResources[namedKey{name: name, typ: typeOf[T]()}] = value
}

// GetNamedResource returns the value of type T stored under name.
func GetNamedResource[T any](w *World, name string) (T, bool) {
	var zero T
	v, ok := w.namedResources[namedKey{name: name, typ: typeOf[T]()}]
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// RemoveNamedResource deletes the value of type T stored under name and
// returns it.
func RemoveNamedResource[T any](w *World, name string) (T, bool) {
	var zero T
	key := namedKey{name: name, typ: typeOf[T]()}
	v, ok := w.namedResources[key]
	if !ok {
		return zero, false
	}
	delete(w.namedResources, key)
	return v.(T), true
}
