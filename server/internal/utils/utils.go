package utils

func PointerTo[T any](v T) *T {
	return &v
}

func FromPointer[T comparable](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
