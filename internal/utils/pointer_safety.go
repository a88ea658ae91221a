package utils

func Ptr[T any](v T) *T {
	return &v
}

// Apply copies *src into dst when src is set. Used for partial updates.
func Apply[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
