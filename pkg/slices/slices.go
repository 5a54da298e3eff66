package sliceutils

func Map[T any, U any](values []T, mapper func(v T) U) []U {
	mapped := make([]U, len(values))
	for i, value := range values {
		mapped[i] = mapper(value)
	}
	return mapped
}

// MapErr is Map for fallible mappers. It stops at the first error.
func MapErr[T any, U any](values []T, mapper func(v T) (U, error)) ([]U, error) {
	mapped := make([]U, len(values))
	for i, value := range values {
		v, err := mapper(value)
		if err != nil {
			return nil, err
		}
		mapped[i] = v
	}
	return mapped, nil
}
