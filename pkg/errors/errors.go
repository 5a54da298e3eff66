package errorutils

// Try panics on error. For use at the very top of main, where there is
// nothing better to do.
func Try(err error) {
	if err != nil {
		panic(err)
	}
}

func Must[T any](v T, err error) T {
	Try(err)
	return v
}
