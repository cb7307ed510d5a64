package optimize

// PreAllocateSlice allocates a slice with a known capacity so append loops
// over result sets of a known size do not reallocate.
func PreAllocateSlice[T any](length, capacity int) []T {
	if capacity < length {
		capacity = length
	}
	return make([]T, length, capacity)
}

// GrowSlice extends a slice to newLen, doubling capacity when it must
// reallocate.
func GrowSlice[T any](s []T, newLen int) []T {
	if newLen <= cap(s) {
		return s[:newLen]
	}

	newCap := cap(s) * 2
	if newCap < newLen {
		newCap = newLen
	}

	newSlice := make([]T, newLen, newCap)
	copy(newSlice, s)
	return newSlice
}
