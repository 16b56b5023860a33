package fu

func Maxi(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func Mini(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Fnzi returns the first non-zero integer of the pair.
func Fnzi(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}
