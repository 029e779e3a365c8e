package types

// WordSize is the size in bytes of every value and of every stack slot.
const WordSize = 8

// Sizeof returns the size of a value of type b in bytes.
func Sizeof(b Basic) int64 {
	return WordSize
}

// InFloatReg reports whether values of type b travel in SSE registers.
func InFloatReg(b Basic) bool {
	return b == Float
}
