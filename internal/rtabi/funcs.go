// Package rtabi defines the ABI constants shared between the code generator
// and the routines it links against: libc entry points, the helper routines
// emitted into every assembly file that needs them, and their signatures.
package rtabi

// C library functions, called through the PLT.
const (
	FnPrintf   = "printf"
	FnSnprintf = "snprintf"
	FnMalloc   = "malloc"
	FnStrlen   = "strlen"
	FnStrcpy   = "strcpy"
	FnStrcmp   = "strcmp"
	FnFmod     = "fmod" // needs -lm
	FnFflush   = "fflush"
	FnDprintf  = "dprintf"
	FnExit     = "exit"
)

// Helper routines emitted next to the generated code.
const (
	// Concatenation of two NUL-terminated strings into a fresh buffer.
	FnConcat = "kt_concat"

	// Canonical text of Int, Float and Boolean values.
	FnItoa = "kt_itoa"
	FnFtoa = "kt_ftoa"
	FnBtoa = "kt_btoa"

	// Error handling: flush stdout, format the message to stderr, exit 1.
	FnPanic = "kt_panic"
)

// Program symbols.
const (
	// SymbolPrefix is prepended to every Kotlin function name.
	SymbolPrefix = "kt_"

	// EntrySymbol is the C entry point that calls the Kotlin main function.
	EntrySymbol = "main"

	// DepthCounter is the global holding the current call depth.
	DepthCounter = "kt_depth"
)

// FuncSignature describes a helper or libc function for code generation.
type FuncSignature struct {
	Name     string
	Variadic bool // %al must hold the number of vector registers used
	Libc     bool // called through the PLT
}

// Call returns the operand of a call instruction targeting f.
func (f FuncSignature) Call() string {
	if f.Libc {
		return f.Name + "@PLT"
	}
	return f.Name
}

var signatures = map[string]FuncSignature{
	FnPrintf:   {Name: FnPrintf, Variadic: true, Libc: true},
	FnSnprintf: {Name: FnSnprintf, Variadic: true, Libc: true},
	FnMalloc:   {Name: FnMalloc, Libc: true},
	FnStrlen:   {Name: FnStrlen, Libc: true},
	FnStrcpy:   {Name: FnStrcpy, Libc: true},
	FnStrcmp:   {Name: FnStrcmp, Libc: true},
	FnFmod:     {Name: FnFmod, Libc: true},
	FnFflush:   {Name: FnFflush, Libc: true},
	FnDprintf:  {Name: FnDprintf, Variadic: true, Libc: true},
	FnExit:     {Name: FnExit, Libc: true},

	FnConcat: {Name: FnConcat},
	FnItoa:   {Name: FnItoa},
	FnFtoa:   {Name: FnFtoa},
	FnBtoa:   {Name: FnBtoa},
	FnPanic:  {Name: FnPanic},
}

// Lookup returns the signature of the named function.
func Lookup(name string) (FuncSignature, bool) {
	f, ok := signatures[name]
	return f, ok
}

// Helpers returns the helper routines in emission order.
func Helpers() []FuncSignature {
	return []FuncSignature{
		signatures[FnConcat],
		signatures[FnItoa],
		signatures[FnFtoa],
		signatures[FnBtoa],
		signatures[FnPanic],
	}
}
