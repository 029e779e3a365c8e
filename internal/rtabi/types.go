package rtabi

// Target configuration
const (
	// Target is the only supported target: x86-64 System V, GNU as syntax.
	Target = "x86_64-linux-gnu"

	// GNUStackNote marks the stack non-executable.
	GNUStackNote = `.section .note.GNU-stack,"",@progbits`
)

// Frame layout
const (
	WordSize   = 8  // size of every stack slot and pushed temporary
	StackAlign = 16 // %rsp alignment required at call instructions

	// ArgOffset is the %rbp offset of the last pushed argument; earlier
	// arguments follow at higher addresses.
	ArgOffset = 2 * WordSize

	// ForSlots is the number of frame slots a for loop uses: the loop
	// variable, the last element and the step.
	ForSlots = 3

	// TextBufSize is the buffer size kt_itoa and kt_ftoa allocate.
	TextBufSize = 32
)

// printf formats, by value class. println appends a newline.
const (
	FmtInt     = "%ld"
	FmtFloat   = "%g" // six significant digits, like eval.FormatFloat
	FmtString  = "%s"
	FmtNewline = "\n"
)

// Canonical text of the non-numeric values.
const (
	TextTrue  = "true"
	TextFalse = "false"
	TextUnit  = "kotlin.Unit"
)
