package codegen

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you-not-fish/ktc/internal/syntax"
)

func generate(t *testing.T, src string, cfg Config) string {
	t.Helper()
	prog, err := syntax.ParseSource([]byte(src))
	require.NoError(t, err, "parse:\n%s", src)
	asm, err := Generate(prog, cfg)
	require.NoError(t, err)
	return asm
}

func TestGenerateLayout(t *testing.T) {
	asm := generate(t, `fun main(): Unit { var a: Int = 10; var b: Int = 3; println(a + b) }`, DefaultConfig())

	for _, want := range []string{
		"\t.section .rodata\n",
		"\t.string \"%ld\\n\"\n",
		"\t.bss\n",
		"kt_depth:\n",
		"\t.text\n",
		"\t.globl main\n",
		"main:\n",
		"\tcall kt_main\n",
		"kt_main:\n",
		"\tsubq $16, %rsp\n",
		"\tmovq $10, %rax\n",
		"\tmovq %rax, -8(%rbp)\n",
		"\taddq %rcx, %rax\n",
		"\tcall printf@PLT\n",
		"\tleave\n",
	} {
		assert.Contains(t, asm, want)
	}
	assert.True(t, strings.HasSuffix(asm, "\t.section .note.GNU-stack,\"\",@progbits\n"))
	assert.Less(t, strings.Index(asm, ".rodata"), strings.Index(asm, ".text"))

	// No helper is needed.
	for _, helper := range []string{"kt_concat:", "kt_itoa:", "kt_ftoa:", "kt_btoa:", "kt_panic:"} {
		assert.NotContains(t, asm, helper)
	}
}

func TestGenerateHelpersOnDemand(t *testing.T) {
	tests := []struct {
		src     string
		helpers []string
	}{
		{`fun main() { println("n=" + 1) }`, []string{"kt_concat", "kt_itoa"}},
		{`fun main() { println("x" + 1.5) }`, []string{"kt_concat", "kt_ftoa"}},
		{`fun main() { println(true) }`, []string{"kt_btoa"}},
		{`fun main() { println(1 / 0) }`, []string{"kt_panic"}},
		{`fun main() { println(1) }`, nil},
	}
	all := []string{"kt_concat", "kt_itoa", "kt_ftoa", "kt_btoa", "kt_panic"}

	for _, tt := range tests {
		asm := generate(t, tt.src, DefaultConfig())
		for _, h := range all {
			used := false
			for _, want := range tt.helpers {
				used = used || h == want
			}
			if used {
				assert.Contains(t, asm, h+":\n", tt.src)
			} else {
				assert.NotContains(t, asm, h+":\n", tt.src)
			}
		}
	}
}

func TestFrameSlots(t *testing.T) {
	tests := []struct {
		src   string
		slots int
		frame string
	}{
		{`fun main() { println(1) }`, 0, ""},
		{`fun main() { val x: Int = 1 }`, 1, "subq $16, %rsp"},
		{`fun main() { var x: Int = 1; var y: Int = 2; var z: Int = 3 }`, 3, "subq $32, %rsp"},
		{`fun main() { for (i in 1..3) { val sq: Int = i * i } }`, 4, "subq $32, %rsp"},
		{`fun main() { val r: Int = run { val t: Int = 2; t } }`, 2, "subq $16, %rsp"},
	}
	for _, tt := range tests {
		prog, err := syntax.ParseSource([]byte(tt.src))
		require.NoError(t, err)
		assert.Equal(t, tt.slots, frameSlots(prog.Funcs[0]), tt.src)

		asm := generate(t, tt.src, DefaultConfig())
		if tt.frame == "" {
			assert.NotContains(t, asm, "subq $", tt.src)
		} else {
			assert.Contains(t, asm, tt.frame, tt.src)
		}
	}
}

func TestGenerateTraps(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"undefined variable", "fun main() {\n    println(y)\n}", `RuntimeError at line 2: UndefinedVariable: undefined variable 'y'\n`},
		{"undefined function", `fun main() { g() }`, `RuntimeError at line 1: UndefinedVariable: undefined function 'g'\n`},
		{"division by zero", `fun main() { val z: Int = 0; println(1 % z) }`, `RuntimeError at line 1: DivisionByZero: division by zero\n`},
		{"val reassignment", `fun main() { val x: Int = 1; x = 2 }`, `RuntimeError at line 1: ImmutableAssignment: cannot reassign val 'x'\n`},
		{"arity", "fun f(a: Int) { }\nfun main() { f() }", `RuntimeError at line 2: ArityMismatch: 'f' expects 1 arguments, got 0\n`},
		{"declaration type", `fun main() { var s: String = 1 }`, `RuntimeError at line 1: TypeMismatch: cannot initialize 's' of type String with Int\n`},
		{"operator percent escaped", `fun main() { println(true % 1) }`, `RuntimeError at line 1: TypeMismatch: operator %% cannot be applied to Boolean and Int\n`},
		{"missing return", "fun f(): Int {\n}\nfun main() { f() }", `RuntimeError at line 2: TypeMismatch: missing return in function 'f' returning Int\n`},
		{"invalid step", `fun main() { for (i in 1..3 step 0) { } }`, `RuntimeError at line 1: InvalidRange: step must be positive, was %ld\n`},
		{"stack overflow", "fun f(): Int { return f() }\nfun main() { f() }", `RuntimeError at line 1: StackOverflow: call depth exceeds 10000 in 'f'\n`},
		{"missing main", `fun other() { }`, `RuntimeError at line 1: UndefinedVariable: undefined function 'main'\n`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asm := generate(t, tt.src, DefaultConfig())
			assert.Contains(t, asm, "\t.string \""+tt.msg+"\"\n")
			assert.Contains(t, asm, "\tcall kt_panic\n")
			assert.Contains(t, asm, "kt_panic:\n")
		})
	}
}

func TestMissingMainEntry(t *testing.T) {
	asm := generate(t, `fun helper(): Int { return 1 }`, DefaultConfig())
	assert.NotContains(t, asm, "call kt_main")
	assert.Contains(t, asm, "kt_helper:\n")
}

func TestExitStatusEntry(t *testing.T) {
	asm := generate(t, `fun main(): Int { return 3 }`, DefaultConfig())
	assert.Contains(t, asm, "\tcall kt_main\n\tmovzbl %al, %eax\n")

	asm = generate(t, `fun main() { }`, DefaultConfig())
	assert.Contains(t, asm, "\tcall kt_main\n\txorl %eax, %eax\n")
}

func TestGenerateConstants(t *testing.T) {
	asm := generate(t, `
fun main() {
    println(1.5)
    println(1.5)
    println(9223372036854775807)
    println("tab\there \"q\"")
}`, DefaultConfig())

	assert.Equal(t, 1, strings.Count(asm, "\t.quad 0x3ff8000000000000\n"), "float constants are pooled")
	assert.Contains(t, asm, "\tmovabsq $9223372036854775807, %rax\n")
	assert.Contains(t, asm, `.string "tab\there \"q\""`)
}

func TestLastDeclarationWins(t *testing.T) {
	asm := generate(t, `
fun f(): Int { return 111 }
fun f(): Int { return 222 }
fun main() { println(f()) }`, DefaultConfig())

	assert.Equal(t, 1, strings.Count(asm, "kt_f:\n"))
	assert.Contains(t, asm, "$222")
	assert.NotContains(t, asm, "$111")
}

var labelDef = regexp.MustCompile(`(?m)^(\.L[a-z]+_\d+):$`)

func TestLabelsUnique(t *testing.T) {
	asm := generate(t, `
fun classify(n: Int): String {
    if (n < 0) { return "neg" } else if (n == 0) { return "zero" }
    return "pos"
}
fun main() {
    var i: Int = 0
    while (i < 3) { i++; if (i == 2) { continue } }
    do { i-- } while (i > 0 && true || false)
    for (k in 10 downTo 0 step 2) { println(classify(k - 5)) }
    for (k in 0 until 3) { if (k == 1) { break } }
}`, DefaultConfig())

	seen := make(map[string]bool)
	for _, m := range labelDef.FindAllStringSubmatch(asm, -1) {
		assert.False(t, seen[m[1]], "label %s defined twice", m[1])
		seen[m[1]] = true
	}
	assert.NotEmpty(t, seen)

	// Every referenced local label is defined.
	refs := regexp.MustCompile(`\b(?:j[a-z]+|call) (\.L[a-z]+_\d+)`).FindAllStringSubmatch(asm, -1)
	for _, m := range refs {
		assert.True(t, seen[m[1]], "label %s is not defined", m[1])
	}
}

func TestGenerateConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SymbolPrefix = "ktfn_"
	cfg.EntrySymbol = "start"
	cfg.GNUStack = false
	cfg.Comments = true
	cfg.MaxDepth = 50

	asm := generate(t, "fun f() { }\nfun main() {\n    f()\n}", cfg)
	assert.Contains(t, asm, "ktfn_main:\n")
	assert.Contains(t, asm, "\tcall ktfn_f\n")
	assert.Contains(t, asm, "\t.globl start\n")
	assert.Contains(t, asm, "\t# line 3\n")
	assert.True(t, strings.HasPrefix(asm, "\t# target x86_64-linux-gnu\n"))
	assert.Contains(t, asm, "\tcmpq $50, kt_depth(%rip)\n")
	assert.NotContains(t, asm, "GNU-stack")
}

func TestGenerateDeterministic(t *testing.T) {
	src := `
fun fib(n: Int): Int { if (n <= 1) { return n }; return fib(n - 1) + fib(n - 2) }
fun main() { for (i in 0..10) { println("fib=" + fib(i) + " half=" + i / 2.0) } }`
	first := generate(t, src, DefaultConfig())
	second := generate(t, src, DefaultConfig())
	assert.Equal(t, first, second)
}

func TestStackBalanced(t *testing.T) {
	// genFunc panics when pushes and pops do not pair up.
	src := `
fun mix(a: Int, b: Float, c: String, d: Boolean): String { return c + a + b + d }
fun main() {
    var f: Float = 1
    f += 2 * 3
    val s: String = mix(1, 2, "x" + run { val q: Int = 4; q }, 1 < 2.5 && "a" != "b")
    println(s + (f % 2) + (7 % 3) + -f)
    println(mix(1 / 1, f, s, !true))
}`
	assert.NotPanics(t, func() { generate(t, src, DefaultConfig()) })
}

func TestGasEscapeString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a\nb", `a\nb`},
		{"q\"uote", `q\"uote`},
		{`back\slash`, `back\\slash`},
		{"\x01\x7f", `\001\177`},
		{"é", `\303\251`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, gasEscapeString(tt.in), "%q", tt.in)
	}
}
