package eval

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you-not-fish/ktc/internal/syntax"
)

func run(t *testing.T, src string) (string, *Result, error) {
	t.Helper()
	prog, err := syntax.ParseSource([]byte(src))
	require.NoError(t, err, "parse:\n%s", src)

	var out bytes.Buffer
	res, err := Run(prog, &out, Options{MaxDepth: 200})
	return out.String(), res, err
}

func TestRunOutput(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"arithmetic", `fun main(): Unit { var a: Int = 10; var b: Int = 3; println(a + b) }`, "13\n"},
		{"range", `fun main() { for (i in 1..5) { println(i) } }`, "1\n2\n3\n4\n5\n"},
		{"step", `fun main() { for (j in 2..10 step 2) { println(j) } }`, "2\n4\n6\n8\n10\n"},
		{"fib", `
fun fib(n: Int): Int {
    if (n <= 1) { return n } else { return fib(n - 1) + fib(n - 2) }
}
fun main() { println(fib(7)) }`, "13\n"},
		{"run expression", `
fun main() {
    var x: Int = 5
    var r: Int = run { var t: Int = x * 2; t = t * 5; t }
    println(r)
    println(x)
}`, "50\n5\n"},
		{"until", `fun main() { for (i in 0 until 3) { print(i) } }`, "012"},
		{"downTo step", `fun main() { for (i in 10 downTo 1 step 3) { print(i); print(" ") } }`, "10 7 4 1 "},
		{"reversed range is empty", `fun main() { for (i in 5..1) { println(i) }; println("done") }`, "done\n"},
		{"empty until", `fun main() { for (i in 3 until 3) { println(i) } }`, ""},
		{"range bounds evaluated once", `
fun main() {
    var n: Int = 3
    for (i in 1..n) { n = 10; print(i) }
    println()
}`, "123\n"},
		{"range at Int limit", `
fun main() {
    var c: Int = 0
    for (i in 9223372036854775806..9223372036854775807) { c++ }
    println(c)
}`, "2\n"},
		{"while break continue", `
fun main() {
    var i: Int = 0
    while (true) {
        i++
        if (i % 2 == 0) { continue }
        if (i > 7) { break }
        print(i)
    }
    println()
}`, "1357\n"},
		{"do while sees body scope", `
fun main() {
    var i: Int = 0
    do { val next: Int = i + 1; i = next } while (next < 3)
    println(i)
}`, "3\n"},
		{"do while runs once", `fun main() { do { println("once") } while (false) }`, "once\n"},
		{"nested return", `
fun find(limit: Int): Int {
    for (i in 1..limit) {
        while (true) {
            if (i * i > 20) { return i }
            break
        }
    }
    return -1
}
fun main() { println(find(10)); println(find(2)) }`, "5\n-1\n"},
		{"shadowing", `
fun main() {
    val x: Int = 1
    if (true) { val x: String = "inner"; println(x) }
    println(x)
}`, "inner\n1\n"},
		{"redeclare in same scope", `fun main() { var x: Int = 1; var x: String = "s"; println(x) }`, "s\n"},
		{"float formatting", `
fun main() {
    println(1.5)
    println(2.0)
    println(1.0 / 3.0)
    println(1000000.0)
    println(100000.0)
    println(0.0001)
    println(7 / 2.0)
}`, "1.5\n2\n0.333333\n1e+06\n100000\n0.0001\n3.5\n"},
		{"widening", `
fun half(x: Float): Float { return x / 2 }
fun main() {
    var f: Float = 3
    f += 1
    println(f)
    println(half(5))
    println(1 + 0.5)
}`, "4\n2.5\n1.5\n"},
		{"integer division truncates", `fun main() { println(7 / 2); println(-7 / 2); println(-7 % 3) }`, "3\n-3\n-1\n"},
		{"float modulo", `fun main() { println(7.5 % 2) }`, "1.5\n"},
		{"overflow wraps", `fun main() { var x: Int = 9223372036854775807; x++; println(x) }`, "-9223372036854775808\n"},
		{"string concat", `
fun main() {
    val s: String = "n=" + 3 + ", ok=" + true
    println(s)
    println("a" < "b")
    println("abc" == "abc")
}`, "n=3, ok=true\ntrue\ntrue\n"},
		{"boolean ops short circuit", `
fun boom(): Boolean { println("boom"); return true }
fun main() {
    println(false && boom())
    println(true || boom())
    println(!false && true)
}`, "false\ntrue\ntrue\n"},
		{"comparisons", `fun main() { println(1 < 2.5); println(2 == 2.0); println(3 >= 4); println(true != false) }`, "true\ntrue\nfalse\ntrue\n"},
		{"increment forms", `
fun main() {
    var i: Int = 5
    println(i++)
    println(i)
    println(--i)
    var f: Float = 0.5
    f++
    println(f)
}`, "5\n6\n5\n1.5\n"},
		{"compound assignment", `
fun main() {
    var x: Int = 10
    x -= 3; x *= 2; x /= 4; x %= 2
    println(x)
    var s: String = "a"
    s += 1
    println(s)
}`, "1\na1\n"},
		{"nested scopes in recursion", `
fun depth(n: Int): Int {
    if (n == 0) { return 0 }
    var r: Int = 0
    run { if (true) { while (r == 0) { for (i in 1..1) { r = 1 + depth(n - 1) } } } }
    return r
}
fun main() { println(depth(6)); println(depth(9)) }`, "6\n9\n"},
		{"assignment is an expression", `fun main() { var a: Int = 0; var b: Int = 0; a = b = 4; println(a + b) }`, "8\n"},
		{"unit", `
fun nothing() { }
fun main() { println(nothing()); println("x" + nothing()) }`, "kotlin.Unit\nxkotlin.Unit\n"},
		{"println without args", `fun main() { print("a"); println(); print("b") }`, "a\nb"},
		{"run statement scope", `fun main() { var x: Int = 1; run { var x: Int = 2; x = 3 }; println(x) }`, "1\n"},
		{"run value is unit without trailing expression", `fun main() { println(run { val y: Int = 1 }) }`, "kotlin.Unit\n"},
		{"user function shadows builtin", `
fun println(x: Int) { print("custom ") ; print(x) }
fun main() { println(4) }`, "custom 4"},
		{"last declaration wins", `
fun f(): Int { return 1 }
fun f(): Int { return 2 }
fun main() { println(f()) }`, "2\n"},
		{"arguments left to right", `
fun show(x: Int): Int { print(x); return x }
fun add(a: Int, b: Int): Int { return a + b }
fun main() { println(add(show(1), show(2))) }`, "123\n"},
		{"functions see only globals", `
fun get(): Int { return 7 }
fun main() { val v: Int = 3; println(get() + v) }`, "10\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, res, err := run(t, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
			assert.Equal(t, 0, res.ExitStatus)
			assert.Positive(t, res.Steps)
		})
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		kind    Kind
		line    int
		out     string // output written before the error
		message string
	}{
		{"division by zero", `
fun main() {
    var a: Int = 10; var b: Int = 0
    println(a / b)
}`, DivisionByZero, 4, "", "RuntimeError at line 4: DivisionByZero: division by zero"},
		{"modulo by zero", `fun main() { println("x"); println(1 % 0) }`, DivisionByZero, 1, "x\n", ""},
		{"undefined variable", "fun main() {\n    println(y)\n}", UndefinedVariable, 2, "", "RuntimeError at line 2: UndefinedVariable: undefined variable 'y'"},
		{"undefined function", `fun main() { g() }`, UndefinedVariable, 1, "", "RuntimeError at line 1: UndefinedVariable: undefined function 'g'"},
		{"missing main", `fun other() { }`, UndefinedVariable, 1, "", "RuntimeError at line 1: UndefinedVariable: undefined function 'main'"},
		{"main with parameters", `fun main(x: Int) { }`, ArityMismatch, 1, "", ""},
		{"arity", `
fun f(a: Int): Int { return a }
fun main() { f(1, 2) }`, ArityMismatch, 3, "", "RuntimeError at line 3: ArityMismatch: 'f' expects 1 arguments, got 2"},
		{"builtin arity", `fun main() { print() }`, ArityMismatch, 1, "", ""},
		{"val reassignment", "fun main() {\n    val x: Int = 1\n    x = 2\n}", ImmutableAssignment, 3, "", "RuntimeError at line 3: ImmutableAssignment: cannot reassign val 'x'"},
		{"val increment", `fun main() { val x: Int = 1; x++ }`, ImmutableAssignment, 1, "", ""},
		{"loop variable is immutable", `fun main() { for (i in 1..2) { i = 5 } }`, ImmutableAssignment, 1, "", ""},
		{"parameter is immutable", `
fun f(a: Int) { a = 1 }
fun main() { f(0) }`, ImmutableAssignment, 2, "", ""},
		{"declaration type", `fun main() { var x: Int = "s" }`, TypeMismatch, 1, "", ""},
		{"no narrowing", `fun main() { var x: Int = 1.5 }`, TypeMismatch, 1, "", ""},
		{"argument type", `
fun f(a: Int) { }
fun main() { f(true) }`, TypeMismatch, 3, "", ""},
		{"return type", `
fun f(): Int { return "s" }
fun main() { f() }`, TypeMismatch, 2, "", ""},
		{"missing return", `
fun f(x: Int): Int {
    if (x > 0) { return 1 }
}
fun main() { println(f(1)); f(0) }`, TypeMismatch, 4, "1\n", "RuntimeError at line 4: TypeMismatch: missing return in function 'f' returning Int"},
		{"condition type", `fun main() { if (1) { } }`, TypeMismatch, 1, "", ""},
		{"operator type", `fun main() { println(true + 1) }`, TypeMismatch, 1, "", ""},
		{"logical operand", `fun main() { println(true && 1) }`, TypeMismatch, 1, "", ""},
		{"negate string", `fun main() { println(-"s") }`, TypeMismatch, 1, "", ""},
		{"increment string", `fun main() { var s: String = "a"; s++ }`, TypeMismatch, 1, "", ""},
		{"float range bound", `fun main() { for (i in 1..2.5) { } }`, TypeMismatch, 1, "", ""},
		{"zero step", `fun main() { for (i in 1..10 step 0) { } }`, InvalidRange, 1, "", "RuntimeError at line 1: InvalidRange: step must be positive, was 0"},
		{"negative step", `fun main() { for (i in 10 downTo 1 step -1) { } }`, InvalidRange, 1, "", ""},
		{"stack overflow", `
fun down(n: Int): Int { return down(n + 1) }
fun main() { down(0) }`, StackOverflow, 2, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, res, err := run(t, tt.src)
			require.Error(t, err)
			assert.Nil(t, res)

			rerr, ok := err.(*RuntimeError)
			require.True(t, ok, "error %T is not a *RuntimeError", err)
			assert.Equal(t, tt.kind, rerr.Kind, rerr.Error())
			assert.Equal(t, tt.line, rerr.Pos.Line(), rerr.Error())
			assert.Equal(t, tt.out, out)
			if tt.message != "" {
				assert.Equal(t, tt.message, rerr.Error())
			}
		})
	}
}

func TestExitStatus(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{`fun main(): Int { return 3 }`, 3},
		{`fun main(): Int { return 256 + 7 }`, 7},
		{`fun main(): Int { return -1 }`, 255},
		{`fun main() { return }`, 0},
		{`fun main(): Float { return 3.0 }`, 0},
	}
	for _, tt := range tests {
		_, res, err := run(t, tt.src)
		require.NoError(t, err, tt.src)
		assert.Equal(t, tt.want, res.ExitStatus, tt.src)
	}
}

func TestRunDeterministic(t *testing.T) {
	src := `
fun fib(n: Int): Int { if (n <= 1) { return n }; return fib(n - 1) + fib(n - 2) }
fun main() { for (i in 0..15) { print(fib(i)); print(" ") } }`

	first, res1, err := run(t, src)
	require.NoError(t, err)
	second, res2, err := run(t, src)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, res1.Steps, res2.Steps)
}

func TestScopesReleased(t *testing.T) {
	prog, err := syntax.ParseSource([]byte(`
fun f(n: Int): Int { if (n == 0) { return 0 }; return f(n - 1) }
fun main() { for (i in 1..3) { run { f(5) } } }`))
	require.NoError(t, err)

	in := newInterp(prog, new(bytes.Buffer), Options{})
	_, err = in.runMain()
	require.NoError(t, err)
	assert.Equal(t, 1, in.scopes.Live(), "only the global scope stays live")
	assert.Equal(t, in.global, in.scope)
	assert.Equal(t, 0, in.depth)
	// global + main + for + run + 6 activations of f, each with an if block
	assert.LessOrEqual(t, in.scopes.Peak(), 16)
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{IntValue(-42), "-42"},
		{FloatValue(0.1), "0.1"},
		{FloatValue(123456789), "1.23457e+08"},
		{FloatValue(1e-5), "1e-05"},
		{FloatValue(-0.5), "-0.5"},
		{FloatValue(math.Inf(1)), "+Inf"},
		{StringValue("hi"), "hi"},
		{BoolValue(true), "true"},
		{BoolValue(false), "false"},
		{Unit, "kotlin.Unit"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.v.String())
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "DivisionByZero", DivisionByZero.String())
	assert.Equal(t, "StackOverflow", StackOverflow.String())
	assert.Equal(t, "Kind(0)", Kind(0).String())
}
