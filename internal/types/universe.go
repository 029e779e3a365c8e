package types

// Builtin describes a predeclared function.
type Builtin struct {
	Name    string
	MinArgs int
	MaxArgs int
	Newline bool // output ends with a line break
}

// Universe holds the predeclared functions. User functions with the same
// name shadow them.
var Universe = map[string]*Builtin{
	"println": {Name: "println", MinArgs: 0, MaxArgs: 1, Newline: true},
	"print":   {Name: "print", MinArgs: 1, MaxArgs: 1},
}

// LookupBuiltin returns the predeclared function called name, or nil.
func LookupBuiltin(name string) *Builtin {
	return Universe[name]
}
