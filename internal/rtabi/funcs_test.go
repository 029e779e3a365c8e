package rtabi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallOperand(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{FnPrintf, "printf@PLT"},
		{FnFmod, "fmod@PLT"},
		{FnConcat, "kt_concat"},
		{FnPanic, "kt_panic"},
	}
	for _, tt := range tests {
		f, ok := Lookup(tt.name)
		require.True(t, ok, tt.name)
		assert.Equal(t, tt.want, f.Call())
	}

	_, ok := Lookup("puts")
	assert.False(t, ok)
}

func TestHelpers(t *testing.T) {
	var names []string
	for _, f := range Helpers() {
		assert.False(t, f.Libc, f.Name)
		assert.Contains(t, f.Name, SymbolPrefix)
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{FnConcat, FnItoa, FnFtoa, FnBtoa, FnPanic}, names)
}

func TestVariadic(t *testing.T) {
	for name, f := range signatures {
		want := name == FnPrintf || name == FnSnprintf || name == FnDprintf
		assert.Equal(t, want, f.Variadic, name)
	}
}
