package registry

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStack(name string) Stack {
	return Stack{
		Name:    name,
		Kind:    KindHTTPAPI,
		Dir:     "stacks/" + name,
		Sources: fstest.MapFS{"stack.go": {Data: []byte("package x\n")}},
		Values:  map[string]any{"ExampleHttpApi": struct{}{}},
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(testStack("b")))
	require.NoError(t, r.Register(testStack("a")))

	s, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "stacks/a", s.Dir)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, r.Names())
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(testStack("a")))

	err := r.Register(testStack("a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_Select(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(testStack("a")))
	require.NoError(t, r.Register(testStack("b")))

	all, err := r.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	picked, err := r.Select([]string{"b"})
	require.NoError(t, err)
	require.Len(t, picked, 1)
	assert.Equal(t, "b", picked[0].Name)

	_, err = r.Select([]string{"nope"})
	assert.ErrorContains(t, err, `unknown stack "nope"`)
}

func TestStack_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Stack)
		wantErr string
	}{
		{"valid", func(*Stack) {}, ""},
		{"missing name", func(s *Stack) { s.Name = "" }, "stack name is required"},
		{"bad kind", func(s *Stack) { s.Kind = "queue" }, `unknown kind "queue"`},
		{"no sources", func(s *Stack) { s.Sources = nil }, "no sources"},
		{"no values", func(s *Stack) { s.Values = nil }, "no values"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStack("a")
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
