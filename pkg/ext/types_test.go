package ext_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bsh "github.com/beanshell/beanshell-sub002/pkg/embed"
	"github.com/beanshell/beanshell-sub002/pkg/ext"
)

type vec struct {
	X, Y int32
}

func (v *vec) Len2() int32 { return v.X*v.X + v.Y*v.Y }

var origin = &vec{}

var errClosed = errors.New("closed")

func TestSharedRegistry(t *testing.T) {
	var out strings.Builder
	reg, err := ext.NewRegistry(zerolog.Nop(), &out, &out)
	require.NoError(t, err)

	loads := 0
	reg.RegisterPackage("geo", func(r *ext.Registry) error {
		loads++
		_, err := r.Register(ext.ClassSpec{
			Name:         "geo.Vec",
			Type:         reflect.TypeOf(&vec{}),
			Fields:       map[string]any{"ORIGIN": ext.Var(&origin)},
			Constructors: []any{func(x, y int32) *vec { return &vec{X: x, Y: y} }},
		})
		return err
	})

	for i := 0; i < 2; i++ {
		in, err := bsh.New(bsh.WithRegistry(reg), bsh.WithOutput(&out, &out))
		require.NoError(t, err)
		defer in.Close()

		res, err := in.Eval(`import geo.*; v = new Vec(3, 4); v.len2();`)
		require.NoError(t, err)
		assert.Equal(t, int32(25), res)
	}
	assert.Equal(t, 1, loads, "package loaders run once per registry")

	in, err := bsh.New(bsh.WithRegistry(reg))
	require.NoError(t, err)
	defer in.Close()

	res, err := in.Eval(`geo.Vec.ORIGIN == null;`)
	require.NoError(t, err)
	assert.Equal(t, false, res)

	_, err = in.Eval(`System.out.println("shared");`)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "shared\n")
}

func TestValues(t *testing.T) {
	assert.Same(t, ext.NULL, ext.ToValue(nil))
	assert.Equal(t, int64(3), ext.ToGo(ext.ToValue(3)))

	var te *ext.TargetError
	require.True(t, errors.As(ext.Throw(errClosed), &te))
	assert.Same(t, errClosed, te.Thrown)

	cfg := ext.DefaultConfig()
	assert.False(t, cfg.StrictJava)
	assert.NoError(t, cfg.Validate())
}
