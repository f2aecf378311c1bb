package npy

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/rxncenter/pkg/errors"
)

func TestEncodeDecode_Float32(t *testing.T) {
	in := []float32{0, 1, 0.5, -2}
	data, err := Encode(in)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x93NUMPY")))

	var out []float32
	require.NoError(t, Decode(bytes.NewReader(data), &out))
	assert.Equal(t, in, out)
}

func TestEncodeDecode_Int32(t *testing.T) {
	in := []int32{-1, 1, -1, 0}
	data, err := Encode(in)
	require.NoError(t, err)

	var out []int32
	require.NoError(t, Decode(bytes.NewReader(data), &out))
	assert.Equal(t, in, out)
}

func TestShape(t *testing.T) {
	data, err := Encode(make([]float32, 12))
	require.NoError(t, err)

	shape, dtype, err := Shape(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []int{12}, shape)
	assert.Equal(t, "<f4", dtype)
}

func TestDecode_Garbage(t *testing.T) {
	var out []float32
	err := Decode(bytes.NewReader([]byte("not a npy file")), &out)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeSerialization))
}

//Personal.AI order the ending
