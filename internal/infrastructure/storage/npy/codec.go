// Package npy exports featurized batches as NumPy .npy arrays plus a JSON
// manifest carrying the logical tensor shapes.
package npy

import (
	"bytes"
	"io"

	"github.com/sbinet/npyio"

	"github.com/turtacn/rxncenter/pkg/errors"
)

// Encode serialises a flat slice (e.g. []float32, []int32) as a 1-D .npy
// payload.
func Encode(v interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := npyio.Write(buf, v); err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "npy encode failed")
	}
	return buf.Bytes(), nil
}

// Decode reads a .npy payload into ptr, which must point to a slice of the
// stored dtype.
func Decode(r io.Reader, ptr interface{}) error {
	if err := npyio.Read(r, ptr); err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "npy decode failed")
	}
	return nil
}

// Shape returns the header shape of a .npy payload without reading the data.
func Shape(r io.Reader) ([]int, string, error) {
	rd, err := npyio.NewReader(r)
	if err != nil {
		return nil, "", errors.Wrap(err, errors.CodeSerialization, "npy header read failed")
	}
	return rd.Header.Descr.Shape, rd.Header.Descr.Type, nil
}

//Personal.AI order the ending
