package vectorindex

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

var magic = [4]byte{'F', 'L', 'T', '2'}

// ErrCorrupt is returned when an index file cannot be decoded.
var ErrCorrupt = errors.New("corrupt index file")

// Header bounds, so a damaged file cannot trigger a huge allocation.
const (
	headerSize   = 12
	maxVectors   = 1 << 24
	maxDimension = 1 << 16
	// preallocLimit caps the vector slice reserved up front from an unverified count.
	preallocLimit = 1 << 12
)

// WriteTo serialises the index: magic, uint32 dimension, uint32 count, then
// count*dimension little-endian float32 values.
func (x *FlatL2) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	header := make([]byte, 12)
	copy(header, magic[:])
	binary.LittleEndian.PutUint32(header[4:], uint32(x.dimension))
	binary.LittleEndian.PutUint32(header[8:], uint32(len(x.vectors)))
	m, err := bw.Write(header)
	n += int64(m)
	if err != nil {
		return n, err
	}
	buf := make([]byte, 4)
	for _, v := range x.vectors {
		for _, f := range v {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
			m, err := bw.Write(buf)
			n += int64(m)
			if err != nil {
				return n, err
			}
		}
	}
	return n, bw.Flush()
}

// Read decodes an index written by WriteTo.
func Read(r io.Reader) (*FlatL2, error) {
	return decode(r, -1)
}

// decode reads an index. When size is not negative it is the total input
// length and must match the length the header declares.
func decode(r io.Reader, size int64) (*FlatL2, error) {
	br := bufio.NewReader(r)
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	if [4]byte(header[:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	dim := int(binary.LittleEndian.Uint32(header[4:]))
	count := int(binary.LittleEndian.Uint32(header[8:]))
	if dim <= 0 || dim > maxDimension || count > maxVectors {
		return nil, fmt.Errorf("%w: dimension %d count %d", ErrCorrupt, dim, count)
	}
	if want := headerSize + 4*int64(dim)*int64(count); size >= 0 && size != want {
		return nil, fmt.Errorf("%w: size %d, header declares %d", ErrCorrupt, size, want)
	}
	x := &FlatL2{dimension: dim, vectors: make([][]float32, 0, min(count, preallocLimit))}
	buf := make([]byte, 4*dim)
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("%w: vector %d: %v", ErrCorrupt, i, err)
		}
		v := make([]float32, dim)
		for j := range v {
			v[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*j:]))
		}
		x.vectors = append(x.vectors, v)
	}
	if _, err := br.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrCorrupt)
	}
	return x, nil
}

// WriteFile writes the index to path.
func (x *FlatL2) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := x.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads an index from path.
func ReadFile(path string) (*FlatL2, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return decode(f, info.Size())
}
