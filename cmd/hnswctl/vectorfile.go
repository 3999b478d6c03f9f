package main

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/nnidx/hnsw"
)

// Flat vector files are a minimal little-endian format: a u32 count, a u32
// dimension, then count*dimension float32 values, row-major. There's no
// metadata beyond that — callers that need ids just use row index.
func loadFlatVectors(path string) ([]hnsw.Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	count, err := readU32(r)
	if err != nil {
		return nil, err
	}
	dim, err := readU32(r)
	if err != nil {
		return nil, err
	}

	vectors := make([]hnsw.Vector, count)
	for i := range vectors {
		data := make([]float32, dim)
		for j := range data {
			bits, err := readU32(r)
			if err != nil {
				return nil, err
			}
			data[j] = math.Float32frombits(bits)
		}
		vectors[i] = hnsw.Vector{Data: data}
	}
	return vectors, nil
}

func saveFlatVectors(path string, vectors []hnsw.Vector) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	dim := 0
	if len(vectors) > 0 {
		dim = vectors[0].Len()
	}
	if err := writeU32(w, uint32(len(vectors))); err != nil {
		return err
	}
	if err := writeU32(w, uint32(dim)); err != nil {
		return err
	}
	for _, v := range vectors {
		for _, f32 := range v.Data {
			if err := writeU32(w, math.Float32bits(f32)); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}
