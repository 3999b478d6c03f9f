package hnsw

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/google/renameio"
)

// Serialized graphs are prefixed with a 4-byte magic and a u16 version, so
// a portable reader can reject files it doesn't understand before it
// starts trusting node counts (spec §9's redesign guidance; the reference
// C format has neither). Everything after that follows spec §4.I's
// self-describing, little-endian record layout exactly: graph-wide fields
// (entry point, max layer, hyperparameters, vector data) are not
// persisted — the caller restores or recomputes them via Attach.
var (
	serializedMagic   = [4]byte{'H', 'N', 'S', 'W'}
	serializedVersion = uint16(1)
)

const maxReasonableLayer = 1 << 20

// Serialize encodes the graph's topology — node count, per-node top
// layer, and per-layer neighbor lists — to w.
func (g *Graph) Serialize(w io.Writer) error {
	if _, err := w.Write(serializedMagic[:]); err != nil {
		return err
	}
	if err := writeU16(w, serializedVersion); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(g.nodes))); err != nil {
		return err
	}

	for _, node := range g.nodes {
		if err := writeU32(w, uint32(node.TopLayer)); err != nil {
			return err
		}
		for l := int32(0); l <= node.TopLayer; l++ {
			if err := writeU32(w, uint32(len(node.Neighbors[l]))); err != nil {
				return err
			}
		}
		for l := int32(0); l <= node.TopLayer; l++ {
			neighbors := node.Neighbors[l]
			if err := writeU32(w, uint32(len(neighbors))); err != nil {
				return err
			}
			for _, id := range neighbors {
				if err := writeU32(w, uint32(id)); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// DeserializeGraph decodes a graph's topology from r. The returned graph
// has its entry point and max layer recomputed from the restored
// per-node top layers, as spec §4.I specifies; the caller must call
// Attach to supply the VectorStore and hyperparameters before querying.
//
// Deserialization fails with a CorruptStream Error if the buffer is
// truncated, a top layer is unreasonably large, or a layer's redundant
// connection count disagrees with its header count.
func DeserializeGraph(r io.Reader) (*Graph, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, corruptf("reading magic", err)
	}
	if magic != serializedMagic {
		return nil, newError(CorruptStream, "bad magic")
	}

	version, err := readU16(r)
	if err != nil {
		return nil, corruptf("reading version", err)
	}
	if version != serializedVersion {
		return nil, newError(CorruptStream, "unsupported version")
	}

	nodeCount, err := readU32(r)
	if err != nil {
		return nil, corruptf("reading node count", err)
	}

	g := &Graph{nodes: make([]*Node, nodeCount)}

	for i := uint32(0); i < nodeCount; i++ {
		topLayerRaw, err := readU32(r)
		if err != nil {
			return nil, corruptf("reading top layer", err)
		}
		if topLayerRaw > maxReasonableLayer {
			return nil, newError(CorruptStream, "top layer out of range")
		}
		topLayer := int32(topLayerRaw)

		counts := make([]uint32, topLayer+1)
		for l := int32(0); l <= topLayer; l++ {
			c, err := readU32(r)
			if err != nil {
				return nil, corruptf("reading connection count", err)
			}
			counts[l] = c
		}

		node := newNode(int32(i), topLayer)
		for l := int32(0); l <= topLayer; l++ {
			repeated, err := readU32(r)
			if err != nil {
				return nil, corruptf("reading repeated connection count", err)
			}
			if repeated != counts[l] {
				return nil, newError(CorruptStream, "connection count mismatch")
			}

			neighbors := make([]int32, 0, repeated)
			for j := uint32(0); j < repeated; j++ {
				id, err := readU32(r)
				if err != nil {
					return nil, corruptf("reading neighbor id", err)
				}
				neighbors = append(neighbors, int32(id))
			}
			node.Neighbors[l] = neighbors
		}

		g.nodes[i] = node
	}

	g.recomputeEntryPoint()
	return g, nil
}

// Attach supplies the VectorStore and hyperparameters a deserialized
// graph needs before it can be queried; these are not part of the
// serialized format (spec §4.I).
func (g *Graph) Attach(store VectorStore, m, m0 int, ml float64, efConstruction int) {
	g.store = store
	g.M, g.M0, g.ML, g.EfConstruction = m, m0, ml, efConstruction
}

// recomputeEntryPoint restores maxLayer and entryPoint from the per-node
// top layers, since neither is persisted.
func (g *Graph) recomputeEntryPoint() {
	var maxLayer int32 = -1
	var entry int32
	for _, node := range g.nodes {
		if node.TopLayer > maxLayer {
			maxLayer = node.TopLayer
			entry = node.VectorID
		}
	}
	if maxLayer < 0 {
		maxLayer = 0
	}
	g.maxLayer = maxLayer
	g.entryPoint = entry
}

func corruptf(msg string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return wrapError(CorruptStream, msg, err)
	}
	return err
}

func writeU16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// SavedGraph pairs a Graph with the file it's persisted to, saving atomically
// via renameio — the same discipline the teacher's encode.go used for its
// gob-based format, carried over for the new binary one.
type SavedGraph struct {
	*Graph
	Path string
}

// LoadSavedGraph opens path, deserializing its contents if the file is
// non-empty; store and hyperparameters must still be supplied via Attach.
func LoadSavedGraph(path string) (*SavedGraph, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	if info.Size() == 0 {
		return &SavedGraph{Graph: &Graph{}, Path: path}, nil
	}

	g, err := DeserializeGraph(bufio.NewReader(f))
	if err != nil {
		return nil, err
	}
	return &SavedGraph{Graph: g, Path: path}, nil
}

// Save serializes the graph to Path atomically, via a temp file renamed
// into place, so a crash mid-write never corrupts the previous revision.
func (g *SavedGraph) Save() error {
	tmp, err := renameio.TempFile("", g.Path)
	if err != nil {
		return err
	}
	defer tmp.Cleanup()

	wr := bufio.NewWriter(tmp)
	if err := g.Graph.Serialize(wr); err != nil {
		return err
	}
	if err := wr.Flush(); err != nil {
		return err
	}
	return tmp.CloseAtomicallyReplace()
}
