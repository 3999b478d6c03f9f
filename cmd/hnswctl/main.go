package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/nnidx/hnsw"
)

var (
	defaultM              = 16
	defaultM0             = 32
	defaultML             = 1.0 / 3.0
	defaultEfConstruction = 32
)

// newRootCmd builds the hnswctl command tree. Split out from main so tests
// can drive it via Command.Execute without a process boundary.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hnswctl",
		Short: "Build, query, and inspect HNSW vector indexes",
		Long:  "hnswctl — build and query approximate nearest-neighbor graphs over flat vector files.",
	}

	var cfg struct {
		M              int     `toml:"m"`
		M0             int     `toml:"m0"`
		ML             float64 `toml:"ml"`
		EfConstruction int     `toml:"ef-construction"`
	}
	if b, err := os.ReadFile("hnswctl.toml"); err == nil {
		if err := toml.Unmarshal(b, &cfg); err == nil {
			if cfg.M > 0 {
				defaultM = cfg.M
			}
			if cfg.M0 > 0 {
				defaultM0 = cfg.M0
			}
			if cfg.ML > 0 {
				defaultML = cfg.ML
			}
			if cfg.EfConstruction > 0 {
				defaultEfConstruction = cfg.EfConstruction
			}
		}
	}

	var m, m0, efConstruction int
	var ml float64
	root.PersistentFlags().IntVar(&m, "m", defaultM, "max neighbors per node above layer 0")
	root.PersistentFlags().IntVar(&m0, "m0", defaultM0, "max neighbors per node at layer 0")
	root.PersistentFlags().Float64Var(&ml, "ml", defaultML, "layer sampling parameter")
	root.PersistentFlags().IntVar(&efConstruction, "ef-construction", defaultEfConstruction, "beam width used while building")

	// buildGraph loads vectors and runs BuildHNSWGraph with the root's
	// hyperparameters; shared by build and serialize, which differ only in
	// what they print around the same underlying work.
	buildGraph := func(vectorsPath string) (*hnsw.Graph, hnsw.VectorStore, error) {
		vectors, err := loadFlatVectors(vectorsPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load vectors: %w", err)
		}
		store, err := hnsw.NewSliceStore(vectors)
		if err != nil {
			return nil, nil, fmt.Errorf("build vector store: %w", err)
		}
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		graph, err := hnsw.BuildHNSWGraph(store, m, m0, ml, efConstruction, rng)
		if err != nil {
			return nil, nil, fmt.Errorf("build graph: %w", err)
		}
		return graph, store, nil
	}

	// ---- hnswctl build --vectors <file> --out <file> -----------------------
	var vectorsPath, outPath string
	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build an HNSW graph from a flat vector file and save it",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			graph, store, err := buildGraph(vectorsPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "built graph over %d vectors in %s\n", store.Len(), time.Since(start).Round(time.Millisecond))

			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := graph.Serialize(f); err != nil {
				return fmt.Errorf("serialize graph: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved graph to %s\n", outPath)
			return nil
		},
	}
	buildCmd.Flags().StringVar(&vectorsPath, "vectors", "", "path to a flat vector file")
	buildCmd.Flags().StringVar(&outPath, "out", "graph.bin", "path to write the serialized graph")
	buildCmd.MarkFlagRequired("vectors")
	root.AddCommand(buildCmd)

	// ---- hnswctl serialize --vectors <file> --out <file> -------------------
	// A direct CLI entry point for Graph.Serialize: builds the graph the
	// same way build does, but only calls Serialize — no timing output.
	serializeCmd := &cobra.Command{
		Use:   "serialize",
		Short: "Build an HNSW graph and write its serialized form",
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, _, err := buildGraph(vectorsPath)
			if err != nil {
				return err
			}

			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := graph.Serialize(f); err != nil {
				return fmt.Errorf("serialize graph: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
			return nil
		},
	}
	serializeCmd.Flags().StringVar(&vectorsPath, "vectors", "", "path to a flat vector file")
	serializeCmd.Flags().StringVar(&outPath, "out", "graph.bin", "path to write the serialized graph")
	serializeCmd.MarkFlagRequired("vectors")
	root.AddCommand(serializeCmd)

	// ---- hnswctl deserialize --graph <file> ---------------------------------
	// A direct CLI entry point for DeserializeGraph: loads a graph file with
	// no VectorStore attached and reports whether it decoded cleanly, a
	// format sanity check a caller can run before query.
	var graphPath string
	deserializeCmd := &cobra.Command{
		Use:   "deserialize",
		Short: "Load a serialized graph and report its topology",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(graphPath)
			if err != nil {
				return err
			}
			defer f.Close()

			graph, err := hnsw.DeserializeGraph(f)
			if err != nil {
				return fmt.Errorf("deserialize graph: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d nodes, max layer %d, entry point %d\n",
				graph.Len(), graph.MaxLayer(), graph.EntryPoint())
			return nil
		},
	}
	deserializeCmd.Flags().StringVar(&graphPath, "graph", "", "path to a serialized graph")
	deserializeCmd.MarkFlagRequired("graph")
	root.AddCommand(deserializeCmd)

	// ---- hnswctl query --graph <file> --vectors <file> --id <n> --k <n> ----
	var queryID, k, width int
	var approximate bool
	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Run a KNN query against a saved graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			vectors, err := loadFlatVectors(vectorsPath)
			if err != nil {
				return fmt.Errorf("load vectors: %w", err)
			}
			store, err := hnsw.NewSliceStore(vectors)
			if err != nil {
				return fmt.Errorf("build vector store: %w", err)
			}
			if queryID < 0 || queryID >= store.Len() {
				return fmt.Errorf("query id %d out of range [0, %d)", queryID, store.Len())
			}

			f, err := os.Open(graphPath)
			if err != nil {
				return err
			}
			defer f.Close()
			graph, err := hnsw.DeserializeGraph(f)
			if err != nil {
				return fmt.Errorf("deserialize graph: %w", err)
			}
			graph.Attach(store, m, m0, ml, efConstruction)

			idx, err := hnsw.NewIndexFromGraph(store, graph)
			if err != nil {
				return err
			}

			query, err := store.At(queryID)
			if err != nil {
				return err
			}

			var ids []int32
			if approximate {
				ids, err = idx.ApproximateSearch(query.Data, k, width)
			} else {
				ids, err = idx.BeamSearch(query.Data, k, width)
			}
			if err != nil {
				return err
			}

			for i, id := range ids {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d  id=%d\n", i+1, id)
			}
			return nil
		},
	}
	queryCmd.Flags().StringVar(&vectorsPath, "vectors", "", "path to the flat vector file the graph was built from")
	queryCmd.Flags().StringVar(&graphPath, "graph", "", "path to a serialized graph")
	queryCmd.Flags().IntVar(&queryID, "id", 0, "row index of the query vector")
	queryCmd.Flags().IntVar(&k, "k", 10, "number of neighbors to return")
	queryCmd.Flags().IntVar(&width, "width", 0, "search width (0 = default)")
	queryCmd.Flags().BoolVar(&approximate, "approximate", true, "use approximate HNSW search")
	queryCmd.MarkFlagRequired("vectors")
	queryCmd.MarkFlagRequired("graph")
	root.AddCommand(queryCmd)

	// ---- hnswctl bruteforce --vectors <file> --id <n> --k <n> --------------
	var threshold float64
	bruteforceCmd := &cobra.Command{
		Use:   "bruteforce",
		Short: "Run an exact KNN query with no graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			vectors, err := loadFlatVectors(vectorsPath)
			if err != nil {
				return fmt.Errorf("load vectors: %w", err)
			}
			store, err := hnsw.NewSliceStore(vectors)
			if err != nil {
				return fmt.Errorf("build vector store: %w", err)
			}
			if queryID < 0 || queryID >= store.Len() {
				return fmt.Errorf("query id %d out of range [0, %d)", queryID, store.Len())
			}
			query, err := store.At(queryID)
			if err != nil {
				return err
			}

			ids, n, err := hnsw.BruteForceKNNSearch(store, query.Data, k, float32(threshold))
			if err != nil {
				return err
			}
			for i, id := range ids {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d  id=%d\n", i+1, id)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d requested matched\n", n, k)
			return nil
		},
	}
	bruteforceCmd.Flags().StringVar(&vectorsPath, "vectors", "", "path to a flat vector file")
	bruteforceCmd.Flags().IntVar(&queryID, "id", 0, "row index of the query vector")
	bruteforceCmd.Flags().IntVar(&k, "k", 10, "number of neighbors to return")
	bruteforceCmd.Flags().Float64Var(&threshold, "threshold", 0, "minimum cosine similarity (0 keeps every vector with non-negative similarity)")
	bruteforceCmd.MarkFlagRequired("vectors")
	root.AddCommand(bruteforceCmd)

	// ---- hnswctl stats --graph <file> ---------------------------------------
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Report graph topology statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(graphPath)
			if err != nil {
				return err
			}
			defer f.Close()
			graph, err := hnsw.DeserializeGraph(f)
			if err != nil {
				return fmt.Errorf("deserialize graph: %w", err)
			}

			a := &hnsw.Analyzer{Graph: graph}
			fmt.Fprintf(cmd.OutOrStdout(), "nodes:       %d\n", graph.Len())
			fmt.Fprintf(cmd.OutOrStdout(), "height:      %d\n", a.Height())
			fmt.Fprintf(cmd.OutOrStdout(), "topography:  %v\n", a.Topography())
			fmt.Fprintf(cmd.OutOrStdout(), "connectivity:%v\n", a.Connectivity())
			fmt.Fprintf(cmd.OutOrStdout(), "connected:   %v\n", a.WeaklyConnectedAtLayerZero())
			return nil
		},
	}
	statsCmd.Flags().StringVar(&graphPath, "graph", "", "path to a serialized graph")
	statsCmd.MarkFlagRequired("graph")
	root.AddCommand(statsCmd)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
