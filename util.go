package hnsw

import "time"

// timeNowUnixNano is the wall-clock seed source for CreateHNSWIndex's
// default, non-reproducible PRNG (via randSeed).
func timeNowUnixNano() int64 { return time.Now().UnixNano() }
