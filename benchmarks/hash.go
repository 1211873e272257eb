package benchmarks

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"hash"
	mrand "math/rand"

	"github.com/dkoval/gridbench/bench"
)

type hashContext struct {
	data  []byte
	chunk int
	algo  string
}

func init() {
	bench.Register(&bench.Spec{
		Name:    "hash",
		Dataset: "seeded-random-bytes",
		Domain: bench.Domain{
			bench.Choice("size_kb", 64, 1024, 8192),
			bench.Choice("chunk_kb", 4, 64, 1024),
			bench.Choice("algo", "md5", "sha1", "sha256"),
			bench.Default("seed", 1),
		},
		ValidParams: func(p bench.Params) bool {
			size, _ := p.GetInt("size_kb")
			chunk, _ := p.GetInt("chunk_kb")

			return chunk <= size
		},
		Setup: hashSetup,
		Run:   hashRun,
	})
}

func hashSetup(p bench.Params) (any, error) {
	sizeKB, err := intParam(p, "size_kb")
	if err != nil {
		return nil, err
	}

	chunkKB, err := intParam(p, "chunk_kb")
	if err != nil {
		return nil, err
	}

	seed, err := intParam(p, "seed")
	if err != nil {
		return nil, err
	}

	algo, err := stringParam(p, "algo")
	if err != nil {
		return nil, err
	}

	rng := mrand.New(mrand.NewSource(int64(seed)))

	data := make([]byte, sizeKB*1024)
	if _, err := rng.Read(data); err != nil {
		return nil, fmt.Errorf("generate input: %w", err)
	}

	return &hashContext{
		data:  data,
		chunk: chunkKB * 1024,
		algo:  algo,
	}, nil
}

func hashRun(ctx any) error {
	c := ctx.(*hashContext)

	var h hash.Hash

	switch c.algo {
	case "md5":
		h = md5.New()
	case "sha1":
		h = sha1.New()
	case "sha256":
		h = sha256.New()
	default:
		return fmt.Errorf("unknown hash algo %q", c.algo)
	}

	for off := 0; off < len(c.data); off += c.chunk {
		end := off + c.chunk
		if end > len(c.data) {
			end = len(c.data)
		}

		if _, err := h.Write(c.data[off:end]); err != nil {
			return err
		}
	}

	h.Sum(nil)

	return nil
}
