package benchmarks

import (
	"encoding/json"
	"fmt"
	mrand "math/rand"

	"github.com/dkoval/gridbench/bench"
)

type jsonContext struct {
	doc []byte
}

func init() {
	bench.Register(&bench.Spec{
		Name: "jsondecode",
		Domain: bench.Domain{
			bench.Choice("depth", 2, 4, 6),
			bench.Choice("width", 4, 16),
			bench.Default("seed", 7),
		},
		Setup: jsonSetup,
		Run:   jsonRun,
	})
}

func jsonSetup(p bench.Params) (any, error) {
	depth, err := intParam(p, "depth")
	if err != nil {
		return nil, err
	}

	width, err := intParam(p, "width")
	if err != nil {
		return nil, err
	}

	seed, err := intParam(p, "seed")
	if err != nil {
		return nil, err
	}

	rng := mrand.New(mrand.NewSource(int64(seed)))

	doc, err := json.Marshal(nestedDoc(rng, depth, width))
	if err != nil {
		return nil, fmt.Errorf("build document: %w", err)
	}

	return &jsonContext{doc: doc}, nil
}

func jsonRun(ctx any) error {
	c := ctx.(*jsonContext)

	var out map[string]any

	return json.Unmarshal(c.doc, &out)
}

// nestedDoc builds a document with width keys per level and the given
// nesting depth, leaves being numbers and strings.
func nestedDoc(rng *mrand.Rand, depth, width int) map[string]any {
	doc := make(map[string]any, width)

	for i := 0; i < width; i++ {
		key := fmt.Sprintf("k%d", i)

		if depth <= 1 {
			if i%2 == 0 {
				doc[key] = rng.Float64()
			} else {
				doc[key] = fmt.Sprintf("value-%d", rng.Intn(1000))
			}

			continue
		}

		doc[key] = nestedDoc(rng, depth-1, width)
	}

	return doc
}
