package benchmarks

import (
	"fmt"
	mrand "math/rand"
	"sort"

	"github.com/dkoval/gridbench/bench"
)

type sortContext struct {
	data    []int
	scratch []int
	algo    string
}

func init() {
	bench.Register(&bench.Spec{
		Name: "sort",
		Domain: bench.Domain{
			bench.Choice("size", 1000, 10000, 100000),
			bench.Choice("algo", "std", "stable"),
			bench.Choice("order", "random", "reversed"),
			bench.Default("seed", 42),
		},
		// Stable sort on already-reversed input degenerates to the
		// same comparisons as std; skip the duplicate rows.
		ValidParams: func(p bench.Params) bool {
			algo, _ := p.GetString("algo")
			order, _ := p.GetString("order")

			return !(algo == "stable" && order == "reversed")
		},
		CaseVersion: func(bench.Params) string { return "v2" },
		Setup:       sortSetup,
		BeforeEach:  sortBeforeEach,
		Run:         sortRun,
		AfterEach:   sortAfterEach,
	})
}

func sortSetup(p bench.Params) (any, error) {
	size, err := intParam(p, "size")
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

	order, err := stringParam(p, "order")
	if err != nil {
		return nil, err
	}

	rng := mrand.New(mrand.NewSource(int64(seed)))

	data := make([]int, size)
	for i := range data {
		data[i] = rng.Int()
	}

	if order == "reversed" {
		sort.Sort(sort.Reverse(sort.IntSlice(data)))
	}

	return &sortContext{
		data:    data,
		scratch: make([]int, size),
		algo:    algo,
	}, nil
}

func sortBeforeEach(ctx any) error {
	c := ctx.(*sortContext)
	copy(c.scratch, c.data)

	return nil
}

func sortRun(ctx any) error {
	c := ctx.(*sortContext)

	switch c.algo {
	case "std":
		sort.Ints(c.scratch)
	case "stable":
		sort.Stable(sort.IntSlice(c.scratch))
	default:
		return fmt.Errorf("unknown sort algo %q", c.algo)
	}

	return nil
}

func sortAfterEach(ctx any) error {
	c := ctx.(*sortContext)

	if !sort.IntsAreSorted(c.scratch) {
		return fmt.Errorf("output not sorted")
	}

	return nil
}
