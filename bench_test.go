package linepipe_test

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/samber/lo"

	"github.com/fogfactory/linepipe"
	"github.com/fogfactory/linepipe/stages"
)

// BenchmarkPipeline measures the throughput of chains of cheap stages, for several queue capacities.
//
// go test -bench Pipeline -cpuprofile pipe.prof, then pprof -http=:8080 pipe.prof
func BenchmarkPipeline(b *testing.B) {
	input := strings.Join(lo.Map(lo.Range(1000), func(i, _ int) string { return fmt.Sprintf("line %d", i) }), "\n")

	for _, depth := range []int{1, 4, 16} {
		for _, capacity := range []int{1, 16, 256} {
			b.Run(fmt.Sprintf("stages_%d_capacity_%d", depth, capacity), func(b *testing.B) {
				registry := stages.NewRegistry(stages.Env{Console: stages.NewConsole(io.Discard)}, nil)
				names := lo.Times(depth, func(i int) string { return lo.Ternary(i%2 == 0, "uppercaser", "flipper") })
				pipeline, err := linepipe.New(registry, capacity, names)
				if err != nil {
					b.Fatal(err)
				}

				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if err := pipeline.Run(strings.NewReader(input)); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
