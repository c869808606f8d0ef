//go:build bench
// +build bench

package m64

import "testing"

func benchmarkMovie(frames int) []byte {
	inputs := make([]uint32, frames)
	for i := range inputs {
		inputs[i] = uint32(i) * 2654435761
	}
	return rawMovie(inputs...)
}

func BenchmarkCodec_Decode(b *testing.B) {
	benchmarks := []struct {
		name   string
		frames int
	}{
		{"empty", 0},
		{"1k frames", 1000},
		{"300k frames", 300000},
	}

	for _, bm := range benchmarks {
		data := benchmarkMovie(bm.frames)
		b.Run(bm.name, func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Decode(data); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCodec_Encode(b *testing.B) {
	movie, err := Decode(benchmarkMovie(300000))
	if err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(movie.Size()))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(movie); err != nil {
			b.Fatal(err)
		}
	}
}
