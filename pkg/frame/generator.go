package frame

import (
	"math/rand"
)

// Impairments describes line damage applied by a Generator. Probabilities
// are per frame.
type Impairments struct {
	// Noise inserts up to MaxNoise random bytes before a frame.
	Noise    float64
	MaxNoise int
	// Corrupt flips one random bit of a frame.
	Corrupt float64
	// Drop removes one random byte of a frame.
	Drop float64
}

// GeneratorStats counts what a Generator produced.
type GeneratorStats struct {
	Frames     uint64
	Intact     uint64
	NoiseBytes uint64
	Corrupted  uint64
	Dropped    uint64
}

// Generator produces a frame stream with random data.
type Generator struct {
	Layout      Layout
	Impairments Impairments
	Stats       GeneratorStats

	rnd *rand.Rand
}

// NewGenerator creates a Generator seeded with seed.
func NewGenerator(layout Layout, seed int64) *Generator {
	return &Generator{Layout: layout, rnd: rand.New(rand.NewSource(seed))}
}

// Next returns the line bytes of the next frame and the data it carries.
// intact is false if the frame was damaged.
func (g *Generator) Next() (line, data []byte, intact bool) {
	data = make([]byte, g.Layout.DataLen)
	g.rnd.Read(data)
	imp := g.Impairments
	if imp.Noise > 0 && imp.MaxNoise > 0 && g.rnd.Float64() < imp.Noise {
		noise := make([]byte, 1+g.rnd.Intn(imp.MaxNoise))
		g.rnd.Read(noise)
		line = append(line, noise...)
		g.Stats.NoiseBytes += uint64(len(noise))
	}
	start := len(line)
	var err error
	if line, err = g.Layout.AppendFrame(line, data); err != nil {
		// data always has DataLen bytes
		panic(err)
	}
	frame := line[start:]
	intact = true
	if imp.Corrupt > 0 && g.rnd.Float64() < imp.Corrupt {
		frame[g.rnd.Intn(len(frame))] ^= 1 << uint(g.rnd.Intn(8))
		g.Stats.Corrupted++
		intact = false
	}
	if imp.Drop > 0 && g.rnd.Float64() < imp.Drop {
		i := start + g.rnd.Intn(len(frame))
		line = append(line[:i], line[i+1:]...)
		g.Stats.Dropped++
		intact = false
	}
	g.Stats.Frames++
	if intact {
		g.Stats.Intact++
	}
	return
}
