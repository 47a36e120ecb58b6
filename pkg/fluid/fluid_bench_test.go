package fluid

import "testing"

func newBenchSim(b *testing.B) *Simulation {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 300, 251
	cfg.Obstacle = Obstacle{Row: 125, Col: 100, Radius: 20}
	cfg.Sources = []DensitySource{{Row: 249, Cols: ColRange{From: 100, To: 200}, Value: 1}}
	sim, err := New(cfg)
	if err != nil {
		b.Fatal(err)
	}
	return sim
}

func BenchmarkStep(b *testing.B) {
	sim := newBenchSim(b)
	dt := 1.0 / 120.0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := sim.Step(dt); err != nil {
			b.Fatal(err)
		}
	}
}

// Obstacle dragged every tick: re-rasterisation is O(rows*cols).
func BenchmarkStepMovingObstacle(b *testing.B) {
	sim := newBenchSim(b)
	dt := 1.0 / 120.0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := sim.MoveObstacle(125, float64(60+i%150), 20); err != nil {
			b.Fatal(err)
		}
		if err := sim.Step(dt); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkStepSerial(b *testing.B) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 300, 251
	cfg.Parallel = false
	cfg.Sources = nil
	sim, err := New(cfg)
	if err != nil {
		b.Fatal(err)
	}
	dt := 1.0 / 120.0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := sim.Step(dt); err != nil {
			b.Fatal(err)
		}
	}
}
