// Package scene drives the fluid without a human: scripted stirrers that
// wander the grid and take turns acting as the pointer.
package scene

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"github.com/pthm-cable/stirfluid/fluid"
)

// Stirrers is an ECS world of wandering agents. Exactly one agent holds the
// pointer at a time; each holds it for dwell ticks, pressing for the first
// three quarters and lifting for the rest so the fluid can coast.
type Stirrers struct {
	world    *ecs.World
	mapper   *ecs.Map3[Position, Heading, Wander]
	filter   *ecs.Filter3[Position, Heading, Wander]
	posMap   *ecs.Map1[Position]
	headMap  *ecs.Map1[Heading]
	entities []ecs.Entity

	res   float32
	speed float32
	dwell int
	tick  int
	rng   *rand.Rand
}

// NewStirrers spawns n agents at random positions in a res x res grid.
func NewStirrers(n, res int, speed float32, dwell int, seed int64) *Stirrers {
	if dwell < 1 {
		dwell = 1
	}
	world := ecs.NewWorld()
	s := &Stirrers{
		world:   world,
		mapper:  ecs.NewMap3[Position, Heading, Wander](world),
		filter:  ecs.NewFilter3[Position, Heading, Wander](world),
		posMap:  ecs.NewMap1[Position](world),
		headMap: ecs.NewMap1[Heading](world),
		res:     float32(res),
		speed:   speed,
		dwell:   dwell,
		rng:     rand.New(rand.NewSource(seed)),
	}

	// Keep spawns away from the walls so the first strokes land inside.
	margin := s.res * 0.2
	for i := 0; i < n; i++ {
		pos := Position{
			X: margin + s.rng.Float32()*(s.res-2*margin),
			Y: margin + s.rng.Float32()*(s.res-2*margin),
		}
		head := Heading{Angle: s.rng.Float32() * 2 * math.Pi}
		wander := Wander{Phase: s.rng.Float32() * 2 * math.Pi}
		s.entities = append(s.entities, s.mapper.NewEntity(&pos, &head, &wander))
	}
	return s
}

// Len returns the number of stirrers.
func (s *Stirrers) Len() int { return len(s.entities) }

// Tick returns how many times Pointer has been called.
func (s *Stirrers) Tick() int { return s.tick }

// Pointer advances every stirrer one tick and reports the active one.
// It implements fluid.PointerSource.
func (s *Stirrers) Pointer() fluid.Pointer {
	s.move()
	t := s.tick
	s.tick++

	if len(s.entities) == 0 {
		return fluid.Pointer{}
	}
	if t%s.dwell >= s.dwell*3/4 && s.dwell >= 4 {
		return fluid.Pointer{}
	}

	e := s.entities[(t/s.dwell)%len(s.entities)]
	pos := s.posMap.Get(e)
	head := s.headMap.Get(e)
	return fluid.Pointer{
		Active:    true,
		Position:  fluid.Vec2{X: pos.X, Y: pos.Y},
		Direction: direction(head.Angle),
	}
}

// Positions returns every stirrer's position, for drawing.
func (s *Stirrers) Positions() []fluid.Vec2 {
	out := make([]fluid.Vec2, 0, len(s.entities))
	for _, e := range s.entities {
		p := s.posMap.Get(e)
		out = append(out, fluid.Vec2{X: p.X, Y: p.Y})
	}
	return out
}

func (s *Stirrers) move() {
	clock := float32(s.tick) * 0.05
	maxX := s.res - 1

	query := s.filter.Query()
	for query.Next() {
		pos, head, wander := query.Get()

		// Smooth meander plus a little noise.
		wander.Turn = 0.08*float32(math.Sin(float64(clock+wander.Phase))) + (s.rng.Float32()-0.5)*0.02
		head.Angle += wander.Turn

		d := direction(head.Angle)
		pos.X += d.X * s.speed
		pos.Y += d.Y * s.speed

		// Reflect off the walls.
		if pos.X < 0 || pos.X > maxX {
			pos.X = clamp(pos.X, 0, maxX)
			head.Angle = math.Pi - head.Angle
		}
		if pos.Y < 0 || pos.Y > maxX {
			pos.Y = clamp(pos.Y, 0, maxX)
			head.Angle = -head.Angle
		}
	}
}

func direction(angle float32) fluid.Vec2 {
	sin, cos := math.Sincos(float64(angle))
	return fluid.Vec2{X: float32(cos), Y: float32(sin)}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
