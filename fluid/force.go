package fluid

import "math"

// falloffCutoff bounds the Gaussian kernel at this many radii; beyond it the
// weight is below 1.3e-4 and cells are left untouched.
const falloffCutoff = 3

// ApplyForce injects momentum and dye around the interaction point in place.
// Velocity gains dir*strength*w and dye moves towards the sampled colour by
// w, where w = exp(-d^2/r^2). An inactive interaction is the identity; an
// active one with zero direction still injects dye.
func ApplyForce(vel, dye *Grid, in Interaction, radius, strength float32) error {
	if err := sameShape("force", vel, dye); err != nil {
		return err
	}
	if err := wantChannels("force", "velocity", vel, VelocityChannels); err != nil {
		return err
	}
	if err := wantChannels("force", "dye", dye, DyeChannels); err != nil {
		return err
	}
	applyForce(nil, vel, dye, in, radius, strength)
	return nil
}

func applyForce(pool *workerPool, vel, dye *Grid, in Interaction, radius, strength float32) {
	if !in.Active || !(radius > 0) {
		return
	}
	res := vel.res
	reach := float64(radius) * falloffCutoff
	cx, cy := float64(in.Position.X), float64(in.Position.Y)
	if !finite(in.Position.X) || !finite(in.Position.Y) {
		return
	}

	x0 := clampIndex(int(math.Floor(cx-reach)), res)
	x1 := clampIndex(int(math.Ceil(cx+reach)), res)
	y0 := clampIndex(int(math.Floor(cy-reach)), res)
	y1 := clampIndex(int(math.Ceil(cy+reach)), res)
	if cx+reach < 0 || cy+reach < 0 || cx-reach > float64(res-1) || cy-reach > float64(res-1) {
		return
	}

	invR2 := 1 / (float64(radius) * float64(radius))
	reach2 := reach * reach
	fx := in.Direction.X * strength
	fy := in.Direction.Y * strength
	col := in.Color
	v := vel.data
	d := dye.data

	rows := y1 - y0 + 1
	pool.run(rows, x1-x0+1, func(r0, r1 int) {
		for y := y0 + r0; y < y0+r1; y++ {
			dy := float64(y) - cy
			for x := x0; x <= x1; x++ {
				dx := float64(x) - cx
				dist2 := dx*dx + dy*dy
				if dist2 > reach2 {
					continue
				}
				w := float32(math.Exp(-dist2 * invR2))
				i := y*res + x
				v[i*2] += fx * w
				v[i*2+1] += fy * w
				j := i * DyeChannels
				for c := 0; c < DyeChannels; c++ {
					d[j+c] += (col[c] - d[j+c]) * w
				}
			}
		}
	})
}
