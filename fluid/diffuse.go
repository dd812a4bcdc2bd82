package fluid

// Diffuse runs iters Jacobi iterations of implicit viscous diffusion on the
// velocity pair. Each iteration computes, per cell,
//
//	next = (cur + a*(sum of 4 clamped neighbours)) / (1 + 4a),  a = viscosity*dt
//
// from a consistent snapshot and commits next before the following
// iteration reads it. No convergence check is made; the cost is fixed.
func Diffuse(vel *Pair, viscosity, dt float32, iters int) error {
	if err := wantChannels("diffuse", "velocity", vel.Current(), VelocityChannels); err != nil {
		return err
	}
	diffuse(nil, vel, viscosity, dt, iters)
	return nil
}

func diffuse(pool *workerPool, vel *Pair, viscosity, dt float32, iters int) {
	a := viscosity * dt
	denom := 1 + 4*a
	for it := 0; it < iters; it++ {
		diffuseIteration(pool, vel.Next(), vel.Current(), a, denom)
		vel.Commit()
	}
}

func diffuseIteration(pool *workerPool, dst, src *Grid, a, denom float32) {
	res := src.res
	ch := src.channels
	in := src.data
	out := dst.data

	pool.run(res, res, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			up := clampIndex(y-1, res) * res
			down := clampIndex(y+1, res) * res
			row := y * res
			for x := 0; x < res; x++ {
				left := clampIndex(x-1, res)
				right := clampIndex(x+1, res)
				i := (row + x) * ch
				l := (row + left) * ch
				r := (row + right) * ch
				u := (up + x) * ch
				d := (down + x) * ch
				for c := 0; c < ch; c++ {
					sum := in[l+c] + in[r+c] + in[u+c] + in[d+c]
					out[i+c] = (in[i+c] + a*sum) / denom
				}
			}
		}
	})
}
