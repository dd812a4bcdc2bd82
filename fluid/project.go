package fluid

// Divergence writes the central-difference divergence of vel into div:
//
//	div = ((vx(x+1,y) - vx(x-1,y)) + (vy(x,y+1) - vy(x,y-1))) / 2
//
// with neighbours clamped at the edges.
func Divergence(div, vel *Grid) error {
	if err := sameShape("divergence", div, vel); err != nil {
		return err
	}
	if err := wantChannels("divergence", "velocity", vel, VelocityChannels); err != nil {
		return err
	}
	if err := wantChannels("divergence", "divergence", div, ScalarChannels); err != nil {
		return err
	}
	divergence(nil, div, vel)
	return nil
}

func divergence(pool *workerPool, div, vel *Grid) {
	res := vel.res
	v := vel.data
	out := div.data

	pool.run(res, res, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			up := clampIndex(y-1, res) * res
			down := clampIndex(y+1, res) * res
			row := y * res
			for x := 0; x < res; x++ {
				left := row + clampIndex(x-1, res)
				right := row + clampIndex(x+1, res)
				dvx := v[right*2] - v[left*2]
				dvy := v[(down+x)*2+1] - v[(up+x)*2+1]
				out[row+x] = (dvx + dvy) * 0.5
			}
		}
	})
}

// JacobiPressure runs one pressure Jacobi iteration and commits it:
//
//	next = (sum of 4 clamped neighbours of p - div) / 4
func JacobiPressure(p *Pair, div *Grid) error {
	if err := checkPressure("pressure", p, div); err != nil {
		return err
	}
	pressureIteration(nil, p.Next(), p.Current(), div)
	p.Commit()
	return nil
}

// SolvePressure zeroes the pressure field and runs iters Jacobi iterations
// of the Poisson equation lap(p) = div. No warm start is carried between
// steps and no convergence check is made.
func SolvePressure(p *Pair, div *Grid, iters int) error {
	if err := checkPressure("pressure", p, div); err != nil {
		return err
	}
	solvePressure(nil, p, div, iters)
	return nil
}

func checkPressure(stage string, p *Pair, div *Grid) error {
	if err := sameLayout(stage, p.Current(), div); err != nil {
		return err
	}
	return wantChannels(stage, "pressure", div, ScalarChannels)
}

func solvePressure(pool *workerPool, p *Pair, div *Grid, iters int) {
	p.Current().Clear()
	for it := 0; it < iters; it++ {
		pressureIteration(pool, p.Next(), p.Current(), div)
		p.Commit()
	}
}

func pressureIteration(pool *workerPool, dst, src, div *Grid) {
	res := src.res
	in := src.data
	b := div.data
	out := dst.data

	pool.run(res, res, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			up := clampIndex(y-1, res) * res
			down := clampIndex(y+1, res) * res
			row := y * res
			for x := 0; x < res; x++ {
				sum := in[row+clampIndex(x-1, res)] + in[row+clampIndex(x+1, res)] +
					in[up+x] + in[down+x]
				out[row+x] = (sum - b[row+x]) * 0.25
			}
		}
	})
}

// SubtractGradient removes the central-difference pressure gradient from
// vel in place: vel -= 0.5*(p(x+1)-p(x-1), p(y+1)-p(y-1)), edge-clamped.
func SubtractGradient(vel, p *Grid) error {
	if err := sameShape("gradient", vel, p); err != nil {
		return err
	}
	if err := wantChannels("gradient", "velocity", vel, VelocityChannels); err != nil {
		return err
	}
	if err := wantChannels("gradient", "pressure", p, ScalarChannels); err != nil {
		return err
	}
	subtractGradient(nil, vel, p)
	return nil
}

func subtractGradient(pool *workerPool, vel, p *Grid) {
	res := vel.res
	pr := p.data
	v := vel.data

	pool.run(res, res, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			up := clampIndex(y-1, res) * res
			down := clampIndex(y+1, res) * res
			row := y * res
			for x := 0; x < res; x++ {
				gx := pr[row+clampIndex(x+1, res)] - pr[row+clampIndex(x-1, res)]
				gy := pr[down+x] - pr[up+x]
				i := (row + x) * 2
				v[i] -= 0.5 * gx
				v[i+1] -= 0.5 * gy
			}
		}
	})
}

// Project makes vel approximately divergence-free: divergence into div,
// pressure solve into p, then gradient subtraction into vel.
func Project(vel *Grid, p *Pair, div *Grid, iters int) error {
	if err := Divergence(div, vel); err != nil {
		return err
	}
	if err := SolvePressure(p, div, iters); err != nil {
		return err
	}
	return SubtractGradient(vel, p.Current())
}
