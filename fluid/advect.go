package fluid

// Advect performs one semi-Lagrangian transport of src through vel into dst.
// For every cell the source position (x,y) - dt*vel(x,y) is traced
// backwards and src is bilinearly sampled there. dst is fully overwritten.
//
// The backward trace is stable for any dt; the price is numerical
// diffusion from the repeated interpolation.
func Advect(dst, src, vel *Grid, dt float32) error {
	if err := sameLayout("advect", dst, src); err != nil {
		return err
	}
	if err := sameShape("advect", dst, vel); err != nil {
		return err
	}
	if err := wantChannels("advect", "velocity", vel, VelocityChannels); err != nil {
		return err
	}
	if dst == src {
		return errAliased("advect")
	}
	advect(nil, dst, src, vel, dt)
	return nil
}

func advect(pool *workerPool, dst, src, vel *Grid, dt float32) {
	res := dst.res
	ch := dst.channels
	v := vel.data
	out := dst.data

	pool.run(res, res, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := y * res
			for x := 0; x < res; x++ {
				i := row + x
				px := float32(x) - dt*v[i*2]
				py := float32(y) - dt*v[i*2+1]
				Sample(src, px, py, out[i*ch:i*ch+ch])
			}
		}
	})
}
