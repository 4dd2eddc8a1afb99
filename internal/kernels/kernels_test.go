package kernels

import (
	"errors"
	"math"
	"testing"

	"fluidsim/internal/core"
	"fluidsim/internal/device"
)

var serial device.Processor = device.Serial{}

func newField(t *testing.T, w, h, c int) *core.Field {
	t.Helper()
	f, err := core.Allocate(core.Size{W: w, H: h}, c)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	return f
}

func newPair(t *testing.T, w, h, c int) *core.FieldPair {
	t.Helper()
	p, err := core.NewFieldPair(core.Size{W: w, H: h}, c)
	if err != nil {
		t.Fatalf("NewFieldPair: %v", err)
	}
	return p
}

func pattern(f *core.Field) {
	for i := range f.Data {
		f.Data[i] = float32(math.Sin(float64(i)*0.37) * 3)
	}
}

func approx(a, b, tol float32) bool {
	return math.Abs(float64(a-b)) <= float64(tol)
}

func TestAdvectZeroVelocityIsIdentity(t *testing.T) {
	q := newField(t, 16, 12, 3)
	pattern(q)
	vel := newField(t, 16, 12, 2)
	dst := newField(t, 16, 12, 3)

	if err := Advect(serial, dst, q, vel, 1.0/60, 0); err != nil {
		t.Fatalf("Advect: %v", err)
	}
	for i := range q.Data {
		if dst.Data[i] != q.Data[i] {
			t.Fatalf("sample %d changed: %v -> %v", i, q.Data[i], dst.Data[i])
		}
	}
}

func TestAdvectZeroVelocityAcrossResolutions(t *testing.T) {
	q := newField(t, 32, 24, 3)
	pattern(q)
	vel := newField(t, 8, 6, 2)
	dst := newField(t, 32, 24, 3)

	if err := Advect(serial, dst, q, vel, 0.5, 0); err != nil {
		t.Fatalf("Advect: %v", err)
	}
	for i := range q.Data {
		if dst.Data[i] != q.Data[i] {
			t.Fatalf("sample %d changed: %v -> %v", i, q.Data[i], dst.Data[i])
		}
	}
}

func TestAdvectDissipationDecay(t *testing.T) {
	q := newField(t, 8, 8, 1)
	q.Fill(3)
	vel := newField(t, 8, 8, 2)
	dst := newField(t, 8, 8, 1)

	const d, dt = 0.5, 0.1
	if err := Advect(serial, dst, q, vel, dt, d); err != nil {
		t.Fatalf("Advect: %v", err)
	}
	want := float32(3 * (1 - d*dt))
	for i, v := range dst.Data {
		if !approx(v, want, 1e-6) {
			t.Fatalf("cell %d = %v, want %v", i, v, want)
		}
	}

	if err := Advect(serial, dst, q, vel, 1, 4); err != nil {
		t.Fatalf("Advect: %v", err)
	}
	for i, v := range dst.Data {
		if v != 0 {
			t.Fatalf("over-dissipated cell %d = %v, want 0", i, v)
		}
	}
}

func TestAdvectUniformFlowShiftsQuantity(t *testing.T) {
	// Velocity lives on a grid half as fine as the quantity, so one sim cell
	// per second moves the quantity two of its own cells per second.
	q := newField(t, 16, 16, 1)
	for y := 0; y < q.H; y++ {
		for x := 0; x < q.W; x++ {
			q.Set(x, y, 0, float32(x))
		}
	}
	vel := newField(t, 8, 8, 2)
	vel.Fill(1, 0)
	dst := newField(t, 16, 16, 1)

	if err := Advect(serial, dst, q, vel, 1, 0); err != nil {
		t.Fatalf("Advect: %v", err)
	}
	for x := 2; x < q.W; x++ {
		if got := dst.At(x, 5, 0); !approx(got, float32(x-2), 1e-5) {
			t.Fatalf("x=%d: got %v, want %d", x, got, x-2)
		}
	}
	if got := dst.At(0, 5, 0); got != 0 {
		t.Fatalf("back-trace past the wall must clamp, got %v", got)
	}
}

func TestKernelsRejectMisuse(t *testing.T) {
	a := newField(t, 8, 8, 2)
	b := newField(t, 8, 9, 2)
	s := newField(t, 8, 8, 1)

	if err := Advect(serial, a, a, a, 1, 0); !errors.Is(err, core.ErrAliasedBuffers) {
		t.Fatalf("aliased advect error = %v", err)
	}
	if err := Advect(serial, a, b, b, 1, 0); !errors.Is(err, core.ErrResolutionMismatch) {
		t.Fatalf("mismatched advect error = %v", err)
	}
	if err := Divergence(serial, s, b); !errors.Is(err, core.ErrResolutionMismatch) {
		t.Fatalf("mismatched divergence error = %v", err)
	}
	if err := Boundary(serial, b, a, 1); !errors.Is(err, core.ErrResolutionMismatch) {
		t.Fatalf("mismatched boundary error = %v", err)
	}
	if err := Splat(serial, s, a, 0.5, 0.5, []float32{1}, 0.1, 1); !errors.Is(err, core.ErrConfiguration) {
		t.Fatalf("mismatched splat error = %v", err)
	}

	// Nothing may be written when validation fails.
	pattern(b)
	before := append([]float32(nil), a.Data...)
	_ = SubtractGradient(serial, a, b, s)
	for i := range before {
		if a.Data[i] != before[i] {
			t.Fatal("failed kernel wrote into its destination")
		}
	}
}

func TestBoundaryReflection(t *testing.T) {
	src := newField(t, 6, 5, 2)
	pattern(src)
	dst := newField(t, 6, 5, 2)

	if err := Boundary(serial, dst, src, -1); err != nil {
		t.Fatalf("Boundary: %v", err)
	}
	for y := 1; y < src.H-1; y++ {
		for c := 0; c < 2; c++ {
			if dst.At(0, y, c) != -src.At(1, y, c) {
				t.Fatalf("left edge y=%d c=%d not reflected", y, c)
			}
			if dst.At(src.W-1, y, c) != -src.At(src.W-2, y, c) {
				t.Fatalf("right edge y=%d c=%d not reflected", y, c)
			}
		}
	}
	for x := 1; x < src.W-1; x++ {
		if dst.At(x, 0, 1) != -src.At(x, 1, 1) || dst.At(x, src.H-1, 1) != -src.At(x, src.H-2, 1) {
			t.Fatalf("horizontal edge x=%d not reflected", x)
		}
	}
	if dst.At(0, 0, 0) != -src.At(1, 1, 0) || dst.At(src.W-1, src.H-1, 0) != -src.At(src.W-2, src.H-2, 0) {
		t.Fatal("corners must take the diagonal neighbour")
	}
	if dst.At(2, 2, 0) != src.At(2, 2, 0) {
		t.Fatal("interior must be copied")
	}

	p := newField(t, 6, 5, 1)
	pattern(p)
	out := newField(t, 6, 5, 1)
	if err := Boundary(serial, out, p, 1); err != nil {
		t.Fatalf("Boundary: %v", err)
	}
	for y := 1; y < p.H-1; y++ {
		if out.At(0, y, 0) != p.At(1, y, 0) || out.At(p.W-1, y, 0) != p.At(p.W-2, y, 0) {
			t.Fatalf("pressure edge y=%d must have zero gradient", y)
		}
	}
}

func TestObstacleMirrorsOutsideCell(t *testing.T) {
	const n = 33
	src := newField(t, n, n, 2)
	pattern(src)
	dst := newField(t, n, n, 2)
	ob := Circle{X: 0.5, Y: 0.5, Radius: 0.125}

	if err := Obstacle(serial, dst, src, ob, -1); err != nil {
		t.Fatalf("Obstacle: %v", err)
	}
	inside := 0
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if !ob.Contains(x, y, n, n) {
				if dst.At(x, y, 0) != src.At(x, y, 0) {
					t.Fatalf("outside cell (%d,%d) changed", x, y)
				}
				continue
			}
			inside++
		}
	}
	if inside == 0 {
		t.Fatal("obstacle covers no cells")
	}
	// Centre 16.5 and radius 4.125 cells: the cell two to the right of the
	// centre mirrors the cell at 16.5 + 5.125 along the same row.
	for c := 0; c < 2; c++ {
		if got, want := dst.At(18, 16, c), -src.At(21, 16, c); got != want {
			t.Fatalf("inside cell channel %d = %v, want %v", c, got, want)
		}
	}
}

func TestScaleRadius(t *testing.T) {
	for _, r := range []float32{0.001, 0.1, 2} {
		if got := ScaleRadius(r, 1.5); !approx(got, r*1.5, 1e-7) {
			t.Fatalf("landscape ScaleRadius(%v) = %v", r, got)
		}
		if got := ScaleRadius(r, 0.75); got != r {
			t.Fatalf("portrait ScaleRadius(%v) = %v", r, got)
		}
		if got := ScaleRadius(r, 1); got != r {
			t.Fatalf("square ScaleRadius(%v) = %v", r, got)
		}
	}
}

func TestSplatPeaksAtPoint(t *testing.T) {
	src := newField(t, 8, 8, 3)
	src.Fill(1, 1, 1)
	dst := newField(t, 8, 8, 3)
	if err := Splat(serial, dst, src, 4.5/8, 4.5/8, []float32{2, 0, -1}, 0.01, 1); err != nil {
		t.Fatalf("Splat: %v", err)
	}
	if dst.At(4, 4, 0) != 3 || dst.At(4, 4, 1) != 1 || dst.At(4, 4, 2) != 0 {
		t.Fatalf("peak = %v %v %v", dst.At(4, 4, 0), dst.At(4, 4, 1), dst.At(4, 4, 2))
	}
	if !(dst.At(5, 4, 0) < 3 && dst.At(5, 4, 0) > 1) {
		t.Fatalf("neighbour must decay, got %v", dst.At(5, 4, 0))
	}
	if dst.At(5, 4, 0) != dst.At(3, 4, 0) || dst.At(4, 5, 0) != dst.At(4, 3, 0) {
		t.Fatal("splat must be symmetric about its centre")
	}
}

func TestCurlOfRigidRotation(t *testing.T) {
	vel := newField(t, 10, 10, 2)
	const omega = 0.75
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			vel.Set(x, y, 0, -omega*float32(y-5))
			vel.Set(x, y, 1, omega*float32(x-5))
		}
	}
	curl := newField(t, 10, 10, 1)
	if err := Curl(serial, curl, vel); err != nil {
		t.Fatalf("Curl: %v", err)
	}
	for y := 1; y < 9; y++ {
		for x := 1; x < 9; x++ {
			if !approx(curl.At(x, y, 0), 2*omega, 1e-6) {
				t.Fatalf("curl(%d,%d) = %v, want %v", x, y, curl.At(x, y, 0), 2*omega)
			}
		}
	}
}

func TestVorticityWithoutCurlGradientLeavesVelocity(t *testing.T) {
	vel := newField(t, 8, 8, 2)
	pattern(vel)
	curl := newField(t, 8, 8, 1)
	curl.Fill(2)
	dst := newField(t, 8, 8, 2)
	if err := Vorticity(serial, dst, vel, curl, 0.1, 40); err != nil {
		t.Fatalf("Vorticity: %v", err)
	}
	for i := range vel.Data {
		if dst.Data[i] != vel.Data[i] {
			t.Fatalf("uniform curl changed velocity at %d", i)
		}
	}
}

func TestDivergenceOfExpansion(t *testing.T) {
	vel := newField(t, 8, 8, 2)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			vel.Set(x, y, 0, float32(x))
			vel.Set(x, y, 1, float32(y))
		}
	}
	div := newField(t, 8, 8, 1)
	if err := Divergence(serial, div, vel); err != nil {
		t.Fatalf("Divergence: %v", err)
	}
	for y := 1; y < 7; y++ {
		for x := 1; x < 7; x++ {
			if div.At(x, y, 0) != 2 {
				t.Fatalf("div(%d,%d) = %v, want 2", x, y, div.At(x, y, 0))
			}
		}
	}
}

func TestSubtractGradientMomentumIsWallPressure(t *testing.T) {
	const w, h = 12, 9
	vel := newField(t, w, h, 2)
	pressure := newField(t, w, h, 1)
	pattern(pressure)
	dst := newField(t, w, h, 2)

	if err := SubtractGradient(serial, dst, vel, pressure); err != nil {
		t.Fatalf("SubtractGradient: %v", err)
	}
	var got, want float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			got += float64(dst.At(x, y, 0))
		}
		want -= 0.5 * float64(pressure.At(w-1, y, 0)+pressure.At(w-2, y, 0)-pressure.At(0, y, 0)-pressure.At(1, y, 0))
	}
	if math.Abs(got-want) > 1e-4 {
		t.Fatalf("interior momentum change %v, want %v", got, want)
	}
}

func TestDiffuseKeepsUniformField(t *testing.T) {
	pair := newPair(t, 8, 8, 2)
	pair.Current().Fill(2, -1)
	scratch := newField(t, 8, 8, 2)
	if err := Diffuse(serial, pair, scratch, 50, 5, 0.1); err != nil {
		t.Fatalf("Diffuse: %v", err)
	}
	for i, v := range pair.Current().Data {
		want := float32(2)
		if i%2 == 1 {
			want = -1
		}
		if !approx(v, want, 1e-5) {
			t.Fatalf("sample %d = %v, want %v", i, v, want)
		}
	}
}

func TestDiffuseSmoothsSpike(t *testing.T) {
	pair := newPair(t, 9, 9, 1)
	pair.Current().Set(4, 4, 0, 10)
	scratch := newField(t, 9, 9, 1)
	if err := Diffuse(serial, pair, scratch, 20, 1, 1); err != nil {
		t.Fatalf("Diffuse: %v", err)
	}
	if peak := pair.Current().At(4, 4, 0); peak >= 10 || peak <= 0 {
		t.Fatalf("peak after diffusion = %v", peak)
	}
	if pair.Current().At(5, 4, 0) <= 0 {
		t.Fatal("diffusion must spread into neighbours")
	}
	if err := Diffuse(serial, pair, scratch, 20, 0, 1); err != nil {
		t.Fatalf("zero viscosity must be a no-op, got %v", err)
	}
}

func TestAddForces(t *testing.T) {
	vel := newField(t, 4, 4, 2)
	vel.Fill(1, 2)
	temp := newField(t, 4, 4, 1)
	temp.Fill(15)
	dye := newField(t, 8, 8, 3)
	dye.Fill(0.3, 0.6, 0.9)
	dst := newField(t, 4, 4, 2)
	b := Buoyancy{Strength: 1, Kappa: 0.25, Sigma: 0.1, Gravity: 2, RestTemp: 10}

	if err := AddForces(serial, dst, vel, temp, dye, 0.5, b); err != nil {
		t.Fatalf("AddForces: %v", err)
	}
	wantV := float32(2 + 0.5*(1*(0.1*5-0.25*0.6)-2))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if dst.At(x, y, 0) != 1 || !approx(dst.At(x, y, 1), wantV, 1e-5) {
				t.Fatalf("cell (%d,%d) = (%v,%v), want (1,%v)", x, y, dst.At(x, y, 0), dst.At(x, y, 1), wantV)
			}
		}
	}
	if !(Buoyancy{}).Zero() || b.Zero() {
		t.Fatal("Zero misreports")
	}
}

// meanInteriorDivergence projects a copy of vel with the given number of
// pressure iterations and reports the remaining mean |div|.
func meanInteriorDivergence(t *testing.T, vel *core.Field, iterations int) float64 {
	t.Helper()
	w, h := vel.W, vel.H
	div := newField(t, w, h, 1)
	if err := Divergence(serial, div, vel); err != nil {
		t.Fatalf("Divergence: %v", err)
	}
	pressure := newPair(t, w, h, 1)
	if err := SolvePressure(serial, pressure, div, iterations, 0.8); err != nil {
		t.Fatalf("SolvePressure: %v", err)
	}
	projected := newField(t, w, h, 2)
	if err := SubtractGradient(serial, projected, vel, pressure.Current()); err != nil {
		t.Fatalf("SubtractGradient: %v", err)
	}
	if err := Divergence(serial, div, projected); err != nil {
		t.Fatalf("Divergence: %v", err)
	}
	var sum float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			sum += math.Abs(float64(div.At(x, y, 0)))
		}
	}
	return sum / float64((w-2)*(h-2))
}

func TestProjectionImprovesWithIterations(t *testing.T) {
	const n = 48
	zero := newField(t, n, n, 2)
	vel := newField(t, n, n, 2)
	if err := Splat(serial, vel, zero, 0.5, 0.5, []float32{100, 0}, 0.01, 1); err != nil {
		t.Fatalf("Splat: %v", err)
	}

	prev := math.Inf(1)
	for _, iters := range []int{0, 10, 25, 50} {
		got := meanInteriorDivergence(t, vel, iters)
		if !(got < prev) {
			t.Fatalf("%d iterations: mean |div| %v did not drop below %v", iters, got, prev)
		}
		prev = got
	}
}

func TestResidualShrinksWithIterations(t *testing.T) {
	const n = 32
	zero := newField(t, n, n, 2)
	vel := newField(t, n, n, 2)
	if err := Splat(serial, vel, zero, 0.4, 0.6, []float32{30, -20}, 0.02, 1); err != nil {
		t.Fatalf("Splat: %v", err)
	}
	div := newField(t, n, n, 1)
	if err := Divergence(serial, div, vel); err != nil {
		t.Fatalf("Divergence: %v", err)
	}
	residual := func(iters int) float64 {
		pressure := newPair(t, n, n, 1)
		if err := SolvePressure(serial, pressure, div, iters, 1); err != nil {
			t.Fatalf("SolvePressure: %v", err)
		}
		r, err := Residual(serial, pressure.Current(), div)
		if err != nil {
			t.Fatalf("Residual: %v", err)
		}
		return r
	}
	if few, many := residual(5), residual(50); !(many < few) {
		t.Fatalf("residual after 50 iterations %v not below 5 iterations %v", many, few)
	}
}

func TestSolvePressureAroundObstacle(t *testing.T) {
	const n = 32
	zero := newField(t, n, n, 2)
	vel := newField(t, n, n, 2)
	if err := Splat(serial, vel, zero, 0.35, 0.5, []float32{60, 10}, 0.01, 1); err != nil {
		t.Fatalf("Splat: %v", err)
	}
	div := newField(t, n, n, 1)
	if err := Divergence(serial, div, vel); err != nil {
		t.Fatalf("Divergence: %v", err)
	}
	o := Circle{X: 0.5, Y: 0.5, Radius: 0.15}
	// changed reports how many cells the obstacle rule would still rewrite.
	changed := func(obstacles ...Circle) int {
		pressure := newPair(t, n, n, 1)
		if err := SolvePressure(serial, pressure, div, 20, 0.8, obstacles...); err != nil {
			t.Fatalf("SolvePressure: %v", err)
		}
		out := newField(t, n, n, 1)
		if err := Obstacle(serial, out, pressure.Current(), o, 1); err != nil {
			t.Fatalf("Obstacle: %v", err)
		}
		count := 0
		for i, v := range pressure.Current().Data {
			if out.Data[i] != v {
				count++
			}
		}
		return count
	}
	if got := changed(o); got != 0 {
		t.Fatalf("%d cells inside the obstacle break the zero-gradient rule", got)
	}
	if changed() == 0 {
		t.Fatal("plain solve already matches the obstacle rule")
	}
}

func TestPoolMatchesSerial(t *testing.T) {
	q := newField(t, 40, 33, 3)
	pattern(q)
	vel := newField(t, 20, 17, 2)
	pattern(vel)
	a := newField(t, 40, 33, 3)
	b := newField(t, 40, 33, 3)

	if err := Advect(serial, a, q, vel, 0.02, 0.1); err != nil {
		t.Fatalf("serial Advect: %v", err)
	}
	if err := Advect(device.NewPool(4), b, q, vel, 0.02, 0.1); err != nil {
		t.Fatalf("pool Advect: %v", err)
	}
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, a.Data[i], b.Data[i])
		}
	}
}
