package scene

import (
	"github.com/haldenlabs/pbd2d/body"
	"github.com/haldenlabs/pbd2d/vector"
)

// jitteredGrid lays out a delta-spaced grid over [xStart,xEnd) x [yStart,yEnd)
// with a small random jitter per point, avoiding the perfectly regular
// lattice that would give SPH density estimates an artificial symmetry.
func jitteredGrid(b *Builder, xStart, xEnd, yStart, yEnd, delta float64) []vector.Vector2D {
	var out []vector.Vector2D
	for x := xStart; x < xEnd; x += delta {
		for y := yStart; y < yEnd; y += delta {
			jitter := vector.New(b.Rng.Float64()-0.5, b.Rng.Float64()-0.5).Scale(0.2)
			out = append(out, vector.New(x, y).Add(jitter))
		}
	}
	return out
}

func buildFluid(b *Builder) (Result, error) {
	scale, delta := 4.0, 0.7
	numClusters := 2.0

	for d := 0.0; d < numClusters; d++ {
		start := -2*scale + 4*scale*(d/numClusters)
		positions := jitteredGrid(b, start, start+4*scale/numClusters, -2*scale, scale, delta)
		if err := b.CreateFluid(positions, 1, 1+1.5*d); err != nil {
			return Result{}, err
		}
	}

	return Result{
		Domain:  Domain{XMin: -2 * scale, XMax: 2 * scale, YMin: -2 * scale, YMax: 10 * scale},
		Gravity: defaultGravity(),
	}, nil
}

func buildFluidSolid(b *Builder) (Result, error) {
	scale, delta := 5.0, 0.7

	positions := jitteredGrid(b, -2*scale, -2*scale+4*scale, -2*scale, 2*scale, delta)
	if err := b.CreateFluid(positions, 1, 1.75); err != nil {
		return Result{}, err
	}

	rad, diam := b.Radius, b.Diameter
	dimX, dimY := 5, 2
	root2 := 1.4142135623730951

	sdf := make([]body.SDF, 0, dimX*dimY)
	sdf = append(sdf, body.SDF{Normal: vector.New(-1, -1).Normalize(), Distance: rad * root2})
	sdf = append(sdf, body.SDF{Normal: vector.New(-1, 1).Normalize(), Distance: rad * root2})
	for i := 0; i < dimX-2; i++ {
		sdf = append(sdf, body.SDF{Normal: vector.New(0, -1).Normalize(), Distance: rad})
		sdf = append(sdf, body.SDF{Normal: vector.New(0, 1).Normalize(), Distance: rad})
	}
	sdf = append(sdf, body.SDF{Normal: vector.New(1, -1).Normalize(), Distance: rad * root2})
	sdf = append(sdf, body.SDF{Normal: vector.New(1, 1).Normalize(), Distance: rad * root2})

	blockVertices := func(xOffset, imass float64) []Vertex {
		vs := make([]Vertex, 0, dimX*dimY)
		for x := 0; x < dimX; x++ {
			xVal := diam * float64((x%dimX)-dimX/2)
			for y := 0; y < dimY; y++ {
				yVal := float64(dimY+(y%dimY)+1) * diam
				vs = append(vs, Vertex{
					Pos:   vector.New(xVal+xOffset, 15+yVal),
					IMass: imass,
					SDF:   sdf[x*dimY+y],
				})
			}
		}
		return vs
	}

	if _, err := b.CreateRigidBody(blockVertices(-3, 0.5)); err != nil {
		return Result{}, err
	}
	if _, err := b.CreateRigidBody(blockVertices(3, 0.2)); err != nil {
		return Result{}, err
	}

	return Result{
		Domain:  Domain{XMin: -2 * scale, XMax: 2 * scale, YMin: -2 * scale, YMax: 10 * scale},
		Gravity: defaultGravity(),
	}, nil
}

func buildGas(b *Builder) (Result, error) {
	scale, delta := 2.0, 0.7
	numClusters := 2.0

	domain := Domain{XMin: -2 * scale, XMax: 2 * scale, YMin: -2 * scale, YMax: 10 * scale}

	for d := 0.0; d < numClusters; d++ {
		start := -2*scale + 4*scale*(d/numClusters)
		positions := jitteredGrid(b, start, start+4*scale/numClusters, -2*scale, 2*scale, delta)
		if err := b.CreateGas(positions, 1, 0.75+3*d); err != nil {
			return Result{}, err
		}
	}

	fluidScale := 3.0
	for d := 0.0; d < numClusters; d++ {
		start := -2*fluidScale + 4*fluidScale*(d/numClusters)
		positions := jitteredGrid(b, start, start+4*fluidScale/numClusters, -2*fluidScale+10, 2*fluidScale+10, delta)
		if err := b.CreateFluid(positions, 1, 4+0.75*(d+1)); err != nil {
			return Result{}, err
		}
	}

	return Result{Domain: domain, Gravity: defaultGravity()}, nil
}
