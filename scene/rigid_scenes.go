package scene

import (
	"math"

	"github.com/haldenlabs/pbd2d/body"
	"github.com/haldenlabs/pbd2d/constraint"
	"github.com/haldenlabs/pbd2d/particle"
	"github.com/haldenlabs/pbd2d/vector"
)

func buildFriction(b *Builder) (Result, error) {
	root2 := math.Sqrt2
	rad := b.Radius
	diam := b.Diameter

	sdf := []body.SDF{
		{Normal: vector.New(-1, -1).Normalize(), Distance: rad * root2},
		{Normal: vector.New(-1, 1).Normalize(), Distance: rad * root2},
		{Normal: vector.New(0, -1).Normalize(), Distance: rad},
		{Normal: vector.New(0, 1).Normalize(), Distance: rad},
		{Normal: vector.New(1, -1).Normalize(), Distance: rad * root2},
		{Normal: vector.New(1, 1).Normalize(), Distance: rad * root2},
	}

	dimX, dimY := 3, 2
	vertices := make([]Vertex, 0, dimX*dimY)
	for x := 0; x < dimX; x++ {
		xVal := diam * float64((x%dimX)-dimX/2)
		for y := 0; y < dimY; y++ {
			yVal := float64(dimY+(y%dimY)+1) * diam
			idx := x*dimY + y
			vertices = append(vertices, Vertex{
				Pos:       vector.New(xVal, yVal),
				IMass:     1,
				SFriction: 0.1,
				KFriction: 0.01,
				SDF:       sdf[idx],
			})
		}
	}

	before := len(*b.Particles)
	if _, err := b.CreateRigidBody(vertices); err != nil {
		return Result{}, err
	}
	// The original gives the whole block an initial rightward velocity
	// (part->v.x = 5 on every vertex).
	for _, p := range (*b.Particles)[before:] {
		p.V = vector.New(5, 0)
	}

	return Result{
		Domain:  Domain{XMin: -20, XMax: 20, YMin: 0, YMax: 1000000},
		Gravity: defaultGravity(),
	}, nil
}

func buildGranular(b *Builder) (Result, error) {
	diam, eps := b.Diameter, 1e-6
	yMin := -5.0

	for i := -10; i <= 10; i++ {
		for j := 0; j < 40; j++ {
			pos := vector.New(float64(i)*(diam+eps), float64(j)*diam+b.Radius+yMin)
			p := particle.New(pos, 1, particle.SOLID)
			p.SFriction = 0.1
			p.KFriction = 0.02
			*b.Particles = append(*b.Particles, p)
		}
	}

	jerk := particle.New(vector.New(-5.51, 4), 1.0/100.0, particle.SOLID)
	jerk.V = vector.New(10, 0)
	*b.Particles = append(*b.Particles, jerk)

	return Result{
		Domain:  Domain{XMin: -100, XMax: 100, YMin: yMin, YMax: 1000},
		Gravity: defaultGravity(),
	}, nil
}

func buildStacks(b *Builder) (Result, error) {
	root2 := math.Sqrt2
	rad, diam := b.Radius, b.Diameter
	numBoxes, numColumns := 8, 2
	dimX, dimY := 3, 2

	sdf := []body.SDF{
		{Normal: vector.New(-1, -1).Normalize(), Distance: rad * root2},
		{Normal: vector.New(-1, 1).Normalize(), Distance: rad * root2},
		{Normal: vector.New(0, -1).Normalize(), Distance: rad},
		{Normal: vector.New(0, 1).Normalize(), Distance: rad},
		{Normal: vector.New(1, -1).Normalize(), Distance: rad * root2},
		{Normal: vector.New(1, 1).Normalize(), Distance: rad * root2},
	}

	for j := -numColumns; j <= numColumns; j++ {
		for i := numBoxes - 1; i >= 0; i-- {
			vertices := make([]Vertex, 0, dimX*dimY)
			for x := 0; x < dimX; x++ {
				xVal := float64(j)*4 + diam*float64((x%dimX)-dimX/2)
				for y := 0; y < dimY; y++ {
					yVal := float64((2*i+1)*dimY+(y%dimY)+1) * diam
					vertices = append(vertices, Vertex{
						Pos:   vector.New(xVal, yVal),
						IMass: 1,
						SDF:   sdf[x*dimY+y],
					})
				}
			}
			if _, err := b.CreateRigidBody(vertices); err != nil {
				return Result{}, err
			}
		}
	}

	return Result{
		Domain:  Domain{XMin: -20, XMax: 20, YMin: 0, YMax: 1000000},
		Gravity: defaultGravity(),
	}, nil
}

func buildWall(b *Builder) (Result, error) {
	root2 := math.Sqrt2
	rad, diam, eps := b.Radius, b.Diameter, 1e-6
	dimX, dimY := 6, 2
	height, width := 5, 2

	sdf := make([]body.SDF, 0, dimX*dimY)
	sdf = append(sdf, body.SDF{Normal: vector.New(-1, -1).Normalize(), Distance: rad * root2})
	sdf = append(sdf, body.SDF{Normal: vector.New(-1, 1).Normalize(), Distance: rad * root2})
	for i := 0; i < dimX-2; i++ {
		sdf = append(sdf, body.SDF{Normal: vector.New(0, -1).Normalize(), Distance: rad})
		sdf = append(sdf, body.SDF{Normal: vector.New(0, 1).Normalize(), Distance: rad})
	}
	sdf = append(sdf, body.SDF{Normal: vector.New(1, -1).Normalize(), Distance: rad * root2})
	sdf = append(sdf, body.SDF{Normal: vector.New(1, 1).Normalize(), Distance: rad * root2})

	for j := -width; j <= width; j++ {
		for i := height - 1; i >= 0; i-- {
			num := 3.0
			if i%2 != 0 {
				num = -1
			}
			vertices := make([]Vertex, 0, dimX*dimY)
			for x := 0; x < dimX; x++ {
				xVal := float64(j)*(eps+float64(dimX)/2) + diam*float64(x%dimX) - num*rad
				for y := 0; y < dimY; y++ {
					yVal := (float64(i)*float64(dimY)+float64(y%dimY)+eps)*diam + rad
					vertices = append(vertices, Vertex{
						Pos:       vector.New(xVal, yVal),
						IMass:     1,
						SFriction: 1,
						KFriction: 0.09,
						SDF:       sdf[x*dimY+y],
					})
				}
			}
			if _, err := b.CreateRigidBody(vertices); err != nil {
				return Result{}, err
			}
		}
	}

	return Result{
		Domain:  Domain{XMin: -20, XMax: 20, YMin: 0, YMax: 1000000},
		Gravity: defaultGravity(),
	}, nil
}

func buildPendulum(b *Builder) (Result, error) {
	rad, diam := b.Radius, b.Diameter
	chainLength := 3

	anchor := particle.New(vector.New(0, float64(chainLength)*3+6).Scale(diam).Add(vector.New(0, 2)), 0, particle.SOLID)
	*b.Particles = append(*b.Particles, anchor)

	sdf := []body.SDF{
		{Normal: vector.New(-1, -1).Normalize(), Distance: rad},
		{Normal: vector.New(-1, 1).Normalize(), Distance: rad},
		{Normal: vector.New(0, -1).Normalize(), Distance: rad},
		{Normal: vector.New(0, 1).Normalize(), Distance: rad},
		{Normal: vector.New(1, -1).Normalize(), Distance: rad},
		{Normal: vector.New(1, 1).Normalize(), Distance: rad},
	}
	xs := []float64{-1, -1, 0, 0, 1, 1}

	prevBase := -1
	for i := chainLength; i >= 0; i-- {
		vertices := make([]Vertex, 0, 6)
		for j := 0; j < 6; j++ {
			y := (float64(i+1)*3+float64(j%2))*diam + 2
			vertices = append(vertices, Vertex{
				Pos:   vector.New(xs[j]*diam, y),
				IMass: 1,
				SDF:   sdf[j],
			})
		}
		bodyIdx, err := b.CreateRigidBody(vertices)
		if err != nil {
			return Result{}, err
		}
		base := (*b.Bodies)[bodyIdx].Particles[0]

		if prevBase >= 0 {
			b.Groups[constraint.Standard] = append(b.Groups[constraint.Standard],
				b.distanceAtRest(base+1, prevBase))
			b.Groups[constraint.Standard] = append(b.Groups[constraint.Standard],
				b.distanceAtRest(base+5, prevBase+4))
		}
		prevBase = base
	}

	firstBase := (*b.Bodies)[0].Particles[0]
	b.Groups[constraint.Standard] = append(b.Groups[constraint.Standard],
		b.distanceAtRest(0, firstBase+4))

	return Result{
		Domain:  Domain{XMin: -10, XMax: 10, YMin: 0, YMax: 1000000},
		Gravity: defaultGravity(),
	}, nil
}
