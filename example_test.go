package lbdist_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/lbdist"
	"github.com/hupe1980/lbdist/lb"
)

func Example() {
	series := [][]float64{
		{0, 0, 0, 0},
		{10, 10, 10, 10},
	}

	b, err := lbdist.New(
		lbdist.WithWindow(0),
		lbdist.WithNorm(lb.NormL1),
	)
	if err != nil {
		log.Fatal(err)
	}

	dm, err := b.Build(context.Background(), series, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer dm.Close()

	fmt.Println(dm.At(0, 0), dm.At(0, 1))
	fmt.Println(dm.At(1, 0), dm.At(1, 1))
	// Output:
	// 0 40
	// 40 0
}

func ExampleBuilder_BuildPairwise() {
	x := [][]float64{
		{1, 2, 3, 4, 5},
		{0, 0, 0, 0, 0},
	}
	y := [][]float64{
		{1, 2, 3, 4, 5},
		{2, 2, 2, 2, 2},
	}

	b, err := lbdist.New(lbdist.WithWindow(1))
	if err != nil {
		log.Fatal(err)
	}

	v, err := b.BuildPairwise(context.Background(), x, y)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(v)
	// Output:
	// [0 10]
}
