package main

import (
	"flag"
	"fmt"
	"os"

	"uiraster/internal/mathutil"
	"uiraster/internal/scene"
)

func main() {
	dumpYAML := flag.Bool("yaml", false, "Print the scene as YAML instead of a record listing")
	convert := flag.String("o", "", "Also write the scene to this .qsb or .yaml file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: inspect [-yaml] [-o out.qsb] scene.qsb|scene.yaml")
		os.Exit(2)
	}
	path := flag.Arg(0)
	sc, err := scene.Load(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if *convert != "" {
		if err := scene.Save(*convert, sc); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if *dumpYAML {
		data, err := scene.MarshalYAML(sc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	}

	u := sc.Uniforms
	fmt.Printf("Scene: %s\n", path)
	if sc.Atlas != "" {
		fmt.Printf("Atlas: %s\n", sc.Atlas)
	}
	fmt.Printf("Viewport: %g x %g, Scale: %g, Opacity: %g\n",
		u.ViewportSize.X, u.ViewportSize.Y, u.Scale, u.Opacity)
	fmt.Printf("Rotate: X %.1f° Y %.1f° Z %.1f°, FOV: %.1f°\n",
		deg(u.RotateX), deg(u.RotateY), deg(u.RotateZ), deg(u.FOV))
	if err := u.Validate(); err != nil {
		fmt.Printf("  Invalid: %v\n", err)
	}

	fmt.Printf("Quads: %d\n", len(sc.Quads))
	for i, q := range sc.Quads {
		fmt.Printf("  Quad[%d]: origin=(%g, %g) size=%g x %g z=%g bg=%s\n",
			i, q.Origin.X, q.Origin.Y, q.Size.X, q.Size.Y, q.Z, q.Background.Hex())
		b := q.Borders()
		if b != [4]float32{} {
			fmt.Printf("    Border: t=%g r=%g b=%g l=%g color=%s\n", b[0], b[1], b[2], b[3], q.BorderColor.Hex())
		}
		if q.CornerRadius != 0 {
			fmt.Printf("    Radius: %g (clamped %g)\n", q.CornerRadius, q.ClampedCornerRadius())
		}
		if q.Malformed() {
			fmt.Println("    Malformed: skipped when drawn")
		}
	}

	fmt.Printf("Sprites: %d\n", len(sc.Sprites))
	for i, s := range sc.Sprites {
		mode := "bitmap"
		if s.Winding {
			mode = "winding"
		}
		fmt.Printf("  Sprite[%d]: origin=(%g, %g) target=%g x %g z=%g tint=%s %s\n",
			i, s.Origin.X, s.Origin.Y, s.TargetSize.X, s.TargetSize.Y, s.Z, s.Color.Hex(), mode)
		fmt.Printf("    Source: (%g, %g) %g x %g\n",
			s.AtlasOrigin.X, s.AtlasOrigin.Y, s.SourceSize.X, s.SourceSize.Y)
		if s.Malformed() {
			fmt.Println("    Malformed: skipped when drawn")
		}
	}
}

func deg(rad float32) float64 {
	return mathutil.Rad2Deg(float64(rad))
}
