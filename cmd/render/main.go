// Command render loads a scene document, runs it through the progressive
// path-tracing driver, and writes the resulting image to disk.
package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/biofag/tungsten/internal/rlog"
	"github.com/biofag/tungsten/pkg/driver"
	"github.com/biofag/tungsten/pkg/integrator"
	"github.com/biofag/tungsten/pkg/sampler"
	"github.com/biofag/tungsten/pkg/scene"
	"github.com/biofag/tungsten/pkg/threadpool"
)

var logger = rlog.New("render")

func main() {
	app := cli.NewApp()
	app.Name = "render"
	app.Usage = "render a scene document with the progressive path tracer"
	app.Version = "0.1.0"

	app.Commands = []cli.Command{
		{
			Name:      "render",
			Usage:     "render a scene to a PNG image",
			ArgsUsage: "<scene>",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "threads", Value: 0, Usage: "worker count (0 = runtime.NumCPU())"},
				cli.IntFlag{Name: "spp", Value: 0, Usage: "override the scene's samples-per-pixel target"},
				cli.StringFlag{Name: "resume", Usage: "resume from a checkpoint written by a previous aborted run"},
				cli.StringFlag{Name: "output", Usage: "override the scene's output path"},
			},
			Action: renderAction,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Errorf("%s", err)
		os.Exit(1)
	}
}

func renderAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("missing scene file argument", 1)
	}
	scenePath := ctx.Args().First()

	scn, cam, err := scene.Load(scenePath)
	if err != nil {
		logger.Errorf("loading scene: %s", err)
		return cli.NewExitError(err.Error(), 1)
	}
	scn.PrepareForRender()

	settings := scn.Settings
	if spp := ctx.Int("spp"); spp > 0 {
		settings.Spp = spp
	}
	if out := ctx.String("output"); out != "" {
		settings.OutputPath = out
	}
	if settings.OutputPath == "" {
		settings.OutputPath = "render.png"
	}

	numWorkers := ctx.Int("threads")
	pool := threadpool.New(numWorkers)
	pool.Start()
	defer pool.Stop()

	newSampler := func() sampler.Sampler {
		if settings.UseSobol {
			return sampler.NewSobol()
		}
		return sampler.NewUniform()
	}
	newSupplementalSampler := func() sampler.Sampler {
		if settings.UseSobol {
			return sampler.NewSobolWithSalt(sampler.SupplementalSalt)
		}
		return sampler.NewUniformWithSalt(sampler.SupplementalSalt)
	}

	pathTracer := integrator.New(scn, cam, settings.Width, settings.Height, settings.MaxDepth)
	d := driver.New(
		cam, pool, effectiveWorkers(numWorkers),
		settings.Width, settings.Height, settings.TileSize, settings.VarianceTileSize,
		settings.UseAdaptiveSampling, settings.AdaptiveThreshold,
		pathTracer,
		newSampler,
		newSupplementalSampler,
	)

	sppFrom := 0
	resumePath := ctx.String("resume")
	if resumePath == "" {
		resumePath = settings.ResumeFile
	}
	if resumePath != "" {
		if checkpoint, err := driver.LoadCheckpoint(resumePath); err == nil {
			if err := d.Restore(checkpoint); err != nil {
				logger.Warningf("ignoring resume file %s: %s", resumePath, err)
			} else {
				sppFrom = checkpoint.SppFrom
				logger.Noticef("resumed from %s at spp_from=%d", resumePath, sppFrom)
			}
		} else {
			logger.Warningf("could not read resume file %s: %s", resumePath, err)
		}
	}

	abortRequested := make(chan os.Signal, 1)
	signal.Notify(abortRequested, os.Interrupt)
	defer signal.Stop(abortRequested)

	start := time.Now()
	aborted := false
	for sppFrom < settings.Spp {
		sppTo := min(sppFrom+1, settings.Spp)

		select {
		case <-abortRequested:
			d.Abort()
			aborted = true
		default:
		}
		if aborted {
			break
		}

		result := d.Start(sppFrom, sppTo)
		if result.Aborted {
			aborted = true
			break
		}
		sppFrom = sppTo
		if result.Converged {
			break
		}
	}
	elapsed := time.Since(start)

	if aborted {
		if resumePath != "" {
			checkpoint := d.Snapshot(sppFrom)
			if err := driver.SaveCheckpoint(resumePath, checkpoint); err != nil {
				logger.Errorf("writing resume file: %s", err)
			} else {
				logger.Noticef("wrote resume file %s at spp_from=%d", resumePath, sppFrom)
			}
		}
		return cli.NewExitError("render aborted", 2)
	}

	if err := writePNG(settings.OutputPath, d); err != nil {
		logger.Errorf("writing output: %s", err)
		return cli.NewExitError(err.Error(), 3)
	}

	displayRenderStats(sppFrom, settings.Spp, elapsed, d.RejectedSamples())
	return nil
}

func effectiveWorkers(requested int) int {
	if requested > 0 {
		return requested
	}
	return runtime.NumCPU()
}

func writePNG(path string, d *driver.Driver) error {
	accum := d.Accumulator()
	w, h := accum.Width(), accum.Height()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := accum.GetColor(x, y)
			img.Set(x, y, color.RGBA{
				R: tonemap(c.X),
				G: tonemap(c.Y),
				B: tonemap(c.Z),
				A: 255,
			})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

// tonemap applies a simple gamma-2.2 LDR encode, clamped to [0,1] before
// the gamma curve so fireflies don't wrap instead of clip.
func tonemap(v float64) uint8 {
	v = math.Max(0, math.Min(1, v))
	return uint8(math.Pow(v, 1/2.2)*255 + 0.5)
}

func displayRenderStats(sppFrom, sppTarget int, elapsed time.Duration, rejected int64) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Samples", "Target", "Render time", "Rejected samples"})
	table.Append([]string{
		fmt.Sprintf("%d", sppFrom),
		fmt.Sprintf("%d", sppTarget),
		elapsed.Round(time.Millisecond).String(),
		fmt.Sprintf("%d", rejected),
	})
	table.Render()
	logger.Noticef("render statistics\n%s", buf.String())
}
