// Command passdump renders frames of a built-in scene on the recording
// device and prints which objects each pass draws and the batches it
// submitted. It needs no window or GPU.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"reefview/assets"
	"reefview/internal/config"
	"reefview/internal/graphics/gpu"
	"reefview/internal/graphics/gpu/softgpu"
	"reefview/internal/graphics/renderer"
	"reefview/internal/logging"
	"reefview/internal/meshing"
	"reefview/internal/resources"
	"reefview/internal/scene"
	"reefview/internal/scenes"

	"github.com/aquasecurity/table"
	"go.uber.org/zap"
)

type options struct {
	scene    string
	config   string
	frames   int
	width    int
	height   int
	logLevel string
}

func main() {
	var opts options
	flag.StringVar(&opts.scene, "scene", "reef", "scene to dump: "+strings.Join(scenes.Names(), ", "))
	flag.StringVar(&opts.config, "config", "", "YAML settings file (optional)")
	flag.IntVar(&opts.frames, "frames", 1, "frames to render before dumping")
	flag.IntVar(&opts.width, "width", 320, "frame width")
	flag.IntVar(&opts.height, "height", 180, "frame height")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	flag.Parse()

	if err := run(os.Stdout, opts); err != nil {
		fmt.Fprintln(os.Stderr, "passdump:", err)
		os.Exit(1)
	}
}

func run(w io.Writer, opts options) error {
	log, err := logging.New(opts.logLevel, true)
	if err != nil {
		return err
	}
	defer log.Sync()

	settings, err := config.Load(opts.config)
	if err != nil {
		return err
	}
	def, err := scenes.Lookup(opts.scene)
	if err != nil {
		return err
	}
	if opts.frames < 1 {
		return fmt.Errorf("frames must be at least 1, got %d", opts.frames)
	}

	dev := softgpu.New(opts.width, opts.height)
	defer dev.Release()
	res, err := resources.NewManager(dev, "", log)
	if err != nil {
		return err
	}
	pool := meshing.NewWorkerPool(4, 16)
	sc, err := scenes.Build(def, res, pool)
	pool.Shutdown()
	if err != nil {
		return err
	}
	comp, err := renderer.NewCompositor(dev, res, renderer.Options{
		Width:   opts.width,
		Height:  opts.height,
		Shaders: assets.FS,
		Log:     log,
	})
	if err != nil {
		return err
	}
	defer comp.Dispose()

	const dt = 1.0 / 60
	for frame := 1; frame <= opts.frames; frame++ {
		dev.ResetRecords()
		sc.Evolve(dt)
		state := renderer.NewSceneState(sc, renderer.FrameInfo{
			Number: uint64(frame),
			Delta:  dt,
			Width:  opts.width,
			Height: opts.height,
		}, settings, float64(frame)*dt)
		if err := comp.Render(state); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		log.Debug("frame rendered", zap.Int("frame", frame), zap.Int("batches", len(dev.Records())))
	}

	fmt.Fprintf(w, "scene %s, frame %d, %dx%d\n\n", sc.Name, opts.frames, opts.width, opts.height)
	writeMembership(w, sc.Objects)
	fmt.Fprintln(w)
	writeBatches(w, dev.Records(), targetNames(comp.Targets()))
	return nil
}

// writeMembership prints one row per object and one column per pass.
func writeMembership(w io.Writer, objects []*scene.Object) {
	tbl := table.New(w)
	tbl.SetRowLines(false)
	headers := []string{"object", "material"}
	for _, p := range renderer.AllPasses {
		headers = append(headers, p.String())
	}
	tbl.SetHeaders(headers...)
	for _, o := range objects {
		row := []string{o.Name, o.Material.Kind.String()}
		for _, p := range renderer.AllPasses {
			mark := ""
			if renderer.Includes(p, o.Material) {
				mark = "x"
			}
			row = append(row, mark)
		}
		tbl.AddRow(row...)
	}
	tbl.Render()
}

func writeBatches(w io.Writer, records []softgpu.DrawRecord, targets map[gpu.Framebuffer]string) {
	tbl := table.New(w)
	tbl.SetRowLines(false)
	tbl.SetHeaders("#", "pass", "target", "items", "blend", "depth")
	for i, r := range records {
		tbl.AddRow(
			strconv.Itoa(i+1),
			r.Label,
			targets[r.Framebuffer],
			strconv.Itoa(len(r.Items)),
			blendName(r.Blend),
			depthName(r.Depth),
		)
	}
	tbl.Render()
}

func targetNames(reg *renderer.TargetRegistry) map[gpu.Framebuffer]string {
	out := map[gpu.Framebuffer]string{gpu.DefaultFramebuffer: "output"}
	for _, name := range reg.Names() {
		out[reg.Target(name).Framebuffer] = name
	}
	return out
}

func blendName(b gpu.BlendState) string {
	switch {
	case !b.Enabled:
		return "off"
	case b == gpu.AlphaBlend:
		return "alpha"
	default:
		return "custom"
	}
}

func depthName(d gpu.DepthState) string {
	if d.Disabled {
		return "off"
	}
	if d.ReadOnly {
		return "test"
	}
	return "test+write"
}
