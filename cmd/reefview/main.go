package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"reefview/assets"
	"reefview/internal/config"
	"reefview/internal/game"
	"reefview/internal/graphics/gpu/glgpu"
	"reefview/internal/graphics/renderer"
	"reefview/internal/input"
	"reefview/internal/logging"
	"reefview/internal/meshing"
	"reefview/internal/resources"
	"reefview/internal/scenes"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"
	"go.uber.org/zap"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	var (
		configPath  = flag.String("config", "", "YAML settings file (optional)")
		logLevel    = flag.String("log-level", "info", "log level: debug, info, warn, error")
		development = flag.Bool("dev", false, "console logging instead of JSON")
		sceneName   = flag.String("scene", "reef", "scene to show: "+strings.Join(scenes.Names(), ", "))
		textureDir  = flag.String("textures", "textures", "directory searched for texture files")
		width       = flag.Int("width", 1280, "initial window width")
		height      = flag.Int("height", 720, "initial window height")
	)
	flag.Parse()

	log, err := logging.New(*logLevel, *development)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logging.Set(log)

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("settings rejected", zap.String("path", *configPath), zap.Error(err))
	}
	config.SetGlobal(config.NewStore(settings))

	def, err := scenes.Lookup(*sceneName)
	if err != nil {
		log.Fatal("scene lookup", zap.Error(err))
	}

	shutdown := game.NewShutdown()
	closer.Bind(shutdown.Interrupt)
	fail := func(msg string, err error) {
		log.Error(msg, zap.Error(err))
		shutdown.Run()
		closer.Exit(1)
	}
	shutdown.Defer(func() { _ = log.Sync() })

	if err := glfw.Init(); err != nil {
		fail("glfw init", err)
	}
	shutdown.Defer(glfw.Terminate)

	window, err := game.SetupWindow("reefview - "+def.Name, *width, *height)
	if err != nil {
		fail("window setup", err)
	}
	shutdown.OnInterrupt(func() {
		window.SetShouldClose(true)
		glfw.PostEmptyEvent()
	})
	fbWidth, fbHeight := window.GetFramebufferSize()

	dev, err := glgpu.New(log, fbWidth, fbHeight)
	if err != nil {
		fail("device setup", err)
	}
	shutdown.Defer(dev.Release)

	res, err := resources.NewManager(dev, *textureDir, log)
	if err != nil {
		fail("resource manager", err)
	}
	shutdown.Defer(res.Release)

	pool := meshing.NewWorkerPool(runtime.NumCPU(), 64)
	sc, err := scenes.Build(def, res, pool)
	pool.Shutdown()
	if err != nil {
		fail("scene build", err)
	}

	comp, err := renderer.NewCompositor(dev, res, renderer.Options{
		Width:   fbWidth,
		Height:  fbHeight,
		Shaders: assets.FS,
		Log:     log,
	})
	if err != nil {
		fail("compositor setup", err)
	}

	session := game.NewSession(sc, comp, config.Global(), log)
	shutdown.Defer(session.Cleanup)

	app := game.NewApp(window, input.NewInputManager(), session, log)
	game.SetupInputHandlers(app)

	log.Info("starting", zap.String("scene", def.Name), zap.Int("objects", len(sc.Objects)))
	app.Run()
	shutdown.Run()
	closer.Close()
}
