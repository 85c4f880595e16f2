package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/driftworks/objectcore/internal/core/object"
	"github.com/driftworks/objectcore/internal/core/observability/log"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or JSON runtime config")
	flag.Parse()

	cfg := object.DefaultConfig()
	if *configPath != "" {
		loaded, err := object.LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error loading config:", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger := log.New(log.ParseLevel(cfg.LogLevel))
	if err := object.Initialize(cfg, logger); err != nil {
		fmt.Fprintln(os.Stderr, "error initializing object runtime:", err)
		os.Exit(1)
	}
	defer object.Shutdown()

	object.SetTypePackage(object.NewPackage("Types"))
	if err := registerDemoHierarchy(); err != nil {
		logger.Error("failed to register demo hierarchy", log.Error(err))
		return
	}

	for t := range object.Types().Seq() {
		parent := "<root>"
		if p := t.Parent(); p != nil {
			parent = p.Name()
		}
		logger.Info("registered type",
			log.String("name", t.Name()),
			log.String("parent", parent),
			log.Uint32("flags", t.Flags()))
	}

	player := object.FindType("Player")
	root := object.FindType("Object")
	logger.Info("subtype query",
		log.String("type", player.Name()),
		log.String("ancestor", root.Name()),
		log.Bool("is_subtype", player.IsSubtypeOf(root)))

	stats := object.RuntimeStats()
	logger.Info("runtime stats",
		log.Int("registered_types", stats.RegisteredTypes),
		log.Int("active_object_proxies", stats.ActiveObjectProxies),
		log.Int("active_type_proxies", stats.ActiveTypeProxies))
}

// registerDemoHierarchy builds the Object -> Actor -> Player chain the way
// an engine would during startup type initialization.
func registerDemoHierarchy() error {
	pkg := object.TypePackage()

	root, err := object.CreateType("Object", pkg, nil, object.NewObject(""), object.TypeFlagAbstract)
	if err != nil {
		return err
	}
	actor, err := object.CreateType("Actor", pkg, root, object.NewObject(""), 0)
	if err != nil {
		return err
	}
	if _, err = object.CreateType("Player", pkg, actor, object.NewObject(""), 0); err != nil {
		return err
	}
	return nil
}
