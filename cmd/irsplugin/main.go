package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/icrus-dev/irsplugin/pkg/blockstore"
	"github.com/icrus-dev/irsplugin/pkg/plugin"
	"github.com/icrus-dev/irsplugin/pkg/sched"
	"github.com/icrus-dev/irsplugin/pkg/skins"
	"github.com/icrus-dev/irsplugin/pkg/world"
)

// envDefault returns the environment variable value if set, otherwise the fallback.
func envDefault(envVar, fallback string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fallback
}

func main() {
	confFile := flag.String("conf", envDefault("IRS_CONF", "irsplugin.yaml"), "Path to plugin config file (env: IRS_CONF)")
	boltPath := flag.String("bolt", envDefault("IRS_BOLT", "irsplugin.db"), "Path to bbolt block database (env: IRS_BOLT)")
	webPort := flag.Int("webport", 0, "Web server port, overrides config (env: IRS_WEBPORT)")
	noWatch := flag.Bool("nowatch", os.Getenv("IRS_NOWATCH") == "true", "Disable config hot reload (env: IRS_NOWATCH)")
	flag.Parse()

	if *webPort == 0 {
		if envPort := os.Getenv("IRS_WEBPORT"); envPort != "" {
			if p, err := strconv.Atoi(envPort); err == nil {
				*webPort = p
			}
		}
	}

	cfg, err := plugin.LoadConfig(*confFile)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	if *webPort != 0 {
		cfg.WebPort = *webPort
	}

	store, err := blockstore.Open(*boltPath)
	if err != nil {
		log.Fatalf("FATAL: open block store: %v", err)
	}
	defer store.Close()

	var defs []*world.ItemDef
	if cfg.ItemsFile != "" {
		defs, err = plugin.LoadItemDefs(cfg.ItemsFile)
		if err != nil {
			log.Fatalf("FATAL: %v", err)
		}
	}
	var entries []skins.CatalogEntry
	if cfg.SkinsFile != "" {
		entries, err = plugin.LoadCatalogEntries(cfg.SkinsFile)
		if err != nil {
			log.Fatalf("FATAL: %v", err)
		}
	}
	worldDefs := world.NewDefs(defs)

	var audit *plugin.Audit
	if cfg.AuditDB != "" {
		audit, err = plugin.OpenAudit(cfg.AuditDB)
		if err != nil {
			log.Fatalf("FATAL: %v", err)
		}
	}

	state := world.NewState()
	p, err := plugin.New(plugin.Options{
		Config:     cfg,
		ConfigPath: *confFile,
		State:      state,
		Store:      store,
		Clock:      sched.SystemClock{},
		Host:       plugin.LogHost{},
		Defs:       worldDefs,
		Catalog:    skins.BuildCatalog(worldDefs, entries),
		Metrics:    plugin.NewMetrics(),
		Audit:      audit,
	})
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	// Standalone mode has no host spawning saved entities; recovery runs
	// against an empty arena and prunes nothing until blocks reappear.
	p.RecoverAll()

	if !*noWatch {
		watcher, err := plugin.WatchConfig(*confFile, p.Reload())
		if err != nil {
			log.Printf("config watch disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	if cfg.WebEnabled {
		websrv, err := plugin.NewWebServer(p)
		if err != nil {
			log.Fatalf("FATAL: %v", err)
		}
		websrv.Start()
		defer websrv.Shutdown()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	log.Printf("irsplugin running (store: %s)", store.Path())
	for {
		select {
		case <-ticker.C:
			p.Tick()
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			if err := p.Shutdown(); err != nil {
				log.Printf("shutdown: %v", err)
			}
			return
		}
	}
}
