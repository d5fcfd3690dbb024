package cmd

import (
	"fmt"
	"os"

	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/ogc"
	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/orchestrator"
	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/pattern"
	"github.com/ZOO-Project/ogc-app-package-patterns-tester/internal/track"
	"github.com/ZOO-Project/ogc-app-package-patterns-tester/types"
)

// defaultConfigFile is consulted when --config is not given. Missing is fine:
// flags alone can fully configure a run.
const defaultConfigFile = "patterns.yml"

// resolveConfig builds the effective configuration from the config file (if
// any) with persistent flags layered on top. Flags always win.
func resolveConfig() (*types.TesterConfig, error) {
	cfg := &types.TesterConfig{}

	path := configFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		loaded, err := types.LoadTesterConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if serverURL != "" {
		cfg.Server.BaseURL = serverURL
	}
	if authToken != "" {
		cfg.Server.AuthToken = authToken
	}
	if cfg.PatternsDir == "" || patternsDir != "data/patterns" {
		cfg.PatternsDir = patternsDir
	}
	if cfg.CacheDir == "" || cacheDir != "temp/cwl" {
		cfg.CacheDir = cacheDir
	}

	if err := types.ValidateServerConfig(&cfg.Server); err != nil {
		return nil, err
	}
	return cfg, nil
}

// appContext bundles the collaborators every lifecycle command needs.
type appContext struct {
	Config  *types.TesterConfig
	Gateway *ogc.Client
	Loader  *pattern.Loader
	Tracker *track.Tracker
	Orch    *orchestrator.Orchestrator
}

func buildAppContext() (*appContext, error) {
	cfg, err := resolveConfig()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	gateway := ogc.NewClient(cfg.Server)
	loader := &pattern.Loader{Dir: cfg.PatternsDir}
	cache := &pattern.Cache{Dir: cfg.CacheDir}
	tracker := track.New()

	return &appContext{
		Config:  cfg,
		Gateway: gateway,
		Loader:  loader,
		Tracker: tracker,
		Orch:    orchestrator.New(gateway, loader, cache, tracker, forceDownload),
	}, nil
}
