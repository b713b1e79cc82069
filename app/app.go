package app

import (
	"gorm.io/gorm"

	"gitlab.apk-group.net/siem/qa/discovery-harness/config"
	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/product"
	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan"
	scanPort "gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/port"
	"gitlab.apk-group.net/siem/qa/discovery-harness/pkg/adapter/storage"
	"gitlab.apk-group.net/siem/qa/discovery-harness/pkg/logger"
	"gitlab.apk-group.net/siem/qa/discovery-harness/pkg/mysql"
)

type app struct {
	cfg       config.Config
	db        *gorm.DB
	apiClient *product.APIClient
	cliRunner *product.CLIRunner
	scanCache scanPort.Service
}

func (a *app) Config() config.Config {
	return a.cfg
}

func (a *app) ScanCache() scanPort.Service {
	return a.scanCache
}

func (a *app) APIClient() *product.APIClient {
	return a.apiClient
}

func (a *app) CLIRunner() *product.CLIRunner {
	return a.cliRunner
}

func (a *app) DB() *gorm.DB {
	return a.db
}

// NewApp wires the harness components from a validated configuration.
func NewApp(cfg config.Config) (AppContainer, error) {
	a := &app{
		cfg:       cfg,
		apiClient: product.NewAPIClient(cfg.Server),
		cliRunner: product.NewCLIRunner(cfg.CLI),
	}

	var store scanPort.ResultStore
	if cfg.Store.Enabled {
		db, err := mysql.NewMysqlConnection(cfg.Store.DB)
		if err != nil {
			return nil, err
		}
		if err := mysql.GormMigrations(db); err != nil {
			return nil, err
		}
		a.db = db
		store = storage.NewScanResultRepo(db)
		logger.Info("Shared scan result store enabled on %s/%s", cfg.Store.DB.Host, cfg.Store.DB.Database)
	}

	a.scanCache = scan.NewScanCache(a.apiClient, store, scan.OptionsFromConfig(cfg.Cache))
	return a, nil
}

func NewMustApp(cfg config.Config) AppContainer {
	a, err := NewApp(cfg)
	if err != nil {
		panic(err)
	}
	return a
}
