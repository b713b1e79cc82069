package app

import (
	"gorm.io/gorm"

	"gitlab.apk-group.net/siem/qa/discovery-harness/config"
	"gitlab.apk-group.net/siem/qa/discovery-harness/internal/product"
	scanPort "gitlab.apk-group.net/siem/qa/discovery-harness/internal/scan/port"
)

type AppContainer interface {
	Config() config.Config
	ScanCache() scanPort.Service
	APIClient() *product.APIClient
	CLIRunner() *product.CLIRunner
	// DB is nil unless the shared result store is enabled.
	DB() *gorm.DB
}
