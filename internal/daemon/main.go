// Package daemon wires the database, seeding and web service together.
package daemon

import (
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/importdesk/importdesk/internal/config"
	"github.com/importdesk/importdesk/internal/db/dsn"
	"github.com/importdesk/importdesk/internal/db/models"
	"github.com/importdesk/importdesk/internal/rules"
	"github.com/importdesk/importdesk/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	webService *web.Service
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	return d.webService.Start()
}

// WaitShutdown blocks until the web service has drained and stopped.
func (d *Daemon) WaitShutdown() {
	d.webService.WaitShutdown()
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db := OpenDB(cfg)

	if err := Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	seed(db)

	engine := rules.New(db, nil)

	return &Daemon{
		webService: web.New(cfg, db, engine),
	}
}

// OpenDB opens the configured database with the matching gorm driver.
func OpenDB(cfg *config.Config) *gorm.DB {
	var dialector gorm.Dialector

	switch cfg.DB.Driver {
	case config.DBDriverPostgres:
		dialector = gormpostgres.Open(dsn.CreatePostgres(cfg))
	default:
		dialector = gormmysql.Open(dsn.CreateMySQL(cfg))
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	return db
}

// Migrate applies the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.CustomRole{},
		&models.User{},
		&models.Pipeline{},
		&models.Deal{},
		&models.Organisation{},
		&models.Contact{},
		&models.Lead{},
		&models.PipelineRule{},
		&models.RuleExecution{},
	)
}
