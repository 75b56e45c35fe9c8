// The initialization package sets up required dependencies such as the
// SQLite database, the task queue and the instance signing key.
package initialization

import (
	"crypto/rsa"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-migrate/migrate"
	"github.com/golang-migrate/migrate/database/sqlite3"
	_ "github.com/golang-migrate/migrate/source/file"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
	"github.com/opencreds/boostnet/internal/config"
	"github.com/opencreds/boostnet/internal/utils"
	"github.com/rs/zerolog/log"
)

const rsaKeySize = 2048

// SetupDB applies all pending migrations and makes sure the instance
// signing key exists.
func SetupDB(cfg *config.Configuration, db *sql.DB, folder, dbname string) error {
	log.Info().Msg("starting migrations")
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		log.Error().Err(err).Msg("failed to create sqlite3 migration driver")
		return err
	}

	mig, err := migrate.NewWithDatabaseInstance(
		"file://"+folder,
		dbname,
		driver,
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create Migrate object")
		return err
	}

	if err = mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Error().Err(err).Msg("failed to run migrations")
		return err
	}

	return EnsureInstanceKey(db, cfg)
}

func OpenDB(connString string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", connString)
	if err != nil {
		log.Error().Err(err).Str("connection string", connString).Msg("failed to open database")
	}
	return db, err
}

// EnsureInstanceKey generates the instance signing key pair on first run.
func EnsureInstanceKey(db *sql.DB, cfg *config.Configuration) error {
	row := db.QueryRow("SELECT EXISTS(SELECT TRUE FROM instance_keys WHERE name = ?)", cfg.Name)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}

	log.Info().Msg("generating instance signing key")
	pub, priv, err := utils.GenerateKeysPem(rsaKeySize)
	if err != nil {
		return err
	}

	_, err = db.Exec(`INSERT INTO instance_keys(name, public_key, private_key) VALUES (?,?,?)`,
		cfg.Name, pub, priv)
	if err != nil {
		log.Error().Err(err).Msg("insert failed")
	}
	return err
}

// InstanceKey loads the instance's private signing key.
func InstanceKey(db *sql.DB, cfg *config.Configuration) (*rsa.PrivateKey, error) {
	var priv string
	err := db.QueryRow("SELECT private_key FROM instance_keys WHERE name = ?", cfg.Name).Scan(&priv)
	if err != nil {
		return nil, err
	}
	return utils.ParsePrivateKeyPem(priv)
}

// InitQueue opens the task queue on the application database.
func InitQueue(db *sql.DB) (*backlite.Client, error) {
	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      2,
		ReleaseAfter:    10 * time.Minute,
		CleanupInterval: time.Hour,
	})
	if err != nil {
		return nil, err
	}
	if err = client.Install(); err != nil {
		return nil, err
	}
	return client, nil
}
