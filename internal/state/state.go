package state

import (
	"database/sql"

	"github.com/opencreds/boostnet/internal/config"
)

type State struct {
	DB     *sql.DB
	Config config.Configuration
}
