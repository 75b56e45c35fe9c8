package main

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/opencreds/boostnet/internal/client"
	"github.com/opencreds/boostnet/internal/config"
	db "github.com/opencreds/boostnet/internal/db/impl"
	"github.com/opencreds/boostnet/internal/initialization"
	"github.com/opencreds/boostnet/internal/queue"
	service "github.com/opencreds/boostnet/internal/service/impl"
	"github.com/opencreds/boostnet/internal/state"
	"github.com/opencreds/boostnet/internal/web"
	"github.com/rs/zerolog"
	zero "github.com/rs/zerolog/log"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	zero.Logger = zero.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	config, err := config.ReadConfig()
	if err != nil {
		log.Fatal(err)
	}
	if config.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	d, err := initialization.OpenDB(config.DbUrl)
	if err != nil {
		log.Fatal(err)
	}
	zero.Info().Msg("database connection established")

	if os.Getenv("SETUP") != "" {
		if err = initialization.SetupDB(&config, d, config.MigrationsFolder, config.DbUrl); err != nil {
			log.Fatal(err)
		}
	}

	if err = initialization.EnsureInstanceKey(d, &config); err != nil {
		log.Fatal(err)
	}
	key, err := initialization.InstanceKey(d, &config)
	if err != nil {
		zero.Fatal().Err(err).Msg("instance key unavailable")
	}

	q, err := initialization.InitQueue(d)
	if err != nil {
		zero.Fatal().Err(err).Msg("unable to set up the task queue")
	}

	st := state.State{
		DB:     d,
		Config: config,
	}
	dd := db.New(config, d)

	fragment, _ := url.Parse("#main-key")
	keyId := config.Url.ResolveReference(fragment)
	httpClient, err := client.New(&http.Client{}, key, keyId)
	if err != nil {
		zero.Fatal().Err(err).Send()
	}

	notifier := queue.New(context.Background(), dd, httpClient, config, q)
	svc := service.New(config, dd, httpClient, notifier)

	handler := web.New(&st.Config, svc)
	router := chi.NewRouter()
	if config.Debug {
		router.Use(middleware.Logger)
	}
	handler.Mount(router)

	s := &http.Server{
		Addr:    config.Listen,
		Handler: router,
	}

	zero.Info().Str("listen", config.Listen).Msg("started server")
	if err = s.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
