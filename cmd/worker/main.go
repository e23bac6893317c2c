package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "github.com/DanteTheCreator/real-estate-deployment-sub001/internal/adapters/http_server"
	"github.com/DanteTheCreator/real-estate-deployment-sub001/internal/adapters/myhome"
	"github.com/DanteTheCreator/real-estate-deployment-sub001/internal/adapters/observability"
	redisad "github.com/DanteTheCreator/real-estate-deployment-sub001/internal/adapters/redis"
	"github.com/DanteTheCreator/real-estate-deployment-sub001/internal/app"
	"github.com/DanteTheCreator/real-estate-deployment-sub001/internal/domain"
	"github.com/DanteTheCreator/real-estate-deployment-sub001/internal/shared"
	mysqlrepo "github.com/DanteTheCreator/real-estate-deployment-sub001/internal/storage/mysql"
)

func main() {
	once := flag.Bool("once", false, "process a single batch and exit")
	property := flag.String("property", "", "process one property by external id and exit")
	flag.Parse()

	cfg := shared.Load()

	// global logger (console in dev, JSON otherwise; DEBUG_MODE lowers level)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.DebugMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("api_base", cfg.APIBase).
		Int("batch_size", cfg.BatchSize).
		Dur("interval", cfg.ProcessInterval).
		Int("workers", cfg.Workers).
		Strs("languages", langStrings(cfg.Languages)).
		Msg("worker starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo, err := mysqlrepo.New(db, cfg.Languages)
	if err != nil {
		log.Fatal().Err(err).Msg("repository init failed")
	}

	client, err := myhome.New(cfg.APIBase, cfg.APIToken, cfg.MaxRetries, cfg.RequestDelay, cfg.DebugMode)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize statements client")
	}

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}

	proc := app.NewProcessor(client, app.NewTermTranslator(), cache, cfg.Languages, cfg.CacheTTL)
	sched := app.NewScheduler(repo, proc, cfg.BatchSize, cfg.ProcessInterval, cfg.Workers)

	observability.Serve()

	// diagnostic mode: one property, synchronously, then exit
	if *property != "" {
		runSingle(ctx, repo, proc, *property)
		return
	}

	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Sched: sched, Proc: proc, Repo: repo})
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("ops server listening")
		httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("ops server failed")
		}
	}()

	if *once {
		if _, err := sched.RunCycle(ctx); err != nil {
			log.Fatal().Err(err).Msg("batch failed")
		}
		return
	}

	sched.Run(ctx)
	log.Info().Msg("worker finished")
}

func runSingle(ctx context.Context, repo domain.PropertyRepository, proc *app.Processor, externalID string) {
	cand, err := repo.FindByExternalID(ctx, externalID)
	if err != nil {
		log.Fatal().Str("external_id", externalID).Err(err).Msg("property lookup failed")
	}
	upd, err := proc.Process(ctx, cand)
	if err != nil {
		log.Fatal().Err(err).Msg("processing canceled")
	}
	if upd.Empty() {
		log.Info().Str("external_id", externalID).Msg("no new content")
		return
	}
	if err := repo.ApplyUpdate(ctx, upd); err != nil {
		log.Fatal().Err(err).Msg("update failed")
	}
	log.Info().
		Str("external_id", externalID).
		Int("languages", len(upd.Translations)).
		Bool("fallback", upd.UsedFallback()).
		Msg("property updated")
}

func langStrings(ls []domain.Language) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = string(l)
	}
	return out
}
