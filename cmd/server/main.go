package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"pet-progress-api/internal/catalog"
	"pet-progress-api/internal/config"
	"pet-progress-api/internal/hiscores"
	httpapi "pet-progress-api/internal/http"
	"pet-progress-api/internal/service"
	"pet-progress-api/internal/store"
	"pet-progress-api/internal/temple"
)

func main() {
	cfg := config.Load()

	cat, err := catalog.Load(cfg.CataloguePath)
	if err != nil {
		log.Fatalf("catalogue init: %v", err)
	}

	st, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("store init: %v", err)
	}
	defer st.Close()

	tc := temple.New(cat, cfg.TempleBaseURL)
	hs := hiscores.New(cat, cfg.HiscoresBaseURL)
	svc := service.New(st, tc, hs, cat, cfg)
	go svc.StartScheduler()

	r := httpapi.NewRouter(svc)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("pet-progress-api listening on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("server error: %v", err)
		os.Exit(1)
	}
}
