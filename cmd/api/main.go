package main

import (
	"log"
	"net/http"

	"rapaflow/internal/api"
	"rapaflow/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	h := api.NewServer(cfg)
	log.Printf("rapaflow api listening on %s temporal=%s queue=%s", cfg.APIAddr, cfg.TemporalAddress, cfg.TemporalTaskQueue)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
