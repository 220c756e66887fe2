package main

import (
	"errors"
	"io/fs"
	"log"
	"net/http"

	"github.com/yiyi75/careerquest/internal/config"
	"github.com/yiyi75/careerquest/internal/serverapp"
)

func main() {
	cfg, err := config.Load("careerquest.yml")
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Fatalf("load config: %v", err)
		}
		cfg = config.Default()
	}
	config.FromEnv(cfg)

	handler, err := serverapp.NewHandler(serverapp.Options{
		Config: cfg,
		Logger: log.Default(),
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	log.Printf("listening on %s", cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, handler))
}
