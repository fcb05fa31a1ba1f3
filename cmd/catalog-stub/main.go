package main

import (
	"flag"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/logging"
)

func main() {
	port := flag.Int("port", 8090, "port to listen on")
	dir := flag.String("dir", "testdata", "directory holding fixture XML files")
	auth := flag.String("auth", "", "required basic auth as user:pass")
	token := flag.String("token", "", "required Api-Token header value")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logging.Configure(*logLevel, true)

	router := newRouter(&stubServer{dir: *dir, auth: *auth, token: *token})

	addr := fmt.Sprintf(":%d", *port)
	log.Info().Str("addr", addr).Str("dir", *dir).Msg("catalog stub listening")
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
