package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"git.lost.host/meutraa/beatlane/internal/config"
	"git.lost.host/meutraa/beatlane/internal/input"
	"git.lost.host/meutraa/beatlane/internal/score"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := run(); nil != err {
		log.Fatalln(err)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		logger.Println("serving metrics on", addr)
		if err := server.ListenAndServe(); nil != err && !errors.Is(err, http.ErrServerClosed) {
			logger.Println("unable to serve metrics", err)
		}
	}()
	return server
}

func run() error {
	cfg, err := config.Parse(os.Args[1:])
	if nil != err {
		return err
	}

	// The terminal belongs to the renderer, so only log when asked to
	logger := log.New(io.Discard, "", 0)
	if cfg.Verbose {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	p := NewProgram(cfg, logger)
	if err := p.Init(); nil != err {
		return err
	}
	defer p.Deinit()

	kbd, err := input.Open(128, logger)
	if nil != err {
		return err
	}
	defer func() {
		if err := kbd.Close(); nil != err {
			log.Println("unable to close keyboard", err)
		}
	}()

	if err := p.Select(kbd); nil != err {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := score.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		server := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); nil != err {
				logger.Println("unable to stop metrics server", err)
			}
		}()
	}

	if err := p.Start(metrics); nil != err {
		return err
	}
	if err := p.Play(kbd.Events(input.NewKeymap(cfg.Keys(p.chart.Difficulty.NKeys)))); nil != err {
		return err
	}
	return p.Finish(os.Stdout)
}
