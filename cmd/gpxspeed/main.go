package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/jibb34/gpxspeed/analysis"
	"github.com/jibb34/gpxspeed/config"
	"github.com/jibb34/gpxspeed/gpxtrack"
)

var log = logrus.WithField("pkg", "main")

func main() {
	configFile := flag.String("config", "", "YAML config file")
	watch := flag.Bool("watch", false, "re-run when the config file changes or on SIGHUP")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config file] [-watch] path...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	loader := config.NewLoader(*configFile)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot load config: %+v\n", err)
		os.Exit(1)
	}
	setLogLevel(cfg.LogLevel)

	files, err := collectFiles(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	log.Infof("found %d track files", len(files))

	failed := processAll(os.Stdout, cfg, files)
	if !*watch {
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mu sync.Mutex
	rerun := func() {
		mu.Lock()
		defer mu.Unlock()
		processCurrent(os.Stdout, loader, files)
	}
	if err := loader.Watch(func(*config.Config) { rerun() }); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot watch config: %v\n", err)
		os.Exit(1)
	}
	log.Infof("watching %s for changes, send SIGHUP to re-run", *configFile)

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			rerun()
		}
	}
}

func setLogLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// collectFiles expands directories into the track files they contain.
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		found, err := gpxtrack.LoadGPXFiles(p)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, errors.New("no .gpx or .fit files found")
	}
	return files, nil
}

// processCurrent re-runs every file with the loader's last valid configuration.
func processCurrent(w io.Writer, loader *config.Loader, files []string) int {
	cfg := loader.Current()
	if cfg == nil {
		log.Errorf("no configuration loaded")
		return len(files)
	}
	setLogLevel(cfg.LogLevel)
	return processAll(w, cfg, files)
}

// processAll analyzes every file, reporting failures and carrying on with the next file.
// It returns the number of files that failed.
func processAll(w io.Writer, cfg *config.Config, files []string) int {
	opts, err := analysis.OptionsFromConfig(cfg)
	if err != nil {
		log.Errorf("invalid config: %v", err)
		return len(files)
	}

	failed := 0
	for _, file := range files {
		if err := processFile(w, cfg, opts, file); err != nil {
			log.Errorf("%s: %v", file, err)
			failed++
		}
	}
	return failed
}

func processFile(w io.Writer, cfg *config.Config, opts analysis.Options, file string) error {
	data, err := gpxtrack.ParseFile(file)
	if err != nil {
		return err
	}
	a, err := analysis.Run(data, opts)
	if err != nil {
		return err
	}
	if err := a.WriteSummary(w); err != nil {
		return err
	}
	fmt.Fprintln(w)

	written, err := a.WriteOutputs(cfg.Output)
	for _, p := range written {
		fmt.Fprintf(w, "Wrote %s\n", p)
	}
	return err
}
