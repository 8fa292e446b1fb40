package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	root "github.com/goliatone/go-templating"
	"github.com/goliatone/go-templating/internal/logging"
	"github.com/goliatone/go-templating/pkg/config"
	"github.com/goliatone/go-templating/pkg/templating"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	engine := flag.String("engine", "", "template engine override (django, gohtml, handlebars)")
	dir := flag.String("templates", "", "template directory (bundled templates if empty)")
	name := flag.String("template", "index", "template to render")
	path := flag.String("path", "/", "request path used for the url argument")
	argsFile := flag.String("args", "", "YAML file with extra template arguments")
	output := flag.String("output", "", "output file (stdout if empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *engine != "" {
		cfg.Templating.Engine = *engine
	}
	if *dir != "" {
		cfg.Templating.Dir = *dir
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	args, err := readArgs(*argsFile)
	if err != nil {
		log.Fatalf("Failed to read args: %v", err)
	}

	tpl, err := root.NewTemplating(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to build templating: %v", err)
	}

	httpReq, err := http.NewRequest(http.MethodGet, "http://localhost"+*path, nil)
	if err != nil {
		log.Fatalf("Invalid path %q: %v", *path, err)
	}

	page := args["element"]
	delete(args, "element")

	out, err := tpl.Page(templating.NewRequest(httpReq), *name, page, args)
	if err != nil {
		logger.Error("render failed", zap.String("template", *name), zap.Error(err))
		os.Exit(1)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(out), 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Output written to %s\n", *output)
		return
	}
	fmt.Println(out)
}

// readArgs loads extra template arguments. An "element" key, when present,
// becomes the page value.
func readArgs(path string) (templating.Args, error) {
	args := templating.Args{}
	if path == "" {
		return args, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &args); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return args, nil
}
