package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"datapipeline/internal/config"
	"datapipeline/internal/fault"
	"datapipeline/internal/metrics"
	"datapipeline/internal/metrics/prompush"
	"datapipeline/internal/pipeline"
	"datapipeline/internal/storage"

	// register all backends with the storage factory.
	// config specifies which to use but we build in support for all of them.
	_ "datapipeline/internal/storage/all"
)

// main resolves configuration from the environment plus flags, optionally
// initializes a metrics backend, and executes one pipeline run.
func main() {
	var (
		source            string
		table             string
		name              string
		ifExists          string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
		verify            bool
	)

	flag.StringVar(&source, "source", "", "path of the CSV file to load")
	flag.StringVar(&table, "table", "", "destination table name")
	flag.StringVar(&name, "name", "", "pipeline name (overrides env PIPELINE_NAME)")
	flag.StringVar(&ifExists, "if-exists", "", "policy when the table exists: fail, replace, append (overrides env MYSQL_IF_EXISTS)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.BoolVar(&verify, "verify", false, "count destination rows after a successful run")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	override := config.Pipeline{Name: name}
	if ifExists != "" {
		override.Loader.Options = config.Options{"if_exists": ifExists}
	}

	p := config.FromEnv().Merge(override)

	issues := config.Validate(p)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		fatalf("configuration is invalid")
	}
	if validate {
		log.Printf("configuration is valid")
		os.Exit(0)
	}

	if source == "" {
		fatalf("missing -source")
	}
	if table == "" {
		fatalf("missing -table")
	}

	setupMetrics(metricsBackendFlg, pushGatewayURLFlg, p.Name, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	if *verbose {
		log.Printf("config: %s", p.Redacted())
	}

	ctx := context.Background()
	start := time.Now()

	pl, err := pipeline.New(p)
	if err != nil {
		fatalf("build pipeline: %v", err)
	}

	res, err := pl.Run(ctx, source, table)
	if err != nil {
		kind, _ := fault.KindOf(err)
		log.Printf("run failed: stage=%s kind=%s err=%v", res.FailedStage, kind, err)
		os.Exit(1)
	}

	log.Printf("%s", res.Summary())

	if verify {
		n, err := countDestination(ctx, p, table)
		if err != nil {
			log.Printf("verify: %v", err)
			os.Exit(1)
		}
		log.Printf("verify: table=%s rows=%d", table, n)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// setupMetrics decides the metrics backend: flag, then env, then disabled.
func setupMetrics(backendName, gatewayURL, jobName string, verbose bool) {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		if gatewayURL == "" {
			gatewayURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gatewayURL == "" {
			gatewayURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(jobName, gatewayURL)
		if err != nil {
			log.Printf("metrics: failed to init push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=%s url=%s job=%s", backendName, gatewayURL, jobName)
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

// countDestination opens the destination database once more and counts rows.
func countDestination(ctx context.Context, p config.Pipeline, table string) (int64, error) {
	repo, err := storage.New(ctx, storage.Config{
		Kind:     p.Loader.Kind,
		Host:     p.Database.Host,
		Port:     p.Database.Port,
		User:     p.Database.User,
		Password: p.Database.Password,
		Database: p.Database.Database,
		Charset:  p.Database.Charset,
		DSN:      p.Loader.Options.String("dsn", ""),
	})
	if err != nil {
		return 0, err
	}
	defer repo.Close()
	return repo.Count(ctx, table)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
