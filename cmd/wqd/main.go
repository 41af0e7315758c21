package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akamensky/argparse"
	"github.com/tim-beatham/waterq/pkg/api"
	"github.com/tim-beatham/waterq/pkg/conf"
	"github.com/tim-beatham/waterq/pkg/lib"
	logging "github.com/tim-beatham/waterq/pkg/log"
	"github.com/tim-beatham/waterq/pkg/pipeline"
	"github.com/tim-beatham/waterq/pkg/query"
	"github.com/tim-beatham/waterq/pkg/store"
)

func main() {
	parser := argparse.NewParser("wqd",
		"wqd Clean water quality sensor readings and serve them over HTTP")

	var configPath *string = parser.String("c", "config", &argparse.Options{
		Required: true,
		Help:     "Path to the YAML configuration file",
	})

	var envPath *string = parser.String("e", "env", &argparse.Options{
		Default: ".env",
		Help:    "Optional .env file whose variables override the configuration file",
	})

	err := parser.Parse(os.Args)

	if err != nil {
		fmt.Print(parser.Usage(err))
		return
	}

	err = conf.LoadEnvFile(*envPath)

	if err != nil {
		logging.Log.WriteErrorf("Could not load env file: %s", err.Error())
		return
	}

	config, err := conf.ParseDaemonConfiguration(*configPath)

	if err != nil {
		logging.Log.WriteErrorf("Could not parse configuration: %s", err.Error())
		return
	}

	logging.SetLogger(logging.NewLogrusLogger(config.LogLevel))

	collection := store.NewAutomergeCollection("readings", &lib.UUIDGenerator{})
	report, err := pipeline.Run(config, collection)

	if err != nil {
		logging.Log.WriteErrorf("Could not ingest %s: %s", config.CsvPath, err.Error())
		return
	}

	logging.Log.WriteInfof("serving %d readings from %s", report.Inserted, report.Source)

	apiServer, err := api.NewWaterServer(api.ApiServerConf{
		Collection:    collection,
		Querier:       query.NewJmesQuerier(collection),
		DefaultLimit:  config.DefaultLimit,
		MaxLimit:      config.MaxLimit,
		ZThreshold:    config.ZThreshold,
		IQRMultiplier: config.IQRMultiplier,
	})

	if err != nil {
		logging.Log.WriteErrorf(err.Error())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = apiServer.Run(ctx, config.ListenAddress, time.Duration(config.ShutdownTimeout)*time.Second)

	if err != nil {
		logging.Log.WriteErrorf(err.Error())
	}
}
