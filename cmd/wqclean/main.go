package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/akamensky/argparse"
	"github.com/tim-beatham/waterq/pkg/conf"
	logging "github.com/tim-beatham/waterq/pkg/log"
	"github.com/tim-beatham/waterq/pkg/pipeline"
)

func main() {
	parser := argparse.NewParser("wqclean",
		"wqclean Remove z-score outliers from a water quality CSV")

	var csvPath *string = parser.String("i", "input", &argparse.Options{
		Required: true,
		Help:     "Raw sensor CSV to clean",
	})

	var outPath *string = parser.String("o", "output", &argparse.Options{
		Default: conf.DEFAULT_CLEANED_CSV_PATH,
		Help:    "Where to write the cleaned CSV",
	})

	var threshold *float64 = parser.Float("z", "threshold", &argparse.Options{
		Default: conf.DEFAULT_Z_THRESHOLD,
		Help:    "Absolute z-score above which a value is an outlier",
	})

	var columns *string = parser.String("c", "columns", &argparse.Options{
		Help: "Comma separated columns to filter. Defaults to every numeric column",
	})

	var verbose *bool = parser.Flag("v", "verbose", &argparse.Options{
		Help: "Log debug output",
	})

	err := parser.Parse(os.Args)

	if err != nil {
		fmt.Print(parser.Usage(err))
		return
	}

	if *verbose {
		logging.SetLogger(logging.NewLogrusLogger(conf.DEBUG))
	}

	config := conf.DefaultConfiguration(*csvPath)
	config.CleanedCsvPath = *outPath
	config.ZThreshold = *threshold

	if *columns != "" {
		config.CleanColumns = strings.Split(*columns, ",")
	}

	err = conf.ValidateDaemonConfiguration(config)

	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}

	_, report, err := pipeline.Clean(config)

	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}

	out, err := json.MarshalIndent(report, "", "  ")

	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}

	fmt.Println(string(out))
}
