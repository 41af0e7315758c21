package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/akamensky/argparse"
	"github.com/tim-beatham/waterq/pkg/client"
	"github.com/tim-beatham/waterq/pkg/lib"
	"github.com/tim-beatham/waterq/pkg/reading"
	"github.com/tim-beatham/waterq/pkg/stats"
)

// printJson: prints the response indented or the error
func printJson(res any, err error) {
	if err != nil {
		fmt.Println(err.Error())
		return
	}

	out, err := json.MarshalIndent(res, "", "  ")

	if err != nil {
		fmt.Println(err.Error())
		return
	}

	fmt.Println(string(out))
}

// optionalFloat: an empty flag is unset
func optionalFloat(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}

	parsed, err := strconv.ParseFloat(value, 64)

	if err != nil {
		return nil, fmt.Errorf("%s is not a number", value)
	}

	return &parsed, nil
}

// optionalInt: zero is treated as unset so the server default applies
func optionalInt(value int) *int {
	if value == 0 {
		return nil
	}

	return &value
}

func main() {
	parser := argparse.NewParser("wqctl",
		"wqctl Query the water quality API")

	var address *string = parser.String("a", "address", &argparse.Options{
		Default: "http://127.0.0.1:5000",
		Help:    "Base URL of the water quality API",
	})

	healthCmd := parser.NewCommand("health", "Check the API is up")
	observationsCmd := parser.NewCommand("observations", "List cleaned readings")
	statsCmd := parser.NewCommand("stats", "Summary statistics of every analysed field")
	outliersCmd := parser.NewCommand("outliers", "List the outliers of a field")
	queryCmd := parser.NewCommand("query", "Query the readings using JMESPath")

	var start *string = observationsCmd.String("s", "start", &argparse.Options{
		Help: "Earliest timestamp to include",
	})
	var end *string = observationsCmd.String("e", "end", &argparse.Options{
		Help: "Latest timestamp to include",
	})
	var minTemp *string = observationsCmd.String("t", "min_temp", &argparse.Options{Help: "Minimum temperature"})
	var maxTemp *string = observationsCmd.String("T", "max_temp", &argparse.Options{Help: "Maximum temperature"})
	var minSal *string = observationsCmd.String("n", "min_sal", &argparse.Options{Help: "Minimum salinity"})
	var maxSal *string = observationsCmd.String("N", "max_sal", &argparse.Options{Help: "Maximum salinity"})
	var minOdo *string = observationsCmd.String("o", "min_odo", &argparse.Options{Help: "Minimum dissolved oxygen"})
	var maxOdo *string = observationsCmd.String("O", "max_odo", &argparse.Options{Help: "Maximum dissolved oxygen"})
	var observationsLimit *int = observationsCmd.Int("l", "limit", &argparse.Options{Help: "Page size"})
	var observationsSkip *int = observationsCmd.Int("k", "skip", &argparse.Options{Help: "Number of readings to skip"})

	var field *string = outliersCmd.Selector("f", "field", lib.Map(reading.AnalysedFields, func(f reading.Field) string { return string(f) }), &argparse.Options{
		Required: true,
		Help:     "Field to detect outliers in",
	})
	var method *string = outliersCmd.Selector("m", "method", []string{string(stats.IQR), string(stats.ZSCORE)}, &argparse.Options{
		Default: string(stats.IQR),
		Help:    "Outlier detection method",
	})
	var k *string = outliersCmd.String("k", "k", &argparse.Options{Help: "IQR fence multiplier"})
	var z *string = outliersCmd.String("z", "z", &argparse.Options{Help: "Z-score threshold"})
	var outliersLimit *int = outliersCmd.Int("l", "limit", &argparse.Options{Help: "Page size"})
	var outliersSkip *int = outliersCmd.Int("s", "skip", &argparse.Options{Help: "Number of outliers to skip"})

	var expression *string = queryCmd.String("q", "query", &argparse.Options{
		Required: true,
		Help:     "JMESPath expression evaluated over the readings",
	})

	err := parser.Parse(os.Args)

	if err != nil {
		fmt.Print(parser.Usage(err))
		return
	}

	waterClient := client.NewHttpWaterClient(*address, nil)
	ctx := context.Background()

	if healthCmd.Happened() {
		printJson(waterClient.Health(ctx))
	}

	if observationsCmd.Happened() {
		params := client.ObservationsParams{
			Start: *start,
			End:   *end,
			Limit: optionalInt(*observationsLimit),
			Skip:  optionalInt(*observationsSkip),
		}

		bounds := map[*string]**float64{
			minTemp: &params.MinTemp,
			maxTemp: &params.MaxTemp,
			minSal:  &params.MinSal,
			maxSal:  &params.MaxSal,
			minOdo:  &params.MinOdo,
			maxOdo:  &params.MaxOdo,
		}

		for flag, bound := range bounds {
			if *bound, err = optionalFloat(*flag); err != nil {
				fmt.Println(err.Error())
				return
			}
		}

		printJson(waterClient.Observations(ctx, params))
	}

	if statsCmd.Happened() {
		printJson(waterClient.Stats(ctx))
	}

	if outliersCmd.Happened() {
		params := client.OutliersParams{
			Field:  reading.Field(*field),
			Method: stats.Method(*method),
			Limit:  optionalInt(*outliersLimit),
			Skip:   optionalInt(*outliersSkip),
		}

		if params.K, err = optionalFloat(*k); err != nil {
			fmt.Println(err.Error())
			return
		}

		if params.Z, err = optionalFloat(*z); err != nil {
			fmt.Println(err.Error())
			return
		}

		printJson(waterClient.Outliers(ctx, params))
	}

	if queryCmd.Happened() {
		printJson(waterClient.Query(ctx, *expression))
	}
}
