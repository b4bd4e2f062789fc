package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/medsupply-backend/internal/app"
	"github.com/yungbote/medsupply-backend/internal/priority"
)

type codeList []string

func (l *codeList) String() string { return strings.Join(*l, ",") }
func (l *codeList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func printReport(r priority.Report) {
	if r.Error != "" {
		fmt.Printf("%-20s %-10s error=%s\n", r.SupplyCode, r.Outcome, r.Error)
		return
	}
	fmt.Printf("%-20s %-10s candidates=%d items=%d requests=%d\n", r.SupplyCode, r.Outcome, r.Candidates, r.ItemsUpdated, r.RequestsUpdated)
}

func main() {
	var supplies codeList
	var viaTemporal bool
	flag.Var(&supplies, "supply", "supply code to recalculate (repeatable); default is every supply with outstanding items")
	flag.BoolVar(&viaTemporal, "temporal", false, "run the sweep as a Temporal workflow and wait for it")
	flag.Parse()

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		application.Close()
	}()

	prio := application.Services.Priority

	if len(supplies) > 0 {
		failed := 0
		for _, code := range supplies {
			r := prio.Recalculate(ctx, code)
			printReport(r)
			if r.Outcome == priority.OutcomeFailed {
				failed++
			}
		}
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	if viaTemporal {
		runner := application.Services.TemporalRunner
		if runner == nil {
			fmt.Println("temporal is not configured (set TEMPORAL_ADDRESS)")
			os.Exit(1)
		}
		if err := runner.Start(ctx); err != nil {
			fmt.Printf("start temporal worker: %v\n", err)
			os.Exit(1)
		}
		res, err := runner.RunSweep(ctx)
		if err != nil {
			fmt.Printf("sweep workflow: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("sweep workflow finished: supplies=%d succeeded=%d failed=%d\n", res.Supplies, res.Succeeded, res.Failed)
		return
	}

	sweep := prio.RecalculateAllOutstanding(ctx)
	for _, r := range sweep.Reports {
		printReport(r)
	}
	if sweep.Err != nil {
		fmt.Printf("sweep: %v\n", sweep.Err)
		os.Exit(1)
	}
	fmt.Printf("sweep finished in %s: supplies=%d succeeded=%d failed=%d\n", sweep.Duration, sweep.Supplies, sweep.Succeeded, sweep.Failed)
}
