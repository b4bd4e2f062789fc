package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/medsupply-backend/internal/app"
)

func main() {
	var timeout time.Duration
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "give up after this long")
	flag.Parse()

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	rep, err := application.Services.Alerts.Check(ctx)
	if err != nil {
		fmt.Printf("inventory alert check: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("low_stock=%d expiring=%d capacity=%d already_open=%d created=%d\n",
		rep.LowStock, rep.Expiring, rep.Capacity, rep.Existing, rep.Created())
}
