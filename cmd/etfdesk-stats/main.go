// One-shot tool: print summary statistics for an exported trade log.
//
// Usage:
//
//	go run cmd/etfdesk-stats/main.go -csv trade_log.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"etfdesk/internal/dashboard"
	"etfdesk/internal/journal"
)

func main() {
	path := flag.String("csv", "trade_log.csv", "trade log exported from etfdesk-server")
	flag.Parse()

	f, err := os.Open(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening %s: %v\n", *path, err)
		os.Exit(1)
	}
	defer f.Close()

	trades, err := journal.ReadCSV(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading %s: %v\n", *path, err)
		os.Exit(1)
	}

	st := dashboard.RenderStats(journal.Summarize(trades))
	fmt.Printf("Total Trades:      %d\n", st.TotalTrades)
	fmt.Printf("Win Rate:          %s\n", st.WinRate)
	fmt.Printf("Avg Return:        %s\n", st.AvgReturn)
	fmt.Printf("Cumulative Return: %s\n", st.CumulativeReturn)
}
