package benchmark

import (
	"fmt"
	"io"
	"time"
)

const (
	labelWidth = 22

	ruleHeavy = "============================================"
	ruleLight = "--------------------------------------------"
)

// PrintReport writes the summary of results to w: the total, then every
// category followed by its tests.
func PrintReport(w io.Writer, results *Results, repeatCount int) {
	fmt.Fprintln(w, ruleHeavy)
	fmt.Fprintln(w, "RESULTS (means and 95% confidence intervals)")
	fmt.Fprintln(w, ruleLight)
	printLine(w, "Total:", results.Times, repeatCount)
	fmt.Fprintln(w, ruleLight)

	for _, category := range results.Categories() {
		printLine(w, "  "+category.Name+":", category.Times, repeatCount)
		for _, test := range category.Tests() {
			printLine(w, "    "+test.Name+":", test.Times, repeatCount)
		}
	}
}

// printLine writes label, padded to the label column, and the summary of times.
func printLine(w io.Writer, label string, times []time.Duration, repeatCount int) {
	fmt.Fprintf(w, "%-*s%s\n", labelWidth, label, FormatTimes(times, repeatCount))
}
