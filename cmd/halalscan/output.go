package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/franckalain/halalscan/internal/history"
	"github.com/franckalain/halalscan/internal/models"
)

type historyOutput struct {
	Items []models.ScanHistoryRecord `json:"items"`
	Stats history.Stats              `json:"stats"`
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(w io.Writer, r models.AnalysisResult) {
	fmt.Fprintf(w, "Status:     %s (%d%%)\n", r.Status, r.Confidence)
	fmt.Fprintf(w, "Reason:     %s\n", r.MainReason)
	fmt.Fprintln(w, "Ingredients:")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(w, "  - %s [%s] %s\n", ing.Name, ing.Status, ing.Reason)
	}
}

func printRecord(w io.Writer, rec models.ScanHistoryRecord) {
	fmt.Fprintf(w, "Scan:       %s\n", rec.ID)
	fmt.Fprintf(w, "Time:       %s\n", formatTimestamp(rec.Timestamp))
	printResult(w, rec.Result)
}

func printHistory(w io.Writer, records []models.ScanHistoryRecord, stats history.Stats) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no scans yet")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tSTATUS\tCONFIDENCE")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d%%\n", rec.ID, formatTimestamp(rec.Timestamp), rec.Result.Status, rec.Result.Confidence)
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%d scans: %d halal, %d suspicious, %d haram\n",
		stats.Total,
		stats.Counts[models.StatusHalal],
		stats.Counts[models.StatusSuspicious],
		stats.Counts[models.StatusHaram])
}

func formatTimestamp(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}
