package output

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/landwatch/landwatch-api-poc/internal/change"
)

// CreateZoneSummaryCSV writes the per-ward summary table (zone name, loss %,
// gain %, growth %) as a downloadable CSV file.
func CreateZoneSummaryCSV(zones []change.ZoneStats, outputPath string) error {
	if len(zones) == 0 {
		return fmt.Errorf("no zone statistics to export")
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&zones, file); err != nil {
		return fmt.Errorf("failed to write CSV file: %v", err)
	}
	return nil
}
