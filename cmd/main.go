package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"strconv"
	"strings"

	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/landwatch/landwatch-api-poc/internal/cache"
	"github.com/landwatch/landwatch-api-poc/internal/change"
	"github.com/landwatch/landwatch-api-poc/internal/delivery"
	"github.com/landwatch/landwatch-api-poc/internal/notification"
	"github.com/landwatch/landwatch-api-poc/internal/properties"
	"github.com/landwatch/landwatch-api-poc/internal/stac"
	"github.com/landwatch/landwatch-api-poc/internal/wards"
	"github.com/landwatch/landwatch-api-poc/output"
)

func printBanner() {
	figure1 := figure.NewFigure("Landwatch", "isometric1", true)
	figure2 := figure.NewFigure("CLI", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

func promptString(reader *bufio.Reader, label string) string {
	fmt.Printf("\033[34m%s\033[0m", label)
	value, _ := reader.ReadString('\n')
	return strings.TrimSpace(value)
}

func promptInt(reader *bufio.Reader, label string, fallback int) int {
	raw := promptString(reader, label)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Printf("\n\033[31mInvalid number %q, using %d.\033[0m\n", raw, fallback)
		return fallback
	}
	return value
}

func promptFloat(reader *bufio.Reader, label string, fallback float64) float64 {
	raw := promptString(reader, label)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fmt.Printf("\n\033[31mInvalid number %q, using %.2f.\033[0m\n", raw, fallback)
		return fallback
	}
	return value
}

func analyzeCity(reader *bufio.Reader, analyzer *delivery.Analyzer) {
	fmt.Println("\033[33m\nWarning:\033[0m")
	fmt.Println("\033[33m- One scene is selected per time point; clouds in that scene degrade the result.\033[0m")
	fmt.Println("\033[33m- Ward-level statistics need a boundary '.geojson' file in data/boundaries.\n\033[0m")

	cityName := promptString(reader, "Enter the city name: ")
	city, err := properties.CityByName(cityName)
	if err != nil {
		fmt.Printf("\n\033[31m%s\033[0m\n", err.Error())
		return
	}

	beforeYear := promptInt(reader, "Enter the before year (default 2019): ", 2019)
	afterYear := promptInt(reader, "Enter the after year (default 2024): ", 2024)
	threshold := promptFloat(reader, "Enter the change threshold 0.1-0.4 (default 0.2): ", change.DefaultThreshold)
	cloudCover := promptFloat(reader, "Enter the cloud cover ceiling in percent (default 10): ", delivery.DefaultMaxCloudCover)

	request := delivery.AnalysisRequest{
		City:          city.Name,
		BBox:          city.BBox,
		BeforeYear:    beforeYear,
		AfterYear:     afterYear,
		MaxCloudCover: cloudCover,
		Thresholds:    change.Thresholds{Vegetation: threshold, Urban: threshold},
		WardFile:      city.WardFile,
	}

	result, err := analyzer.AnalyzeCity(context.Background(), request)
	if err != nil {
		if errors.Is(err, stac.ErrNoSceneFound) {
			fmt.Printf("\n\033[31mNo satellite scene matched the filters: %s\033[0m\n", err.Error())
			fmt.Println("\033[33mTry a higher cloud cover ceiling or a different year.\033[0m")
			return
		}
		fmt.Printf("\n\033[31mError analyzing city: %s\033[0m\n", err.Error())
		notification.SendDiscordErrorNotification(fmt.Sprintf("Landwatch CLI\n\nError analyzing %s: %s", city.Name, err.Error()))
		return
	}

	fmt.Printf("\n\033[32mAnalysis of %s, %d → %d\033[0m\n", result.City, beforeYear, afterYear)
	fmt.Printf("\033[32mBefore scene: %s (%s, %.1f%% clouds)\033[0m\n", result.Before.ID, result.Before.Date.Format("2006-01-02"), result.Before.CloudCover)
	fmt.Printf("\033[32mAfter scene:  %s (%s, %.1f%% clouds)\033[0m\n", result.After.ID, result.After.Date.Format("2006-01-02"), result.After.CloudCover)
	fmt.Printf("\033[32mVegetation loss: %.2f%%  gain: %.2f%%  urban growth: %.2f%% (%d pixels)\033[0m\n",
		result.Overall.LossPct, result.Overall.GainPct, result.Overall.GrowthPct, result.Overall.TotalPixels)

	resultDir := filepath.Join(properties.RootPath(), "data", "result")
	if err := os.MkdirAll(resultDir, os.ModePerm); err != nil {
		fmt.Printf("\n\033[31mError creating result folder: %s\033[0m\n", err.Error())
		return
	}

	baseName := fmt.Sprintf("%s_%d_%d", strings.ToLower(result.City), beforeYear, afterYear)
	artifacts := []string{}

	changeMapPath := filepath.Join(resultDir, baseName+"_change.png")
	if err := output.CreateChangeImage(result.VegetationChange, changeMapPath); err != nil {
		fmt.Printf("\n\033[31mError creating change map: %s\033[0m\n", err.Error())
	} else {
		artifacts = append(artifacts, changeMapPath)
	}

	classMapPath := filepath.Join(resultDir, baseName+"_classes.png")
	if err := output.CreateClassMapImage(result.VegetationChange, result.UrbanChange, result.Thresholds, classMapPath); err != nil {
		fmt.Printf("\n\033[31mError creating class map: %s\033[0m\n", err.Error())
	} else {
		artifacts = append(artifacts, classMapPath)
	}

	if len(result.Zones) > 0 {
		csvPath := filepath.Join(resultDir, baseName+"_wards.csv")
		if err := output.CreateZoneSummaryCSV(result.Zones, csvPath); err != nil {
			fmt.Printf("\n\033[31mError creating ward CSV: %s\033[0m\n", err.Error())
		} else {
			artifacts = append(artifacts, csvPath)
		}

		wardList, err := wards.Load(request.WardFile)
		if err == nil {
			geojsonPath := filepath.Join(resultDir, baseName+"_wards.geojson")
			if err := output.CreateWardGeoJson(wardList, result.Zones, geojsonPath); err != nil {
				fmt.Printf("\n\033[31mError creating ward GeoJSON: %s\033[0m\n", err.Error())
			} else {
				artifacts = append(artifacts, geojsonPath)
			}
		}

		ranked := make([]change.ZoneStats, len(result.Zones))
		copy(ranked, result.Zones)
		sort.Slice(ranked, func(i, j int) bool { return ranked[i].LossPct > ranked[j].LossPct })

		fmt.Println("\033[32m\nTop wards by vegetation loss:\033[0m")
		for i, zone := range ranked {
			if i >= 5 {
				break
			}
			fmt.Printf("\033[32m- %s (%s): loss %.2f%%, gain %.2f%%, growth %.2f%%\033[0m\n",
				zone.Ward, zone.Zone, zone.LossPct, zone.GainPct, zone.GrowthPct)
		}
	}

	fmt.Printf("\n\033[32mSuccessful analysis! Artifacts:\033[0m\n")
	for _, artifact := range artifacts {
		fmt.Printf("\033[32m- %s\033[0m\n", artifact)
	}
	notification.SendDiscordSuccessNotification(fmt.Sprintf("Landwatch CLI\n\nSuccessful analysis of %s!\nArtifacts:\n%s", result.City, strings.Join(artifacts, "\n")))
}

func wardReport(reader *bufio.Reader, analyzer *delivery.Analyzer) {
	cityName := promptString(reader, "Enter the city name: ")
	city, err := properties.CityByName(cityName)
	if err != nil {
		fmt.Printf("\n\033[31m%s\033[0m\n", err.Error())
		return
	}
	if city.WardFile == "" {
		fmt.Printf("\n\033[31mNo boundary file found for %s.\033[0m\n", city.Name)
		fmt.Println("\033[33mAdd a '<city>.geojson' boundary file at 'data/boundaries' to enable ward statistics.\033[0m")
		return
	}

	beforeYear := promptInt(reader, "Enter the before year (default 2019): ", 2019)
	afterYear := promptInt(reader, "Enter the after year (default 2024): ", 2024)
	threshold := promptFloat(reader, "Enter the change threshold 0.1-0.4 (default 0.2): ", change.DefaultThreshold)

	result, err := analyzer.AnalyzeCity(context.Background(), delivery.AnalysisRequest{
		City:       city.Name,
		BBox:       city.BBox,
		BeforeYear: beforeYear,
		AfterYear:  afterYear,
		Thresholds: change.Thresholds{Vegetation: threshold, Urban: threshold},
		WardFile:   city.WardFile,
	})
	if err != nil {
		if errors.Is(err, stac.ErrNoSceneFound) {
			fmt.Printf("\n\033[31mNo satellite scene matched the filters: %s\033[0m\n", err.Error())
			return
		}
		fmt.Printf("\n\033[31mError analyzing city: %s\033[0m\n", err.Error())
		notification.SendDiscordErrorNotification(fmt.Sprintf("Landwatch CLI\n\nError building ward report for %s: %s", city.Name, err.Error()))
		return
	}

	ranked := make([]change.ZoneStats, len(result.Zones))
	copy(ranked, result.Zones)
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].LossPct > ranked[j].LossPct })

	fmt.Printf("\n\033[32mWard report for %s, %d → %d (%d wards)\033[0m\n", result.City, beforeYear, afterYear, len(ranked))
	fmt.Printf("\033[32m%-30s %-15s %8s %8s %8s\033[0m\n", "Ward", "Zone", "Loss%", "Gain%", "Growth%")
	for _, zone := range ranked {
		fmt.Printf("\033[32m%-30s %-15s %8.2f %8.2f %8.2f\033[0m\n", zone.Ward, zone.Zone, zone.LossPct, zone.GainPct, zone.GrowthPct)
	}

	resultDir := filepath.Join(properties.RootPath(), "data", "result")
	if err := os.MkdirAll(resultDir, os.ModePerm); err != nil {
		fmt.Printf("\n\033[31mError creating result folder: %s\033[0m\n", err.Error())
		return
	}
	csvPath := filepath.Join(resultDir, fmt.Sprintf("%s_%d_%d_wards.csv", strings.ToLower(result.City), beforeYear, afterYear))
	if err := output.CreateZoneSummaryCSV(result.Zones, csvPath); err != nil {
		fmt.Printf("\n\033[31mError creating ward CSV: %s\033[0m\n", err.Error())
		return
	}
	fmt.Printf("\n\033[32mWard summary written to %s\033[0m\n", csvPath)
}

func initCLI(analyzer *delivery.Analyzer) {
	defer func() {
		if r := recover(); r != nil {
			pc, file, line, ok := runtime.Caller(3) // 3 levels up is often the panic source
			var location string
			if ok {
				fn := runtime.FuncForPC(pc)
				location = fmt.Sprintf("%s:%d in %s", file, line, fn.Name())
			} else {
				location = "Unknown location"
			}

			fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
			fmt.Printf("\033[31mLocation: %s\033[0m\n", location)
			fmt.Printf("\033[31mPlease check the input and try again.\033[0m\n")
			fmt.Printf("\033[31mExiting...\033[0m\n")

			stack := debug.Stack()
			errMessage := fmt.Sprintf("Landwatch CLI panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, stack)
			if err := notification.SendDiscordErrorNotification(errMessage); err != nil {
				fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
			}
		}
	}()
	printBanner()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Println("\033[34m===================\033[0m")
		fmt.Println("\033[34m1. Analyze land change for a city\033[0m")
		fmt.Println("\033[34m2. Ward-level change report for a city\033[0m")
		fmt.Println("\033[34m3. List available cities\033[0m")
		fmt.Println("\033[34m4. Exit\033[0m")
		fmt.Println("\033[34mEnter your choice:\033[0m")

		var choice int
		_, err := fmt.Scan(&choice)
		if err != nil {
			fmt.Printf("\n\033[31mInvalid input. Please enter a number.\033[0m\n")
			fmt.Scanln()
			continue
		}
		fmt.Scanln() // consume trailing newline before free-form prompts

		switch choice {
		case 1:
			analyzeCity(reader, analyzer)
		case 2:
			wardReport(reader, analyzer)
		case 3:
			fmt.Println("\033[33m\nWarning:\033[0m")
			fmt.Println("\033[33mTo enable ward statistics, add a '<city>.geojson' boundary file at 'data/boundaries'.\033[0m")
			fmt.Println("\n\033[32mAvailable cities:\033[0m")
			for _, name := range properties.AvailableCities() {
				fmt.Printf("\033[32m- %s\033[0m\n", name)
			}
		case 4:
			println("Exiting...")
			return
		default:
			println("Invalid choice. Please try again.")
		}
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			fmt.Println("\033[33mNo .env file found, relying on the process environment.\033[0m")
		}
	}

	catalog := stac.NewClientFromEnv(context.Background())
	store := cache.NewFileCache[delivery.AnalysisResult](filepath.Join(properties.RootPath(), "data", "cache", "analysis"))
	analyzer := delivery.NewAnalyzer(catalog, store)

	initCLI(analyzer)
}
