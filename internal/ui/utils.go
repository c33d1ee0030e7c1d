package ui

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/forest-guardian/landcover-change/internal/indexes"
	"github.com/forest-guardian/landcover-change/internal/properties"
)

// Colors for consistent UI
const (
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorReset  = "\033[0m"
)

var stdin = bufio.NewReader(os.Stdin)

func PrintWarning(message string) {
	fmt.Printf("%s\nWarning:%s\n", ColorYellow, ColorReset)
	fmt.Printf("%s%s%s\n", ColorYellow, message, ColorReset)
}

func PrintError(message string) {
	fmt.Printf("\n%sError: %s%s\n", ColorRed, message, ColorReset)
}

func PrintSuccess(message string) {
	fmt.Printf("\n%s%s%s\n", ColorGreen, message, ColorReset)
}

func PrintInfo(message string) {
	fmt.Printf("%s%s%s", ColorBlue, message, ColorReset)
}

// ReadString reads a trimmed line from stdin
func ReadString(prompt string) string {
	PrintInfo(prompt)
	input, _ := stdin.ReadString('\n')
	return strings.TrimSpace(input)
}

// ReadInt reads an integer in [min, max] from stdin
func ReadInt(prompt string, min, max int) (int, error) {
	input := ReadString(prompt)
	value, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("value must be between %d and %d", min, max)
	}
	return value, nil
}

// ReadOptionalDate reads a YYYY-MM-DD date; an empty answer returns the zero time.
func ReadOptionalDate(prompt string) (time.Time, error) {
	return parseOptionalDate(ReadString(prompt))
}

func parseOptionalDate(input string) (time.Time, error) {
	if input == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse(time.DateOnly, input)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s. Please use YYYY-MM-DD", input)
	}
	return date, nil
}

// ReadIndexNames reads a comma separated list of index names; empty means all.
func ReadIndexNames(prompt string) []indexes.Name {
	return parseIndexNames(ReadString(prompt))
}

func parseIndexNames(input string) []indexes.Name {
	var names []indexes.Name
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, indexes.Name(strings.ToUpper(part)))
		}
	}
	return names
}

// listFiles returns the names of files in dir with one of the given extensions.
func listFiles(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, want := range exts {
			if ext == want {
				names = append(names, entry.Name())
				break
			}
		}
	}
	return names, nil
}

// SelectZoneLayer lists the GeoJSON files under data/vector and returns the chosen path,
// or "" for the default zone grid.
func SelectZoneLayer() (string, error) {
	files, err := listFiles(properties.ZonesPath(), ".geojson", ".json")
	if err != nil || len(files) == 0 {
		PrintWarning("No zone layers found in data/vector. A 4x4 grid over the scene extent will be used.")
		return "", nil
	}

	fmt.Printf("%s\nAvailable zone layers:%s\n", ColorGreen, ColorReset)
	fmt.Printf("%s0. 4x4 grid over the scene extent%s\n", ColorGreen, ColorReset)
	for i, file := range files {
		fmt.Printf("%s%d. %s%s\n", ColorGreen, i+1, file, ColorReset)
	}

	choice, err := ReadInt("Enter the number of the zone layer: ", 0, len(files))
	if err != nil {
		return "", err
	}
	if choice == 0 {
		return "", nil
	}
	return filepath.Join(properties.ZonesPath(), files[choice-1]), nil
}
