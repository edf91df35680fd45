package league

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// League is a competition the scrapers know how to reach.
type League struct {
	Name string `yaml:"name"`
	// WhoScoredURL is the tournament page holding the season dropdown.
	WhoScoredURL string `yaml:"whoscored_url"`
	// FBrefHistoryURL lists every season; empty when FBref stats are not
	// scraped for the league.
	FBrefHistoryURL string   `yaml:"fbref_history_url"`
	FBrefFinders    []string `yaml:"fbref_finders"`
	CalendarYear    bool     `yaml:"calendar_year"`
	// CalendarYears marks individual seasons played inside one calendar year.
	CalendarYears []int `yaml:"calendar_years"`
}

func (l League) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("league name is required")
	}
	if l.WhoScoredURL == "" && l.FBrefHistoryURL == "" {
		return fmt.Errorf("league %s: at least one source url is required", l.Name)
	}
	if l.FBrefHistoryURL != "" && len(l.FBrefFinders) == 0 {
		return fmt.Errorf("league %s: fbref finders are required", l.Name)
	}
	return nil
}

// SeasonLabel is the WhoScored dropdown text for the season ending in year:
// "2023/2024", or "2024" for calendar-year competitions.
func (l League) SeasonLabel(year int) string {
	if l.CalendarYear || slices.Contains(l.CalendarYears, year) {
		return strconv.Itoa(year)
	}
	return strconv.Itoa(year-1) + "/" + strconv.Itoa(year)
}

// FBrefSeasonLabels are the history-table texts accepted for year.
func FBrefSeasonLabels(year int) []string {
	return []string{strconv.Itoa(year-1) + "-" + strconv.Itoa(year), strconv.Itoa(year)}
}

func (l League) HasFBref() bool {
	return l.FBrefHistoryURL != ""
}

func (l League) HasWhoScored() bool {
	return l.WhoScoredURL != ""
}
