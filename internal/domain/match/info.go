package match

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
	"github.com/riskibarqy/football-scraper/internal/domain/lookup"
)

var kickoffLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006 15:04:05",
}

var infoColumns = []string{
	"MatchId", "Time", "Attendance", "Venue", "Referee",
	"Home", "Home_Info", "Away", "Away_Info",
	"Home_HT_Score", "Away_HT_Score", "Home_FT_Score", "Away_FT_Score",
}

type FormationSpan struct {
	Formation int `json:"formation"`
	End       int `json:"end"`
}

type SideInfo struct {
	Manager    string          `json:"manager"`
	AvgAge     float64         `json:"AvgAge"`
	Formations []FormationSpan `json:"formation"`
}

// Info is one row of the Matches lookup table.
type Info struct {
	MatchID     int64
	Kickoff     time.Time
	Attendance  *int64
	Venue       *int
	Referee     *int
	Home        int64
	HomeInfo    SideInfo
	Away        int64
	AwayInfo    SideInfo
	HomeHTScore int
	AwayHTScore int
	HomeFTScore int
	AwayFTScore int
}

func BuildInfo(raw Raw, referees, stadiums *lookup.Store) (Info, error) {
	data := raw.CentreData
	if data == nil {
		return Info{}, fmt.Errorf("%w: match %d has no centre data", ErrMalformedRaw, raw.MatchID)
	}

	kickoff, err := parseKickoff(data.TimeStamp)
	if err != nil {
		return Info{}, fmt.Errorf("match %d: %w", raw.MatchID, err)
	}
	info := Info{
		MatchID:    raw.MatchID,
		Kickoff:    kickoff,
		Attendance: data.Attendance,
		Home:       data.Home.TeamID,
		HomeInfo:   sideInfo(data.Home),
		Away:       data.Away.TeamID,
		AwayInfo:   sideInfo(data.Away),
	}

	info.Venue = optionalCode(stadiums, data.VenueName)
	if data.Referee != nil {
		info.Referee = optionalCode(referees, data.Referee.Name)
	}

	if info.HomeHTScore, info.AwayHTScore, err = splitScore(data.HTScore); err != nil {
		return Info{}, fmt.Errorf("match %d half-time score: %w", raw.MatchID, err)
	}
	if info.HomeFTScore, info.AwayFTScore, err = splitScore(data.FTScore); err != nil {
		return Info{}, fmt.Errorf("match %d full-time score: %w", raw.MatchID, err)
	}
	return info, nil
}

func (i Info) Row() dataset.Row {
	row := dataset.Row{
		"MatchId":       i.MatchID,
		"Time":          i.Kickoff,
		"Home":          i.Home,
		"Home_Info":     i.HomeInfo.value(),
		"Away":          i.Away,
		"Away_Info":     i.AwayInfo.value(),
		"Home_HT_Score": int64(i.HomeHTScore),
		"Away_HT_Score": int64(i.AwayHTScore),
		"Home_FT_Score": int64(i.HomeFTScore),
		"Away_FT_Score": int64(i.AwayFTScore),
	}
	row["Attendance"] = nil
	if i.Attendance != nil {
		row["Attendance"] = *i.Attendance
	}
	row["Venue"] = intOrNil(i.Venue)
	row["Referee"] = intOrNil(i.Referee)
	return row
}

// value renders the side as a plain map so rows read back from the warehouse
// hash identically to freshly built ones.
func (s SideInfo) value() map[string]any {
	formations := make([]any, len(s.Formations))
	for i, f := range s.Formations {
		formations[i] = map[string]any{"formation": int64(f.Formation), "end": int64(f.End)}
	}
	return map[string]any{"manager": s.Manager, "AvgAge": s.AvgAge, "formation": formations}
}

func InfoTable(infos []Info) dataset.Table {
	table := dataset.New(infoColumns...)
	for _, info := range infos {
		table.Append(info.Row())
	}
	return table
}

// SeasonDirectory collects player and team names across a season's matches.
func SeasonDirectory(raws []Raw) (players, teams map[string]string) {
	players = make(map[string]string)
	teams = make(map[string]string)
	for _, raw := range raws {
		if raw.CentreData == nil {
			continue
		}
		for id, name := range raw.CentreData.PlayerNames {
			players[id] = name
		}
		for _, side := range []Side{raw.CentreData.Home, raw.CentreData.Away} {
			teams[strconv.FormatInt(side.TeamID, 10)] = side.Name
		}
	}
	return players, teams
}

// sideInfo keeps the last span of every formation id, in original order.
func sideInfo(side Side) SideInfo {
	lastIndex := make(map[int]int, len(side.Formations))
	for i, f := range side.Formations {
		lastIndex[f.FormationID] = i
	}
	spans := make([]FormationSpan, 0, len(lastIndex))
	for i, f := range side.Formations {
		if lastIndex[f.FormationID] != i {
			continue
		}
		spans = append(spans, FormationSpan{Formation: f.FormationID, End: f.EndMinuteExpanded})
	}
	return SideInfo{Manager: side.ManagerName, AvgAge: side.AverageAge, Formations: spans}
}

func optionalCode(store *lookup.Store, name string) *int {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	code := store.AssignIfAbsent(name)
	return &code
}

func splitScore(score string) (int, int, error) {
	score = strings.TrimSpace(score)
	if score == "" {
		return 0, 0, nil
	}
	parts := strings.Split(score, " : ")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: score %q", ErrMalformedRaw, score)
	}
	home, err := scorePart(parts[0])
	if err != nil {
		return 0, 0, err
	}
	away, err := scorePart(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return home, away, nil
}

func scorePart(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: score part %q", ErrMalformedRaw, s)
	}
	return n, nil
}

func parseKickoff(ts string) (time.Time, error) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, nil
	}
	for _, layout := range kickoffLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrMalformedRaw, ts)
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
