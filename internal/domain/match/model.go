package match

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

var (
	ErrUnknownPeriod = errors.New("unknown period")
	ErrMalformedRaw  = errors.New("malformed match payload")
)

// Raw is the object assigned to require.config.params["args"] on a match
// centre page.
type Raw struct {
	MatchID        int64             `json:"matchId"`
	CentreData     *CentreData       `json:"matchCentreData"`
	EventTypes     map[string]int    `json:"matchCentreEventTypeJson"`
	FormationNames map[string]string `json:"formationIdNameMappings"`

	// Payload is the JSON the value was decoded from. It is what the season
	// cache stores.
	Payload json.RawMessage `json:"-"`
}

// DecodeRaw parses a quoted match centre payload.
func DecodeRaw(payload []byte) (Raw, error) {
	var raw Raw
	if err := sonic.Unmarshal(payload, &raw); err != nil {
		return Raw{}, fmt.Errorf("%w: %v", ErrMalformedRaw, err)
	}
	raw.Payload = append(json.RawMessage(nil), payload...)
	return raw, nil
}

// Played reports whether the payload carries match centre data. Fixtures that
// have not kicked off yet come back with a null matchCentreData.
func (r Raw) Played() bool {
	return r.CentreData != nil
}

type CentreData struct {
	Events      []map[string]any  `json:"events"`
	Home        Side              `json:"home"`
	Away        Side              `json:"away"`
	PlayerNames map[string]string `json:"playerIdNameDictionary"`
	TimeStamp   string            `json:"timeStamp"`
	Attendance  *int64            `json:"attendance"`
	VenueName   string            `json:"venueName"`
	Referee     *Referee          `json:"referee"`
	HTScore     string            `json:"htScore"`
	FTScore     string            `json:"ftScore"`
}

type Side struct {
	TeamID      int64       `json:"teamId"`
	Name        string      `json:"name"`
	ManagerName string      `json:"managerName"`
	AverageAge  float64     `json:"averageAge"`
	Formations  []Formation `json:"formations"`
}

type Formation struct {
	FormationID         int `json:"formationId"`
	StartMinuteExpanded int `json:"startMinuteExpanded"`
	EndMinuteExpanded   int `json:"endMinuteExpanded"`
}

type Referee struct {
	Name string `json:"name"`
}

type Period int

const (
	PeriodPreMatch Period = iota
	PeriodFirstHalf
	PeriodSecondHalf
	PeriodPostGame
	PeriodFirstExtraTime
	PeriodSecondExtraTime
	PeriodPenaltyShootout
)

var periodByName = map[string]Period{
	"PreMatch":                PeriodPreMatch,
	"FirstHalf":               PeriodFirstHalf,
	"SecondHalf":              PeriodSecondHalf,
	"PostGame":                PeriodPostGame,
	"FirstPeriodOfExtraTime":  PeriodFirstExtraTime,
	"SecondPeriodOfExtraTime": PeriodSecondExtraTime,
	"PenaltyShootout":         PeriodPenaltyShootout,
}

func ParsePeriod(displayName string) (Period, error) {
	p, ok := periodByName[displayName]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPeriod, displayName)
	}
	return p, nil
}

// Event is one normalized on-pitch event. Extra carries the promoted
// qualifier values and any raw numeric fields not modelled explicitly, keyed
// by their capitalized column name.
type Event struct {
	MatchID        int64
	EventID        *int64
	Period         Period
	Minute         int
	Second         *int
	Type           string
	Successful     bool
	Qualifiers     []int
	SatisfiedTypes []int
	TeamID         int64
	PlayerID       *int64
	X              float64
	Y              float64
	Zone           string
	IsTouch        bool
	Extra          map[string]any
}
