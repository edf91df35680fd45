package match

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
	"github.com/riskibarqy/football-scraper/internal/domain/lookup"
)

var droppedRawFields = map[string]struct{}{
	"cardType":       {},
	"endX":           {},
	"endY":           {},
	"expandedMinute": {},
	"goalMouthZ":     {},
	"goalMouthY":     {},
	"blockedX":       {},
	"blockedY":       {},
	"id":             {},
	"relatedEventId": {},
}

var droppedColumns = map[string]struct{}{
	"JerseyNumber":        {},
	"PlayerPosition":      {},
	"FormationSlot":       {},
	"TeamPlayerFormation": {},
	"InvolvedPlayers":     {},
	"TeamFormation":       {},
	"RelatedEventId":      {},
}

// Integer columns besides every column whose name contains "Id".
var integerColumns = map[string]struct{}{
	"PlayerCaughtOffside":  {},
	"OppositeRelatedEvent": {},
	"ShotAssist":           {},
}

// Normalizer flattens match centre events. The qualifier store is shared by
// every match of a run so codes stay consistent across seasons.
type Normalizer struct {
	qualifiers *lookup.Store
}

func NewNormalizer(qualifiers *lookup.Store) *Normalizer {
	return &Normalizer{qualifiers: qualifiers}
}

func (n *Normalizer) Normalize(raw Raw) ([]Event, error) {
	if raw.CentreData == nil {
		return nil, fmt.Errorf("%w: match %d has no centre data", ErrMalformedRaw, raw.MatchID)
	}

	events := make([]Event, 0, len(raw.CentreData.Events))
	for i, rawEvent := range raw.CentreData.Events {
		ev, err := n.normalizeEvent(raw.MatchID, rawEvent)
		if err != nil {
			return nil, fmt.Errorf("match %d event %d: %w", raw.MatchID, i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func (n *Normalizer) normalizeEvent(matchID int64, rawEvent map[string]any) (Event, error) {
	ev := Event{MatchID: matchID, Extra: make(map[string]any)}

	periodName := displayName(rawEvent["period"])
	period, err := ParsePeriod(periodName)
	if err != nil {
		return Event{}, err
	}
	ev.Period = period
	ev.Type = displayName(rawEvent["type"])
	outcome := displayName(rawEvent["outcomeType"])
	ev.Successful = outcome == "Successful" || outcome == " Successful"
	ev.SatisfiedTypes = intList(rawEvent["satisfiedEventsTypes"])

	for key, value := range rawEvent {
		if _, drop := droppedRawFields[key]; drop {
			continue
		}
		switch key {
		case "period", "type", "outcomeType", "qualifiers", "satisfiedEventsTypes", "matchId":
			continue
		case "eventId":
			ev.EventID = int64Ptr(value)
		case "minute":
			ev.Minute = int(toInt64(value))
		case "second":
			if v := int64Ptr(value); v != nil {
				sec := int(*v)
				ev.Second = &sec
			}
		case "teamId":
			ev.TeamID = toInt64(value)
		case "playerId":
			ev.PlayerID = int64Ptr(value)
		case "x":
			ev.X, _ = dataset.Float(value)
		case "y":
			ev.Y, _ = dataset.Float(value)
		case "isTouch":
			ev.IsTouch, _ = value.(bool)
		default:
			if value == nil {
				continue
			}
			ev.Extra[Capitalize(key)] = value
		}
	}

	flags, promoted := splitQualifiers(rawEvent["qualifiers"])
	for name, value := range promoted {
		ev.Extra[Capitalize(name)] = value
	}
	ev.Qualifiers = make([]int, 0, len(flags))
	for _, flag := range flags {
		ev.Qualifiers = append(ev.Qualifiers, n.qualifiers.AssignIfAbsent(flag))
	}

	for col := range ev.Extra {
		if _, drop := droppedColumns[col]; drop {
			delete(ev.Extra, col)
		}
	}
	if zone, ok := ev.Extra["Zone"]; ok {
		delete(ev.Extra, "Zone")
		if s, ok := zone.(string); ok && s != "" {
			r, _ := utf8.DecodeRuneInString(s)
			ev.Zone = string(r)
		}
	}
	for col, value := range ev.Extra {
		if isIntegerColumn(col) {
			ev.Extra[col] = castInteger(value)
		}
	}
	return ev, nil
}

// splitQualifiers separates flag qualifiers from valued ones. A missing or
// empty value counts as true; true and the literal "0" stay flags.
func splitQualifiers(v any) ([]string, map[string]any) {
	items, _ := v.([]any)
	flags := make([]string, 0, len(items))
	promoted := make(map[string]any)
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		q, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := displayName(q["type"])
		if name == "" {
			continue
		}
		value, hasValue := q["value"]
		isFlag := !hasValue || value == nil || value == "" || value == true || value == "0"
		if !isFlag {
			promoted[name] = qualifierValue(value)
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		flags = append(flags, name)
	}
	return flags, promoted
}

func qualifierValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f
	}
	return s
}

// Capitalize upper-cases the first letter of a raw field name.
func Capitalize(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

func isIntegerColumn(col string) bool {
	if strings.Contains(col, "Id") {
		return true
	}
	_, ok := integerColumns[col]
	return ok
}

func castInteger(v any) any {
	f, ok := dataset.Float(v)
	if !ok || f != math.Trunc(f) {
		return v
	}
	return int64(f)
}

func displayName(v any) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	s, _ := obj["displayName"].(string)
	return s
}

func toInt64(v any) int64 {
	f, _ := dataset.Float(v)
	return int64(f)
}

func int64Ptr(v any) *int64 {
	f, ok := dataset.Float(v)
	if !ok {
		return nil
	}
	n := int64(f)
	return &n
}

func intList(v any) []int {
	items, _ := v.([]any)
	out := make([]int, 0, len(items))
	for _, item := range items {
		if f, ok := dataset.Float(item); ok {
			out = append(out, int(f))
		}
	}
	return out
}
