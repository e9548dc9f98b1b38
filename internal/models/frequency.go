package models

import (
	"strings"

	"golang.org/x/text/width"
)

var frequencyAliases = []struct {
	marker    string
	frequency Frequency
}{
	{"biweekly", FrequencyBiweekly},
	{"隔週", FrequencyBiweekly},
	{"2週", FrequencyBiweekly},
	{"weekly", FrequencyWeekly},
	{"毎週", FrequencyWeekly},
	{"週1", FrequencyWeekly},
	{"monthly", FrequencyMonthly},
	{"月1", FrequencyMonthly},
	{"毎月", FrequencyMonthly},
	{"online", FrequencyOnline},
	{"オンライン", FrequencyOnline},
	{"irregular", FrequencyIrregular},
	{"不定期", FrequencyIrregular},
	{"paused", FrequencyPaused},
	{"休止", FrequencyPaused},
}

// ParseFrequency maps intake labels, English or Japanese, onto a Frequency.
// Unrecognised text is kept as written; the grid treats it as irregular.
func ParseFrequency(text string) Frequency {
	trimmed := strings.TrimSpace(width.Fold.String(text))
	if trimmed == "" {
		return ""
	}
	lowered := strings.ToLower(trimmed)
	for _, alias := range frequencyAliases {
		if strings.Contains(lowered, alias.marker) {
			return alias.frequency
		}
	}
	return Frequency(trimmed)
}

func (frequency Frequency) Known() bool {
	switch frequency {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly,
		FrequencyOnline, FrequencyIrregular, FrequencyPaused:
		return true
	}
	return false
}
