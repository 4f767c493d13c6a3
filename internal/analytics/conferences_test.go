package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConferenceOf(t *testing.T) {
	tests := []struct {
		name       string
		conference string
		known      bool
	}{
		{"Los Angeles Lakers", ConferenceWestern, true},
		{"Boston Celtics", ConferenceEastern, true},
		// Relocations and rebrands keep every dataset name resolvable.
		{"New Orleans Hornets", ConferenceWestern, true},
		{"New Orleans Pelicans", ConferenceWestern, true},
		{"Los Angeles Clippers", ConferenceWestern, true},
		{"LA Clippers", ConferenceWestern, true},
		{"New Jersey Nets", ConferenceEastern, true},
		{"Brooklyn Nets", ConferenceEastern, true},
		{"Charlotte Bobcats", ConferenceEastern, true},
		{"Charlotte Hornets", ConferenceEastern, true},
		{"Seattle SuperSonics", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		conference, ok := conferenceOf(tt.name)
		assert.Equal(t, tt.known, ok, "conferenceOf(%q)", tt.name)
		assert.Equal(t, tt.conference, conference, "conferenceOf(%q)", tt.name)
	}
}

func TestConferenceMembershipDisjoint(t *testing.T) {
	for name := range westernConferenceTeams {
		_, east := easternConferenceTeams[name]
		assert.False(t, east, "%q appears in both conferences", name)
	}
	assert.Len(t, westernConferenceTeams, 17)
	assert.Len(t, easternConferenceTeams, 17)
}
