package tools

import (
	"github.com/storyloom/storyloom/internal/ledger"
	"github.com/storyloom/storyloom/internal/schema"
)

func characterKind(store schema.EntityStore[schema.Character]) entityKind[schema.Character] {
	return entityKind[schema.Character]{
		kind:    ledger.KindCharacter,
		noun:    "character",
		plural:  "characters",
		display: "character",
		idField: "character_id",
		store:   store,
		required: []schema.Field{
			str("name", "The character's name"),
		},
		editable: []schema.Field{
			str("role", "Story role, e.g. protagonist, antagonist, mentor"),
			str("description", "Short summary of who the character is"),
			str("personality", "Temperament, habits and voice"),
			str("appearance", "Physical description"),
			str("backstory", "History before the story begins"),
			str("goals", "What the character wants"),
			str("notes", "Free-form author notes"),
		},
		build: func(a Args) schema.Character {
			return schema.Character{
				Name:        a.StringOr("name", ""),
				Role:        a.StringOr("role", ""),
				Description: a.StringOr("description", ""),
				Personality: a.StringOr("personality", ""),
				Appearance:  a.StringOr("appearance", ""),
				Backstory:   a.StringOr("backstory", ""),
				Goals:       a.StringOr("goals", ""),
				Notes:       a.StringOr("notes", ""),
			}
		},
		label: func(c schema.Character) string { return c.Name },
		entry: func(id int64, c schema.Character) ledger.Entry {
			return ledger.Entry{ID: id, Name: c.Name}
		},
	}
}

func locationKind(store schema.EntityStore[schema.Location]) entityKind[schema.Location] {
	return entityKind[schema.Location]{
		kind:    ledger.KindLocation,
		noun:    "location",
		plural:  "locations",
		display: "location",
		idField: "location_id",
		store:   store,
		required: []schema.Field{
			str("name", "The location's name"),
		},
		editable: []schema.Field{
			str("location_type", "Kind of place, e.g. city, tavern, forest"),
			str("description", "What the place looks like"),
			str("atmosphere", "Mood, sounds and smells"),
			str("significance", "Why the place matters to the story"),
			str("notes", "Free-form author notes"),
		},
		build: func(a Args) schema.Location {
			return schema.Location{
				Name:         a.StringOr("name", ""),
				LocationType: a.StringOr("location_type", ""),
				Description:  a.StringOr("description", ""),
				Atmosphere:   a.StringOr("atmosphere", ""),
				Significance: a.StringOr("significance", ""),
				Notes:        a.StringOr("notes", ""),
			}
		},
		label: func(l schema.Location) string { return l.Name },
		entry: func(id int64, l schema.Location) ledger.Entry {
			return ledger.Entry{ID: id, Name: l.Name}
		},
	}
}

func plotThreadKind(store schema.EntityStore[schema.PlotThread]) entityKind[schema.PlotThread] {
	return entityKind[schema.PlotThread]{
		kind:    ledger.KindPlotThread,
		noun:    "plot_thread",
		plural:  "plot_threads",
		display: "plot thread",
		idField: "plot_thread_id",
		store:   store,
		required: []schema.Field{
			str("title", "Short name of the plot thread"),
		},
		editable: []schema.Field{
			str("description", "What happens in this thread"),
			enum("status", "Progress of the thread", schema.PlotThreadStatuses),
			enum("importance", "Weight of the thread in the story", schema.PlotThreadImportance),
			str("notes", "Free-form author notes"),
		},
		build: func(a Args) schema.PlotThread {
			return schema.PlotThread{
				Title:       a.StringOr("title", ""),
				Description: a.StringOr("description", ""),
				Status:      a.StringOr("status", "open"),
				Importance:  a.StringOr("importance", "major"),
				Notes:       a.StringOr("notes", ""),
			}
		},
		label: func(p schema.PlotThread) string { return p.Title },
		entry: func(id int64, p schema.PlotThread) ledger.Entry {
			return ledger.Entry{ID: id, Title: p.Title}
		},
	}
}
