package store

import (
	"database/sql"

	"github.com/storyloom/storyloom/internal/schema"
)

type CharacterStore struct{ table[schema.Character] }

func newCharacterStore(db *sql.DB) *CharacterStore {
	return &CharacterStore{table[schema.Character]{
		db:      db,
		name:    "characters",
		columns: []string{"name", "role", "description", "personality", "appearance", "backstory", "goals", "notes"},
		orderBy: "name COLLATE NOCASE, id",
		values: func(c schema.Character) []any {
			return []any{c.Name, c.Role, c.Description, c.Personality, c.Appearance, c.Backstory, c.Goals, c.Notes}
		},
		scan: func(row scanner) (schema.Character, error) {
			var c schema.Character
			err := row.Scan(&c.ID, &c.Name, &c.Role, &c.Description, &c.Personality, &c.Appearance, &c.Backstory, &c.Goals, &c.Notes)
			return c, err
		},
	}}
}

type LocationStore struct{ table[schema.Location] }

func newLocationStore(db *sql.DB) *LocationStore {
	return &LocationStore{table[schema.Location]{
		db:      db,
		name:    "locations",
		columns: []string{"name", "location_type", "description", "atmosphere", "significance", "notes"},
		orderBy: "name COLLATE NOCASE, id",
		values: func(l schema.Location) []any {
			return []any{l.Name, l.LocationType, l.Description, l.Atmosphere, l.Significance, l.Notes}
		},
		scan: func(row scanner) (schema.Location, error) {
			var l schema.Location
			err := row.Scan(&l.ID, &l.Name, &l.LocationType, &l.Description, &l.Atmosphere, &l.Significance, &l.Notes)
			return l, err
		},
	}}
}

type PlotThreadStore struct{ table[schema.PlotThread] }

func newPlotThreadStore(db *sql.DB) *PlotThreadStore {
	return &PlotThreadStore{table[schema.PlotThread]{
		db:      db,
		name:    "plot_threads",
		columns: []string{"title", "description", "status", "importance", "notes"},
		// major threads first, then creation order
		orderBy: "CASE importance WHEN 'major' THEN 0 ELSE 1 END, id",
		values: func(p schema.PlotThread) []any {
			return []any{p.Title, p.Description, p.Status, p.Importance, p.Notes}
		},
		scan: func(row scanner) (schema.PlotThread, error) {
			var p schema.PlotThread
			err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Status, &p.Importance, &p.Notes)
			return p, err
		},
	}}
}
