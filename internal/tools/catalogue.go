package tools

import (
	"github.com/storyloom/storyloom/internal/schema"
)

// ToolName is the canonical name of a writing tool.
type ToolName string

const (
	ToolListBinderItems  ToolName = "list_binder_items"
	ToolReadBinderItem   ToolName = "read_binder_item"
	ToolCreateBinderItem ToolName = "create_binder_item"
	ToolUpdateBinderItem ToolName = "update_binder_item"
	ToolDeleteBinderItem ToolName = "delete_binder_item"

	ToolListCharacters  ToolName = "list_characters"
	ToolReadCharacter   ToolName = "read_character"
	ToolCreateCharacter ToolName = "create_character"
	ToolUpdateCharacter ToolName = "update_character"
	ToolDeleteCharacter ToolName = "delete_character"

	ToolListLocations  ToolName = "list_locations"
	ToolReadLocation   ToolName = "read_location"
	ToolCreateLocation ToolName = "create_location"
	ToolUpdateLocation ToolName = "update_location"
	ToolDeleteLocation ToolName = "delete_location"

	ToolListPlotThreads  ToolName = "list_plot_threads"
	ToolReadPlotThread   ToolName = "read_plot_thread"
	ToolCreatePlotThread ToolName = "create_plot_thread"
	ToolUpdatePlotThread ToolName = "update_plot_thread"
	ToolDeletePlotThread ToolName = "delete_plot_thread"
)

// Stores bundles the persistence collaborators the writing tools act on.
type Stores struct {
	BinderItems schema.EntityStore[schema.BinderItem]
	Metadata    schema.MetadataStore
	Characters  schema.EntityStore[schema.Character]
	Locations   schema.EntityStore[schema.Location]
	PlotThreads schema.EntityStore[schema.PlotThread]
}

// NewRegistry builds the registry holding all twenty writing tools, grouped
// by entity kind: binder items, characters, locations, plot threads.
func NewRegistry(stores Stores) (*Registry, error) {
	return NewRegistryBuilder().
		WithTools(binderItemTools(stores.BinderItems, stores.Metadata)...).
		WithTools(characterKind(stores.Characters).tools()...).
		WithTools(locationKind(stores.Locations).tools()...).
		WithTools(plotThreadKind(stores.PlotThreads).tools()...).
		Build()
}

func str(name, description string) schema.Field {
	return schema.Field{Name: name, Type: schema.FieldString, Description: description}
}

func id(name, description string) schema.Field {
	return schema.Field{Name: name, Type: schema.FieldInteger, Description: description}
}

func enum(name, description string, values []string) schema.Field {
	return schema.Field{Name: name, Type: schema.FieldString, Description: description, Enum: values}
}
