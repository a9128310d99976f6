package schema

import "context"

// Scope identifies whose story data a tool call may touch. It is passed
// explicitly to every dispatch and persistence call.
type Scope struct {
	UserID        int64
	BookID        int64
	CurrentItemID int64 // 0 when no binder item is open
}

// Binder item types.
const (
	ItemFolder   = "folder"
	ItemChapter  = "chapter"
	ItemScene    = "scene"
	ItemNote     = "note"
	ItemResearch = "research"
)

// BinderItemTypes lists every valid item_type in display order.
var BinderItemTypes = []string{ItemFolder, ItemChapter, ItemScene, ItemNote, ItemResearch}

// BinderItem is a node in the book's content tree.
type BinderItem struct {
	ID        int64  `json:"id"`
	ParentID  int64  `json:"parent_id,omitempty"` // 0 for top-level items
	Title     string `json:"title"`
	ItemType  string `json:"item_type"`
	Content   string `json:"content,omitempty"`
	Synopsis  string `json:"synopsis,omitempty"`
	SortOrder int64  `json:"sort_order"`
	WordCount int64  `json:"word_count"`
}

type Character struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role,omitempty"`
	Description string `json:"description,omitempty"`
	Personality string `json:"personality,omitempty"`
	Appearance  string `json:"appearance,omitempty"`
	Backstory   string `json:"backstory,omitempty"`
	Goals       string `json:"goals,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type Location struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	LocationType string `json:"location_type,omitempty"`
	Description  string `json:"description,omitempty"`
	Atmosphere   string `json:"atmosphere,omitempty"`
	Significance string `json:"significance,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Plot thread statuses and importance levels.
var (
	PlotThreadStatuses   = []string{"open", "developing", "resolved", "abandoned"}
	PlotThreadImportance = []string{"major", "minor"}
)

type PlotThread struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Importance  string `json:"importance"`
	Notes       string `json:"notes,omitempty"`
}

// Fields carries column → value pairs for a partial update.
type Fields map[string]any

// EntityStore is the persistence collaborator for one entity kind.
// Get returns (nil, nil) when no row matches id within scope.
// Update and Delete report false when no row matched.
type EntityStore[T any] interface {
	List(ctx context.Context, scope Scope) ([]T, error)
	Get(ctx context.Context, id int64, scope Scope) (*T, error)
	Create(ctx context.Context, scope Scope, entity T) (int64, error)
	Update(ctx context.Context, id int64, scope Scope, fields Fields) (bool, error)
	Delete(ctx context.Context, id int64, scope Scope) (bool, error)
}

// MetadataStore is the key/value side table attached to binder items.
type MetadataStore interface {
	GetMetadata(ctx context.Context, itemID int64) (map[string]string, error)
	SetMetadata(ctx context.Context, itemID int64, key, value string) error
}
