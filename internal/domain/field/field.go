// Package field names the index fields written by the indexing pipeline and read by search.
package field

import "strings"

// Stored and indexed field names.
const (
	NodeID    = "__NodeId"
	Key       = "__Key"
	ItemType  = "Look_Type"
	Culture   = "Look_Culture"
	TypeAlias = "nodeTypeAlias"
	HostID    = "Look_HostId"
	Date      = "Look_Date" // .NET ticks as a decimal string
	Name      = "Look_Name"
	Location  = "Look_Location" // "lat|lng"
	Latitude  = Location + "_Latitude"
	Longitude = Location + "_Longitude"
	Tags      = "Look_Tags" // space-joined group:name tokens
	Text      = "Look_Text"

	// SortPrefix marks the sortable copy of a field.
	SortPrefix = "__Sort_"
	// SortDate is numeric ticks.
	SortDate = SortPrefix + Date
	// SortName is the lowercased name as a single keyword.
	SortName = SortPrefix + Name

	// TagGroupPrefix starts the per-group marker field, set to MarkerValue when the item has any tag in the group.
	TagGroupPrefix = "Look_TagGroup_"
	MarkerValue    = "1"
)

// TagGroup returns the marker field for a tag group.
func TagGroup(group string) string {
	return TagGroupPrefix + group
}

// GroupFromMarker extracts the group from a marker field name.
func GroupFromMarker(name string) (string, bool) {
	if !strings.HasPrefix(name, TagGroupPrefix) || len(name) == len(TagGroupPrefix) {
		return "", false
	}
	return name[len(TagGroupPrefix):], true
}

// Kind is the indexing kind of a field.
type Kind string

// Field kinds.
const (
	// KindKeyword is an unanalyzed exact-match field.
	KindKeyword Kind = "keyword"
	KindNumeric Kind = "numeric"
	// KindText is analyzed for full-text matching.
	KindText Kind = "text"
	// KindTags is a whitespace-separated list of exact tokens.
	KindTags Kind = "tags"
)

// Def describes one field of the search schema.
type Def struct {
	Name     string
	Kind     Kind
	Stored   bool
	Sortable bool
}

// Schema is the fixed set of fields the search core reads. Marker fields are dynamic and not listed.
func Schema() []Def {
	return []Def{
		{Name: NodeID, Kind: KindNumeric, Stored: true, Sortable: true},
		{Name: Key, Kind: KindKeyword, Stored: true},
		{Name: ItemType, Kind: KindKeyword, Stored: true},
		{Name: Culture, Kind: KindKeyword, Stored: true},
		{Name: TypeAlias, Kind: KindKeyword, Stored: true},
		{Name: HostID, Kind: KindNumeric, Stored: true},
		{Name: Date, Kind: KindKeyword, Stored: true},
		{Name: SortDate, Kind: KindNumeric, Sortable: true},
		{Name: Name, Kind: KindKeyword, Stored: true},
		{Name: SortName, Kind: KindKeyword, Sortable: true},
		{Name: Location, Kind: KindKeyword, Stored: true},
		{Name: Latitude, Kind: KindNumeric, Stored: true},
		{Name: Longitude, Kind: KindNumeric, Stored: true},
		{Name: Tags, Kind: KindTags, Stored: true},
		{Name: Text, Kind: KindText, Stored: true},
	}
}
