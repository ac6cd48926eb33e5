package types

// Filter narrows the visible games. Zero-valued fields are inactive.
type Filter struct {
	Genre      string   `json:"genre,omitempty"`
	Platform   string   `json:"platform,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	IsBorrowed *bool    `json:"isBorrowed,omitempty"`
	Status     string   `json:"status,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// Sortable field names.
const (
	SortName           = "name"
	SortGenre          = "genre"
	SortPlatform       = "platform"
	SortStatus         = "status"
	SortRating         = "rating"
	SortPurchasePrice  = "purchasePrice"
	SortPurchaseDate   = "purchaseDate"
	SortCompletionDate = "completionDate"
)

// SortKey orders the visible games. An unknown Field sorts by name ascending.
type SortKey struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// DefaultSort lists the most recent purchases first.
var DefaultSort = SortKey{Field: SortPurchaseDate, Desc: true}

// SortFields lists the field names a SortKey may reference, in display order.
var SortFields = []string{
	SortName,
	SortGenre,
	SortPlatform,
	SortStatus,
	SortRating,
	SortPurchasePrice,
	SortPurchaseDate,
	SortCompletionDate,
}

// IsSortField reports whether name is one of SortFields.
func IsSortField(name string) bool {
	for _, f := range SortFields {
		if f == name {
			return true
		}
	}
	return false
}
