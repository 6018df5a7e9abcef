package domain

// MemoryLocation is what a question source yields: the ground truth for
// one round. SourceID is a memory id or a city id depending on the mode.
type MemoryLocation struct {
	SourceID  int64    `db:"source_id" json:"source_id"`
	Latitude  float64  `db:"latitude" json:"latitude"`
	Longitude float64  `db:"longitude" json:"longitude"`
	Name      string   `db:"name" json:"name"`
	MediaRefs []string `db:"media_refs" json:"media_refs"`
}
