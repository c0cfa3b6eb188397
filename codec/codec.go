// Package codec centralizes snapshot payload encoding.
//
// Persisted snapshot files are self-describing: the codec name is stored in
// the file header and resolved via ByName on load, so the default codec can
// change without breaking existing files.
package codec

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Default is the codec used for newly written snapshots.
var Default Codec = GoJSON{}
