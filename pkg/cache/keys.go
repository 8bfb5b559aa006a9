package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer builds cache keys for each cached stage.
type Keyer interface {
	// LayoutKey identifies a lane layout of one items revision.
	LayoutKey(revision string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered artifact of one layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds every input besides the items that changes a layout.
// The today marker is not part of it; it is recomputed on every request.
type LayoutKeyOpts struct {
	Granularity string `json:"granularity"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Search      string `json:"search,omitempty"`
	TieBreak    string `json:"tie_break,omitempty"`
	Collation   string `json:"collation,omitempty"`
}

// ArtifactKeyOpts holds the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Theme      string  `json:"theme,omitempty"`
	Width      float64 `json:"width,omitempty"`
	LaneHeight float64 `json:"lane_height,omitempty"`
	Today      string  `json:"today,omitempty"`
}

// DefaultKeyer produces "layout:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(revision string, opts LayoutKeyOpts) string {
	return hashKey("layout", revision, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// hashKey returns prefix:sha256(json(parts)).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", prefix, Hash(data))
}

// Hash returns the hex-encoded SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON returns the Hash of v's JSON encoding.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}
