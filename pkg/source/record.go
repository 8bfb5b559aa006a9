package source

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/planboard/pkg/errors"
	"github.com/matzehuels/planboard/pkg/timeline"
)

// itemNamespace seeds generated item IDs.
var itemNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://planboard.dev/items"))

// Record is the wire form of an item, shared by every file format and by
// the MongoDB collection. Dates are ISO 8601 strings.
type Record struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty" bson:"id,omitempty"`
	StartDate string `json:"start_date" yaml:"start_date" toml:"start_date" bson:"start_date"`
	EndDate   string `json:"end_date" yaml:"end_date" toml:"end_date" bson:"end_date"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty" bson:"color,omitempty"`
	Title     string `json:"title" yaml:"title" toml:"title" bson:"title"`
	Subtitle  string `json:"subtitle,omitempty" yaml:"subtitle,omitempty" toml:"subtitle,omitempty" bson:"subtitle,omitempty"`
	Status    string `json:"status,omitempty" yaml:"status,omitempty" toml:"status,omitempty" bson:"status,omitempty"`
}

// Document is the top-level shape of an item file.
type Document struct {
	Items []Record `json:"items" yaml:"items" toml:"items"`
}

// Item converts r into a timeline item.
//
// Unparsable dates, a malformed ID or a malformed color are INVALID_ITEM
// errors. An end date before the start date is not an error; the engine
// normalizes it. A record without an ID gets a deterministic UUID derived
// from its title and dates, so repeated loads keep the same ID.
func (r Record) Item() (timeline.Item, error) {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		id = GenerateID(r)
	}
	if err := errors.ValidateItemID(id); err != nil {
		return timeline.Item{}, err
	}

	start, err := timeline.ParseDate(r.StartDate)
	if err != nil {
		return timeline.Item{}, errors.Wrap(errors.ErrCodeInvalidItem, err, "item %s: invalid start_date", id)
	}
	end, err := timeline.ParseDate(r.EndDate)
	if err != nil {
		return timeline.Item{}, errors.Wrap(errors.ErrCodeInvalidItem, err, "item %s: invalid end_date", id)
	}
	if err := errors.ValidateColor(r.Color); err != nil {
		return timeline.Item{}, errors.Wrap(errors.ErrCodeInvalidItem, err, "item %s: invalid color", id)
	}

	return timeline.Item{
		ID:       id,
		Start:    start,
		End:      end,
		Color:    r.Color,
		Title:    r.Title,
		Subtitle: r.Subtitle,
		Status:   timeline.ParseStatus(r.Status),
	}, nil
}

// FromItem converts an item back into its wire form.
func FromItem(it timeline.Item) Record {
	return Record{
		ID:        it.ID,
		StartDate: it.Start.Format(time.DateOnly),
		EndDate:   it.End.Format(time.DateOnly),
		Color:     it.Color,
		Title:     it.Title,
		Subtitle:  it.Subtitle,
		Status:    string(it.Status),
	}
}

// GenerateID returns the UUIDv5 of r's title and dates.
func GenerateID(r Record) string {
	name := strings.Join([]string{r.Title, r.StartDate, r.EndDate}, "\x00")
	return uuid.NewSHA1(itemNamespace, []byte(name)).String()
}
