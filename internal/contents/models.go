package contents

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Announcement is one row of the market announcements table.
type Announcement struct {
	Ticker           string    `json:"ticker"`
	Name             string    `json:"name"`
	Price            string    `json:"price"`
	MarketCap        float64   `json:"market_cap"`
	Announcement     string    `json:"announcement"`
	PriceSensitive   Flag      `json:"price_sensitive"`
	AnnouncementTime Timestamp `json:"announcement_time"`
}

// HasAnnouncement reports whether the company has a current announcement.
func (a Announcement) HasAnnouncement() bool {
	return a.Announcement != ""
}

// Article is a single news headline.
type Article struct {
	Category string    `json:"category,omitempty"`
	Headline string    `json:"headline"`
	Summary  string    `json:"summary,omitempty"`
	DateTime Timestamp `json:"date_time"`
}

// News groups headlines by publication section.
type News struct {
	AFRHomepage   []Article `json:"afr_homepage"`
	AFRStreetTalk []Article `json:"afr_street_talk"`
	AUSHomepage   []Article `json:"aus_homepage"`
	AUSSections   []Article `json:"aus_sections"`
}

// Section is a titled list of articles in display order.
type Section struct {
	Key      string
	Title    string
	Articles []Article
}

// Sections returns the news sections in display order.
func (n *News) Sections() []Section {
	return []Section{
		{Key: "afr_homepage", Title: "AFR Homepage", Articles: n.AFRHomepage},
		{Key: "afr_street_talk", Title: "AFR Street Talk", Articles: n.AFRStreetTalk},
		{Key: "aus_homepage", Title: "The Australian", Articles: n.AUSHomepage},
		{Key: "aus_sections", Title: "DataRoom & Trading Day", Articles: n.AUSSections},
	}
}

// Len returns the total number of articles across sections.
func (n *News) Len() int {
	return len(n.AFRHomepage) + len(n.AFRStreetTalk) + len(n.AUSHomepage) + len(n.AUSSections)
}

// Timestamp decodes the date formats the contents API emits: epoch
// milliseconds, RFC 3339, RFC 1123 (HTTP date), or an empty string.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return t.parse(strings.TrimSpace(s))
	}

	ms, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s", data)
	}
	t.Time = time.UnixMilli(int64(ms)).UTC()
	return nil
}

// MarshalJSON emits RFC 3339, or null for the zero time.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// Display formats the timestamp for tables; the zero time renders empty.
func (t Timestamp) Display() string {
	if t.IsZero() {
		return ""
	}
	return t.Time.Format("02 Jan 2006 15:04")
}

func (t *Timestamp) parse(s string) error {
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v
			return nil
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// Flag decodes the loosely typed price_sensitive column: a JSON boolean, a
// number, or a string such as "", "true", "Y", or "1".
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("true")):
		*f = true
	case bytes.Equal(data, []byte("false")), bytes.Equal(data, []byte("null")):
		*f = false
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "t", "yes", "y", "1":
			*f = true
		default:
			*f = false
		}
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid flag %s", data)
		}
		*f = n != 0
	}
	return nil
}
