package notion

import (
	"encoding/json"
	"strings"
	"time"
)

// Property types supported by the movie schema.
const (
	TypeTitle       = "title"
	TypeRichText    = "rich_text"
	TypeNumber      = "number"
	TypeSelect      = "select"
	TypeStatus      = "status"
	TypeMultiSelect = "multi_select"
	TypeDate        = "date"
	TypeURL         = "url"
	TypeFiles       = "files"
	TypeRelation    = "relation"
)

// KnownPropertyType reports whether t is a property type PropertyValue can carry.
func KnownPropertyType(t string) bool {
	switch t {
	case TypeTitle, TypeRichText, TypeNumber, TypeSelect, TypeStatus,
		TypeMultiSelect, TypeDate, TypeURL, TypeFiles, TypeRelation:
		return true
	}
	return false
}

// Link is a rich text hyperlink.
type Link struct {
	URL string `json:"url"`
}

// Text is the text payload of a rich text item. Link is always encoded, as null when unset.
type Text struct {
	Content string `json:"content"`
	Link    *Link  `json:"link"`
}

// RichText is one rich text item.
type RichText struct {
	Type      string `json:"type"`
	Text      *Text  `json:"text,omitempty"`
	PlainText string `json:"plain_text,omitempty"`
	Href      string `json:"href,omitempty"`
}

// Content returns the plain text of the item, falling back to its text content.
func (r RichText) Content() string {
	if r.PlainText != "" {
		return r.PlainText
	}
	if r.Text != nil {
		return r.Text.Content
	}
	return ""
}

// SelectOption is a select, status or multi-select option.
type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// DateValue is a date property payload. End and TimeZone encode as null when unset.
type DateValue struct {
	Start    string  `json:"start"`
	End      *string `json:"end"`
	TimeZone *string `json:"time_zone"`
}

// ExternalFile points at a file hosted outside Notion.
type ExternalFile struct {
	URL string `json:"url"`
}

// HostedFile is a file uploaded to Notion.
type HostedFile struct {
	URL        string    `json:"url"`
	ExpiryTime time.Time `json:"expiry_time"`
}

// FileObject is a file in a files property, or a page cover/icon.
type FileObject struct {
	Name     string        `json:"name,omitempty"`
	Type     string        `json:"type"`
	External *ExternalFile `json:"external,omitempty"`
	File     *HostedFile   `json:"file,omitempty"`
	Emoji    string        `json:"emoji,omitempty"`
}

// URL returns the file location regardless of hosting.
func (f *FileObject) URL() string {
	if f == nil {
		return ""
	}
	if f.External != nil {
		return f.External.URL
	}
	if f.File != nil {
		return f.File.URL
	}
	return ""
}

// RelationRef references a related page.
type RelationRef struct {
	ID string `json:"id"`
}

// Parent identifies where a page lives.
type Parent struct {
	Type       string `json:"type"`
	DatabaseID string `json:"database_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
}

// PropertyValue is a page property value. Exactly one payload field matching Type is meaningful.
type PropertyValue struct {
	ID          string
	Type        string
	Title       []RichText
	RichText    []RichText
	Number      *float64
	Select      *SelectOption
	Status      *SelectOption
	MultiSelect []SelectOption
	Date        *DateValue
	URL         *string
	Files       []FileObject
	Relation    []RelationRef
}

// MarshalJSON emits {"id","type",<type>: payload}. Nil scalar payloads encode as
// explicit null so that Notion clears the property.
func (p PropertyValue) MarshalJSON() ([]byte, error) {
	m := map[string]any{"type": p.Type}
	if p.ID != "" {
		m["id"] = p.ID
	}

	switch p.Type {
	case TypeTitle:
		m[TypeTitle] = nonNilRichText(p.Title)
	case TypeRichText:
		m[TypeRichText] = nonNilRichText(p.RichText)
	case TypeNumber:
		m[TypeNumber] = p.Number
	case TypeSelect:
		m[TypeSelect] = p.Select
	case TypeStatus:
		m[TypeStatus] = p.Status
	case TypeMultiSelect:
		if p.MultiSelect == nil {
			m[TypeMultiSelect] = []SelectOption{}
		} else {
			m[TypeMultiSelect] = p.MultiSelect
		}
	case TypeDate:
		m[TypeDate] = p.Date
	case TypeURL:
		m[TypeURL] = p.URL
	case TypeFiles:
		if p.Files == nil {
			m[TypeFiles] = []FileObject{}
		} else {
			m[TypeFiles] = p.Files
		}
	case TypeRelation:
		if p.Relation == nil {
			m[TypeRelation] = []RelationRef{}
		} else {
			m[TypeRelation] = p.Relation
		}
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes the known payloads; other property types keep only id and type.
func (p *PropertyValue) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string         `json:"id"`
		Type        string         `json:"type"`
		Title       []RichText     `json:"title"`
		RichText    []RichText     `json:"rich_text"`
		Number      *float64       `json:"number"`
		Select      *SelectOption  `json:"select"`
		Status      *SelectOption  `json:"status"`
		MultiSelect []SelectOption `json:"multi_select"`
		Date        *DateValue     `json:"date"`
		URL         *string        `json:"url"`
		Files       []FileObject   `json:"files"`
		Relation    []RelationRef  `json:"relation"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = PropertyValue{
		ID:          raw.ID,
		Type:        raw.Type,
		Title:       raw.Title,
		RichText:    raw.RichText,
		Number:      raw.Number,
		Select:      raw.Select,
		Status:      raw.Status,
		MultiSelect: raw.MultiSelect,
		Date:        raw.Date,
		URL:         raw.URL,
		Files:       raw.Files,
		Relation:    raw.Relation,
	}
	return nil
}

// PlainText joins title or rich text content.
func (p PropertyValue) PlainText() string {
	items := p.Title
	if p.Type == TypeRichText {
		items = p.RichText
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString(item.Content())
	}
	return b.String()
}

func nonNilRichText(items []RichText) []RichText {
	if items == nil {
		return []RichText{}
	}
	return items
}

// PageRequest is the body of page create and update calls.
type PageRequest struct {
	Parent     *Parent                  `json:"parent,omitempty"`
	Cover      *FileObject              `json:"cover,omitempty"`
	Icon       *FileObject              `json:"icon,omitempty"`
	Properties map[string]PropertyValue `json:"properties,omitempty"`
	Archived   *bool                    `json:"archived,omitempty"`
}

// Page is a Notion page.
type Page struct {
	Object         string                   `json:"object"`
	ID             string                   `json:"id"`
	CreatedTime    time.Time                `json:"created_time"`
	LastEditedTime time.Time                `json:"last_edited_time"`
	Archived       bool                     `json:"archived"`
	URL            string                   `json:"url"`
	Parent         *Parent                  `json:"parent,omitempty"`
	Cover          *FileObject              `json:"cover,omitempty"`
	Icon           *FileObject              `json:"icon,omitempty"`
	Properties     map[string]PropertyValue `json:"properties"`
}

// TextCondition filters title and rich text properties.
type TextCondition struct {
	Equals   string `json:"equals,omitempty"`
	Contains string `json:"contains,omitempty"`
}

// TimestampCondition filters created_time and last_edited_time.
type TimestampCondition struct {
	After      string `json:"after,omitempty"`
	Before     string `json:"before,omitempty"`
	OnOrAfter  string `json:"on_or_after,omitempty"`
	OnOrBefore string `json:"on_or_before,omitempty"`
}

// Filter is a database query filter. Compound filters use And/Or.
type Filter struct {
	Property    string              `json:"property,omitempty"`
	Title       *TextCondition      `json:"title,omitempty"`
	RichText    *TextCondition      `json:"rich_text,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	CreatedTime *TimestampCondition `json:"created_time,omitempty"`
	And         []Filter            `json:"and,omitempty"`
	Or          []Filter            `json:"or,omitempty"`
}

// TitleEquals matches pages whose title property equals value.
func TitleEquals(property, value string) Filter {
	return Filter{Property: property, Title: &TextCondition{Equals: value}}
}

// CreatedBetween matches pages created strictly inside (after, before).
func CreatedBetween(after, before time.Time) Filter {
	return Filter{And: []Filter{
		{Timestamp: "created_time", CreatedTime: &TimestampCondition{After: after.UTC().Format(time.RFC3339Nano)}},
		{Timestamp: "created_time", CreatedTime: &TimestampCondition{Before: before.UTC().Format(time.RFC3339Nano)}},
	}}
}

// Sort orders query results.
type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Direction string `json:"direction"`
}

// QueryRequest is the body of a database query.
type QueryRequest struct {
	Filter      *Filter `json:"filter,omitempty"`
	Sorts       []Sort  `json:"sorts,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
}

// QueryResponse is a page of database query results.
type QueryResponse struct {
	Object     string  `json:"object"`
	Results    []Page  `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// PropertyItem is the response of the page property endpoint. Title and rich text
// properties come back as a paginated list whose results each hold one item.
type PropertyItem struct {
	Object     string         `json:"object"`
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Results    []PropertyItem `json:"results,omitempty"`
	NextCursor *string        `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more,omitempty"`
	Title      *RichText      `json:"title,omitempty"`
	RichText   *RichText      `json:"rich_text,omitempty"`
	Number     *float64       `json:"number,omitempty"`
	Select     *SelectOption  `json:"select,omitempty"`
	URL        *string        `json:"url,omitempty"`
}

// FirstPlainText returns the plain text of the first list result, or of the item itself.
func (p *PropertyItem) FirstPlainText() string {
	if p == nil {
		return ""
	}
	if len(p.Results) > 0 {
		return p.Results[0].FirstPlainText()
	}
	if p.Title != nil {
		return p.Title.Content()
	}
	if p.RichText != nil {
		return p.RichText.Content()
	}
	return ""
}

// NumberValue returns the number payload, if any.
func (p *PropertyItem) NumberValue() (float64, bool) {
	if p == nil || p.Number == nil {
		return 0, false
	}
	return *p.Number, true
}

// User is a Notion user or bot.
type User struct {
	Object string `json:"object"`
	ID     string `json:"id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
}
