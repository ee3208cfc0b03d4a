package notion

import (
	"strconv"
	"strings"
)

// DefaultTimeZone is attached to every date property.
const DefaultTimeZone = "Asia/Kolkata"

// Number builds a number property. "#NUM!" and unparseable values become null.
func Number(value, id string) PropertyValue {
	pv := PropertyValue{ID: id, Type: TypeNumber}
	v := strings.TrimSpace(value)
	if v == "#NUM!" {
		return pv
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		pv.Number = &f
	}
	return pv
}

// Status builds a status property.
func Status(name, id string) PropertyValue {
	return PropertyValue{ID: id, Type: TypeStatus, Status: &SelectOption{Name: name}}
}

// Select builds a select property.
func Select(name, id string) PropertyValue {
	return PropertyValue{ID: id, Type: TypeSelect, Select: &SelectOption{Name: name}}
}

// Date builds a date property from "DD/MM/YYYY" dates. An empty end is encoded as null.
func Date(start, end, id string) PropertyValue {
	tz := DefaultTimeZone
	dv := &DateValue{Start: reverseDate(start), TimeZone: &tz}
	if e := reverseDate(end); e != "" {
		dv.End = &e
	}
	return PropertyValue{ID: id, Type: TypeDate, Date: dv}
}

// reverseDate turns "DD/MM/YYYY" into "YYYY-MM-DD". Values without slashes pass through.
func reverseDate(s string) string {
	parts := strings.Split(s, "/")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "-")
}

// Files builds a files property holding one external file.
func Files(url, name, id string) PropertyValue {
	return PropertyValue{
		ID:   id,
		Type: TypeFiles,
		Files: []FileObject{{
			Name:     name,
			Type:     "external",
			External: &ExternalFile{URL: url},
		}},
	}
}

// External builds an external file object for page covers and icons.
func External(url string) *FileObject {
	return &FileObject{Type: "external", External: &ExternalFile{URL: url}}
}

// URL builds a url property.
func URL(value, id string) PropertyValue {
	v := value
	return PropertyValue{ID: id, Type: TypeURL, URL: &v}
}

// Relation builds a relation property pointing at one page.
func Relation(pageID, id string) PropertyValue {
	return PropertyValue{ID: id, Type: TypeRelation, Relation: []RelationRef{{ID: pageID}}}
}

// MultiSelect builds a multi-select property from a comma separated list.
// Options are trimmed; empty options are dropped.
func MultiSelect(options, id string) PropertyValue {
	pv := PropertyValue{ID: id, Type: TypeMultiSelect, MultiSelect: []SelectOption{}}
	for _, opt := range strings.Split(options, ",") {
		name := strings.TrimSpace(opt)
		if name == "" {
			continue
		}
		pv.MultiSelect = append(pv.MultiSelect, SelectOption{Name: name})
	}
	return pv
}

// PlainRichText builds one unlinked text item.
func PlainRichText(content string) RichText {
	return RichText{Type: "text", Text: &Text{Content: content}}
}

// RichTextProperty builds a rich text property.
func RichTextProperty(content, id string) PropertyValue {
	return PropertyValue{ID: id, Type: TypeRichText, RichText: []RichText{PlainRichText(content)}}
}

// TitleProperty builds the title property. Notion always names its id "title".
func TitleProperty(content string) PropertyValue {
	return PropertyValue{ID: "title", Type: TypeTitle, Title: []RichText{PlainRichText(content)}}
}

// DatabaseParent builds a database parent reference.
func DatabaseParent(databaseID string) *Parent {
	return &Parent{Type: "database_id", DatabaseID: databaseID}
}
