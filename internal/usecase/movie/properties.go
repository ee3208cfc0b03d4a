package movie

import (
	"context"
	"fmt"

	"notioner/internal/domain/entity"
	"notioner/internal/infra/notion"
)

// RelationResolver maps a relation value from a movie record to a Notion page id.
// An empty id means the relation is left unset.
type RelationResolver interface {
	ResolveRelation(ctx context.Context, value string) (string, error)
}

// BuildProperties converts a record into Notion page properties following the schema order.
// Properties whose record value is missing or empty are skipped.
func (s *Schema) BuildProperties(ctx context.Context, record entity.MovieRecord, resolver RelationResolver) (map[string]notion.PropertyValue, error) {
	props := make(map[string]notion.PropertyValue, len(s.Properties))
	for _, p := range s.Properties {
		value := record.Get(p.Name)
		if value == "" {
			continue
		}

		var pv notion.PropertyValue
		switch p.Type {
		case notion.TypeRichText:
			pv = notion.RichTextProperty(value, p.ID)
		case notion.TypeMultiSelect:
			pv = notion.MultiSelect(value, p.ID)
		case notion.TypeSelect:
			pv = notion.Select(value, p.ID)
		case notion.TypeStatus:
			pv = notion.Status(value, p.ID)
		case notion.TypeNumber:
			pv = notion.Number(value, p.ID)
		case notion.TypeURL:
			pv = notion.URL(value, p.ID)
		case notion.TypeDate:
			pv = notion.Date(value, "", p.ID)
		case notion.TypeFiles:
			pv = notion.Files(value, record.Get(entity.PropTitle), p.ID)
		case notion.TypeTitle:
			pv = notion.TitleProperty(value)
		case notion.TypeRelation:
			if resolver == nil {
				continue
			}
			pageID, err := resolver.ResolveRelation(ctx, value)
			if err != nil {
				return nil, fmt.Errorf("resolve %s relation %q: %w", p.Name, value, err)
			}
			if pageID == "" {
				continue
			}
			pv = notion.Relation(pageID, p.ID)
		default:
			return nil, fmt.Errorf("property %q: unsupported type %q", p.Name, p.Type)
		}
		props[p.Name] = pv
	}
	return props, nil
}

// CollectionFinder finds or creates a collection page by name.
type CollectionFinder interface {
	FindOrCreate(ctx context.Context, name string) (string, error)
}

// relationRouter sends media types to their fixed relation pages and
// everything else to the collection database.
type relationRouter struct {
	moviesRelationID string
	seriesRelationID string
	collections      CollectionFinder
}

func (r *relationRouter) ResolveRelation(ctx context.Context, value string) (string, error) {
	switch value {
	case "movie", "Movie":
		return r.moviesRelationID, nil
	case "series", "Series":
		return r.seriesRelationID, nil
	}
	if r.collections == nil {
		return "", nil
	}
	return r.collections.FindOrCreate(ctx, value)
}
