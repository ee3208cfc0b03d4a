package movie

import (
	"context"
	"fmt"
	"log/slog"

	"notioner/internal/domain/entity"
	"notioner/internal/infra/notion"
	"notioner/internal/observability/metrics"
)

// Property names of the collection database.
const (
	collectionPropName   = "Name"
	collectionPropPoster = "Poster"
	collectionPropID     = "Collection ID"
	collectionPropMovies = "Movies"
)

// collectionUpsert finds a collection page by name and creates it when missing.
// It lives for a single write and remembers what it resolved, so one write
// touches each collection at most once.
type collectionUpsert struct {
	client     NotionAPI
	databaseID string
	record     entity.MovieRecord
	logger     *slog.Logger
	resolved   map[string]string
}

func newCollectionUpsert(client NotionAPI, databaseID string, record entity.MovieRecord, logger *slog.Logger) *collectionUpsert {
	return &collectionUpsert{
		client:     client,
		databaseID: databaseID,
		record:     record,
		logger:     logger,
		resolved:   make(map[string]string),
	}
}

// FindOrCreate returns the page id of the named collection.
func (c *collectionUpsert) FindOrCreate(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	if id, ok := c.resolved[name]; ok {
		return id, nil
	}

	filter := notion.TitleEquals(collectionPropName, name)
	resp, err := c.client.QueryDatabase(ctx, c.databaseID, notion.QueryRequest{Filter: &filter, PageSize: 1})
	if err != nil {
		metrics.RecordCollectionResolved("error")
		return "", fmt.Errorf("query collection %q: %w", name, err)
	}
	if len(resp.Results) > 0 {
		id := resp.Results[0].ID
		c.resolved[name] = id
		metrics.RecordCollectionResolved("found")
		return id, nil
	}

	page, err := c.client.CreatePage(ctx, c.pageRequest(name))
	if err != nil {
		metrics.RecordCollectionResolved("error")
		return "", fmt.Errorf("create collection %q: %w", name, err)
	}
	c.resolved[name] = page.ID
	metrics.RecordCollectionResolved("created")
	c.logger.Info("collection created", slog.String("collection", name), slog.String("page_id", page.ID))
	return page.ID, nil
}

func (c *collectionUpsert) pageRequest(name string) notion.PageRequest {
	backdrop := c.record.Get(entity.KeyCollectionBackdrop)
	poster := c.record.Get(entity.KeyCollectionPoster)

	req := notion.PageRequest{
		Parent: notion.DatabaseParent(c.databaseID),
		Properties: map[string]notion.PropertyValue{
			collectionPropName: notion.TitleProperty(name),
		},
	}
	if backdrop != "" {
		req.Cover = notion.External(backdrop)
	}
	if poster != "" {
		req.Icon = notion.External(poster)
		req.Properties[collectionPropPoster] = notion.Files(poster, name, "")
	}
	if cid := c.record.Get(entity.KeyCollectionID); cid != "" {
		req.Properties[collectionPropID] = notion.Number(cid, "")
	}
	if itemID := c.record.ItemID(); itemID != "" {
		req.Properties[collectionPropMovies] = notion.Relation(itemID, "")
	}
	return req
}
