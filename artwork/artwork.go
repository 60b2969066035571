// Package artwork builds populated artwork objects from ids through the web
// client, one constructor per process type.
package artwork

import (
	"context"
	"fmt"

	pikax "github.com/Akashic-y/Pikax"
	"github.com/Akashic-y/Pikax/webclient"
)

// Artwork is the domain object produced per resolved id.
type Artwork struct {
	ID        pikax.ArtworkID
	Title     string
	Author    string
	Likes     int
	Views     int
	Bookmarks int

	// PageUrls are the original resolution image URLs, one per page.
	PageUrls []string
}

// NewIllust constructs a single page oriented artwork from its metadata.
func NewIllust(ctx context.Context, client *webclient.Client, id pikax.ArtworkID) (*Artwork, error) {
	meta, err := client.FetchArtworkMeta(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed building illust %s: %w", id, err)
	}

	art := fromMeta(meta)
	if meta.OriginalUrl != "" {
		art.PageUrls = []string{meta.OriginalUrl}
	}

	return art, nil
}

// NewManga constructs a multi page artwork, additionally resolving the image
// URL of every page.
func NewManga(ctx context.Context, client *webclient.Client, id pikax.ArtworkID) (*Artwork, error) {
	meta, err := client.FetchArtworkMeta(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed building manga %s: %w", id, err)
	}

	art := fromMeta(meta)
	if art.PageUrls, err = client.FetchArtworkPages(ctx, id); err != nil {
		return nil, fmt.Errorf("failed building manga %s: %w", id, err)
	}

	return art, nil
}

func fromMeta(meta *webclient.ArtworkMeta) *Artwork {
	return &Artwork{
		ID:        meta.ID,
		Title:     meta.Title,
		Author:    meta.Author,
		Likes:     meta.Likes,
		Views:     meta.Views,
		Bookmarks: meta.Bookmarks,
	}
}
