package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"

	pikax "github.com/Akashic-y/Pikax"
	"github.com/Akashic-y/Pikax/artwork"
	"github.com/Akashic-y/Pikax/webclient"
)

// downloadAll writes the page images of every resolved artwork into
// outputDir. A failing page is logged and skipped, it does not abort the
// rest of the batch.
func downloadAll(ctx context.Context, log pikax.Logger, client *webclient.Client, artworks []*artwork.Artwork, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed creating output directory: %w", err)
	}

	var pages int
	for _, art := range artworks {
		for _, pageUrl := range art.PageUrls {
			name, err := pageFilename(pageUrl)
			if err != nil {
				log.WithError(err).Warnf("skipping page of artwork %s", art.ID)
				continue
			}

			data, err := client.Fetch(ctx, pageUrl)
			if err != nil {
				log.WithError(err).Warnf("failed downloading page of artwork %s", art.ID)
				continue
			}

			if err := os.WriteFile(filepath.Join(outputDir, name), data, 0o644); err != nil {
				return fmt.Errorf("failed writing %s: %w", name, err)
			}

			pages++
		}
	}

	log.Infof("downloaded %d pages from %d artworks to %s", pages, len(artworks), outputDir)
	return nil
}

func pageFilename(pageUrl string) (string, error) {
	u, err := url.Parse(pageUrl)
	if err != nil {
		return "", fmt.Errorf("invalid page url: %w", err)
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("page url has no file name: %s", pageUrl)
	}

	return name, nil
}
