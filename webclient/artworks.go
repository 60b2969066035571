package webclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	pikax "github.com/Akashic-y/Pikax"
)

// ArtworkMeta is the metadata of a single artwork as served by the ajax
// endpoint.
type ArtworkMeta struct {
	ID        pikax.ArtworkID
	Title     string
	Author    string
	Likes     int
	Views     int
	Bookmarks int
	PageCount int
	// OriginalUrl is the original resolution image of the first page.
	OriginalUrl string
}

type artworkMetaResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Body    struct {
		IllustID      string `json:"illustId"`
		IllustTitle   string `json:"illustTitle"`
		UserName      string `json:"userName"`
		LikeCount     int    `json:"likeCount"`
		ViewCount     int    `json:"viewCount"`
		BookmarkCount int    `json:"bookmarkCount"`
		PageCount     int    `json:"pageCount"`
		Urls          struct {
			Original string `json:"original"`
		} `json:"urls"`
	} `json:"body"`
}

type artworkPagesResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Body    []struct {
		Urls struct {
			Original string `json:"original"`
		} `json:"urls"`
	} `json:"body"`
}

// FetchArtworkMeta retrieves the metadata for one artwork id.
func (c *Client) FetchArtworkMeta(ctx context.Context, id pikax.ArtworkID) (*ArtworkMeta, error) {
	body, err := c.get(ctx, c.wwwUrl.JoinPath("/ajax/illust/"+id.String()))
	if err != nil {
		return nil, fmt.Errorf("failed requesting artwork %s: %w", id, err)
	}

	var resp artworkMetaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed decoding artwork %s: %w", id, err)
	} else if resp.Error {
		return nil, fmt.Errorf("artwork %s refused by server: %s", id, resp.Message)
	}

	meta := &ArtworkMeta{
		ID:          id,
		Title:       resp.Body.IllustTitle,
		Author:      resp.Body.UserName,
		Likes:       resp.Body.LikeCount,
		Views:       resp.Body.ViewCount,
		Bookmarks:   resp.Body.BookmarkCount,
		PageCount:   resp.Body.PageCount,
		OriginalUrl: resp.Body.Urls.Original,
	}
	if parsed, err := pikax.ParseArtworkID(resp.Body.IllustID); err == nil {
		meta.ID = parsed
	}

	return meta, nil
}

// FetchArtworkPages retrieves the original image URL of every page of a
// multi page artwork.
func (c *Client) FetchArtworkPages(ctx context.Context, id pikax.ArtworkID) ([]string, error) {
	body, err := c.get(ctx, c.wwwUrl.JoinPath("/ajax/illust/"+id.String()+"/pages"))
	if err != nil {
		return nil, fmt.Errorf("failed requesting artwork %s pages: %w", id, err)
	}

	var resp artworkPagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed decoding artwork %s pages: %w", id, err)
	} else if resp.Error {
		return nil, fmt.Errorf("artwork %s pages refused by server: %s", id, resp.Message)
	}

	urls := make([]string, 0, len(resp.Body))
	for _, page := range resp.Body {
		urls = append(urls, page.Urls.Original)
	}

	return urls, nil
}

type rankingResponse struct {
	Contents []struct {
		IllustID json.Number `json:"illust_id"`
	} `json:"contents"`
	// Next is the next page number, or false on the last page.
	Next json.RawMessage `json:"next"`
}

// RankingIDs walks the ranking pages collecting artwork ids until limit ids
// are gathered or the ranking ends. Date is in yyyymmdd form and may be
// empty for today.
func (c *Client) RankingIDs(ctx context.Context, mode, content, date string, limit int) ([]pikax.ArtworkID, error) {
	var ids []pikax.ArtworkID
	for page := 1; ; page++ {
		reqUrl := c.wwwUrl.JoinPath("/ranking.php")
		query := url.Values{"format": {"json"}, "mode": {mode}, "p": {strconv.Itoa(page)}}
		if content != "" {
			query.Set("content", content)
		}
		if date != "" {
			query.Set("date", date)
		}
		reqUrl.RawQuery = query.Encode()

		body, err := c.get(ctx, reqUrl)
		if err != nil {
			return nil, fmt.Errorf("failed requesting ranking page %d: %w", page, err)
		}

		var resp rankingResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed decoding ranking page %d: %w", page, err)
		}

		for _, item := range resp.Contents {
			id, err := pikax.ParseArtworkID(item.IllustID.String())
			if err != nil {
				c.log.WithError(err).Warnf("skipping unparsable ranking id %s", item.IllustID)
				continue
			}

			ids = append(ids, id)
			if limit > 0 && len(ids) >= limit {
				return ids, nil
			}
		}

		if len(resp.Contents) == 0 || bytes.Equal(resp.Next, []byte("false")) || len(resp.Next) == 0 {
			return ids, nil
		}
	}
}

type searchResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Body    struct {
		IllustManga struct {
			Data []struct {
				ID string `json:"id"`
			} `json:"data"`
			Total int `json:"total"`
		} `json:"illustManga"`
	} `json:"body"`
}

// SearchIDs collects artwork ids matching keyword until limit ids are
// gathered or the results run out.
func (c *Client) SearchIDs(ctx context.Context, keyword string, limit int) ([]pikax.ArtworkID, error) {
	var ids []pikax.ArtworkID
	for page := 1; ; page++ {
		reqUrl := c.wwwUrl.JoinPath("/ajax/search/artworks/" + url.PathEscape(keyword))
		reqUrl.RawQuery = url.Values{"p": {strconv.Itoa(page)}}.Encode()

		body, err := c.get(ctx, reqUrl)
		if err != nil {
			return nil, fmt.Errorf("failed requesting search page %d: %w", page, err)
		}

		var resp searchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed decoding search page %d: %w", page, err)
		} else if resp.Error {
			return nil, fmt.Errorf("search refused by server: %s", resp.Message)
		}

		if len(resp.Body.IllustManga.Data) == 0 {
			return ids, nil
		}

		for _, item := range resp.Body.IllustManga.Data {
			id, err := pikax.ParseArtworkID(item.ID)
			if err != nil {
				c.log.WithError(err).Warnf("skipping unparsable search id %s", item.ID)
				continue
			}

			ids = append(ids, id)
			if limit > 0 && len(ids) >= limit {
				return ids, nil
			}
		}
	}
}
