package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stardom/internal/game"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func gamePath(id, suffix string) string {
	return "/v1/games/" + url.PathEscape(id) + suffix
}

type NewGameResult struct {
	ID    string     `json:"id"`
	State game.State `json:"state"`
}

func (c *Client) NewGame(ctx context.Context, player, subscription string, seed int64) (NewGameResult, error) {
	var out NewGameResult
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games", map[string]any{
		"player_name":       player,
		"subscription_type": subscription,
		"seed":              seed,
	}, &out)
	return out, err
}

func (c *Client) ListGames(ctx context.Context) ([]string, error) {
	var out struct {
		Games []string `json:"games"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games", nil, &out)
	return out.Games, err
}

func (c *Client) Game(ctx context.Context, id string) (game.State, error) {
	var out game.State
	err := c.jsonRequest(ctx, http.MethodGet, gamePath(id, ""), nil, &out)
	return out, err
}

func (c *Client) AdvanceWeek(ctx context.Context, id string) (game.WeekReport, error) {
	var out game.WeekReport
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "/week"), nil, &out)
	return out, err
}

func (c *Client) CreateSong(ctx context.Context, id, title string, tier int, featuring []string) (game.Song, error) {
	var out game.Song
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "/songs"), map[string]any{
		"title":     title,
		"tier":      tier,
		"featuring": featuring,
	}, &out)
	return out, err
}

func (c *Client) ReleaseSong(ctx context.Context, id, songID string, platforms []string) (float64, error) {
	var out struct {
		HypeMultiplier float64 `json:"hype_multiplier"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "/songs/"+url.PathEscape(songID)+"/release"), map[string]any{
		"platforms": platforms,
	}, &out)
	return out.HypeMultiplier, err
}

func (c *Client) CreateAlbum(ctx context.Context, id, title, albumType string, songIDs []string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "/albums"), map[string]any{
		"title":    title,
		"type":     albumType,
		"song_ids": songIDs,
	}, &out)
	return out.ID, err
}

func (c *Client) CreateDeluxe(ctx context.Context, id, albumID, title string, extra []string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "/albums/"+url.PathEscape(albumID)+"/deluxe"), map[string]any{
		"title":          title,
		"extra_song_ids": extra,
	}, &out)
	return out.ID, err
}

func (c *Client) CreateRemix(ctx context.Context, id, albumID, title string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "/albums/"+url.PathEscape(albumID)+"/remix"), map[string]any{
		"title": title,
	}, &out)
	return out.ID, err
}

func (c *Client) ReleaseAlbum(ctx context.Context, id, albumID string) (float64, error) {
	var out struct {
		HypeMultiplier float64 `json:"hype_multiplier"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "/albums/"+url.PathEscape(albumID)+"/release"), nil, &out)
	return out.HypeMultiplier, err
}

func (c *Client) RequestFeature(ctx context.Context, id, rapperID string, tier int, title string) (game.FeatureOutcome, error) {
	var out game.FeatureOutcome
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "/features"), map[string]any{
		"rapper_id": rapperID,
		"tier":      tier,
		"title":     title,
	}, &out)
	return out, err
}

func (c *Client) RespondFeature(ctx context.Context, id, rapperID string, accept bool) (game.Event, error) {
	var out game.Event
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "/features/"+url.PathEscape(rapperID)+"/respond"), map[string]any{
		"accept": accept,
	}, &out)
	return out, err
}

func (c *Client) ResolveEvent(ctx context.Context, id, eventID string, option int) (game.Event, error) {
	var out game.Event
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "/events/"+url.PathEscape(eventID)+"/resolve"), map[string]any{
		"option": option,
	}, &out)
	return out, err
}

func (c *Client) RespondControversy(ctx context.Context, id, controversyID string, response int) (game.Event, error) {
	var out game.Event
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "/controversies/"+url.PathEscape(controversyID)+"/respond"), map[string]any{
		"response": response,
	}, &out)
	return out, err
}

func (c *Client) Announce(ctx context.Context, id, hypeType, title, relatedID string, targetWeek int) (game.HypeEvent, error) {
	var out game.HypeEvent
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "/hype"), map[string]any{
		"type":        hypeType,
		"title":       title,
		"related_id":  relatedID,
		"target_week": targetWeek,
	}, &out)
	return out, err
}

func (c *Client) Promote(ctx context.Context, id, hypeID string, spendCents int64) (game.HypeEvent, error) {
	var out game.HypeEvent
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "/hype/"+url.PathEscape(hypeID)+"/promote"), map[string]any{
		"spend_cents": spendCents,
	}, &out)
	return out, err
}

func (c *Client) ScheduleConcert(ctx context.Context, id, venue string, capacity, priceCents int64, week int, setlist []string) (game.Concert, error) {
	var out game.Concert
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "/concerts"), map[string]any{
		"venue_name":         venue,
		"capacity":           capacity,
		"ticket_price_cents": priceCents,
		"week":               week,
		"setlist":            setlist,
	}, &out)
	return out, err
}

func (c *Client) StartTour(ctx context.Context, id, name string, stops []game.TourStop, setlist []string, hypeID string) (game.Tour, error) {
	var out game.Tour
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "/tours"), map[string]any{
		"name":          name,
		"stops":         stops,
		"setlist":       setlist,
		"hype_event_id": hypeID,
	}, &out)
	return out, err
}

func (c *Client) PostSocial(ctx context.Context, id, platform string) (game.SocialPlatform, error) {
	var out game.SocialPlatform
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "/social/"+url.PathEscape(platform)+"/post"), nil, &out)
	return out, err
}

func (c *Client) StockMerch(ctx context.Context, id, name string, priceCents, costCents, qty int64) (game.MerchItem, error) {
	var out game.MerchItem
	err := c.jsonRequest(ctx, http.MethodPost, gamePath(id, "/merch"), map[string]any{
		"name":        name,
		"price_cents": priceCents,
		"cost_cents":  costCents,
		"quantity":    qty,
	}, &out)
	return out, err
}

// Export returns the raw save JSON.
func (c *Client) Export(ctx context.Context, id string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+gamePath(id, "/export"), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := statusError(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) Import(ctx context.Context, data []byte) (NewGameResult, error) {
	var out NewGameResult
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/games/import", bytes.NewReader(data))
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if err := statusError(resp); err != nil {
		return out, err
	}
	return out, json.NewDecoder(resp.Body).Decode(&out)
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := statusError(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// APIError carries the status and message of a failed call.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

func statusError(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(raw))
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
