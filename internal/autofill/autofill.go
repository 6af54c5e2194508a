// Package autofill asks Gemini to turn ticket e-mails, screenshots and PDFs
// into concert drafts, and to complete a city with its venue.
package autofill

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"google.golang.org/genai"

	"concertlog/internal/concert"
)

var (
	// ErrEmptyInput is returned when there is nothing to analyze.
	ErrEmptyInput = errors.New("nothing to analyze")
	// ErrUnsupportedFile is returned for files that are neither images nor PDFs.
	ErrUnsupportedFile = errors.New("only images and PDF files are supported")
	// ErrBadResponse is returned when the model answer cannot be decoded.
	ErrBadResponse = errors.New("unreadable model response")
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash"

// Extractor is the contract the HTTP layer depends on.
type Extractor interface {
	FromText(ctx context.Context, text string) (concert.Draft, error)
	FromFile(ctx context.Context, name, mimeType string, data []byte) (concert.Draft, error)
	EnrichVenue(ctx context.Context, d concert.Draft) (string, error)
}

// Config configures the Gemini client.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string // overrides the Gemini endpoint, mostly for tests
	HTTPClient *http.Client
}

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client extracts concert drafts with Gemini.
type Client struct {
	models    generator
	model     string
	sanitizer *bluemonday.Policy
}

// New creates a Gemini backed Client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{
		models:    gc.Models,
		model:     cfg.Model,
		sanitizer: bluemonday.StrictPolicy(),
	}, nil
}

var draftSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"band":  {Type: genai.TypeString, Description: "Main artist or artists, comma separated"},
		"date":  {Type: genai.TypeString, Description: "Concert date as YYYY-MM-DD"},
		"city":  {Type: genai.TypeString, Description: "City, with the venue when known, e.g. \"Milano, Fabrique\""},
		"event": {Type: genai.TypeString, Description: "Event or festival name"},
		"cost":  {Type: genai.TypeNumber, Description: "Total amount paid, number only"},
	},
}

var venueSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"venue": {Type: genai.TypeString},
	},
}

const textPrompt = `The text below is most likely a ticket confirmation e-mail or the description of a concert.
Extract the concert details as JSON following the schema.

TEXT:
%q

Fields:
- band: main artist(s), comma separated.
- date: YYYY-MM-DD.
- city: city name, including the venue when the text names it (e.g. "Milano, Fabrique").
- event: event name.
- cost: total amount paid (number only).
Leave a field out when the text does not say.`

const filePrompt = `This file (image or PDF) is a concert ticket, receipt or poster.
Original file name, use it as extra context: %q
Extract band, date (YYYY-MM-DD), city (add the venue when visible), event and cost (number) as JSON.`

const venuePrompt = `Identify the venue of this concert.
Artist: %s
Date: %s
City: %s
Event: %s

Answer with the venue combined with the city as "City, Venue" (e.g. "Milano, Fabrique" or "Parma, Parco Ducale").
Rules:
1. If the city already includes a venue, return it unchanged.
2. If you cannot determine the venue for this artist and date, return the city alone.
3. Prefer well known venues such as stadiums, clubs and parks.`

// FromText extracts a draft from free text. HTML markup, as found in pasted
// e-mail bodies, is stripped first.
func (c *Client) FromText(ctx context.Context, text string) (concert.Draft, error) {
	clean := strings.TrimSpace(html.UnescapeString(c.sanitizer.Sanitize(text)))
	if clean == "" {
		return concert.Draft{}, ErrEmptyInput
	}

	parts := []*genai.Part{genai.NewPartFromText(fmt.Sprintf(textPrompt, clean))}
	return c.extractDraft(ctx, parts)
}

// FromFile extracts a draft from an image or PDF. The file name is passed to
// the model as context.
func (c *Client) FromFile(ctx context.Context, name, mimeType string, data []byte) (concert.Draft, error) {
	if len(data) == 0 {
		return concert.Draft{}, ErrEmptyInput
	}
	if !SupportedMIME(mimeType) {
		return concert.Draft{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, mimeType)
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(data, mimeType),
		genai.NewPartFromText(fmt.Sprintf(filePrompt, name)),
	}
	return c.extractDraft(ctx, parts)
}

// EnrichVenue returns "City, Venue" for the draft, or the draft's city when
// the model cannot name a venue. Band and city are required.
func (c *Client) EnrichVenue(ctx context.Context, d concert.Draft) (string, error) {
	band, date, city, event := deref(d.Band), deref(d.Date), deref(d.City), deref(d.Event)
	if strings.TrimSpace(band) == "" || strings.TrimSpace(city) == "" {
		return "", ErrEmptyInput
	}

	parts := []*genai.Part{genai.NewPartFromText(fmt.Sprintf(venuePrompt, band, date, city, event))}
	raw, err := c.generate(ctx, parts, venueSchema)
	if err != nil {
		return "", err
	}

	var out struct {
		Venue string `json:"venue"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if v := strings.TrimSpace(out.Venue); v != "" {
		return v, nil
	}
	return city, nil
}

// SupportedMIME reports whether FromFile accepts mimeType.
func SupportedMIME(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return strings.HasPrefix(mimeType, "image/") || mimeType == "application/pdf"
}

func (c *Client) extractDraft(ctx context.Context, parts []*genai.Part) (concert.Draft, error) {
	raw, err := c.generate(ctx, parts, draftSchema)
	if err != nil {
		return concert.Draft{}, err
	}

	var payload struct {
		Band  *string `json:"band"`
		Date  *string `json:"date"`
		City  *string `json:"city"`
		Event *string `json:"event"`
		Cost  any     `json:"cost"` // kept only when it is a JSON number
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return concert.Draft{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	d := concert.Draft{Band: payload.Band, Date: payload.Date, City: payload.City, Event: payload.Event}
	if cost, ok := payload.Cost.(float64); ok {
		d.Cost = &cost
	}
	return trimDraft(d), nil
}

func (c *Client) generate(ctx context.Context, parts []*genai.Part, schema *genai.Schema) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty answer", ErrBadResponse)
	}
	return text, nil
}

// trimDraft drops fields the model returned blank.
func trimDraft(d concert.Draft) concert.Draft {
	clean := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		if v == "" {
			return nil
		}
		return &v
	}
	d.Band, d.Date, d.City, d.Event = clean(d.Band), clean(d.Date), clean(d.City), clean(d.Event)
	if d.Cost != nil && *d.Cost < 0 {
		d.Cost = nil
	}
	return d
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
