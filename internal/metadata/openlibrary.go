package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const userAgent = "Bookshelf/1.0 (https://github.com/mrlokans/bookshelf)"

// ErrNoMatch is returned when the provider knows nothing about a book.
var ErrNoMatch = errors.New("no metadata match")

// BookMetadata is what a provider knows about one edition of a book.
type BookMetadata struct {
	Title           string   `json:"title,omitempty"`
	Author          string   `json:"author,omitempty"`
	ISBN            string   `json:"isbn,omitempty"`
	CoverURL        string   `json:"cover_url,omitempty"`
	PublicationYear int      `json:"publication_year,omitempty"`
	Description     string   `json:"description,omitempty"`
	Subjects        []string `json:"subjects,omitempty"`
	PageCount       int      `json:"page_count,omitempty"`
	OpenLibraryKey  string   `json:"open_library_key,omitempty"`
}

// Genre returns the first subject, which is the closest thing OpenLibrary
// has to a single genre.
func (m *BookMetadata) Genre() string {
	for _, s := range m.Subjects {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// OpenLibraryClient fetches book metadata from the OpenLibrary API.
type OpenLibraryClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

// wait blocks until the next call is allowed or ctx is done.
func (r *rateLimiter) wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if delay := r.interval - time.Since(r.lastCall); delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	r.lastCall = time.Now()
	return nil
}

// NewOpenLibraryClient creates a client for the given base URL, limited to
// one request per second. An empty baseURL means the public service.
func NewOpenLibraryClient(baseURL string) *OpenLibraryClient {
	if baseURL == "" {
		baseURL = "https://openlibrary.org"
	}
	return &OpenLibraryClient{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: newRateLimiter(time.Second),
	}
}

// SearchByISBN looks up an edition by ISBN. When the edition has no
// description, the description of its work is used instead.
func (c *OpenLibraryClient) SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	isbn = normalizeISBN(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("invalid ISBN")
	}

	var edition openLibraryEdition
	if err := c.getJSON(ctx, fmt.Sprintf("/isbn/%s.json", isbn), &edition); err != nil {
		return nil, fmt.Errorf("fetch ISBN %s: %w", isbn, err)
	}

	meta := &BookMetadata{
		Title:           edition.Title,
		ISBN:            isbn,
		OpenLibraryKey:  edition.Key,
		PageCount:       edition.NumberOfPages,
		PublicationYear: extractYear(edition.PublishDate),
		Description:     textValue(edition.Description),
		Subjects:        edition.Subjects,
		CoverURL:        fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-L.jpg", isbn),
	}

	if len(edition.Works) > 0 && (meta.Description == "" || len(meta.Subjects) == 0) {
		var work openLibraryWork
		if err := c.getJSON(ctx, edition.Works[0].Key+".json", &work); err == nil {
			if meta.Description == "" {
				meta.Description = textValue(work.Description)
			}
			if len(meta.Subjects) == 0 {
				meta.Subjects = work.Subjects
			}
		}
	}

	return meta, nil
}

// SearchByTitle runs a full-text search and returns the best scoring match.
func (c *OpenLibraryClient) SearchByTitle(ctx context.Context, title, author string) (*BookMetadata, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	q := strings.TrimSpace(title + " " + author)
	var result openLibrarySearchResult
	if err := c.getJSON(ctx, "/search.json?limit=5&q="+url.QueryEscape(q), &result); err != nil {
		return nil, fmt.Errorf("search %q: %w", q, err)
	}
	if len(result.Docs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, title)
	}

	doc := bestMatch(result.Docs, title, author)
	meta := &BookMetadata{
		Title:           doc.Title,
		PublicationYear: doc.FirstPublishYear,
		OpenLibraryKey:  doc.Key,
		PageCount:       doc.NumberOfPagesMedian,
	}
	if len(doc.AuthorName) > 0 {
		meta.Author = doc.AuthorName[0]
	}
	if len(doc.Subject) > 0 {
		meta.Subjects = doc.Subject[:min(len(doc.Subject), 10)]
	}
	switch {
	case len(doc.ISBN) > 0:
		meta.ISBN = doc.ISBN[0]
		meta.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-L.jpg", doc.ISBN[0])
	case doc.CoverI != 0:
		meta.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", doc.CoverI)
	}
	return meta, nil
}

func (c *OpenLibraryClient) getJSON(ctx context.Context, path string, out any) error {
	if err := c.rateLimiter.wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNoMatch
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// bestMatch scores candidates on title and author similarity, preferring
// entries that carry an ISBN or cover.
func bestMatch(docs []openLibrarySearchDoc, title, author string) *openLibrarySearchDoc {
	title = strings.ToLower(title)
	author = strings.ToLower(author)

	best, bestScore := &docs[0], -1
	for i := range docs {
		doc := &docs[i]
		score := similarity(strings.ToLower(doc.Title), title)
		if author != "" {
			for _, name := range doc.AuthorName {
				if s := similarity(strings.ToLower(name), author); s > 0 {
					score += s
					break
				}
			}
		}
		if len(doc.ISBN) > 0 {
			score += 2
		}
		if doc.CoverI != 0 {
			score++
		}
		if score > bestScore {
			best, bestScore = doc, score
		}
	}
	return best
}

func similarity(candidate, want string) int {
	switch {
	case candidate == want:
		return 10
	case want != "" && strings.Contains(candidate, want):
		return 5
	default:
		return 0
	}
}

// normalizeISBN strips separators and returns "" unless the result has the
// length of an ISBN-10 or ISBN-13.
func normalizeISBN(isbn string) string {
	isbn = strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(isbn))
	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}
	return isbn
}

// extractYear pulls a four-digit year out of OpenLibrary's free-form dates.
func extractYear(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}

	for _, layout := range []string{"2006", "January 2, 2006", "Jan 2, 2006", "2006-01-02", "January 2006"} {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Year()
		}
	}

	for i := 0; i+4 <= len(date); i++ {
		year := 0
		ok := true
		for _, ch := range date[i : i+4] {
			if ch < '0' || ch > '9' {
				ok = false
				break
			}
			year = year*10 + int(ch-'0')
		}
		if ok && year > 1000 && year < 3000 {
			return year
		}
	}
	return 0
}

// textValue handles fields that are either a plain string or {type, value}.
func textValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if s, ok := t["value"].(string); ok {
			return s
		}
	}
	return ""
}

type keyRef struct {
	Key string `json:"key"`
}

type openLibraryEdition struct {
	Key           string   `json:"key"`
	Title         string   `json:"title"`
	PublishDate   string   `json:"publish_date"`
	NumberOfPages int      `json:"number_of_pages"`
	Description   any      `json:"description"`
	Subjects      []string `json:"subjects"`
	Works         []keyRef `json:"works"`
}

type openLibraryWork struct {
	Description any      `json:"description"`
	Subjects    []string `json:"subjects"`
}

type openLibrarySearchResult struct {
	NumFound int                    `json:"numFound"`
	Docs     []openLibrarySearchDoc `json:"docs"`
}

type openLibrarySearchDoc struct {
	Key                 string   `json:"key"`
	Title               string   `json:"title"`
	AuthorName          []string `json:"author_name"`
	FirstPublishYear    int      `json:"first_publish_year"`
	ISBN                []string `json:"isbn"`
	CoverI              int      `json:"cover_i"`
	Subject             []string `json:"subject"`
	NumberOfPagesMedian int      `json:"number_of_pages_median"`
}
