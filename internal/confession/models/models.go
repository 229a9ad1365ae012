package models

import (
	"time"

	id "confessional/pkg/domain"
	dErrors "confessional/pkg/domain-errors"
	"confessional/pkg/platform/privacy"
	"confessional/pkg/platform/validation"
	strutil "confessional/pkg/string"
)

// Confession is a stored content item. AuthorID stays inside the core and
// moderation; views never carry it.
type Confession struct {
	ID        id.ConfessionID
	AuthorID  id.PrincipalID
	Body      string
	ImageKey  string
	Removed   bool
	RemovedAt *time.Time
	CreatedAt time.Time
}

// Comment is keyed by the commenter's ActionToken, never by principal.
type Comment struct {
	ID           id.CommentID
	ConfessionID id.ConfessionID
	Token        privacy.ActionToken
	Body         string
	CreatedAt    time.Time
}

// Stats are the reaction counters of one confession as seen by one viewer.
type Stats struct {
	Likes    int
	Comments int
	Liked    bool
}

// FeedItem pairs a confession with the viewer's stats.
type FeedItem struct {
	Confession *Confession
	Stats      Stats
}

// Summary is what moderators see of a reported item.
type Summary struct {
	ID        id.ConfessionID `json:"id"`
	Excerpt   string          `json:"excerpt"`
	Removed   bool            `json:"removed"`
	CreatedAt time.Time       `json:"created_at"`
}

const excerptRunes = 140

// Summarize trims the body to a short excerpt.
func Summarize(c *Confession) Summary {
	excerpt := []rune(c.Body)
	if len(excerpt) > excerptRunes {
		excerpt = append(excerpt[:excerptRunes], '…')
	}
	return Summary{ID: c.ID, Excerpt: string(excerpt), Removed: c.Removed, CreatedAt: c.CreatedAt}
}

// CreateCommand carries a new confession into the service. Image is optional.
type CreateCommand struct {
	Text             string
	Image            []byte
	ImageContentType string
}

// Normalize strips control characters and surrounding whitespace.
func (c *CreateCommand) Normalize() {
	c.Text = strutil.StripControl(c.Text)
}

func (c *CreateCommand) Validate() error {
	return validation.CheckRuneLength("text", c.Text, validation.MinConfessionLength, validation.MaxConfessionLength)
}

// NormalizeComment sanitizes and validates comment text.
func NormalizeComment(text string) (string, error) {
	text = strutil.StripControl(text)
	if err := validation.CheckRuneLength("text", text, validation.MinCommentLength, validation.MaxCommentLength); err != nil {
		return "", err
	}
	return text, nil
}

// View is the anonymous representation returned to readers.
type View struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	ImageURL  string        `json:"image_url,omitempty"`
	Likes     int           `json:"likes"`
	Comments  int           `json:"comments"`
	Liked     bool          `json:"liked"`
	Thread    []CommentView `json:"comment_list,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

type CommentView struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// NewView builds the reader-facing view. imageURL resolves an image key.
func NewView(c *Confession, stats Stats, imageURL func(string) string) View {
	v := View{
		ID:        c.ID.String(),
		Text:      c.Body,
		Likes:     stats.Likes,
		Comments:  stats.Comments,
		Liked:     stats.Liked,
		CreatedAt: c.CreatedAt,
	}
	if c.ImageKey != "" && imageURL != nil {
		v.ImageURL = imageURL(c.ImageKey)
	}
	return v
}

func NewCommentView(c *Comment) CommentView {
	return CommentView{ID: c.ID.String(), Text: c.Body, CreatedAt: c.CreatedAt}
}

// ErrNotFound is the reader-facing error for removed or missing items.
func ErrNotFound() error {
	return dErrors.New(dErrors.CodeNotFound, "confession not found")
}
