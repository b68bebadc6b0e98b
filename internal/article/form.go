package article

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/nhuongmh/langfi-go/internal/api"
	"github.com/nhuongmh/langfi-go/internal/model"
)

var validate = validator.New()

// Draft is the article submission form. Only the title is mandatory; the
// origin link can be used to pre-fill the rest.
type Draft struct {
	Origin  string `json:"origin" validate:"omitempty,url"`
	Title   string `json:"title" validate:"required"`
	Image   string `json:"image" validate:"omitempty,url"`
	Content string `json:"content"`
}

// Validate checks the draft before submission.
func (d *Draft) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid article: %w", err)
	}
	return nil
}

// Form drives the new-article screen: paste a link, load metadata, adjust,
// submit.
type Form struct {
	api   *api.Client
	Draft Draft
}

// NewForm creates an empty article form.
func NewForm(client *api.Client) *Form {
	return &Form{api: client}
}

// Prefill fetches title, image and content from the draft's origin link.
// The origin itself is preserved.
func (f *Form) Prefill(ctx context.Context) error {
	if f.Draft.Origin == "" {
		return fmt.Errorf("no source link to load from")
	}
	loaded, err := f.api.LoadArticleFromURL(ctx, f.Draft.Origin)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	f.Draft.Title = loaded.Title
	f.Draft.Image = loaded.Image
	f.Draft.Content = loaded.Content
	return nil
}

// Submit validates the draft and creates the article, clearing the form on
// success.
func (f *Form) Submit(ctx context.Context) error {
	if err := f.Draft.Validate(); err != nil {
		return err
	}
	a := &model.Article{
		Origin:  f.Draft.Origin,
		Title:   f.Draft.Title,
		Image:   f.Draft.Image,
		Content: f.Draft.Content,
	}
	if err := f.api.CreateArticle(ctx, a); err != nil {
		return fmt.Errorf("submit article: %w", err)
	}
	f.Draft = Draft{}
	return nil
}
