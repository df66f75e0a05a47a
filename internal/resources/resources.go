// Package resources is the typed surface of the HKI service, one field per
// collection.
package resources

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/whookdev/hki/internal/api"
	"github.com/whookdev/hki/internal/models"
	"github.com/whookdev/hki/internal/payload"
	"github.com/whookdev/hki/internal/urltemplate"
)

type API struct {
	Users        *Users
	Uploads      *Uploads
	Characters   *Characters
	Articles     *Articles
	Tags         *Tags
	ContentTags  *ContentTags
	Password     *Password
	Registration *Registration
	Auth         *Auth
}

func New(c *api.Client) *API {
	contentTags := &ContentTags{
		client: c,
		record: api.NewResource[models.ContentTag](c, api.Templates{
			// {id} is the content id here, not a tag id
			Create: "/api/content-tags/{id}",
		}),
	}

	users := &Users{
		client: c,
		record: api.NewResource[models.User](c, api.Single("/api/users/{id}")),
	}

	return &API{
		Users:   users,
		Uploads: &Uploads{client: c},
		Characters: &Characters{
			client: c,
			record: api.NewResource[models.Character](c, api.Templates{
				Create: "/api/users/{user_id}/characters",
				Update: "/api/users/characters/{id}",
			}),
		},
		Articles: &Articles{
			client: c,
			record: api.NewResource[models.Article](c, api.Templates{
				Create: "/api/users/{user_id}/articles",
				Update: "/api/users/articles/{id}",
			}),
		},
		Tags: &Tags{
			record: api.NewResource[models.Tag](c, api.Templates{
				Create: "/api/tags",
				Update: "/api/tags/{id}",
			}),
			contentTags: contentTags,
		},
		ContentTags:  contentTags,
		Password:     &Password{client: c},
		Registration: &Registration{client: c},
		Auth:         &Auth{client: c, users: users},
	}
}

type Users struct {
	client *api.Client
	record *api.Resource[models.User]
}

func (u *Users) List(ctx context.Context) ([]models.User, error) {
	return api.GetArray[models.User](ctx, u.client, "/api/users?is_include_skills=true", nil)
}

func (u *Users) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return u.record.Get(ctx, id)
}

// Save creates user when it has no id yet and updates it otherwise.
func (u *Users) Save(ctx context.Context, user *models.User) (*models.User, error) {
	return u.record.Save(ctx, user)
}

func (u *Users) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return u.record.Delete(ctx, id)
}

type Uploads struct {
	client *api.Client
}

func (u *Uploads) List(ctx context.Context, userID uuid.UUID) ([]models.Upload, error) {
	return api.GetArray[models.Upload](ctx, u.client, "/api/users/{user_id}/uploads", payload.Payload{"user_id": userID})
}

func (u *Uploads) Get(ctx context.Context, id uuid.UUID) (*models.Upload, error) {
	return api.GetObject[models.Upload](ctx, u.client, "/api/users/uploads/{id}", id)
}

// Upload posts files as one multipart form and returns the stored uploads.
func (u *Uploads) Upload(ctx context.Context, userID uuid.UUID, files []api.File) ([]models.Upload, error) {
	url, err := urltemplate.Resolve("/api/users/{user_id}/uploads", payload.Payload{"user_id": userID})
	if err != nil {
		return nil, err
	}
	return api.AsArray[models.Upload](u.client.SendMultipart(ctx, &api.Request{URL: url}, nil, files)), nil
}

func (u *Uploads) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return api.Remove(ctx, u.client, "/api/users/uploads/{id}", id)
}

type Characters struct {
	client *api.Client
	record *api.Resource[models.Character]
}

// List returns the characters of one user.
func (c *Characters) List(ctx context.Context, userID uuid.UUID) ([]models.Character, error) {
	return c.record.List(ctx, payload.Payload{"user_id": userID})
}

// ListAll returns every character regardless of owner.
func (c *Characters) ListAll(ctx context.Context) ([]models.Character, error) {
	return api.GetArray[models.Character](ctx, c.client, "/api/characters", nil)
}

func (c *Characters) Get(ctx context.Context, id uuid.UUID) (*models.Character, error) {
	return c.record.Get(ctx, id)
}

func (c *Characters) Save(ctx context.Context, character *models.Character) (*models.Character, error) {
	return c.record.Save(ctx, character)
}

func (c *Characters) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return c.record.Delete(ctx, id)
}

type Articles struct {
	client *api.Client
	record *api.Resource[models.Article]
}

func (a *Articles) List(ctx context.Context, userID uuid.UUID) ([]models.Article, error) {
	return a.record.List(ctx, payload.Payload{"user_id": userID})
}

func (a *Articles) ListAll(ctx context.Context) ([]models.Article, error) {
	return api.GetArray[models.Article](ctx, a.client, "/api/articles", nil)
}

func (a *Articles) Get(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	return api.GetObject[models.Article](ctx, a.client, "/api/articles/{id}", id)
}

func (a *Articles) Save(ctx context.Context, article *models.Article) (*models.Article, error) {
	return a.record.Save(ctx, article)
}

func (a *Articles) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return a.record.Delete(ctx, id)
}

type Tags struct {
	record      *api.Resource[models.Tag]
	contentTags *ContentTags
}

func (t *Tags) List(ctx context.Context) ([]models.Tag, error) {
	return t.record.List(ctx, nil)
}

func (t *Tags) Save(ctx context.Context, tag *models.Tag) (*models.Tag, error) {
	return t.record.Save(ctx, tag)
}

func (t *Tags) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return t.record.Delete(ctx, id)
}

// Attach links the tags titled titles to a piece of content, creating the
// tags that do not exist yet.
func (t *Tags) Attach(ctx context.Context, titles []string, userID, contentID uuid.UUID) error {
	known, err := t.List(ctx)
	if err != nil {
		return err
	}
	byTitle := make(map[string]models.Tag, len(known))
	for _, tag := range known {
		byTitle[tag.Title] = tag
	}

	var errs []error
	for _, title := range titles {
		tag, ok := byTitle[title]
		if !ok {
			created, err := t.Save(ctx, &models.Tag{UserID: userID, Title: title})
			if err != nil {
				return err
			}
			if created == nil {
				errs = append(errs, fmt.Errorf("creating tag %q failed", title))
				continue
			}
			tag = *created
			byTitle[title] = tag
		}

		linked, err := t.contentTags.Link(ctx, &models.ContentTag{
			ContentID: contentID,
			UserID:    userID,
			TagID:     tag.ID,
		})
		if err != nil {
			return err
		}
		if linked == nil {
			errs = append(errs, fmt.Errorf("linking tag %q failed", title))
		}
	}

	return errors.Join(errs...)
}

type ContentTags struct {
	client *api.Client
	record *api.Resource[models.ContentTag]
}

func (c *ContentTags) List(ctx context.Context, contentID uuid.UUID) ([]models.Tag, error) {
	return api.GetArray[models.Tag](ctx, c.client, "/api/content-tags/{id}", contentID)
}

func (c *ContentTags) Link(ctx context.Context, link *models.ContentTag) (*models.ContentTag, error) {
	return c.record.Save(ctx, link)
}

func (c *ContentTags) Unlink(ctx context.Context, link *models.ContentTag) (bool, error) {
	return c.record.Delete(ctx, link)
}

type Password struct {
	client *api.Client
}

func (p *Password) RequestReset(ctx context.Context, reset models.PasswordReset) bool {
	return api.AsBoolean(p.client.SendJSON(ctx, &api.Request{URL: "/api/resetpassword"}, reset))
}

func (p *Password) Save(ctx context.Context, update models.PasswordUpdate) bool {
	return api.AsBoolean(p.client.SendJSON(ctx, &api.Request{Method: http.MethodPut, URL: "/api/updatepassword"}, update))
}

type Registration struct {
	client *api.Client
}

// Invite is not wrapped: callers need to know why an invitation failed.
func (r *Registration) Invite(ctx context.Context, invitation models.Invitation) error {
	_, err := r.client.SendJSON(ctx, &api.Request{URL: "/api/invitations"}, invitation)
	return err
}

func (r *Registration) Confirm(ctx context.Context, invitation models.Invitation) (bool, error) {
	url, err := urltemplate.Resolve("/api/register/{id}", invitation)
	if err != nil {
		return false, err
	}
	return api.AsBoolean(r.client.SendJSON(ctx, &api.Request{URL: url}, invitation)), nil
}
