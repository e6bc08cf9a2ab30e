package blog

import (
	"context"
	"mime/multipart"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alphastore/models"
	"alphastore/uploads"
	"alphastore/validation"
)

var errNotFound = errors.New("not found")

type memRepo struct {
	docs      map[primitive.ObjectID]*models.Blog
	failWrite bool
}

func (m *memRepo) Create(_ context.Context, b *models.Blog) error {
	if m.failWrite {
		return errors.New("write failed")
	}
	cp := *b
	m.docs[b.ID] = &cp
	return nil
}

func (m *memRepo) Get(_ context.Context, id primitive.ObjectID) (*models.Blog, error) {
	b, ok := m.docs[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memRepo) List(context.Context) ([]models.Blog, error) {
	out := []models.Blog{}
	for _, b := range m.docs {
		out = append(out, *b)
	}
	return out, nil
}

func (m *memRepo) ListWhere(_ context.Context, field string, value any) ([]models.Blog, error) {
	out := []models.Blog{}
	for _, b := range m.docs {
		if field == "published" && b.Published == value {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memRepo) Update(ctx context.Context, id primitive.ObjectID, set map[string]any) (*models.Blog, error) {
	if m.failWrite {
		return nil, errors.New("write failed")
	}
	b, ok := m.docs[id]
	if !ok {
		return nil, errNotFound
	}
	b.Title = set["title"].(string)
	b.Content = set["content"].(string)
	b.Published = set["published"].(bool)
	if img, ok := set["image"].(string); ok {
		b.Image = img
	}
	return m.Get(ctx, id)
}

func (m *memRepo) Delete(_ context.Context, id primitive.ObjectID) (*models.Blog, error) {
	b, ok := m.docs[id]
	if !ok {
		return nil, errNotFound
	}
	delete(m.docs, id)
	return b, nil
}

type memFiles struct {
	n       int
	live    map[string]bool
	removed []string
}

func (m *memFiles) Save(sub string, fh *multipart.FileHeader, allowed []string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	ok := false
	for _, a := range allowed {
		ok = ok || a == ext
	}
	if !ok {
		return "", uploads.ErrFileType
	}
	m.n++
	p := "/uploads/" + sub + "/" + string(rune('0'+m.n)) + "-" + fh.Filename
	m.live[p] = true
	return p, nil
}

func (m *memFiles) Remove(p string) error {
	delete(m.live, p)
	m.removed = append(m.removed, p)
	return nil
}

func newService() (*Service, *memRepo, *memFiles) {
	repo := &memRepo{docs: map[primitive.ObjectID]*models.Blog{}}
	files := &memFiles{live: map[string]bool{}}
	svc := NewService(repo, files, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc, repo, files
}

func image(name string) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: name}
}

func TestCreate(t *testing.T) {
	svc, repo, files := newService()
	ctx := context.Background()

	b, err := svc.Create(ctx, Input{Title: "New GPUs", Content: "...", Published: true}, image("gpu.png"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/blogs/1-gpu.png", b.Image)
	assert.True(t, files.live[b.Image])
	assert.Contains(t, repo.docs, b.ID)

	_, err = svc.Create(ctx, Input{Title: "x", Content: "y"}, nil)
	assert.True(t, validation.Is(err))
	_, err = svc.Create(ctx, Input{Title: "x", Content: "y"}, image("virus.exe"))
	assert.True(t, validation.Is(err))
	_, err = svc.Create(ctx, Input{Content: "y"}, image("a.png"))
	assert.True(t, validation.Is(err))
}

func TestCreate_RemovesImageWhenStoreFails(t *testing.T) {
	svc, repo, files := newService()
	repo.failWrite = true

	_, err := svc.Create(context.Background(), Input{Title: "x", Content: "y"}, image("a.jpg"))
	require.Error(t, err)
	assert.Empty(t, files.live)
	assert.Len(t, files.removed, 1)
}

func TestUpdate_ReplacesImage(t *testing.T) {
	svc, _, files := newService()
	ctx := context.Background()

	b, err := svc.Create(ctx, Input{Title: "x", Content: "y"}, image("old.png"))
	require.NoError(t, err)

	got, err := svc.Update(ctx, b.ID, Input{Title: "x2", Content: "y2", Published: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, b.Image, got.Image)
	assert.Empty(t, files.removed)

	got, err = svc.Update(ctx, b.ID, Input{Title: "x3", Content: "y3"}, image("new.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/blogs/2-new.jpeg", got.Image)
	assert.Equal(t, []string{b.Image}, files.removed)
	assert.Equal(t, "x3", got.Title)
}

func TestListAndDelete(t *testing.T) {
	svc, _, files := newService()
	ctx := context.Background()

	pub, err := svc.Create(ctx, Input{Title: "a", Content: "a", Published: true}, image("a.png"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, Input{Title: "b", Content: "b"}, image("b.png"))
	require.NoError(t, err)

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	published, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, pub.ID, published[0].ID)

	require.NoError(t, svc.Delete(ctx, pub.ID))
	assert.False(t, files.live[pub.Image])
	require.ErrorIs(t, svc.Delete(ctx, pub.ID), errNotFound)
}
