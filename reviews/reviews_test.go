package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alphastore/models"
	"alphastore/validation"
)

var errNotFound = errors.New("not found")

type memRepo struct {
	docs map[primitive.ObjectID]*models.Review
}

func (m *memRepo) Create(_ context.Context, r *models.Review) error {
	cp := *r
	m.docs[r.ID] = &cp
	return nil
}

func (m *memRepo) Get(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	r, ok := m.docs[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRepo) List(context.Context) ([]models.Review, error) {
	out := []models.Review{}
	for _, r := range m.docs {
		out = append(out, *r)
	}
	return out, nil
}

func (m *memRepo) ListWhere(_ context.Context, field string, value any) ([]models.Review, error) {
	out := []models.Review{}
	for _, r := range m.docs {
		switch {
		case field == "userId" && r.UserID == value, field == "status" && r.Status == value:
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRepo) Update(ctx context.Context, id primitive.ObjectID, set map[string]any) (*models.Review, error) {
	r, ok := m.docs[id]
	if !ok {
		return nil, errNotFound
	}
	for k, v := range set {
		switch k {
		case "rating":
			r.Rating = v.(int)
		case "comment":
			r.Comment = v.(string)
		case "reviewTitle":
			r.ReviewTitle = v.(string)
		case "status":
			r.Status = v.(string)
		case "flaggedReason":
			r.FlaggedReason = v.(string)
		}
	}
	return m.Get(ctx, id)
}

func (m *memRepo) Delete(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	r, ok := m.docs[id]
	if !ok {
		return nil, errNotFound
	}
	delete(m.docs, id)
	return r, nil
}

type buyers map[primitive.ObjectID]bool

func (b buyers) HasStatus(_ context.Context, id primitive.ObjectID, status models.OrderStatus) (bool, error) {
	return status == models.OrderHandedOver && b[id], nil
}

type fixture struct {
	svc   *Service
	repo  *memRepo
	buyer primitive.ObjectID
	now   time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:  &memRepo{docs: map[primitive.ObjectID]*models.Review{}},
		buyer: primitive.NewObjectID(),
		now:   time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.repo, buyers{f.buyer: true}, nil)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func input(comment string) SubmitInput {
	return SubmitInput{Rating: 4, Comment: comment, ReviewTitle: "Solid", FullName: "Dilini", Email: "d@example.com"}
}

func TestScreen(t *testing.T) {
	w, bad := Screen("This is a Piece Of Crap")
	assert.True(t, bad)
	assert.Equal(t, "piece of crap", w)

	_, bad = Screen("Great service, fast delivery")
	assert.False(t, bad)
}

func TestSubmit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	r, err := f.svc.Submit(ctx, f.buyer, input("Great build quality"))
	require.NoError(t, err)
	assert.Equal(t, models.ReviewPending, r.Status)
	assert.True(t, r.VerifiedBuyer)
	assert.Empty(t, r.FlaggedReason)

	r, err = f.svc.Submit(ctx, f.buyer, input("Totally OVERPRICED"))
	require.NoError(t, err)
	assert.Equal(t, models.ReviewFlagged, r.Status)
	assert.Equal(t, "Contains inappropriate language: overpriced", r.FlaggedReason)
	assert.Contains(t, f.repo.docs, r.ID)

	_, err = f.svc.Submit(ctx, primitive.NewObjectID(), input("Nice"))
	require.ErrorIs(t, err, ErrNotVerifiedBuyer)

	bad := input("Nice")
	bad.Rating = 6
	_, err = f.svc.Submit(ctx, f.buyer, bad)
	assert.True(t, validation.Is(err))
}

func TestUpdateAndDelete_EditWindow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	r, err := f.svc.Submit(ctx, f.buyer, input("Good"))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, primitive.NewObjectID(), r.ID, UpdateInput{Rating: 1, Comment: "x", ReviewTitle: "y"})
	require.ErrorIs(t, err, ErrNotOwner)

	f.now = f.now.Add(23 * time.Hour)
	got, err := f.svc.Update(ctx, f.buyer, r.ID, UpdateInput{Rating: 2, Comment: "Arrived broken", ReviewTitle: "Meh"})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Rating)
	assert.Equal(t, models.ReviewFlagged, got.Status)

	f.now = f.now.Add(2 * time.Hour)
	_, err = f.svc.Update(ctx, f.buyer, r.ID, UpdateInput{Rating: 5, Comment: "Fine", ReviewTitle: "Ok"})
	require.ErrorIs(t, err, ErrEditWindow)
	require.ErrorIs(t, f.svc.Delete(ctx, f.buyer, r.ID), ErrEditWindow)

	r2, err := f.svc.Submit(ctx, f.buyer, input("Good"))
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, f.buyer, r2.ID))
	assert.NotContains(t, f.repo.docs, r2.ID)
}

func TestModerate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	flagged, err := f.svc.Submit(ctx, f.buyer, input("worst ever"))
	require.NoError(t, err)

	got, err := f.svc.Moderate(ctx, flagged.ID, "Approved")
	require.NoError(t, err)
	assert.Equal(t, models.ReviewApproved, got.Status)
	assert.Empty(t, got.FlaggedReason)

	approved, err := f.svc.ListApproved(ctx)
	require.NoError(t, err)
	assert.Len(t, approved, 1)

	got, err = f.svc.Moderate(ctx, flagged.ID, ActionReject)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, f.repo.docs)

	_, err = f.svc.Moderate(ctx, flagged.ID, ActionDelete)
	require.ErrorIs(t, err, errNotFound)

	_, err = f.svc.Moderate(ctx, flagged.ID, "maybe")
	assert.True(t, validation.Is(err))
}

func TestListMine(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.buyer, input("Good"))
	require.NoError(t, err)

	mine, err := f.svc.ListMine(ctx, f.buyer)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
