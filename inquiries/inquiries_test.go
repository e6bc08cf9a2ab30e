package inquiries

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
	docs      map[primitive.ObjectID]*models.Inquiry
	failOn    primitive.ObjectID
	createErr error
}

func (m *memRepo) Create(_ context.Context, q *models.Inquiry) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *q
	m.docs[q.ID] = &cp
	return nil
}

func (m *memRepo) Get(_ context.Context, id primitive.ObjectID) (*models.Inquiry, error) {
	q, ok := m.docs[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *q
	return &cp, nil
}

func (m *memRepo) List(context.Context) ([]models.Inquiry, error) {
	out := []models.Inquiry{}
	for _, q := range m.docs {
		out = append(out, *q)
	}
	return out, nil
}

func (m *memRepo) ListWhere(_ context.Context, field string, value any) ([]models.Inquiry, error) {
	out := []models.Inquiry{}
	for _, q := range m.docs {
		if field == "userId" && q.UserID == value {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (m *memRepo) Update(ctx context.Context, id primitive.ObjectID, set map[string]any) (*models.Inquiry, error) {
	q, ok := m.docs[id]
	if !ok {
		return nil, errNotFound
	}
	for k, v := range set {
		switch k {
		case "inquirySubject":
			q.InquirySubject = v.(string)
		case "additionalDetails":
			q.AdditionalDetails = v.(string)
		case "status":
			q.Status = v.(string)
		case "resolvedAt":
			at := v.(time.Time)
			q.ResolvedAt = &at
		case "adminAnswer":
			q.AdminAnswer = v.(string)
		}
	}
	return m.Get(ctx, id)
}

func (m *memRepo) Delete(_ context.Context, id primitive.ObjectID) (*models.Inquiry, error) {
	if id == m.failOn {
		return nil, errors.New("connection reset")
	}
	q, ok := m.docs[id]
	if !ok {
		return nil, errNotFound
	}
	delete(m.docs, id)
	return q, nil
}

func (m *memRepo) HasSimilar(_ context.Context, details string) (bool, error) {
	for _, q := range m.docs {
		if strings.Contains(strings.ToLower(q.AdditionalDetails), strings.ToLower(details)) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) ResolvedBefore(_ context.Context, cutoff time.Time) ([]models.Inquiry, error) {
	out := []models.Inquiry{}
	for _, q := range m.docs {
		if q.Status == models.InquiryResolved && q.ResolvedAt != nil && !q.ResolvedAt.After(cutoff) {
			out = append(out, *q)
		}
	}
	return out, nil
}

type memFAQs struct{ created []models.FAQ }

func (m *memFAQs) Create(_ context.Context, f *models.FAQ) error {
	m.created = append(m.created, *f)
	return nil
}

type memFiles struct {
	saved   []string
	removed []string
}

func (m *memFiles) Save(sub string, fh *multipart.FileHeader, allowed []string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	for _, a := range allowed {
		if a == ext {
			p := "/uploads/" + sub + "/" + fh.Filename
			m.saved = append(m.saved, p)
			return p, nil
		}
	}
	return "", uploads.ErrFileType
}

func (m *memFiles) Remove(p string) error {
	m.removed = append(m.removed, p)
	return nil
}

type fixture struct {
	svc   *Service
	repo  *memRepo
	faqs  *memFAQs
	files *memFiles
	now   time.Time
	user  primitive.ObjectID
}

func newFixture() *fixture {
	f := &fixture{
		repo:  &memRepo{docs: map[primitive.ObjectID]*models.Inquiry{}},
		faqs:  &memFAQs{},
		files: &memFiles{},
		now:   time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		user:  primitive.NewObjectID(),
	}
	f.svc = NewService(Deps{Repo: f.repo, FAQs: f.faqs, Files: f.files})
	f.svc.now = func() time.Time { return f.now }
	return f
}

func input() SubmitInput {
	return SubmitInput{
		FullName:          "Kamal Silva",
		Email:             "kamal@example.com",
		ContactNumber:     "0771234567",
		InquiryType:       models.InquiryProductAvailability,
		ProductName:       "RTX 4070",
		InquirySubject:    "When is the RTX 4070 back?",
		AdditionalDetails: "Looking for the Founders Edition restock date",
		UserApproval:      true,
	}
}

func TestSubmit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	q, err := f.svc.Submit(ctx, f.user, input(), &multipart.FileHeader{Filename: "shot.png"})
	require.NoError(t, err)
	assert.Equal(t, models.InquiryPending, q.Status)
	assert.Equal(t, "/uploads/inquiries/shot.png", q.Attachment)
	assert.True(t, q.UserApproval)
	assert.Contains(t, f.repo.docs, q.ID)

	dup := input()
	dup.AdditionalDetails = "founders edition RESTOCK"
	_, err = f.svc.Submit(ctx, f.user, dup, nil)
	require.ErrorIs(t, err, ErrSimilarExists)
}

func TestSubmit_Rejects(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	missing := input()
	missing.InquirySubject = " "
	_, err := f.svc.Submit(ctx, f.user, missing, nil)
	require.True(t, validation.Is(err))

	badType := input()
	badType.InquiryType = "Complaint"
	_, err = f.svc.Submit(ctx, f.user, badType, nil)
	require.True(t, validation.Is(err))

	_, err = f.svc.Submit(ctx, f.user, input(), &multipart.FileHeader{Filename: "virus.exe"})
	require.True(t, validation.Is(err))
	assert.Empty(t, f.repo.docs)
}

func TestSubmit_RemovesAttachmentWhenStoreFails(t *testing.T) {
	f := newFixture()
	f.repo.createErr = errors.New("write failed")

	_, err := f.svc.Submit(context.Background(), f.user, input(), &multipart.FileHeader{Filename: "shot.jpg"})
	require.Error(t, err)
	assert.Equal(t, f.files.saved, f.files.removed)
}

func TestUpdateAndDelete_OwnerWithinWindow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	q, err := f.svc.Submit(ctx, f.user, input(), &multipart.FileHeader{Filename: "shot.png"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, primitive.NewObjectID(), q.ID, UpdateInput{InquirySubject: "x"})
	require.ErrorIs(t, err, ErrNotOwner)

	updated, err := f.svc.Update(ctx, f.user, q.ID, UpdateInput{InquirySubject: "Restock date for RTX 4070"})
	require.NoError(t, err)
	assert.Equal(t, "Restock date for RTX 4070", updated.InquirySubject)
	assert.Equal(t, q.AdditionalDetails, updated.AdditionalDetails)

	f.now = f.now.Add(EditWindow + time.Minute)
	_, err = f.svc.Update(ctx, f.user, q.ID, UpdateInput{InquirySubject: "late"})
	require.ErrorIs(t, err, ErrEditWindow)
	require.ErrorIs(t, f.svc.Delete(ctx, f.user, q.ID), ErrEditWindow)

	f.now = f.now.Add(-2 * time.Hour)
	require.NoError(t, f.svc.Delete(ctx, f.user, q.ID))
	assert.Equal(t, []string{q.Attachment}, f.files.removed)
	assert.Empty(t, f.repo.docs)
}

func TestListAll_Categorizes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	in := input()
	_, err := f.svc.Submit(ctx, f.user, in, nil)
	require.NoError(t, err)
	in.InquiryType = models.InquirySupport
	in.AdditionalDetails = "Laptop fan is loud"
	_, err = f.svc.Submit(ctx, f.user, in, nil)
	require.NoError(t, err)

	l, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, l.Inquiries, 2)
	assert.Len(t, l.Categorized[models.InquiryProductAvailability], 1)
	assert.Len(t, l.Categorized[models.InquirySupport], 1)
	assert.NotNil(t, l.Categorized[models.InquiryGeneral])
	assert.Empty(t, l.Categorized[models.InquiryGeneral])
}

func TestResolveAndAddToFAQ(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	q, err := f.svc.Submit(ctx, f.user, input(), nil)
	require.NoError(t, err)

	_, err = f.svc.AddToFAQ(ctx, q.ID, "Next week.")
	require.True(t, validation.Is(err), "unresolved inquiries stay private")

	resolved, err := f.svc.Resolve(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InquiryResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
	first := *resolved.ResolvedAt

	f.now = f.now.Add(time.Hour)
	again, err := f.svc.Resolve(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, first, *again.ResolvedAt)

	_, err = f.svc.AddToFAQ(ctx, q.ID, "  ")
	require.True(t, validation.Is(err))

	faq, err := f.svc.AddToFAQ(ctx, q.ID, "Next week.")
	require.NoError(t, err)
	assert.Equal(t, q.InquirySubject, faq.Question)
	assert.Equal(t, models.InquiryProductAvailability, faq.Category)
	require.Len(t, f.faqs.created, 1)
	assert.Equal(t, "Next week.", f.repo.docs[q.ID].AdminAnswer)
}

func TestAddToFAQ_NeedsUserApproval(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	in := input()
	in.UserApproval = false
	q, err := f.svc.Submit(ctx, f.user, in, nil)
	require.NoError(t, err)
	_, err = f.svc.Resolve(ctx, q.ID)
	require.NoError(t, err)

	_, err = f.svc.AddToFAQ(ctx, q.ID, "Next week.")
	require.True(t, validation.Is(err))
	assert.Empty(t, f.faqs.created)
}

func TestPurge(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	old, err := f.svc.Submit(ctx, f.user, input(), &multipart.FileHeader{Filename: "old.png"})
	require.NoError(t, err)
	_, err = f.svc.Resolve(ctx, old.ID)
	require.NoError(t, err)

	in := input()
	in.AdditionalDetails = "Second question"
	fresh, err := f.svc.Submit(ctx, f.user, in, nil)
	require.NoError(t, err)

	f.now = f.now.Add(Retention)
	_, err = f.svc.Resolve(ctx, fresh.ID)
	require.NoError(t, err)

	n, err := f.svc.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotContains(t, f.repo.docs, old.ID)
	assert.Contains(t, f.repo.docs, fresh.ID)
	assert.Equal(t, []string{old.Attachment}, f.files.removed)
}

func TestPurge_ContinuesPastFailures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var ids []primitive.ObjectID
	for _, d := range []string{"first", "second", "third"} {
		in := input()
		in.AdditionalDetails = d
		q, err := f.svc.Submit(ctx, f.user, in, nil)
		require.NoError(t, err)
		_, err = f.svc.Resolve(ctx, q.ID)
		require.NoError(t, err)
		ids = append(ids, q.ID)
	}
	f.repo.failOn = ids[1]
	f.now = f.now.Add(Retention + time.Hour)

	n, err := f.svc.Purge(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ids[1].Hex())
	assert.Equal(t, 2, n)
	assert.Len(t, f.repo.docs, 1)
}
