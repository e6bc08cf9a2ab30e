package appointments

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alphastore/models"
	"alphastore/validation"
)

var errNotFound = errors.New("not found")

type memRepo struct {
	docs map[primitive.ObjectID]*models.Appointment
}

func (m *memRepo) Create(_ context.Context, a *models.Appointment) error {
	cp := *a
	m.docs[a.ID] = &cp
	return nil
}

func (m *memRepo) Get(_ context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	a, ok := m.docs[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memRepo) List(context.Context) ([]models.Appointment, error) {
	out := []models.Appointment{}
	for _, a := range m.docs {
		out = append(out, *a)
	}
	return out, nil
}

func (m *memRepo) ListWhere(_ context.Context, field string, value any) ([]models.Appointment, error) {
	out := []models.Appointment{}
	for _, a := range m.docs {
		if field == "userId" && a.UserID == value {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memRepo) SlotTaken(_ context.Context, date, slot string, exclude primitive.ObjectID) (bool, error) {
	for id, a := range m.docs {
		if id != exclude && a.Date == date && a.TimeSlot == slot {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) Update(ctx context.Context, id primitive.ObjectID, set map[string]any) (*models.Appointment, error) {
	a, ok := m.docs[id]
	if !ok {
		return nil, errNotFound
	}
	for k, v := range set {
		switch k {
		case "status":
			a.Status = v.(string)
		case "rejectionReason":
			a.RejectionReason = v.(string)
		case "progress":
			a.Progress = v.(int)
		case "date":
			a.Date = v.(string)
		case "timeSlot":
			a.TimeSlot = v.(string)
		}
	}
	return m.Get(ctx, id)
}

func (m *memRepo) Delete(_ context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	a, ok := m.docs[id]
	if !ok {
		return nil, errNotFound
	}
	delete(m.docs, id)
	return a, nil
}

func newService() (*Service, *memRepo) {
	repo := &memRepo{docs: map[primitive.ObjectID]*models.Appointment{}}
	return NewService(repo, nil), repo
}

func input(date, slot string) CreateInput {
	return CreateInput{
		Name:            "Ruwan",
		Email:           "ruwan@example.com",
		Phone:           "0711111111",
		ContactMethod:   "phone",
		Date:            date,
		TimeSlot:        slot,
		ProblemType:     "hardware",
		PickupOrDropoff: "dropoff",
	}
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func TestCreate(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	user := primitive.NewObjectID()

	a, err := svc.Create(ctx, user, input("2025-03-12", "10:00-11:00"))
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentPending, a.Status)
	assert.Equal(t, models.ProgressNotStarted, a.Progress)
	assert.Equal(t, user, a.UserID)

	_, err = svc.Create(ctx, primitive.NewObjectID(), input("2025-03-12", "10:00-11:00"))
	require.ErrorIs(t, err, ErrSlotTaken)

	_, err = svc.Create(ctx, user, input("2025-03-12", "11:00-12:00"))
	require.NoError(t, err)

	mine, err := svc.ListByUser(ctx, user)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestCreate_Validation(t *testing.T) {
	svc, repo := newService()

	for _, mutate := range []func(*CreateInput){
		func(in *CreateInput) { in.Name = " " },
		func(in *CreateInput) { in.TimeSlot = "" },
		func(in *CreateInput) { in.ContactMethod = "fax" },
		func(in *CreateInput) { in.ProblemType = "water" },
		func(in *CreateInput) { in.PickupOrDropoff = "courier" },
	} {
		in := input("2025-03-12", "10:00-11:00")
		mutate(&in)
		_, err := svc.Create(context.Background(), primitive.NewObjectID(), in)
		assert.True(t, validation.Is(err))
	}
	assert.Empty(t, repo.docs)
}

func TestUpdate(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	a, err := svc.Create(ctx, primitive.NewObjectID(), input("2025-03-12", "10:00-11:00"))
	require.NoError(t, err)
	b, err := svc.Create(ctx, primitive.NewObjectID(), input("2025-03-12", "11:00-12:00"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, a.ID, UpdateInput{Status: strp(models.AppointmentRejected)})
	assert.True(t, validation.Is(err))

	got, err := svc.Update(ctx, a.ID, UpdateInput{Status: strp(models.AppointmentRejected), RejectionReason: strp("No parts")})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentRejected, got.Status)
	assert.Equal(t, "No parts", got.RejectionReason)

	got, err = svc.Update(ctx, a.ID, UpdateInput{Status: strp(models.AppointmentAccepted), Progress: intp(2)})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentAccepted, got.Status)
	assert.Empty(t, got.RejectionReason)
	assert.Equal(t, 2, got.Progress)

	for _, p := range []int{-2, 5} {
		_, err = svc.Update(ctx, a.ID, UpdateInput{Progress: intp(p)})
		assert.True(t, validation.Is(err), "progress %d", p)
	}
	_, err = svc.Update(ctx, a.ID, UpdateInput{Status: strp("done")})
	assert.True(t, validation.Is(err))

	_, err = svc.Update(ctx, a.ID, UpdateInput{TimeSlot: strp(b.TimeSlot)})
	require.ErrorIs(t, err, ErrSlotTaken)

	// Keeping its own slot is not a collision.
	_, err = svc.Update(ctx, a.ID, UpdateInput{TimeSlot: strp(a.TimeSlot)})
	require.NoError(t, err)

	_, err = svc.Update(ctx, primitive.NewObjectID(), UpdateInput{Progress: intp(1)})
	require.ErrorIs(t, err, errNotFound)
}

func TestDelete(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	a, err := svc.Create(ctx, primitive.NewObjectID(), input("2025-03-12", "10:00-11:00"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, a.ID))
	require.ErrorIs(t, svc.Delete(ctx, a.ID), errNotFound)

	// The slot is free again.
	_, err = svc.Create(ctx, primitive.NewObjectID(), input("2025-03-12", "10:00-11:00"))
	require.NoError(t, err)
}
