package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "anime-tracker-backend/internal/common/errors"
	"anime-tracker-backend/internal/features/recommendation/models"
	recrepo "anime-tracker-backend/internal/features/recommendation/repository/redis"
	usermodels "anime-tracker-backend/internal/features/user/models"
	userrepo "anime-tracker-backend/internal/features/user/repository/redis"
	userservice "anime-tracker-backend/internal/features/user/service"
)

type capturePublisher struct {
	events []models.Event
	err    error
}

func (p *capturePublisher) Publish(_ context.Context, e models.Event) error {
	p.events = append(p.events, e)
	return p.err
}

type fixture struct {
	svc       RecommendationService
	users     userservice.UserService
	publisher *capturePublisher
	alice     *usermodels.User
	bob       *usermodels.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	users := userservice.NewUserService(userrepo.NewUserRepository(client, 10), nil)
	publisher := &capturePublisher{}
	svc := NewRecommendationService(recrepo.NewRecommendationRepository(client, 10), users, publisher, 10)

	ctx := context.Background()
	alice, err := users.GetOrCreate(ctx, "1", "alice")
	require.NoError(t, err)
	bob, err := users.GetOrCreate(ctx, "2", "bob")
	require.NoError(t, err)

	return &fixture{svc: svc, users: users, publisher: publisher, alice: alice, bob: bob}
}

func TestSend_ByTelegramID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.svc.Send(ctx, "1", "2", models.SendRequest{AnimeTitle: "Bleach", Comment: "go"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, rec.Status)
	assert.Equal(t, "1", rec.FromUserID)
	assert.Equal(t, "2", rec.ToUserID)
	assert.NotEmpty(t, rec.ID)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "alice", f.publisher.events[0].FromUsername)
	assert.Equal(t, rec.ID, f.publisher.events[0].RecommendationID)

	bob, err := f.users.Get(ctx, "2")
	require.NoError(t, err)
	require.Len(t, bob.Recommendations, 1)
	assert.Equal(t, "Bleach", bob.Recommendations[0].AnimeTitle)
	assert.Equal(t, "go", bob.Recommendations[0].Comment)
}

func TestSend_EventCarriesSenderHandle(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Send(context.Background(), "1", "2", models.SendRequest{AnimeTitle: "Bleach", SenderHandle: "alice_tg"})
	require.NoError(t, err)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "alice_tg", f.publisher.events[0].FromHandle)
}

func TestSend_ByProfileID(t *testing.T) {
	f := newFixture(t)

	rec, err := f.svc.Send(context.Background(), "1", f.bob.ProfileID, models.SendRequest{AnimeTitle: "Bleach"})
	require.NoError(t, err)
	assert.Equal(t, "2", rec.ToUserID)
}

func TestSend_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, "1", "404", models.SendRequest{AnimeTitle: "Bleach"})
	assert.Equal(t, apperrors.ErrCodeUserNotFound, apperrors.CodeOf(err))

	_, err = f.svc.Send(ctx, "404", "2", models.SendRequest{AnimeTitle: "Bleach"})
	assert.Equal(t, apperrors.ErrCodeUserNotFound, apperrors.CodeOf(err))

	_, err = f.svc.Send(ctx, "1", f.alice.ProfileID, models.SendRequest{AnimeTitle: "Bleach"})
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))

	_, err = f.svc.Send(ctx, "1", "profile:"+f.bob.ProfileID, models.SendRequest{AnimeTitle: "Bleach"})
	assert.Equal(t, apperrors.ErrCodeUserNotFound, apperrors.CodeOf(err))

	_, err = f.svc.Send(ctx, "1", "2", models.SendRequest{AnimeTitle: ""})
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))

	assert.Empty(t, f.publisher.events)
}

func TestSend_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("stream down")

	_, err := f.svc.Send(context.Background(), "1", "2", models.SendRequest{AnimeTitle: "Bleach"})
	assert.NoError(t, err)
}

func TestAcceptMaterializesTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.svc.Send(ctx, "1", "2", models.SendRequest{AnimeTitle: "Bleach"})
	require.NoError(t, err)

	pending, err := f.svc.ListPending(ctx, "2")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	resolved, err := f.svc.Resolve(ctx, "2", rec.ID, models.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, resolved.Status)

	pending, err = f.svc.ListPending(ctx, "2")
	require.NoError(t, err)
	assert.Empty(t, pending)

	bob, err := f.users.Get(ctx, "2")
	require.NoError(t, err)
	require.Len(t, bob.AnimeList, 1)
	assert.Equal(t, "Bleach", bob.AnimeList[0].Title)
	assert.Equal(t, usermodels.StatusPlanned, bob.AnimeList[0].Status)
	assert.Equal(t, 1, bob.PlannedCount)

	_, err = f.svc.Resolve(ctx, "2", rec.ID, models.StatusRejected)
	assert.Equal(t, apperrors.ErrCodeAlreadyResolved, apperrors.CodeOf(err))
}

func TestRejectLeavesListUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.svc.Send(ctx, "1", "2", models.SendRequest{AnimeTitle: "Bleach"})
	require.NoError(t, err)

	_, err = f.svc.Resolve(ctx, "2", rec.ID, models.StatusRejected)
	require.NoError(t, err)

	bob, err := f.users.Get(ctx, "2")
	require.NoError(t, err)
	assert.Empty(t, bob.AnimeList)
}

func TestResolve_NotAddressedToCaller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.svc.Send(ctx, "1", "2", models.SendRequest{AnimeTitle: "Bleach"})
	require.NoError(t, err)

	_, err = f.svc.Resolve(ctx, "1", rec.ID, models.StatusAccepted)
	assert.Equal(t, apperrors.ErrCodeRecommendationNotFound, apperrors.CodeOf(err))

	_, err = f.svc.Resolve(ctx, "2", "missing", models.StatusAccepted)
	assert.Equal(t, apperrors.ErrCodeRecommendationNotFound, apperrors.CodeOf(err))

	_, err = f.svc.Resolve(ctx, "2", rec.ID, models.StatusPending)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))
}
