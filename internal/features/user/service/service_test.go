package service

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "anime-tracker-backend/internal/common/errors"
	"anime-tracker-backend/internal/features/user/models"
	redisrepo "anime-tracker-backend/internal/features/user/repository/redis"
)

var fixedNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

type fakeAvatars struct {
	url   string
	err   error
	saved int
}

func (f *fakeAvatars) Save(*multipart.FileHeader) (string, error) {
	f.saved++
	return f.url, f.err
}

func sequence(ids ...string) func() string {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

func newService(t *testing.T, avatars AvatarStore, opts ...Option) UserService {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewUserService(redisrepo.NewUserRepository(client, 10), avatars, opts...)
}

func TestGetOrCreate_SameTelegramIDTwice(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	first, err := svc.GetOrCreate(ctx, "1", "A")
	require.NoError(t, err)
	assert.Len(t, first.ProfileID, 8)
	assert.Empty(t, first.AnimeList)
	assert.Nil(t, first.AvatarURL)

	second, err := svc.GetOrCreate(ctx, "1", "B")
	require.NoError(t, err)
	assert.Equal(t, "B", second.Username)
	assert.Equal(t, first.ProfileID, second.ProfileID)

	byProfile, err := svc.GetByProfileID(ctx, first.ProfileID)
	require.NoError(t, err)
	byID, err := svc.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, byID, byProfile)
}

func TestGetOrCreate_RegeneratesCollidingProfileID(t *testing.T) {
	svc := newService(t, nil, WithProfileIDGenerator(sequence("aaaaaaaa", "aaaaaaaa", "bbbbbbbb")))
	ctx := context.Background()

	_, err := svc.GetOrCreate(ctx, "1", "A")
	require.NoError(t, err)

	second, err := svc.GetOrCreate(ctx, "2", "B")
	require.NoError(t, err)
	assert.Equal(t, "bbbbbbbb", second.ProfileID)
}

func TestGetOrCreate_GivesUpOnPersistentCollision(t *testing.T) {
	svc := newService(t, nil, WithProfileIDGenerator(sequence("aaaaaaaa")))
	ctx := context.Background()

	_, err := svc.GetOrCreate(ctx, "1", "A")
	require.NoError(t, err)

	_, err = svc.GetOrCreate(ctx, "2", "B")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.CodeOf(err))
}

func TestGetOrCreate_Validation(t *testing.T) {
	svc := newService(t, nil)

	_, err := svc.GetOrCreate(context.Background(), "", "A")
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))

	_, err = svc.GetOrCreate(context.Background(), "1", "  ")
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))
}

func TestUpsertAnime(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	_, err := svc.GetOrCreate(ctx, "1", "A")
	require.NoError(t, err)

	_, err = svc.UpsertAnime(ctx, "1", models.AnimeEntry{Title: "Naruto", Status: models.StatusPlanned})
	require.NoError(t, err)
	user, err := svc.UpsertAnime(ctx, "1", models.AnimeEntry{Title: "Naruto", Status: models.StatusWatching})
	require.NoError(t, err)

	require.Len(t, user.AnimeList, 1)
	assert.Equal(t, models.StatusWatching, user.AnimeList[0].Status)
	assert.Equal(t, fixedNow, user.AnimeList[0].AddedAt)
}

func TestUpsertAnime_InvalidStatusLeavesListUnchanged(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	_, err := svc.GetOrCreate(ctx, "1", "A")
	require.NoError(t, err)
	_, err = svc.UpsertAnime(ctx, "1", models.AnimeEntry{Title: "Naruto"})
	require.NoError(t, err)

	_, err = svc.UpsertAnime(ctx, "1", models.AnimeEntry{Title: "Naruto", Status: "paused"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))

	user, err := svc.Get(ctx, "1")
	require.NoError(t, err)
	require.Len(t, user.AnimeList, 1)
	assert.Equal(t, models.StatusPlanned, user.AnimeList[0].Status)
}

func TestUpsertAnime_EmptyTitle(t *testing.T) {
	svc := newService(t, nil)

	_, err := svc.UpsertAnime(context.Background(), "1", models.AnimeEntry{Title: " "})
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))
}

func TestUnknownTelegramID(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	_, err := svc.Get(ctx, "404")
	assert.Equal(t, apperrors.ErrCodeUserNotFound, apperrors.CodeOf(err))

	_, err = svc.UpsertAnime(ctx, "404", models.AnimeEntry{Title: "Naruto"})
	assert.Equal(t, apperrors.ErrCodeUserNotFound, apperrors.CodeOf(err))

	_, err = svc.GetByProfileID(ctx, "deadbeef")
	assert.Equal(t, apperrors.ErrCodeProfileNotFound, apperrors.CodeOf(err))
}

func TestMalformedTelegramIDIsNotFound(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	u, err := svc.GetOrCreate(ctx, "1", "A")
	require.NoError(t, err)
	id := "profile:" + u.ProfileID

	_, err = svc.Get(ctx, id)
	assert.Equal(t, apperrors.ErrCodeUserNotFound, apperrors.CodeOf(err))

	_, err = svc.UpsertAnime(ctx, id, models.AnimeEntry{Title: "Naruto"})
	assert.Equal(t, apperrors.ErrCodeUserNotFound, apperrors.CodeOf(err))

	_, err = svc.AppendReceived(ctx, id, models.ReceivedRecommendation{AnimeTitle: "Naruto"})
	assert.Equal(t, apperrors.ErrCodeUserNotFound, apperrors.CodeOf(err))

	_, err = svc.Get(ctx, "")
	assert.Equal(t, apperrors.ErrCodeUserNotFound, apperrors.CodeOf(err))
}

func TestUploadAvatar(t *testing.T) {
	avatars := &fakeAvatars{url: "/uploads/x.png"}
	svc := newService(t, avatars)
	ctx := context.Background()

	_, err := svc.UploadAvatar(ctx, "1", &multipart.FileHeader{Filename: "x.png"})
	assert.Equal(t, apperrors.ErrCodeUserNotFound, apperrors.CodeOf(err))
	assert.Zero(t, avatars.saved, "nothing is stored for unknown users")

	_, err = svc.GetOrCreate(ctx, "1", "A")
	require.NoError(t, err)

	user, err := svc.UploadAvatar(ctx, "1", &multipart.FileHeader{Filename: "x.png"})
	require.NoError(t, err)
	require.NotNil(t, user.AvatarURL)
	assert.Equal(t, "/uploads/x.png", *user.AvatarURL)

	_, err = svc.UploadAvatar(ctx, "1", nil)
	assert.Equal(t, apperrors.ErrCodeBadRequest, apperrors.CodeOf(err))
}

func TestUploadAvatar_StoreFailure(t *testing.T) {
	svc := newService(t, &fakeAvatars{err: errors.New("disk full")})
	ctx := context.Background()
	_, err := svc.GetOrCreate(ctx, "1", "A")
	require.NoError(t, err)

	_, err = svc.UploadAvatar(ctx, "1", &multipart.FileHeader{Filename: "x.png"})
	assert.Equal(t, apperrors.ErrCodeInternal, apperrors.CodeOf(err))
}

func TestAppendReceived(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	_, err := svc.GetOrCreate(ctx, "2", "B")
	require.NoError(t, err)

	user, err := svc.AppendReceived(ctx, "2", models.ReceivedRecommendation{AnimeTitle: "Bleach", Comment: "go"})
	require.NoError(t, err)

	require.Len(t, user.Recommendations, 1)
	assert.Equal(t, "Bleach", user.Recommendations[0].AnimeTitle)
	assert.Equal(t, fixedNow, user.Recommendations[0].ReceivedAt)
}
