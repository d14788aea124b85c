package tasks

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigitcanlotec/OOP-challenge-4/internal/models"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/sanitize"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/store/storetest"
	apperrors "github.com/yigitcanlotec/OOP-challenge-4/pkg/errors"
)

type fixture struct {
	svc    *Service
	tasks  *storetest.Tasks
	images *storetest.Images
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	tasks := storetest.NewTasks()
	images := storetest.NewImages()
	return &fixture{
		svc:    NewService(tasks, images, sanitize.New(), time.Minute, logger),
		tasks:  tasks,
		images: images,
	}
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

func TestCreateThenList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "u", CreateTaskInput{TodoID: "t1", Title: "Buy milk"})
	require.NoError(t, err)

	list, err := f.svc.List(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, []models.Task{{Username: "u", TodoID: "t1", Title: "Buy milk", IsDone: false}}, list)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	f := newFixture(t)

	list, err := f.svc.List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestList_OnlyOwnTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, "u", CreateTaskInput{TodoID: "t1", Title: "mine"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "v", CreateTaskInput{TodoID: "t1", Title: "theirs"})
	require.NoError(t, err)

	list, err := f.svc.List(ctx, "u")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "mine", list[0].Title)
}

func TestCreate_SanitizesTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "u", CreateTaskInput{TodoID: "t1", Title: "<script>alert(1)</script>Call mom"})
	require.NoError(t, err)
	assert.Equal(t, "Call mom", created.Task.Title)

	list, err := f.svc.List(ctx, "u")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotContains(t, list[0].Title, "<script>")
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "u", CreateTaskInput{TodoID: "", Title: "x"})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = f.svc.Create(ctx, "u", CreateTaskInput{TodoID: "t1", Title: "<b></b>"})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = f.svc.Create(ctx, "u", CreateTaskInput{TodoID: "a/b", Title: "x"})
	requireCode(t, err, apperrors.CodeValidation)

	list, err := f.svc.List(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreate_WithFileNameReturnsUploadURL(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(context.Background(), "u", CreateTaskInput{TodoID: "t1", Title: "Photo", FileName: "photo.png"})
	require.NoError(t, err)
	assert.Equal(t, "u/t1/photo.png", created.ImageKey)
	assert.Equal(t, "https://images.test/u/t1/photo.png?method=PUT&expires=60", created.UploadURL)
}

func TestCreate_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.tasks.FailOn("PutTask", apperrors.FromStore(errors.New("connection refused"), "put"))

	_, err := f.svc.Create(context.Background(), "u", CreateTaskInput{TodoID: "t1", Title: "x"})
	requireCode(t, err, apperrors.CodeStoreUnavailable)
}

func TestCreate_RejectedFileNameStoresNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"a/b.png", "..", "<b></b>"} {
		_, err := f.svc.Create(ctx, "u", CreateTaskInput{TodoID: "t1", Title: "Buy milk", FileName: name})
		requireCode(t, err, apperrors.CodeValidation)
	}

	list, err := f.svc.List(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreate_PresignFailureStoresNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.images.FailOn("PresignUpload", apperrors.FromStore(errors.New("no credentials"), "presign"))

	_, err := f.svc.Create(ctx, "u", CreateTaskInput{TodoID: "t1", Title: "Photo", FileName: "photo.png"})
	requireCode(t, err, apperrors.CodeStoreUnavailable)

	list, err := f.svc.List(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTaskIDValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, "u", CreateTaskInput{TodoID: "t1", Title: "x"})
	require.NoError(t, err)
	f.images.Upload("u/t1/photo.png", []byte("png"))

	for _, id := range []string{"", ".", "..", "t1/../t1"} {
		requireCode(t, f.svc.UpdateTitle(ctx, "u", id, "y"), apperrors.CodeValidation)
		requireCode(t, f.svc.SetDone(ctx, "u", id, true), apperrors.CodeValidation)
		requireCode(t, f.svc.Delete(ctx, "u", id), apperrors.CodeValidation)
		_, err := f.svc.DeleteImages(ctx, "u", id)
		requireCode(t, err, apperrors.CodeValidation)
	}

	list, err := f.svc.List(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, []models.Task{{Username: "u", TodoID: "t1", Title: "x"}}, list)
	assert.True(t, f.images.Has("u/t1/photo.png"))
}

func TestSetDoneRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, "u", CreateTaskInput{TodoID: "t1", Title: "Walk"})
	require.NoError(t, err)

	require.NoError(t, f.svc.SetDone(ctx, "u", "t1", true))
	list, err := f.svc.List(ctx, "u")
	require.NoError(t, err)
	assert.True(t, list[0].IsDone)

	require.NoError(t, f.svc.SetDone(ctx, "u", "t1", false))
	list, err = f.svc.List(ctx, "u")
	require.NoError(t, err)
	assert.False(t, list[0].IsDone)
	assert.Equal(t, "Walk", list[0].Title)
}

func TestEditMissingTaskIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	requireCode(t, f.svc.SetDone(ctx, "u", "ghost", true), apperrors.CodeNotFound)
	requireCode(t, f.svc.UpdateTitle(ctx, "u", "ghost", "x"), apperrors.CodeNotFound)

	list, err := f.svc.List(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, "u", CreateTaskInput{TodoID: "t1", Title: "old", IsDone: true})
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateTitle(ctx, "u", "t1", "<i>new</i>"))
	list, err := f.svc.List(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "new", list[0].Title)
	assert.True(t, list[0].IsDone)

	requireCode(t, f.svc.UpdateTitle(ctx, "u", "t1", "   "), apperrors.CodeValidation)
}

func TestDelete_RemovesImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, "u", CreateTaskInput{TodoID: "t1", Title: "x"})
	require.NoError(t, err)
	f.images.Upload("u/t1/photo.png", []byte("png"))
	f.images.Upload("u/t10/other.png", []byte("png"))

	require.NoError(t, f.svc.Delete(ctx, "u", "t1"))

	list, err := f.svc.List(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.False(t, f.images.Has("u/t1/photo.png"))
	assert.True(t, f.images.Has("u/t10/other.png"))
}

func TestDelete_WithoutImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, "u", CreateTaskInput{TodoID: "t1", Title: "x"})
	require.NoError(t, err)

	assert.NoError(t, f.svc.Delete(ctx, "u", "t1"))
}

func TestDelete_CleanupFailureIsReported(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, "u", CreateTaskInput{TodoID: "t1", Title: "x"})
	require.NoError(t, err)
	f.images.Upload("u/t1/photo.png", []byte("png"))
	f.images.FailOn("DeleteKeys", apperrors.NewAppError(apperrors.CodeStoreInternal, "boom", nil))

	err = f.svc.Delete(ctx, "u", "t1")
	requireCode(t, err, apperrors.CodeCleanupIncomplete)
	assert.Contains(t, err.Error(), "u/t1")

	list, err := f.svc.List(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, list, "record stays deleted")
	assert.True(t, f.images.Has("u/t1/photo.png"))
}

func TestDelete_RecordFailureSkipsImages(t *testing.T) {
	f := newFixture(t)
	f.images.Upload("u/t1/photo.png", []byte("png"))
	f.tasks.FailOn("DeleteTask", apperrors.FromStore(errors.New("timeout"), "delete"))

	err := f.svc.Delete(context.Background(), "u", "t1")
	requireCode(t, err, apperrors.CodeStoreUnavailable)
	assert.True(t, f.images.Has("u/t1/photo.png"))
}

func TestUploadURL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	url, err := f.svc.UploadURL(ctx, "u", "t1/photo.png")
	require.NoError(t, err)
	assert.Equal(t, "u/t1/photo.png", url.Key)
	assert.Equal(t, 60, url.ExpiresIn)
	assert.Contains(t, url.URL, "method=PUT")

	for _, name := range []string{"", "/etc/passwd", "../v/x.png", "a//b", "<b></b>"} {
		_, err := f.svc.UploadURL(ctx, "u", name)
		requireCode(t, err, apperrors.CodeValidation)
	}
}

func TestDownloadURLs(t *testing.T) {
	f := newFixture(t)
	f.images.Upload("u/t1/photo.png", []byte("png"))
	f.images.Upload("u/loose.png", []byte("png"))
	f.images.Upload("uv/t1/other.png", []byte("png"))

	links, err := f.svc.DownloadURLs(context.Background(), "u")
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, models.ImageLink{Key: "u/loose.png", URL: "https://images.test/u/loose.png?method=GET&expires=60"}, links[0])
	assert.Equal(t, "t1", links[1].TodoID)
	assert.Equal(t, "u/t1/photo.png", links[1].Key)
}

func TestDownloadURLs_UnknownStoreErrorIsTeapot(t *testing.T) {
	f := newFixture(t)
	f.images.FailOn("ListKeys", apperrors.NewAppError(apperrors.CodeUnmappedStore, "I'm a teapot", nil))

	_, err := f.svc.DownloadURLs(context.Background(), "u")
	requireCode(t, err, apperrors.CodeUnmappedStore)
	appErr, _ := apperrors.As(err)
	assert.Equal(t, 418, appErr.HTTPStatus())
}

func TestDeleteImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.images.Upload("u/t1/a.png", []byte("a"))
	f.images.Upload("u/t1/b.png", []byte("b"))

	n, err := f.svc.DeleteImages(ctx, "u", "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = f.svc.DeleteImages(ctx, "u", "t1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
