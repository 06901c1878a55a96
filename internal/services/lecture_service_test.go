package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/learning-service/internal/media"
	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLectureService_CreateAppendsInOrder(t *testing.T) {
	env := newDirectEnv(t)
	ctx := context.Background()

	teacher := env.createUser(t, "Teacher", models.RoleInstructor)
	course, lectures := env.createCourse(t, teacher, 0, 3)

	assert.Equal(t, []string{lectures[0].ID, lectures[1].ID, lectures[2].ID}, course.LectureIDs)

	listed, err := env.services.Lecture().ListByCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "Lecture A", listed[0].Title)
	assert.Equal(t, "Lecture C", listed[2].Title)

	_, err = env.services.Lecture().ListByCourse(ctx, "missing")
	assert.ErrorIs(t, err, ErrCourseNotFound)

	_, err = env.services.Lecture().Create(ctx, teacher, course.ID, &CreateLectureRequest{LectureTitle: "  "})
	assert.True(t, IsValidation(err))

	other := env.createUser(t, "Other", models.RoleInstructor)
	_, err = env.services.Lecture().Create(ctx, other, course.ID, &CreateLectureRequest{LectureTitle: "Intruder"})
	assert.True(t, IsUnauthorized(err))
}

func TestLectureService_Update(t *testing.T) {
	env := newDirectEnv(t)
	ctx := context.Background()

	teacher := env.createUser(t, "Teacher", models.RoleInstructor)
	course, lectures := env.createCourse(t, teacher, 0, 1)
	_, otherLectures := env.createCourse(t, teacher, 0, 1)

	free := true
	desc := "Setting up the toolchain"
	updated, err := env.services.Lecture().Update(ctx, teacher, course.ID, lectures[0].ID, &UpdateLectureRequest{
		Description:   &desc,
		IsPreviewFree: &free,
		VideoInfo:     &VideoInfo{VideoURL: "https://cdn.example.com/videos/a.mp4", PublicID: "videos/a.mp4"},
	})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	assert.True(t, updated.IsPreviewFree)
	assert.Equal(t, "videos/a.mp4", updated.VideoMediaID)

	t.Run("replacing the video deletes the old one", func(t *testing.T) {
		env.media.On("Delete", mock.Anything, "videos/a.mp4").Return(nil).Once()
		_, err := env.services.Lecture().Update(ctx, teacher, course.ID, lectures[0].ID, &UpdateLectureRequest{
			VideoInfo: &VideoInfo{VideoURL: "https://cdn.example.com/videos/b.mp4", PublicID: "videos/b.mp4"},
		})
		require.NoError(t, err)
		env.media.AssertExpectations(t)
	})

	t.Run("lecture from another course", func(t *testing.T) {
		_, err := env.services.Lecture().Update(ctx, teacher, course.ID, otherLectures[0].ID, &UpdateLectureRequest{Description: &desc})
		assert.ErrorIs(t, err, ErrLectureNotFound)
	})

	t.Run("invalid video url", func(t *testing.T) {
		_, err := env.services.Lecture().Update(ctx, teacher, course.ID, lectures[0].ID, &UpdateLectureRequest{
			VideoInfo: &VideoInfo{VideoURL: "not a url"},
		})
		assert.True(t, IsValidation(err))
	})
}

func TestLectureService_DeleteRemovesSequenceAndFlags(t *testing.T) {
	env := newDirectEnv(t)
	ctx := context.Background()

	teacher := env.createUser(t, "Teacher", models.RoleInstructor)
	student := env.createUser(t, "Student", models.RoleStudent)
	course, lectures := env.createCourse(t, teacher, 0, 2)
	require.NoError(t, env.repo.Lecture().Update(ctx, nil, lectures[0].ID, map[string]interface{}{"video_media_id": "videos/a.mp4"}))

	_, err := env.services.Progress().UpdateLectureProgress(ctx, student, course.ID, lectures[0].ID)
	require.NoError(t, err)

	err = env.services.Lecture().Delete(ctx, student, lectures[0].ID)
	assert.True(t, IsUnauthorized(err))

	env.media.On("Delete", mock.Anything, "videos/a.mp4").Return(errors.New("not found")).Once()
	require.NoError(t, env.services.Lecture().Delete(ctx, teacher, lectures[0].ID))
	env.media.AssertExpectations(t)

	stored, err := env.services.Course().GetByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{lectures[1].ID}, stored.LectureIDs)

	_, err = env.services.Lecture().GetByID(ctx, lectures[0].ID)
	assert.ErrorIs(t, err, ErrLectureNotFound)

	progress, err := env.repo.Progress().GetByUserAndCourse(ctx, nil, student.UserID, course.ID)
	require.NoError(t, err)
	assert.Empty(t, progress.LectureProgress)

	err = env.services.Lecture().Delete(ctx, teacher, lectures[0].ID)
	assert.ErrorIs(t, err, ErrLectureNotFound)
}

func TestLectureService_UploadMedia(t *testing.T) {
	env := newDirectEnv(t)
	ctx := context.Background()

	teacher := env.createUser(t, "Teacher", models.RoleInstructor)
	student := env.createUser(t, "Student", models.RoleStudent)
	file := media.File{Name: "intro.mp4", ContentType: "video/mp4", Size: 4, Body: testFile("x").Body}

	_, err := env.services.Lecture().UploadMedia(ctx, student, media.KindVideo, file)
	assert.True(t, IsUnauthorized(err))

	env.media.On("Upload", mock.Anything, media.KindVideo, mock.Anything).
		Return(&media.Object{ID: "videos/intro.mp4", URL: "https://cdn.example.com/videos/intro.mp4"}, nil).Once()
	obj, err := env.services.Lecture().UploadMedia(ctx, teacher, media.KindVideo, file)
	require.NoError(t, err)
	assert.Equal(t, "videos/intro.mp4", obj.ID)

	env.media.On("Upload", mock.Anything, media.KindVideo, mock.Anything).
		Return(nil, errors.New("timeout")).Once()
	_, err = env.services.Lecture().UploadMedia(ctx, teacher, media.KindVideo, file)
	assert.True(t, IsUpstream(err))
}

func TestLectureService_UpdateRejectsBlankTitle(t *testing.T) {
	env := newDirectEnv(t)
	ctx := context.Background()

	teacher := env.createUser(t, "Teacher", models.RoleInstructor)
	course, lectures := env.createCourse(t, teacher, 0, 1)

	blank := " \t "
	_, err := env.services.Lecture().Update(ctx, teacher, course.ID, lectures[0].ID, &UpdateLectureRequest{LectureTitle: &blank})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	stored, err := env.services.Lecture().GetByID(ctx, lectures[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Lecture A", stored.Title)

	title := "  Tooling  "
	updated, err := env.services.Lecture().Update(ctx, teacher, course.ID, lectures[0].ID, &UpdateLectureRequest{LectureTitle: &title})
	require.NoError(t, err)
	assert.Equal(t, "Tooling", updated.Title)
}
