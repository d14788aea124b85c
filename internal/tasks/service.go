// Package tasks manages per-user to-do records and the images attached to
// them.
package tasks

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yigitcanlotec/OOP-challenge-4/internal/metrics"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/models"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/sanitize"
	"github.com/yigitcanlotec/OOP-challenge-4/internal/store"
	apperrors "github.com/yigitcanlotec/OOP-challenge-4/pkg/errors"
)

// CreateTaskInput carries a new task. FileName is optional; when set, Create
// also returns an upload URL for the task's image.
type CreateTaskInput struct {
	TodoID   string
	Title    string
	IsDone   bool
	FileName string
}

// Created is the result of Create
type Created struct {
	Task      models.Task
	UploadURL string
	ImageKey  string
}

// Service coordinates the task table and the image bucket
type Service struct {
	tasks      store.TaskStore
	images     store.ImageStore
	sanitizer  *sanitize.Sanitizer
	presignTTL time.Duration
	logger     *logrus.Logger
}

// NewService creates a task service. presignTTL bounds every URL it issues.
func NewService(tasks store.TaskStore, images store.ImageStore, sanitizer *sanitize.Sanitizer, presignTTL time.Duration, logger *logrus.Logger) *Service {
	return &Service{
		tasks:      tasks,
		images:     images,
		sanitizer:  sanitizer,
		presignTTL: presignTTL,
		logger:     logger,
	}
}

// List returns every task of username, never nil.
func (s *Service) List(ctx context.Context, username string) ([]models.Task, error) {
	list, err := s.tasks.ListTasks(ctx, username)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Task{}
	}
	return list, nil
}

// Create stores a task with a sanitized title. Writing an existing todo_id
// replaces it. Every input, including the optional file name, is validated and
// the upload URL is signed before anything is written.
func (s *Service) Create(ctx context.Context, username string, in CreateTaskInput) (*Created, error) {
	todoID, err := s.segment("todo_id", in.TodoID)
	if err != nil {
		return nil, err
	}
	title := s.sanitizer.Text(in.Title)
	if title == "" {
		return nil, apperrors.Validation("Title must not be empty")
	}

	task := models.Task{
		Username: username,
		TodoID:   todoID,
		Title:    title,
		IsDone:   in.IsDone,
	}
	out := &Created{Task: task}

	if in.FileName != "" {
		fileName, err := s.segment("fileName", in.FileName)
		if err != nil {
			return nil, err
		}
		out.ImageKey = store.ObjectKey(username, todoID, fileName)
		out.UploadURL, err = s.images.PresignUpload(ctx, out.ImageKey, s.presignTTL)
		if err != nil {
			return nil, err
		}
	}

	if err := s.tasks.PutTask(ctx, &task); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"username":  username,
		"todo_id":   todoID,
		"has_image": out.UploadURL != "",
	}).Info("Task created")
	return out, nil
}

// UpdateTitle replaces the title of an existing task.
func (s *Service) UpdateTitle(ctx context.Context, username, todoID, title string) error {
	id, err := s.segment("taskId", todoID)
	if err != nil {
		return err
	}
	clean := s.sanitizer.Text(title)
	if clean == "" {
		return apperrors.Validation("Title must not be empty")
	}
	return missingAsNotFound(s.tasks.UpdateTitle(ctx, username, id, clean))
}

// SetDone flips the completion flag of an existing task.
func (s *Service) SetDone(ctx context.Context, username, todoID string, done bool) error {
	id, err := s.segment("taskId", todoID)
	if err != nil {
		return err
	}
	return missingAsNotFound(s.tasks.SetDone(ctx, username, id, done))
}

// Delete removes the task record and then its images. The record is gone even
// when image removal fails; that case returns CodeCleanupIncomplete.
func (s *Service) Delete(ctx context.Context, username, todoID string) error {
	id, err := s.segment("taskId", todoID)
	if err != nil {
		return err
	}
	if err := s.tasks.DeleteTask(ctx, username, id); err != nil {
		return err
	}

	removed, err := s.deleteImages(ctx, username, id)
	if err != nil {
		prefix := store.ObjectKey(username, id)
		metrics.RecordOrphanedImages()
		s.logger.WithError(err).WithFields(logrus.Fields{
			"username": username,
			"todo_id":  id,
			"prefix":   prefix,
		}).Warn("Task deleted but images remain")
		return apperrors.NewAppErrorf(apperrors.CodeCleanupIncomplete, err,
			"Task deleted, images under %s could not be removed", prefix)
	}

	s.logger.WithFields(logrus.Fields{
		"username":       username,
		"todo_id":        id,
		"images_removed": removed,
	}).Info("Task deleted")
	return nil
}

// UploadURL issues a pre-signed PUT for "<username>/<fileName>".
func (s *Service) UploadURL(ctx context.Context, username, fileName string) (*models.PresignedURL, error) {
	name, err := s.objectName(fileName)
	if err != nil {
		return nil, err
	}
	key := store.ObjectKey(username, name)
	url, err := s.images.PresignUpload(ctx, key, s.presignTTL)
	if err != nil {
		return nil, err
	}
	return &models.PresignedURL{URL: url, Key: key, ExpiresIn: int(s.presignTTL.Seconds())}, nil
}

// DownloadURLs issues a pre-signed GET for every object owned by username.
// TodoID is the second key segment, empty for objects stored directly under
// the user.
func (s *Service) DownloadURLs(ctx context.Context, username string) ([]models.ImageLink, error) {
	keys, err := s.images.ListKeys(ctx, username+"/")
	if err != nil {
		return nil, err
	}

	links := make([]models.ImageLink, 0, len(keys))
	for _, key := range keys {
		url, err := s.images.PresignDownload(ctx, key, s.presignTTL)
		if err != nil {
			return nil, err
		}
		links = append(links, models.ImageLink{TodoID: todoIDOf(key), Key: key, URL: url})
	}
	return links, nil
}

// DeleteImages removes every object under "<username>/<todoID>/" and returns
// how many there were.
func (s *Service) DeleteImages(ctx context.Context, username, todoID string) (int, error) {
	id, err := s.segment("taskId", todoID)
	if err != nil {
		return 0, err
	}
	return s.deleteImages(ctx, username, id)
}

// deleteImages expects a validated todoID. The trailing slash keeps "t1" from
// matching "t10".
func (s *Service) deleteImages(ctx context.Context, username, todoID string) (int, error) {
	prefix := store.ObjectKey(username, todoID) + "/"
	keys, err := s.images.ListKeys(ctx, prefix)
	if err != nil {
		return 0, err
	}

	if len(keys) == 0 {
		return 0, nil
	}

	if err := s.images.DeleteKeys(ctx, keys); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func missingAsNotFound(err error) error {
	if apperrors.HasCode(err, apperrors.CodeConditionFailed) {
		return apperrors.NewAppError(apperrors.CodeNotFound, "Task not found", err)
	}
	return err
}

// segment sanitizes a value used as a single object key segment.
func (s *Service) segment(field, value string) (string, error) {
	clean := s.sanitizer.Text(value)
	if clean == "" {
		return "", apperrors.Validation(field + " must not be empty")
	}
	if strings.Contains(clean, "/") {
		return "", apperrors.Validation(field + " must not contain '/'")
	}
	if clean == "." || clean == ".." {
		return "", apperrors.Validation(field + " is not a valid name")
	}
	return clean, nil
}

// objectName sanitizes a relative object name that may contain "/".
func (s *Service) objectName(value string) (string, error) {
	clean := s.sanitizer.Text(value)
	if clean == "" {
		return "", apperrors.Validation("fileName must not be empty")
	}
	if strings.HasPrefix(clean, "/") {
		return "", apperrors.Validation("fileName must be relative")
	}
	for _, part := range strings.Split(clean, "/") {
		if part == "" || part == "." || part == ".." {
			return "", apperrors.Validation("fileName contains an invalid path segment")
		}
	}
	return clean, nil
}

func todoIDOf(key string) string {
	parts := strings.SplitN(key, "/", 3)
	if len(parts) < 3 {
		return ""
	}
	return parts[1]
}
