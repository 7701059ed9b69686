package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"interview-backend/internal/extract"
	"interview-backend/internal/shared/storage/object"
	"interview-backend/internal/shared/telemetry"
	"interview-backend/internal/users"
)

const maxUploadBytes = 5 << 20

var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".docx": {},
	".txt":  {},
}

var (
	// ErrUnsupportedFile is returned for extensions outside the allow-list.
	ErrUnsupportedFile = errors.New("unsupported file type")
	// ErrUnreadableFile is returned when the document cannot be decoded at all.
	ErrUnreadableFile = errors.New("could not read document")
	// ErrTooLarge is returned when the upload exceeds the size limit.
	ErrTooLarge = errors.New("file too large")
)

// Service stores uploaded resumes and turns them into skill tags.
type Service struct {
	store             object.ObjectStore
	users             *users.Service
	strictPersistence bool
}

// NewService builds a resume service. With strictPersistence enabled a failed
// skill write fails the upload instead of being logged and swallowed.
func NewService(store object.ObjectStore, userSvc *users.Service, strictPersistence bool) *Service {
	return &Service{store: store, users: userSvc, strictPersistence: strictPersistence}
}

// Upload result. Skills may be empty when the document decoded but yielded no tags.
type Upload struct {
	FileKey string
	Skills  []string
}

// Process validates, stores and parses one uploaded resume, then saves the
// extracted skills on the user record.
func (s *Service) Process(ctx context.Context, userID, fileName, contentType string, data []byte) (*Upload, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrUnsupportedFile)
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, ext)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnreadableFile)
	}
	if len(data) > maxUploadBytes {
		return nil, ErrTooLarge
	}

	storageKey, _, _, err := s.store.Save(ctx, userID, fileName, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("store resume: %w", err)
	}

	text, err := extract.Text(ctx, data, contentType, fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}

	// Persisting the derived text is a convenience copy, losing it is not fatal.
	if _, err := s.store.SaveWithKey(ctx, storageKey+".extracted.txt", "text/plain; charset=utf-8", strings.NewReader(text)); err != nil {
		telemetry.Warn("resumes.extracted_copy.failed", map[string]any{
			"err": err.Error(),
			"key": storageKey,
		})
	}

	skills := extract.Skills(text)

	if err := s.users.SaveSkills(ctx, userID, skills); err != nil {
		if s.strictPersistence && !errors.Is(err, users.ErrNotFound) {
			return nil, fmt.Errorf("save skills: %w", err)
		}
		telemetry.Warn("resumes.save_skills.failed", map[string]any{
			"err":     err.Error(),
			"user_id": userID,
		})
	}

	return &Upload{FileKey: storageKey, Skills: skills}, nil
}
