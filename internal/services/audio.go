package services

import (
	"context"
	"io"

	"github.com/sbilibin2017/audio-vault/internal/access"
	"github.com/sbilibin2017/audio-vault/internal/logger"
	"github.com/sbilibin2017/audio-vault/internal/models"
)

// AudioStore persists audio files scoped by owner id.
type AudioStore interface {
	Put(ctx context.Context, ownerID int64, name, contentType string, body io.Reader) (*models.AudioFile, error)
	List(ctx context.Context, ownerID int64) ([]models.AudioFile, error)
	Open(ctx context.Context, ownerID int64, name string) (*models.AudioStream, error)
	Delete(ctx context.Context, ownerID int64, name string) error
}

// AudioService handles per-user audio files. Operations act on the
// requester's own files unless an owner id is given, which requires admin
// unless it is the requester's own id.
type AudioService struct {
	store     AudioStore
	publisher EventPublisher
}

// NewAudioService creates a new AudioService instance.
func NewAudioService(store AudioStore, publisher EventPublisher) *AudioService {
	return &AudioService{
		store:     store,
		publisher: publisher,
	}
}

// ownerOf returns the effective owner: ownerID when set, else the requester.
func ownerOf(requester models.Identity, ownerID int64) int64 {
	if ownerID == 0 {
		return requester.ID
	}
	return ownerID
}

// Upload stores body as name in the requester's scope.
func (svc *AudioService) Upload(ctx context.Context, requester models.Identity, name, contentType string, body io.Reader) (*models.AudioFile, error) {
	if err := access.UploadAudioFile(requester).Err(); err != nil {
		return nil, err
	}

	file, err := svc.store.Put(ctx, requester.ID, name, contentType, body)
	if err != nil {
		logger.Log.Infow("failed to store audio file", "user_id", requester.ID, "name", name, "err", err)
		return nil, err
	}

	event := models.NewEvent(models.EventAudioUploaded, requester.ID)
	event.FileName = file.Name
	event.Size = file.Size
	publish(ctx, svc.publisher, event)

	return file, nil
}

// List returns the files of ownerID (0 means the requester).
func (svc *AudioService) List(ctx context.Context, requester models.Identity, ownerID int64) ([]models.AudioFile, error) {
	owner := ownerOf(requester, ownerID)
	if err := svc.authorizeRead(requester, owner, access.ListOwnAudioFiles); err != nil {
		return nil, err
	}

	files, err := svc.store.List(ctx, owner)
	if err != nil {
		logger.Log.Errorw("failed to list audio files", "owner_id", owner, "err", err)
		return nil, err
	}
	return files, nil
}

// Open returns a stream over ownerID's file (0 means the requester).
func (svc *AudioService) Open(ctx context.Context, requester models.Identity, ownerID int64, name string) (*models.AudioStream, error) {
	owner := ownerOf(requester, ownerID)
	if err := svc.authorizeRead(requester, owner, access.PlayAudioFile); err != nil {
		return nil, err
	}

	stream, err := svc.store.Open(ctx, owner, name)
	if err != nil {
		logger.Log.Infow("failed to open audio file", "owner_id", owner, "name", name, "err", err)
		return nil, err
	}
	return stream, nil
}

// Delete removes ownerID's file (0 means the requester).
func (svc *AudioService) Delete(ctx context.Context, requester models.Identity, ownerID int64, name string) error {
	owner := ownerOf(requester, ownerID)
	if err := access.DeleteAudioFile(requester, owner).Err(); err != nil {
		return err
	}

	if err := svc.store.Delete(ctx, owner, name); err != nil {
		logger.Log.Infow("failed to delete audio file", "owner_id", owner, "name", name, "err", err)
		return err
	}

	event := models.NewEvent(models.EventAudioDeleted, owner)
	event.ActorID = requester.ID
	event.FileName = name
	publish(ctx, svc.publisher, event)

	return nil
}

func (svc *AudioService) authorizeRead(requester models.Identity, owner int64, own func(models.Identity) access.Decision) error {
	if owner == requester.ID {
		return own(requester).Err()
	}
	return access.AccessAudioFiles(requester, owner).Err()
}
