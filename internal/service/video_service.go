package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"edushare-server/internal/authz"
	"edushare-server/internal/model"
	"edushare-server/pkg/apierror"
)

// VideoStore is implemented by repository.VideoRepository.
type VideoStore interface {
	Create(ctx context.Context, v model.Video) error
	FindByID(ctx context.Context, id string) (model.Video, error)
	OwnerID(ctx context.Context, id string) (string, error)
	List(ctx context.Context, approvedOnly bool) ([]model.Video, error)
	Update(ctx context.Context, v model.Video) error
	Approve(ctx context.Context, id string, approverID string) error
	Delete(ctx context.Context, id string) error
}

// VideoService holds the minimal video CRUD the authorization layer guards.
// Uploads, transcoding and search live elsewhere.
type VideoService struct {
	videos VideoStore
	roles  *authz.Config
}

func NewVideoService(videos VideoStore, roles *authz.Config) *VideoService {
	return &VideoService{videos: videos, roles: roles}
}

func (s *VideoService) Create(ctx context.Context, ownerID string, req model.CreateVideoRequest) (model.Video, error) {
	title := strings.TrimSpace(req.Title)
	url := strings.TrimSpace(req.URL)
	if title == "" || url == "" {
		return model.Video{}, apierror.BadRequest("title and url are required", "")
	}

	now := time.Now().UTC()
	video := model.Video{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		URL:         url,
		Category:    strings.TrimSpace(req.Category),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.videos.Create(ctx, video); err != nil {
		return model.Video{}, err
	}

	slog.Info("video created", "video_id", video.ID, "owner_id", ownerID)
	return video, nil
}

func (s *VideoService) Get(ctx context.Context, id string) (model.Video, error) {
	return s.videos.FindByID(ctx, id)
}

// OwnerID is the resolver wired into the ownership guard.
func (s *VideoService) OwnerID(ctx context.Context, id string) (string, error) {
	return s.videos.OwnerID(ctx, id)
}

// List shows everything to admins and only approved videos to everyone else.
func (s *VideoService) List(ctx context.Context, requester *model.AccessClaims) ([]model.Video, error) {
	approvedOnly := requester == nil || !s.roles.Admin(requester.Role)
	return s.videos.List(ctx, approvedOnly)
}

func (s *VideoService) Update(ctx context.Context, id string, req model.UpdateVideoRequest) (model.Video, error) {
	video, err := s.videos.FindByID(ctx, id)
	if err != nil {
		return model.Video{}, err
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		video.Title = title
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		video.Description = desc
	}
	if category := strings.TrimSpace(req.Category); category != "" {
		video.Category = category
	}

	if err := s.videos.Update(ctx, video); err != nil {
		return model.Video{}, err
	}
	return s.videos.FindByID(ctx, id)
}

func (s *VideoService) Approve(ctx context.Context, id string, approverID string) (model.Video, error) {
	if err := s.videos.Approve(ctx, id, approverID); err != nil {
		return model.Video{}, err
	}
	slog.Info("video approved", "video_id", id, "approver_id", approverID)
	return s.videos.FindByID(ctx, id)
}

func (s *VideoService) Delete(ctx context.Context, id string) error {
	return s.videos.Delete(ctx, id)
}
