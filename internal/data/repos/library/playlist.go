package library

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

type PlaylistRepo interface {
	Create(dbc dbctx.Context, p *types.Playlist) (*types.Playlist, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Playlist, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Playlist, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error
}

type playlistRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlaylistRepo(db *gorm.DB, baseLog *logger.Logger) PlaylistRepo {
	return &playlistRepo{db: db, log: baseLog.With("repo", "PlaylistRepo")}
}

func (r *playlistRepo) Create(dbc dbctx.Context, p *types.Playlist) (*types.Playlist, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *playlistRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Playlist, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var p types.Playlist
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *playlistRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Playlist, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Playlist
	if err := t.WithContext(dbc.Ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the playlist and its tracks.
func (r *playlistRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).Where("playlist_id = ?", id).Delete(&types.PlaylistTrack{}).Error; err != nil {
		return err
	}
	return t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.Playlist{}).Error
}

func (r *playlistRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).Model(&types.Playlist{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *playlistRepo) DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	sub := t.WithContext(dbc.Ctx).Model(&types.Playlist{}).Select("id").Where("user_id = ?", userID)
	if err := t.WithContext(dbc.Ctx).Where("playlist_id IN (?)", sub).Delete(&types.PlaylistTrack{}).Error; err != nil {
		return err
	}
	return t.WithContext(dbc.Ctx).Where("user_id = ?", userID).Delete(&types.Playlist{}).Error
}

type PlaylistTrackRepo interface {
	Create(dbc dbctx.Context, tr *types.PlaylistTrack) (*types.PlaylistTrack, error)
	ListByPlaylist(dbc dbctx.Context, playlistID uuid.UUID) ([]*types.PlaylistTrack, error)
	CountByPlaylist(dbc dbctx.Context, playlistID uuid.UUID) (int64, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
}

type playlistTrackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlaylistTrackRepo(db *gorm.DB, baseLog *logger.Logger) PlaylistTrackRepo {
	return &playlistTrackRepo{db: db, log: baseLog.With("repo", "PlaylistTrackRepo")}
}

func (r *playlistTrackRepo) Create(dbc dbctx.Context, tr *types.PlaylistTrack) (*types.PlaylistTrack, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).Create(tr).Error; err != nil {
		return nil, err
	}
	return tr, nil
}

func (r *playlistTrackRepo) ListByPlaylist(dbc dbctx.Context, playlistID uuid.UUID) ([]*types.PlaylistTrack, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.PlaylistTrack
	if err := t.WithContext(dbc.Ctx).Where("playlist_id = ?", playlistID).Order("position ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *playlistTrackRepo) CountByPlaylist(dbc dbctx.Context, playlistID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).Model(&types.PlaylistTrack{}).Where("playlist_id = ?", playlistID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *playlistTrackRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.PlaylistTrack{}).
		Joins("JOIN playlist ON playlist.id = playlist_track.playlist_id").
		Where("playlist.user_id = ?", userID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
