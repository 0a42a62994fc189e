package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/data/db"
	"github.com/yungbote/mentor-backend/internal/data/repos"
	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/gamification"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/mentor-backend/internal/pkg/errors"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

type AddResourceInput struct {
	ResourceType string `json:"resource_type"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Description  string `json:"description"`
	Topic        string `json:"topic"`
}

type ResourceResult struct {
	Failure
	Resource *types.LearningResource `json:"resource,omitempty"`
	Title    string                  `json:"title,omitempty"`
	// AlreadyDone is a soft outcome: the resource was finished earlier.
	AlreadyDone  bool                  `json:"already_done,omitempty"`
	XPEarned     int                   `json:"xp_earned,omitempty"`
	Achievements []UnlockedAchievement `json:"achievements,omitempty"`
}

type AddTrackInput struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	Title        string `json:"title"`
	Performer    string `json:"performer"`
	Duration     int    `json:"duration"`
}

type PlaylistResult struct {
	Failure
	Playlist     *types.Playlist       `json:"playlist,omitempty"`
	Track        *types.PlaylistTrack  `json:"track,omitempty"`
	XPEarned     int                   `json:"xp_earned,omitempty"`
	Achievements []UnlockedAchievement `json:"achievements,omitempty"`
}

type ResourceSuggestion struct {
	ResourceType string `json:"resource_type"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Description  string `json:"description"`
	Topic        string `json:"topic"`
}

// LibraryService covers learning resources and music playlists.
type LibraryService interface {
	AddResource(dbc dbctx.Context, userID uuid.UUID, in AddResourceInput) (*ResourceResult, error)
	MarkResourceDone(dbc dbctx.Context, userID, resourceID uuid.UUID) (*ResourceResult, error)
	ListResources(dbc dbctx.Context, userID uuid.UUID, onlyOpen bool) ([]*types.LearningResource, error)
	Suggest(topic string) []ResourceSuggestion

	CreatePlaylist(dbc dbctx.Context, userID uuid.UUID, name, emoji string) (*PlaylistResult, error)
	AddTrack(dbc dbctx.Context, userID, playlistID uuid.UUID, in AddTrackInput) (*PlaylistResult, error)
	ListPlaylists(dbc dbctx.Context, userID uuid.UUID) ([]*types.Playlist, error)
	ListTracks(dbc dbctx.Context, userID, playlistID uuid.UUID) ([]*types.PlaylistTrack, error)
	DeletePlaylist(dbc dbctx.Context, userID, playlistID uuid.UUID) (*DeleteResult, error)
}

type libraryService struct {
	db           *gorm.DB
	log          *logger.Logger
	clock        clock.Clock
	tx           db.TxRunner
	repos        repos.Set
	ledger       LedgerService
	achievements AchievementService
}

func NewLibraryService(gdb *gorm.DB, log *logger.Logger, clk clock.Clock, rs repos.Set, ledger LedgerService, achievements AchievementService) LibraryService {
	return &libraryService{
		db:           gdb,
		log:          log.With("service", "LibraryService"),
		clock:        clk,
		tx:           db.NewTxRunner(gdb),
		repos:        rs,
		ledger:       ledger,
		achievements: achievements,
	}
}

func (ls *libraryService) award(dbc dbctx.Context, userID uuid.UUID, event, sourceType string, sourceID uuid.UUID) (int, error) {
	res, err := ls.ledger.Award(dbc, AwardInput{
		UserID:     userID,
		EventType:  event,
		SourceType: sourceType,
		SourceID:   &sourceID,
	})
	if err != nil {
		return 0, err
	}
	return res.Amount, nil
}

func (ls *libraryService) AddResource(dbc dbctx.Context, userID uuid.UUID, in AddResourceInput) (*ResourceResult, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, pkgerrors.Invalidf("resource title")
	}
	kind := strings.ToLower(strings.TrimSpace(in.ResourceType))
	if kind == "" {
		kind = "article"
	}
	out := &ResourceResult{}
	err := ls.tx.InTx(dbc, func(dbc dbctx.Context) error {
		r, err := ls.repos.Learning.Create(dbc, &types.LearningResource{
			UserID:       userID,
			ResourceType: kind,
			Title:        truncateRunes(title, 500),
			URL:          strings.TrimSpace(in.URL),
			Description:  strings.TrimSpace(in.Description),
			Topic:        strings.TrimSpace(in.Topic),
		})
		if err != nil {
			return fmt.Errorf("create resource: %w", err)
		}
		out.Resource, out.Title = r, r.Title
		out.XPEarned, err = ls.award(dbc, userID, gamification.EventLearningAdded, "learning", r.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ls *libraryService) MarkResourceDone(dbc dbctx.Context, userID, resourceID uuid.UUID) (*ResourceResult, error) {
	out := &ResourceResult{}
	err := ls.tx.InTx(dbc, func(dbc dbctx.Context) error {
		r, err := ls.repos.Learning.GetByID(dbc, resourceID)
		if err != nil {
			return fmt.Errorf("load resource: %w", err)
		}
		if r == nil {
			out.Failure = notFound("Resource not found")
			return nil
		}
		if r.UserID != userID {
			out.Failure = forbidden("Not your resource")
			return nil
		}
		out.Resource, out.Title = r, r.Title
		if r.IsCompleted {
			out.AlreadyDone = true
			return nil
		}
		now := ls.clock.Now().UTC()
		if err := ls.repos.Learning.UpdateFields(dbc, r.ID, map[string]any{"is_completed": true, "completed_at": now}); err != nil {
			return fmt.Errorf("complete resource: %w", err)
		}
		r.IsCompleted, r.CompletedAt = true, &now
		out.XPEarned, err = ls.award(dbc, userID, gamification.EventLearningCompleted, "learning", r.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !out.Failed() && !out.AlreadyDone {
		out.Achievements = evaluateAfter(ls.achievements, ls.log, dbc, userID)
	}
	return out, nil
}

func (ls *libraryService) ListResources(dbc dbctx.Context, userID uuid.UUID, onlyOpen bool) ([]*types.LearningResource, error) {
	return ls.repos.Learning.ListByUser(dbc, userID, onlyOpen)
}

var curatedSuggestions = map[string][]ResourceSuggestion{
	"go": {
		{ResourceType: "article", Title: "Effective Go", URL: "https://go.dev/doc/effective_go", Description: "Idioms and conventions from the Go team.", Topic: "Go"},
		{ResourceType: "course", Title: "A Tour of Go", URL: "https://go.dev/tour/", Description: "Interactive introduction to the language.", Topic: "Go"},
	},
	"python": {
		{ResourceType: "article", Title: "Python backend best practices", URL: "https://habr.com/ru/search/?q=python%20backend", Description: "Articles on backend development in Python.", Topic: "Python"},
		{ResourceType: "video", Title: "Python backend architecture", URL: "https://www.youtube.com/results?search_query=python+backend+architecture", Description: "Talks on service architecture.", Topic: "Python"},
	},
}

// Suggest proposes starting points for a topic; unknown topics get search links.
func (ls *libraryService) Suggest(topic string) []ResourceSuggestion {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil
	}
	if s, ok := curatedSuggestions[strings.ToLower(topic)]; ok {
		return append([]ResourceSuggestion(nil), s...)
	}
	q := url.QueryEscape(topic)
	return []ResourceSuggestion{
		{ResourceType: "article", Title: fmt.Sprintf("Habr: articles on '%s'", topic), URL: "https://habr.com/ru/search/?q=" + q, Description: "Articles on the topic.", Topic: topic},
		{ResourceType: "video", Title: fmt.Sprintf("YouTube: videos on '%s'", topic), URL: "https://www.youtube.com/results?search_query=" + q, Description: "Videos and walkthroughs.", Topic: topic},
		{ResourceType: "course", Title: fmt.Sprintf("Courses on '%s'", topic), URL: "https://www.google.com/search?q=" + q + "+course", Description: "Courses and tutorials.", Topic: topic},
	}
}

func (ls *libraryService) CreatePlaylist(dbc dbctx.Context, userID uuid.UUID, name, emoji string) (*PlaylistResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.Invalidf("playlist name")
	}
	out := &PlaylistResult{}
	err := ls.tx.InTx(dbc, func(dbc dbctx.Context) error {
		p, err := ls.repos.Playlists.Create(dbc, &types.Playlist{
			UserID: userID,
			Name:   truncateRunes(name, 255),
			Emoji:  strings.TrimSpace(emoji),
		})
		if err != nil {
			return fmt.Errorf("create playlist: %w", err)
		}
		out.Playlist = p
		out.XPEarned, err = ls.award(dbc, userID, gamification.EventPlaylistCreated, "playlist", p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out.Achievements = evaluateAfter(ls.achievements, ls.log, dbc, userID)
	return out, nil
}

func (ls *libraryService) AddTrack(dbc dbctx.Context, userID, playlistID uuid.UUID, in AddTrackInput) (*PlaylistResult, error) {
	if strings.TrimSpace(in.FileID) == "" {
		return nil, pkgerrors.Invalidf("track file id")
	}
	out := &PlaylistResult{}
	err := ls.tx.InTx(dbc, func(dbc dbctx.Context) error {
		p, err := ls.ownedPlaylist(dbc, userID, playlistID, &out.Failure)
		if err != nil || p == nil {
			return err
		}
		out.Playlist = p
		n, err := ls.repos.PlaylistTracks.CountByPlaylist(dbc, playlistID)
		if err != nil {
			return fmt.Errorf("count tracks: %w", err)
		}
		tr, err := ls.repos.PlaylistTracks.Create(dbc, &types.PlaylistTrack{
			PlaylistID:   playlistID,
			FileID:       strings.TrimSpace(in.FileID),
			FileUniqueID: strings.TrimSpace(in.FileUniqueID),
			Title:        strings.TrimSpace(in.Title),
			Performer:    strings.TrimSpace(in.Performer),
			Duration:     in.Duration,
			Position:     int(n) + 1,
			AddedAt:      ls.clock.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("add track: %w", err)
		}
		out.Track = tr
		out.XPEarned, err = ls.award(dbc, userID, gamification.EventPlaylistTrackAdded, "playlist_track", tr.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !out.Failed() {
		out.Achievements = evaluateAfter(ls.achievements, ls.log, dbc, userID)
	}
	return out, nil
}

func (ls *libraryService) ListPlaylists(dbc dbctx.Context, userID uuid.UUID) ([]*types.Playlist, error) {
	return ls.repos.Playlists.ListByUser(dbc, userID)
}

func (ls *libraryService) ListTracks(dbc dbctx.Context, userID, playlistID uuid.UUID) ([]*types.PlaylistTrack, error) {
	var f Failure
	p, err := ls.ownedPlaylist(dbc, userID, playlistID, &f)
	if err != nil || p == nil {
		return []*types.PlaylistTrack{}, err
	}
	return ls.repos.PlaylistTracks.ListByPlaylist(dbc, playlistID)
}

func (ls *libraryService) DeletePlaylist(dbc dbctx.Context, userID, playlistID uuid.UUID) (*DeleteResult, error) {
	out := &DeleteResult{}
	p, err := ls.ownedPlaylist(dbc, userID, playlistID, &out.Failure)
	if err != nil || p == nil {
		return out, err
	}
	if err := ls.repos.Playlists.Delete(dbc, playlistID); err != nil {
		return nil, fmt.Errorf("delete playlist: %w", err)
	}
	out.Deleted, out.Title = true, p.Name
	return out, nil
}

// ownedPlaylist returns nil with f set when the playlist is missing or foreign.
func (ls *libraryService) ownedPlaylist(dbc dbctx.Context, userID, playlistID uuid.UUID, f *Failure) (*types.Playlist, error) {
	p, err := ls.repos.Playlists.GetByID(dbc, playlistID)
	if err != nil {
		return nil, fmt.Errorf("load playlist: %w", err)
	}
	if p == nil {
		*f = notFound("Playlist not found")
		return nil, nil
	}
	if p.UserID != userID {
		*f = forbidden("Not your playlist")
		return nil, nil
	}
	return p, nil
}
