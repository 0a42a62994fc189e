package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/data/db"
	"github.com/yungbote/mentor-backend/internal/data/repos"
	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/gamification"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/mentor-backend/internal/pkg/errors"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

const (
	longEntryRunes   = 500
	relatedLimit     = 5
	relatedScanLimit = 200
)

var hashtagRe = regexp.MustCompile(`#([A-Za-z0-9_а-яА-ЯёЁ]+)`)

type CreateEntryInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type EntryCreated struct {
	Entry        *types.JournalEntry   `json:"entry"`
	Tags         []string              `json:"tags"`
	XPEarned     int                   `json:"xp_earned"`
	LeveledUp    bool                  `json:"leveled_up"`
	Achievements []UnlockedAchievement `json:"achievements,omitempty"`
}

type JournalService interface {
	CreateEntry(dbc dbctx.Context, userID uuid.UUID, in CreateEntryInput) (*EntryCreated, error)
	ListEntries(dbc dbctx.Context, userID uuid.UUID, tag, query string, limit int) ([]*types.JournalEntry, error)
	// Related returns up to five other entries sharing a tag with entryID.
	Related(dbc dbctx.Context, userID, entryID uuid.UUID) ([]*types.JournalEntry, error)
	DeleteEntry(dbc dbctx.Context, userID, entryID uuid.UUID) (*DeleteResult, error)
}

type journalService struct {
	db           *gorm.DB
	log          *logger.Logger
	tx           db.TxRunner
	entries      repos.JournalEntryRepo
	ledger       LedgerService
	achievements AchievementService
}

func NewJournalService(gdb *gorm.DB, log *logger.Logger, entries repos.JournalEntryRepo, ledger LedgerService, achievements AchievementService) JournalService {
	return &journalService{
		db:           gdb,
		log:          log.With("service", "JournalService"),
		tx:           db.NewTxRunner(gdb),
		entries:      entries,
		ledger:       ledger,
		achievements: achievements,
	}
}

func (js *journalService) CreateEntry(dbc dbctx.Context, userID uuid.UUID, in CreateEntryInput) (*EntryCreated, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, pkgerrors.Invalidf("entry content")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = firstLine(content, 80)
	}
	tags := in.Tags
	if len(tags) == 0 {
		tags = ExtractHashtags(content)
	}
	encoded := encodeTags(tags)

	event := gamification.EventJournalEntry
	if utf8.RuneCountInString(content) > longEntryRunes {
		event = gamification.EventJournalEntryLong
	}

	out := &EntryCreated{}
	err := js.tx.InTx(dbc, func(dbc dbctx.Context) error {
		e, err := js.entries.Create(dbc, &types.JournalEntry{
			UserID:  userID,
			Title:   truncateRunes(title, 255),
			Content: content,
			Tags:    encoded,
		})
		if err != nil {
			return fmt.Errorf("create entry: %w", err)
		}
		out.Entry = e
		out.Tags = e.TagList()
		sourceID := e.ID
		award, err := js.ledger.Award(dbc, AwardInput{
			UserID:     userID,
			EventType:  event,
			SourceType: "journal",
			SourceID:   &sourceID,
		})
		if err != nil {
			return err
		}
		out.XPEarned = award.Amount
		out.LeveledUp = award.LeveledUp
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Achievements = evaluateAfter(js.achievements, js.log, dbc, userID)
	return out, nil
}

func (js *journalService) ListEntries(dbc dbctx.Context, userID uuid.UUID, tag, query string, limit int) ([]*types.JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	return js.entries.List(dbc, userID, repos.JournalEntryFilter{Tag: tag, Query: query, Limit: limit})
}

func (js *journalService) Related(dbc dbctx.Context, userID, entryID uuid.UUID) ([]*types.JournalEntry, error) {
	e, err := js.entries.GetByID(dbc, entryID)
	if err != nil {
		return nil, fmt.Errorf("load entry: %w", err)
	}
	if e == nil || e.UserID != userID {
		return []*types.JournalEntry{}, nil
	}
	tags := map[string]bool{}
	for _, t := range e.TagList() {
		tags[t] = true
	}
	if len(tags) == 0 {
		return []*types.JournalEntry{}, nil
	}
	recent, err := js.entries.List(dbc, userID, repos.JournalEntryFilter{Limit: relatedScanLimit})
	if err != nil {
		return nil, err
	}
	out := make([]*types.JournalEntry, 0, relatedLimit)
	for _, other := range recent {
		if other.ID == e.ID {
			continue
		}
		for _, t := range other.TagList() {
			if tags[t] {
				out = append(out, other)
				break
			}
		}
		if len(out) == relatedLimit {
			break
		}
	}
	return out, nil
}

func (js *journalService) DeleteEntry(dbc dbctx.Context, userID, entryID uuid.UUID) (*DeleteResult, error) {
	e, err := js.entries.GetByID(dbc, entryID)
	if err != nil {
		return nil, fmt.Errorf("load entry: %w", err)
	}
	if e == nil {
		return &DeleteResult{Failure: notFound("Entry not found")}, nil
	}
	if e.UserID != userID {
		return &DeleteResult{Failure: forbidden("Not your entry")}, nil
	}
	if err := js.entries.Delete(dbc, entryID); err != nil {
		return nil, fmt.Errorf("delete entry: %w", err)
	}
	return &DeleteResult{Deleted: true, Title: e.Title}, nil
}

// ExtractHashtags returns the distinct #tags in content, lower-cased, in order of appearance.
func ExtractHashtags(content string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range hashtagRe.FindAllStringSubmatchIndex(content, -1) {
		// "##tag" is not a tag.
		if m[0] > 0 && content[m[0]-1] == '#' {
			continue
		}
		tag := strings.ToLower(content[m[2]:m[3]])
		if !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}

func firstLine(s string, limit int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return truncateRunes(strings.TrimSpace(s), limit)
}
