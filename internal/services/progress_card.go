package services

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/yungbote/mentor-backend/internal/data/repos"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

const (
	cardWidth  = 640
	cardHeight = 260
)

var (
	cardBackground = color.RGBA{R: 0x1b, G: 0x1f, B: 0x2a, A: 0xff}
	cardBarTrack   = color.RGBA{R: 0x33, G: 0x3a, B: 0x4d, A: 0xff}
	cardBarFill    = color.RGBA{R: 0xf5, G: 0xa6, B: 0x23, A: 0xff}
	cardMuted      = color.RGBA{R: 0xa0, G: 0xa8, B: 0xbb, A: 0xff}
)

type ProgressCardService interface {
	// RenderProgressCard draws level, XP bar and scores as a PNG.
	RenderProgressCard(dbc dbctx.Context, userID uuid.UUID) ([]byte, error)
}

type progressCardService struct {
	log       *logger.Logger
	users     repos.UserRepo
	titleFace font.Face
	bodyFace  font.Face
}

// NewProgressCardService loads fontPath when set and falls back to the
// built-in bitmap face otherwise.
func NewProgressCardService(log *logger.Logger, users repos.UserRepo, fontPath string) (ProgressCardService, error) {
	serviceLog := log.With("service", "ProgressCardService")
	pcs := &progressCardService{
		log:       serviceLog,
		users:     users,
		titleFace: basicfont.Face7x13,
		bodyFace:  basicfont.Face7x13,
	}
	if strings.TrimSpace(fontPath) == "" {
		return pcs, nil
	}
	serviceLog.Info("Loading progress card font", "font", fontPath)
	title, err := loadFontFace(fontPath, 34)
	if err != nil {
		return nil, fmt.Errorf("could not load progress card font: %w", err)
	}
	body, err := loadFontFace(fontPath, 20)
	if err != nil {
		return nil, fmt.Errorf("could not load progress card font: %w", err)
	}
	pcs.titleFace, pcs.bodyFace = title, body
	return pcs, nil
}

func (pcs *progressCardService) RenderProgressCard(dbc dbctx.Context, userID uuid.UUID) ([]byte, error) {
	u, err := requireUser(dbc, pcs.users, userID)
	if err != nil {
		return nil, err
	}
	name := u.Name()
	if name == "" {
		name = u.Username
	}
	return pcs.render(name, progressView(u))
}

func (pcs *progressCardService) render(name string, p *ProgressView) ([]byte, error) {
	dc := gg.NewContext(cardWidth, cardHeight)

	dc.SetColor(cardBackground)
	dc.DrawRoundedRectangle(0, 0, cardWidth, cardHeight, 18)
	dc.Fill()

	dc.SetFontFace(pcs.titleFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(fmt.Sprintf("Level %d", p.Level), 32, 56, 0, 0)
	dc.SetFontFace(pcs.bodyFace)
	dc.SetColor(cardMuted)
	dc.DrawStringAnchored(name, cardWidth-32, 56, 1, 0)

	// XP bar
	const barX, barY, barW, barH = 32.0, 90.0, float64(cardWidth) - 64, 26.0
	dc.SetColor(cardBarTrack)
	dc.DrawRoundedRectangle(barX, barY, barW, barH, barH/2)
	dc.Fill()
	if fill := barW * clampUnit(p.Fraction); fill > 0 {
		dc.SetColor(cardBarFill)
		dc.DrawRoundedRectangle(barX, barY, max(fill, barH), barH, barH/2)
		dc.Fill()
	}

	dc.SetColor(color.White)
	dc.DrawStringAnchored(fmt.Sprintf("%d XP total, %d to next level", p.TotalXP, p.ToNext), 32, 150, 0, 0)
	dc.SetColor(cardMuted)
	dc.DrawStringAnchored(fmt.Sprintf("Discipline %.0f/100", p.Discipline), 32, 200, 0, 0)
	dc.DrawStringAnchored(fmt.Sprintf("Growth %.0f/100", p.Growth), cardWidth/2, 200, 0, 0)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func clampUnit(v float64) float64 {
	return min(1, max(0, v))
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
