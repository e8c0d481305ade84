package render

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"arena-service/pkg/arena"
	"arena-service/pkg/utils"
)

const (
	HUD_H      = 110
	HP_BAR_W   = 56.0
	HP_BAR_H   = 7.0
	RISE_PX    = 20.0
	infoText   = "Drop a card to spawn a character. Click a character to select it."
	cameraText = "Camera feed (simulated)"
)

var (
	BgColor      = utils.ParseHexColor("#1A1A1A")
	GridColor    = utils.ParseHexColor("#FFFFFF14")
	TokenColor   = utils.ParseHexColor("#3498DB")
	SelectColor  = utils.ParseHexColor("#F39C12")
	TextColor    = utils.ParseHexColor("#ECF0F1")
	DamageColor  = utils.ParseHexColor("#E74C3C")
	HealColor    = utils.ParseHexColor("#2ECC71")
	BuffColor    = utils.ParseHexColor("#5DADE2")
	HudColor     = utils.ParseHexColor("#2C3E50")
	ButtonColor  = utils.ParseHexColor("#34495E")
	BarBackColor = utils.ParseHexColor("#00000099")
)

type floatingText struct {
	entityID string
	text     string
	pos      arena.Position
	at       time.Time
	ttl      time.Duration
}

// Renderer draws arena snapshots to PNG. It also listens to game events so
// it can keep floating combat text on screen after the game moves on.
type Renderer struct {
	AssetsDir string

	mu        sync.Mutex
	positions map[string]arena.Position
	texts     []floatingText
}

func NewRenderer(assetsDir string) *Renderer {
	return &Renderer{
		AssetsDir: assetsDir,
		positions: make(map[string]arena.Position),
	}
}

// Present implements arena.Presenter.
func (r *Renderer) Present(e arena.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e.Kind {
	case arena.EventSpawned:
		if e.Entity != nil {
			r.positions[e.EntityID] = e.Entity.Position
		}
	case arena.EventCombatText:
		r.pruneLocked(e.At)
		r.texts = append(r.texts, floatingText{
			entityID: e.EntityID,
			text:     e.Text,
			pos:      r.positions[e.EntityID],
			at:       e.At,
			ttl:      e.TTL,
		})
	case arena.EventRemoved:
		// Text already on screen outlives its entity.
		delete(r.positions, e.EntityID)
	}
}

func (r *Renderer) pruneLocked(now time.Time) {
	kept := r.texts[:0]
	for _, t := range r.texts {
		if now.Before(t.at.Add(t.ttl)) {
			kept = append(kept, t)
		}
	}
	r.texts = kept
}

// liveTexts returns the floating text still visible at now.
func (r *Renderer) liveTexts(now time.Time) []floatingText {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(now)
	out := make([]floatingText, len(r.texts))
	copy(out, r.texts)
	return out
}

// Render draws the snapshot and returns PNG bytes.
func (r *Renderer) Render(s arena.Snapshot) ([]byte, error) {
	w, h := int(s.Bounds.Width), int(s.Bounds.Height)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("render: empty arena %dx%d", w, h)
	}

	dc := gg.NewContext(w, h+HUD_H)
	r.drawBackground(dc, w, h)

	statuses := map[string][]string{}
	for _, fx := range s.Effects {
		statuses[fx.EntityID] = append(statuses[fx.EntityID], fx.Label)
	}

	// Sort by Y (Painter's Algorithm)
	entities := append([]arena.EntityView(nil), s.Entities...)
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].Position.Y < entities[j].Position.Y
	})
	for _, e := range entities {
		r.drawToken(dc, e, e.ID == s.Selected, statuses[e.ID])
	}

	r.drawCombatText(dc, s.At)

	var selected *arena.EntityView
	for i := range s.Entities {
		if s.Entities[i].ID == s.Selected {
			selected = &s.Entities[i]
		}
	}
	r.drawHUD(dc, w, h, selected)

	return utils.EncodePNG(dc.Image())
}

func (r *Renderer) drawBackground(dc *gg.Context, w, h int) {
	bgPath := utils.GetAssetPath(r.AssetsDir, "arena", "background.png")
	drawn := false
	if r.AssetsDir != "" && utils.FileExists(bgPath) {
		if bg, err := utils.LoadImage(bgPath); err == nil {
			dc.DrawImage(imaging.Fill(bg, w, h, imaging.Center, imaging.Lanczos), 0, 0)
			drawn = true
		}
	}
	if !drawn {
		dc.SetColor(BgColor)
		dc.Clear()
	}

	// Grid
	dc.SetColor(GridColor)
	dc.SetLineWidth(1)
	for x := arena.Footprint; x < float64(w); x += arena.Footprint {
		dc.DrawLine(x, 0, x, float64(h))
	}
	for y := arena.Footprint; y < float64(h); y += arena.Footprint {
		dc.DrawLine(0, y, float64(w), y)
	}
	dc.Stroke()

	if face, err := utils.LoadFont("", 12, false); err == nil {
		dc.SetFontFace(face)
		dc.SetColor(color.RGBA{255, 255, 255, 90})
		dc.DrawStringAnchored(cameraText, 8, 8, 0, 1)
	}
}

func (r *Renderer) drawToken(dc *gg.Context, e arena.EntityView, selected bool, statuses []string) {
	fp := arena.Footprint
	cx, cy := e.Position.X+fp/2, e.Position.Y+fp/2
	hpPerc := 0.0
	if e.MaxHP > 0 {
		hpPerc = float64(e.HP) / float64(e.MaxHP)
	}

	utils.DrawShadow(dc, cx, e.Position.Y+fp-4, fp*0.9, 0.6)

	if selected {
		dc.SetColor(SelectColor)
		dc.SetLineWidth(4)
		dc.DrawCircle(cx, cy, fp/2+3)
		dc.Stroke()
	}

	spritePath := utils.GetAssetPath(r.AssetsDir, "characters", strings.ToLower(e.Name)+".png")
	sprite := false
	if r.AssetsDir != "" && utils.FileExists(spritePath) {
		if img, err := utils.LoadImage(spritePath); err == nil {
			img = imaging.Fit(img, int(fp), int(fp), imaging.Lanczos)
			img = utils.ShadeByHealth(img, hpPerc)
			dc.DrawImageAnchored(img, int(cx), int(cy), 0.5, 0.5)
			sprite = true
		}
	}
	if !sprite {
		dc.SetColor(TokenColor)
		dc.DrawCircle(cx, cy, fp/2-4)
		dc.Fill()
		if face, err := utils.LoadFont("", 22, true); err == nil && e.Name != "" {
			dc.SetFontFace(face)
			dc.SetColor(TextColor)
			dc.DrawStringAnchored(strings.ToUpper(initial(e.Name)), cx, cy, 0.5, 0.35)
		}
	}

	// Name and HP bar above the token
	if face, err := utils.LoadFont("", 11, true); err == nil {
		dc.SetFontFace(face)
		dc.SetColor(TextColor)
		dc.DrawStringAnchored(e.Name, cx, e.Position.Y-14, 0.5, 0.5)
	}
	bx := cx - HP_BAR_W/2
	by := e.Position.Y - 8
	dc.SetColor(BarBackColor)
	dc.DrawRectangle(bx, by, HP_BAR_W, HP_BAR_H)
	dc.Fill()
	if hpPerc > 0 {
		dc.SetColor(utils.HPColor(hpPerc))
		dc.DrawRectangle(bx, by, HP_BAR_W*hpPerc, HP_BAR_H)
		dc.Fill()
	}

	if len(statuses) > 0 {
		drawBadge(dc, strings.Join(statuses, " "), cx, e.Position.Y+fp+8)
	}
}

func drawBadge(dc *gg.Context, label string, cx, y float64) {
	face, err := utils.LoadFont("", 10, true)
	if err != nil {
		return
	}
	dc.SetFontFace(face)
	tw, th := dc.MeasureString(label)
	dc.SetColor(BuffColor)
	dc.DrawRoundedRectangle(cx-tw/2-4, y-th/2-3, tw+8, th+6, 4)
	dc.Fill()
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(label, cx, y, 0.5, 0.35)
}

func (r *Renderer) drawCombatText(dc *gg.Context, now time.Time) {
	face, err := utils.LoadFont("", 16, true)
	if err != nil {
		return
	}
	dc.SetFontFace(face)
	for _, t := range r.liveTexts(now) {
		progress := 0.0
		if t.ttl > 0 {
			progress = float64(now.Sub(t.at)) / float64(t.ttl)
		}
		switch {
		case strings.HasPrefix(t.text, "-"):
			dc.SetColor(DamageColor)
		case strings.HasPrefix(t.text, "+"):
			dc.SetColor(HealColor)
		default:
			dc.SetColor(BuffColor)
		}
		dc.DrawString(t.text, t.pos.X+10, t.pos.Y-10-RISE_PX*progress)
	}
}

func (r *Renderer) drawHUD(dc *gg.Context, w, h int, selected *arena.EntityView) {
	dc.SetColor(HudColor)
	dc.DrawRectangle(0, float64(h), float64(w), HUD_H)
	dc.Fill()

	face, err := utils.LoadFont("", 14, false)
	if err != nil {
		return
	}
	dc.SetFontFace(face)
	dc.SetColor(TextColor)

	if selected == nil {
		dc.DrawStringAnchored(infoText, float64(w)/2, float64(h)+HUD_H/2, 0.5, 0.5)
		return
	}

	top := float64(h) + 12
	if bold, err := utils.LoadFont("", 16, true); err == nil {
		dc.SetFontFace(bold)
	}
	dc.DrawStringAnchored(selected.Name, 16, top, 0, 1)
	dc.SetFontFace(face)
	dc.DrawStringAnchored(fmt.Sprintf("HP: %d/%d", selected.HP, selected.MaxHP), 16, top+26, 0, 1)
	dc.DrawStringAnchored(fmt.Sprintf("ATK: %d DEF: %d", selected.Atk, selected.Def), 16, top+48, 0, 1)

	x := float64(w) - 3*96 - 16
	for _, label := range []string{"Attack", "Defend", "Heal"} {
		dc.SetColor(ButtonColor)
		dc.DrawRoundedRectangle(x, top+14, 88, 32, 6)
		dc.Fill()
		dc.SetColor(TextColor)
		dc.DrawStringAnchored(label, x+44, top+30, 0.5, 0.35)
		x += 96
	}
}

func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	return string(r)
}
