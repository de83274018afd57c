// Package render draws a user's week of slots as a PNG.
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

type fontStyle int

const (
	fontRegular fontStyle = iota
	fontBold
)

// Canvas geometry
const (
	imageWidth      = 1400
	imageHeight     = 900
	headerHeight    = 100
	leftLabelsWidth = 80
	legendWidth     = 140
	dayPaddingX     = 8
	minSlotHeight   = 8.0
	slotRadius      = 6.0
	shadowOffset    = 3.0
	daysInWeek      = 7
	hourPaddingTop  = 1
	hourPaddingBot  = 1
	defaultMinHour  = 8
	defaultMaxHour  = 20
)

const (
	titleFontSize     = 25.0
	dayFontSize       = 24.0
	hourLabelFontSize = 16.0
	slotFontSize      = 15.0
	legendFontSize    = 12.0
)

var (
	bgColor          = color.RGBA{245, 246, 248, 255}
	textColor        = color.RGBA{80, 85, 90, 220}
	hourLabelColor   = color.RGBA{110, 115, 120, 200}
	hourLineColor    = color.NRGBA{150, 150, 150, 255}
	todayBgColor     = color.NRGBA{255, 99, 71, 90}
	evenDayColor     = color.NRGBA{240, 240, 240, 255}
	oddDayColor      = color.NRGBA{225, 225, 225, 255}
	currentTimeColor = color.NRGBA{255, 80, 80, 200}

	slotBusyColor      = color.RGBA{120, 160, 220, 230}
	slotSwappableColor = color.RGBA{133, 193, 85, 220}
	slotPendingColor   = color.RGBA{255, 196, 94, 235}
	slotDefaultColor   = color.RGBA{220, 220, 220, 200}
	slotTextColor      = color.RGBA{20, 24, 28, 230}
	slotShadowColor    = color.RGBA{0, 0, 0, 20}

	legendItemColor = color.RGBA{70, 74, 78, 220}
)

type hourRange struct {
	start int
	end   int
	total int
}

var (
	fontsMu     sync.Mutex
	parsedFonts = make(map[fontStyle]*opentype.Font)
)

// loadFont sets a Go font face of the given size, falling back to basicfont.
func loadFont(dc *gg.Context, size float64, style fontStyle) {
	fontsMu.Lock()
	parsed, ok := parsedFonts[style]
	if !ok {
		data := goregular.TTF
		if style == fontBold {
			data = gobold.TTF
		}
		f, err := opentype.Parse(data)
		if err == nil {
			parsedFonts[style] = f
			parsed = f
		}
	}
	fontsMu.Unlock()

	if parsed != nil {
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			dc.SetFontFace(face)
			return
		}
	}
	dc.SetFontFace(basicfont.Face7x13)
}

// WeekStart returns midnight of the Monday of the week containing t, in t's location.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := int(day.Weekday()) - 1
	if day.Weekday() == time.Sunday {
		offset = 6
	}
	return day.AddDate(0, 0, -offset)
}

// WeekPNG draws the week starting at WeekStart(anchor). now marks today and the current time.
func WeekPNG(anchor time.Time, slots []*model.Slot, now time.Time) ([]byte, error) {
	start := WeekStart(anchor)
	loc := start.Location()
	now = now.In(loc)

	byDay := groupByDay(slots, loc)
	hours := calculateHourRange(slots, loc)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()

	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / daysInWeek
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(hours.total)

	drawHeader(dc, start)
	drawHourLabels(dc, hours, cellHeight)

	todayIndex := -1
	for i := 0; i < daysInWeek; i++ {
		date := start.AddDate(0, 0, i)
		x := float64(leftLabelsWidth + i*dayWidth)
		isToday := sameDay(date, now)
		if isToday {
			todayIndex = i
		}

		drawDayBackground(dc, x, dayWidth, dayHeight, i, isToday)
		drawDayHeader(dc, date, x, dayWidth)
		drawHourLines(dc, x, dayWidth, hours, cellHeight)
		for _, slot := range byDay[date.Format(time.DateOnly)] {
			drawSlot(dc, slot, loc, x, dayWidth, hours, cellHeight)
		}
	}

	if todayIndex >= 0 {
		drawCurrentTimeLine(dc, now, hours, cellHeight, dayWidth)
	}
	drawLegend(dc, dayWidth)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode week png: %w", err)
	}
	return buf.Bytes(), nil
}

func groupByDay(slots []*model.Slot, loc *time.Location) map[string][]*model.Slot {
	out := make(map[string][]*model.Slot)
	for _, slot := range slots {
		key := slot.StartTime.In(loc).Format(time.DateOnly)
		out[key] = append(out[key], slot)
	}
	return out
}

func calculateHourRange(slots []*model.Slot, loc *time.Location) hourRange {
	minHour, maxHour := 24, 0
	for _, slot := range slots {
		start := slot.StartTime.In(loc)
		end := slot.EndTime.In(loc)

		startH := start.Hour()
		endH := end.Hour()
		if end.Minute() > 0 {
			endH++
		}
		// Slots running past midnight are drawn up to the end of their first day.
		if !sameDay(start, end) {
			endH = 24
		}
		minHour = min(minHour, startH)
		maxHour = max(maxHour, endH)
	}

	if minHour == 24 {
		minHour, maxHour = defaultMinHour, defaultMaxHour
	}

	startHour := max(minHour-hourPaddingTop, 0)
	endHour := min(maxHour+hourPaddingBot, 24)

	return hourRange{start: startHour, end: endHour, total: max(endHour-startHour, 1)}
}

func drawHeader(dc *gg.Context, start time.Time) {
	end := start.AddDate(0, 0, daysInWeek-1)
	title := start.Format("January 2006")
	if start.Month() != end.Month() {
		title = start.Format("January") + " - " + end.Format("January 2006")
	}

	loadFont(dc, titleFontSize, fontBold)
	dc.SetColor(textColor)
	_, h := dc.MeasureString(title)
	dc.DrawStringAnchored(title, float64(leftLabelsWidth), float64(headerHeight)/8+h/2, 0, 0)
}

func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	loadFont(dc, hourLabelFontSize, fontRegular)
	dc.SetColor(hourLabelColor)

	for i := 0; i <= hours.total; i++ {
		y := float64(headerHeight) + float64(i)*cellHeight
		dc.DrawStringAnchored(fmt.Sprintf("%02d:00", hours.start+i), float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

func drawDayBackground(dc *gg.Context, x float64, dayWidth, dayHeight, index int, isToday bool) {
	switch {
	case isToday:
		dc.SetColor(todayBgColor)
	case index%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, headerHeight, float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

func drawDayHeader(dc *gg.Context, date time.Time, x float64, dayWidth int) {
	loadFont(dc, dayFontSize, fontBold)
	dc.SetColor(textColor)
	cx := x + float64(dayWidth)/2
	dc.DrawStringAnchored(date.Format("02.01"), cx, headerHeight, 0.5, -1)
	dc.DrawStringAnchored(date.Format("Mon"), cx, headerHeight, 0.5, -0.2)
}

func drawHourLines(dc *gg.Context, x float64, dayWidth int, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)
	for i := 0; i <= hours.total; i++ {
		y := float64(headerHeight) + float64(i)*cellHeight
		dc.DrawLine(x, y, x+float64(dayWidth), y)
		dc.Stroke()
	}
}

func drawSlot(dc *gg.Context, slot *model.Slot, loc *time.Location, x float64, dayWidth int, hours hourRange, cellHeight float64) {
	start := slot.StartTime.In(loc)
	end := slot.EndTime.In(loc)

	startHour := float64(start.Hour()) + float64(start.Minute())/60
	endHour := float64(end.Hour()) + float64(end.Minute())/60
	if !sameDay(start, end) {
		endHour = 24
	}

	y := float64(headerHeight) + (startHour-float64(hours.start))*cellHeight
	height := max((endHour-startHour)*cellHeight, minSlotHeight)
	width := float64(dayWidth) - dayPaddingX*2
	fill := slotColor(slot.Status)

	dc.SetColor(slotShadowColor)
	dc.DrawRoundedRectangle(x+dayPaddingX+shadowOffset, y+2+shadowOffset, width, height-4, slotRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(x+dayPaddingX, y+2, width, height-4, slotRadius)
	dc.Fill()

	dc.SetColor(darken(fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+dayPaddingX, y+2, width, height-4, slotRadius)
	dc.Stroke()

	loadFont(dc, slotFontSize, fontBold)
	dc.SetColor(slotTextColor)
	textX := x + dayPaddingX + 8
	textY := y + 18
	dc.DrawStringAnchored(start.Format("15:04"), textX, textY, 0, 0)

	if height > 25 {
		loadFont(dc, slotFontSize-2, fontRegular)
		dc.DrawStringAnchored(truncate(slot.Title, 18), textX, textY+16, 0, 0)
	}
}

func slotColor(status model.SlotStatus) color.RGBA {
	switch status {
	case model.SlotStatusBusy:
		return slotBusyColor
	case model.SlotStatusSwappable:
		return slotSwappableColor
	case model.SlotStatusSwapPending:
		return slotPendingColor
	default:
		return slotDefaultColor
	}
}

func darken(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

func drawCurrentTimeLine(dc *gg.Context, now time.Time, hours hourRange, cellHeight float64, dayWidth int) {
	current := float64(now.Hour()) + float64(now.Minute())/60
	if current < float64(hours.start) || current > float64(hours.end) {
		return
	}

	y := float64(headerHeight) + (current-float64(hours.start))*cellHeight
	dc.SetColor(currentTimeColor)
	dc.SetLineWidth(2)
	dc.DrawLine(leftLabelsWidth, y, float64(leftLabelsWidth+daysInWeek*dayWidth), y)
	dc.Stroke()
}

func drawLegend(dc *gg.Context, dayWidth int) {
	items := []struct {
		label string
		clr   color.Color
	}{
		{"Busy", slotBusyColor},
		{"Swappable", slotSwappableColor},
		{"Swap pending", slotPendingColor},
	}

	const boxW, boxH = 20.0, 14.0
	x := float64(leftLabelsWidth+daysInWeek*dayWidth) + 10
	y := float64(imageHeight) - 100

	loadFont(dc, legendFontSize, fontRegular)
	for _, item := range items {
		dc.SetColor(item.clr)
		dc.DrawRoundedRectangle(x, y, boxW, boxH, 3)
		dc.Fill()

		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(item.label, x+boxW+8, y+boxH/2+1, 0, 0.2)
		y += boxH + 14
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
