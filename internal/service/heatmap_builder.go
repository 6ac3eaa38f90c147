package service

import (
	"time"

	"github.com/bnnadi/confida-service-sub000/internal/domain"
)

// HeatmapCell es el agregado de un par (día de semana, hora del día).
type HeatmapCell struct {
	SessionCount int     `json:"session_count"`
	AverageScore float64 `json:"average_score"`
}

// ActivityHeatmap es la grilla fija 7x24 de actividad. Día 0 es lunes.
// PeakDay y PeakHour salen de las sumas marginales y se calculan de forma
// independiente: no apuntan necesariamente a la misma celda.
type ActivityHeatmap struct {
	Cells    [7][24]HeatmapCell `json:"cells"`
	PeakDay  int                `json:"peak_day"`
	PeakHour int                `json:"peak_hour"`
}

// HeatmapBuilder agrega sesiones en la grilla día x hora. Las sesiones sin
// puntaje cuentan en session_count pero no en average_score.
type HeatmapBuilder struct {
	normalizer ScoreNormalizer
}

func NewHeatmapBuilder() *HeatmapBuilder {
	return &HeatmapBuilder{}
}

func (b *HeatmapBuilder) Build(sessions []domain.Session) ActivityHeatmap {
	var heatmap ActivityHeatmap
	var scoreSums [7][24]float64
	var scoreCounts [7][24]int

	for _, s := range sessions {
		if s.CreatedAt.IsZero() {
			continue
		}
		created := s.CreatedAt.UTC()
		day := mondayIndexed(created.Weekday())
		hour := created.Hour()

		heatmap.Cells[day][hour].SessionCount++
		if overall := b.normalizer.ExtractOverall(s.ScorePayload); overall != nil {
			scoreSums[day][hour] += *overall
			scoreCounts[day][hour]++
		}
	}

	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			if scoreCounts[day][hour] > 0 {
				heatmap.Cells[day][hour].AverageScore = scoreSums[day][hour] / float64(scoreCounts[day][hour])
			}
		}
	}

	heatmap.PeakDay = peakDay(heatmap.Cells)
	heatmap.PeakHour = peakHour(heatmap.Cells)
	return heatmap
}

// mondayIndexed traduce time.Weekday (domingo=0) a la convención lunes=0.
func mondayIndexed(w time.Weekday) int {
	return (int(w) + 6) % 7
}

func peakDay(cells [7][24]HeatmapCell) int {
	peak, best := 0, -1
	for day := 0; day < 7; day++ {
		var total int
		for hour := 0; hour < 24; hour++ {
			total += cells[day][hour].SessionCount
		}
		if total > best {
			peak, best = day, total
		}
	}
	return peak
}

func peakHour(cells [7][24]HeatmapCell) int {
	peak, best := 0, -1
	for hour := 0; hour < 24; hour++ {
		var total int
		for day := 0; day < 7; day++ {
			total += cells[day][hour].SessionCount
		}
		if total > best {
			peak, best = hour, total
		}
	}
	return peak
}
