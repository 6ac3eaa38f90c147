package service

import (
	"context"
	"testing"
	"time"

	"github.com/bnnadi/confida-service-sub000/internal/domain"
)

func TestFilterScoreRangeReplacesTotal(t *testing.T) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockSessionRepo{
		listed: []domain.Session{
			scoredSession(4, base),
			scoredSession(8, base.AddDate(0, 0, 1)),
			scoredSession(9.5, base.AddDate(0, 0, 2)),
		},
		total: 3,
	}
	engine := NewFilterEngine(repo)

	minScore, maxScore := 7.0, 9.0
	page, err := engine.Filter(context.Background(), SessionQuery{
		UserID:   "user-1",
		MinScore: &minScore,
		MaxScore: &maxScore,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// El total pasa a ser el conteo post-filtro de puntaje, no el de storage.
	if page.Total != 1 {
		t.Fatalf("expected total 1, got %d", page.Total)
	}
	if len(page.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(page.Sessions))
	}
	if got := page.Sessions[0].ScorePayload; string(got) != "8" {
		t.Fatalf("expected the 8-scored session, got %s", got)
	}
}

func TestFilterWithoutScoreRangeKeepsStorageTotal(t *testing.T) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockSessionRepo{
		listed: []domain.Session{
			scoredSession(4, base),
			scoredSession(8, base.AddDate(0, 0, 1)),
		},
		total: 42,
	}
	engine := NewFilterEngine(repo)

	page, err := engine.Filter(context.Background(), SessionQuery{UserID: "user-1", Status: domain.SessionStatusCompleted})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if page.Total != 42 {
		t.Fatalf("expected storage total 42, got %d", page.Total)
	}
	if repo.lastFilter.Status != domain.SessionStatusCompleted {
		t.Fatalf("status filter must reach storage, got %+v", repo.lastFilter)
	}
}

func TestFilterDropsUnscoredWhenRangeSet(t *testing.T) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockSessionRepo{
		listed: []domain.Session{
			payloadSession("", base),
			payloadSession(`{"notes": "sin puntaje"}`, base.AddDate(0, 0, 1)),
			scoredSession(5, base.AddDate(0, 0, 2)),
		},
		total: 3,
	}
	engine := NewFilterEngine(repo)

	minScore := 1.0
	page, err := engine.Filter(context.Background(), SessionQuery{UserID: "user-1", MinScore: &minScore})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if page.Total != 1 || len(page.Sessions) != 1 {
		t.Fatalf("unscored sessions must be dropped, got total=%d len=%d", page.Total, len(page.Sessions))
	}
}

func TestFilterPagination(t *testing.T) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	var listed []domain.Session
	for i := 0; i < 5; i++ {
		listed = append(listed, scoredSession(float64(i), base.AddDate(0, 0, i)))
	}
	repo := &mockSessionRepo{listed: listed, total: 5}
	engine := NewFilterEngine(repo)

	tests := []struct {
		name   string
		limit  int
		offset int
		want   int
	}{
		{name: "first page", limit: 2, offset: 0, want: 2},
		{name: "middle page", limit: 2, offset: 2, want: 2},
		{name: "tail short page", limit: 2, offset: 4, want: 1},
		{name: "offset beyond end", limit: 2, offset: 9, want: 0},
		{name: "default limit", limit: 0, offset: 0, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := engine.Filter(context.Background(), SessionQuery{UserID: "user-1", Limit: tt.limit, Offset: tt.offset})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(page.Sessions) != tt.want {
				t.Fatalf("expected %d sessions, got %d", tt.want, len(page.Sessions))
			}
			if page.Total != 5 {
				t.Fatalf("pagination must not change total, got %d", page.Total)
			}
		})
	}
}
