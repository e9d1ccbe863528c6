package content

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dfryer1193/blogapi/blog/domain"
)

const appearanceDate = "1/2/2006"

type Appearance struct {
	Event          string    `json:"event"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Time           string    `json:"time"`
	MarketingBlurb string    `json:"marketingBlurb"`
}

type appearanceSource struct {
	Event          string `json:"event"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	Time           string `json:"time"`
	MarketingBlurb string `json:"marketing_blurb"`
}

// Appearances lists talks and events from content/appearances.json, latest first.
type Appearances struct {
	file string
	list atomic.Pointer[[]Appearance]
}

func NewAppearances(root string) *Appearances {
	a := &Appearances{file: filepath.Join(root, "content", "appearances.json")}
	a.list.Store(&[]Appearance{})
	return a
}

func (a *Appearances) OnIndexingFinished(ctx context.Context, evt domain.IndexingFinished) error {
	raw, err := os.ReadFile(a.file)
	if err != nil {
		return fmt.Errorf("refresh appearances: %w", err)
	}

	var sources []appearanceSource
	if err := json.Unmarshal(raw, &sources); err != nil {
		return fmt.Errorf("refresh appearances: decode %s: %w", a.file, err)
	}

	list := make([]Appearance, 0, len(sources))
	for _, s := range sources {
		start, err := parseAppearanceDate(s.StartDate)
		if err != nil {
			return fmt.Errorf("refresh appearances: %q start date: %w", s.Event, err)
		}
		end, err := parseAppearanceDate(s.EndDate)
		if err != nil {
			return fmt.Errorf("refresh appearances: %q end date: %w", s.Event, err)
		}

		list = append(list, Appearance{
			Event:          s.Event,
			StartDate:      start,
			EndDate:        end,
			Time:           s.Time,
			MarketingBlurb: s.MarketingBlurb,
		})
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].StartDate.After(list[j].StartDate)
	})

	a.list.Store(&list)
	return nil
}

func (a *Appearances) List() []Appearance {
	return *a.list.Load()
}

// parseAppearanceDate reads M/D/YYYY; anything without a slash is no date at all.
func parseAppearanceDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "/") {
		return time.Time{}, nil
	}
	return time.ParseInLocation(appearanceDate, s, time.UTC)
}
