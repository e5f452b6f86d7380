// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"time"
)

// Author is the GitHub account a set of contributor statistics belongs to.
type Author struct {
	Login     string `json:"login"`
	ID        int64  `json:"id"`
	AvatarURL string `json:"avatar_url,omitempty"`
	HTMLURL   string `json:"html_url,omitempty"`
	Type      string `json:"type,omitempty"`
}

// ContributorWeek holds one week of a contributor's activity.
type ContributorWeek struct {
	Week      int64 `json:"w"`
	Additions int   `json:"a"`
	Deletions int   `json:"d"`
	Commits   int   `json:"c"`
}

// Start returns the beginning of the week in UTC.
func (w ContributorWeek) Start() time.Time {
	return time.Unix(w.Week, 0).UTC()
}

// Contributor is one entry of the contributors statistics resource.
type Contributor struct {
	Author Author            `json:"author"`
	Total  int               `json:"total"`
	Weeks  []ContributorWeek `json:"weeks"`
}

// WeeklyCommitActivity is one week of the last year of commit activity.
// Days holds commit counts from Sunday to Saturday.
type WeeklyCommitActivity struct {
	Days  []int `json:"days"`
	Total int   `json:"total"`
	Week  int64 `json:"week"`
}

// Start returns the beginning of the week in UTC.
func (a WeeklyCommitActivity) Start() time.Time {
	return time.Unix(a.Week, 0).UTC()
}

// WeeklyCodeFrequency is the number of additions and deletions pushed in one week.
// Deletions are kept as GitHub reports them, as a negative number.
type WeeklyCodeFrequency struct {
	Week      time.Time `json:"week"`
	Additions int64     `json:"additions"`
	Deletions int64     `json:"deletions"`
}

// NewCodeFrequency converts raw [week-epoch, additions, deletions] triples.
func NewCodeFrequency(raw [][]int64) ([]WeeklyCodeFrequency, error) {
	weeks := make([]WeeklyCodeFrequency, 0, len(raw))
	for i, triple := range raw {
		if len(triple) != 3 {
			return nil, fmt.Errorf("code frequency entry %d: expected 3 values, got %d", i, len(triple))
		}
		weeks = append(weeks, WeeklyCodeFrequency{
			Week:      time.Unix(triple[0], 0).UTC(),
			Additions: triple[1],
			Deletions: triple[2],
		})
	}
	return weeks, nil
}

// WeeklyCommitCounts holds the weekly commit counts of the repository owner and of
// all contributors, oldest week first.
type WeeklyCommitCounts struct {
	All   []int `json:"all"`
	Owner []int `json:"owner"`
}

// NewWeeklyCommitCounts builds WeeklyCommitCounts from the participation payload.
// The slices are copied so the value does not alias the caller's data.
func NewWeeklyCommitCounts(all, owner []int) (WeeklyCommitCounts, error) {
	if len(owner) > len(all) {
		return WeeklyCommitCounts{}, fmt.Errorf("participation: owner has %d weeks, all has %d", len(owner), len(all))
	}
	return WeeklyCommitCounts{
		All:   append(make([]int, 0, len(all)), all...),
		Owner: append(make([]int, 0, len(owner)), owner...),
	}, nil
}

// NonOwner returns the per-week commits made by everyone except the owner.
func (c WeeklyCommitCounts) NonOwner() []int {
	out := make([]int, len(c.All))
	for i, total := range c.All {
		out[i] = total
		if i < len(c.Owner) {
			out[i] -= c.Owner[i]
		}
	}
	return out
}

// PunchPoint is the number of commits made in one hour of one day of the week.
type PunchPoint struct {
	DayOfWeek   time.Weekday `json:"day_of_week"`
	HourOfDay   int          `json:"hour_of_day"`
	CommitCount int          `json:"commit_count"`
}

// PunchCard is the commit count per hour of each day of the week.
type PunchCard struct {
	Points []PunchPoint `json:"points"`
}

// NewPunchCard builds a PunchCard from raw [day, hour, commits] triples.
func NewPunchCard(raw [][]int) (PunchCard, error) {
	points := make([]PunchPoint, 0, len(raw))
	for i, triple := range raw {
		if len(triple) != 3 {
			return PunchCard{}, fmt.Errorf("punch card entry %d: expected 3 values, got %d", i, len(triple))
		}
		day, hour, commits := triple[0], triple[1], triple[2]
		if day < 0 || day > 6 {
			return PunchCard{}, fmt.Errorf("punch card entry %d: day %d out of range", i, day)
		}
		if hour < 0 || hour > 23 {
			return PunchCard{}, fmt.Errorf("punch card entry %d: hour %d out of range", i, hour)
		}
		if commits < 0 {
			return PunchCard{}, fmt.Errorf("punch card entry %d: negative commit count %d", i, commits)
		}
		points = append(points, PunchPoint{
			DayOfWeek:   time.Weekday(day),
			HourOfDay:   hour,
			CommitCount: commits,
		})
	}
	return PunchCard{Points: points}, nil
}

// CommitsFor returns the number of commits for the given day and hour.
func (p PunchCard) CommitsFor(day time.Weekday, hour int) int {
	for _, point := range p.Points {
		if point.DayOfWeek == day && point.HourOfDay == hour {
			return point.CommitCount
		}
	}
	return 0
}

// Busiest returns the slot with the most commits. The first one wins on ties.
func (p PunchCard) Busiest() (PunchPoint, bool) {
	var best PunchPoint
	found := false
	for _, point := range p.Points {
		if !found || point.CommitCount > best.CommitCount {
			best = point
			found = true
		}
	}
	return best, found
}

// Raw converts the punch card back into [day, hour, commits] triples.
func (p PunchCard) Raw() [][]int {
	raw := make([][]int, 0, len(p.Points))
	for _, point := range p.Points {
		raw = append(raw, []int{int(point.DayOfWeek), point.HourOfDay, point.CommitCount})
	}
	return raw
}

// WeeklySummary describes the distribution of weekly commit counts.
type WeeklySummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	StdDev float64 `json:"stddev"`
}

// RepoStats holds the summarized statistics for a single repository.
// It is the core domain entity of this application.
type RepoStats struct {
	Name             string        `json:"name"`
	Contributors     int           `json:"contributors"`
	TopContributor   string        `json:"top_contributor,omitempty"`
	CommitsLastYear  int           `json:"commits_last_year"`
	OwnerCommitShare float64       `json:"owner_commit_share"`
	WeeklyCommits    WeeklySummary `json:"weekly_commits"`
	Additions        int64         `json:"additions"`
	Deletions        int64         `json:"deletions"`
	BusiestSlot      *PunchPoint   `json:"busiest_slot,omitempty"`
}
