/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package view turns a round snapshot into what the browser draws.
package view

import (
	"fmt"
	"strings"

	"github.com/Seednode/artquiz/internal/round"
)

// View is sent to the browser as-is. The date is only present once the
// guess has been made.
type View struct {
	Type     string `json:"type"`
	State    string `json:"state"`
	Loading  bool   `json:"loading"`
	ImageURL string `json:"image_url,omitempty"`
	Title    string `json:"title,omitempty"`
	Artist   string `json:"artist,omitempty"`
	Category string `json:"category,omitempty"`
	Info     string `json:"info,omitempty"`
	Progress string `json:"progress"`
	Score    int    `json:"score"`
	Cutoff   int    `json:"cutoff"`
	CanGuess bool   `json:"can_guess"`
	Spectate bool   `json:"spectate,omitempty"`

	Result     *Result `json:"result,omitempty"`
	Note       string  `json:"note,omitempty"`
	Error      string  `json:"error,omitempty"`
	Finished   bool    `json:"finished"`
	ResultsURL string  `json:"results_url,omitempty"`
}

type Result struct {
	Correct bool   `json:"correct"`
	Year    *int   `json:"year,omitempty"`
	RawDate string `json:"raw_date"`
	Message string `json:"message"`
}

func Render(s round.Snapshot) View {
	v := View{
		Type:     "state",
		State:    s.State.String(),
		Score:    s.Score,
		Cutoff:   s.Cutoff,
		Progress: progress(s),
		Note:     strings.Join(s.Notes, " "),
		Error:    s.Err,
	}

	switch s.State {
	case round.Loading:
		v.Loading = s.Err == ""
	case round.AwaitingGuess:
		v.CanGuess = true
	case round.Finished:
		v.Finished = true
	}

	if s.Artwork != nil && s.State != round.Loading {
		v.ImageURL = s.Artwork.ImageURL()
		v.Title = s.Artwork.Title
		v.Artist = s.Artwork.ArtistDisplayName
		v.Category = s.Category
		v.Info = info(s.Artwork.Title, s.Artwork.ArtistDisplayName)
	}

	if s.State == round.Revealing && s.Verdict != nil {
		v.Result = result(*s.Verdict)
	}

	return v
}

func progress(s round.Snapshot) string {
	current := s.Answered
	if s.State == round.AwaitingGuess && current < s.Target {
		current++
	}
	return fmt.Sprintf("%d/%d", current, s.Target)
}

func info(title, artist string) string {
	switch {
	case title != "" && artist != "":
		return title + " by " + artist
	case title != "":
		return title
	case artist != "":
		return artist
	}
	return "Unknown artwork"
}

func result(v round.Verdict) *Result {
	r := &Result{
		Correct: v.Correct,
		RawDate: v.RawDate,
	}

	if !v.Year.Known {
		date := v.RawDate
		if date == "" {
			date = "Unknown"
		}
		r.Message = fmt.Sprintf("Unable to determine the date. The artwork's date is listed as: %q", date)
		return r
	}

	y := v.Year.Value
	r.Year = &y
	if v.Correct {
		r.Message = fmt.Sprintf("Correct! The artwork is from %d.", y)
	} else {
		r.Message = fmt.Sprintf("Incorrect. The artwork is from %d.", y)
	}

	return r
}
