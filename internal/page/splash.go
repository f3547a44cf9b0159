package page

import (
	"regexp"
	"slices"
	"strings"

	"github.com/continuous-intelligence/cIV/internal/models"
	"github.com/continuous-intelligence/cIV/internal/schema"
)

const (
	DefaultSplashDuration   = 3.0
	DefaultSkipText         = "Skip"
	DefaultSkipPosition     = "top-right"
	DefaultSplashRedirect   = "/landing"
	DefaultSplashBackground = "#ffffff"
	DefaultSplashText       = "#111827"

	splashLogoSize = 160
)

var hexColor = regexp.MustCompile(schema.HexColorPattern)

type SplashView struct {
	Site         Site
	Title        string
	BrandName    string
	Tagline      string
	Logo         *ImageView
	Background   string
	TextColor    string
	Duration     float64
	DurationMS   int
	FadeIn       bool
	FadeOut      bool
	Scale        bool
	ShowSkip     bool
	SkipText     string
	SkipPosition string
	RedirectTo   string
}

// Splash composes the splash screen. It returns false when there is no
// active splash screen; the caller redirects to DefaultSplashRedirect or
// the document's target instead.
func (c *Composer) Splash(site Site, s *models.SplashScreen) (SplashView, bool) {
	if s == nil || !bool(s.IsActive) {
		return SplashView{RedirectTo: SplashRedirect(s)}, false
	}

	v := SplashView{
		Site:         site,
		Title:        s.Title,
		BrandName:    first(s.BrandName, site.Name),
		Tagline:      s.Tagline,
		Logo:         c.image(s.Logo, splashLogoSize, splashLogoSize, 0, s.BrandName, ""),
		Background:   color(s.BackgroundColor, DefaultSplashBackground),
		TextColor:    color(s.TextColor, DefaultSplashText),
		Duration:     DefaultSplashDuration,
		FadeIn:       true,
		FadeOut:      true,
		ShowSkip:     true,
		SkipText:     DefaultSkipText,
		SkipPosition: DefaultSkipPosition,
		RedirectTo:   SplashRedirect(s),
	}
	if s.Title != "" {
		v.Site = site.WithPage(s.Title, s.Tagline, nil, "")
	}

	if a := s.AnimationSettings; a != nil {
		if a.Duration >= 1 && a.Duration <= 10 {
			v.Duration = float64(a.Duration)
		}
		v.FadeIn = boolOr(a.FadeIn, true)
		v.FadeOut = boolOr(a.FadeOut, true)
		v.Scale = boolOr(a.Scale, false)
	}
	if b := s.SkipButton; b != nil {
		v.ShowSkip = boolOr(b.Show, true)
		v.SkipText = first(b.Text, DefaultSkipText)
		if slices.Contains(schema.SkipButtonPositions, b.Position) {
			v.SkipPosition = b.Position
		}
	}
	v.DurationMS = int(v.Duration * 1000)
	return v, true
}

// SplashRedirect is the document's redirect target if it is a local path,
// else DefaultSplashRedirect.
func SplashRedirect(s *models.SplashScreen) string {
	if s == nil {
		return DefaultSplashRedirect
	}
	return LocalPath(s.RedirectTo, DefaultSplashRedirect)
}

// LocalPath returns p if it is a same-origin absolute path, else fallback.
func LocalPath(p, fallback string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, `/\`) {
		return fallback
	}
	return p
}

func color(v, fallback string) string {
	if hexColor.MatchString(v) {
		return v
	}
	return fallback
}

func boolOr(b *models.Bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return bool(*b)
}
