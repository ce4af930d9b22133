package config

import (
	"fmt"
	"strings"
)

// Theme is a palette of lipgloss colour strings. Empty fields in a
// configured theme fall back to the default palette.
type Theme struct {
	Name string `toml:"-"`

	TitleFg           string `toml:"title_fg"`
	PaneBorder        string `toml:"pane_border"`
	FocusedPaneBorder string `toml:"focused_pane_border"`
	HeaderBg          string `toml:"header_bg"`
	HeaderFg          string `toml:"header_fg"`
	FooterBg          string `toml:"footer_bg"`
	FooterFg          string `toml:"footer_fg"`
	LineNumberFg      string `toml:"line_number"`
	TextFg            string `toml:"text_fg"`
	InsertBg          string `toml:"insert_bg"`
	InsertFg          string `toml:"insert_fg"`
	DeleteBg          string `toml:"delete_bg"`
	DeleteFg          string `toml:"delete_fg"`
	ChangeBg          string `toml:"change_bg"`
	ChangeFg          string `toml:"change_fg"`
	ConflictBg        string `toml:"conflict_bg"`
	ConflictFg        string `toml:"conflict_fg"`
	SelectedMarkerFg  string `toml:"selected_marker_fg"`
	SelectedMarkerBg  string `toml:"selected_marker_bg"`
	GapMarkerFg       string `toml:"gap_marker_fg"`
	ResolvedFg        string `toml:"resolved_fg"`
	UnresolvedFg      string `toml:"unresolved_fg"`
	ToastBg           string `toml:"toast_bg"`
	ToastFg           string `toml:"toast_fg"`
	ErrorToastBg      string `toml:"error_toast_bg"`
	DimForeground     string `toml:"dim_foreground"`
}

func DefaultTheme() Theme {
	return Theme{
		Name:              "default",
		TitleFg:           "170",
		PaneBorder:        "63",
		FocusedPaneBorder: "205",
		HeaderBg:          "62",
		HeaderFg:          "230",
		FooterBg:          "236",
		FooterFg:          "243",
		LineNumberFg:      "241",
		TextFg:            "252",
		InsertBg:          "28",
		InsertFg:          "231",
		DeleteBg:          "237",
		DeleteFg:          "250",
		ChangeBg:          "24",
		ChangeFg:          "231",
		ConflictBg:        "131",
		ConflictFg:        "231",
		SelectedMarkerFg:  "226",
		SelectedMarkerBg:  "88",
		GapMarkerFg:       "196",
		ResolvedFg:        "42",
		UnresolvedFg:      "196",
		ToastBg:           "22",
		ToastFg:           "230",
		ErrorToastBg:      "124",
		DimForeground:     "244",
	}
}

// ResolveTheme returns the selected theme merged onto the default palette.
func (c Config) ResolveTheme() (Theme, error) {
	name := strings.TrimSpace(c.Theme)
	if name == "" || name == "default" {
		if override, ok := c.Themes["default"]; ok {
			override.Name = "default"
			return mergeTheme(DefaultTheme(), override), nil
		}
		return DefaultTheme(), nil
	}

	theme, ok := c.Themes[name]
	if !ok {
		return Theme{}, fmt.Errorf("theme %q not found", name)
	}
	theme.Name = name
	return mergeTheme(DefaultTheme(), theme), nil
}

func mergeTheme(base Theme, override Theme) Theme {
	return Theme{
		Name:              override.Name,
		TitleFg:           pickColor(base.TitleFg, override.TitleFg),
		PaneBorder:        pickColor(base.PaneBorder, override.PaneBorder),
		FocusedPaneBorder: pickColor(base.FocusedPaneBorder, override.FocusedPaneBorder),
		HeaderBg:          pickColor(base.HeaderBg, override.HeaderBg),
		HeaderFg:          pickColor(base.HeaderFg, override.HeaderFg),
		FooterBg:          pickColor(base.FooterBg, override.FooterBg),
		FooterFg:          pickColor(base.FooterFg, override.FooterFg),
		LineNumberFg:      pickColor(base.LineNumberFg, override.LineNumberFg),
		TextFg:            pickColor(base.TextFg, override.TextFg),
		InsertBg:          pickColor(base.InsertBg, override.InsertBg),
		InsertFg:          pickColor(base.InsertFg, override.InsertFg),
		DeleteBg:          pickColor(base.DeleteBg, override.DeleteBg),
		DeleteFg:          pickColor(base.DeleteFg, override.DeleteFg),
		ChangeBg:          pickColor(base.ChangeBg, override.ChangeBg),
		ChangeFg:          pickColor(base.ChangeFg, override.ChangeFg),
		ConflictBg:        pickColor(base.ConflictBg, override.ConflictBg),
		ConflictFg:        pickColor(base.ConflictFg, override.ConflictFg),
		SelectedMarkerFg:  pickColor(base.SelectedMarkerFg, override.SelectedMarkerFg),
		SelectedMarkerBg:  pickColor(base.SelectedMarkerBg, override.SelectedMarkerBg),
		GapMarkerFg:       pickColor(base.GapMarkerFg, override.GapMarkerFg),
		ResolvedFg:        pickColor(base.ResolvedFg, override.ResolvedFg),
		UnresolvedFg:      pickColor(base.UnresolvedFg, override.UnresolvedFg),
		ToastBg:           pickColor(base.ToastBg, override.ToastBg),
		ToastFg:           pickColor(base.ToastFg, override.ToastFg),
		ErrorToastBg:      pickColor(base.ErrorToastBg, override.ErrorToastBg),
		DimForeground:     pickColor(base.DimForeground, override.DimForeground),
	}
}

func pickColor(base string, override string) string {
	if override != "" {
		return override
	}
	return base
}
