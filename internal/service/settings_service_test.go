package service

import (
	"errors"
	"reflect"
	"testing"
)

func TestSettingsGetCreatesDefaults(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewSettingsService(gdb, newTestCache())

	settings, err := svc.Get()
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if settings.SiteName != defaultSiteName || !settings.AllowIndexing || settings.Locale != "en" {
		t.Fatalf("unexpected defaults: %#v", settings)
	}

	var count int64
	if err := gdb.Table("global_settings").Count(&count).Error; err != nil {
		t.Fatalf("count settings: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one settings row, got %d", count)
	}
}

func TestSEODefaultsReflectUpdate(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewSettingsService(gdb, newTestCache())

	before, err := svc.SEODefaults()
	if err != nil {
		t.Fatalf("SEODefaults returned error: %v", err)
	}
	if before.SiteName != defaultSiteName {
		t.Fatalf("unexpected initial site name %q", before.SiteName)
	}

	if _, err := svc.Update(SettingsInput{
		SiteName:      "Acme",
		Keywords:      "cms, Blocks, cms，go",
		TwitterHandle: "acme",
		ThemeColor:    "#ff0000",
		AllowIndexing: false,
	}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	after, err := svc.SEODefaults()
	if err != nil {
		t.Fatalf("SEODefaults returned error: %v", err)
	}
	if after.SiteName != "Acme" || after.TitleTemplate != "%s | Acme" {
		t.Fatalf("expected updated names, got %#v", after)
	}
	if after.TwitterHandle != "@acme" || after.AllowIndexing {
		t.Fatalf("unexpected handle or indexing flag: %#v", after)
	}
	if !reflect.DeepEqual(after.Keywords, []string{"cms", "Blocks", "go"}) {
		t.Fatalf("unexpected keywords %#v", after.Keywords)
	}
}

func TestSettingsUpdateValidation(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewSettingsService(gdb, nil)

	if _, err := svc.Update(SettingsInput{}); !errors.Is(err, ErrSiteNameMissing) {
		t.Fatalf("expected ErrSiteNameMissing, got %v", err)
	}
	if _, err := svc.Update(SettingsInput{SiteName: "x", TitleTemplate: "static"}); !errors.Is(err, ErrTitleTemplateInvalid) {
		t.Fatalf("expected ErrTitleTemplateInvalid, got %v", err)
	}
	if _, err := svc.Update(SettingsInput{SiteName: "x", ThemeColor: "red"}); !errors.Is(err, ErrColorInvalid) {
		t.Fatalf("expected ErrColorInvalid, got %v", err)
	}
}

func TestFormatTitle(t *testing.T) {
	settings := DefaultSettings()
	if got := FormatTitle(settings, "About"); got != "About | Blockpress" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := FormatTitle(settings, " "); got != "Blockpress" {
		t.Fatalf("expected site name for empty title, got %q", got)
	}
}
