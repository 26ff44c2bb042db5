package service

import (
	"errors"
	"testing"
)

func TestFirstHeaderBecomesGlobal(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewNavigationService(gdb, newTestCache())

	global, err := svc.GlobalHeader()
	if err != nil {
		t.Fatalf("GlobalHeader returned error: %v", err)
	}
	if global != nil {
		t.Fatalf("expected no global header, got %#v", global)
	}

	first, err := svc.CreateHeader(HeaderInput{Name: "Main", Variant: "centered"})
	if err != nil {
		t.Fatalf("CreateHeader returned error: %v", err)
	}
	second, err := svc.CreateHeader(HeaderInput{Name: "Alt", Variant: "sideways"})
	if err != nil {
		t.Fatalf("CreateHeader returned error: %v", err)
	}
	if !first.IsGlobal || second.IsGlobal {
		t.Fatalf("expected only the first header to be global: %v %v", first.IsGlobal, second.IsGlobal)
	}
	if second.Variant != "default" {
		t.Fatalf("expected unknown variant to fall back, got %q", second.Variant)
	}

	global, err = svc.GlobalHeader()
	if err != nil {
		t.Fatalf("GlobalHeader returned error: %v", err)
	}
	if global == nil || global.ID != first.ID {
		t.Fatalf("expected first header to be global, got %#v", global)
	}
}

func TestSetGlobalHeaderUnsetsPrevious(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewNavigationService(gdb, newTestCache())

	first, err := svc.CreateHeader(HeaderInput{Name: "Main"})
	if err != nil {
		t.Fatalf("CreateHeader returned error: %v", err)
	}
	second, err := svc.CreateHeader(HeaderInput{Name: "Campaign"})
	if err != nil {
		t.Fatalf("CreateHeader returned error: %v", err)
	}
	// warm the cache
	if _, err := svc.GlobalHeader(); err != nil {
		t.Fatalf("GlobalHeader returned error: %v", err)
	}

	if _, err := svc.SetGlobalHeader(second.ID); err != nil {
		t.Fatalf("SetGlobalHeader returned error: %v", err)
	}

	reloaded, err := svc.GetHeader(first.ID)
	if err != nil {
		t.Fatalf("GetHeader returned error: %v", err)
	}
	if reloaded.IsGlobal {
		t.Fatal("expected previous global header to be unset")
	}
	global, err := svc.GlobalHeader()
	if err != nil {
		t.Fatalf("GlobalHeader returned error: %v", err)
	}
	if global == nil || global.ID != second.ID {
		t.Fatalf("expected new global header, got %#v", global)
	}

	if _, err := svc.SetGlobalHeader(999); !errors.Is(err, ErrHeaderNotFound) {
		t.Fatalf("expected ErrHeaderNotFound, got %v", err)
	}
}

func TestUpdateFooterReplacesLinksInOrder(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewNavigationService(gdb, newTestCache())

	footer, err := svc.CreateFooter(FooterInput{
		Name:  "Footer",
		Links: []LinkInput{{Label: "Old", URL: "/old"}},
	})
	if err != nil {
		t.Fatalf("CreateFooter returned error: %v", err)
	}

	updated, err := svc.UpdateFooter(footer.ID, FooterInput{
		Name:      "Footer",
		Variant:   "columns",
		Copyright: "© Example",
		Links: []LinkInput{
			{Label: "Contact", URL: "mailto:hi@example.com"},
			{},
			{Label: "Docs", URL: "https://example.com/docs", OpenInNewTab: true},
			{Label: "Top", URL: "#top"},
		},
	})
	if err != nil {
		t.Fatalf("UpdateFooter returned error: %v", err)
	}
	if updated.Variant != "columns" || updated.Copyright != "© Example" {
		t.Fatalf("unexpected footer fields: %#v", updated)
	}
	labels := []string{"Contact", "Docs", "Top"}
	if len(updated.Links) != len(labels) {
		t.Fatalf("expected %d links, got %d", len(labels), len(updated.Links))
	}
	for i, link := range updated.Links {
		if link.Label != labels[i] || link.Position != i {
			t.Fatalf("unexpected link at %d: %#v", i, link)
		}
	}

	global, err := svc.GlobalFooter()
	if err != nil {
		t.Fatalf("GlobalFooter returned error: %v", err)
	}
	if global == nil || len(global.Links) != 3 {
		t.Fatalf("expected cached global footer to reflect update, got %#v", global)
	}
}

func TestNavigationRejectsInvalidLinks(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewNavigationService(gdb, nil)

	if _, err := svc.CreateHeader(HeaderInput{Name: "  "}); !errors.Is(err, ErrNavigationNameMissing) {
		t.Fatalf("expected ErrNavigationNameMissing, got %v", err)
	}
	if _, err := svc.CreateHeader(HeaderInput{Name: "Main", Links: []LinkInput{{Label: "Bad", URL: "javascript:alert(1)"}}}); !errors.Is(err, ErrNavigationLinkInvalid) {
		t.Fatalf("expected ErrNavigationLinkInvalid, got %v", err)
	}
	if _, err := svc.CreateFooter(FooterInput{Name: "Main", Links: []LinkInput{{URL: "/no-label"}}}); !errors.Is(err, ErrNavigationLinkInvalid) {
		t.Fatalf("expected ErrNavigationLinkInvalid, got %v", err)
	}
}

func TestDeleteGlobalHeaderLeavesNone(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewNavigationService(gdb, newTestCache())

	header, err := svc.CreateHeader(HeaderInput{Name: "Main", Links: []LinkInput{{Label: "Home", URL: "/"}}})
	if err != nil {
		t.Fatalf("CreateHeader returned error: %v", err)
	}
	if _, err := svc.GlobalHeader(); err != nil {
		t.Fatalf("GlobalHeader returned error: %v", err)
	}
	if err := svc.DeleteHeader(header.ID); err != nil {
		t.Fatalf("DeleteHeader returned error: %v", err)
	}
	global, err := svc.GlobalHeader()
	if err != nil {
		t.Fatalf("GlobalHeader returned error: %v", err)
	}
	if global != nil {
		t.Fatalf("expected no global header after delete, got %#v", global)
	}
}
