// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package notify

import (
	"strings"
	"testing"

	"github.com/tomtom215/ekrili/internal/database"
	"github.com/tomtom215/ekrili/internal/relevance"
)

func TestComposer_Compose(t *testing.T) {
	t.Parallel()

	c := NewComposer("https://ekrili.tn/")
	r := &database.Recipient{UserID: 1, Email: "amira@example.com", FirstName: "Amira"}
	d := &relevance.Decision{UserID: 1, ListingID: "42", Matched: "appartements tunis s+3", Score: 91}
	l := &relevance.ListingAttributes{ID: "42", Title: "Bel S+3 <vue mer>", Description: "Proche plage"}

	msg, err := c.Compose(r, d, l)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	if msg.To != "amira@example.com" || msg.ToName != "Amira" {
		t.Errorf("recipient = %q <%q>", msg.ToName, msg.To)
	}
	if msg.Subject != "Annonce pertinente basée sur votre recherche ^^" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if msg.ID == "" {
		t.Error("ID is empty")
	}

	link := "https://ekrili.tn/annonces/42/details"
	for _, want := range []string{"Cher/Chère Amira,", "< appartements tunis s+3 >", "Titre: Bel S+3 <vue mer>", "Description: Proche plage", link} {
		if !strings.Contains(msg.BodyText, want) {
			t.Errorf("text body missing %q:\n%s", want, msg.BodyText)
		}
	}
	for _, want := range []string{"&lt; appartements tunis s&#43;3 &gt;", "Bel S&#43;3 &lt;vue mer&gt;", `href="` + link + `"`} {
		if !strings.Contains(msg.BodyHTML, want) {
			t.Errorf("html body missing %q:\n%s", want, msg.BodyHTML)
		}
	}
}

func TestComposer_ListingLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		front string
		id    string
		want  string
	}{
		{"https://ekrili.tn", "7", "https://ekrili.tn/annonces/7/details"},
		{"https://ekrili.tn/", "7", "https://ekrili.tn/annonces/7/details"},
		{"https://ekrili.tn", "a/b", "https://ekrili.tn/annonces/a%2Fb/details"},
	}
	for _, tt := range tests {
		if got := NewComposer(tt.front).ListingLink(tt.id); got != tt.want {
			t.Errorf("ListingLink(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
