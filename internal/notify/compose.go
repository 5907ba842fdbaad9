// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	texttemplate "text/template"

	"github.com/google/uuid"

	"github.com/tomtom215/ekrili/internal/database"
	"github.com/tomtom215/ekrili/internal/relevance"
)

// Subject is the subject line of every listing notification.
const Subject = "Annonce pertinente basée sur votre recherche ^^"

const htmlBody = `<div style="text-align:center;">
<img src="{{.FrontURL}}/images/logo_ekri.png" alt="Logo" style="max-width:100px;"/>
<p>Cher/Chère {{.FirstName}},</p>
<p>Nous avons le plaisir de vous informer que nous avons trouvé une annonce correspondant à votre recherche <b>&lt; {{.Matched}} &gt;</b> récente sur notre site. Veuillez trouver les détails ci-dessous :</p>
<p>Titre: {{.Title}}</p>
<p>Description: {{.Description}}</p>
<p>Vous pouvez consulter l’annonce complète à l’adresse suivante : <a href="{{.Link}}">{{.Link}}</a></p>
<p>Si vous avez des questions ou besoin d’aide supplémentaire, n’hésitez pas à nous contacter.</p>
</div>
<p>Cordialement,</p>
`

const textBody = `Cher/Chère {{.FirstName}},

Nous avons le plaisir de vous informer que nous avons trouvé une annonce correspondant à votre recherche < {{.Matched}} > récente sur notre site.

Titre: {{.Title}}
Description: {{.Description}}

Vous pouvez consulter l’annonce complète à l’adresse suivante : {{.Link}}

Cordialement,
`

var (
	htmlTemplate = template.Must(template.New("listing.html").Parse(htmlBody))
	textTemplate = texttemplate.Must(texttemplate.New("listing.txt").Parse(textBody))
)

// Composer renders listing notifications.
type Composer struct {
	frontURL string
}

// NewComposer returns a composer linking to listings under frontURL.
func NewComposer(frontURL string) *Composer {
	return &Composer{frontURL: strings.TrimRight(frontURL, "/")}
}

// ListingLink returns the public URL of a listing's detail page.
func (c *Composer) ListingLink(listingID string) string {
	return c.frontURL + "/annonces/" + url.PathEscape(listingID) + "/details"
}

type messageData struct {
	FrontURL    string
	FirstName   string
	Matched     string
	Title       string
	Description string
	Link        string
}

// Compose renders the notification for one decision.
func (c *Composer) Compose(r *database.Recipient, d *relevance.Decision, listing *relevance.ListingAttributes) (*Message, error) {
	data := messageData{
		FrontURL:    c.frontURL,
		FirstName:   r.FirstName,
		Matched:     d.Matched,
		Title:       listing.Title,
		Description: listing.Description,
		Link:        c.ListingLink(listing.ID),
	}

	var html, text bytes.Buffer
	if err := htmlTemplate.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}
	if err := textTemplate.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render text body: %w", err)
	}

	return &Message{
		ID:       uuid.New().String(),
		To:       r.Email,
		ToName:   r.FirstName,
		Subject:  Subject,
		BodyText: text.String(),
		BodyHTML: html.String(),
	}, nil
}
