package render

import (
	"bytes"
	"html/template"
	"strings"

	"walletpass/entity"
)

type Variant string

const (
	VariantPage  Variant = "page"
	VariantEmail Variant = "email"
)

// TicketDetailsMarker is where SpliceIntoEmail places the buttons in the email body.
const TicketDetailsMarker = "<!-- Ticket Details -->"

var pageTemplate = template.Must(template.New("page").Parse(
	`<div class="walletpass-wallet-buttons">` +
		`<h3>Add to Mobile Wallet</h3>` +
		`<p>Download your ticket to Apple Wallet or Google Pay for easy access.</p>` +
		`{{if .Apple}}<a href="{{.PassURL}}" class="walletpass-apple-button" target="_blank">` +
		`<img src="{{.AppleImage}}" alt="Add to Apple Wallet"></a>{{end}}` +
		`{{if .Google}}<a href="{{.PassURL}}" class="walletpass-google-button" target="_blank">` +
		`<img src="{{.GoogleImage}}" alt="Add to Google Wallet"></a>{{end}}` +
		`</div>`,
))

var emailTemplate = template.Must(template.New("email").Parse(
	`<div style="margin: 20px 0; text-align: center; padding: 15px; background-color: #f9f9f9; border-radius: 5px; border: 1px solid #e0e0e0;">` +
		`<p style="margin-bottom: 15px; font-weight: bold; font-size: 16px; color: #333;">Add this ticket to your mobile wallet:</p>` +
		`{{if .Apple}}<a href="{{.PassURL}}" style="display: inline-block; margin: 10px 5px;" target="_blank">` +
		`<img src="{{.AppleImage}}" alt="Add to Apple Wallet" style="max-width: 160px; height: auto;"></a>{{end}}` +
		`{{if .Google}}<a href="{{.PassURL}}" style="display: inline-block; margin: 10px 5px;" target="_blank">` +
		`<img src="{{.GoogleImage}}" alt="Add to Google Wallet" style="max-width: 160px; height: auto;"></a>{{end}}` +
		`</div>`,
))

type Renderer struct {
	assetsBaseURL string
}

func NewRenderer(assetsBaseURL string) Renderer {
	return Renderer{assetsBaseURL: strings.TrimSuffix(assetsBaseURL, "/")}
}

type buttons struct {
	PassURL     string
	Apple       bool
	Google      bool
	AppleImage  string
	GoogleImage string
}

// Render returns the wallet buttons markup. The output depends only on the arguments.
// An unknown style renders the container without buttons.
func (r Renderer) Render(passURL string, style entity.ButtonStyle, variant Variant) string {
	tmpl := pageTemplate
	if variant == VariantEmail {
		tmpl = emailTemplate
	}

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, buttons{
		PassURL:     passURL,
		Apple:       style.IncludesApple(),
		Google:      style.IncludesGoogle(),
		AppleImage:  r.assetsBaseURL + "/images/add-to-apple-wallet.png",
		GoogleImage: r.assetsBaseURL + "/images/add-to-google-wallet.png",
	})
	if err != nil {
		// templates are static, it can only fail on a broken writer
		panic(err)
	}

	return buf.String()
}

// SpliceIntoEmail places buttons before the ticket details marker, or at the end of content
// when there is no marker.
func SpliceIntoEmail(content, buttons string) string {
	idx := strings.Index(content, TicketDetailsMarker)
	if idx < 0 {
		return content + buttons
	}

	return content[:idx] + buttons + content[idx:]
}
