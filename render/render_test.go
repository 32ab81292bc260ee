package render_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"walletpass/entity"
	"walletpass/render"
)

const passURL = "https://passsource.test/pass/123"

func TestRender_email_both(t *testing.T) {
	out := render.NewRenderer("/assets/").Render(passURL, entity.ButtonStyleBoth, render.VariantEmail)

	assert.Equal(t, 2, strings.Count(out, "<a "))
	assert.Equal(t, 2, strings.Count(out, `href="`+passURL+`"`))
	assert.NotContains(t, out, "class=")
	assert.Contains(t, out, "Add this ticket to your mobile wallet:")
	assert.Contains(t, out, `src="/assets/images/add-to-apple-wallet.png"`)
	assert.Contains(t, out, `src="/assets/images/add-to-google-wallet.png"`)
}

func TestRender_page_apple(t *testing.T) {
	out := render.NewRenderer("https://cdn.example.com/walletpass").Render(passURL, entity.ButtonStyleApple, render.VariantPage)

	assert.Equal(t, 1, strings.Count(out, "<a "))
	assert.Contains(t, out, "https://cdn.example.com/walletpass/images/add-to-apple-wallet.png")
	assert.NotContains(t, out, "add-to-google-wallet.png")
	assert.Contains(t, out, `class="walletpass-wallet-buttons"`)
	assert.Contains(t, out, `class="walletpass-apple-button"`)
	assert.Contains(t, out, "Add to Mobile Wallet")
}

func TestRender_page_google(t *testing.T) {
	out := render.NewRenderer("/assets").Render(passURL, entity.ButtonStyleGoogle, render.VariantPage)

	assert.Equal(t, 1, strings.Count(out, "<a "))
	assert.Contains(t, out, `class="walletpass-google-button"`)
	assert.NotContains(t, out, "add-to-apple-wallet.png")
}

func TestRender_unknown_style(t *testing.T) {
	out := render.NewRenderer("/assets/").Render(passURL, "samsung", render.VariantPage)

	assert.Equal(t, 0, strings.Count(out, "<a "))
	assert.Contains(t, out, "Add to Mobile Wallet")
}

func TestRender_escapes_url(t *testing.T) {
	out := render.NewRenderer("/assets/").Render(`https://x/y?a=1&b="2"`, entity.ButtonStyleApple, render.VariantPage)

	assert.NotContains(t, out, `b="2"`)
	assert.Contains(t, out, "a=1&amp;b=")
}

func TestRender_deterministic(t *testing.T) {
	r := render.NewRenderer("/assets/")

	for _, variant := range []render.Variant{render.VariantPage, render.VariantEmail} {
		assert.Equal(t,
			r.Render(passURL, entity.ButtonStyleBoth, variant),
			r.Render(passURL, entity.ButtonStyleBoth, variant),
		)
	}
}

func TestSpliceIntoEmail(t *testing.T) {
	testCases := []struct {
		Name     string
		Content  string
		Expected string
	}{
		{
			Name:     "before_marker",
			Content:  "<p>Hi</p><!-- Ticket Details --><table></table>",
			Expected: "<p>Hi</p>[buttons]<!-- Ticket Details --><table></table>",
		},
		{
			Name:     "only_first_marker",
			Content:  "<!-- Ticket Details --><!-- Ticket Details -->",
			Expected: "[buttons]<!-- Ticket Details --><!-- Ticket Details -->",
		},
		{
			Name:     "append_without_marker",
			Content:  "<p>Hi</p>",
			Expected: "<p>Hi</p>[buttons]",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, render.SpliceIntoEmail(tc.Content, "[buttons]"))
		})
	}
}
