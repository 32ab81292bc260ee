package entity

type Toggle string

const (
	Yes Toggle = "yes"
	No  Toggle = "no"
)

func (t Toggle) Enabled() bool {
	return t == Yes
}

type ButtonStyle string

const (
	ButtonStyleApple  ButtonStyle = "apple"
	ButtonStyleGoogle ButtonStyle = "google"
	ButtonStyleBoth   ButtonStyle = "both"
)

func (s ButtonStyle) Valid() bool {
	switch s {
	case ButtonStyleApple, ButtonStyleGoogle, ButtonStyleBoth:
		return true
	default:
		return false
	}
}

func (s ButtonStyle) IncludesApple() bool {
	return s == ButtonStyleApple || s == ButtonStyleBoth
}

func (s ButtonStyle) IncludesGoogle() bool {
	return s == ButtonStyleGoogle || s == ButtonStyleBoth
}

// Settings is the persisted singleton configured by the administrator.
type Settings struct {
	ClientHash           string      `json:"client_hash" db:"client_hash"`
	TemplateHash         string      `json:"template_hash" db:"template_hash"`
	EnableCheckoutButton Toggle      `json:"enable_checkout_button" db:"enable_checkout_button"`
	EnableEmailButton    Toggle      `json:"enable_email_button" db:"enable_email_button"`
	ButtonStyle          ButtonStyle `json:"button_style" db:"button_style"`
	DebugMode            Toggle      `json:"debug_mode" db:"debug_mode"`
	TermsText            string      `json:"terms_text" db:"terms_text"`
}

func DefaultSettings() Settings {
	return Settings{
		EnableCheckoutButton: Yes,
		EnableEmailButton:    Yes,
		ButtonStyle:          ButtonStyleBoth,
		DebugMode:            No,
	}
}

// MissingCredentials lists the credential fields that are empty.
func (s Settings) MissingCredentials() []string {
	var missing []string
	if s.ClientHash == "" {
		missing = append(missing, "client_hash")
	}
	if s.TemplateHash == "" {
		missing = append(missing, "template_hash")
	}
	return missing
}

func (s Settings) HasCredentials() bool {
	return len(s.MissingCredentials()) == 0
}
