package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"walletpass/entity"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	if db == nil {
		panic("db is nil")
	}

	return &PostgresRepository{db: db}
}

// EnsureDefaults creates the settings row from seed when it does not exist yet.
// Settings saved earlier are left untouched.
func (r *PostgresRepository) EnsureDefaults(ctx context.Context, seed entity.Settings) error {
	seed = withDefaults(seed)

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO settings
			(id, client_hash, template_hash, enable_checkout_button, enable_email_button, button_style, debug_mode, terms_text)
		VALUES
			(1, :client_hash, :template_hash, :enable_checkout_button, :enable_email_button, :button_style, :debug_mode, :terms_text)
		ON CONFLICT (id) DO NOTHING
	`, seed)
	if err != nil {
		return fmt.Errorf("could not initialize settings: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context) (entity.Settings, error) {
	var settings entity.Settings
	err := r.db.GetContext(ctx, &settings, `
		SELECT client_hash, template_hash, enable_checkout_button, enable_email_button, button_style, debug_mode, terms_text
		FROM settings
		WHERE id = 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.DefaultSettings(), nil
	}
	if err != nil {
		return entity.Settings{}, fmt.Errorf("could not get settings: %w", err)
	}

	return withDefaults(settings), nil
}

// Save replaces the settings. Values outside the allowed sets are rejected with
// ValidationError and nothing is written.
func (r *PostgresRepository) Save(ctx context.Context, settings entity.Settings) error {
	if err := Validate(settings); err != nil {
		return err
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO settings
			(id, client_hash, template_hash, enable_checkout_button, enable_email_button, button_style, debug_mode, terms_text)
		VALUES
			(1, :client_hash, :template_hash, :enable_checkout_button, :enable_email_button, :button_style, :debug_mode, :terms_text)
		ON CONFLICT (id) DO UPDATE SET
			client_hash = EXCLUDED.client_hash,
			template_hash = EXCLUDED.template_hash,
			enable_checkout_button = EXCLUDED.enable_checkout_button,
			enable_email_button = EXCLUDED.enable_email_button,
			button_style = EXCLUDED.button_style,
			debug_mode = EXCLUDED.debug_mode,
			terms_text = EXCLUDED.terms_text
	`, settings)
	if err != nil {
		return fmt.Errorf("could not save settings: %w", err)
	}

	return nil
}

type ValidationError struct {
	Field string
	Value string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid value %q for setting %s", e.Value, e.Field)
}

func Validate(settings entity.Settings) error {
	toggles := []struct {
		field string
		value entity.Toggle
	}{
		{"enable_checkout_button", settings.EnableCheckoutButton},
		{"enable_email_button", settings.EnableEmailButton},
		{"debug_mode", settings.DebugMode},
	}
	for _, toggle := range toggles {
		if toggle.value != entity.Yes && toggle.value != entity.No {
			return ValidationError{Field: toggle.field, Value: string(toggle.value)}
		}
	}

	if !settings.ButtonStyle.Valid() {
		return ValidationError{Field: "button_style", Value: string(settings.ButtonStyle)}
	}

	return nil
}

func withDefaults(settings entity.Settings) entity.Settings {
	defaults := entity.DefaultSettings()
	if settings.EnableCheckoutButton == "" {
		settings.EnableCheckoutButton = defaults.EnableCheckoutButton
	}
	if settings.EnableEmailButton == "" {
		settings.EnableEmailButton = defaults.EnableEmailButton
	}
	if settings.ButtonStyle == "" {
		settings.ButtonStyle = defaults.ButtonStyle
	}
	if settings.DebugMode == "" {
		settings.DebugMode = defaults.DebugMode
	}
	return settings
}
