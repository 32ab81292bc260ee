package passes

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"

	"walletpass/entity"
	"walletpass/locks"
)

type Gateway interface {
	CreatePass(ctx context.Context, request entity.CreatePassRequest) (entity.CreatePassResponse, error)
	VerifyCredentials(ctx context.Context, clientHash, templateHash string) (entity.VerifyResult, error)
}

type RecordStore interface {
	FindPassURL(ctx context.Context, orderID, attendeeID string) (string, error)
	Store(ctx context.Context, record entity.PassRecord) error
}

type Locker interface {
	TryLock(ctx context.Context, name string) (release func(context.Context) error, ok bool, err error)
}

type Service struct {
	gateway          Gateway
	records          RecordStore
	locker           Locker
	organizationName string

	now func() time.Time
}

func NewService(gateway Gateway, records RecordStore, locker Locker, organizationName string) *Service {
	if gateway == nil {
		panic("missing gateway")
	}
	if records == nil {
		panic("missing records")
	}
	if locker == nil {
		panic("missing locker")
	}

	return &Service{
		gateway:          gateway,
		records:          records,
		locker:           locker,
		organizationName: organizationName,
		now:              time.Now,
	}
}

// WithClock replaces the clock used to seed serial numbers.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateOrGetPass returns the stored pass of the attendee, or creates it with the provider.
// ErrPassCreationInProgress is returned when another caller is creating the same pass.
func (s *Service) CreateOrGetPass(
	ctx context.Context,
	settings entity.Settings,
	ticketData entity.TicketData,
	orderID string,
) (passURL string, err error) {
	if missing := settings.MissingCredentials(); len(missing) > 0 {
		return "", entity.ConfigurationError{Missing: missing}
	}

	logger := log.FromContext(ctx).WithFields(logrus.Fields{
		"order_id":    orderID,
		"attendee_id": ticketData.AttendeeID,
	})

	passURL, err = s.findPass(ctx, orderID, ticketData.AttendeeID)
	if err == nil {
		logger.Debug("Pass already exists")
		return passURL, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return "", err
	}

	release, ok, err := s.locker.TryLock(ctx, locks.PassLockName(orderID, ticketData.AttendeeID))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", entity.ErrPassCreationInProgress
	}
	defer func() {
		if releaseErr := release(context.Background()); releaseErr != nil {
			logger.WithError(releaseErr).Warn("Could not release pass lock")
		}
	}()

	// the previous holder may have stored the pass between the lookup and the lock
	passURL, err = s.findPass(ctx, orderID, ticketData.AttendeeID)
	if err == nil {
		logger.Debug("Pass created by another caller")
		return passURL, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return "", err
	}

	request := entity.CreatePassRequest{
		TemplateHash: settings.TemplateHash,
		ClientHash:   settings.ClientHash,
		SerialNumber: SerialNumber(ticketData, s.now()),
		Fields:       MapFields(settings, s.organizationName, ticketData),
	}

	if settings.DebugMode.Enabled() {
		logger.WithField("request", request.Redacted()).Info("Sending pass creation request")
	}

	resp, err := s.gateway.CreatePass(ctx, request)
	if err != nil {
		if settings.DebugMode.Enabled() {
			logger.WithError(err).Info("Pass creation request failed")
		}
		return "", err
	}

	err = s.records.Store(ctx, entity.PassRecord{
		OrderID:            orderID,
		AttendeeID:         ticketData.AttendeeID,
		PassURL:            resp.PassURL,
		SerialNumber:       resp.SerialNumber,
		HashedSerialNumber: resp.HashedSerialNumber,
		CreatedAt:          s.now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("could not store pass: %w", err)
	}

	if settings.DebugMode.Enabled() {
		logger.WithField("pass_url", resp.PassURL).Info("Successfully created pass")
	}

	return resp.PassURL, nil
}

func (s *Service) findPass(ctx context.Context, orderID, attendeeID string) (string, error) {
	passURL, err := s.records.FindPassURL(ctx, orderID, attendeeID)
	if err != nil && !errors.Is(err, entity.ErrNotFound) {
		return "", fmt.Errorf("could not look up pass: %w", err)
	}
	return passURL, err
}

// VerifyCredentials checks the configured credentials against the provider.
func (s *Service) VerifyCredentials(ctx context.Context, settings entity.Settings) (entity.VerifyResult, error) {
	if missing := settings.MissingCredentials(); len(missing) > 0 {
		return entity.VerifyResult{}, entity.ConfigurationError{Missing: missing}
	}

	return s.gateway.VerifyCredentials(ctx, settings.ClientHash, settings.TemplateHash)
}

// SerialNumber is seeded with the current time, so every call yields a new serial.
func SerialNumber(ticketData entity.TicketData, now time.Time) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s-%s-%d", ticketData.EventID, ticketData.AttendeeID, now.Unix())))
	return hex.EncodeToString(sum[:])
}
