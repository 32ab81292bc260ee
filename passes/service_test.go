package passes_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletpass/entity"
	"walletpass/gateway"
	"walletpass/passes"
)

type recordStoreStub struct {
	lock    sync.Mutex
	records map[[2]string]entity.PassRecord
	lookups int
}

func newRecordStoreStub() *recordStoreStub {
	return &recordStoreStub{records: map[[2]string]entity.PassRecord{}}
}

func (s *recordStoreStub) FindPassURL(ctx context.Context, orderID, attendeeID string) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.lookups++

	if rec, ok := s.records[[2]string{orderID, attendeeID}]; ok {
		return rec.PassURL, nil
	}
	for key := range s.records {
		if key[0] == orderID && key[1] != entity.OrderLevelAttendeeID {
			return "", entity.ErrNotFound
		}
	}
	if rec, ok := s.records[[2]string{orderID, entity.OrderLevelAttendeeID}]; ok {
		return rec.PassURL, nil
	}
	return "", entity.ErrNotFound
}

func (s *recordStoreStub) Store(ctx context.Context, record entity.PassRecord) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.records[[2]string{record.OrderID, record.AttendeeID}] = record
	s.records[[2]string{record.OrderID, entity.OrderLevelAttendeeID}] = entity.PassRecord{
		OrderID: record.OrderID,
		PassURL: record.PassURL,
	}
	return nil
}

type lockerStub struct {
	held     bool
	err      error
	released int
}

func (l *lockerStub) TryLock(ctx context.Context, name string) (func(context.Context) error, bool, error) {
	if l.err != nil {
		return nil, false, l.err
	}
	if l.held {
		return nil, false, nil
	}
	return func(context.Context) error {
		l.released++
		return nil
	}, true, nil
}

var (
	validSettings = entity.Settings{
		ClientHash:           "client",
		TemplateHash:         "template",
		EnableCheckoutButton: entity.Yes,
		EnableEmailButton:    entity.Yes,
		ButtonStyle:          entity.ButtonStyleBoth,
		DebugMode:            entity.Yes,
	}
	ticketData = entity.TicketData{
		EventID:       "42",
		EventTitle:    "Go Conference",
		EventDate:     "March 1, 2025 10:00 AM",
		EventLocation: "Main Hall",
		AttendeeID:    "7",
		AttendeeName:  "Jane Doe",
		TicketType:    "VIP",
		QRCode:        "QR-7",
	}
	fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
)

func TestService_CreateOrGetPass_creates_and_stores(t *testing.T) {
	gw := &gateway.PassSourceMock{}
	records := newRecordStoreStub()
	locker := &lockerStub{}

	svc := passes.NewService(gw, records, locker, "Events").WithClock(func() time.Time { return fixedNow })

	passURL, err := svc.CreateOrGetPass(context.Background(), validSettings, ticketData, "100")
	require.NoError(t, err)

	serial := passes.SerialNumber(ticketData, fixedNow)
	assert.Equal(t, "https://passsource.test/pass/"+serial, passURL)
	require.Equal(t, 1, gw.CreatedPassesCount())
	assert.Equal(t, "template", gw.CreatedPasses[0].TemplateHash)
	assert.Equal(t, "client", gw.CreatedPasses[0].ClientHash)
	assert.Equal(t, "QR-7", gw.CreatedPasses[0].Fields["barcode_message"])

	attendeeRecord := records.records[[2]string{"100", "7"}]
	assert.Equal(t, passURL, attendeeRecord.PassURL)
	assert.Equal(t, serial, attendeeRecord.SerialNumber)
	assert.Equal(t, "hashed-"+serial, attendeeRecord.HashedSerialNumber)
	assert.Equal(t, passURL, records.records[[2]string{"100", ""}].PassURL)
	assert.Equal(t, 1, locker.released)
}

func TestService_CreateOrGetPass_returns_existing_pass(t *testing.T) {
	gw := &gateway.PassSourceMock{}
	records := newRecordStoreStub()
	require.NoError(t, records.Store(context.Background(), entity.PassRecord{OrderID: "100", AttendeeID: "7", PassURL: "https://x/existing"}))

	svc := passes.NewService(gw, records, &lockerStub{}, "Events")

	for i := 0; i < 3; i++ {
		passURL, err := svc.CreateOrGetPass(context.Background(), validSettings, ticketData, "100")
		require.NoError(t, err)
		assert.Equal(t, "https://x/existing", passURL)
	}

	assert.Equal(t, 0, gw.CreatedPassesCount())
}

func TestService_CreateOrGetPass_missing_credentials(t *testing.T) {
	gw := &gateway.PassSourceMock{}
	records := newRecordStoreStub()
	locker := &lockerStub{}
	svc := passes.NewService(gw, records, locker, "Events")

	settings := validSettings
	settings.TemplateHash = ""

	_, err := svc.CreateOrGetPass(context.Background(), settings, ticketData, "100")

	var configErr entity.ConfigurationError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, []string{"template_hash"}, configErr.Missing)
	assert.Equal(t, 0, gw.CreatedPassesCount())
	assert.Equal(t, 0, records.lookups)
	assert.Equal(t, 0, locker.released)
}

func TestService_CreateOrGetPass_api_failure_stores_nothing(t *testing.T) {
	gw := &gateway.PassSourceMock{CreateErr: entity.ApiStatusError{Op: "create pass", StatusCode: 500}}
	records := newRecordStoreStub()
	svc := passes.NewService(gw, records, &lockerStub{}, "Events")

	_, err := svc.CreateOrGetPass(context.Background(), validSettings, ticketData, "100")

	var statusErr entity.ApiStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 500, statusErr.StatusCode)
	assert.Empty(t, records.records)
}

func TestService_CreateOrGetPass_lock_held(t *testing.T) {
	gw := &gateway.PassSourceMock{}
	records := newRecordStoreStub()
	svc := passes.NewService(gw, records, &lockerStub{held: true}, "Events")

	_, err := svc.CreateOrGetPass(context.Background(), validSettings, ticketData, "100")
	assert.ErrorIs(t, err, entity.ErrPassCreationInProgress)
	assert.Equal(t, 0, gw.CreatedPassesCount())
	assert.Equal(t, 1, records.lookups)
}

func TestService_CreateOrGetPass_existing_pass_does_not_need_lock(t *testing.T) {
	testCases := []struct {
		name   string
		locker *lockerStub
	}{
		{name: "lock_held", locker: &lockerStub{held: true}},
		{name: "lock_unavailable", locker: &lockerStub{err: errors.New("redis is down")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gw := &gateway.PassSourceMock{}
			records := newRecordStoreStub()
			require.NoError(t, records.Store(context.Background(), entity.PassRecord{OrderID: "100", AttendeeID: "7", PassURL: "https://x/existing"}))

			svc := passes.NewService(gw, records, tc.locker, "Events")

			passURL, err := svc.CreateOrGetPass(context.Background(), validSettings, ticketData, "100")
			require.NoError(t, err)
			assert.Equal(t, "https://x/existing", passURL)
			assert.Equal(t, 0, gw.CreatedPassesCount())
		})
	}
}

func TestService_CreateOrGetPass_each_attendee_gets_own_pass(t *testing.T) {
	gw := &gateway.PassSourceMock{}
	records := newRecordStoreStub()

	svc := passes.NewService(gw, records, &lockerStub{}, "Events").WithClock(func() time.Time { return fixedNow })

	first, err := svc.CreateOrGetPass(context.Background(), validSettings, ticketData, "100")
	require.NoError(t, err)

	second := ticketData
	second.AttendeeID = "8"
	second.AttendeeName = "John Doe"
	second.QRCode = "QR-8"

	secondURL, err := svc.CreateOrGetPass(context.Background(), validSettings, second, "100")
	require.NoError(t, err)

	assert.NotEqual(t, first, secondURL)
	assert.Equal(t, 2, gw.CreatedPassesCount())
	assert.Equal(t, "QR-8", gw.CreatedPasses[1].Fields["barcode_message"])

	again, err := svc.CreateOrGetPass(context.Background(), validSettings, second, "100")
	require.NoError(t, err)
	assert.Equal(t, secondURL, again)
	assert.Equal(t, 2, gw.CreatedPassesCount())
}

func TestService_CreateOrGetPass_falls_back_to_single_ticket_order_pass(t *testing.T) {
	gw := &gateway.PassSourceMock{}
	records := newRecordStoreStub()
	records.records[[2]string{"100", entity.OrderLevelAttendeeID}] = entity.PassRecord{OrderID: "100", PassURL: "https://x/order"}

	svc := passes.NewService(gw, records, &lockerStub{}, "Events")

	passURL, err := svc.CreateOrGetPass(context.Background(), validSettings, ticketData, "100")
	require.NoError(t, err)
	assert.Equal(t, "https://x/order", passURL)
	assert.Equal(t, 0, gw.CreatedPassesCount())
}

func TestService_CreateOrGetPass_serial_stored_only_when_returned(t *testing.T) {
	gw := &gateway.PassSourceMock{OmitSerialNumber: true}
	records := newRecordStoreStub()
	svc := passes.NewService(gw, records, &lockerStub{}, "Events").WithClock(func() time.Time { return fixedNow })

	_, err := svc.CreateOrGetPass(context.Background(), validSettings, ticketData, "100")
	require.NoError(t, err)

	record := records.records[[2]string{"100", "7"}]
	assert.NotEmpty(t, record.PassURL)
	assert.Empty(t, record.SerialNumber)
	assert.Empty(t, record.HashedSerialNumber)
}

func TestService_CreateOrGetPass_debug_log_hides_credentials(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	ctx := log.ToContext(context.Background(), logrus.NewEntry(logger))

	settings := validSettings
	settings.ClientHash = "client-secret-hash"
	settings.TemplateHash = "template-secret-hash"

	svc := passes.NewService(&gateway.PassSourceMock{}, newRecordStoreStub(), &lockerStub{}, "Events")

	_, err := svc.CreateOrGetPass(ctx, settings, ticketData, "100")
	require.NoError(t, err)

	var logged []entity.CreatePassRequest
	for _, entry := range hook.AllEntries() {
		if request, ok := entry.Data["request"].(entity.CreatePassRequest); ok {
			logged = append(logged, request)
		}
	}

	require.Len(t, logged, 1)
	assert.NotContains(t, logged[0].ClientHash, "secret")
	assert.NotContains(t, logged[0].TemplateHash, "secret")
}

func TestService_VerifyCredentials(t *testing.T) {
	gw := &gateway.PassSourceMock{}
	svc := passes.NewService(gw, newRecordStoreStub(), &lockerStub{}, "Events")

	result, err := svc.VerifyCredentials(context.Background(), validSettings)
	require.NoError(t, err)
	assert.True(t, result.OK)

	_, err = svc.VerifyCredentials(context.Background(), entity.DefaultSettings())
	assert.ErrorAs(t, err, &entity.ConfigurationError{})
	assert.Equal(t, 1, gw.Verifications)
}

func TestSerialNumber(t *testing.T) {
	first := passes.SerialNumber(ticketData, fixedNow)
	assert.Len(t, first, 32)
	assert.Equal(t, first, passes.SerialNumber(ticketData, fixedNow))
	assert.NotEqual(t, first, passes.SerialNumber(ticketData, fixedNow.Add(time.Second)))
}

func TestMapFields(t *testing.T) {
	fields := passes.MapFields(validSettings, "Acme Events", ticketData)

	assert.Equal(t, "Go Conference", fields["structure_headerFields_eventName_value"])
	assert.Equal(t, "March 1, 2025 10:00 AM", fields["structure_primaryFields_eventDate_value"])
	assert.Equal(t, "Main Hall", fields["structure_primaryFields_eventLocation_value"])
	assert.Equal(t, "Jane Doe", fields["structure_secondaryFields_attendeeName_value"])
	assert.Equal(t, "VIP", fields["structure_secondaryFields_ticketType_value"])
	assert.Equal(t, "Acme Events", fields["organizationName"])
	assert.Equal(t, passes.BarcodeFormatQR, fields["barcode_format"])
	assert.Equal(t, passes.BarcodeAltText, fields["barcode_altText"])
	assert.Equal(t, passes.DefaultTermsText, fields["structure_backFields_terms_value"])

	settings := validSettings
	settings.TermsText = "No refunds."
	fields = passes.MapFields(settings, "Acme Events", ticketData)
	assert.Equal(t, "No refunds.", fields["structure_backFields_terms_value"])
}
