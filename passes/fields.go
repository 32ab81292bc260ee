package passes

import "walletpass/entity"

const DefaultTermsText = "This ticket is subject to the event terms and conditions. " +
	"This ticket cannot be replaced if lost, stolen or destroyed. " +
	"Unauthorized resale or transfer of this ticket may result in cancellation without refund."

const (
	BarcodeFormatQR = "PKBarcodeFormatQR"
	BarcodeAltText  = "Scan to verify ticket"
)

// MapFields lays the ticket data out in the provider's field-path schema.
func MapFields(settings entity.Settings, organizationName string, ticketData entity.TicketData) map[string]string {
	terms := settings.TermsText
	if terms == "" {
		terms = DefaultTermsText
	}

	return map[string]string{
		"structure_headerFields_eventName_value": ticketData.EventTitle,
		"structure_headerFields_eventName_label": "Event",

		"structure_primaryFields_eventDate_value":     ticketData.EventDate,
		"structure_primaryFields_eventDate_label":     "Date & Time",
		"structure_primaryFields_eventLocation_value": ticketData.EventLocation,
		"structure_primaryFields_eventLocation_label": "Location",

		"structure_secondaryFields_attendeeName_value": ticketData.AttendeeName,
		"structure_secondaryFields_attendeeName_label": "Attendee",
		"structure_secondaryFields_ticketType_value":   ticketData.TicketType,
		"structure_secondaryFields_ticketType_label":   "Ticket",

		"structure_auxiliaryFields_purchaseDate_value": ticketData.PurchaseDate,
		"structure_auxiliaryFields_purchaseDate_label": "Purchased",

		"structure_backFields_description_value": ticketData.EventDescription,
		"structure_backFields_description_label": "Event Details",
		"structure_backFields_terms_value":       terms,
		"structure_backFields_terms_label":       "Terms & Conditions",

		"organizationName": organizationName,

		"barcode_message": ticketData.QRCode,
		"barcode_format":  BarcodeFormatQR,
		"barcode_altText": BarcodeAltText,
	}
}
