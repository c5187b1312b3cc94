package googleapi

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/samkrish13/AgriBulkMarket/internal/market"
)

// MeetService creates order verification meetings on the service account's
// primary calendar.
type MeetService struct {
	cal *calendar.Service
}

func NewMeetService(ctx context.Context, credentialsFile string) (*MeetService, error) {
	svc, err := calendar.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(calendar.CalendarScope))
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	return &MeetService{cal: svc}, nil
}

// CreateOrderMeet schedules a one-hour meeting a day out with the buyer and
// admin invited, and returns the joinable link. The conference request id is
// the order id, so retrying an approval reuses the same meeting.
func (m *MeetService) CreateOrderMeet(ctx context.Context, orderID, buyerEmail, adminEmail string) (string, error) {
	start := time.Now().Add(24 * time.Hour)
	end := start.Add(time.Hour)

	event := &calendar.Event{
		Summary:     fmt.Sprintf("AgriBulkMarket Order Meeting - %s", market.ShortID(orderID)),
		Description: fmt.Sprintf("Order verification meeting for order %s", orderID),
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: "Asia/Kolkata",
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: "Asia/Kolkata",
		},
		Attendees: []*calendar.EventAttendee{
			{Email: buyerEmail},
			{Email: adminEmail},
		},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: orderID,
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
	}

	created, err := m.cal.Events.Insert("primary", event).
		ConferenceDataVersion(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("insert calendar event: %w", err)
	}

	if created.ConferenceData != nil {
		for _, ep := range created.ConferenceData.EntryPoints {
			if ep.Uri != "" {
				return ep.Uri, nil
			}
		}
	}
	if created.HangoutLink != "" {
		return created.HangoutLink, nil
	}
	return "", fmt.Errorf("event %s has no conference entry point", created.Id)
}
