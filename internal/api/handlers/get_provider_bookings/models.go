package get_provider_bookings

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lumeaapp/LMA-BookingEngine/internal/domain"
	"github.com/lumeaapp/LMA-BookingEngine/internal/service/bookings/models"
)

// parseQuery собирает запрос сервиса из query параметров
func parseQuery(query url.Values, providerID, userID int64) (*models.GetProviderBookingsRequest, error) {
	req := &models.GetProviderBookingsRequest{
		UserID:     userID,
		ProviderID: providerID,
	}

	if raw := query.Get("staffId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		req.StaffID = &id
	}

	if raw := query.Get("serviceId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		req.ServiceID = &id
	}

	if raw := query.Get("startDate"); raw != "" {
		t, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return nil, err
		}
		req.StartDate = &t
	}

	if raw := query.Get("endDate"); raw != "" {
		t, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return nil, err
		}
		req.EndDate = &t
	}

	if raw := query.Get("status"); raw != "" {
		req.Statuses = strings.Split(raw, ",")
	}

	if raw := query.Get("includeInactive"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		req.IncludeInactive = v
	}

	return req, nil
}
