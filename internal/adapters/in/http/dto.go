package http

import (
	"time"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/worker"
	"dispatch/internal/realtime"

	"github.com/shopspring/decimal"
)

// Requests.

type LocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type CreateOrderRequest struct {
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	Address           string          `json:"address"`
	RequiredSpecialty string          `json:"requiredSpecialty"`
	Priority          string          `json:"priority"`
	Location          LocationRequest `json:"location"`
	EstimatedAmount   decimal.Decimal `json:"estimatedAmount"`
}

type SubmitQuoteRequest struct {
	QuotedAmount decimal.Decimal `json:"quotedAmount"`
	Note         string          `json:"note"`
}

type CompleteWorkRequest struct {
	FinalAmount *decimal.Decimal `json:"finalAmount"`
	WorkContent string           `json:"workContent"`
}

type PayOrderRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

type RateOrderRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type RegisterWorkerRequest struct {
	Name             string           `json:"name"`
	Specialties      []string         `json:"specialties"`
	EmergencyCapable bool             `json:"emergencyCapable"`
	MinOrderAmount   *decimal.Decimal `json:"minOrderAmount"`
}

type ReviewWorkerRequest struct {
	Decision string `json:"decision"`
}

type ChangeWorkStatusRequest struct {
	WorkStatus string `json:"workStatus"`
}

// Responses.

type OrderResponse = realtime.OrderView

func newOrderResponse(o *order.Order) OrderResponse {
	return realtime.NewOrderView(o)
}

type NearbyOrderResponse struct {
	Order      OrderResponse `json:"order"`
	DistanceKm float64       `json:"distanceKm"`
}

type WorkerStatsResponse struct {
	TotalOrders     int             `json:"totalOrders"`
	CompletedOrders int             `json:"completedOrders"`
	TotalEarnings   decimal.Decimal `json:"totalEarnings"`
}

type WorkerResponse struct {
	ID                 string                    `json:"id"`
	Name               string                    `json:"name"`
	WorkStatus         string                    `json:"workStatus"`
	VerificationStatus string                    `json:"verificationStatus"`
	Location           *realtime.LocationPayload `json:"location,omitempty"`
	LocationUpdatedAt  *time.Time                `json:"locationUpdatedAt,omitempty"`
	EmergencyCapable   bool                      `json:"emergencyCapable"`
	MinOrderAmount     decimal.Decimal           `json:"minOrderAmount"`
	Specialties        []string                  `json:"specialties"`
	Stats              WorkerStatsResponse       `json:"stats"`
	Rating             float64                   `json:"rating"`
	RatedOrders        int                       `json:"ratedOrders"`
}

func newWorkerResponse(w *worker.Worker) WorkerResponse {
	rating, rated := w.Rating()
	stats := w.Stats()
	resp := WorkerResponse{
		ID:                 w.ID().String(),
		Name:               w.Name(),
		WorkStatus:         string(w.WorkStatus()),
		VerificationStatus: string(w.VerificationStatus()),
		LocationUpdatedAt:  w.LocationUpdatedAt(),
		EmergencyCapable:   w.EmergencyCapable(),
		MinOrderAmount:     w.MinOrderAmount(),
		Specialties:        w.Specialties(),
		Stats: WorkerStatsResponse{
			TotalOrders:     stats.TotalOrders,
			CompletedOrders: stats.CompletedOrders,
			TotalEarnings:   stats.TotalEarnings,
		},
		Rating:      rating,
		RatedOrders: rated,
	}
	if w.HasLocation() {
		resp.Location = &realtime.LocationPayload{
			Latitude:  w.Location().Latitude(),
			Longitude: w.Location().Longitude(),
		}
	}
	return resp
}

type NearbyWorkerResponse struct {
	WorkerID         string                   `json:"workerId"`
	Name             string                   `json:"name"`
	Location         realtime.LocationPayload `json:"location"`
	DistanceKm       float64                  `json:"distanceKm"`
	WorkStatus       string                   `json:"workStatus"`
	EmergencyCapable bool                     `json:"emergencyCapable"`
	Specialties      []string                 `json:"specialties"`
	Rating           float64                  `json:"rating"`
	RatedOrders      int                      `json:"ratedOrders"`
	Online           bool                     `json:"online"`
}

func newNearbyWorkerResponse(r queries.SearchNearbyWorkersQueryResponse) NearbyWorkerResponse {
	return NearbyWorkerResponse{
		WorkerID:         r.WorkerID.String(),
		Name:             r.Name,
		Location:         realtime.LocationPayload{Latitude: r.Location.Latitude(), Longitude: r.Location.Longitude()},
		DistanceKm:       r.DistanceKm,
		WorkStatus:       r.WorkStatus,
		EmergencyCapable: r.EmergencyCapable,
		Specialties:      r.Specialties,
		Rating:           r.Rating,
		RatedOrders:      r.RatedOrders,
		Online:           r.Online,
	}
}

type LocationUpdateResponse struct {
	ActiveOrderID *string `json:"activeOrderId"`
}

type PresenceStatsResponse struct {
	Counts   map[string]int      `json:"counts"`
	Online   map[string][]string `json:"online"`
	Sessions int                 `json:"sessions"`
}

func newPresenceStatsResponse(r queries.GetPresenceStatsQueryResponse) PresenceStatsResponse {
	resp := PresenceStatsResponse{
		Counts:   make(map[string]int, len(r.Counts)),
		Online:   make(map[string][]string, len(r.Online)),
		Sessions: r.Sessions,
	}
	for role, n := range r.Counts {
		resp.Counts[string(role)] = n
	}
	for role, ids := range r.Online {
		resp.Online[string(role)] = uuidStrings(ids)
	}
	return resp
}

func uuidStrings(ids []kernel.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
