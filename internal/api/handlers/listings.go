package handlers

import (
	"net/http"

	"newstrader/internal/models"
)

// ListingStore - доступ к очереди отложенных листингов
type ListingStore interface {
	GetPending() ([]*models.PendingListing, error)
	GetRecent(limit int) ([]*models.PendingListing, error)
}

// ListingsHandler отдает очередь отложенных листингов
type ListingsHandler struct {
	listings ListingStore
}

// NewListingsHandler создает handler очереди листингов
func NewListingsHandler(listings ListingStore) *ListingsHandler {
	return &ListingsHandler{listings: listings}
}

// listingView - заявка очереди с человекочитаемым описанием статуса
type listingView struct {
	*models.PendingListing
	StatusInfo string `json:"status_info"`
}

// GetListings возвращает заявки очереди
//
// GET /api/v1/listings - последние заявки любого статуса
// GET /api/v1/listings?status=pending - только ожидающие, от старых к новым
func (h *ListingsHandler) GetListings(w http.ResponseWriter, r *http.Request) {
	var (
		listings []*models.PendingListing
		err      error
	)
	if r.URL.Query().Get("status") == models.ListingStatusPending {
		listings, err = h.listings.GetPending()
	} else {
		listings, err = h.listings.GetRecent(queryLimit(r))
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "не удалось получить очередь листингов")
		return
	}

	views := make([]listingView, 0, len(listings))
	for _, listing := range listings {
		views = append(views, listingView{
			PendingListing: listing,
			StatusInfo:     models.ListingStatusInfo(listing.Status),
		})
	}
	writeJSON(w, http.StatusOK, views)
}
