package models

import "testing"

func TestCanTransitionListing(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending -> completed", ListingStatusPending, ListingStatusCompleted, true},
		{"pending -> cancelled", ListingStatusPending, ListingStatusCancelled, true},
		{"completed -> pending", ListingStatusCompleted, ListingStatusPending, false},
		{"completed -> cancelled", ListingStatusCompleted, ListingStatusCancelled, false},
		{"cancelled -> completed", ListingStatusCancelled, ListingStatusCompleted, false},
		{"неизвестный статус", "unknown", ListingStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransitionListing(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransitionListing(%q, %q) = %v, ожидалось %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestCanTransitionPosition(t *testing.T) {
	if !CanTransitionPosition(PositionStatusActive, PositionStatusClosed) {
		t.Error("переход active -> closed должен быть разрешен")
	}
	if CanTransitionPosition(PositionStatusClosed, PositionStatusActive) {
		t.Error("закрытая позиция не должна переоткрываться")
	}
}

func TestIsTerminalListing(t *testing.T) {
	if IsTerminalListing(ListingStatusPending) {
		t.Error("pending не является терминальным статусом")
	}
	if !IsTerminalListing(ListingStatusCompleted) || !IsTerminalListing(ListingStatusCancelled) {
		t.Error("completed и cancelled являются терминальными статусами")
	}
}

func TestListingStatusInfo(t *testing.T) {
	if info := ListingStatusInfo(ListingStatusPending); info != "Ожидает листинга на бирже" {
		t.Errorf("описание pending = %q", info)
	}
	if info := ListingStatusInfo("unknown"); info != "Неизвестный статус" {
		t.Errorf("описание неизвестного статуса = %q", info)
	}
}
