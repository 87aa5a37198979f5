package domain

import "testing"

func TestCanTransition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		from ReservationStatus
		to   ReservationStatus
		role ActorRole
		want bool
	}{
		{"customer cancels confirmed", ReservationStatusConfirmed, ReservationStatusCancelled, RoleCustomer, true},
		{"staff cancels confirmed", ReservationStatusConfirmed, ReservationStatusCancelled, RoleStaff, true},
		{"staff marks picked up", ReservationStatusConfirmed, ReservationStatusPickedUp, RoleStaff, true},
		{"staff marks no show", ReservationStatusConfirmed, ReservationStatusNoShow, RoleStaff, true},
		{"customer cannot mark picked up", ReservationStatusConfirmed, ReservationStatusPickedUp, RoleCustomer, false},
		{"customer cannot mark no show", ReservationStatusConfirmed, ReservationStatusNoShow, RoleCustomer, false},
		{"confirmed cannot revert to pending", ReservationStatusConfirmed, ReservationStatusPending, RoleStaff, false},
		{"picked up is terminal", ReservationStatusPickedUp, ReservationStatusCancelled, RoleStaff, false},
		{"no show is terminal", ReservationStatusNoShow, ReservationStatusCancelled, RoleStaff, false},
		{"cancelled is terminal", ReservationStatusCancelled, ReservationStatusConfirmed, RoleStaff, false},
		{"rejected is terminal", ReservationStatusRejected, ReservationStatusConfirmed, RoleStaff, false},
		{"pending is engine-internal", ReservationStatusPending, ReservationStatusConfirmed, RoleStaff, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransition(tc.from, tc.to, tc.role); got != tc.want {
				t.Fatalf("CanTransition(%s, %s, %s) = %v, want %v", tc.from, tc.to, tc.role, got, tc.want)
			}
		})
	}
}

func TestRestoresStock(t *testing.T) {
	t.Parallel()

	if !RestoresStock(ReservationStatusCancelled) {
		t.Fatalf("cancellation must restore stock")
	}
	if !RestoresStock(ReservationStatusNoShow) {
		t.Fatalf("no-show must restore stock")
	}
	if RestoresStock(ReservationStatusPickedUp) {
		t.Fatalf("pickup must not restore stock")
	}
}
