// README: Concurrency tests for the confirmation protocol (run with -race).
package payment

import (
	"context"
	"sync"
	"testing"

	"viax/internal/types"
)

func TestConcurrentConfirmations(t *testing.T) {
	env := setupPaymentEnv(t)
	ctx := context.Background()
	tripID := env.createTrip(t, "t_pay_race")

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := env.svc.ConfirmClient(ctx, tripID, testClient, true)
		errs <- err
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := env.svc.ConfirmDriver(ctx, tripID, testDriver, false)
		errs <- err
	}()

	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Both answers landed: the calls serialize on the trip row lock, so
	// whichever ran second saw the full yes/no combination and opened the
	// dispute — exactly once.
	if n := countDisputes(t, env, tripID); n != 1 {
		t.Fatalf("expected exactly 1 dispute row, got %d", n)
	}

	got, err := env.trips.Get(ctx, tripID)
	if err != nil {
		t.Fatalf("get trip: %v", err)
	}
	if got.ClientConfirmsPaid != "yes" || got.DriverConfirmsReceived != "no" {
		t.Errorf("lost update: confirmations = %s / %s, want yes / no",
			got.ClientConfirmsPaid, got.DriverConfirmsReceived)
	}
	if !got.HasDispute || got.DisputeID == nil {
		t.Error("trip not flagged as disputed")
	}

	for _, userID := range []types.ID{testClient, testDriver} {
		st, err := env.svc.SuspensionStatus(ctx, userID)
		if err != nil {
			t.Fatalf("suspension %s: %v", userID, err)
		}
		if !st.Suspended {
			t.Errorf("expected %s suspended", userID)
		}
	}
}

func TestConcurrentDriverReconfirmations(t *testing.T) {
	env := setupPaymentEnv(t)
	ctx := context.Background()
	tripID := env.createTrip(t, "t_pay_race_driver")

	if _, err := env.svc.ConfirmClient(ctx, tripID, testClient, true); err != nil {
		t.Fatalf("client confirm: %v", err)
	}

	// Several retried driver "no" answers race; the open guard on the trip
	// must still yield a single dispute.
	const attempts = 6
	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.ConfirmDriver(ctx, tripID, testDriver, false)
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if n := countDisputes(t, env, tripID); n != 1 {
		t.Fatalf("expected exactly 1 dispute row after retries, got %d", n)
	}
}

func countDisputes(t *testing.T, env *paymentEnv, tripID types.ID) int {
	t.Helper()
	var n int
	err := env.db.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM payment_disputes WHERE trip_id = $1", string(tripID),
	).Scan(&n)
	if err != nil {
		t.Fatalf("count disputes: %v", err)
	}
	return n
}
