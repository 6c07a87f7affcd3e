package admission_test

import (
	"context"
	"testing"
	"time"

	"github.com/wardenproxy/warden/internal/admission"
)

func TestAcquireAdmitsExactlyK(t *testing.T) {
	const k = 3
	sem := admission.New(k)

	var permits []*admission.Permit
	for i := 0; i < k; i++ {
		p, ok := sem.TryAcquire()
		if !ok {
			t.Fatalf("TryAcquire #%d: expected a free slot, got none", i)
		}
		permits = append(permits, p)
	}

	if _, ok := sem.TryAcquire(); ok {
		t.Fatal("TryAcquire after K admissions: expected the (K+1)th to be rejected")
	}

	for _, p := range permits {
		p.Release()
	}
}

func TestAcquireBlocksUntilReleaseThenUnblocks(t *testing.T) {
	const k = 1
	sem := admission.New(k)

	first, err := sem.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	unblocked := make(chan *admission.Permit, 1)
	go func() {
		p, err := sem.Acquire(context.Background())
		if err != nil {
			t.Errorf("second Acquire: %v", err)
			return
		}
		unblocked <- p
	}()

	select {
	case <-unblocked:
		t.Fatal("second Acquire returned before the first permit was released")
	case <-time.After(50 * time.Millisecond):
	}

	first.Release()

	select {
	case p := <-unblocked:
		p.Release()
	case <-time.After(time.Second):
		t.Fatal("second Acquire never unblocked after the first permit was released")
	}
}

func TestAcquireRespectsContextCancellation(t *testing.T) {
	sem := admission.New(1)
	held, err := sem.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer held.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := sem.Acquire(ctx); err == nil {
		t.Fatal("expected Acquire to fail once its context deadline passed")
	}
}

func TestDoubleReleasePanics(t *testing.T) {
	sem := admission.New(1)
	p, err := sem.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	p.Release()

	defer func() {
		if recover() == nil {
			t.Fatal("expected a second Release on the same permit to panic")
		}
	}()
	p.Release()
}
