package store_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tapedrive-io/tape/internal/core/store"
)

func TestLocker_LockAllSerializesOverlappingAddressSets(t *testing.T) {
	var locks store.Locker
	a := [32]byte{1}
	b := [32]byte{2}

	var order []string
	var mu sync.Mutex
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		unlock := store.LockAll(&locks, a, b)
		record("first-in")
		time.Sleep(20 * time.Millisecond)
		record("first-out")
		unlock()
	}()
	go func() {
		defer wg.Done()
		time.Sleep(5 * time.Millisecond)
		unlock := store.LockAll(&locks, b, a)
		record("second-in")
		unlock()
	}()

	wg.Wait()
	require.Equal(t, []string{"first-in", "first-out", "second-in"}, order)
}

func TestLocker_DisjointAddressesDoNotSerialize(t *testing.T) {
	var locks store.Locker
	a := [32]byte{1}
	c := [32]byte{3}

	done := make(chan struct{})
	unlockA := store.LockAll(&locks, a)
	go func() {
		unlockC := store.LockAll(&locks, c)
		unlockC()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disjoint address locking should not block")
	}
	unlockA()
}
