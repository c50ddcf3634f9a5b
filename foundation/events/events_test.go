package events_test

import (
	"sync"
	"testing"

	"github.com/ardanlabs/utxochain/foundation/events"
	"go.uber.org/goleak"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Bus(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Log("Given the need to fan events out to subscribers.")
	{
		bus := events.New()

		ch, err := bus.Subscribe("a")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to subscribe: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to subscribe.", success)

		var wg sync.WaitGroup
		var got []string

		wg.Add(1)
		go func() {
			defer wg.Done()
			for event := range ch {
				got = append(got, event)
			}
		}()

		bus.Publish("one")
		bus.Publish("two")
		bus.Close()
		wg.Wait()

		if len(got) != 2 || got[0] != "one" || got[1] != "two" {
			t.Fatalf("\t%s\tShould receive events in order: %v", failed, got)
		}
		t.Logf("\t%s\tShould receive events in order.", success)

		if _, err := bus.Subscribe("b"); err == nil {
			t.Fatalf("\t%s\tShould not subscribe to a closed bus.", failed)
		}
		t.Logf("\t%s\tShould not subscribe to a closed bus.", success)

		bus.Publish("three")
		t.Logf("\t%s\tShould ignore events published after close.", success)
	}
}

func Test_Unsubscribe(t *testing.T) {
	t.Log("Given the need to remove a subscriber.")
	{
		bus := events.New()
		defer bus.Close()

		ch, _ := bus.Subscribe("a")
		again, _ := bus.Subscribe("a")
		if ch != again {
			t.Fatalf("\t%s\tShould return the same channel for the same id.", failed)
		}
		t.Logf("\t%s\tShould return the same channel for the same id.", success)

		if err := bus.Unsubscribe("a"); err != nil {
			t.Fatalf("\t%s\tShould be able to unsubscribe: %s", failed, err)
		}

		if _, open := <-ch; open {
			t.Fatalf("\t%s\tShould close the channel on unsubscribe.", failed)
		}
		t.Logf("\t%s\tShould close the channel on unsubscribe.", success)

		if err := bus.Unsubscribe("a"); err == nil {
			t.Fatalf("\t%s\tShould not unsubscribe an unknown id.", failed)
		}
		t.Logf("\t%s\tShould not unsubscribe an unknown id.", success)
	}
}
