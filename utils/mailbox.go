package utils

import "fmt"

// MailBox carries messages between cooperating domains in three explicit
// phases: every domain Posts its outgoing messages, then Delivers them to the
// target domains' channels, and after a synchronization barrier each domain
// Receives what was sent to it. The barrier between Deliver and Receive is
// the caller's responsibility (a sync.WaitGroup across domain goroutines).
type MailBox[T any] struct {
	NumDomains int
	chans      []chan []T   // One per receiving domain
	outbox     []map[int][]T // One per sending domain, keyed by target
	inbox      [][]T
}

func NewMailBox[T any](numDomains int) (mb *MailBox[T]) {
	mb = &MailBox[T]{
		NumDomains: numDomains,
		chans:      make([]chan []T, numDomains),
		outbox:     make([]map[int][]T, numDomains),
		inbox:      make([][]T, numDomains),
	}
	for d := 0; d < numDomains; d++ {
		// Worst case is all-to-all
		mb.chans[d] = make(chan []T, numDomains)
		mb.outbox[d] = make(map[int][]T)
	}
	return
}

// Post queues a message from one domain to another. Must only be called from
// the sending domain's goroutine.
func (mb *MailBox[T]) Post(from, to int, msg T) {
	if to < 0 || to >= mb.NumDomains {
		panic(fmt.Sprintf("target domain %d out of bounds", to))
	}
	mb.outbox[from][to] = append(mb.outbox[from][to], msg)
}

// Deliver flushes a domain's outbox onto the target domains' channels.
func (mb *MailBox[T]) Deliver(from int) {
	for to, msgs := range mb.outbox[from] {
		mb.chans[to] <- msgs
		delete(mb.outbox[from], to)
	}
}

// Receive drains every message batch addressed to a domain. Callers must
// synchronize so that all Delivers have completed first.
func (mb *MailBox[T]) Receive(domain int) []T {
	for {
		select {
		case msgs := <-mb.chans[domain]:
			mb.inbox[domain] = append(mb.inbox[domain], msgs...)
		default:
			return mb.inbox[domain]
		}
	}
}

// Clear resets a domain's inbox for the next exchange cycle.
func (mb *MailBox[T]) Clear(domain int) {
	mb.inbox[domain] = mb.inbox[domain][:0]
}
