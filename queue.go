package main

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/juju/loggo"
)

var queueLogger = loggo.GetLogger("queue")

// cardID is the raw byte identity of a scanned badge, typically 4 bytes.
type cardID []byte

// Reserved card identities.
var (
	// testCard triggers the LED/buzzer diagnostic melody.
	testCard = cardID{0x40, 0x61, 0x81, 0x80}

	// resetCard asks the host core to restart the whole application.
	resetCard = cardID{0x56, 0xbb, 0x28, 0xc5}
)

// parseCardID parses the colon-delimited hex form of a card identity,
// e.g. "40:61:81:80". Parsing stops at the first token that is not a
// hex byte; whatever was parsed up to that point is returned.
func parseCardID(s string) cardID {
	var id cardID
	for _, tok := range strings.Split(s, ":") {
		b, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			queueLogger.Warningf("malformed card token %q in %q", tok, s)
			break
		}
		id = append(id, byte(b))
	}
	return id
}

// String renders the card back in its colon-delimited hex form.
func (c cardID) String() string {
	parts := make([]string, len(c))
	for i, b := range c {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, ":")
}

// cardQueue hands scanned cards from the authorize path (any goroutine)
// to the network loop. pop returns one card at a time so the consumer
// never touches a socket while the lock is held, and push never waits
// on network I/O.
type cardQueue struct {
	mu    sync.Mutex
	cards []cardID
}

func (q *cardQueue) push(id cardID) {
	q.mu.Lock()
	q.cards = append(q.cards, id)
	q.mu.Unlock()
}

func (q *cardQueue) pop() (cardID, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.cards) == 0 {
		return nil, false
	}
	id := q.cards[0]
	q.cards = q.cards[1:]
	return id, true
}

func (q *cardQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.cards)
}
