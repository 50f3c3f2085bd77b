package pipeline

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	idMu sync.Mutex
	mono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0) // #nosec G404 -- ids, not secrets
}

// NewBatchID returns a ULID for a batch started at t. IDs issued in the same
// millisecond stay ordered.
func NewBatchID(t time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t.UTC()), mono)
	if err != nil {
		// Only happens when the monotonic entropy overflows within one millisecond.
		return ulid.Make().String()
	}
	return id.String()
}

// NewSessionKey returns a random key under which a batch is stored for review.
func NewSessionKey() string {
	return uuid.New().String()
}
