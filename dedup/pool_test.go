package dedup

import (
	"testing"
	"time"

	"github.com/dimchat/dim-go/clock"
	"github.com/dimchat/dim-go/mkm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReceiver(t *testing.T) mkm.ID {
	t.Helper()
	id, ok := mkm.ParseID("hulk@4YeVEN3aUSQ6PewUPeLDAcwZP3UN97Z5Xg")
	require.True(t, ok)
	return id
}

func TestPoolFirstSeenIsNotDuplicate(t *testing.T) {
	c := clock.NewFixed(time.Unix(0, 0))
	p := NewPool(c)
	receiver := testReceiver(t)
	assert.False(t, p.Seen([]byte("signature-bytes"), receiver))
}

func TestPoolRepeatWithinWindowIsDuplicate(t *testing.T) {
	c := clock.NewFixed(time.Unix(0, 0))
	p := NewPool(c)
	receiver := testReceiver(t)
	sig := []byte("signature-bytes")

	assert.False(t, p.Seen(sig, receiver))
	c.Advance(30 * time.Minute)
	assert.True(t, p.Seen(sig, receiver))
}

func TestPoolExpiresAfterWindow(t *testing.T) {
	c := clock.NewFixed(time.Unix(0, 0))
	p := NewPool(c)
	receiver := testReceiver(t)
	sig := []byte("signature-bytes")

	assert.False(t, p.Seen(sig, receiver))
	c.Advance(Window + time.Minute)
	assert.False(t, p.Seen(sig, receiver))
}

func TestPoolDifferentReceiversDoNotCollide(t *testing.T) {
	c := clock.NewFixed(time.Unix(0, 0))
	p := NewPool(c)
	sig := []byte("same-signature")

	receiver1, _ := mkm.ParseID("hulk@4YeVEN3aUSQ6PewUPeLDAcwZP3UN97Z5Xg")
	receiver2, _ := mkm.ParseID("moki@4WDfe3zZ4T7238Xsqd1oorboVldw5PhImm")

	assert.False(t, p.Seen(sig, receiver1))
	assert.False(t, p.Seen(sig, receiver2))
}
