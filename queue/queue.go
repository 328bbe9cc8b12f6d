// Package queue implements the outbound priority queue (spec C8):
// messages are bucketed by an integer priority, duplicates (same
// signature, same receiver) are suppressed, and Dequeue always drains
// the lowest-priority-number bucket first.
package queue

import (
	"container/list"
	"encoding/hex"
	"sync"

	"github.com/dimchat/dim-go/mkm"
)

// Priority levels; lower values are serviced first. Callers may use any
// int, these are just the conventional names.
const (
	PriorityUrgent  = -1
	PriorityNormal  = 0
	PrioritySlow    = 1
)

// Item is one outbound unit of work: the wire bytes to send plus the
// signature/receiver pair used for duplicate suppression.
type Item struct {
	Priority  int
	Payload   []byte
	Signature []byte
	Receiver  mkm.ID
}

func dedupKey(signature []byte, receiver mkm.ID) string {
	tail := signature
	if len(tail) > 16 {
		tail = tail[len(tail)-16:]
	}
	return hex.EncodeToString(tail) + "|" + receiver.Address().String()
}

// PriorityQueue is a goroutine-safe, bucketed FIFO queue.
type PriorityQueue struct {
	mu       sync.Mutex
	buckets  map[int]*list.List
	priority []int // sorted ascending, extended on Enqueue of a new priority
	pending  map[string]bool
}

func NewPriorityQueue() *PriorityQueue {
	return &PriorityQueue{
		buckets: map[int]*list.List{},
		pending: map[string]bool{},
	}
}

// Enqueue appends an item to its priority bucket, dropping it silently
// if an item with the same (signature, receiver) is already queued
// (spec C8: "duplicate suppression").
func (q *PriorityQueue) Enqueue(item Item) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	// Unsigned items carry no identity to compare, so they are never
	// treated as duplicates of one another.
	if len(item.Signature) > 0 {
		k := dedupKey(item.Signature, item.Receiver)
		if q.pending[k] {
			return false
		}
		q.pending[k] = true
	}

	bucket, ok := q.buckets[item.Priority]
	if !ok {
		bucket = list.New()
		q.buckets[item.Priority] = bucket
		q.insertPriority(item.Priority)
	}
	bucket.PushBack(item)
	return true
}

func (q *PriorityQueue) insertPriority(p int) {
	i := 0
	for ; i < len(q.priority); i++ {
		if q.priority[i] == p {
			return
		}
		if q.priority[i] > p {
			break
		}
	}
	q.priority = append(q.priority, 0)
	copy(q.priority[i+1:], q.priority[i:])
	q.priority[i] = p
}

// Dequeue pops the oldest item from the lowest-priority-number
// non-empty bucket, clearing its dedup entry so a later retry with the
// same signature is allowed through.
func (q *PriorityQueue) Dequeue() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, p := range q.priority {
		bucket := q.buckets[p]
		if bucket == nil || bucket.Len() == 0 {
			continue
		}
		front := bucket.Front()
		bucket.Remove(front)
		item := front.Value.(Item)
		delete(q.pending, dedupKey(item.Signature, item.Receiver))
		return item, true
	}
	return Item{}, false
}

// Len reports the total number of queued items across all buckets.
func (q *PriorityQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	total := 0
	for _, bucket := range q.buckets {
		total += bucket.Len()
	}
	return total
}
